package models

import (
	"time"

	"gorm.io/gorm"
)

// UserAuth is a weighbridge operator account. Scale assignments drive the
// default scale selection when a weighing record is created.
type UserAuth struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	Name     string `json:"name,omitempty"`
	Role     string `gorm:"default:'operator'" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Scale assignment
	DefaultScaleID *int64          `json:"default_scale_id,omitempty"`
	AssignedScales []WeighingScale `gorm:"many2many:scale_user_rel" json:"assigned_scales,omitempty"`

	LastLogin *time.Time `json:"last_login,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserAuth) TableName() string { return "user_auths" }

// PreferredScale resolves the scale a new weighing should default to:
// the explicit default first, otherwise the first assigned scale.
func (u *UserAuth) PreferredScale() *int64 {
	if u.DefaultScaleID != nil {
		return u.DefaultScaleID
	}
	if len(u.AssignedScales) > 0 {
		id := u.AssignedScales[0].ID
		return &id
	}
	return nil
}
