package models

import (
	"time"
)

// TruckStatus describes fleet availability.
type TruckStatus string

const (
	TruckAvailable    TruckStatus = "available"
	TruckInUse        TruckStatus = "in_use"
	TruckMaintenance  TruckStatus = "maintenance"
	TruckOutOfService TruckStatus = "out_of_service"
)

// TruckFleet is a registered truck. Weighing records reference trucks but
// never own them.
type TruckFleet struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	PlateNumber string `gorm:"uniqueIndex;not null" json:"plate_number"`

	// Driver defaults, copied onto weighing records at creation
	DriverName    string `json:"driver_name"`
	DriverPhone   string `json:"driver_phone"`
	DriverLicense string `json:"driver_license"`

	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Year         int    `json:"year"`

	// Weight specifications (KG)
	TrailerCount        int     `gorm:"default:1" json:"trailer_count"`
	MaxWeightPerTrailer float64 `json:"max_weight_per_trailer"`
	TareWeight          float64 `json:"tare_weight"` // empty truck weight

	PartnerID *int64      `gorm:"index" json:"partner_id"` // owner
	Active    bool        `gorm:"default:true" json:"active"`
	Status    TruckStatus `gorm:"default:'available'" json:"status"`
	Notes     string      `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Partner *ResPartner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
}

func (TruckFleet) TableName() string { return "truck_fleet" }

// TotalMaxWeight is the combined trailer capacity in KG.
func (t *TruckFleet) TotalMaxWeight() float64 {
	return float64(t.TrailerCount) * t.MaxWeightPerTrailer
}
