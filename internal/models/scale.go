package models

import (
	"fmt"
	"time"
)

// ScaleStatus is the last observed connection state of a scale.
type ScaleStatus string

const (
	ScaleConnected    ScaleStatus = "connected"
	ScaleDisconnected ScaleStatus = "disconnected"
	ScaleError        ScaleStatus = "error"
)

// WeighingScale is the configuration of one physical weighbridge scale.
// The scale-side process exposes GET /get_weight returning {"weight": N}.
type WeighingScale struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"not null" json:"name"`
	Active bool   `gorm:"default:true" json:"active"`

	// Connection settings
	IPAddress      string `gorm:"not null" json:"ip_address"`
	Port           int    `gorm:"not null;default:5000" json:"port"`
	TimeoutSeconds int    `gorm:"default:2" json:"timeout_seconds"`

	// Status & monitoring
	IsEnabled        bool        `gorm:"default:true" json:"is_enabled"`
	ConnectionStatus ScaleStatus `gorm:"default:'disconnected'" json:"connection_status"`
	LastCheckDate    *time.Time  `json:"last_check_date"`
	LastReadWeight   float64     `json:"last_read_weight"`
	LastReadDate     *time.Time  `json:"last_read_date"`
	ErrorMessage     string      `gorm:"type:text" json:"error_message"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WeighingScale) TableName() string { return "weighing_scale" }

// Endpoint returns the scale-side read URL.
func (s *WeighingScale) Endpoint() string {
	return fmt.Sprintf("http://%s:%d/get_weight", s.IPAddress, s.Port)
}

// Timeout returns the configured read timeout, defaulting to 2s.
func (s *WeighingScale) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}
