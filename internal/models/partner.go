package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResPartner represents a customer or supplier (res.partner).
type ResPartner struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"index" json:"name"`
	Street      string `json:"street"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Vat         string `json:"vat"`
	IsCompany   bool   `json:"is_company"`
	CompanyType string `json:"company_type"` // 'person' or 'company'

	LastSyncedAt time.Time      `json:"last_synced_at"`
	RawData      datatypes.JSON `gorm:"type:jsonb" json:"raw_data"`
}

func (ResPartner) TableName() string { return "res_partner" }
