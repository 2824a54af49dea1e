package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProductProduct mirrors 'product.product'. Only products flagged weighable
// participate in weighbridge operations.
type ProductProduct struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	DefaultCode string `gorm:"index" json:"default_code"` // SKU
	Barcode     string `gorm:"index" json:"barcode"`
	Name        string `json:"name"`
	Active      bool   `gorm:"default:true" json:"active"`
	Type        string `json:"type"` // product, consu, service

	IsWeighable bool    `gorm:"index" json:"is_weighable"`
	UomName     string  `gorm:"default:'kg'" json:"uom_name"`
	Weight      float64 `json:"weight"` // unit weight from the ERP, informational

	LastSyncedAt time.Time      `json:"last_synced_at"`
	RawData      datatypes.JSON `gorm:"type:jsonb" json:"raw_data"`
}

func (ProductProduct) TableName() string { return "product_product" }
