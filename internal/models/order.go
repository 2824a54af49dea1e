package models

import (
	"time"

	"gorm.io/datatypes"
)

// Order states as used by the linker to decide whether an order is eligible
// for weighing.
const (
	PurchaseStateConfirmed = "purchase"
	SaleStateConfirmed     = "sale"
	OrderStateDone         = "done"
)

// PurchaseOrder mirrors 'purchase.order'. Synced from the ERP; the
// weighbridge engine only reads it.
type PurchaseOrder struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"uniqueIndex" json:"name"` // PO00001, used as picking origin
	PartnerID *int64 `gorm:"index" json:"partner_id"`
	State     string `gorm:"index" json:"state"` // draft, purchase, done, cancel

	LastSyncedAt time.Time      `json:"last_synced_at"`
	RawData      datatypes.JSON `gorm:"type:jsonb" json:"raw_data"`

	Partner *ResPartner         `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	Lines   []PurchaseOrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

func (PurchaseOrder) TableName() string { return "purchase_order" }

// PurchaseOrderLine carries ordered vs received quantity for one product.
type PurchaseOrderLine struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	OrderID     int64   `gorm:"index" json:"order_id"`
	ProductID   int64   `gorm:"index" json:"product_id"`
	ProductQty  float64 `json:"product_qty"`  // ordered (KG)
	QtyReceived float64 `json:"qty_received"` // fulfilled so far
	Sequence    int     `gorm:"default:10" json:"sequence"`

	Product *ProductProduct `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (PurchaseOrderLine) TableName() string { return "purchase_order_line" }

// Remaining is the still-unfulfilled ordered quantity.
func (l *PurchaseOrderLine) Remaining() float64 {
	return l.ProductQty - l.QtyReceived
}

// SaleOrder mirrors 'sale.order'.
type SaleOrder struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"uniqueIndex" json:"name"` // SO00001, used as picking origin
	PartnerID *int64 `gorm:"index" json:"partner_id"`
	State     string `gorm:"index" json:"state"` // draft, sale, done, cancel

	LastSyncedAt time.Time      `json:"last_synced_at"`
	RawData      datatypes.JSON `gorm:"type:jsonb" json:"raw_data"`

	Partner *ResPartner     `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	Lines   []SaleOrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

func (SaleOrder) TableName() string { return "sale_order" }

// SaleOrderLine carries ordered vs delivered quantity for one product.
type SaleOrderLine struct {
	ID            int64   `gorm:"primaryKey" json:"id"`
	OrderID       int64   `gorm:"index" json:"order_id"`
	ProductID     int64   `gorm:"index" json:"product_id"`
	ProductUomQty float64 `json:"product_uom_qty"` // ordered (KG)
	QtyDelivered  float64 `json:"qty_delivered"`   // fulfilled so far
	Sequence      int     `gorm:"default:10" json:"sequence"`

	Product *ProductProduct `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (SaleOrderLine) TableName() string { return "sale_order_line" }

// Remaining is the still-undelivered ordered quantity.
func (l *SaleOrderLine) Remaining() float64 {
	return l.ProductUomQty - l.QtyDelivered
}
