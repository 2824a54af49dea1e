package models

import (
	"time"
)

// PickingState follows the standard fulfillment progression. Measured
// quantities can only be written once a picking is assignable.
type PickingState string

const (
	PickingDraft     PickingState = "draft"
	PickingWaiting   PickingState = "waiting"
	PickingConfirmed PickingState = "confirmed"
	PickingAssigned  PickingState = "assigned"
	PickingDone      PickingState = "done"
	PickingCancel    PickingState = "cancel"
)

// Picking type codes (direction).
const (
	PickingTypeIncoming = "incoming"
	PickingTypeOutgoing = "outgoing"
)

// StockLocation mirrors 'stock.location'.
type StockLocation struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Name         string `json:"name"`
	CompleteName string `gorm:"index" json:"complete_name"` // "WH/Stock"
	Usage        string `json:"usage"`                      // internal, supplier, customer
	LocationID   *int64 `json:"location_id"`                // parent
	Active       bool   `gorm:"default:true" json:"active"`
}

func (StockLocation) TableName() string { return "stock_location" }

// StockPicking is a receipt (incoming) or delivery (outgoing) document.
type StockPicking struct {
	ID              int64        `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"uniqueIndex" json:"name"` // WH/IN/00001
	State           PickingState `gorm:"index;default:'draft'" json:"state"`
	PickingTypeCode string       `gorm:"index" json:"picking_type_code"` // incoming | outgoing
	PartnerID       *int64       `gorm:"index" json:"partner_id"`
	LocationID      int64        `json:"location_id"`      // source
	LocationDestID  int64        `json:"location_dest_id"` // destination
	Origin          string       `gorm:"index" json:"origin"`
	ScheduledDate   time.Time    `json:"scheduled_date"`

	Partner *ResPartner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	Moves   []StockMove `gorm:"foreignKey:PickingID" json:"moves,omitempty"`
}

func (StockPicking) TableName() string { return "stock_picking" }

// IsOpen reports whether the picking can still be linked to a weighing.
func (p *StockPicking) IsOpen() bool {
	switch p.State {
	case PickingDraft, PickingWaiting, PickingConfirmed, PickingAssigned:
		return true
	}
	return false
}

// StockMove is one product line on a picking carrying the demanded quantity.
// The demanded quantity is never touched by the weighbridge; measured
// quantities live on move lines.
type StockMove struct {
	ID             int64   `gorm:"primaryKey" json:"id"`
	PickingID      int64   `gorm:"index" json:"picking_id"`
	ProductID      int64   `gorm:"index" json:"product_id"`
	ProductUomQty  float64 `json:"product_uom_qty"` // demand (KG)
	LocationID     int64   `json:"location_id"`
	LocationDestID int64   `json:"location_dest_id"`
	Sequence       int     `gorm:"default:10" json:"sequence"`

	// Originating order line, when the picking was generated from an order.
	PurchaseLineID *int64 `gorm:"index" json:"purchase_line_id"`
	SaleLineID     *int64 `gorm:"index" json:"sale_line_id"`

	Product *ProductProduct `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (StockMove) TableName() string { return "stock_move" }

// StockMoveLine holds the measured quantity for a move.
type StockMoveLine struct {
	ID             int64   `gorm:"primaryKey" json:"id"`
	MoveID         int64   `gorm:"index" json:"move_id"`
	PickingID      int64   `gorm:"index" json:"picking_id"`
	ProductID      int64   `gorm:"index" json:"product_id"`
	LocationID     int64   `json:"location_id"`
	LocationDestID int64   `json:"location_dest_id"`
	Quantity       float64 `json:"quantity"` // measured (KG)
}

func (StockMoveLine) TableName() string { return "stock_move_line" }

// DocumentNote is the audit trail posted on pickings, e.g. the
// reconciliation summary written after a weighing completes.
type DocumentNote struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	PickingID int64     `gorm:"index" json:"picking_id"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (DocumentNote) TableName() string { return "stock_picking_note" }
