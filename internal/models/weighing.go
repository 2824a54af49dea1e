package models

import (
	"time"
)

// WeighingState is the lifecycle state of a truck weighing record.
type WeighingState string

const (
	WeighingDraft  WeighingState = "draft"  // created, nothing captured yet
	WeighingFirst  WeighingState = "first"  // first weight captured
	WeighingSecond WeighingState = "second" // second weight captured, ready for reconciliation
	WeighingDone   WeighingState = "done"   // net weight written to the linked document
	WeighingCancel WeighingState = "cancel" // abandoned; terminal
)

// OperationType determines which weight is captured first. Incoming trucks
// arrive loaded (gross first), outgoing trucks arrive empty (tare first).
type OperationType string

const (
	OperationIncoming OperationType = "incoming"
	OperationOutgoing OperationType = "outgoing"
)

// TruckWeighing is one pass of a truck over the weighbridge: two weight
// captures and a reconciliation against a receipt or delivery.
// Records are soft-terminated via the cancel state, never deleted.
type TruckWeighing struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"uniqueIndex;not null" json:"name"` // WB/00042
	Barcode string `gorm:"index" json:"barcode"`             // mirrors Name

	// Scale used for this record. Weak reference, assigned by operator
	// defaults at creation.
	ScaleID *int64 `gorm:"index" json:"scale_id"`

	// Truck & driver
	TruckID    int64  `gorm:"not null;index" json:"truck_id"`
	TruckPlate string `gorm:"index" json:"truck_plate"` // denormalized from truck
	DriverName string `json:"driver_name"`              // copied from truck, operator may override

	// Counterparty and subject
	PartnerID     *int64        `gorm:"index" json:"partner_id"`
	ProductID     *int64        `gorm:"index" json:"product_id"` // required before first capture
	OperationType OperationType `gorm:"index" json:"operation_type"`

	// Document links. All weak references; the linker fills the missing
	// side of the purchase/receipt or sale/delivery graph.
	PurchaseOrderID *int64 `gorm:"index" json:"purchase_order_id"`
	PurchaseLineID  *int64 `json:"purchase_line_id"`
	SaleOrderID     *int64 `gorm:"index" json:"sale_order_id"`
	SaleLineID      *int64 `json:"sale_line_id"`
	PickingID       *int64 `gorm:"index" json:"picking_id"`  // receipt
	DeliveryID      *int64 `gorm:"index" json:"delivery_id"` // delivery
	LocationDestID  *int64 `json:"location_dest_id"`

	// Weights (KG). LiveWeight is the last raw scale read, not committed.
	LiveWeight  float64 `json:"live_weight"`
	GrossWeight float64 `json:"gross_weight"`
	TareWeight  float64 `json:"tare_weight"`
	NetWeight   float64 `json:"net_weight"` // gross - tare when both > 0, else 0

	State WeighingState `gorm:"default:'draft';index" json:"state"`

	// Raw timestamps, kept for external waiting-time aggregation.
	WeighingDate time.Time  `gorm:"autoCreateTime" json:"weighing_date"`
	GrossDate    *time.Time `json:"gross_date"`
	TareDate     *time.Time `json:"tare_date"`
	FirstTime    *time.Time `json:"first_time"`
	SecondTime   *time.Time `json:"second_time"`
	DoneTime     *time.Time `json:"done_time"`

	Notes string `gorm:"type:text" json:"notes"`

	// Relations
	Truck   *TruckFleet     `gorm:"foreignKey:TruckID" json:"truck,omitempty"`
	Scale   *WeighingScale  `gorm:"foreignKey:ScaleID" json:"scale,omitempty"`
	Product *ProductProduct `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Partner *ResPartner     `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
}

func (TruckWeighing) TableName() string { return "truck_weighing" }

// ComputeNet recomputes NetWeight. Net is forced to 0 unless both captured
// weights are strictly positive, so it can never go negative.
func (w *TruckWeighing) ComputeNet() {
	if w.GrossWeight > 0 && w.TareWeight > 0 {
		w.NetWeight = w.GrossWeight - w.TareWeight
	} else {
		w.NetWeight = 0
	}
}

// IsOpen reports whether the record can still accept a weight capture.
func (w *TruckWeighing) IsOpen() bool {
	return w.State == WeighingDraft || w.State == WeighingFirst
}

// WaitingMinutes returns minutes spent in each phase: creation to first
// capture, first to second, second to done. Phases not reached are 0.
func (w *TruckWeighing) WaitingMinutes() (toFirst, toSecond, toDone float64) {
	if w.FirstTime != nil {
		toFirst = w.FirstTime.Sub(w.WeighingDate).Minutes()
	}
	if w.FirstTime != nil && w.SecondTime != nil {
		toSecond = w.SecondTime.Sub(*w.FirstTime).Minutes()
	}
	if w.SecondTime != nil && w.DoneTime != nil {
		toDone = w.DoneTime.Sub(*w.SecondTime).Minutes()
	}
	return
}

// PurchaseLink implements PurchaseLinked.
func (w *TruckWeighing) PurchaseLink() (orderID, lineID *int64) {
	return w.PurchaseOrderID, w.PurchaseLineID
}

// SetPurchaseLink implements PurchaseLinked.
func (w *TruckWeighing) SetPurchaseLink(orderID, lineID *int64) {
	w.PurchaseOrderID = orderID
	w.PurchaseLineID = lineID
}

// SaleLink implements SaleLinked.
func (w *TruckWeighing) SaleLink() (orderID, lineID *int64) {
	return w.SaleOrderID, w.SaleLineID
}

// SetSaleLink implements SaleLinked.
func (w *TruckWeighing) SetSaleLink(orderID, lineID *int64) {
	w.SaleOrderID = orderID
	w.SaleLineID = lineID
}
