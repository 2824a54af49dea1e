package models

// PurchaseLinked is implemented by records that can carry a purchase order
// link. Callers check the capability with a type assertion instead of
// probing for optional fields.
type PurchaseLinked interface {
	PurchaseLink() (orderID, lineID *int64)
	SetPurchaseLink(orderID, lineID *int64)
}

// SaleLinked is the sale-side counterpart of PurchaseLinked.
type SaleLinked interface {
	SaleLink() (orderID, lineID *int64)
	SetSaleLink(orderID, lineID *int64)
}
