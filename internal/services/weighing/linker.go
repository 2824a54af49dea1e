package weighing

import (
	"context"
	"errors"
	"time"

	"github.com/xelth-com/eckscalego/internal/models"
	"github.com/xelth-com/eckscalego/internal/repository"
)

// Linker fills the missing side of the purchase/receipt or sale/delivery
// graph around a weighing record. It runs once per mutation of a link
// field, always prefers existing open documents over creating new ones, and
// never overwrites a field the operator already set. Re-running with the
// same inputs is a no-op.
//
// A target order without any weighable line is not an error: product stays
// unset and the capture operations fail fast instead. A link field pointing
// at a document that does not exist is rejected at resolution time.
type Linker struct {
	store repository.Store
}

// NewLinker builds a Linker on the given store.
func NewLinker(store repository.Store) *Linker {
	return &Linker{store: store}
}

// Resolve runs the full resolution pass over the record in place.
// Only infrastructure failures are returned as errors.
func (l *Linker) Resolve(ctx context.Context, w *models.TruckWeighing) error {
	// An operator-set partner is never touched. A partner derived from a
	// picking below may still be superseded by the order's partner.
	partnerFromOperator := w.PartnerID != nil

	if err := l.resolveFromReceipt(ctx, w); err != nil {
		return err
	}
	if err := l.resolveFromDelivery(ctx, w); err != nil {
		return err
	}
	if err := l.resolveFromPurchase(ctx, w); err != nil {
		return err
	}
	if err := l.resolveFromSale(ctx, w); err != nil {
		return err
	}
	if !partnerFromOperator {
		l.preferOrderPartner(ctx, w)
	}
	l.inferOperation(w)
	return nil
}

// preferOrderPartner overwrites a picking-derived partner with the linked
// order's partner when they disagree.
func (l *Linker) preferOrderPartner(ctx context.Context, w *models.TruckWeighing) {
	switch {
	case w.PurchaseOrderID != nil:
		if order, err := l.store.Orders().PurchaseByID(ctx, *w.PurchaseOrderID); err == nil && order.PartnerID != nil {
			w.PartnerID = order.PartnerID
		}
	case w.SaleOrderID != nil:
		if order, err := l.store.Orders().SaleByID(ctx, *w.SaleOrderID); err == nil && order.PartnerID != nil {
			w.PartnerID = order.PartnerID
		}
	}
}

// inferOperation derives the direction from whichever documents are linked,
// without touching an explicit operator choice.
func (l *Linker) inferOperation(w *models.TruckWeighing) {
	if w.OperationType != "" {
		return
	}
	if w.PurchaseOrderID != nil || w.PickingID != nil {
		w.OperationType = models.OperationIncoming
	} else if w.SaleOrderID != nil || w.DeliveryID != nil {
		w.OperationType = models.OperationOutgoing
	}
}

// resolveFromReceipt copies partner, product and the originating order from
// a linked receipt. An outgoing picking wrongly placed in the receipt slot
// is moved over to the delivery slot.
func (l *Linker) resolveFromReceipt(ctx context.Context, w *models.TruckWeighing) error {
	if w.PickingID == nil {
		return nil
	}
	picking, err := l.store.Pickings().ByID(ctx, *w.PickingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundf("picking %d not found", *w.PickingID)
		}
		return err
	}

	if picking.PickingTypeCode == models.PickingTypeOutgoing {
		if w.DeliveryID == nil {
			w.DeliveryID = w.PickingID
		}
		w.PickingID = nil
		return nil
	}

	if w.PartnerID == nil {
		w.PartnerID = picking.PartnerID
	}
	if w.LocationDestID == nil && picking.LocationDestID != 0 {
		dest := picking.LocationDestID
		w.LocationDestID = &dest
	}

	move := firstWeighableMove(picking.Moves)
	if move == nil {
		return nil
	}
	if w.ProductID == nil {
		pid := move.ProductID
		w.ProductID = &pid
	}
	// Climb to the originating order only when the operator set none.
	if w.PurchaseOrderID == nil && w.SaleOrderID == nil {
		switch {
		case move.PurchaseLineID != nil:
			if err := l.adoptPurchaseLine(ctx, w, *move.PurchaseLineID); err != nil {
				return err
			}
		case move.SaleLineID != nil:
			if err := l.adoptSaleLine(ctx, w, *move.SaleLineID); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveFromDelivery mirrors resolveFromReceipt for the outbound side.
func (l *Linker) resolveFromDelivery(ctx context.Context, w *models.TruckWeighing) error {
	if w.DeliveryID == nil {
		return nil
	}
	delivery, err := l.store.Pickings().ByID(ctx, *w.DeliveryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundf("delivery %d not found", *w.DeliveryID)
		}
		return err
	}

	if w.PartnerID == nil {
		w.PartnerID = delivery.PartnerID
	}
	if w.LocationDestID == nil && delivery.LocationDestID != 0 {
		dest := delivery.LocationDestID
		w.LocationDestID = &dest
	}

	move := firstWeighableMove(delivery.Moves)
	if move == nil {
		return nil
	}
	if w.ProductID == nil {
		pid := move.ProductID
		w.ProductID = &pid
	}
	if w.SaleOrderID == nil && move.SaleLineID != nil {
		if err := l.adoptSaleLine(ctx, w, *move.SaleLineID); err != nil {
			return err
		}
	}
	return nil
}

// resolveFromPurchase picks the canonical weighable line and guarantees a
// receipt exists: an existing open one matching the order's reference, or a
// freshly created and confirmed draft.
func (l *Linker) resolveFromPurchase(ctx context.Context, w *models.TruckWeighing) error {
	if w.PurchaseOrderID == nil {
		return nil
	}
	order, err := l.store.Orders().PurchaseByID(ctx, *w.PurchaseOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundf("purchase order %d not found", *w.PurchaseOrderID)
		}
		return err
	}

	if order.PartnerID != nil && w.PartnerID == nil {
		w.PartnerID = order.PartnerID
	}

	if w.PurchaseLineID == nil && w.ProductID == nil {
		for i := range order.Lines {
			line := &order.Lines[i]
			if line.Product != nil && line.Product.IsWeighable && line.Remaining() > 0 {
				lineID, productID := line.ID, line.ProductID
				w.PurchaseLineID = &lineID
				w.ProductID = &productID
				break
			}
		}
	}

	if w.PickingID != nil {
		return nil
	}

	existing, err := l.store.Pickings().FindOpenByOrigin(ctx, order.Name, models.PickingTypeIncoming)
	if err == nil {
		w.PickingID = &existing.ID
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return l.createReceiptFromPurchase(ctx, w, order)
}

// resolveFromSale is the outbound counterpart of resolveFromPurchase.
func (l *Linker) resolveFromSale(ctx context.Context, w *models.TruckWeighing) error {
	if w.SaleOrderID == nil {
		return nil
	}
	order, err := l.store.Orders().SaleByID(ctx, *w.SaleOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundf("sale order %d not found", *w.SaleOrderID)
		}
		return err
	}

	if order.PartnerID != nil && w.PartnerID == nil {
		w.PartnerID = order.PartnerID
	}

	if w.SaleLineID == nil && w.ProductID == nil {
		for i := range order.Lines {
			line := &order.Lines[i]
			if line.Product != nil && line.Product.IsWeighable && line.Remaining() > 0 {
				lineID, productID := line.ID, line.ProductID
				w.SaleLineID = &lineID
				w.ProductID = &productID
				break
			}
		}
	}

	if w.DeliveryID != nil {
		return nil
	}

	existing, err := l.store.Pickings().FindOpenByOrigin(ctx, order.Name, models.PickingTypeOutgoing)
	if err == nil {
		w.DeliveryID = &existing.ID
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return l.createDeliveryFromSale(ctx, w, order)
}

// createReceiptFromPurchase creates a confirmed receipt with one move per
// order line that still has remaining quantity.
func (l *Linker) createReceiptFromPurchase(ctx context.Context, w *models.TruckWeighing, order *models.PurchaseOrder) error {
	src, err := l.store.Locations().ByUsage(ctx, "supplier")
	if err != nil {
		return err
	}
	dest, err := l.store.Locations().ByUsage(ctx, "internal")
	if err != nil {
		return err
	}

	name, err := l.store.Pickings().NextReference(ctx, models.PickingTypeIncoming)
	if err != nil {
		return err
	}

	picking := models.StockPicking{
		Name:            name,
		State:           models.PickingDraft,
		PickingTypeCode: models.PickingTypeIncoming,
		PartnerID:       order.PartnerID,
		LocationID:      src.ID,
		LocationDestID:  dest.ID,
		Origin:          order.Name,
		ScheduledDate:   time.Now().UTC(),
	}
	if err := l.store.Pickings().Create(ctx, &picking); err != nil {
		return err
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		if line.Remaining() <= 0 {
			continue
		}
		lineID := line.ID
		move := models.StockMove{
			PickingID:      picking.ID,
			ProductID:      line.ProductID,
			ProductUomQty:  line.Remaining(),
			LocationID:     src.ID,
			LocationDestID: dest.ID,
			Sequence:       line.Sequence,
			PurchaseLineID: &lineID,
		}
		if err := l.store.Pickings().CreateMove(ctx, &move); err != nil {
			return err
		}
	}

	picking.State = models.PickingConfirmed
	if err := l.store.Pickings().Save(ctx, &picking); err != nil {
		return err
	}

	w.PickingID = &picking.ID
	w.LocationDestID = &dest.ID
	return nil
}

// createDeliveryFromSale creates a confirmed delivery with one move per
// order line that still has remaining quantity.
func (l *Linker) createDeliveryFromSale(ctx context.Context, w *models.TruckWeighing, order *models.SaleOrder) error {
	src, err := l.store.Locations().ByUsage(ctx, "internal")
	if err != nil {
		return err
	}
	dest, err := l.store.Locations().ByUsage(ctx, "customer")
	if err != nil {
		return err
	}

	name, err := l.store.Pickings().NextReference(ctx, models.PickingTypeOutgoing)
	if err != nil {
		return err
	}

	picking := models.StockPicking{
		Name:            name,
		State:           models.PickingDraft,
		PickingTypeCode: models.PickingTypeOutgoing,
		PartnerID:       order.PartnerID,
		LocationID:      src.ID,
		LocationDestID:  dest.ID,
		Origin:          order.Name,
		ScheduledDate:   time.Now().UTC(),
	}
	if err := l.store.Pickings().Create(ctx, &picking); err != nil {
		return err
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		if line.Remaining() <= 0 {
			continue
		}
		lineID := line.ID
		move := models.StockMove{
			PickingID:      picking.ID,
			ProductID:      line.ProductID,
			ProductUomQty:  line.Remaining(),
			LocationID:     src.ID,
			LocationDestID: dest.ID,
			Sequence:       line.Sequence,
			SaleLineID:     &lineID,
		}
		if err := l.store.Pickings().CreateMove(ctx, &move); err != nil {
			return err
		}
	}

	picking.State = models.PickingConfirmed
	if err := l.store.Pickings().Save(ctx, &picking); err != nil {
		return err
	}

	w.DeliveryID = &picking.ID
	w.LocationDestID = &dest.ID
	return nil
}

// adoptPurchaseLine climbs from a move's originating line to its order and
// records the link. A line the ERP sync has not delivered yet is skipped.
func (l *Linker) adoptPurchaseLine(ctx context.Context, dst models.PurchaseLinked, lineID int64) error {
	order, err := l.store.Orders().PurchaseByLine(ctx, lineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	dst.SetPurchaseLink(&order.ID, &lineID)
	return nil
}

// adoptSaleLine is the outbound counterpart of adoptPurchaseLine.
func (l *Linker) adoptSaleLine(ctx context.Context, dst models.SaleLinked, lineID int64) error {
	order, err := l.store.Orders().SaleByLine(ctx, lineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	dst.SetSaleLink(&order.ID, &lineID)
	return nil
}

func firstWeighableMove(moves []models.StockMove) *models.StockMove {
	for i := range moves {
		if moves[i].Product != nil && moves[i].Product.IsWeighable {
			return &moves[i]
		}
	}
	return nil
}
