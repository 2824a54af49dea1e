package weighing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xelth-com/eckscalego/internal/models"
	"github.com/xelth-com/eckscalego/internal/repository"
)

// VarianceKind classifies the measured quantity against the document demand.
type VarianceKind string

const (
	VarianceOver  VarianceKind = "over_delivery"
	VarianceExact VarianceKind = "exact"
	VarianceUnder VarianceKind = "under_delivery"
)

// ReconcileResult summarizes one reconciliation for callers and the audit
// trail.
type ReconcileResult struct {
	PickingID   int64        `json:"picking_id"`
	PickingName string       `json:"picking_name"`
	MoveID      int64        `json:"move_id"`
	NetWeight   float64      `json:"net_weight"`
	Demand      float64      `json:"demand"`
	Variance    float64      `json:"variance"` // net - demand
	Kind        VarianceKind `json:"kind"`
	Note        string       `json:"note"`
}

// Reconciler writes a completed weighing's net weight into the linked
// receipt or delivery. Demand on the document is never modified; the
// measured quantity lands on move lines and the variance is recorded as a
// note on the picking.
type Reconciler struct {
	store repository.Store
}

func NewReconciler(store repository.Store) *Reconciler {
	return &Reconciler{store: store}
}

// Apply pushes w.NetWeight into the picking matching the weighing's
// direction. The caller provides the transactional store and is responsible
// for the weighing's own state transition.
func (r *Reconciler) Apply(ctx context.Context, w *models.TruckWeighing) (*ReconcileResult, error) {
	if w.ProductID == nil {
		return nil, ErrProductRequired
	}

	pickingID, err := r.targetPicking(w)
	if err != nil {
		return nil, err
	}

	picking, err := r.store.Pickings().ByID(ctx, pickingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("picking %d not found", pickingID)
		}
		return nil, err
	}
	if !picking.IsOpen() {
		return nil, &ValidationError{Msg: fmt.Sprintf("picking %s is %s and cannot receive quantities", picking.Name, picking.State)}
	}

	move := moveForProduct(picking.Moves, *w.ProductID)
	if move == nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("product %d has no line on %s", *w.ProductID, picking.Name)}
	}

	if err := r.makeAssignable(ctx, picking); err != nil {
		return nil, err
	}

	if err := r.writeQuantity(ctx, picking, move, w.NetWeight); err != nil {
		return nil, err
	}

	result := classify(w, picking, move)
	if err := r.store.Pickings().AddNote(ctx, picking.ID, result.Note); err != nil {
		return nil, err
	}
	return result, nil
}

// targetPicking selects the receipt for incoming and the delivery for
// outgoing operations.
func (r *Reconciler) targetPicking(w *models.TruckWeighing) (int64, error) {
	switch w.OperationType {
	case models.OperationIncoming:
		if w.PickingID == nil {
			return 0, ErrNoDocumentLinked
		}
		return *w.PickingID, nil
	case models.OperationOutgoing:
		if w.DeliveryID == nil {
			return 0, ErrNoDocumentLinked
		}
		return *w.DeliveryID, nil
	}
	return 0, &ValidationError{Msg: "operation type not set"}
}

// makeAssignable walks the picking forward one state at a time until
// quantities can be written: draft and waiting pickings are confirmed first,
// confirmed ones assigned. Already assigned pickings are left alone.
func (r *Reconciler) makeAssignable(ctx context.Context, p *models.StockPicking) error {
	for p.State != models.PickingAssigned {
		switch p.State {
		case models.PickingDraft, models.PickingWaiting:
			p.State = models.PickingConfirmed
		case models.PickingConfirmed:
			p.State = models.PickingAssigned
		default:
			return &ValidationError{Msg: fmt.Sprintf("picking %s is %s", p.Name, p.State)}
		}
		if err := r.store.Pickings().Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// writeQuantity spreads the net weight over the move's lines: existing lines
// all get the measured value replaced, a move without lines gets one created
// with the picking's locations.
func (r *Reconciler) writeQuantity(ctx context.Context, p *models.StockPicking, m *models.StockMove, net float64) error {
	lines, err := r.store.Pickings().MoveLines(ctx, m.ID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return r.store.Pickings().CreateMoveLine(ctx, &models.StockMoveLine{
			MoveID:         m.ID,
			PickingID:      p.ID,
			ProductID:      m.ProductID,
			LocationID:     p.LocationID,
			LocationDestID: p.LocationDestID,
			Quantity:       net,
		})
	}
	for i := range lines {
		lines[i].Quantity = net
		if err := r.store.Pickings().SaveMoveLine(ctx, &lines[i]); err != nil {
			return err
		}
	}
	return nil
}

// classify computes the variance with exact decimal arithmetic so values
// like 18300 - 18000 never pick up float drift, and renders the audit note.
func classify(w *models.TruckWeighing, p *models.StockPicking, m *models.StockMove) *ReconcileResult {
	net := decimal.NewFromFloat(w.NetWeight)
	demand := decimal.NewFromFloat(m.ProductUomQty)
	variance := net.Sub(demand)

	res := &ReconcileResult{
		PickingID:   p.ID,
		PickingName: p.Name,
		MoveID:      m.ID,
		NetWeight:   w.NetWeight,
		Demand:      m.ProductUomQty,
	}
	res.Variance, _ = variance.Float64()
	switch variance.Sign() {
	case 1:
		res.Kind = VarianceOver
	case -1:
		res.Kind = VarianceUnder
	default:
		res.Kind = VarianceExact
	}

	res.Note = renderNote(w, m, variance, res.Kind)
	return res
}

func renderNote(w *models.TruckWeighing, m *models.StockMove, variance decimal.Decimal, kind VarianceKind) string {
	verb := "Received"
	if w.OperationType == models.OperationOutgoing {
		verb = "Delivered"
	}
	uom := "KG"
	product := fmt.Sprintf("product %d", m.ProductID)
	if m.Product != nil {
		product = m.Product.Name
		if m.Product.UomName != "" {
			uom = strings.ToUpper(m.Product.UomName)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s of %s (Demand: %s %s)",
		verb, trimDecimal(decimal.NewFromFloat(w.NetWeight)), uom, product,
		trimDecimal(decimal.NewFromFloat(m.ProductUomQty)), uom)
	switch kind {
	case VarianceOver:
		fmt.Fprintf(&b, " - Over-delivery: +%s %s", trimDecimal(variance), uom)
	case VarianceUnder:
		fmt.Fprintf(&b, " - Under-delivery: %s %s", trimDecimal(variance), uom)
	default:
		b.WriteString(" - Exact match")
	}
	fmt.Fprintf(&b, " (from weighing %s)", w.Name)
	return b.String()
}

func trimDecimal(d decimal.Decimal) string {
	return d.Truncate(3).String()
}

func moveForProduct(moves []models.StockMove, productID int64) *models.StockMove {
	for i := range moves {
		if moves[i].ProductID == productID {
			return &moves[i]
		}
	}
	return nil
}
