// Package weighing implements the weighbridge transaction engine: the
// two-capture state machine, document link resolution, and inventory
// reconciliation against receipts and deliveries.
package weighing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/xelth-com/eckscalego/internal/models"
	"github.com/xelth-com/eckscalego/internal/repository"
	"github.com/xelth-com/eckscalego/internal/scale"
)

// Notifier receives weighing events for live dashboards. Implementations
// must not block.
type Notifier interface {
	WeighingChanged(w *models.TruckWeighing)
	LiveWeight(scaleID *int64, weight float64)
}

type noopNotifier struct{}

func (noopNotifier) WeighingChanged(*models.TruckWeighing) {}
func (noopNotifier) LiveWeight(*int64, float64)            {}

// Service drives truck weighings from creation through reconciliation.
// All state transitions run inside a store transaction holding the record's
// row lock, so capture, reconcile, cancel and the hardware push are mutually
// exclusive per record.
type Service struct {
	store    repository.Store
	gateway  scale.Gateway
	notifier Notifier
}

// NewService wires the engine. A nil notifier disables event publishing.
func NewService(store repository.Store, gateway scale.Gateway, notifier Notifier) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{store: store, gateway: gateway, notifier: notifier}
}

// CreateParams is the operator input for a new weighing record.
type CreateParams struct {
	TruckID       int64                `json:"truck_id"`
	DriverName    string               `json:"driver_name"`
	OperationType models.OperationType `json:"operation_type"`
	ScaleID       *int64               `json:"scale_id"`
	PartnerID     *int64               `json:"partner_id"`
	ProductID     *int64               `json:"product_id"`

	PurchaseOrderID *int64 `json:"purchase_order_id"`
	SaleOrderID     *int64 `json:"sale_order_id"`
	PickingID       *int64 `json:"picking_id"`
	DeliveryID      *int64 `json:"delivery_id"`

	Notes string `json:"notes"`

	// Username of the creating operator, used for scale defaulting.
	Username string `json:"-"`
}

// Create opens a new weighing record in draft, copying truck defaults,
// defaulting the scale from the operator's assignment and resolving document
// links.
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.TruckWeighing, error) {
	truck, err := s.store.Trucks().ByID(ctx, p.TruckID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("truck %d not found", p.TruckID)
		}
		return nil, err
	}

	w := &models.TruckWeighing{
		TruckID:         truck.ID,
		TruckPlate:      truck.PlateNumber,
		DriverName:      p.DriverName,
		OperationType:   p.OperationType,
		ScaleID:         p.ScaleID,
		PartnerID:       p.PartnerID,
		ProductID:       p.ProductID,
		PurchaseOrderID: p.PurchaseOrderID,
		SaleOrderID:     p.SaleOrderID,
		PickingID:       p.PickingID,
		DeliveryID:      p.DeliveryID,
		Notes:           p.Notes,
		State:           models.WeighingDraft,
	}
	if w.DriverName == "" {
		w.DriverName = truck.DriverName
	}
	if w.ScaleID == nil {
		w.ScaleID = s.defaultScale(ctx, p.Username)
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		name, err := tx.Weighings().NextReference(ctx)
		if err != nil {
			return err
		}
		w.Name = name
		w.Barcode = name

		if err := NewLinker(tx).Resolve(ctx, w); err != nil {
			return err
		}
		return tx.Weighings().Create(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("⚖️ Weighing %s created for truck %s (%s)", w.Name, w.TruckPlate, w.OperationType)
	s.notifier.WeighingChanged(w)
	return w, nil
}

// defaultScale picks the operator's preferred scale, falling back to the
// first enabled one. No scale at all is tolerated here; FetchLiveWeight
// reports it when it matters.
func (s *Service) defaultScale(ctx context.Context, username string) *int64 {
	if username != "" {
		if user, err := s.store.Users().ByUsername(ctx, username); err == nil {
			if id := user.PreferredScale(); id != nil {
				return id
			}
		}
	}
	if sc, err := s.store.Scales().FirstEnabled(ctx); err == nil {
		return &sc.ID
	}
	return nil
}

// Get loads one weighing record.
func (s *Service) Get(ctx context.Context, id int64) (*models.TruckWeighing, error) {
	w, err := s.store.Weighings().ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("weighing %d not found", id)
		}
		return nil, err
	}
	return w, nil
}

// List returns weighing records matching the filter, newest first.
func (s *Service) List(ctx context.Context, f repository.WeighingFilter) ([]models.TruckWeighing, error) {
	return s.store.Weighings().List(ctx, f)
}

// UpdateParams carries operator edits to an open record. Nil pointers leave
// the field untouched.
type UpdateParams struct {
	DriverName    *string               `json:"driver_name"`
	OperationType *models.OperationType `json:"operation_type"`
	ScaleID       *int64                `json:"scale_id"`
	PartnerID     *int64                `json:"partner_id"`
	ProductID     *int64                `json:"product_id"`

	PurchaseOrderID *int64 `json:"purchase_order_id"`
	SaleOrderID     *int64 `json:"sale_order_id"`
	PickingID       *int64 `json:"picking_id"`
	DeliveryID      *int64 `json:"delivery_id"`

	Notes *string `json:"notes"`
}

// Update applies edits and re-resolves document links. Allowed on any
// non-terminal record.
func (s *Service) Update(ctx context.Context, id int64, p UpdateParams) (*models.TruckWeighing, error) {
	var w *models.TruckWeighing
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		w, err = tx.LockWeighing(ctx, id)
		if err != nil {
			return mapLockErr(err, id)
		}
		if w.State == models.WeighingDone {
			return ErrAlreadyDone
		}
		if w.State == models.WeighingCancel {
			return ErrCancelled
		}

		if p.DriverName != nil {
			w.DriverName = *p.DriverName
		}
		if p.OperationType != nil {
			w.OperationType = *p.OperationType
		}
		if p.ScaleID != nil {
			w.ScaleID = p.ScaleID
		}
		if p.PartnerID != nil {
			w.PartnerID = p.PartnerID
		}
		if p.ProductID != nil {
			w.ProductID = p.ProductID
		}
		if p.PurchaseOrderID != nil {
			w.PurchaseOrderID = p.PurchaseOrderID
			w.PurchaseLineID = nil
		}
		if p.SaleOrderID != nil {
			w.SaleOrderID = p.SaleOrderID
			w.SaleLineID = nil
		}
		if p.PickingID != nil {
			w.PickingID = p.PickingID
		}
		if p.DeliveryID != nil {
			w.DeliveryID = p.DeliveryID
		}
		if p.Notes != nil {
			w.Notes = *p.Notes
		}

		if err := NewLinker(tx).Resolve(ctx, w); err != nil {
			return err
		}
		return tx.Weighings().Save(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.WeighingChanged(w)
	return w, nil
}

// FetchLiveWeight reads the assigned scale and stores the raw value on the
// record without committing it to either weight slot. The gateway read can
// block for the scale timeout, so it runs without the row lock; the record is
// re-read under the lock before saving so a hardware push landing mid-read is
// never overwritten.
func (s *Service) FetchLiveWeight(ctx context.Context, id int64) (*models.TruckWeighing, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !w.IsOpen() && w.State != models.WeighingSecond {
		return nil, invalidSequencef("weighing %s is %s; no further weight reads", w.Name, w.State)
	}
	if w.ScaleID == nil {
		return nil, ErrNoScaleAssigned
	}
	sc, err := s.store.Scales().ByID(ctx, *w.ScaleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundf("scale %d not found", *w.ScaleID)
		}
		return nil, err
	}

	weight, err := s.gateway.ReadWeight(ctx, sc)
	if err != nil {
		return nil, &UnavailableError{Msg: "scale read failed", Err: err}
	}

	now := time.Now().UTC()
	sc.LastReadWeight = weight
	sc.LastReadDate = &now
	sc.ConnectionStatus = models.ScaleConnected
	sc.ErrorMessage = ""
	if err := s.store.Scales().Save(ctx, sc); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		w, err = tx.LockWeighing(ctx, id)
		if err != nil {
			return mapLockErr(err, id)
		}
		if !w.IsOpen() && w.State != models.WeighingSecond {
			return invalidSequencef("weighing %s is %s; no further weight reads", w.Name, w.State)
		}
		w.LiveWeight = weight
		return tx.Weighings().Save(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.LiveWeight(w.ScaleID, weight)
	return w, nil
}

// CaptureFirst commits the current live weight as the first measurement.
func (s *Service) CaptureFirst(ctx context.Context, id int64) (*models.TruckWeighing, error) {
	return s.transition(ctx, id, func(w *models.TruckWeighing) error {
		return captureFirst(w, w.LiveWeight, time.Now().UTC())
	})
}

// CaptureSecond commits the current live weight as the second measurement.
func (s *Service) CaptureSecond(ctx context.Context, id int64) (*models.TruckWeighing, error) {
	return s.transition(ctx, id, func(w *models.TruckWeighing) error {
		return captureSecond(w, w.LiveWeight, time.Now().UTC())
	})
}

// Cancel abandons a record. Terminal; done records cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id int64) (*models.TruckWeighing, error) {
	return s.transition(ctx, id, func(w *models.TruckWeighing) error {
		switch w.State {
		case models.WeighingDone:
			return ErrAlreadyDone
		case models.WeighingCancel:
			return nil
		}
		w.State = models.WeighingCancel
		return nil
	})
}

// Reconcile writes the net weight into the linked document and closes the
// record. The document mutation and the state transition share one
// transaction; any failure leaves the record in second.
func (s *Service) Reconcile(ctx context.Context, id int64) (*models.TruckWeighing, *ReconcileResult, error) {
	var (
		w   *models.TruckWeighing
		res *ReconcileResult
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		w, err = tx.LockWeighing(ctx, id)
		if err != nil {
			return mapLockErr(err, id)
		}
		res, err = reconcile(ctx, tx, w, time.Now().UTC())
		if err != nil {
			return err
		}
		return tx.Weighings().Save(ctx, w)
	})
	if err != nil {
		return nil, nil, err
	}
	log.Printf("✅ Weighing %s reconciled: %s", w.Name, res.Note)
	s.notifier.WeighingChanged(w)
	return w, res, nil
}

// PushResult is the outcome of one hardware weight push.
type PushResult struct {
	Weighing *models.TruckWeighing
	Message  string
}

// ApplyScalePush handles an unsolicited weight from the scale middleware:
// claim the open record, then advance it one step. A record in draft takes
// the value as its first weight; a record in first takes it as the second
// and reconciliation is attempted immediately.
func (s *Service) ApplyScalePush(ctx context.Context, scaleID *int64, weight float64) (*PushResult, error) {
	if weight <= 0 {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid weight: %v", weight)}
	}

	var out PushResult
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		w, err := tx.ClaimOpenWeighing(ctx, scaleID)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrNoOpenWeighing):
				return &NotFoundError{Msg: "no open weighing record to receive this weight"}
			case errors.Is(err, repository.ErrClaimConflict):
				return &ConflictError{Msg: "weighing record is busy; weight not applied"}
			}
			return err
		}

		now := time.Now().UTC()
		w.LiveWeight = weight

		switch w.State {
		case models.WeighingDraft:
			if err := captureFirst(w, weight, now); err != nil {
				return err
			}
			out.Message = fmt.Sprintf("First weight captured: %.1f KG for %s", weight, w.Name)

		case models.WeighingFirst:
			if err := captureSecond(w, weight, now); err != nil {
				return err
			}
			out.Message = fmt.Sprintf("Second weight captured: %.1f KG for %s (net %.1f KG)", weight, w.Name, w.NetWeight)

			if _, err := reconcile(ctx, tx, w, now); err != nil {
				switch err.(type) {
				case *ValidationError, *NotFoundError:
					// Keep the captured weight; the operator reconciles later.
					log.Printf("⚠️ Weighing %s not reconciled after push: %v", w.Name, err)
				default:
					return err
				}
			} else {
				out.Message += " - inventory updated"
			}
		}

		out.Weighing = w
		return tx.Weighings().Save(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.LiveWeight(scaleID, weight)
	s.notifier.WeighingChanged(out.Weighing)
	return &out, nil
}

// transition runs a mutation under the record's row lock and persists it.
func (s *Service) transition(ctx context.Context, id int64, fn func(*models.TruckWeighing) error) (*models.TruckWeighing, error) {
	var w *models.TruckWeighing
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		w, err = tx.LockWeighing(ctx, id)
		if err != nil {
			return mapLockErr(err, id)
		}
		if err := fn(w); err != nil {
			return err
		}
		return tx.Weighings().Save(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.WeighingChanged(w)
	return w, nil
}

// captureFirst applies the first measurement: gross for incoming trucks,
// tare for outgoing.
func captureFirst(w *models.TruckWeighing, weight float64, now time.Time) error {
	switch w.State {
	case models.WeighingDone:
		return ErrAlreadyDone
	case models.WeighingCancel:
		return ErrCancelled
	case models.WeighingFirst, models.WeighingSecond:
		return invalidSequencef("first weight already captured on %s", w.Name)
	}
	if w.ProductID == nil {
		return ErrProductRequired
	}
	if weight <= 0 {
		return ErrLiveWeightNotFetched
	}

	switch w.OperationType {
	case models.OperationOutgoing:
		w.TareWeight = weight
		w.TareDate = &now
	default:
		w.OperationType = models.OperationIncoming
		w.GrossWeight = weight
		w.GrossDate = &now
	}
	w.FirstTime = &now
	w.State = models.WeighingFirst
	w.ComputeNet()
	return nil
}

// captureSecond applies the second measurement and enforces the direction's
// ordering: an incoming tare must be below the gross, an outgoing gross
// above the tare.
func captureSecond(w *models.TruckWeighing, weight float64, now time.Time) error {
	switch w.State {
	case models.WeighingDone:
		return ErrAlreadyDone
	case models.WeighingCancel:
		return ErrCancelled
	case models.WeighingDraft:
		return invalidSequencef("capture the first weight on %s before the second", w.Name)
	case models.WeighingSecond:
		return invalidSequencef("second weight already captured on %s", w.Name)
	}
	if weight <= 0 {
		return ErrLiveWeightNotFetched
	}

	switch w.OperationType {
	case models.OperationOutgoing:
		if weight <= w.TareWeight {
			return invalidSequencef("gross weight %.1f KG must exceed tare weight %.1f KG", weight, w.TareWeight)
		}
		w.GrossWeight = weight
		w.GrossDate = &now
	default:
		if weight >= w.GrossWeight {
			return invalidSequencef("tare weight %.1f KG must be below gross weight %.1f KG", weight, w.GrossWeight)
		}
		w.TareWeight = weight
		w.TareDate = &now
	}
	w.SecondTime = &now
	w.State = models.WeighingSecond
	w.ComputeNet()
	return nil
}

// reconcile validates readiness, applies the document mutation and marks the
// record done. Runs inside the caller's transaction with the row lock held.
func reconcile(ctx context.Context, tx repository.Store, w *models.TruckWeighing, now time.Time) (*ReconcileResult, error) {
	switch w.State {
	case models.WeighingDone:
		return nil, ErrAlreadyDone
	case models.WeighingCancel:
		return nil, ErrCancelled
	case models.WeighingDraft, models.WeighingFirst:
		return nil, ErrNotReadyForReconciliation
	}
	if w.NetWeight <= 0 {
		return nil, ErrNotReadyForReconciliation
	}

	res, err := NewReconciler(tx).Apply(ctx, w)
	if err != nil {
		return nil, err
	}
	w.State = models.WeighingDone
	w.DoneTime = &now
	return res, nil
}

func mapLockErr(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundf("weighing %d not found", id)
	}
	return err
}
