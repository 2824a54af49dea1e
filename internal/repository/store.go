package repository

import (
	"context"
	"errors"

	"github.com/xelth-com/eckscalego/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = gorm.ErrRecordNotFound

var (
	// ErrNoOpenWeighing means no claimable weighing exists for the scale.
	ErrNoOpenWeighing = errors.New("no open weighing record")
	// ErrClaimConflict means the target weighing is locked by a concurrent
	// session. Callers decide whether to retry.
	ErrClaimConflict = errors.New("weighing record is claimed by another session")
)

// Store bundles persistence for the weighbridge engine. The gorm
// implementation backs production; tests substitute an in-memory fake.
type Store interface {
	Weighings() WeighingRepo
	Pickings() PickingRepo
	Orders() OrderRepo
	Trucks() TruckRepo
	Scales() ScaleRepo
	Locations() LocationRepo
	Products() ProductRepo
	Partners() PartnerRepo
	Users() UserRepo

	// Transaction runs fn against a store bound to a single database
	// transaction. Either everything fn persists is visible afterwards
	// or nothing is.
	Transaction(ctx context.Context, fn func(Store) error) error

	// LockWeighing loads a weighing with a row lock held until the
	// surrounding Transaction ends.
	LockWeighing(ctx context.Context, id int64) (*models.TruckWeighing, error)

	// ClaimOpenWeighing atomically locks the most recently created
	// weighing in draft or first state, optionally scoped to one scale.
	// Returns ErrNoOpenWeighing when nothing is claimable and
	// ErrClaimConflict when the candidate is held by another session.
	ClaimOpenWeighing(ctx context.Context, scaleID *int64) (*models.TruckWeighing, error)
}

// WeighingFilter narrows weighing listings.
type WeighingFilter struct {
	State   models.WeighingState
	TruckID int64
	ScaleID int64
	Limit   int
}

type WeighingRepo interface {
	Create(ctx context.Context, w *models.TruckWeighing) error
	Save(ctx context.Context, w *models.TruckWeighing) error
	ByID(ctx context.Context, id int64) (*models.TruckWeighing, error)
	List(ctx context.Context, f WeighingFilter) ([]models.TruckWeighing, error)
	// NextReference draws the next sequential weighing reference (WB/00042).
	NextReference(ctx context.Context) (string, error)
}

type PickingRepo interface {
	// ByID loads a picking with its moves and their products.
	ByID(ctx context.Context, id int64) (*models.StockPicking, error)
	// FindOpenByOrigin returns the first open picking matching the origin
	// string and direction, or ErrNotFound.
	FindOpenByOrigin(ctx context.Context, origin, typeCode string) (*models.StockPicking, error)
	Create(ctx context.Context, p *models.StockPicking) error
	Save(ctx context.Context, p *models.StockPicking) error
	CreateMove(ctx context.Context, m *models.StockMove) error
	MoveLines(ctx context.Context, moveID int64) ([]models.StockMoveLine, error)
	CreateMoveLine(ctx context.Context, ml *models.StockMoveLine) error
	SaveMoveLine(ctx context.Context, ml *models.StockMoveLine) error
	// AddNote appends to the picking's audit trail.
	AddNote(ctx context.Context, pickingID int64, body string) error
	// NextReference draws the next picking name for a direction
	// (WH/IN/00042 or WH/OUT/00042).
	NextReference(ctx context.Context, typeCode string) (string, error)
}

type LocationRepo interface {
	// ByUsage returns the first active location with the given usage
	// (internal, supplier, customer).
	ByUsage(ctx context.Context, usage string) (*models.StockLocation, error)
}

type OrderRepo interface {
	// Purchase/sale lookups preload lines (ordered by sequence then id)
	// and their products.
	PurchaseByID(ctx context.Context, id int64) (*models.PurchaseOrder, error)
	PurchaseByName(ctx context.Context, name string) (*models.PurchaseOrder, error)
	SaleByID(ctx context.Context, id int64) (*models.SaleOrder, error)
	SaleByName(ctx context.Context, name string) (*models.SaleOrder, error)
	// ByLine lookups climb from an order line to its fully loaded order.
	PurchaseByLine(ctx context.Context, lineID int64) (*models.PurchaseOrder, error)
	SaleByLine(ctx context.Context, lineID int64) (*models.SaleOrder, error)
}

type TruckRepo interface {
	ByID(ctx context.Context, id int64) (*models.TruckFleet, error)
	ByPlate(ctx context.Context, plate string) (*models.TruckFleet, error)
	Create(ctx context.Context, t *models.TruckFleet) error
	List(ctx context.Context) ([]models.TruckFleet, error)
}

type ScaleRepo interface {
	ByID(ctx context.Context, id int64) (*models.WeighingScale, error)
	Create(ctx context.Context, s *models.WeighingScale) error
	Save(ctx context.Context, s *models.WeighingScale) error
	List(ctx context.Context) ([]models.WeighingScale, error)
	// FirstEnabled is the fallback scale when an operator has none assigned.
	FirstEnabled(ctx context.Context) (*models.WeighingScale, error)
}

type ProductRepo interface {
	ByID(ctx context.Context, id int64) (*models.ProductProduct, error)
}

type PartnerRepo interface {
	ByID(ctx context.Context, id int64) (*models.ResPartner, error)
}

type UserRepo interface {
	ByUsername(ctx context.Context, username string) (*models.UserAuth, error)
	Save(ctx context.Context, u *models.UserAuth) error
}
