package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xelth-com/eckscalego/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore is the PostgreSQL-backed Store.
type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm connection in a Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Weighings() WeighingRepo { return &gormWeighingRepo{db: s.db} }
func (s *gormStore) Pickings() PickingRepo   { return &gormPickingRepo{db: s.db} }
func (s *gormStore) Orders() OrderRepo       { return &gormOrderRepo{db: s.db} }
func (s *gormStore) Trucks() TruckRepo       { return &gormTruckRepo{db: s.db} }
func (s *gormStore) Scales() ScaleRepo       { return &gormScaleRepo{db: s.db} }
func (s *gormStore) Locations() LocationRepo { return &gormLocationRepo{db: s.db} }
func (s *gormStore) Products() ProductRepo   { return &gormProductRepo{db: s.db} }
func (s *gormStore) Partners() PartnerRepo   { return &gormPartnerRepo{db: s.db} }
func (s *gormStore) Users() UserRepo         { return &gormUserRepo{db: s.db} }

func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) LockWeighing(ctx context.Context, id int64) (*models.TruckWeighing, error) {
	var w models.TruckWeighing
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&w, id).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *gormStore) ClaimOpenWeighing(ctx context.Context, scaleID *int64) (*models.TruckWeighing, error) {
	q := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
		Where("state IN ?", []models.WeighingState{models.WeighingDraft, models.WeighingFirst})
	if scaleID != nil {
		q = q.Where("scale_id = ?", *scaleID)
	}

	var w models.TruckWeighing
	err := q.Order("weighing_date DESC, id DESC").First(&w).Error
	if err == nil {
		return &w, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoOpenWeighing
	}
	// 55P03: lock_not_available — NOWAIT lost the race for the row
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "55P03" {
		return nil, ErrClaimConflict
	}
	return nil, err
}
