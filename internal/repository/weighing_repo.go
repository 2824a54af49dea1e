package repository

import (
	"context"

	"github.com/xelth-com/eckscalego/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormWeighingRepo struct {
	db *gorm.DB
}

func (r *gormWeighingRepo) Create(ctx context.Context, w *models.TruckWeighing) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *gormWeighingRepo) Save(ctx context.Context, w *models.TruckWeighing) error {
	return r.db.WithContext(ctx).Save(w).Error
}

func (r *gormWeighingRepo) ByID(ctx context.Context, id int64) (*models.TruckWeighing, error) {
	var w models.TruckWeighing
	err := r.db.WithContext(ctx).
		Preload("Truck").
		Preload("Scale").
		Preload("Product").
		Preload("Partner").
		First(&w, id).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *gormWeighingRepo) List(ctx context.Context, f WeighingFilter) ([]models.TruckWeighing, error) {
	q := r.db.WithContext(ctx).Model(&models.TruckWeighing{})
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.TruckID != 0 {
		q = q.Where("truck_id = ?", f.TruckID)
	}
	if f.ScaleID != 0 {
		q = q.Where("scale_id = ?", f.ScaleID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []models.TruckWeighing
	err := q.Order("weighing_date DESC, id DESC").Find(&out).Error
	return out, err
}

// NextReference increments the weighing sequence under a row lock so
// references stay unique under concurrent creation.
func (r *gormWeighingRepo) NextReference(ctx context.Context) (string, error) {
	var ref string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq models.Sequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", models.SequenceWeighing).
			First(&seq).Error
		if err == gorm.ErrRecordNotFound {
			seq = models.Sequence{Code: models.SequenceWeighing, Prefix: "WB/", Padding: 5, NextNumber: 1}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		ref = seq.Format(seq.NextNumber)
		seq.NextNumber++
		return tx.Save(&seq).Error
	})
	return ref, err
}
