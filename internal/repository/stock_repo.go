package repository

import (
	"context"

	"github.com/xelth-com/eckscalego/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormPickingRepo struct {
	db *gorm.DB
}

func (r *gormPickingRepo) ByID(ctx context.Context, id int64) (*models.StockPicking, error) {
	var p models.StockPicking
	err := r.db.WithContext(ctx).
		Preload("Moves", func(db *gorm.DB) *gorm.DB {
			return db.Order("stock_move.sequence, stock_move.id")
		}).
		Preload("Moves.Product").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormPickingRepo) FindOpenByOrigin(ctx context.Context, origin, typeCode string) (*models.StockPicking, error) {
	var p models.StockPicking
	err := r.db.WithContext(ctx).
		Preload("Moves", func(db *gorm.DB) *gorm.DB {
			return db.Order("stock_move.sequence, stock_move.id")
		}).
		Preload("Moves.Product").
		Where("origin = ?", origin).
		Where("picking_type_code = ?", typeCode).
		Where("state IN ?", []models.PickingState{
			models.PickingDraft, models.PickingWaiting,
			models.PickingConfirmed, models.PickingAssigned,
		}).
		Order("id").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormPickingRepo) Create(ctx context.Context, p *models.StockPicking) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormPickingRepo) Save(ctx context.Context, p *models.StockPicking) error {
	// Omit relations; moves are persisted through CreateMove
	return r.db.WithContext(ctx).Omit("Moves", "Partner").Save(p).Error
}

func (r *gormPickingRepo) CreateMove(ctx context.Context, m *models.StockMove) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormPickingRepo) MoveLines(ctx context.Context, moveID int64) ([]models.StockMoveLine, error) {
	var lines []models.StockMoveLine
	err := r.db.WithContext(ctx).
		Where("move_id = ?", moveID).
		Order("id").
		Find(&lines).Error
	return lines, err
}

func (r *gormPickingRepo) CreateMoveLine(ctx context.Context, ml *models.StockMoveLine) error {
	return r.db.WithContext(ctx).Create(ml).Error
}

func (r *gormPickingRepo) SaveMoveLine(ctx context.Context, ml *models.StockMoveLine) error {
	return r.db.WithContext(ctx).Save(ml).Error
}

func (r *gormPickingRepo) AddNote(ctx context.Context, pickingID int64, body string) error {
	note := models.DocumentNote{PickingID: pickingID, Body: body}
	return r.db.WithContext(ctx).Create(&note).Error
}

// NextReference draws the next picking name for the given direction.
func (r *gormPickingRepo) NextReference(ctx context.Context, typeCode string) (string, error) {
	code := "stock.picking." + typeCode
	prefix := "WH/IN/"
	if typeCode == models.PickingTypeOutgoing {
		prefix = "WH/OUT/"
	}

	var ref string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq models.Sequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", code).
			First(&seq).Error
		if err == gorm.ErrRecordNotFound {
			seq = models.Sequence{Code: code, Prefix: prefix, Padding: 5, NextNumber: 1}
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
