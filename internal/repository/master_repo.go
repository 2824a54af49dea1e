package repository

import (
	"context"

	"github.com/xelth-com/eckscalego/internal/models"
	"gorm.io/gorm"
)

type gormTruckRepo struct {
	db *gorm.DB
}

func (r *gormTruckRepo) ByID(ctx context.Context, id int64) (*models.TruckFleet, error) {
	var t models.TruckFleet
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormTruckRepo) ByPlate(ctx context.Context, plate string) (*models.TruckFleet, error) {
	var t models.TruckFleet
	if err := r.db.WithContext(ctx).Where("plate_number = ?", plate).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormTruckRepo) Create(ctx context.Context, t *models.TruckFleet) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *gormTruckRepo) List(ctx context.Context) ([]models.TruckFleet, error) {
	var out []models.TruckFleet
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("plate_number").Find(&out).Error
	return out, err
}

type gormScaleRepo struct {
	db *gorm.DB
}

func (r *gormScaleRepo) ByID(ctx context.Context, id int64) (*models.WeighingScale, error) {
	var s models.WeighingScale
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gormScaleRepo) Create(ctx context.Context, s *models.WeighingScale) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *gormScaleRepo) Save(ctx context.Context, s *models.WeighingScale) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *gormScaleRepo) List(ctx context.Context) ([]models.WeighingScale, error) {
	var out []models.WeighingScale
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&out).Error
	return out, err
}

func (r *gormScaleRepo) FirstEnabled(ctx context.Context) (*models.WeighingScale, error) {
	var s models.WeighingScale
	err := r.db.WithContext(ctx).
		Where("active = ? AND is_enabled = ?", true, true).
		Order("id").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type gormLocationRepo struct {
	db *gorm.DB
}

func (r *gormLocationRepo) ByUsage(ctx context.Context, usage string) (*models.StockLocation, error) {
	var loc models.StockLocation
	err := r.db.WithContext(ctx).
		Where("usage = ? AND active = ?", usage, true).
		Order("id").
		First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

type gormProductRepo struct {
	db *gorm.DB
}

func (r *gormProductRepo) ByID(ctx context.Context, id int64) (*models.ProductProduct, error) {
	var p models.ProductProduct
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

type gormPartnerRepo struct {
	db *gorm.DB
}

func (r *gormPartnerRepo) ByID(ctx context.Context, id int64) (*models.ResPartner, error) {
	var p models.ResPartner
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

type gormUserRepo struct {
	db *gorm.DB
}

func (r *gormUserRepo) ByUsername(ctx context.Context, username string) (*models.UserAuth, error) {
	var u models.UserAuth
	err := r.db.WithContext(ctx).
		Preload("AssignedScales").
		Where("username = ?", username).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormUserRepo) Save(ctx context.Context, u *models.UserAuth) error {
	return r.db.WithContext(ctx).Omit("AssignedScales").Save(u).Error
}
