package repository

import (
	"context"

	"github.com/xelth-com/eckscalego/internal/models"
	"gorm.io/gorm"
)

type gormOrderRepo struct {
	db *gorm.DB
}

func (r *gormOrderRepo) purchaseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("purchase_order_line.sequence, purchase_order_line.id")
		}).
		Preload("Lines.Product")
}

func (r *gormOrderRepo) PurchaseByID(ctx context.Context, id int64) (*models.PurchaseOrder, error) {
	var o models.PurchaseOrder
	if err := r.purchaseQuery(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *gormOrderRepo) PurchaseByName(ctx context.Context, name string) (*models.PurchaseOrder, error) {
	var o models.PurchaseOrder
	if err := r.purchaseQuery(ctx).Where("name = ?", name).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *gormOrderRepo) PurchaseByLine(ctx context.Context, lineID int64) (*models.PurchaseOrder, error) {
	var line models.PurchaseOrderLine
	if err := r.db.WithContext(ctx).First(&line, lineID).Error; err != nil {
		return nil, err
	}
	return r.PurchaseByID(ctx, line.OrderID)
}

func (r *gormOrderRepo) saleQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sale_order_line.sequence, sale_order_line.id")
		}).
		Preload("Lines.Product")
}

func (r *gormOrderRepo) SaleByID(ctx context.Context, id int64) (*models.SaleOrder, error) {
	var o models.SaleOrder
	if err := r.saleQuery(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *gormOrderRepo) SaleByName(ctx context.Context, name string) (*models.SaleOrder, error) {
	var o models.SaleOrder
	if err := r.saleQuery(ctx).Where("name = ?", name).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *gormOrderRepo) SaleByLine(ctx context.Context, lineID int64) (*models.SaleOrder, error) {
	var line models.SaleOrderLine
	if err := r.db.WithContext(ctx).First(&line, lineID).Error; err != nil {
		return nil, err
	}
	return r.SaleByID(ctx, line.OrderID)
}
