package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleFilter narrows stock sale listings.
type SaleFilter struct {
	ProductID *uuid.UUID
	SaleType  string
}

type SaleRepository interface {
	Create(ctx context.Context, sale *model.StockSale) error
	List(ctx context.Context, filter SaleFilter, limit int) ([]model.StockSale, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *model.StockSale) error {
	return GetDB(ctx, r.db).Create(sale).Error
}

func (r *saleRepository) List(ctx context.Context, filter SaleFilter, limit int) ([]model.StockSale, error) {
	db := GetDB(ctx, r.db).Model(&model.StockSale{})
	if filter.ProductID != nil {
		db = db.Where("product_id = ?", *filter.ProductID)
	}
	if filter.SaleType != "" {
		db = db.Where("sale_type = ?", filter.SaleType)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var sales []model.StockSale
	if err := db.Order("date desc, created_at desc").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
