package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseFilter narrows purchase listings by date range.
type PurchaseFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	CreateItem(ctx context.Context, item *model.PurchaseItem) error
	Update(ctx context.Context, purchase *model.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	List(ctx context.Context, filter PurchaseFilter) ([]model.Purchase, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	return GetDB(ctx, r.db).Omit("Items").Create(purchase).Error
}

func (r *purchaseRepository) CreateItem(ctx context.Context, item *model.PurchaseItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *purchaseRepository) Update(ctx context.Context, purchase *model.Purchase) error {
	return GetDB(ctx, r.db).Omit("Items").Save(purchase).Error
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).Preload("Items").First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(ctx context.Context, filter PurchaseFilter) ([]model.Purchase, error) {
	db := GetDB(ctx, r.db).Model(&model.Purchase{}).Preload("Items")
	if filter.StartDate != nil {
		db = db.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("date <= ?", *filter.EndDate)
	}

	var purchases []model.Purchase
	if err := db.Order("date desc, created_at desc").Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}
