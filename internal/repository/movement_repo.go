package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementFilter narrows stock movement listings.
type MovementFilter struct {
	ProductID *uuid.UUID
	Type      string
}

// MovementRepository is the only write path into the stock ledger. Entries
// are append-only; UpsertByReference is the single sanctioned in-place
// update, keyed by (product, type, reference_id).
type MovementRepository interface {
	Create(ctx context.Context, m *model.StockMovement) error
	FindByReference(ctx context.Context, productID uuid.UUID, movementType, referenceID string) (*model.StockMovement, error)
	UpsertByReference(ctx context.Context, m *model.StockMovement) error
	SumByType(ctx context.Context, productID uuid.UUID) (map[string]int, error)
	List(ctx context.Context, filter MovementFilter, limit int) ([]model.StockMovement, error)
}

type movementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, m *model.StockMovement) error {
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *movementRepository) FindByReference(ctx context.Context, productID uuid.UUID, movementType, referenceID string) (*model.StockMovement, error) {
	var m model.StockMovement
	err := GetDB(ctx, r.db).
		Where("product_id = ? AND type = ? AND reference_id = ?", productID, movementType, referenceID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertByReference creates the movement if no entry exists for its
// (product, type, reference_id) triple, otherwise rewrites the existing
// entry's quantity and notes in place. Re-posting wash progress therefore
// never duplicates a row.
func (r *movementRepository) UpsertByReference(ctx context.Context, m *model.StockMovement) error {
	existing, err := r.FindByReference(ctx, m.ProductID, m.Type, m.ReferenceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GetDB(ctx, r.db).Create(m).Error
		}
		return err
	}

	existing.Quantity = m.Quantity
	if m.Notes != "" {
		existing.Notes = m.Notes
	}
	if err := GetDB(ctx, r.db).Save(existing).Error; err != nil {
		return err
	}
	*m = *existing
	return nil
}

// SumByType folds the ledger into per-type quantity sums with one GROUP BY.
func (r *movementRepository) SumByType(ctx context.Context, productID uuid.UUID) (map[string]int, error) {
	var rows []struct {
		Type  string
		Total int
	}
	err := GetDB(ctx, r.db).Model(&model.StockMovement{}).
		Select("type, COALESCE(SUM(quantity), 0) as total").
		Where("product_id = ?", productID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := make(map[string]int, len(rows))
	for _, row := range rows {
		sums[row.Type] = row.Total
	}
	return sums, nil
}

func (r *movementRepository) List(ctx context.Context, filter MovementFilter, limit int) ([]model.StockMovement, error) {
	db := GetDB(ctx, r.db).Model(&model.StockMovement{})
	if filter.ProductID != nil {
		db = db.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var movements []model.StockMovement
	if err := db.Order("created_at desc").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
