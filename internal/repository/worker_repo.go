package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkerRepository interface {
	Create(ctx context.Context, worker *model.Worker) error
	Update(ctx context.Context, worker *model.Worker) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Worker, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Worker, error)
	ListActive(ctx context.Context) ([]model.Worker, error)
}

type workerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) WorkerRepository {
	return &workerRepository{db: db}
}

func (r *workerRepository) Create(ctx context.Context, worker *model.Worker) error {
	return GetDB(ctx, r.db).Create(worker).Error
}

func (r *workerRepository) Update(ctx context.Context, worker *model.Worker) error {
	return GetDB(ctx, r.db).Save(worker).Error
}

func (r *workerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Worker{}).Error
}

func (r *workerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	var worker model.Worker
	if err := GetDB(ctx, r.db).First(&worker, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}

// FindByIDForUpdate locks the worker row so the overpayment check and the
// payment insert run without a concurrent payment slipping in between.
func (r *workerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	var worker model.Worker
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&worker).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepository) ListActive(ctx context.Context) ([]model.Worker, error) {
	var workers []model.Worker
	if err := GetDB(ctx, r.db).Where("is_active = ?", true).Order("name asc").Find(&workers).Error; err != nil {
		return nil, err
	}
	return workers, nil
}
