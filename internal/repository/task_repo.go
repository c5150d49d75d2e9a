package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaskFilter narrows task listings.
type TaskFilter struct {
	WorkerID  *uuid.UUID
	Status    string
	TaskType  string
	StartDate *time.Time
	EndDate   *time.Time
}

// TaskCounts aggregates task totals by status.
type TaskCounts struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	SumCompletedNetPay(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error)
	CountCompleted(ctx context.Context, workerID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context) (TaskCounts, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Create(task).Error
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Save(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := GetDB(ctx, r.db).Preload("Worker").First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	db := GetDB(ctx, r.db).Model(&model.Task{}).Preload("Worker")
	if filter.WorkerID != nil {
		db = db.Where("worker_id = ?", *filter.WorkerID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.TaskType != "" {
		db = db.Where("task_type = ?", filter.TaskType)
	}
	if filter.StartDate != nil {
		db = db.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("date <= ?", *filter.EndDate)
	}

	var tasks []model.Task
	if err := db.Order("date desc, created_at desc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// SumCompletedNetPay is the earning side of the salary fold: total net pay
// across the worker's Completed tasks.
func (r *taskRepository) SumCompletedNetPay(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.Task{}).
		Select("COALESCE(SUM(net_pay), 0) as total").
		Where("worker_id = ? AND status = ?", workerID, model.TaskStatusCompleted).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *taskRepository) CountCompleted(ctx context.Context, workerID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Task{}).
		Where("worker_id = ? AND status = ?", workerID, model.TaskStatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *taskRepository) CountByStatus(ctx context.Context) (TaskCounts, error) {
	var counts TaskCounts
	db := GetDB(ctx, r.db).Model(&model.Task{})

	if err := db.Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	for status, dst := range map[string]*int64{
		model.TaskStatusCompleted:  &counts.Completed,
		model.TaskStatusPending:    &counts.Pending,
		model.TaskStatusInProgress: &counts.InProgress,
	} {
		if err := GetDB(ctx, r.db).Model(&model.Task{}).Where("status = ?", status).Count(dst).Error; err != nil {
			return counts, err
		}
	}
	return counts, nil
}

func (r *taskRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Task{}).Where("date >= ?", since).Count(&count).Error
	return count, err
}
