package repository

import (
	"context"
	"errors"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentFilter narrows salary payment listings.
type PaymentFilter struct {
	WorkerID  *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.SalaryPayment) error
	List(ctx context.Context, filter PaymentFilter) ([]model.SalaryPayment, error)
	SumForWorker(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error)
	CountForWorker(ctx context.Context, workerID uuid.UUID) (int64, error)
	LastPaymentDate(ctx context.Context, workerID uuid.UUID) (*time.Time, error)
	SumInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, int64, error)
	SumAll(ctx context.Context) (decimal.Decimal, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.SalaryPayment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]model.SalaryPayment, error) {
	db := GetDB(ctx, r.db).Model(&model.SalaryPayment{}).Preload("Worker")
	if filter.WorkerID != nil {
		db = db.Where("worker_id = ?", *filter.WorkerID)
	}
	if filter.StartDate != nil {
		db = db.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("date <= ?", *filter.EndDate)
	}

	var payments []model.SalaryPayment
	if err := db.Order("date desc, created_at desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// SumForWorker is the payout side of the salary fold.
func (r *paymentRepository) SumForWorker(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.SalaryPayment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("worker_id = ?", workerID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *paymentRepository) CountForWorker(ctx context.Context, workerID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.SalaryPayment{}).Where("worker_id = ?", workerID).Count(&count).Error
	return count, err
}

func (r *paymentRepository) LastPaymentDate(ctx context.Context, workerID uuid.UUID) (*time.Time, error) {
	var payment model.SalaryPayment
	err := GetDB(ctx, r.db).
		Where("worker_id = ?", workerID).
		Order("date desc").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment.Date, nil
}

func (r *paymentRepository) SumInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal
	}
	db := GetDB(ctx, r.db).Model(&model.SalaryPayment{}).Where("date >= ? AND date < ?", start, end)
	if err := db.Select("COALESCE(SUM(amount), 0) as total").Scan(&row).Error; err != nil {
		return decimal.Zero, 0, err
	}

	var count int64
	err := GetDB(ctx, r.db).Model(&model.SalaryPayment{}).
		Where("date >= ? AND date < ?", start, end).
		Count(&count).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Total, count, nil
}

func (r *paymentRepository) SumAll(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.SalaryPayment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
