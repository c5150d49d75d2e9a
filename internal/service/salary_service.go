package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type RecordPaymentRequest struct {
	WorkerID      string          `json:"worker_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Date          string          `json:"date" binding:"required"` // YYYY-MM-DD
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
}

type PaymentResponse struct {
	ID            string          `json:"id"`
	WorkerID      string          `json:"worker_id"`
	WorkerName    string          `json:"worker_name"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
	CreatedAt     string          `json:"created_at"`
}

type PendingSalaryEntry struct {
	WorkerID        string          `json:"worker_id"`
	WorkerName      string          `json:"worker_name"`
	WorkerRole      string          `json:"worker_role"`
	PendingSalary   decimal.Decimal `json:"pending_salary"`
	TotalEarned     decimal.Decimal `json:"total_earned"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	LastPaymentDate string          `json:"last_payment_date,omitempty"`
}

type WorkerSalaryHistory struct {
	WorkerID            string            `json:"worker_id"`
	WorkerName          string            `json:"worker_name"`
	WorkerRole          string            `json:"worker_role"`
	TotalTasksCompleted int64             `json:"total_tasks_completed"`
	TotalEarned         decimal.Decimal   `json:"total_earned"`
	TotalPaymentsMade   int64             `json:"total_payments_made"`
	TotalAmountPaid     decimal.Decimal   `json:"total_amount_paid"`
	PendingSalary       decimal.Decimal   `json:"pending_salary"`
	Payments            []PaymentResponse `json:"payments"`
}

type SalarySummary struct {
	TotalPending       decimal.Decimal `json:"total_pending"`
	TotalPaidThisMonth decimal.Decimal `json:"total_paid_this_month"`
	TotalPaidAllTime   decimal.Decimal `json:"total_paid_all_time"`
	WorkersWithPending int             `json:"workers_with_pending"`
	PaymentsThisMonth  int64           `json:"payments_this_month"`
}

type SalaryService interface {
	PendingSalary(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error)
	RecordPayment(ctx context.Context, userID string, req RecordPaymentRequest) (PaymentResponse, error)
	ListPayments(ctx context.Context, workerID, startDate, endDate string) ([]PaymentResponse, error)
	PendingSalaries(ctx context.Context, includeZero bool) ([]PendingSalaryEntry, error)
	WorkerHistory(ctx context.Context, workerID string) (WorkerSalaryHistory, error)
	Summary(ctx context.Context) (SalarySummary, error)
}

type salaryService struct {
	workerRepo  repository.WorkerRepository
	taskRepo    repository.TaskRepository
	paymentRepo repository.PaymentRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewSalaryService(
	workerRepo repository.WorkerRepository,
	taskRepo repository.TaskRepository,
	paymentRepo repository.PaymentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) SalaryService {
	return &salaryService{
		workerRepo:  workerRepo,
		taskRepo:    taskRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// PendingSalary folds completed-task net pay against recorded payments,
// floored at zero. Always recomputed from the ledgers.
func (s *salaryService) PendingSalary(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error) {
	earned, err := s.taskRepo.SumCompletedNetPay(ctx, workerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum earned pay: %w", err)
	}
	paid, err := s.paymentRepo.SumForWorker(ctx, workerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return model.PendingSalary(earned, paid), nil
}

// RecordPayment persists a payout after checking it does not exceed the
// worker's pending salary. The check and the insert run behind a FOR UPDATE
// lock on the worker row so concurrent payments cannot jointly overpay.
func (s *salaryService) RecordPayment(ctx context.Context, userID string, req RecordPaymentRequest) (PaymentResponse, error) {
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return PaymentResponse{}, apperror.Validationf("invalid worker id: %s", req.WorkerID)
	}
	if !req.Amount.IsPositive() {
		return PaymentResponse{}, apperror.Validationf("amount must be greater than 0")
	}
	payDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return PaymentResponse{}, apperror.Validationf("invalid date %q, expected YYYY-MM-DD", req.Date)
	}

	method := req.PaymentMethod
	if method == "" {
		method = "Cash"
	}

	var payment model.SalaryPayment
	var worker *model.Worker
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		worker, findErr = s.workerRepo.FindByIDForUpdate(txCtx, workerID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFoundf("worker %s", req.WorkerID)
			}
			return fmt.Errorf("failed to lock worker: %w", findErr)
		}

		pending, pendingErr := s.PendingSalary(txCtx, workerID)
		if pendingErr != nil {
			return pendingErr
		}
		if req.Amount.GreaterThan(pending) {
			return apperror.Validationf("payment amount (%s) exceeds pending salary (%s)",
				req.Amount.StringFixed(2), pending.StringFixed(2))
		}

		payment = model.SalaryPayment{
			WorkerID:      workerID,
			Amount:        req.Amount,
			Date:          payDate,
			PaymentMethod: method,
			Notes:         req.Notes,
		}
		if createErr := s.paymentRepo.Create(txCtx, &payment); createErr != nil {
			return fmt.Errorf("failed to create salary payment: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"amount":         req.Amount,
			"payment_method": method,
		})
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionCreateSalaryPayment,
			EntityID:   payment.ID.String(),
			EntityName: worker.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	payment.Worker = *worker
	return toPaymentResponse(payment), nil
}

func (s *salaryService) ListPayments(ctx context.Context, workerID, startDate, endDate string) ([]PaymentResponse, error) {
	filter := repository.PaymentFilter{}
	if workerID != "" {
		wid, err := uuid.Parse(workerID)
		if err != nil {
			return nil, apperror.Validationf("invalid worker id: %s", workerID)
		}
		filter.WorkerID = &wid
	}
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, apperror.Validationf("invalid start_date %q, expected YYYY-MM-DD", startDate)
		}
		filter.StartDate = &parsed
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, apperror.Validationf("invalid end_date %q, expected YYYY-MM-DD", endDate)
		}
		filter.EndDate = &parsed
	}

	payments, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	res := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		res = append(res, toPaymentResponse(p))
	}
	return res, nil
}

// PendingSalaries aggregates pending salary per active worker, sorted by
// pending amount descending. Zero-balance workers are dropped unless
// includeZero is set.
func (s *salaryService) PendingSalaries(ctx context.Context, includeZero bool) ([]PendingSalaryEntry, error) {
	workers, err := s.workerRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	entries := make([]PendingSalaryEntry, 0, len(workers))
	for _, w := range workers {
		earned, sumErr := s.taskRepo.SumCompletedNetPay(ctx, w.ID)
		if sumErr != nil {
			return nil, fmt.Errorf("failed to sum earned pay: %w", sumErr)
		}
		paid, sumErr := s.paymentRepo.SumForWorker(ctx, w.ID)
		if sumErr != nil {
			return nil, fmt.Errorf("failed to sum payments: %w", sumErr)
		}
		pending := model.PendingSalary(earned, paid)

		if pending.IsZero() && !includeZero {
			continue
		}

		entry := PendingSalaryEntry{
			WorkerID:      w.ID.String(),
			WorkerName:    w.Name,
			WorkerRole:    w.Role,
			PendingSalary: pending,
			TotalEarned:   earned,
			TotalPaid:     paid,
		}
		lastDate, dateErr := s.paymentRepo.LastPaymentDate(ctx, w.ID)
		if dateErr != nil {
			return nil, fmt.Errorf("failed to get last payment date: %w", dateErr)
		}
		if lastDate != nil {
			entry.LastPaymentDate = lastDate.Format("2006-01-02")
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PendingSalary.GreaterThan(entries[j].PendingSalary)
	})
	return entries, nil
}

func (s *salaryService) WorkerHistory(ctx context.Context, workerID string) (WorkerSalaryHistory, error) {
	wid, err := uuid.Parse(workerID)
	if err != nil {
		return WorkerSalaryHistory{}, apperror.Validationf("invalid worker id: %s", workerID)
	}

	worker, err := s.workerRepo.FindByID(ctx, wid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkerSalaryHistory{}, apperror.NotFoundf("worker %s", workerID)
		}
		return WorkerSalaryHistory{}, fmt.Errorf("database error: %w", err)
	}

	earned, err := s.taskRepo.SumCompletedNetPay(ctx, wid)
	if err != nil {
		return WorkerSalaryHistory{}, fmt.Errorf("failed to sum earned pay: %w", err)
	}
	completed, err := s.taskRepo.CountCompleted(ctx, wid)
	if err != nil {
		return WorkerSalaryHistory{}, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	paid, err := s.paymentRepo.SumForWorker(ctx, wid)
	if err != nil {
		return WorkerSalaryHistory{}, fmt.Errorf("failed to sum payments: %w", err)
	}
	paymentCount, err := s.paymentRepo.CountForWorker(ctx, wid)
	if err != nil {
		return WorkerSalaryHistory{}, fmt.Errorf("failed to count payments: %w", err)
	}
	payments, err := s.paymentRepo.List(ctx, repository.PaymentFilter{WorkerID: &wid})
	if err != nil {
		return WorkerSalaryHistory{}, fmt.Errorf("failed to list payments: %w", err)
	}

	history := WorkerSalaryHistory{
		WorkerID:            worker.ID.String(),
		WorkerName:          worker.Name,
		WorkerRole:          worker.Role,
		TotalTasksCompleted: completed,
		TotalEarned:         earned,
		TotalPaymentsMade:   paymentCount,
		TotalAmountPaid:     paid,
		PendingSalary:       model.PendingSalary(earned, paid),
		Payments:            make([]PaymentResponse, 0, len(payments)),
	}
	for _, p := range payments {
		history.Payments = append(history.Payments, toPaymentResponse(p))
	}
	return history, nil
}

func (s *salaryService) Summary(ctx context.Context) (SalarySummary, error) {
	workers, err := s.workerRepo.ListActive(ctx)
	if err != nil {
		return SalarySummary{}, fmt.Errorf("failed to list workers: %w", err)
	}

	summary := SalarySummary{}
	for _, w := range workers {
		earned, sumErr := s.taskRepo.SumCompletedNetPay(ctx, w.ID)
		if sumErr != nil {
			return SalarySummary{}, fmt.Errorf("failed to sum earned pay: %w", sumErr)
		}
		paid, sumErr := s.paymentRepo.SumForWorker(ctx, w.ID)
		if sumErr != nil {
			return SalarySummary{}, fmt.Errorf("failed to sum payments: %w", sumErr)
		}
		pending := model.PendingSalary(earned, paid)
		summary.TotalPending = summary.TotalPending.Add(pending)
		if pending.IsPositive() {
			summary.WorkersWithPending++
		}
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	paidThisMonth, countThisMonth, err := s.paymentRepo.SumInRange(ctx, monthStart, monthEnd)
	if err != nil {
		return SalarySummary{}, fmt.Errorf("failed to sum monthly payments: %w", err)
	}
	summary.TotalPaidThisMonth = paidThisMonth
	summary.PaymentsThisMonth = countThisMonth

	allTime, err := s.paymentRepo.SumAll(ctx)
	if err != nil {
		return SalarySummary{}, fmt.Errorf("failed to sum all payments: %w", err)
	}
	summary.TotalPaidAllTime = allTime

	return summary, nil
}

func toPaymentResponse(p model.SalaryPayment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		WorkerID:      p.WorkerID.String(),
		WorkerName:    p.Worker.Name,
		Amount:        p.Amount,
		Date:          p.Date.Format("2006-01-02"),
		PaymentMethod: p.PaymentMethod,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}
