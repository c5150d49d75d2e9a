package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type CreateWorkerRequest struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phone_number"`
	IDNumber    string `json:"id_number" binding:"required"`
	Role        string `json:"role"`
}

type UpdateWorkerRequest struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	IsActive    *bool  `json:"is_active"`
}

type WorkerResponse struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	PhoneNumber         string          `json:"phone_number"`
	IDNumber            string          `json:"id_number"`
	Role                string          `json:"role"`
	IsActive            bool            `json:"is_active"`
	PendingSalary       decimal.Decimal `json:"pending_salary"`
	TotalTasksCompleted int64           `json:"total_tasks_completed"`
	CreatedAt           string          `json:"created_at"`
}

type WorkerService interface {
	ListWorkers(ctx context.Context) ([]WorkerResponse, error)
	GetWorker(ctx context.Context, id string) (WorkerResponse, error)
	CreateWorker(ctx context.Context, userID string, req CreateWorkerRequest) (WorkerResponse, error)
	UpdateWorker(ctx context.Context, userID, id string, req UpdateWorkerRequest) (WorkerResponse, error)
	DeleteWorker(ctx context.Context, userID, id string) error
}

type workerService struct {
	workerRepo  repository.WorkerRepository
	taskRepo    repository.TaskRepository
	paymentRepo repository.PaymentRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewWorkerService(
	workerRepo repository.WorkerRepository,
	taskRepo repository.TaskRepository,
	paymentRepo repository.PaymentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) WorkerService {
	return &workerService{
		workerRepo:  workerRepo,
		taskRepo:    taskRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

func (s *workerService) derive(ctx context.Context, w model.Worker) (WorkerResponse, error) {
	earned, err := s.taskRepo.SumCompletedNetPay(ctx, w.ID)
	if err != nil {
		return WorkerResponse{}, fmt.Errorf("failed to sum earned pay: %w", err)
	}
	paid, err := s.paymentRepo.SumForWorker(ctx, w.ID)
	if err != nil {
		return WorkerResponse{}, fmt.Errorf("failed to sum payments: %w", err)
	}
	completed, err := s.taskRepo.CountCompleted(ctx, w.ID)
	if err != nil {
		return WorkerResponse{}, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	return WorkerResponse{
		ID:                  w.ID.String(),
		Name:                w.Name,
		PhoneNumber:         w.PhoneNumber,
		IDNumber:            w.IDNumber,
		Role:                w.Role,
		IsActive:            w.IsActive,
		PendingSalary:       model.PendingSalary(earned, paid),
		TotalTasksCompleted: completed,
		CreatedAt:           w.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *workerService) ListWorkers(ctx context.Context) ([]WorkerResponse, error) {
	workers, err := s.workerRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	res := make([]WorkerResponse, 0, len(workers))
	for _, w := range workers {
		wr, deriveErr := s.derive(ctx, w)
		if deriveErr != nil {
			return nil, deriveErr
		}
		res = append(res, wr)
	}
	return res, nil
}

func (s *workerService) GetWorker(ctx context.Context, id string) (WorkerResponse, error) {
	workerID, err := uuid.Parse(id)
	if err != nil {
		return WorkerResponse{}, apperror.Validationf("invalid worker id: %s", id)
	}

	worker, err := s.workerRepo.FindByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkerResponse{}, apperror.NotFoundf("worker %s", id)
		}
		return WorkerResponse{}, fmt.Errorf("database error: %w", err)
	}
	return s.derive(ctx, *worker)
}

func (s *workerService) CreateWorker(ctx context.Context, userID string, req CreateWorkerRequest) (WorkerResponse, error) {
	role := req.Role
	if role == "" {
		role = "Washer"
	}

	worker := model.Worker{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		IDNumber:    req.IDNumber,
		Role:        role,
		IsActive:    true,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.workerRepo.Create(txCtx, &worker); createErr != nil {
			return fmt.Errorf("failed to create worker: %w", createErr)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionCreateWorker,
			EntityID:   worker.ID.String(),
			EntityName: worker.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return WorkerResponse{}, err
	}

	return s.derive(ctx, worker)
}

func (s *workerService) UpdateWorker(ctx context.Context, userID, id string, req UpdateWorkerRequest) (WorkerResponse, error) {
	workerID, err := uuid.Parse(id)
	if err != nil {
		return WorkerResponse{}, apperror.Validationf("invalid worker id: %s", id)
	}

	worker, err := s.workerRepo.FindByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkerResponse{}, apperror.NotFoundf("worker %s", id)
		}
		return WorkerResponse{}, fmt.Errorf("database error: %w", err)
	}

	worker.Name = req.Name
	worker.PhoneNumber = req.PhoneNumber
	if req.Role != "" {
		worker.Role = req.Role
	}
	if req.IsActive != nil {
		worker.IsActive = *req.IsActive
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.workerRepo.Update(txCtx, worker); saveErr != nil {
			return fmt.Errorf("failed to update worker: %w", saveErr)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionUpdateWorker,
			EntityID:   worker.ID.String(),
			EntityName: worker.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return WorkerResponse{}, err
	}

	return s.derive(ctx, *worker)
}

func (s *workerService) DeleteWorker(ctx context.Context, userID, id string) error {
	workerID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validationf("invalid worker id: %s", id)
	}

	worker, err := s.workerRepo.FindByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFoundf("worker %s", id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.workerRepo.Delete(txCtx, workerID); delErr != nil {
			return fmt.Errorf("failed to delete worker: %w", delErr)
		}

		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionDeleteWorker,
			EntityID:   worker.ID.String(),
			EntityName: worker.Name,
			Details:    `{"deleted": true}`,
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}
