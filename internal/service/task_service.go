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
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type CreateTaskRequest struct {
	WorkerID         string          `json:"worker_id" binding:"required"`
	ProductID        string          `json:"product_id"`
	TaskType         string          `json:"task_type" binding:"required,oneof=washing daily_salary"`
	AssignedQuantity int             `json:"assigned_quantity"`
	Salary           decimal.Decimal `json:"salary"`
	Deduction        decimal.Decimal `json:"deduction"`
	Date             string          `json:"date" binding:"required"` // YYYY-MM-DD
	Notes            string          `json:"notes"`
}

type UpdateTaskRequest struct {
	WashedQuantity *int             `json:"washed_quantity"`
	Salary         *decimal.Decimal `json:"salary"`
	Deduction      *decimal.Decimal `json:"deduction"`
	Notes          *string          `json:"notes"`
}

type TaskResponse struct {
	ID                   string          `json:"id"`
	WorkerID             string          `json:"worker_id"`
	WorkerName           string          `json:"worker_name"`
	ProductID            string          `json:"product_id,omitempty"`
	TaskType             string          `json:"task_type"`
	AssignedQuantity     int             `json:"assigned_quantity"`
	WashedQuantity       int             `json:"washed_quantity"`
	Status               string          `json:"status"`
	Salary               decimal.Decimal `json:"salary"`
	Deduction            decimal.Decimal `json:"deduction"`
	NetPay               decimal.Decimal `json:"net_pay"`
	CompletionPercentage float64         `json:"completion_percentage"`
	Date                 string          `json:"date"`
	Notes                string          `json:"notes"`
	CreatedAt            string          `json:"created_at"`
}

type TaskStatistics struct {
	TaskCounts      repository.TaskCounts `json:"task_counts"`
	TotalSalary     decimal.Decimal       `json:"total_salary"`
	TotalDeductions decimal.Decimal       `json:"total_deductions"`
	TotalNetPay     decimal.Decimal       `json:"total_net_pay"`
	TasksLast30Days int64                 `json:"tasks_last_30_days"`
}

type TaskService interface {
	CreateTask(ctx context.Context, userID string, req CreateTaskRequest) (TaskResponse, error)
	UpdateProgress(ctx context.Context, userID, id string, req UpdateTaskRequest) (TaskResponse, error)
	GetTask(ctx context.Context, id string) (TaskResponse, error)
	ListTasks(ctx context.Context, filter repository.TaskFilter) ([]TaskResponse, error)
	GetStatistics(ctx context.Context) (TaskStatistics, error)
}

type taskService struct {
	taskRepo     repository.TaskRepository
	workerRepo   repository.WorkerRepository
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	workerRepo repository.WorkerRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) TaskService {
	return &taskService{
		taskRepo:     taskRepo,
		workerRepo:   workerRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// CreateTask validates the kind-specific shape, derives status and net pay,
// and posts the assign_wash movement for washing tasks. Task and movement
// commit in the same transaction.
func (s *taskService) CreateTask(ctx context.Context, userID string, req CreateTaskRequest) (TaskResponse, error) {
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return TaskResponse{}, apperror.Validationf("invalid worker id: %s", req.WorkerID)
	}
	taskDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return TaskResponse{}, apperror.Validationf("invalid date %q, expected YYYY-MM-DD", req.Date)
	}

	task := model.Task{
		WorkerID:  workerID,
		TaskType:  req.TaskType,
		Salary:    req.Salary,
		Deduction: req.Deduction,
		Date:      taskDate,
		Notes:     req.Notes,
	}

	switch req.TaskType {
	case model.TaskTypeWashing:
		if req.ProductID == "" {
			return TaskResponse{}, apperror.Validationf("product is required for washing tasks")
		}
		if req.AssignedQuantity <= 0 {
			return TaskResponse{}, apperror.Validationf("assigned quantity must be greater than 0 for washing tasks")
		}
		pid, parseErr := uuid.Parse(req.ProductID)
		if parseErr != nil {
			return TaskResponse{}, apperror.Validationf("invalid product id: %s", req.ProductID)
		}
		task.ProductID = &pid
		task.AssignedQuantity = req.AssignedQuantity
	case model.TaskTypeDailySalary:
		if req.ProductID != "" {
			return TaskResponse{}, apperror.Validationf("product must not be specified for daily salary tasks")
		}
		// quantities forced to zero for daily salary
		task.AssignedQuantity = 0
		task.WashedQuantity = 0
	}

	task.ApplyDerived()

	var worker *model.Worker
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		worker, findErr = s.workerRepo.FindByID(txCtx, workerID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFoundf("worker %s", req.WorkerID)
			}
			return fmt.Errorf("failed to find worker: %w", findErr)
		}

		if task.ProductID != nil {
			if _, prodErr := s.productRepo.FindByIDForUpdate(txCtx, *task.ProductID); prodErr != nil {
				if errors.Is(prodErr, gorm.ErrRecordNotFound) {
					return apperror.NotFoundf("product %s", req.ProductID)
				}
				return fmt.Errorf("failed to lock product: %w", prodErr)
			}
		}

		if createErr := s.taskRepo.Create(txCtx, &task); createErr != nil {
			return fmt.Errorf("failed to create task: %w", createErr)
		}

		if postErr := s.postWashMovements(txCtx, &task, worker.Name); postErr != nil {
			return postErr
		}

		action := model.ActionCreateTask
		if task.TaskType == model.TaskTypeDailySalary {
			action = model.ActionCreateDailySalary
		}
		details, _ := json.Marshal(map[string]interface{}{
			"task_type":         task.TaskType,
			"assigned_quantity": task.AssignedQuantity,
			"net_pay":           task.NetPay,
		})
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     action,
			EntityID:   task.ID.String(),
			EntityName: worker.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return TaskResponse{}, err
	}

	if task.ProductID != nil {
		notifyStockUpdated(ctx, s.hub, s.movementRepo, *task.ProductID)
	}

	task.Worker = *worker
	return toTaskResponse(task), nil
}

// UpdateProgress updates washed quantity (and optionally pay fields),
// re-derives status and net pay, and re-posts the complete_wash movement.
// Re-posting with the same quantity is a no-op on the ledger row count.
func (s *taskService) UpdateProgress(ctx context.Context, userID, id string, req UpdateTaskRequest) (TaskResponse, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return TaskResponse{}, apperror.Validationf("invalid task id: %s", id)
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaskResponse{}, apperror.NotFoundf("task %s", id)
		}
		return TaskResponse{}, fmt.Errorf("database error: %w", err)
	}

	oldWashed := task.WashedQuantity
	if req.WashedQuantity != nil {
		washed := *req.WashedQuantity
		if washed < 0 {
			return TaskResponse{}, apperror.Validationf("washed quantity cannot be negative")
		}
		if task.TaskType == model.TaskTypeWashing && washed > task.AssignedQuantity {
			return TaskResponse{}, apperror.Validationf("washed quantity cannot exceed assigned quantity (%d)", task.AssignedQuantity)
		}
		task.WashedQuantity = washed
	}
	if req.Salary != nil {
		task.Salary = *req.Salary
	}
	if req.Deduction != nil {
		task.Deduction = *req.Deduction
	}
	if req.Notes != nil {
		task.Notes = *req.Notes
	}

	task.ApplyDerived()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if task.ProductID != nil {
			if _, prodErr := s.productRepo.FindByIDForUpdate(txCtx, *task.ProductID); prodErr != nil {
				return fmt.Errorf("failed to lock product: %w", prodErr)
			}
		}

		if saveErr := s.taskRepo.Update(txCtx, task); saveErr != nil {
			return fmt.Errorf("failed to update task: %w", saveErr)
		}

		if postErr := s.postWashMovements(txCtx, task, task.Worker.Name); postErr != nil {
			return postErr
		}

		details, _ := json.Marshal(map[string]interface{}{
			"washed_quantity_old": oldWashed,
			"washed_quantity_new": task.WashedQuantity,
			"status":              task.Status,
		})
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionUpdateTask,
			EntityID:   task.ID.String(),
			EntityName: task.Worker.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return TaskResponse{}, err
	}

	if task.ProductID != nil {
		notifyStockUpdated(ctx, s.hub, s.movementRepo, *task.ProductID)
	}

	return toTaskResponse(*task), nil
}

// postWashMovements posts the ledger side effects of a washing task:
// assign_wash once per task (get-or-create), complete_wash upserted so it
// always reflects the latest washed quantity without duplicate rows.
func (s *taskService) postWashMovements(ctx context.Context, task *model.Task, workerName string) error {
	if task.TaskType != model.TaskTypeWashing || task.ProductID == nil {
		return nil
	}

	if task.AssignedQuantity > 0 {
		_, err := s.movementRepo.FindByReference(ctx, *task.ProductID, model.MovementAssignWash, task.ID.String())
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check assign movement: %w", err)
			}
			movement := model.StockMovement{
				ProductID:   *task.ProductID,
				Type:        model.MovementAssignWash,
				Quantity:    task.AssignedQuantity,
				ReferenceID: task.ID.String(),
				Notes:       "Assigned to " + workerName + " for washing",
			}
			if createErr := s.movementRepo.Create(ctx, &movement); createErr != nil {
				return fmt.Errorf("failed to record assign movement: %w", createErr)
			}
		}
	}

	if task.WashedQuantity > 0 {
		movement := model.StockMovement{
			ProductID:   *task.ProductID,
			Type:        model.MovementCompleteWash,
			Quantity:    task.WashedQuantity,
			ReferenceID: task.ID.String(),
			Notes:       "Completed by " + workerName,
		}
		if err := s.movementRepo.UpsertByReference(ctx, &movement); err != nil {
			return fmt.Errorf("failed to record completion movement: %w", err)
		}
	}

	return nil
}

func (s *taskService) GetTask(ctx context.Context, id string) (TaskResponse, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return TaskResponse{}, apperror.Validationf("invalid task id: %s", id)
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaskResponse{}, apperror.NotFoundf("task %s", id)
		}
		return TaskResponse{}, fmt.Errorf("database error: %w", err)
	}
	return toTaskResponse(*task), nil
}

func (s *taskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]TaskResponse, error) {
	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	res := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, toTaskResponse(t))
	}
	return res, nil
}

func (s *taskService) GetStatistics(ctx context.Context) (TaskStatistics, error) {
	counts, err := s.taskRepo.CountByStatus(ctx)
	if err != nil {
		return TaskStatistics{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	recent, err := s.taskRepo.CountSince(ctx, thirtyDaysAgo)
	if err != nil {
		return TaskStatistics{}, fmt.Errorf("failed to count recent tasks: %w", err)
	}

	stats := TaskStatistics{
		TaskCounts:      counts,
		TasksLast30Days: recent,
	}

	// Salary sums across all tasks
	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{})
	if err != nil {
		return TaskStatistics{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	for _, t := range tasks {
		stats.TotalSalary = stats.TotalSalary.Add(t.Salary)
		stats.TotalDeductions = stats.TotalDeductions.Add(t.Deduction)
		stats.TotalNetPay = stats.TotalNetPay.Add(t.NetPay)
	}

	return stats, nil
}

func toTaskResponse(t model.Task) TaskResponse {
	res := TaskResponse{
		ID:                   t.ID.String(),
		WorkerID:             t.WorkerID.String(),
		WorkerName:           t.Worker.Name,
		TaskType:             t.TaskType,
		AssignedQuantity:     t.AssignedQuantity,
		WashedQuantity:       t.WashedQuantity,
		Status:               t.Status,
		Salary:               t.Salary,
		Deduction:            t.Deduction,
		NetPay:               t.NetPay,
		CompletionPercentage: t.CompletionPercentage(),
		Date:                 t.Date.Format("2006-01-02"),
		Notes:                t.Notes,
		CreatedAt:            t.CreatedAt.Format(time.RFC3339),
	}
	if t.ProductID != nil {
		res.ProductID = t.ProductID.String()
	}
	return res
}
