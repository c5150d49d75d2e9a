package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaskType enum constants
const (
	TaskTypeWashing     = "washing"
	TaskTypeDailySalary = "daily_salary"
)

// TaskStatus constants. Status is derived from progress, never set directly.
const (
	TaskStatusPending    = "Pending"
	TaskStatusInProgress = "In Progress"
	TaskStatusCompleted  = "Completed"
)

// Task records a worker assignment: either a washing job against a product
// or a product-less daily-salary entry. NetPay and Status are derived fields
// recomputed by ApplyDerived on every save path.
type Task struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkerID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"worker_id"`
	Worker           Worker          `gorm:"foreignKey:WorkerID" json:"-"`
	ProductID        *uuid.UUID      `gorm:"type:uuid;index" json:"product_id"` // nil for daily salary tasks
	Product          *Product        `gorm:"foreignKey:ProductID" json:"-"`
	TaskType         string          `gorm:"type:varchar(20);not null;default:'washing'" json:"task_type"`
	AssignedQuantity int             `gorm:"type:int;not null;default:0" json:"assigned_quantity"`
	WashedQuantity   int             `gorm:"type:int;not null;default:0" json:"washed_quantity"`
	Status           string          `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	Salary           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"salary"`
	Deduction        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"deduction"`
	NetPay           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"net_pay"`
	Date             time.Time       `gorm:"type:date;not null" json:"date"`
	Notes            string          `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ApplyDerived recomputes net pay and status from the task's own fields.
// Daily-salary tasks are always Completed; a washing task completes once
// washed reaches assigned (assigned > 0), and is In Progress while any
// quantity has been washed.
func (t *Task) ApplyDerived() {
	t.NetPay = t.Salary.Sub(t.Deduction)

	switch {
	case t.TaskType == TaskTypeDailySalary:
		t.Status = TaskStatusCompleted
	case t.AssignedQuantity > 0 && t.WashedQuantity >= t.AssignedQuantity:
		t.Status = TaskStatusCompleted
	case t.WashedQuantity > 0:
		t.Status = TaskStatusInProgress
	default:
		t.Status = TaskStatusPending
	}
}

// CompletionPercentage reports washing progress in [0, 100].
func (t *Task) CompletionPercentage() float64 {
	if t.AssignedQuantity == 0 {
		if t.TaskType == TaskTypeDailySalary {
			return 100
		}
		return 0
	}
	pct := float64(t.WashedQuantity) / float64(t.AssignedQuantity) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
