package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateProduct       = "CREATE_PRODUCT"
	ActionUpdateProduct       = "UPDATE_PRODUCT"
	ActionDeleteProduct       = "DELETE_PRODUCT"
	ActionCreateWorker        = "CREATE_WORKER"
	ActionUpdateWorker        = "UPDATE_WORKER"
	ActionDeleteWorker        = "DELETE_WORKER"
	ActionCreatePurchase      = "CREATE_PURCHASE"
	ActionUpdatePurchase      = "UPDATE_PURCHASE"
	ActionCreateTask          = "CREATE_TASK"
	ActionUpdateTask          = "UPDATE_TASK"
	ActionCreateDailySalary   = "CREATE_DAILY_SALARY"
	ActionCreateSalaryPayment = "CREATE_SALARY_PAYMENT"
	ActionSellStock           = "SELL_STOCK"
	ActionLogin               = "LOGIN"
	ActionLogout              = "LOGOUT"
)

// AuditLog tracks Who, What, and When for state-changing actions
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
