package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Worker represents an employee of the wash house. Pending salary and
// completed-task counts are derived from the task and payment ledgers,
// never stored here.
type Worker struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(100);not null" json:"name"`
	PhoneNumber string         `gorm:"type:varchar(15)" json:"phone_number"`
	IDNumber    string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"id_number"`
	Role        string         `gorm:"type:varchar(50);not null;default:'Washer'" json:"role"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// PendingSalary computes the earned-but-unpaid balance from completed-task
// net pay and total payments, floored at zero.
func PendingSalary(totalEarned, totalPaid decimal.Decimal) decimal.Decimal {
	pending := totalEarned.Sub(totalPaid)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}
