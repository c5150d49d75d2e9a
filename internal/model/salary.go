package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalaryPayment is one append-only payout to a worker. The sum of a worker's
// payments may never exceed the net pay earned from completed tasks; the
// check runs at creation time against the pending-salary fold.
type SalaryPayment struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkerID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"worker_id"`
	Worker        Worker          `gorm:"foreignKey:WorkerID" json:"-"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Date          time.Time       `gorm:"type:date;not null" json:"date"`
	PaymentMethod string          `gorm:"type:varchar(50);not null;default:'Cash'" json:"payment_method"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
}
