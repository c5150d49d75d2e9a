package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase tracks an inventory purchase with its payment position. Balance
// is never written independently, RecalcBalance runs on every save path.
type Purchase struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TotalCost  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_cost"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount_paid"`
	Balance    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	Date       time.Time       `gorm:"type:date;not null" json:"date"`
	Notes      string          `gorm:"type:text" json:"notes"`
	Items      []PurchaseItem  `gorm:"foreignKey:PurchaseID" json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RecalcBalance recomputes balance from total cost and amount paid.
func (p *Purchase) RecalcBalance() {
	p.Balance = p.TotalCost.Sub(p.AmountPaid)
}

// IsFullyPaid reports whether the outstanding balance is zero or overpaid.
func (p *Purchase) IsFullyPaid() bool {
	return p.Balance.LessThanOrEqual(decimal.Zero)
}

// PurchaseItem is one product line within a purchase. Creating an item posts
// exactly one `purchase` movement for its product/quantity pair.
type PurchaseItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    Product         `gorm:"foreignKey:ProductID" json:"-"`
	Quantity   int             `gorm:"type:int;not null" json:"quantity"`
	Cost       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"cost"`
}
