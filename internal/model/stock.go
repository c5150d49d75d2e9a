package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType enum constants
const (
	MovementPurchase     = "purchase"
	MovementAssignWash   = "assign_wash"
	MovementCompleteWash = "complete_wash"
	MovementSellRaw      = "sell_raw"
	MovementSellWashed   = "sell_washed"
)

// SaleType enum constants
const (
	SaleTypeRaw    = "raw"
	SaleTypeWashed = "washed"
)

// StockMovement is one append-only entry in the stock ledger. Quantity is
// signed: purchase, assign_wash and complete_wash entries are positive,
// sell_raw and sell_washed entries are stored negative. ReferenceID links
// back to the purchase item, task or sale that produced the entry and keys
// the idempotent upsert for complete_wash re-posts.
type StockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product     Product   `gorm:"foreignKey:ProductID" json:"-"`
	Type        string    `gorm:"type:varchar(20);not null;index" json:"type"`
	Quantity    int       `gorm:"type:int;not null" json:"quantity"`
	ReferenceID string    `gorm:"type:varchar(100);index" json:"reference_id"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// StockSale records a sale of raw or washed stock. TotalAmount is always
// recomputed as quantity x price_per_unit at save time.
type StockSale struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product      Product         `gorm:"foreignKey:ProductID" json:"-"`
	SaleType     string          `gorm:"type:varchar(10);not null" json:"sale_type"`
	Quantity     int             `gorm:"type:int;not null" json:"quantity"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_per_unit"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	CustomerName string          `gorm:"type:varchar(100)" json:"customer_name"`
	Notes        string          `gorm:"type:text" json:"notes"`
	Date         time.Time       `gorm:"type:date;not null" json:"date"`
	CreatedAt    time.Time       `json:"created_at"`
}

// StockLevels holds the derived stock position of a product.
type StockLevels struct {
	Raw    int `json:"raw"`
	Washed int `json:"washed"`
	Total  int `json:"total"`
}

// FoldStockLevels folds per-type quantity sums into current stock levels.
// Purchases feed the raw pool, wash assignment drains it, wash completion
// feeds the washed pool, and sale entries (stored negative) drain their pool.
// Each pool is floored at zero independently before totalling.
func FoldStockLevels(sumByType map[string]int) StockLevels {
	raw := sumByType[MovementPurchase] - sumByType[MovementAssignWash] + sumByType[MovementSellRaw]
	washed := sumByType[MovementCompleteWash] + sumByType[MovementSellWashed]

	if raw < 0 {
		raw = 0
	}
	if washed < 0 {
		washed = 0
	}

	return StockLevels{Raw: raw, Washed: washed, Total: raw + washed}
}

// MovementTypeForSale maps a sale type to the outgoing movement type.
func MovementTypeForSale(saleType string) string {
	if saleType == SaleTypeRaw {
		return MovementSellRaw
	}
	return MovementSellWashed
}
