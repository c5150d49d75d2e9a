package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldStockLevels(t *testing.T) {
	tests := []struct {
		name     string
		sums     map[string]int
		expected StockLevels
	}{
		{
			name:     "empty ledger",
			sums:     map[string]int{},
			expected: StockLevels{Raw: 0, Washed: 0, Total: 0},
		},
		{
			name:     "purchases only",
			sums:     map[string]int{MovementPurchase: 100},
			expected: StockLevels{Raw: 100, Washed: 0, Total: 100},
		},
		{
			name: "assignment moves raw into the wash pipeline",
			sums: map[string]int{
				MovementPurchase:   100,
				MovementAssignWash: 30,
			},
			expected: StockLevels{Raw: 70, Washed: 0, Total: 70},
		},
		{
			name: "completion feeds the washed pool",
			sums: map[string]int{
				MovementPurchase:     100,
				MovementAssignWash:   30,
				MovementCompleteWash: 20,
			},
			expected: StockLevels{Raw: 70, Washed: 20, Total: 90},
		},
		{
			name: "sales stored negative drain their pool",
			sums: map[string]int{
				MovementPurchase:     100,
				MovementAssignWash:   30,
				MovementCompleteWash: 30,
				MovementSellRaw:      -10,
				MovementSellWashed:   -5,
			},
			expected: StockLevels{Raw: 60, Washed: 25, Total: 85},
		},
		{
			name: "raw pool floored at zero",
			sums: map[string]int{
				MovementPurchase:   10,
				MovementAssignWash: 15,
			},
			expected: StockLevels{Raw: 0, Washed: 0, Total: 0},
		},
		{
			name: "washed pool floored independently of raw",
			sums: map[string]int{
				MovementPurchase:     10,
				MovementAssignWash:   20,
				MovementCompleteWash: 20,
			},
			expected: StockLevels{Raw: 0, Washed: 20, Total: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FoldStockLevels(tt.sums))
		})
	}
}

func TestFoldStockLevelsConservation(t *testing.T) {
	// total = purchased - assigned + completed - sold, as long as no pool
	// goes negative
	sums := map[string]int{
		MovementPurchase:     200,
		MovementAssignWash:   80,
		MovementCompleteWash: 60,
		MovementSellRaw:      -40,
		MovementSellWashed:   -25,
	}
	levels := FoldStockLevels(sums)
	assert.Equal(t, 200-80-40, levels.Raw)
	assert.Equal(t, 60-25, levels.Washed)
	assert.Equal(t, levels.Raw+levels.Washed, levels.Total)
}

func TestMovementTypeForSale(t *testing.T) {
	assert.Equal(t, MovementSellRaw, MovementTypeForSale(SaleTypeRaw))
	assert.Equal(t, MovementSellWashed, MovementTypeForSale(SaleTypeWashed))
}
