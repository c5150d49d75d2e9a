package service

import (
	"context"
	"testing"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type purchaseFixture struct {
	purchases *fakePurchaseRepo
	products  *fakeProductRepo
	movements *fakeMovementRepo
	audits    *fakeAuditRepo
	svc       PurchaseService
}

func newPurchaseFixture() *purchaseFixture {
	f := &purchaseFixture{
		purchases: newFakePurchaseRepo(),
		products:  newFakeProductRepo(),
		movements: newFakeMovementRepo(),
		audits:    newFakeAuditRepo(),
	}
	f.svc = NewPurchaseService(f.purchases, f.products, f.movements, f.audits, &fakeTxManager{}, nil)
	return f
}

func (f *purchaseFixture) addProduct(t *testing.T, name string) uuid.UUID {
	t.Helper()
	p := &model.Product{Name: name, PurchasePrice: decimal.NewFromInt(5), WashPrice: decimal.NewFromInt(2)}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p.ID
}

func TestCreatePurchase(t *testing.T) {
	f := newPurchaseFixture()
	bottles := f.addProduct(t, "500ml bottle")
	jars := f.addProduct(t, "1L jar")

	purchase, err := f.svc.CreatePurchase(context.Background(), uuid.NewString(), CreatePurchaseRequest{
		Date:       "2026-08-01",
		AmountPaid: decimal.NewFromInt(100),
		Items: []PurchaseItemRequest{
			{ProductID: bottles.String(), Quantity: 200, Cost: decimal.RequireFromString("150.00")},
			{ProductID: jars.String(), Quantity: 50, Cost: decimal.RequireFromString("80.00")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "230", purchase.TotalCost.String())
	assert.Equal(t, "130", purchase.Balance.String())
	assert.False(t, purchase.IsFullyPaid)
	require.Len(t, purchase.Items, 2)

	// one purchase movement per line item, keyed to the item
	for _, item := range purchase.Items {
		pid, parseErr := uuid.Parse(item.ProductID)
		require.NoError(t, parseErr)
		assert.Equal(t, 1, f.movements.countByTypeAndRef(pid, model.MovementPurchase, item.ID))
	}

	sums, _ := f.movements.SumByType(context.Background(), bottles)
	assert.Equal(t, 200, sums[model.MovementPurchase])
	sums, _ = f.movements.SumByType(context.Background(), jars)
	assert.Equal(t, 50, sums[model.MovementPurchase])

	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, model.ActionCreatePurchase, f.audits.entries[0].Action)
}

func TestCreatePurchaseValidation(t *testing.T) {
	f := newPurchaseFixture()
	pid := f.addProduct(t, "500ml bottle")

	tests := []struct {
		name string
		req  CreatePurchaseRequest
	}{
		{
			name: "no items",
			req:  CreatePurchaseRequest{Date: "2026-08-01"},
		},
		{
			name: "zero quantity item",
			req: CreatePurchaseRequest{
				Date:  "2026-08-01",
				Items: []PurchaseItemRequest{{ProductID: pid.String(), Quantity: 0, Cost: decimal.NewFromInt(10)}},
			},
		},
		{
			name: "non-positive cost",
			req: CreatePurchaseRequest{
				Date:  "2026-08-01",
				Items: []PurchaseItemRequest{{ProductID: pid.String(), Quantity: 10, Cost: decimal.Zero}},
			},
		},
		{
			name: "malformed date",
			req: CreatePurchaseRequest{
				Date:  "01.08.2026",
				Items: []PurchaseItemRequest{{ProductID: pid.String(), Quantity: 10, Cost: decimal.NewFromInt(10)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreatePurchase(context.Background(), uuid.NewString(), tt.req)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			assert.Empty(t, f.movements.movements)
		})
	}
}

func TestCreatePurchaseUnknownProduct(t *testing.T) {
	f := newPurchaseFixture()

	_, err := f.svc.CreatePurchase(context.Background(), uuid.NewString(), CreatePurchaseRequest{
		Date:  "2026-08-01",
		Items: []PurchaseItemRequest{{ProductID: uuid.NewString(), Quantity: 10, Cost: decimal.NewFromInt(10)}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdatePaymentLeavesLedgerAlone(t *testing.T) {
	f := newPurchaseFixture()
	pid := f.addProduct(t, "500ml bottle")

	created, err := f.svc.CreatePurchase(context.Background(), uuid.NewString(), CreatePurchaseRequest{
		Date:  "2026-08-01",
		Items: []PurchaseItemRequest{{ProductID: pid.String(), Quantity: 100, Cost: decimal.RequireFromString("75.00")}},
	})
	require.NoError(t, err)
	movementsBefore := len(f.movements.movements)

	paid := decimal.RequireFromString("75.00")
	updated, err := f.svc.UpdatePayment(context.Background(), uuid.NewString(), created.ID, UpdatePurchaseRequest{
		AmountPaid: &paid,
	})
	require.NoError(t, err)

	assert.Equal(t, "0", updated.Balance.String())
	assert.True(t, updated.IsFullyPaid)
	assert.Len(t, f.movements.movements, movementsBefore)

	sums, _ := f.movements.SumByType(context.Background(), pid)
	assert.Equal(t, 100, sums[model.MovementPurchase])
}
