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

type salaryFixture struct {
	workers  *fakeWorkerRepo
	tasks    *fakeTaskRepo
	payments *fakePaymentRepo
	audits   *fakeAuditRepo
	svc      SalaryService
}

func newSalaryFixture() *salaryFixture {
	f := &salaryFixture{
		workers:  newFakeWorkerRepo(),
		tasks:    newFakeTaskRepo(),
		payments: newFakePaymentRepo(),
		audits:   newFakeAuditRepo(),
	}
	f.svc = NewSalaryService(f.workers, f.tasks, f.payments, f.audits, &fakeTxManager{})
	return f
}

func (f *salaryFixture) addWorker(t *testing.T, name string) uuid.UUID {
	t.Helper()
	w := &model.Worker{Name: name, IDNumber: uuid.NewString(), Role: "Washer", IsActive: true}
	require.NoError(t, f.workers.Create(context.Background(), w))
	return w.ID
}

// addCompletedTask records a completed task worth the given net pay.
func (f *salaryFixture) addCompletedTask(t *testing.T, workerID uuid.UUID, netPay string) {
	t.Helper()
	pay := decimal.RequireFromString(netPay)
	task := &model.Task{
		WorkerID: workerID,
		TaskType: model.TaskTypeDailySalary,
		Salary:   pay,
	}
	task.ApplyDerived()
	require.NoError(t, f.tasks.Create(context.Background(), task))
}

func TestPendingSalaryDerivation(t *testing.T) {
	f := newSalaryFixture()
	workerID := f.addWorker(t, "Minh")

	f.addCompletedTask(t, workerID, "100.00")
	f.addCompletedTask(t, workerID, "50.00")

	// pending tasks contribute nothing
	pendingTask := &model.Task{
		WorkerID:         workerID,
		TaskType:         model.TaskTypeWashing,
		AssignedQuantity: 10,
		Salary:           decimal.NewFromInt(999),
	}
	pendingTask.ApplyDerived()
	require.NoError(t, f.tasks.Create(context.Background(), pendingTask))

	pending, err := f.svc.PendingSalary(context.Background(), workerID)
	require.NoError(t, err)
	assert.Equal(t, "150", pending.String())
}

func TestRecordPayment(t *testing.T) {
	f := newSalaryFixture()
	workerID := f.addWorker(t, "Minh")
	f.addCompletedTask(t, workerID, "150.00")

	payment, err := f.svc.RecordPayment(context.Background(), uuid.NewString(), RecordPaymentRequest{
		WorkerID: workerID.String(),
		Amount:   decimal.NewFromInt(100),
		Date:     "2026-08-15",
	})
	require.NoError(t, err)

	assert.Equal(t, "Minh", payment.WorkerName)
	assert.Equal(t, "Cash", payment.PaymentMethod) // defaulted

	pending, err := f.svc.PendingSalary(context.Background(), workerID)
	require.NoError(t, err)
	assert.Equal(t, "50", pending.String())

	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, model.ActionCreateSalaryPayment, f.audits.entries[0].Action)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	f := newSalaryFixture()
	workerID := f.addWorker(t, "Minh")
	f.addCompletedTask(t, workerID, "150.00")

	_, err := f.svc.RecordPayment(context.Background(), uuid.NewString(), RecordPaymentRequest{
		WorkerID: workerID.String(),
		Amount:   decimal.RequireFromString("150.01"),
		Date:     "2026-08-15",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, f.payments.payments)

	// exact pending amount is allowed
	_, err = f.svc.RecordPayment(context.Background(), uuid.NewString(), RecordPaymentRequest{
		WorkerID: workerID.String(),
		Amount:   decimal.RequireFromString("150.00"),
		Date:     "2026-08-15",
	})
	require.NoError(t, err)

	// and a follow-up payment against zero pending is rejected
	_, err = f.svc.RecordPayment(context.Background(), uuid.NewString(), RecordPaymentRequest{
		WorkerID: workerID.String(),
		Amount:   decimal.RequireFromString("0.01"),
		Date:     "2026-08-16",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestRecordPaymentValidation(t *testing.T) {
	f := newSalaryFixture()
	workerID := f.addWorker(t, "Minh")

	tests := []struct {
		name string
		req  RecordPaymentRequest
	}{
		{
			name: "zero amount",
			req:  RecordPaymentRequest{WorkerID: workerID.String(), Amount: decimal.Zero, Date: "2026-08-15"},
		},
		{
			name: "negative amount",
			req:  RecordPaymentRequest{WorkerID: workerID.String(), Amount: decimal.NewFromInt(-5), Date: "2026-08-15"},
		},
		{
			name: "malformed date",
			req:  RecordPaymentRequest{WorkerID: workerID.String(), Amount: decimal.NewFromInt(5), Date: "15/08/2026"},
		},
		{
			name: "malformed worker id",
			req:  RecordPaymentRequest{WorkerID: "nope", Amount: decimal.NewFromInt(5), Date: "2026-08-15"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordPayment(context.Background(), uuid.NewString(), tt.req)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestRecordPaymentUnknownWorker(t *testing.T) {
	f := newSalaryFixture()

	_, err := f.svc.RecordPayment(context.Background(), uuid.NewString(), RecordPaymentRequest{
		WorkerID: uuid.NewString(),
		Amount:   decimal.NewFromInt(10),
		Date:     "2026-08-15",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPendingSalariesListing(t *testing.T) {
	f := newSalaryFixture()
	paidUp := f.addWorker(t, "Paid Up")
	owed := f.addWorker(t, "Owed")

	f.addCompletedTask(t, paidUp, "100.00")
	f.addCompletedTask(t, owed, "200.00")

	_, err := f.svc.RecordPayment(context.Background(), uuid.NewString(), RecordPaymentRequest{
		WorkerID: paidUp.String(),
		Amount:   decimal.NewFromInt(100),
		Date:     "2026-08-15",
	})
	require.NoError(t, err)

	entries, err := f.svc.PendingSalaries(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Owed", entries[0].WorkerName)
	assert.Equal(t, "200", entries[0].PendingSalary.String())

	all, err := f.svc.PendingSalaries(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestWorkerHistory(t *testing.T) {
	f := newSalaryFixture()
	workerID := f.addWorker(t, "Minh")
	f.addCompletedTask(t, workerID, "100.00")
	f.addCompletedTask(t, workerID, "60.00")

	_, err := f.svc.RecordPayment(context.Background(), uuid.NewString(), RecordPaymentRequest{
		WorkerID: workerID.String(),
		Amount:   decimal.NewFromInt(90),
		Date:     "2026-08-15",
	})
	require.NoError(t, err)

	history, err := f.svc.WorkerHistory(context.Background(), workerID.String())
	require.NoError(t, err)

	assert.Equal(t, int64(2), history.TotalTasksCompleted)
	assert.Equal(t, "160", history.TotalEarned.String())
	assert.Equal(t, "90", history.TotalAmountPaid.String())
	assert.Equal(t, "70", history.PendingSalary.String())
	assert.Len(t, history.Payments, 1)
}
