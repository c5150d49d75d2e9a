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

type taskFixture struct {
	tasks     *fakeTaskRepo
	workers   *fakeWorkerRepo
	products  *fakeProductRepo
	movements *fakeMovementRepo
	audits    *fakeAuditRepo
	svc       TaskService
}

func newTaskFixture() *taskFixture {
	f := &taskFixture{
		tasks:     newFakeTaskRepo(),
		workers:   newFakeWorkerRepo(),
		products:  newFakeProductRepo(),
		movements: newFakeMovementRepo(),
		audits:    newFakeAuditRepo(),
	}
	f.svc = NewTaskService(f.tasks, f.workers, f.products, f.movements, f.audits, &fakeTxManager{}, nil)
	return f
}

func (f *taskFixture) addWorker(t *testing.T, name string) uuid.UUID {
	t.Helper()
	w := &model.Worker{Name: name, IDNumber: uuid.NewString(), Role: "Washer", IsActive: true}
	require.NoError(t, f.workers.Create(context.Background(), w))
	return w.ID
}

func (f *taskFixture) addProduct(t *testing.T, name string) uuid.UUID {
	t.Helper()
	p := &model.Product{Name: name, PurchasePrice: decimal.NewFromInt(5), WashPrice: decimal.NewFromInt(2)}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p.ID
}

func TestCreateWashingTask(t *testing.T) {
	f := newTaskFixture()
	workerID := f.addWorker(t, "Minh")
	productID := f.addProduct(t, "500ml bottle")

	task, err := f.svc.CreateTask(context.Background(), uuid.NewString(), CreateTaskRequest{
		WorkerID:         workerID.String(),
		ProductID:        productID.String(),
		TaskType:         model.TaskTypeWashing,
		AssignedQuantity: 50,
		Salary:           decimal.NewFromInt(100),
		Date:             "2026-08-10",
	})
	require.NoError(t, err)

	assert.Equal(t, model.TaskStatusPending, task.Status)
	assert.Equal(t, "100", task.NetPay.String())
	assert.Equal(t, "Minh", task.WorkerName)

	// exactly one assign_wash movement, keyed to the task
	assert.Equal(t, 1, f.movements.countByTypeAndRef(productID, model.MovementAssignWash, task.ID))
	assert.Equal(t, 0, f.movements.countByTypeAndRef(productID, model.MovementCompleteWash, task.ID))

	sums, _ := f.movements.SumByType(context.Background(), productID)
	assert.Equal(t, 50, sums[model.MovementAssignWash])
}

func TestCreateDailySalaryTask(t *testing.T) {
	f := newTaskFixture()
	workerID := f.addWorker(t, "Lan")

	task, err := f.svc.CreateTask(context.Background(), uuid.NewString(), CreateTaskRequest{
		WorkerID:  workerID.String(),
		TaskType:  model.TaskTypeDailySalary,
		Salary:    decimal.NewFromInt(80),
		Deduction: decimal.NewFromInt(5),
		Date:      "2026-08-10",
	})
	require.NoError(t, err)

	assert.Equal(t, model.TaskStatusCompleted, task.Status)
	assert.Equal(t, "75", task.NetPay.String())
	assert.Equal(t, 0, task.AssignedQuantity)

	// daily salary entries never touch the stock ledger
	assert.Empty(t, f.movements.movements)

	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, model.ActionCreateDailySalary, f.audits.entries[0].Action)
}

func TestCreateTaskValidation(t *testing.T) {
	f := newTaskFixture()
	workerID := f.addWorker(t, "Minh")
	productID := f.addProduct(t, "500ml bottle")

	tests := []struct {
		name string
		req  CreateTaskRequest
	}{
		{
			name: "washing without product",
			req: CreateTaskRequest{
				WorkerID: workerID.String(), TaskType: model.TaskTypeWashing,
				AssignedQuantity: 50, Date: "2026-08-10",
			},
		},
		{
			name: "washing without assigned quantity",
			req: CreateTaskRequest{
				WorkerID: workerID.String(), ProductID: productID.String(),
				TaskType: model.TaskTypeWashing, Date: "2026-08-10",
			},
		},
		{
			name: "daily salary with product",
			req: CreateTaskRequest{
				WorkerID: workerID.String(), ProductID: productID.String(),
				TaskType: model.TaskTypeDailySalary, Date: "2026-08-10",
			},
		},
		{
			name: "malformed date",
			req: CreateTaskRequest{
				WorkerID: workerID.String(), TaskType: model.TaskTypeDailySalary,
				Date: "10-08-2026",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateTask(context.Background(), uuid.NewString(), tt.req)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestCreateTaskUnknownWorker(t *testing.T) {
	f := newTaskFixture()

	_, err := f.svc.CreateTask(context.Background(), uuid.NewString(), CreateTaskRequest{
		WorkerID: uuid.NewString(),
		TaskType: model.TaskTypeDailySalary,
		Salary:   decimal.NewFromInt(80),
		Date:     "2026-08-10",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateProgressDerivesStatus(t *testing.T) {
	f := newTaskFixture()
	workerID := f.addWorker(t, "Minh")
	productID := f.addProduct(t, "500ml bottle")

	created, err := f.svc.CreateTask(context.Background(), uuid.NewString(), CreateTaskRequest{
		WorkerID:         workerID.String(),
		ProductID:        productID.String(),
		TaskType:         model.TaskTypeWashing,
		AssignedQuantity: 50,
		Salary:           decimal.NewFromInt(100),
		Date:             "2026-08-10",
	})
	require.NoError(t, err)

	washed := 20
	updated, err := f.svc.UpdateProgress(context.Background(), uuid.NewString(), created.ID, UpdateTaskRequest{
		WashedQuantity: &washed,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, updated.Status)
	assert.InDelta(t, 40, updated.CompletionPercentage, 0.001)

	washed = 50
	updated, err = f.svc.UpdateProgress(context.Background(), uuid.NewString(), created.ID, UpdateTaskRequest{
		WashedQuantity: &washed,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusCompleted, updated.Status)
}

func TestUpdateProgressUpsertsCompletionMovement(t *testing.T) {
	f := newTaskFixture()
	workerID := f.addWorker(t, "Minh")
	productID := f.addProduct(t, "500ml bottle")

	created, err := f.svc.CreateTask(context.Background(), uuid.NewString(), CreateTaskRequest{
		WorkerID:         workerID.String(),
		ProductID:        productID.String(),
		TaskType:         model.TaskTypeWashing,
		AssignedQuantity: 50,
		Salary:           decimal.NewFromInt(100),
		Date:             "2026-08-10",
	})
	require.NoError(t, err)

	// repeated progress updates rewrite one ledger row instead of stacking
	for _, washed := range []int{10, 25, 25, 40} {
		w := washed
		_, err := f.svc.UpdateProgress(context.Background(), uuid.NewString(), created.ID, UpdateTaskRequest{
			WashedQuantity: &w,
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, f.movements.countByTypeAndRef(productID, model.MovementCompleteWash, created.ID))
	assert.Equal(t, 1, f.movements.countByTypeAndRef(productID, model.MovementAssignWash, created.ID))

	sums, _ := f.movements.SumByType(context.Background(), productID)
	assert.Equal(t, 40, sums[model.MovementCompleteWash])
	assert.Equal(t, 50, sums[model.MovementAssignWash])
}

func TestUpdateProgressRejectsExceedingAssigned(t *testing.T) {
	f := newTaskFixture()
	workerID := f.addWorker(t, "Minh")
	productID := f.addProduct(t, "500ml bottle")

	created, err := f.svc.CreateTask(context.Background(), uuid.NewString(), CreateTaskRequest{
		WorkerID:         workerID.String(),
		ProductID:        productID.String(),
		TaskType:         model.TaskTypeWashing,
		AssignedQuantity: 50,
		Date:             "2026-08-10",
	})
	require.NoError(t, err)

	washed := 51
	_, err = f.svc.UpdateProgress(context.Background(), uuid.NewString(), created.ID, UpdateTaskRequest{
		WashedQuantity: &washed,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	negative := -1
	_, err = f.svc.UpdateProgress(context.Background(), uuid.NewString(), created.ID, UpdateTaskRequest{
		WashedQuantity: &negative,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestGetStatistics(t *testing.T) {
	f := newTaskFixture()
	workerID := f.addWorker(t, "Minh")
	productID := f.addProduct(t, "500ml bottle")

	_, err := f.svc.CreateTask(context.Background(), uuid.NewString(), CreateTaskRequest{
		WorkerID:         workerID.String(),
		ProductID:        productID.String(),
		TaskType:         model.TaskTypeWashing,
		AssignedQuantity: 50,
		Salary:           decimal.NewFromInt(100),
		Date:             "2026-08-10",
	})
	require.NoError(t, err)

	_, err = f.svc.CreateTask(context.Background(), uuid.NewString(), CreateTaskRequest{
		WorkerID: workerID.String(),
		TaskType: model.TaskTypeDailySalary,
		Salary:   decimal.NewFromInt(80),
		Date:     "2026-08-10",
	})
	require.NoError(t, err)

	stats, err := f.svc.GetStatistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TaskCounts.Total)
	assert.Equal(t, int64(1), stats.TaskCounts.Completed)
	assert.Equal(t, int64(1), stats.TaskCounts.Pending)
	assert.Equal(t, "180", stats.TotalSalary.String())
}
