package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository fakes backing the service tests. They mirror the
// gorm-backed implementations closely enough for ledger semantics: missing
// rows surface gorm.ErrRecordNotFound and upserts rewrite in place.

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (f *fakeProductRepo) Create(ctx context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeProductRepo) Update(ctx context.Context, product *model.Product) error {
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeProductRepo) List(ctx context.Context) ([]model.Product, error) {
	out := make([]model.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

type fakeMovementRepo struct {
	movements []model.StockMovement
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{}
}

func (f *fakeMovementRepo) Create(ctx context.Context, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	f.movements = append(f.movements, *m)
	return nil
}

func (f *fakeMovementRepo) FindByReference(ctx context.Context, productID uuid.UUID, movementType, referenceID string) (*model.StockMovement, error) {
	for i := range f.movements {
		m := f.movements[i]
		if m.ProductID == productID && m.Type == movementType && m.ReferenceID == referenceID {
			copied := m
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMovementRepo) UpsertByReference(ctx context.Context, m *model.StockMovement) error {
	for i := range f.movements {
		existing := &f.movements[i]
		if existing.ProductID == m.ProductID && existing.Type == m.Type && existing.ReferenceID == m.ReferenceID {
			existing.Quantity = m.Quantity
			if m.Notes != "" {
				existing.Notes = m.Notes
			}
			*m = *existing
			return nil
		}
	}
	return f.Create(ctx, m)
}

func (f *fakeMovementRepo) SumByType(ctx context.Context, productID uuid.UUID) (map[string]int, error) {
	sums := make(map[string]int)
	for _, m := range f.movements {
		if m.ProductID == productID {
			sums[m.Type] += m.Quantity
		}
	}
	return sums, nil
}

func (f *fakeMovementRepo) List(ctx context.Context, filter repository.MovementFilter, limit int) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range f.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func movementFilterFor(productID uuid.UUID, movementType string) repository.MovementFilter {
	return repository.MovementFilter{ProductID: &productID, Type: movementType}
}

// countByTypeAndRef counts ledger rows for a (product, type, reference) triple.
func (f *fakeMovementRepo) countByTypeAndRef(productID uuid.UUID, movementType, referenceID string) int {
	count := 0
	for _, m := range f.movements {
		if m.ProductID == productID && m.Type == movementType && m.ReferenceID == referenceID {
			count++
		}
	}
	return count
}

type fakeSaleRepo struct {
	sales []model.StockSale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{}
}

func (f *fakeSaleRepo) Create(ctx context.Context, sale *model.StockSale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	sale.CreatedAt = time.Now()
	f.sales = append(f.sales, *sale)
	return nil
}

func (f *fakeSaleRepo) List(ctx context.Context, filter repository.SaleFilter, limit int) ([]model.StockSale, error) {
	var out []model.StockSale
	for _, s := range f.sales {
		if filter.ProductID != nil && s.ProductID != *filter.ProductID {
			continue
		}
		if filter.SaleType != "" && s.SaleType != filter.SaleType {
			continue
		}
		out = append(out, s)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (f *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, filter repository.AuditFilter, page, limit int) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for _, e := range f.entries {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

type fakeWorkerRepo struct {
	workers map[uuid.UUID]*model.Worker
}

func newFakeWorkerRepo() *fakeWorkerRepo {
	return &fakeWorkerRepo{workers: make(map[uuid.UUID]*model.Worker)}
}

func (f *fakeWorkerRepo) Create(ctx context.Context, worker *model.Worker) error {
	if worker.ID == uuid.Nil {
		worker.ID = uuid.New()
	}
	copied := *worker
	f.workers[worker.ID] = &copied
	return nil
}

func (f *fakeWorkerRepo) Update(ctx context.Context, worker *model.Worker) error {
	copied := *worker
	f.workers[worker.ID] = &copied
	return nil
}

func (f *fakeWorkerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.workers, id)
	return nil
}

func (f *fakeWorkerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	w, ok := f.workers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *w
	return &copied, nil
}

func (f *fakeWorkerRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeWorkerRepo) ListActive(ctx context.Context) ([]model.Worker, error) {
	var out []model.Worker
	for _, w := range f.workers {
		if w.IsActive {
			out = append(out, *w)
		}
	}
	return out, nil
}

type fakeTaskRepo struct {
	tasks map[uuid.UUID]*model.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*model.Task)}
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *model.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.CreatedAt = time.Now()
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *model.Task) error {
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	var out []model.Task
	for _, t := range f.tasks {
		if filter.WorkerID != nil && t.WorkerID != *filter.WorkerID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.TaskType != "" && t.TaskType != filter.TaskType {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTaskRepo) SumCompletedNetPay(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range f.tasks {
		if t.WorkerID == workerID && t.Status == model.TaskStatusCompleted {
			sum = sum.Add(t.NetPay)
		}
	}
	return sum, nil
}

func (f *fakeTaskRepo) CountCompleted(ctx context.Context, workerID uuid.UUID) (int64, error) {
	var count int64
	for _, t := range f.tasks {
		if t.WorkerID == workerID && t.Status == model.TaskStatusCompleted {
			count++
		}
	}
	return count, nil
}

func (f *fakeTaskRepo) CountByStatus(ctx context.Context) (repository.TaskCounts, error) {
	var counts repository.TaskCounts
	for _, t := range f.tasks {
		counts.Total++
		switch t.Status {
		case model.TaskStatusCompleted:
			counts.Completed++
		case model.TaskStatusInProgress:
			counts.InProgress++
		default:
			counts.Pending++
		}
	}
	return counts, nil
}

func (f *fakeTaskRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	for _, t := range f.tasks {
		if !t.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type fakePaymentRepo struct {
	payments []model.SalaryPayment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (f *fakePaymentRepo) Create(ctx context.Context, payment *model.SalaryPayment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now()
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakePaymentRepo) List(ctx context.Context, filter repository.PaymentFilter) ([]model.SalaryPayment, error) {
	var out []model.SalaryPayment
	for _, p := range f.payments {
		if filter.WorkerID != nil && p.WorkerID != *filter.WorkerID {
			continue
		}
		if filter.StartDate != nil && p.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && p.Date.After(*filter.EndDate) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePaymentRepo) SumForWorker(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range f.payments {
		if p.WorkerID == workerID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (f *fakePaymentRepo) CountForWorker(ctx context.Context, workerID uuid.UUID) (int64, error) {
	var count int64
	for _, p := range f.payments {
		if p.WorkerID == workerID {
			count++
		}
	}
	return count, nil
}

func (f *fakePaymentRepo) LastPaymentDate(ctx context.Context, workerID uuid.UUID) (*time.Time, error) {
	var last *time.Time
	for i := range f.payments {
		p := f.payments[i]
		if p.WorkerID != workerID {
			continue
		}
		if last == nil || p.Date.After(*last) {
			d := p.Date
			last = &d
		}
	}
	return last, nil
}

func (f *fakePaymentRepo) SumInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, int64, error) {
	sum := decimal.Zero
	var count int64
	for _, p := range f.payments {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		sum = sum.Add(p.Amount)
		count++
	}
	return sum, count, nil
}

func (f *fakePaymentRepo) SumAll(ctx context.Context) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range f.payments {
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}

type fakePurchaseRepo struct {
	purchases map[uuid.UUID]*model.Purchase
	items     []model.PurchaseItem
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: make(map[uuid.UUID]*model.Purchase)}
}

func (f *fakePurchaseRepo) Create(ctx context.Context, purchase *model.Purchase) error {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	purchase.CreatedAt = time.Now()
	copied := *purchase
	copied.Items = nil
	f.purchases[purchase.ID] = &copied
	return nil
}

func (f *fakePurchaseRepo) CreateItem(ctx context.Context, item *model.PurchaseItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.items = append(f.items, *item)
	return nil
}

func (f *fakePurchaseRepo) Update(ctx context.Context, purchase *model.Purchase) error {
	copied := *purchase
	copied.Items = nil
	f.purchases[purchase.ID] = &copied
	return nil
}

func (f *fakePurchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	p, ok := f.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	for _, item := range f.items {
		if item.PurchaseID == id {
			copied.Items = append(copied.Items, item)
		}
	}
	return &copied, nil
}

func (f *fakePurchaseRepo) List(ctx context.Context, filter repository.PurchaseFilter) ([]model.Purchase, error) {
	var out []model.Purchase
	for id := range f.purchases {
		p, _ := f.FindByID(ctx, id)
		if filter.StartDate != nil && p.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && p.Date.After(*filter.EndDate) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}
