package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type PurchaseItemRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Cost      decimal.Decimal `json:"cost" binding:"required"`
}

type CreatePurchaseRequest struct {
	Date       string                `json:"date" binding:"required"` // YYYY-MM-DD
	AmountPaid decimal.Decimal       `json:"amount_paid"`
	Notes      string                `json:"notes"`
	Items      []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdatePurchaseRequest struct {
	AmountPaid *decimal.Decimal `json:"amount_paid"`
	Notes      *string          `json:"notes"`
}

type PurchaseItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Cost      decimal.Decimal `json:"cost"`
}

type PurchaseResponse struct {
	ID          string                 `json:"id"`
	TotalCost   decimal.Decimal        `json:"total_cost"`
	AmountPaid  decimal.Decimal        `json:"amount_paid"`
	Balance     decimal.Decimal        `json:"balance"`
	IsFullyPaid bool                   `json:"is_fully_paid"`
	Date        string                 `json:"date"`
	Notes       string                 `json:"notes"`
	Items       []PurchaseItemResponse `json:"items"`
	CreatedAt   string                 `json:"created_at"`
}

// PurchaseSummaryResponse is the slim projection returned by the list
// endpoint when only payment totals are needed.
type PurchaseSummaryResponse struct {
	ID          string          `json:"id"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Balance     decimal.Decimal `json:"balance"`
	IsFullyPaid bool            `json:"is_fully_paid"`
	Date        string          `json:"date"`
	ItemsCount  int             `json:"items_count"`
}

type PurchaseService interface {
	CreatePurchase(ctx context.Context, userID string, req CreatePurchaseRequest) (PurchaseResponse, error)
	UpdatePayment(ctx context.Context, userID, id string, req UpdatePurchaseRequest) (PurchaseResponse, error)
	GetPurchase(ctx context.Context, id string) (PurchaseResponse, error)
	ListPurchases(ctx context.Context, startDate, endDate string) ([]PurchaseResponse, error)
	ListPurchaseSummaries(ctx context.Context, startDate, endDate string) ([]PurchaseSummaryResponse, error)
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// CreatePurchase persists a purchase with its line items and posts one
// `purchase` movement per item, all in one transaction. Total cost is the
// sum of item costs; balance is recomputed from total and amount paid.
func (s *purchaseService) CreatePurchase(ctx context.Context, userID string, req CreatePurchaseRequest) (PurchaseResponse, error) {
	if len(req.Items) == 0 {
		return PurchaseResponse{}, apperror.Validationf("at least one item is required")
	}

	purchaseDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return PurchaseResponse{}, apperror.Validationf("invalid date %q, expected YYYY-MM-DD", req.Date)
	}

	totalCost := decimal.Zero
	productIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return PurchaseResponse{}, apperror.Validationf("item quantity must be greater than 0")
		}
		if !item.Cost.IsPositive() {
			return PurchaseResponse{}, apperror.Validationf("item cost must be greater than 0")
		}
		pid, parseErr := uuid.Parse(item.ProductID)
		if parseErr != nil {
			return PurchaseResponse{}, apperror.Validationf("invalid product id: %s", item.ProductID)
		}
		productIDs = append(productIDs, pid)
		totalCost = totalCost.Add(item.Cost)
	}

	purchase := model.Purchase{
		TotalCost:  totalCost,
		AmountPaid: req.AmountPaid,
		Date:       purchaseDate,
		Notes:      req.Notes,
	}
	purchase.RecalcBalance()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i, pid := range productIDs {
			if _, findErr := s.productRepo.FindByID(txCtx, pid); findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return apperror.NotFoundf("product %s", req.Items[i].ProductID)
				}
				return fmt.Errorf("failed to find product %s: %w", req.Items[i].ProductID, findErr)
			}
		}

		if createErr := s.purchaseRepo.Create(txCtx, &purchase); createErr != nil {
			return fmt.Errorf("failed to create purchase: %w", createErr)
		}

		for i, itemReq := range req.Items {
			item := model.PurchaseItem{
				PurchaseID: purchase.ID,
				ProductID:  productIDs[i],
				Quantity:   itemReq.Quantity,
				Cost:       itemReq.Cost,
			}
			if itemErr := s.purchaseRepo.CreateItem(txCtx, &item); itemErr != nil {
				return fmt.Errorf("failed to create purchase item: %w", itemErr)
			}
			purchase.Items = append(purchase.Items, item)

			movement := model.StockMovement{
				ProductID:   item.ProductID,
				Type:        model.MovementPurchase,
				Quantity:    item.Quantity,
				ReferenceID: item.ID.String(),
			}
			if moveErr := s.movementRepo.Create(txCtx, &movement); moveErr != nil {
				return fmt.Errorf("failed to record purchase movement: %w", moveErr)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"total_cost":  purchase.TotalCost,
			"amount_paid": purchase.AmountPaid,
			"items":       len(req.Items),
		})
		audit := &model.AuditLog{
			UserID:   parseUserID(userID),
			Action:   model.ActionCreatePurchase,
			EntityID: purchase.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return PurchaseResponse{}, err
	}

	seen := make(map[uuid.UUID]bool, len(productIDs))
	for _, pid := range productIDs {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		notifyStockUpdated(ctx, s.hub, s.movementRepo, pid)
	}

	return toPurchaseResponse(purchase), nil
}

// UpdatePayment changes amount paid and notes only. Payment changes never
// touch the movement ledger.
func (s *purchaseService) UpdatePayment(ctx context.Context, userID, id string, req UpdatePurchaseRequest) (PurchaseResponse, error) {
	purchaseID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseResponse{}, apperror.Validationf("invalid purchase id: %s", id)
	}

	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PurchaseResponse{}, apperror.NotFoundf("purchase %s", id)
		}
		return PurchaseResponse{}, fmt.Errorf("database error: %w", err)
	}

	oldAmount := purchase.AmountPaid
	if req.AmountPaid != nil {
		if req.AmountPaid.IsNegative() {
			return PurchaseResponse{}, apperror.Validationf("amount paid cannot be negative")
		}
		purchase.AmountPaid = *req.AmountPaid
	}
	if req.Notes != nil {
		purchase.Notes = *req.Notes
	}
	purchase.RecalcBalance()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.purchaseRepo.Update(txCtx, purchase); saveErr != nil {
			return fmt.Errorf("failed to update purchase: %w", saveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"amount_paid_old": oldAmount,
			"amount_paid_new": purchase.AmountPaid,
		})
		audit := &model.AuditLog{
			UserID:   parseUserID(userID),
			Action:   model.ActionUpdatePurchase,
			EntityID: purchase.ID.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return PurchaseResponse{}, err
	}

	return toPurchaseResponse(*purchase), nil
}

func (s *purchaseService) GetPurchase(ctx context.Context, id string) (PurchaseResponse, error) {
	purchaseID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseResponse{}, apperror.Validationf("invalid purchase id: %s", id)
	}

	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PurchaseResponse{}, apperror.NotFoundf("purchase %s", id)
		}
		return PurchaseResponse{}, fmt.Errorf("database error: %w", err)
	}
	return toPurchaseResponse(*purchase), nil
}

func (s *purchaseService) ListPurchases(ctx context.Context, startDate, endDate string) ([]PurchaseResponse, error) {
	purchases, err := s.listInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	res := make([]PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		res = append(res, toPurchaseResponse(p))
	}
	return res, nil
}

func (s *purchaseService) ListPurchaseSummaries(ctx context.Context, startDate, endDate string) ([]PurchaseSummaryResponse, error) {
	purchases, err := s.listInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	res := make([]PurchaseSummaryResponse, 0, len(purchases))
	for _, p := range purchases {
		res = append(res, PurchaseSummaryResponse{
			ID:          p.ID.String(),
			TotalCost:   p.TotalCost,
			AmountPaid:  p.AmountPaid,
			Balance:     p.Balance,
			IsFullyPaid: p.IsFullyPaid(),
			Date:        p.Date.Format("2006-01-02"),
			ItemsCount:  len(p.Items),
		})
	}
	return res, nil
}

func (s *purchaseService) listInRange(ctx context.Context, startDate, endDate string) ([]model.Purchase, error) {
	filter := repository.PurchaseFilter{}
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, apperror.Validationf("invalid start_date %q, expected YYYY-MM-DD", startDate)
		}
		filter.StartDate = &parsed
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, apperror.Validationf("invalid end_date %q, expected YYYY-MM-DD", endDate)
		}
		filter.EndDate = &parsed
	}

	purchases, err := s.purchaseRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}

func toPurchaseResponse(p model.Purchase) PurchaseResponse {
	items := make([]PurchaseItemResponse, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, PurchaseItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Cost:      item.Cost,
		})
	}
	return PurchaseResponse{
		ID:          p.ID.String(),
		TotalCost:   p.TotalCost,
		AmountPaid:  p.AmountPaid,
		Balance:     p.Balance,
		IsFullyPaid: p.IsFullyPaid(),
		Date:        p.Date.Format("2006-01-02"),
		Notes:       p.Notes,
		Items:       items,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}
