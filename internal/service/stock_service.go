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
type SellStockRequest struct {
	ProductID    string          `json:"product_id" binding:"required"`
	SaleType     string          `json:"sale_type" binding:"required,oneof=raw washed"`
	Quantity     int             `json:"quantity" binding:"required,gt=0"`
	PricePerUnit decimal.Decimal `json:"price_per_unit" binding:"required"`
	CustomerName string          `json:"customer_name"`
	Notes        string          `json:"notes"`
	Date         string          `json:"date" binding:"required"` // YYYY-MM-DD
}

type SaleResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	SaleType     string          `json:"sale_type"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CustomerName string          `json:"customer_name"`
	Notes        string          `json:"notes"`
	Date         string          `json:"date"`
	CreatedAt    string          `json:"created_at"`
}

type MovementResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
	ReferenceID string `json:"reference_id"`
	Notes       string `json:"notes"`
	CreatedAt   string `json:"created_at"`
}

type StockOverviewItem struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	RawStock      int             `json:"raw_stock"`
	WashedStock   int             `json:"washed_stock"`
	TotalStock    int             `json:"total_stock"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	WashPrice     decimal.Decimal `json:"wash_price"`
}

type ProductStockDetail struct {
	ProductID       string             `json:"product_id"`
	ProductName     string             `json:"product_name"`
	PurchasePrice   decimal.Decimal    `json:"purchase_price"`
	WashPrice       decimal.Decimal    `json:"wash_price"`
	CurrentStock    model.StockLevels  `json:"current_stock"`
	RecentMovements []MovementResponse `json:"recent_movements"`
	RecentSales     []SaleResponse     `json:"recent_sales"`
}

// Websocket payload pushed after a committed stock write
type StockEvent struct {
	Event     string            `json:"event"`
	ProductID string            `json:"product_id"`
	Stock     model.StockLevels `json:"stock"`
}

type StockService interface {
	CurrentStock(ctx context.Context, productID uuid.UUID) (model.StockLevels, error)
	GetOverview(ctx context.Context) ([]StockOverviewItem, error)
	GetProductDetail(ctx context.Context, productID string) (ProductStockDetail, error)
	ListMovements(ctx context.Context, productID, movementType string) ([]MovementResponse, error)
	ListSales(ctx context.Context, productID, saleType string) ([]SaleResponse, error)
	SellStock(ctx context.Context, userID string, req SellStockRequest) (SaleResponse, error)
}

type stockService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	saleRepo     repository.SaleRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewStockService(
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	saleRepo repository.SaleRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) StockService {
	return &stockService{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		saleRepo:     saleRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// CurrentStock folds the product's movement ledger into current levels.
// Always recomputed, never cached.
func (s *stockService) CurrentStock(ctx context.Context, productID uuid.UUID) (model.StockLevels, error) {
	sums, err := s.movementRepo.SumByType(ctx, productID)
	if err != nil {
		return model.StockLevels{}, fmt.Errorf("failed to fold stock movements: %w", err)
	}
	return model.FoldStockLevels(sums), nil
}

func (s *stockService) GetOverview(ctx context.Context) ([]StockOverviewItem, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	overview := make([]StockOverviewItem, 0, len(products))
	for _, p := range products {
		stock, err := s.CurrentStock(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		overview = append(overview, StockOverviewItem{
			ProductID:     p.ID.String(),
			ProductName:   p.Name,
			RawStock:      stock.Raw,
			WashedStock:   stock.Washed,
			TotalStock:    stock.Total,
			PurchasePrice: p.PurchasePrice,
			WashPrice:     p.WashPrice,
		})
	}
	return overview, nil
}

func (s *stockService) GetProductDetail(ctx context.Context, productID string) (ProductStockDetail, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return ProductStockDetail{}, apperror.Validationf("invalid product id: %s", productID)
	}

	product, err := s.productRepo.FindByID(ctx, pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductStockDetail{}, apperror.NotFoundf("product %s", productID)
		}
		return ProductStockDetail{}, fmt.Errorf("database error: %w", err)
	}

	stock, err := s.CurrentStock(ctx, pid)
	if err != nil {
		return ProductStockDetail{}, err
	}

	movements, err := s.movementRepo.List(ctx, repository.MovementFilter{ProductID: &pid}, 10)
	if err != nil {
		return ProductStockDetail{}, fmt.Errorf("failed to list movements: %w", err)
	}
	sales, err := s.saleRepo.List(ctx, repository.SaleFilter{ProductID: &pid}, 10)
	if err != nil {
		return ProductStockDetail{}, fmt.Errorf("failed to list sales: %w", err)
	}

	return ProductStockDetail{
		ProductID:       product.ID.String(),
		ProductName:     product.Name,
		PurchasePrice:   product.PurchasePrice,
		WashPrice:       product.WashPrice,
		CurrentStock:    stock,
		RecentMovements: toMovementResponses(movements),
		RecentSales:     toSaleResponses(sales),
	}, nil
}

func (s *stockService) ListMovements(ctx context.Context, productID, movementType string) ([]MovementResponse, error) {
	filter := repository.MovementFilter{Type: movementType}
	if productID != "" {
		pid, err := uuid.Parse(productID)
		if err != nil {
			return nil, apperror.Validationf("invalid product id: %s", productID)
		}
		filter.ProductID = &pid
	}

	movements, err := s.movementRepo.List(ctx, filter, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return toMovementResponses(movements), nil
}

func (s *stockService) ListSales(ctx context.Context, productID, saleType string) ([]SaleResponse, error) {
	filter := repository.SaleFilter{SaleType: saleType}
	if productID != "" {
		pid, err := uuid.Parse(productID)
		if err != nil {
			return nil, apperror.Validationf("invalid product id: %s", productID)
		}
		filter.ProductID = &pid
	}

	sales, err := s.saleRepo.List(ctx, filter, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return toSaleResponses(sales), nil
}

// SellStock records a sale against available stock. The oversell check runs
// behind a FOR UPDATE lock on the product row and the sale record plus its
// outgoing movement commit in the same transaction.
func (s *stockService) SellStock(ctx context.Context, userID string, req SellStockRequest) (SaleResponse, error) {
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		return SaleResponse{}, apperror.Validationf("invalid product id: %s", req.ProductID)
	}
	if req.Quantity <= 0 {
		return SaleResponse{}, apperror.Validationf("quantity must be greater than 0")
	}
	if !req.PricePerUnit.IsPositive() {
		return SaleResponse{}, apperror.Validationf("price per unit must be greater than 0")
	}
	saleDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return SaleResponse{}, apperror.Validationf("invalid date %q, expected YYYY-MM-DD", req.Date)
	}

	var sale model.StockSale
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, findErr := s.productRepo.FindByIDForUpdate(txCtx, pid)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFoundf("product %s", req.ProductID)
			}
			return fmt.Errorf("failed to lock product: %w", findErr)
		}

		stock, stockErr := s.CurrentStock(txCtx, pid)
		if stockErr != nil {
			return stockErr
		}

		available := stock.Raw
		if req.SaleType == model.SaleTypeWashed {
			available = stock.Washed
		}
		if req.Quantity > available {
			return apperror.Validationf("insufficient %s stock for %s (available: %d, requested: %d)",
				req.SaleType, product.Name, available, req.Quantity)
		}

		sale = model.StockSale{
			ProductID:    pid,
			SaleType:     req.SaleType,
			Quantity:     req.Quantity,
			PricePerUnit: req.PricePerUnit,
			TotalAmount:  req.PricePerUnit.Mul(decimal.NewFromInt(int64(req.Quantity))),
			CustomerName: req.CustomerName,
			Notes:        req.Notes,
			Date:         saleDate,
		}
		if createErr := s.saleRepo.Create(txCtx, &sale); createErr != nil {
			return fmt.Errorf("failed to create stock sale: %w", createErr)
		}

		customer := req.CustomerName
		if customer == "" {
			customer = "Customer"
		}
		movement := model.StockMovement{
			ProductID:   pid,
			Type:        model.MovementTypeForSale(req.SaleType),
			Quantity:    -req.Quantity, // outgoing
			ReferenceID: sale.ID.String(),
			Notes:       "Sale to " + customer,
		}
		if moveErr := s.movementRepo.Create(txCtx, &movement); moveErr != nil {
			return fmt.Errorf("failed to record sale movement: %w", moveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"sale_type":    req.SaleType,
			"quantity":     req.Quantity,
			"total_amount": sale.TotalAmount,
			"customer":     req.CustomerName,
		})
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionSellStock,
			EntityID:   sale.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return SaleResponse{}, err
	}

	s.broadcastStock(ctx, pid)

	return toSaleResponse(sale), nil
}

func (s *stockService) broadcastStock(ctx context.Context, productID uuid.UUID) {
	notifyStockUpdated(ctx, s.hub, s.movementRepo, productID)
}

// notifyStockUpdated pushes the post-commit stock position of a product to
// connected clients. Best effort; a failed read here does not fail the write.
func notifyStockUpdated(ctx context.Context, hub *ws.Hub, movementRepo repository.MovementRepository, productID uuid.UUID) {
	if hub == nil {
		return
	}
	sums, err := movementRepo.SumByType(ctx, productID)
	if err != nil {
		return
	}
	payload, err := json.Marshal(StockEvent{
		Event:     "stock_updated",
		ProductID: productID.String(),
		Stock:     model.FoldStockLevels(sums),
	})
	if err != nil {
		return
	}
	select {
	case hub.Broadcast <- payload:
	default:
	}
}

func parseUserID(userID string) *uuid.UUID {
	if parsed, err := uuid.Parse(userID); err == nil {
		return &parsed
	}
	return nil
}

func toMovementResponses(movements []model.StockMovement) []MovementResponse {
	res := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		res = append(res, MovementResponse{
			ID:          m.ID.String(),
			ProductID:   m.ProductID.String(),
			Type:        m.Type,
			Quantity:    m.Quantity,
			ReferenceID: m.ReferenceID,
			Notes:       m.Notes,
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		})
	}
	return res
}

func toSaleResponse(sale model.StockSale) SaleResponse {
	return SaleResponse{
		ID:           sale.ID.String(),
		ProductID:    sale.ProductID.String(),
		SaleType:     sale.SaleType,
		Quantity:     sale.Quantity,
		PricePerUnit: sale.PricePerUnit,
		TotalAmount:  sale.TotalAmount,
		CustomerName: sale.CustomerName,
		Notes:        sale.Notes,
		Date:         sale.Date.Format("2006-01-02"),
		CreatedAt:    sale.CreatedAt.Format(time.RFC3339),
	}
}

func toSaleResponses(sales []model.StockSale) []SaleResponse {
	res := make([]SaleResponse, 0, len(sales))
	for _, sale := range sales {
		res = append(res, toSaleResponse(sale))
	}
	return res
}
