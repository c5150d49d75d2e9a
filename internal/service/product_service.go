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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	PurchasePrice decimal.Decimal `json:"purchase_price" binding:"required"`
	WashPrice     decimal.Decimal `json:"wash_price" binding:"required"`
}

type UpdateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	PurchasePrice decimal.Decimal `json:"purchase_price" binding:"required"`
	WashPrice     decimal.Decimal `json:"wash_price" binding:"required"`
}

type ProductResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	PurchasePrice decimal.Decimal   `json:"purchase_price"`
	WashPrice     decimal.Decimal   `json:"wash_price"`
	CurrentStock  model.StockLevels `json:"current_stock"`
	CreatedAt     string            `json:"created_at"`
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]ProductResponse, error)
	GetProduct(ctx context.Context, id string) (ProductResponse, error)
	CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (ProductResponse, error)
	UpdateProduct(ctx context.Context, userID, id string, req UpdateProductRequest) (ProductResponse, error)
	DeleteProduct(ctx context.Context, userID, id string) error
}

type productService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewProductService(
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

func (s *productService) stockFor(ctx context.Context, productID uuid.UUID) (model.StockLevels, error) {
	sums, err := s.movementRepo.SumByType(ctx, productID)
	if err != nil {
		return model.StockLevels{}, fmt.Errorf("failed to fold stock movements: %w", err)
	}
	return model.FoldStockLevels(sums), nil
}

func (s *productService) ListProducts(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		stock, stockErr := s.stockFor(ctx, p.ID)
		if stockErr != nil {
			return nil, stockErr
		}
		res = append(res, toProductResponse(p, stock))
	}
	return res, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, apperror.Validationf("invalid product id: %s", id)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, apperror.NotFoundf("product %s", id)
		}
		return ProductResponse{}, fmt.Errorf("database error: %w", err)
	}

	stock, err := s.stockFor(ctx, productID)
	if err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(*product, stock), nil
}

func (s *productService) CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (ProductResponse, error) {
	if req.PurchasePrice.IsNegative() || req.WashPrice.IsNegative() {
		return ProductResponse{}, apperror.Validationf("prices cannot be negative")
	}

	product := model.Product{
		Name:          req.Name,
		PurchasePrice: req.PurchasePrice,
		WashPrice:     req.WashPrice,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.productRepo.Create(txCtx, &product); createErr != nil {
			return fmt.Errorf("failed to create product: %w", createErr)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionCreateProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return ProductResponse{}, err
	}

	return toProductResponse(product, model.StockLevels{}), nil
}

func (s *productService) UpdateProduct(ctx context.Context, userID, id string, req UpdateProductRequest) (ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, apperror.Validationf("invalid product id: %s", id)
	}
	if req.PurchasePrice.IsNegative() || req.WashPrice.IsNegative() {
		return ProductResponse{}, apperror.Validationf("prices cannot be negative")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, apperror.NotFoundf("product %s", id)
		}
		return ProductResponse{}, fmt.Errorf("database error: %w", err)
	}

	oldName := product.Name
	product.Name = req.Name
	product.PurchasePrice = req.PurchasePrice
	product.WashPrice = req.WashPrice

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.productRepo.Update(txCtx, product); saveErr != nil {
			return fmt.Errorf("failed to update product: %w", saveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"name_old": oldName,
			"name_new": product.Name,
		})
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionUpdateProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return ProductResponse{}, err
	}

	stock, err := s.stockFor(ctx, productID)
	if err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(*product, stock), nil
}

func (s *productService) DeleteProduct(ctx context.Context, userID, id string) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validationf("invalid product id: %s", id)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFoundf("product %s", id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.productRepo.Delete(txCtx, productID); delErr != nil {
			return fmt.Errorf("failed to delete product: %w", delErr)
		}

		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionDeleteProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    `{"deleted": true}`,
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}

func toProductResponse(p model.Product, stock model.StockLevels) ProductResponse {
	return ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		PurchasePrice: p.PurchasePrice,
		WashPrice:     p.WashPrice,
		CurrentStock:  stock,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}
