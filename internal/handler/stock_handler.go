package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	stockService service.StockService
}

func NewStockHandler(stockService service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	stock := router.Group("/api/stock")
	{
		stock.GET("/overview", middleware.RequireRole("admin", "manager", "staff"), h.GetOverview)
		stock.GET("/products/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetProductDetail)
		stock.GET("/movements", middleware.RequireRole("admin", "manager", "staff"), h.ListMovements)
		stock.GET("/sales", middleware.RequireRole("admin", "manager", "staff"), h.ListSales)
		stock.POST("/sell", middleware.RequireRole("admin", "manager"), h.SellStock)
	}
}

// GetOverview returns derived stock levels for every product
// @Summary      Stock overview
// @Description  Raw, washed and total stock per product, derived from the movement ledger
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.StockOverviewItem}
// @Failure      500  {object}  response.Response
// @Router       /api/stock/overview [get]
func (h *StockHandler) GetOverview(c *gin.Context) {
	overview, err := h.stockService.GetOverview(c.Request.Context())
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, overview))
}

// GetProductDetail returns stock levels plus recent movements and sales for one product
// @Summary      Product stock detail
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=service.ProductStockDetail}
// @Failure      404  {object}  response.Response
// @Router       /api/stock/products/{id} [get]
func (h *StockHandler) GetProductDetail(c *gin.Context) {
	detail, err := h.stockService.GetProductDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// ListMovements returns ledger entries, optionally filtered
// @Summary      List stock movements
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        product_id  query     string  false  "Filter by product"
// @Param        type        query     string  false  "Filter by movement type"
// @Success      200         {object}  response.Response{data=[]service.MovementResponse}
// @Failure      500         {object}  response.Response
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	movements, err := h.stockService.ListMovements(c.Request.Context(), c.Query("product_id"), c.Query("type"))
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, movements))
}

// ListSales returns recorded sales, optionally filtered
// @Summary      List stock sales
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        product_id  query     string  false  "Filter by product"
// @Param        sale_type   query     string  false  "Filter by sale type (raw or washed)"
// @Success      200         {object}  response.Response{data=[]service.SaleResponse}
// @Failure      500         {object}  response.Response
// @Router       /api/stock/sales [get]
func (h *StockHandler) ListSales(c *gin.Context) {
	sales, err := h.stockService.ListSales(c.Request.Context(), c.Query("product_id"), c.Query("sale_type"))
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sales))
}

// SellStock records a sale and posts the matching ledger movement
// @Summary      Sell stock
// @Description  Validates against the available pool, records the sale and appends a negative movement in one transaction
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SellStockRequest  true  "Sell Stock Payload"
// @Success      201      {object}  response.Response{data=service.SaleResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/stock/sell [post]
func (h *StockHandler) SellStock(c *gin.Context) {
	var req service.SellStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	sale, err := h.stockService.SellStock(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sale))
}
