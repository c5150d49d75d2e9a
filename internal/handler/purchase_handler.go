package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchases := router.Group("/api/purchases")
	{
		purchases.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListPurchases)
		purchases.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetPurchase)
		purchases.POST("", middleware.RequireRole("admin", "manager"), h.CreatePurchase)
		purchases.PUT("/:id/payment", middleware.RequireRole("admin", "manager"), h.UpdatePayment)
	}
}

// ListPurchases returns purchases within an optional date range. With
// summary=true only payment totals and item counts are returned.
// @Summary      List purchases
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "End date (YYYY-MM-DD)"
// @Param        summary     query     bool    false  "Return summary projection"
// @Success      200         {object}  response.Response{data=[]service.PurchaseResponse}
// @Failure      500         {object}  response.Response
// @Router       /api/purchases [get]
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	if c.Query("summary") == "true" {
		summaries, err := h.purchaseService.ListPurchaseSummaries(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
		if err != nil {
			c.JSON(response.StatusFor(err), response.FromError(err))
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, summaries))
		return
	}

	purchases, err := h.purchaseService.ListPurchases(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchases))
}

// GetPurchase returns one purchase with its line items
// @Summary      Get purchase
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase ID"
// @Success      200  {object}  response.Response{data=service.PurchaseResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// CreatePurchase records a purchase and posts one ledger movement per line item
// @Summary      Create purchase
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePurchaseRequest  true  "Create Purchase Payload"
// @Success      201      {object}  response.Response{data=service.PurchaseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/purchases [post]
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var req service.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, purchase))
}

// UpdatePayment updates the amount paid on a purchase without touching stock
// @Summary      Update purchase payment
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Purchase ID"
// @Param        payload  body      service.UpdatePurchaseRequest  true  "Update Payment Payload"
// @Success      200      {object}  response.Response{data=service.PurchaseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/purchases/{id}/payment [put]
func (h *PurchaseHandler) UpdatePayment(c *gin.Context) {
	var req service.UpdatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	purchase, err := h.purchaseService.UpdatePayment(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}
