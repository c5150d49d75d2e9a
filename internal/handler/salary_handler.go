package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SalaryHandler struct {
	salaryService service.SalaryService
}

func NewSalaryHandler(salaryService service.SalaryService) *SalaryHandler {
	return &SalaryHandler{salaryService: salaryService}
}

func (h *SalaryHandler) RegisterRoutes(router *gin.RouterGroup) {
	salaries := router.Group("/api/salaries")
	{
		salaries.GET("/pending", middleware.RequireRole("admin", "manager"), h.PendingSalaries)
		salaries.GET("/summary", middleware.RequireRole("admin", "manager"), h.Summary)
		salaries.GET("/payments", middleware.RequireRole("admin", "manager"), h.ListPayments)
		salaries.GET("/workers/:id/history", middleware.RequireRole("admin", "manager"), h.WorkerHistory)
		salaries.POST("/payments", middleware.RequireRole("admin", "manager"), h.RecordPayment)
	}
}

// PendingSalaries lists workers with outstanding pay
// @Summary      Pending salaries
// @Description  Pending pay per worker, derived from completed task earnings minus recorded payments
// @Tags         salaries
// @Security     BearerAuth
// @Produce      json
// @Param        include_zero  query     bool  false  "Include workers with nothing pending"
// @Success      200           {object}  response.Response{data=[]service.PendingSalaryEntry}
// @Failure      500           {object}  response.Response
// @Router       /api/salaries/pending [get]
func (h *SalaryHandler) PendingSalaries(c *gin.Context) {
	includeZero := c.Query("include_zero") == "true"
	entries, err := h.salaryService.PendingSalaries(c.Request.Context(), includeZero)
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// Summary returns aggregate payroll figures
// @Summary      Salary summary
// @Tags         salaries
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SalarySummary}
// @Failure      500  {object}  response.Response
// @Router       /api/salaries/summary [get]
func (h *SalaryHandler) Summary(c *gin.Context) {
	summary, err := h.salaryService.Summary(c.Request.Context())
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// ListPayments returns salary payments matching the query filters
// @Summary      List salary payments
// @Tags         salaries
// @Security     BearerAuth
// @Produce      json
// @Param        worker_id   query     string  false  "Filter by worker"
// @Param        start_date  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "End date (YYYY-MM-DD)"
// @Success      200         {object}  response.Response{data=[]service.PaymentResponse}
// @Failure      500         {object}  response.Response
// @Router       /api/salaries/payments [get]
func (h *SalaryHandler) ListPayments(c *gin.Context) {
	payments, err := h.salaryService.ListPayments(c.Request.Context(), c.Query("worker_id"), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payments))
}

// WorkerHistory returns one worker's earnings and payment history
// @Summary      Worker salary history
// @Tags         salaries
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Worker ID"
// @Success      200  {object}  response.Response{data=service.WorkerSalaryHistory}
// @Failure      404  {object}  response.Response
// @Router       /api/salaries/workers/{id}/history [get]
func (h *SalaryHandler) WorkerHistory(c *gin.Context) {
	history, err := h.salaryService.WorkerHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, history))
}

// RecordPayment records a salary payment against a worker's pending balance
// @Summary      Record salary payment
// @Description  Rejects any amount above the worker's pending salary
// @Tags         salaries
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RecordPaymentRequest  true  "Record Payment Payload"
// @Success      201      {object}  response.Response{data=service.PaymentResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/salaries/payments [post]
func (h *SalaryHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	payment, err := h.salaryService.RecordPayment(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}
