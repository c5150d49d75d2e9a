package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type WorkerHandler struct {
	workerService service.WorkerService
}

func NewWorkerHandler(workerService service.WorkerService) *WorkerHandler {
	return &WorkerHandler{workerService: workerService}
}

func (h *WorkerHandler) RegisterRoutes(router *gin.RouterGroup) {
	workers := router.Group("/api/workers")
	{
		workers.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListWorkers)
		workers.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetWorker)
		workers.POST("", middleware.RequireRole("admin"), h.CreateWorker)
		workers.PUT("/:id", middleware.RequireRole("admin"), h.UpdateWorker)
		workers.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteWorker)
	}
}

// ListWorkers returns all workers with derived pending salary
// @Summary      List workers
// @Tags         workers
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.WorkerResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/workers [get]
func (h *WorkerHandler) ListWorkers(c *gin.Context) {
	workers, err := h.workerService.ListWorkers(c.Request.Context())
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, workers))
}

// GetWorker returns a single worker
// @Summary      Get worker
// @Tags         workers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Worker ID"
// @Success      200  {object}  response.Response{data=service.WorkerResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/workers/{id} [get]
func (h *WorkerHandler) GetWorker(c *gin.Context) {
	worker, err := h.workerService.GetWorker(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, worker))
}

// CreateWorker registers a new worker
// @Summary      Create worker
// @Tags         workers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateWorkerRequest  true  "Create Worker Payload"
// @Success      201      {object}  response.Response{data=service.WorkerResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/workers [post]
func (h *WorkerHandler) CreateWorker(c *gin.Context) {
	var req service.CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	worker, err := h.workerService.CreateWorker(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, worker))
}

// UpdateWorker updates a worker's details
// @Summary      Update worker
// @Tags         workers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Worker ID"
// @Param        payload  body      service.UpdateWorkerRequest  true  "Update Worker Payload"
// @Success      200      {object}  response.Response{data=service.WorkerResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/workers/{id} [put]
func (h *WorkerHandler) UpdateWorker(c *gin.Context) {
	var req service.UpdateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	worker, err := h.workerService.UpdateWorker(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, worker))
}

// DeleteWorker soft deletes a worker
// @Summary      Delete worker
// @Tags         workers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Worker ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/workers/{id} [delete]
func (h *WorkerHandler) DeleteWorker(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.workerService.DeleteWorker(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Worker deleted successfully"))
}
