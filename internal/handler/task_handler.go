package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/api/tasks")
	{
		tasks.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListTasks)
		tasks.GET("/statistics", middleware.RequireRole("admin", "manager"), h.GetStatistics)
		tasks.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetTask)
		tasks.POST("", middleware.RequireRole("admin", "manager"), h.CreateTask)
		tasks.PUT("/:id/progress", middleware.RequireRole("admin", "manager", "staff"), h.UpdateProgress)
	}
}

// ListTasks returns tasks matching the query filters
// @Summary      List tasks
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        worker_id   query     string  false  "Filter by worker"
// @Param        status      query     string  false  "Filter by status"
// @Param        task_type   query     string  false  "Filter by task type (washing or daily_salary)"
// @Param        start_date  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "End date (YYYY-MM-DD)"
// @Success      200         {object}  response.Response{data=[]service.TaskResponse}
// @Failure      400         {object}  response.Response
// @Router       /api/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	filter := repository.TaskFilter{
		Status:   c.Query("status"),
		TaskType: c.Query("task_type"),
	}
	if raw := c.Query("worker_id"); raw != "" {
		workerID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid worker_id"))
			return
		}
		filter.WorkerID = &workerID
	}
	if raw := c.Query("start_date"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD"))
			return
		}
		filter.StartDate = &start
	}
	if raw := c.Query("end_date"); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid end_date, expected YYYY-MM-DD"))
			return
		}
		filter.EndDate = &end
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), filter)
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tasks))
}

// GetStatistics returns aggregate task counts and payouts
// @Summary      Task statistics
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.TaskStatistics}
// @Failure      500  {object}  response.Response
// @Router       /api/tasks/statistics [get]
func (h *TaskHandler) GetStatistics(c *gin.Context) {
	stats, err := h.taskService.GetStatistics(c.Request.Context())
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// GetTask returns a single task with derived status and net pay
// @Summary      Get task
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=service.TaskResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.taskService.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// CreateTask assigns a washing task or records a daily salary entry
// @Summary      Create task
// @Description  Washing tasks reserve raw stock through an assign movement; daily salary entries complete immediately
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTaskRequest  true  "Create Task Payload"
// @Success      201      {object}  response.Response{data=service.TaskResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	task, err := h.taskService.CreateTask(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, task))
}

// UpdateProgress records washed quantity and deduction on a task
// @Summary      Update task progress
// @Description  Upserts the completion movement for the task, so repeated updates never double count
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Task ID"
// @Param        payload  body      service.UpdateTaskRequest  true  "Update Progress Payload"
// @Success      200      {object}  response.Response{data=service.TaskResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tasks/{id}/progress [put]
func (h *TaskHandler) UpdateProgress(c *gin.Context) {
	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString("userID")
	task, err := h.taskService.UpdateProgress(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		c.JSON(response.StatusFor(err), response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}
