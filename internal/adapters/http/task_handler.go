package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

// TaskHandler serves the task collection and item endpoints
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, log *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      log.WithComponent("task_handler"),
	}
}

// Register mounts the task endpoints. Every method is routed to the handlers
// so unsupported ones get a 405 body with an Allow header.
func (h *TaskHandler) Register(g *echo.Group) {
	g.Any("/tasks", h.Collection)
	g.Any("/tasks/:id", h.Item)
}

// Collection dispatches /tasks by method
func (h *TaskHandler) Collection(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodGet:
		return h.ListTasks(c)
	case http.MethodPost:
		return h.CreateTask(c)
	default:
		return methodNotAllowed(c, http.MethodGet, http.MethodPost)
	}
}

// Item dispatches /tasks/:id by method
func (h *TaskHandler) Item(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodGet:
		return h.GetTask(c)
	case http.MethodDelete:
		return h.DeleteTask(c)
	case http.MethodPatch:
		return h.UpdateTask(c)
	default:
		return methodNotAllowed(c, http.MethodGet, http.MethodDelete, http.MethodPatch)
	}
}

// ListTasks godoc
// @Summary List tasks
// @Description Get every task ordered by id
// @Tags tasks
// @Produce json
// @Success 200 {array} entities.Task
// @Failure 500 {object} ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	tasks, err := h.taskService.ListTasks(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, "fetch tasks", err)
	}

	return c.JSON(http.StatusOK, tasks)
}

// CreateTask godoc
// @Summary Create a new task
// @Description Create a task; title, status and due date are required
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body ports.TaskPayload true "Task data"
// @Success 201 {object} entities.Task
// @Failure 400 {object} ValidationErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.TaskPayload
	if err := decodeStrict(c, &req); err != nil {
		return respondError(c, h.logger, "create task", err)
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, "create task", err)
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask godoc
// @Summary Get task by ID
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} entities.Task
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, ok := parseTaskID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: msgTaskNotFound})
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, "fetch task", err)
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask godoc
// @Summary Update a task
// @Description Change status, due date or description. The title cannot be changed.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body ports.TaskPayload true "Fields to change"
// @Success 200 {object} entities.Task
// @Failure 400 {object} ValidationErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tasks/{id} [patch]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, ok := parseTaskID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: msgTaskNotFound})
	}

	var req ports.TaskPayload
	if err := decodeStrict(c, &req); err != nil {
		return respondError(c, h.logger, "update task", err)
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, h.logger, "update task", err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, ok := parseTaskID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: msgTaskNotFound})
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, "delete task", err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}
