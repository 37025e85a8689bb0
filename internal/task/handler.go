// File: internal/task/handler.go
package task

import (
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/identity"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for task handlers.
type Handler struct {
	service  Service
	resolver identity.Resolver
	logger   *zap.Logger
}

// NewHandler creates a new task handler.
func NewHandler(service Service, resolver identity.Resolver, logger *zap.Logger) *Handler {
	return &Handler{service: service, resolver: resolver, logger: logger}
}

// RegisterRoutes sets up the routes for task operations. Identity is resolved
// inside each handler so that malformed ids are rejected before credentials are checked.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks")
	{
		tasks.GET("", h.listTasks)
		tasks.POST("", h.createTask)
		tasks.GET("/:id", h.getTask)
		tasks.PUT("/:id", h.updateTask)
		tasks.PATCH("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
	}
}

func (h *Handler) caller(c *gin.Context) (uuid.UUID, bool) {
	userID, err := h.resolver.ResolveUserID(c.Request.Context(), common.GetTokenFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return uuid.Nil, false
	}
	return userID, true
}

func taskID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrInvalidID.WithDetails("Invalid task ID format."))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) listTasks(c *gin.Context) {
	var query ListTasksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	tasks, meta, err := h.service.ListTasks(c.Request.Context(), userID, query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Tasks retrieved successfully.", ToTaskResponses(tasks), meta)
}

func (h *Handler) createTask(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.GetLoggerFromContext(c).Debug("Create task: invalid body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	t, err := h.service.CreateTask(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Task created successfully.", ToTaskResponse(t))
}

func (h *Handler) getTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	t, err := h.service.GetTask(c.Request.Context(), userID, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Task retrieved successfully.", ToTaskResponse(t))
}

func (h *Handler) updateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.GetLoggerFromContext(c).Debug("Update task: invalid body", zap.Error(err), zap.String("taskID", id.String()))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	t, err := h.service.UpdateTask(c.Request.Context(), userID, id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Task updated successfully.", ToTaskResponse(t))
}

func (h *Handler) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	t, err := h.service.DeleteTask(c.Request.Context(), userID, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Task deleted successfully.", ToTaskResponse(t))
}
