// File: internal/user/handler.go
package user

import (
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/identity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the caller's own user record.
type Handler struct {
	service  Service
	resolver identity.Resolver
	logger   *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(service Service, resolver identity.Resolver, logger *zap.Logger) *Handler {
	return &Handler{service: service, resolver: resolver, logger: logger}
}

// RegisterRoutes sets up the routes for user operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.GET("/me", h.getMe)
}

func (h *Handler) getMe(c *gin.Context) {
	userID, err := h.resolver.ResolveUserID(c.Request.Context(), common.GetTokenFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	u, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User profile retrieved successfully.", ToUserResponse(u))
}
