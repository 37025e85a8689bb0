// File: internal/middleware/error.go
package middleware

import (
	"net/http"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler renders errors attached with c.Error and the router's
// unmatched-route and wrong-method outcomes as error envelopes.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			apiErr, ok := common.IsAPIError(err)
			if !ok {
				logger.Error("Unhandled application error",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(common.RequestIDKey)),
				)
				apiErr = common.ErrInternalServer
			}
			c.AbortWithStatusJSON(apiErr.StatusCode, common.NewErrorResponse(apiErr, c.Request.URL.Path))
			return
		}

		switch c.Writer.Status() {
		case http.StatusNotFound:
			apiErr := common.ErrNotFound.WithDetails("The requested endpoint does not exist.")
			c.AbortWithStatusJSON(apiErr.StatusCode, common.NewErrorResponse(apiErr, c.Request.URL.Path))
		case http.StatusMethodNotAllowed:
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed, common.NewErrorResponse(common.ErrMethodNotAllowed, c.Request.URL.Path))
		}
	}
}
