// File: internal/common/response.go
package common

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// TimestampLayout is ISO 8601 with millisecond precision in UTC.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
	// DefaultSuccessMessage is used when a handler passes an empty message.
	DefaultSuccessMessage = "Request successful"
	// DefaultErrorCode is used for errors that carry no code.
	DefaultErrorCode = "UNKNOWN_ERROR"
)

// SuccessResponse wraps a single successful result.
type SuccessResponse struct {
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}

// PageResponse wraps one page of results.
type PageResponse struct {
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Meta      PageMeta    `json:"meta"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status    int         `json:"status"`
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Code      string      `json:"code"`
	Details   interface{} `json:"details,omitempty"`
	Path      string      `json:"path,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func now() string {
	return time.Now().UTC().Format(TimestampLayout)
}

// NewErrorResponse builds the error envelope for apiErr.
func NewErrorResponse(apiErr *APIError, path string) ErrorResponse {
	code := apiErr.Code
	if code == "" {
		code = DefaultErrorCode
	}
	return ErrorResponse{
		Status:    apiErr.StatusCode,
		Error:     http.StatusText(apiErr.StatusCode),
		Message:   apiErr.Message,
		Code:      code,
		Details:   apiErr.Details,
		Path:      path,
		Timestamp: now(),
	}
}

// RespondWithError sends a JSON error response and aborts the chain.
// Errors that are not *APIError are logged and replaced by a generic 500.
func RespondWithError(c *gin.Context, err error) {
	apiErr, ok := IsAPIError(err)
	if !ok {
		GetLoggerFromContext(c).Error("Unhandled internal error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		apiErr = ErrInternalServer
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, NewErrorResponse(apiErr, c.Request.URL.Path))
}

// RespondSuccess sends a JSON success response.
func RespondSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	if message == "" {
		message = DefaultSuccessMessage
	}
	c.JSON(statusCode, SuccessResponse{
		Status:    statusCode,
		Message:   message,
		Data:      data,
		Timestamp: now(),
	})
}

// RespondOK sends a 200 OK response.
func RespondOK(c *gin.Context, message string, data interface{}) {
	RespondSuccess(c, http.StatusOK, message, data)
}

// RespondCreated sends a 201 Created response.
func RespondCreated(c *gin.Context, message string, data interface{}) {
	RespondSuccess(c, http.StatusCreated, message, data)
}

// RespondPaginated sends one page of data with its metadata.
func RespondPaginated(c *gin.Context, message string, data interface{}, meta PageMeta) {
	if message == "" {
		message = DefaultSuccessMessage
	}
	c.JSON(http.StatusOK, PageResponse{
		Status:    http.StatusOK,
		Message:   message,
		Data:      data,
		Meta:      meta,
		Timestamp: now(),
	})
}
