package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetails_DoesNotMutateCannedError(t *testing.T) {
	derived := ErrNotFound.WithDetails("Task not found.")

	assert.Nil(t, ErrNotFound.Details)
	assert.Equal(t, "Task not found.", derived.Details)
	assert.True(t, errors.Is(derived, ErrNotFound))
	assert.False(t, errors.Is(derived, ErrUserNotFound))
}

func TestIsAPIError_UnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", ErrForbidden.WithMessage("nope"))

	apiErr, ok := IsAPIError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "nope", apiErr.Message)

	_, ok = IsAPIError(errors.New("plain"))
	assert.False(t, ok)
}

type bindTarget struct {
	Title    string `json:"title" binding:"required,min=1"`
	Priority string `json:"priority" binding:"omitempty,oneof=low medium high"`
}

func TestBindingError_ReportsJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RegisterValidation()

	var target bindTarget
	err := bindJSON(t, `{"priority":"urgent"}`, &target)
	require.Error(t, err)

	apiErr := BindingError(err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)

	details, ok := apiErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "priority")
}

func TestBindingError_MalformedJSONIsBadRequest(t *testing.T) {
	var target bindTarget
	err := bindJSON(t, `{"title":`, &target)
	require.Error(t, err)

	apiErr := BindingError(err)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}
