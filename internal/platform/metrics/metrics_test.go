package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	c := NewCollector()

	c.ObserveRequest("GET", "/api/v1/tasks", "200", 0.01)
	c.ObserveRequest("GET", "/api/v1/tasks", "200", 0.02)
	c.ObserveWebhookEvent("user.created", "processed")
	c.ObserveTaskMutation("create")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "/api/v1/tasks", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.webhookEvents.WithLabelValues("user.created", "processed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.taskMutations.WithLabelValues("create")))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveRequest("GET", "/", "200", 0)
		c.ObserveWebhookEvent("user.deleted", "ignored")
		c.ObserveTaskMutation("delete")
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.ObserveTaskMutation("update")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `task_manager_tasks_mutations_total{operation="update"} 1`))
}
