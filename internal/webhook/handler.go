// File: internal/webhook/handler.go
package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/config"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/metrics"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/user"

	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Plain-text replies expected by the identity provider.
const (
	replyReceived       = "Webhook received"
	replyMissingHeaders = "Error: Missing signature headers"
	replyVerification   = "Error: Verification error"
	replyBadPayload     = "Error: Invalid payload"
	replyFailed         = "Error: Failed to process webhook"
)

// Handler receives signed user lifecycle events and keeps user records in sync.
type Handler struct {
	verifier *svix.Webhook
	users    user.Service
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// NewHandler builds the receiver from WEBHOOK_SIGNING_SECRET.
func NewHandler(cfg *config.Config, users user.Service, collector *metrics.Collector, logger *zap.Logger) (*Handler, error) {
	verifier, err := NewVerifier(cfg.WebhookSigningSecret)
	if err != nil {
		return nil, err
	}
	return &Handler{verifier: verifier, users: users, metrics: collector, logger: logger.Named("WebhookHandler")}, nil
}

// RegisterRoutes mounts the receiver under /webhooks.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/webhooks/identity", h.receive)
}

func (h *Handler) receive(c *gin.Context) {
	logger := common.GetLoggerFromContext(c)

	msgID := c.GetHeader(HeaderID)
	timestamp := c.GetHeader(HeaderTimestamp)
	signature := c.GetHeader(HeaderSignature)
	if msgID == "" || timestamp == "" || signature == "" {
		h.metrics.ObserveWebhookEvent("unknown", "rejected")
		c.String(http.StatusBadRequest, replyMissingHeaders)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.metrics.ObserveWebhookEvent("unknown", "rejected")
		c.String(http.StatusBadRequest, replyBadPayload)
		return
	}

	if err := h.verifier.Verify(body, c.Request.Header); err != nil {
		logger.Warn("Could not verify webhook", zap.Error(err), zap.String("svixID", msgID))
		h.metrics.ObserveWebhookEvent("unknown", "rejected")
		c.String(http.StatusBadRequest, replyVerification)
		return
	}

	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil || evt.Data.ID == "" {
		logger.Warn("Malformed webhook payload", zap.Error(err), zap.String("svixID", msgID))
		h.metrics.ObserveWebhookEvent(evt.Type, "rejected")
		c.String(http.StatusBadRequest, replyBadPayload)
		return
	}

	outcome, err := h.dispatch(c, evt)
	if err != nil {
		logger.Error("Failed to process webhook", zap.Error(err), zap.String("type", evt.Type), zap.String("externalID", evt.Data.ID))
		h.metrics.ObserveWebhookEvent(evt.Type, "failed")
		c.String(http.StatusInternalServerError, replyFailed)
		return
	}
	h.metrics.ObserveWebhookEvent(evt.Type, outcome)
	c.String(http.StatusOK, replyReceived)
}

// dispatch applies evt and reports whether it changed anything.
func (h *Handler) dispatch(c *gin.Context, evt Event) (string, error) {
	ctx := c.Request.Context()
	switch evt.Type {
	case EventUserCreated:
		if _, err := h.users.SyncCreated(ctx, evt.Data.Profile()); err != nil {
			var apiErr *common.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
				return "ignored", nil
			}
			return "", err
		}
		return "processed", nil
	case EventUserUpdated:
		_, found, err := h.users.SyncUpdated(ctx, evt.Data.Profile())
		if err != nil {
			return "", err
		}
		if !found {
			return "ignored", nil
		}
		return "processed", nil
	case EventUserDeleted:
		found, err := h.users.SyncDeleted(ctx, evt.Data.ID)
		if err != nil {
			return "", err
		}
		if !found {
			return "ignored", nil
		}
		return "processed", nil
	default:
		h.logger.Debug("Ignoring webhook event type", zap.String("type", evt.Type))
		return "ignored", nil
	}
}
