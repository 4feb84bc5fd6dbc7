package payment

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clickcart/server/internal/shared/metrics"
	"github.com/clickcart/server/internal/shared/mq"
)

// dedupeTTL bounds how long a provider event ID blocks replays. Providers
// redeliver within hours, not days.
const dedupeTTL = 24 * time.Hour

// WebhookHandler receives provider callbacks, verifies them through the
// matching adapter and enqueues the resulting status command. It never does
// order work itself; anything past verification happens asynchronously so
// the provider sees a fast, quiet endpoint.
type WebhookHandler struct {
	resolver *Resolver
	redis    redis.UniversalClient
	producer *mq.Producer
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(resolver *Resolver, rdb redis.UniversalClient, producer *mq.Producer, m *metrics.Metrics, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		resolver: resolver,
		redis:    rdb,
		producer: producer,
		metrics:  m,
		logger:   logger,
	}
}

// RegisterRoutes registers the webhook routes.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/:provider", h.HandleWebhook)
}

// HandleWebhook handles an incoming provider callback.
//
//	@Summary		Provider webhook
//	@Description	Receive a payment provider callback
//	@Tags			Webhook
//	@Accept			json
//	@Produce		json
//	@Param			provider	path	string	true	"Provider identifier"
//	@Success		200	{object}	map[string]string
//	@Router			/webhooks/{provider} [post]
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	providerID := c.Param("provider")
	adapter, ok := h.resolver.Lookup(providerID)
	if !ok {
		// Unknown providers get a success response so they stop retrying.
		h.logger.Warn("webhook for unknown provider dropped", zap.String("provider", providerID))
		h.metrics.WebhookEventsTotal.WithLabelValues(strings.ToUpper(providerID), "rejected").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	ctx := c.Request.Context()
	result, err := adapter.HandleWebhook(ctx, body, c.Request.Header)
	if err != nil {
		// Inauthentic or malformed. Log it, say nothing useful back.
		h.logger.Warn("webhook rejected",
			zap.String("provider", adapter.Identifier()),
			zap.Error(err),
		)
		h.metrics.WebhookEventsTotal.WithLabelValues(adapter.Identifier(), "rejected").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if result == nil {
		h.metrics.WebhookEventsTotal.WithLabelValues(adapter.Identifier(), "ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	// Best-effort replay suppression. If Redis is down the duplicate slips
	// through and resolves as a no-op at the coordinator.
	dedupeKey := fmt.Sprintf("webhook:dedupe:%s:%s", adapter.Identifier(), result.EventID)
	if result.EventID != "" {
		fresh, err := h.redis.SetNX(ctx, dedupeKey, 1, dedupeTTL).Result()
		if err != nil {
			h.logger.Warn("webhook dedupe check failed", zap.Error(err))
		} else if !fresh {
			h.metrics.WebhookEventsTotal.WithLabelValues(adapter.Identifier(), "duplicate").Inc()
			c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
			return
		}
	}

	cmd := mq.PaymentStatusCommand{
		OrderID:       result.OrderID,
		Status:        string(result.Status),
		TransactionID: result.TransactionID,
		Provider:      adapter.Identifier(),
		EventID:       result.EventID,
	}
	env, err := mq.NewEnvelope(mq.KindPaymentStatusCommand, result.OrderID, cmd)
	if err != nil {
		h.logger.Error("build status command", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if err := h.producer.Publish(ctx, mq.TopicPaymentRequest, []byte(result.OrderID.String()), env); err != nil {
		// Free the event ID so the provider's retry is not swallowed by
		// our own dedupe.
		h.redis.Del(ctx, dedupeKey)
		h.logger.Error("enqueue status command",
			zap.String("order_id", result.OrderID.String()),
			zap.Error(err),
		)
		h.metrics.WebhookEventsTotal.WithLabelValues(adapter.Identifier(), "enqueue_failed").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.metrics.WebhookEventsTotal.WithLabelValues(adapter.Identifier(), "accepted").Inc()
	h.logger.Info("webhook accepted",
		zap.String("provider", adapter.Identifier()),
		zap.String("order_id", result.OrderID.String()),
		zap.String("status", string(result.Status)),
		zap.String("event_id", result.EventID),
	)
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}
