package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revenue-collection-core/internal/domain/shared"
)

// SignatureHeader carries the gateway's HMAC signature over the raw body
const SignatureHeader = "X-Webhook-Signature"

// EventProcessor applies one verified webhook delivery
type EventProcessor interface {
	Process(ctx context.Context, body []byte, signature string) error
}

// WebhookHandler handles inbound gateway webhooks. Its status mapping is
// tuned for gateway retry behavior: duplicates and permanently invalid
// events are acknowledged with 200 so the gateway stops redelivering, while
// transient failures return 5xx to trigger a redelivery.
type WebhookHandler struct {
	funding      EventProcessor
	disbursement EventProcessor
	logger       *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(logger *slog.Logger, funding, disbursement EventProcessor) *WebhookHandler {
	return &WebhookHandler{
		funding:      funding,
		disbursement: disbursement,
		logger:       logger,
	}
}

// Funding handles gateway payment notifications
func (h *WebhookHandler) Funding(c *gin.Context) {
	h.handle(c, h.funding, "funding")
}

// Disbursement handles gateway transfer outcome notifications
func (h *WebhookHandler) Disbursement(c *gin.Context) {
	h.handle(c, h.disbursement, "disbursement")
}

func (h *WebhookHandler) handle(c *gin.Context, processor EventProcessor, kind string) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondBadRequest(c, "Failed to read request body")
		return
	}

	err = processor.Process(c.Request.Context(), body, c.GetHeader(SignatureHeader))
	if err == nil {
		RespondOK(c, gin.H{"status": "processed"})
		return
	}

	var tagged *shared.Error
	if !errors.As(err, &tagged) {
		h.logger.Error("Webhook processing failed", "kind", kind, "error", err)
		RespondInternalError(c)
		return
	}

	switch tagged.Kind {
	case shared.KindInvalidSignature:
		h.logger.Warn("Webhook rejected", "kind", kind, "error", err)
		RespondUnauthorized(c, tagged.Message)
	case shared.KindDuplicateEvent:
		// Already applied; acknowledge so the gateway stops retrying.
		RespondOK(c, gin.H{"status": "duplicate"})
	case shared.KindValidation:
		// Permanently unprocessable; a retry cannot fix it.
		h.logger.Warn("Webhook event discarded", "kind", kind, "error", err)
		RespondOK(c, gin.H{"status": "discarded", "reason": tagged.Message})
	case shared.KindExternalService:
		h.logger.Error("Webhook verification unavailable", "kind", kind, "error", err)
		RespondWithError(c, http.StatusBadGateway, string(shared.KindExternalService), tagged.Message)
	default:
		h.logger.Error("Webhook processing failed", "kind", kind, "error", err)
		RespondInternalError(c)
	}
}
