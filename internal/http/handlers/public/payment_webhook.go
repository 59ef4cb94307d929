package public

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

const webhookLogValueMaxLen = 64

// StripeWebhook Stripe webhook 回调，签名或负载错误返回 400，其余一律确认
func (h *Handler) StripeWebhook(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("stripe_webhook_body_read_failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	log.Infow("stripe_webhook_received",
		"client_ip", c.ClientIP(),
		"body_size", len(body),
		"stripe_signature", truncateLogValue(strings.TrimSpace(c.GetHeader("Stripe-Signature"))),
	)
	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) == 0 {
			continue
		}
		headers[key] = values[0]
	}

	result, err := h.OrderService.HandleStripeWebhook(c.Request.Context(), headers, body)
	if err != nil {
		log.Warnw("stripe_webhook_handle_failed", "error", err)
		switch {
		case errors.Is(err, service.ErrPaymentSignatureInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		case errors.Is(err, service.ErrPaymentPayloadInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		}
		return
	}
	log.Infow("stripe_webhook_processed",
		"event_id", result.EventID,
		"event_type", result.Type,
		"order_id", result.OrderID,
		"handled", result.Handled,
	)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func truncateLogValue(value string) string {
	if len(value) <= webhookLogValueMaxLen {
		return value
	}
	return value[:webhookLogValueMaxLen] + "..."
}
