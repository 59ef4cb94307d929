package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/payment/stripe"
)

// WebhookResult Webhook 处理结果
type WebhookResult struct {
	EventID string
	Type    string
	OrderID uint
	Handled bool
}

// HandleStripeWebhook 校验签名并处理支付意图事件
func (s *OrderService) HandleStripeWebhook(ctx context.Context, headers map[string]string, body []byte) (*WebhookResult, error) {
	event, err := stripe.VerifyAndParseWebhook(s.stripeCfg, headers, body, time.Now())
	if err != nil {
		logger.Warnw("stripe_webhook_verify_failed", "error", err)
		switch {
		case errors.Is(err, stripe.ErrSignatureInvalid):
			return nil, ErrPaymentSignatureInvalid
		case errors.Is(err, stripe.ErrConfigInvalid):
			return nil, ErrPaymentNotConfigured
		default:
			return nil, ErrPaymentPayloadInvalid
		}
	}
	logger.Infow("stripe_webhook_received",
		"event_id", event.ID,
		"event_type", event.Type,
		"intent_id", event.PaymentIntentID,
		"intent_status", event.Status,
	)
	result := &WebhookResult{EventID: event.ID, Type: event.Type}

	switch event.Type {
	case constants.StripeEventPaymentIntentSucceeded:
		userID, err := parseMetadataUserID(event.Metadata)
		if err != nil {
			logger.Warnw("stripe_webhook_missing_user", "event_id", event.ID, "intent_id", event.PaymentIntentID)
			return nil, ErrPaymentPayloadInvalid
		}
		order, err := s.FinalizePaymentIntent(ctx, userID, event.PaymentIntentID, event.Amount)
		if errors.Is(err, ErrPaymentOrderCanceled) {
			// 已记录错误日志，确认事件但不视为已处理
			result.OrderID = order.ID
			return result, nil
		}
		if err != nil {
			// 不可重试的业务错误直接确认，避免网关反复重投
			if errors.Is(err, ErrCartEmpty) || errors.Is(err, ErrPaymentAmountMismatch) || errors.Is(err, ErrPaymentOwnerMismatch) {
				logger.Warnw("stripe_webhook_finalize_skipped",
					"event_id", event.ID,
					"intent_id", event.PaymentIntentID,
					"user_id", userID,
					"error", err,
				)
				return result, nil
			}
			return nil, err
		}
		result.OrderID = order.ID
		result.Handled = true
	case constants.StripeEventPaymentIntentFailed, constants.StripeEventPaymentIntentCanceled:
		order, err := s.orderRepo.GetByPaymentIntent(event.PaymentIntentID)
		if err != nil {
			return nil, ErrOrderFetchFailed
		}
		if order == nil || order.Status != constants.OrderStatusPending {
			return result, nil
		}
		if err := s.transition(order, constants.OrderStatusCanceled); err != nil && !errors.Is(err, ErrOrderStatusInvalid) {
			return nil, err
		}
		result.OrderID = order.ID
		result.Handled = true
	}
	return result, nil
}

func parseMetadataUserID(metadata map[string]string) (uint, error) {
	raw := strings.TrimSpace(metadata[constants.StripeMetadataUserID])
	if raw == "" {
		return 0, ErrPaymentPayloadInvalid
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrPaymentPayloadInvalid
	}
	return uint(id), nil
}
