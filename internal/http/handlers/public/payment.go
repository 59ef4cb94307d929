package public

import (
	"errors"
	"net/http"
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePaymentIntent 前端支付组件使用的支付意图，返回裸 JSON {clientSecret}
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	result, err := h.OrderService.CreatePaymentIntent(c.Request.Context(), uid)
	if err != nil {
		key := "error.payment_gateway_failed"
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			key = "error.cart_empty"
		case errors.Is(err, service.ErrPaymentNotConfigured):
			key = "error.payment_not_configured"
		}
		requestLog(c).Warnw("payment_intent_create_failed", "user_id", uid, "error", err)
		c.JSON(http.StatusForbidden, gin.H{"error": localize(c, key)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": result.ClientSecret})
}

// PaymentSuccess 支付成功页：按 payment_intent 落单
func (h *Handler) PaymentSuccess(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	intentID := strings.TrimSpace(c.Query("payment_intent"))
	order, err := h.OrderService.PaymentSuccess(c.Request.Context(), uid, intentID)
	if err != nil {
		rules := concatMappedHandlerErrors(paymentErrorRules, checkoutErrorRules)
		respondWithMappedError(c, err, rules, response.CodeInternal, "error.order_create_failed")
		return
	}
	response.Success(c, gin.H{"order": order})
}

// PaymentCancel 支付取消页，购物车保持不变
func (h *Handler) PaymentCancel(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cart, err := h.OrderService.PaymentCancel(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"message": localize(c, "payment.canceled"),
		"cart":    cart,
	})
}
