package public

import (
	"errors"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结账请求
type CheckoutRequest struct {
	service.CheckoutForm
	PaymentMethodID string `json:"payment_method_id"`
}

// GetCheckout 结账页数据：购物车、表单初始值与支付公钥
func (h *Handler) GetCheckout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	summary, err := h.OrderService.CheckoutSummary(uid)
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "error.cart_fetch_failed")
		return
	}
	response.Success(c, summary)
}

// Checkout 提交结账表单并扣款
func (h *Handler) Checkout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.Checkout(c.Request.Context(), uid, req.CheckoutForm, req.PaymentMethodID)
	if err != nil {
		if formErr, ok := service.AsFormError(err); ok {
			summary, summaryErr := h.OrderService.CheckoutSummary(uid)
			if summaryErr != nil {
				respondFormError(c, formErr, nil)
				return
			}
			respondFormError(c, formErr, gin.H{"cart": summary.Cart, "stripe_publishable_key": summary.PublishableKey})
			return
		}
		var payErr *service.PaymentFailedError
		if errors.As(err, &payErr) {
			msg := localize(c, "error.payment_failed", payErr.Message)
			response.Error(c, response.CodeBadRequest, msg)
			return
		}
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "error.order_create_failed")
		return
	}
	response.Success(c, order)
}
