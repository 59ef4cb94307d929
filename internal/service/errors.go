package service

import "errors"

// 通用
var (
	ErrNotFound         = errors.New("not found")
	ErrPageOutOfRange   = errors.New("page out of range")
	ErrInvalidInput     = errors.New("invalid input")
	ErrSlugExists       = errors.New("slug already exists")
	ErrConfigInvalid    = errors.New("config invalid")
	ErrQueueUnavailable = errors.New("queue unavailable")
)

// 目录
var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryInUse       = errors.New("category has products")
	ErrCategoryInvalid     = errors.New("category invalid")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInvalid      = errors.New("product invalid")
	ErrProductPriceInvalid = errors.New("product price invalid")
	ErrProductStockInvalid = errors.New("product stock invalid")
	ErrInvalidPriceFilter  = errors.New("invalid price filter")
)

// 购物车
var (
	ErrProductNotAvailable      = errors.New("product not available")
	ErrInvalidQuantity          = errors.New("quantity must be at least 1")
	ErrCartItemNotFound         = errors.New("cart item not found")
	ErrCartNotFound             = errors.New("cart not found")
	ErrCartEmpty                = errors.New("cart is empty")
	ErrProductStockInsufficient = errors.New("product stock insufficient")
)

// 订单与支付
var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderItemNotFound       = errors.New("order item not found")
	ErrOrderStatusInvalid      = errors.New("order status invalid")
	ErrOrderCreateFailed       = errors.New("order create failed")
	ErrOrderUpdateFailed       = errors.New("order update failed")
	ErrOrderFetchFailed        = errors.New("order fetch failed")
	ErrPaymentGatewayFailed    = errors.New("payment gateway failed")
	ErrPaymentNotSucceeded     = errors.New("payment not succeeded")
	ErrPaymentOwnerMismatch    = errors.New("payment owner mismatch")
	ErrPaymentAmountMismatch   = errors.New("payment amount mismatch")
	ErrPaymentOrderCanceled    = errors.New("payment succeeded on canceled order")
	ErrPaymentSignatureInvalid = errors.New("payment signature invalid")
	ErrPaymentPayloadInvalid   = errors.New("payment payload invalid")
	ErrPaymentNotConfigured    = errors.New("payment not configured")
)

// 账户
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrTokenInvalid       = errors.New("token invalid")
)

// 验证码与邮件
var (
	ErrCaptchaRequired           = errors.New("captcha required")
	ErrCaptchaInvalid            = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid      = errors.New("captcha config invalid")
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
)
