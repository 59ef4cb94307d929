package constants

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCanceled  = "canceled"
)

// Stripe PaymentIntent 状态
const (
	PaymentIntentStatusSucceeded             = "succeeded"
	PaymentIntentStatusProcessing            = "processing"
	PaymentIntentStatusRequiresAction        = "requires_action"
	PaymentIntentStatusRequiresPaymentMethod = "requires_payment_method"
	PaymentIntentStatusRequiresConfirmation  = "requires_confirmation"
	PaymentIntentStatusCanceled              = "canceled"
)

// Stripe Webhook 事件类型
const (
	StripeEventPaymentIntentSucceeded = "payment_intent.succeeded"
	StripeEventPaymentIntentFailed    = "payment_intent.payment_failed"
	StripeEventPaymentIntentCanceled  = "payment_intent.canceled"
)

// 验证码场景
const (
	CaptchaSceneLogin      = "login"
	CaptchaSceneRegister   = "register"
	CaptchaSceneAdminLogin = "admin_login"
)

// 商品列表排序字段（白名单）
const (
	ProductSortNewest    = "-created_at"
	ProductSortOldest    = "created_at"
	ProductSortPriceAsc  = "price"
	ProductSortPriceDesc = "-price"
	ProductSortNameAsc   = "name"
	ProductSortNameDesc  = "-name"
)

// 默认队列
const QueueDefault = "default"

// 异步任务类型
const (
	TaskOrderStatusEmail   = "order:status_email"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
)

// 订单号前缀
const OrderNoPrefix = "SF"

// 元数据键
const StripeMetadataUserID = "user_id"
