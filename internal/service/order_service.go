package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/payment/stripe"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// OrderService 订单服务（结账、支付确认与订单管理）
type OrderService struct {
	orderRepo     repository.OrderRepository
	cartRepo      repository.CartRepository
	productRepo   repository.ProductRepository
	userRepo      repository.UserRepository
	profileRepo   repository.ProfileRepository
	cartService   *CartService
	queueClient   *queue.Client
	stripeCfg     *stripe.Config
	pricing       PricingPolicy
	expireMinutes int
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository, profileRepo repository.ProfileRepository, cartService *CartService, queueClient *queue.Client, stripeCfg config.StripeConfig, pricing PricingPolicy, expireMinutes int) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		cartService:   cartService,
		queueClient:   queueClient,
		stripeCfg:     stripe.NewConfig(stripeCfg.SecretKey, stripeCfg.PublishableKey, stripeCfg.WebhookSecret, stripeCfg.APIBaseURL, stripeCfg.WebhookToleranceSeconds),
		pricing:       pricing,
		expireMinutes: expireMinutes,
	}
}

// PaymentFailedError 网关拒绝扣款
type PaymentFailedError struct {
	Message string
}

func (e *PaymentFailedError) Error() string {
	return "Payment failed: " + e.Message
}

// Is 使 errors.Is(err, ErrPaymentGatewayFailed) 成立
func (e *PaymentFailedError) Is(target error) bool {
	return target == ErrPaymentGatewayFailed
}

// StockShortageError 库存不足
type StockShortageError struct {
	ProductName string
	Available   int
}

func (e *StockShortageError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (available: %d)", e.ProductName, e.Available)
}

// Is 使 errors.Is(err, ErrProductStockInsufficient) 成立
func (e *StockShortageError) Is(target error) bool {
	return target == ErrProductStockInsufficient
}

// CheckoutSummary 结账页数据
type CheckoutSummary struct {
	Cart           *CartView    `json:"cart"`
	Initial        CheckoutForm `json:"initial"`
	PublishableKey string       `json:"stripe_publishable_key"`
}

// PaymentIntentResult 前端确认支付所需数据
type PaymentIntentResult struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// orderCreateParams 下单参数
type orderCreateParams struct {
	UserID   uint
	CartID   uint
	Contact  CheckoutForm
	Items    []models.CartItem
	Totals   Totals
	IntentID string
	Status   string
	// FormContact 联系信息来自结账表单，落单撞上已有订单时以表单为准
	FormContact bool
}

// CheckoutSummary 获取结账页数据，表单初始值取自用户与资料
func (s *OrderService) CheckoutSummary(userID uint) (*CheckoutSummary, error) {
	cart, err := s.cartService.GetCart(userID)
	if err != nil {
		return nil, err
	}
	initial, err := s.initialContact(userID)
	if err != nil {
		return nil, err
	}
	return &CheckoutSummary{
		Cart:           cart,
		Initial:        initial,
		PublishableKey: s.stripeCfg.PublishableKey,
	}, nil
}

// Checkout 校验表单、扣款并创建订单
func (s *OrderService) Checkout(ctx context.Context, userID uint, form CheckoutForm, paymentMethodID string) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	form.Normalize()
	formErr := form.Validate()
	paymentMethodID = strings.TrimSpace(paymentMethodID)
	if paymentMethodID == "" {
		if formErr == nil {
			formErr = &FormError{Fields: map[string]FieldError{}}
		}
		formErr.Fields["payment_method_id"] = FieldError{Key: "form.required"}
	}
	if formErr != nil {
		return nil, formErr
	}

	cart, items, err := s.loadCartItems(userID)
	if err != nil {
		return nil, err
	}
	if err := checkCartStock(items); err != nil {
		return nil, err
	}
	totals := ComputeTotals(CartLines(items), s.pricing)
	amount, err := totals.MinorAmount(s.pricing.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := stripe.ValidateConfig(s.stripeCfg); err != nil {
		return nil, ErrPaymentNotConfigured
	}

	intent, err := stripe.CreatePaymentIntent(ctx, s.stripeCfg, stripe.PaymentIntentInput{
		Amount:          amount,
		Currency:        s.pricing.Currency,
		PaymentMethodID: paymentMethodID,
		Confirm:         true,
		Description:     fmt.Sprintf("storefront checkout user %d", userID),
		Metadata:        map[string]string{constants.StripeMetadataUserID: strconv.FormatUint(uint64(userID), 10)},
	})
	if err != nil {
		var cardErr *stripe.CardError
		if errors.As(err, &cardErr) {
			logger.Warnw("checkout_payment_failed",
				"user_id", userID,
				"code", cardErr.Code,
				"decline_code", cardErr.DeclineCode,
				"message", cardErr.Message,
			)
			return nil, &PaymentFailedError{Message: cardErr.Message}
		}
		logger.Errorw("checkout_payment_gateway_error", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayFailed, err)
	}

	status, err := orderStatusForIntent(intent.Status)
	if err != nil {
		logger.Warnw("checkout_payment_not_completed", "user_id", userID, "intent_id", intent.ID, "intent_status", intent.Status)
		return nil, err
	}

	order, created, err := s.createOrder(orderCreateParams{
		UserID:      userID,
		CartID:      cart.ID,
		Contact:     form,
		Items:       items,
		Totals:      totals,
		IntentID:    intent.ID,
		Status:      status,
		FormContact: true,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return order, nil
	}
	logger.Infow("checkout_order_created",
		"user_id", userID,
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"intent_id", intent.ID,
		"status", order.Status,
		"total", order.TotalPrice.String(),
	)
	s.afterOrderCreated(order)
	return order, nil
}

// CreatePaymentIntent 按购物车总额创建待确认的支付意图
func (s *OrderService) CreatePaymentIntent(ctx context.Context, userID uint) (*PaymentIntentResult, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	_, items, err := s.loadCartItems(userID)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(CartLines(items), s.pricing)
	amount, err := totals.MinorAmount(s.pricing.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := stripe.ValidateConfig(s.stripeCfg); err != nil {
		return nil, ErrPaymentNotConfigured
	}
	intent, err := stripe.CreatePaymentIntent(ctx, s.stripeCfg, stripe.PaymentIntentInput{
		Amount:   amount,
		Currency: s.pricing.Currency,
		Metadata: map[string]string{constants.StripeMetadataUserID: strconv.FormatUint(uint64(userID), 10)},
	})
	if err != nil {
		logger.Warnw("payment_intent_create_failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayFailed, err)
	}
	return &PaymentIntentResult{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		Currency:     s.pricing.Currency,
	}, nil
}

// FinalizePaymentIntent 支付成功后落单（幂等）：已有订单则补记为已支付，否则按购物车创建
func (s *OrderService) FinalizePaymentIntent(ctx context.Context, userID uint, intentID string, amount int64) (*models.Order, error) {
	intentID = strings.TrimSpace(intentID)
	if userID == 0 || intentID == "" {
		return nil, ErrPaymentPayloadInvalid
	}
	existing, err := s.orderRepo.GetByPaymentIntent(intentID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if existing != nil {
		if existing.UserID != userID {
			return nil, ErrPaymentOwnerMismatch
		}
		order, err := s.markPaid(existing)
		if err != nil {
			return nil, err
		}
		if order.Status == constants.OrderStatusCanceled {
			// 款项已到账但订单已被超时取消，需人工退款或恢复
			logger.Errorw("payment_succeeded_on_canceled_order",
				"user_id", userID,
				"order_id", order.ID,
				"order_no", order.OrderNo,
				"intent_id", intentID,
				"amount", amount,
			)
			return order, ErrPaymentOrderCanceled
		}
		return order, nil
	}

	cart, items, err := s.loadCartItems(userID)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(CartLines(items), s.pricing)
	expected, err := totals.MinorAmount(s.pricing.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if amount != expected {
		logger.Warnw("payment_finalize_amount_mismatch",
			"user_id", userID,
			"intent_id", intentID,
			"intent_amount", amount,
			"cart_amount", expected,
		)
		return nil, ErrPaymentAmountMismatch
	}
	contact, err := s.initialContact(userID)
	if err != nil {
		return nil, err
	}

	order, created, err := s.createOrder(orderCreateParams{
		UserID:   userID,
		CartID:   cart.ID,
		Contact:  contact,
		Items:    items,
		Totals:   totals,
		IntentID: intentID,
		Status:   constants.OrderStatusPaid,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return order, nil
	}
	logger.Infow("payment_finalize_order_created",
		"user_id", userID,
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"intent_id", intentID,
	)
	s.afterOrderCreated(order)
	return order, nil
}

// PaymentSuccess 支付成功页：校验支付意图后落单，无意图参数时返回最近订单
func (s *OrderService) PaymentSuccess(ctx context.Context, userID uint, intentID string) (*models.Order, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		order, err := s.orderRepo.GetLatestByUser(userID)
		if err != nil {
			return nil, ErrOrderFetchFailed
		}
		if order == nil {
			return nil, ErrOrderNotFound
		}
		return order, nil
	}
	if err := stripe.ValidateConfig(s.stripeCfg); err != nil {
		return nil, ErrPaymentNotConfigured
	}
	intent, err := stripe.RetrievePaymentIntent(ctx, s.stripeCfg, intentID)
	if err != nil {
		logger.Warnw("payment_success_retrieve_failed", "user_id", userID, "intent_id", intentID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayFailed, err)
	}
	if intent.Status != constants.PaymentIntentStatusSucceeded {
		return nil, ErrPaymentNotSucceeded
	}
	if intent.Metadata[constants.StripeMetadataUserID] != strconv.FormatUint(uint64(userID), 10) {
		return nil, ErrPaymentOwnerMismatch
	}
	return s.FinalizePaymentIntent(ctx, userID, intent.ID, intent.SettledAmount())
}

// PaymentCancel 支付取消页：购物车保持不变
func (s *OrderService) PaymentCancel(userID uint) (*CartView, error) {
	return s.cartService.GetCart(userID)
}

func (s *OrderService) loadCartItems(userID uint) (*models.Cart, []models.CartItem, error) {
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	if cart == nil {
		return nil, nil, ErrCartEmpty
	}
	items, err := s.cartRepo.ListItems(cart.ID)
	if err != nil {
		return nil, nil, err
	}
	valid := items[:0]
	for _, item := range items {
		if item.Product != nil && item.Quantity > 0 {
			valid = append(valid, item)
		}
	}
	if len(valid) == 0 {
		return nil, nil, ErrCartEmpty
	}
	return cart, valid, nil
}

func checkCartStock(items []models.CartItem) error {
	for _, item := range items {
		if !item.Product.Available {
			return fmt.Errorf("%w: %s", ErrProductNotAvailable, item.Product.Name)
		}
		if item.Product.Stock < item.Quantity {
			return &StockShortageError{ProductName: item.Product.Name, Available: item.Product.Stock}
		}
	}
	return nil
}

func orderStatusForIntent(intentStatus string) (string, error) {
	switch intentStatus {
	case constants.PaymentIntentStatusSucceeded:
		return constants.OrderStatusPaid, nil
	case constants.PaymentIntentStatusProcessing, constants.PaymentIntentStatusRequiresAction:
		return constants.OrderStatusPending, nil
	default:
		return "", &PaymentFailedError{Message: "payment intent " + intentStatus}
	}
}

// initialContact 表单初始值：姓名邮箱取自用户，电话地址取自资料
func (s *OrderService) initialContact(userID uint) (CheckoutForm, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return CheckoutForm{}, err
	}
	if user == nil {
		return CheckoutForm{}, ErrUserNotFound
	}
	form := CheckoutForm{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
	profile, err := s.profileRepo.GetByUser(userID)
	if err != nil {
		return CheckoutForm{}, err
	}
	if profile != nil {
		form.Phone = profile.Phone
		form.Address = profile.Address
		form.City = profile.City
		form.State = profile.State
		form.ZipCode = profile.ZipCode
	}
	return form, nil
}

// createOrder 单事务内创建订单与订单项、扣减库存并清空购物车
// 同一支付意图已有订单时返回该订单，created 为 false
func (s *OrderService) createOrder(params orderCreateParams) (order *models.Order, created bool, err error) {
	now := time.Now()
	order = &models.Order{
		OrderNo:             generateOrderNo(),
		UserID:              params.UserID,
		FirstName:           params.Contact.FirstName,
		LastName:            params.Contact.LastName,
		Email:               params.Contact.Email,
		Phone:               params.Contact.Phone,
		Address:             params.Contact.Address,
		City:                params.Contact.City,
		State:               params.Contact.State,
		ZipCode:             params.Contact.ZipCode,
		Currency:            s.pricing.Currency,
		Subtotal:            params.Totals.Subtotal,
		Shipping:            params.Totals.Shipping,
		Tax:                 params.Totals.Tax,
		TotalPrice:          params.Totals.Total,
		Status:              params.Status,
		StripePaymentIntent: params.IntentID,
	}
	if params.Status == constants.OrderStatusPaid {
		order.PaidAt = &now
	}
	orderItems := make([]models.OrderItem, 0, len(params.Items))
	for _, item := range params.Items {
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Price:       item.Product.Price,
			Quantity:    item.Quantity,
		})
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order, orderItems); err != nil {
			return err
		}
		productRepo := s.productRepo.WithTx(tx)
		for _, item := range orderItems {
			if err := productRepo.DecrementStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return s.cartRepo.WithTx(tx).ClearItems(params.CartID)
	})
	if err != nil {
		// 并发落单时由唯一索引兜底，返回已存在的订单
		if existing, lookupErr := s.orderRepo.GetByPaymentIntent(params.IntentID); lookupErr == nil && existing != nil {
			logger.Infow("order_create_intent_exists", "user_id", params.UserID, "order_id", existing.ID, "intent_id", params.IntentID)
			existing, err = s.applyFormContact(existing, params)
			return existing, false, err
		}
		logger.Errorw("order_create_failed", "user_id", params.UserID, "intent_id", params.IntentID, "error", err)
		return nil, false, ErrOrderCreateFailed
	}
	return order, true, nil
}

// applyFormContact 已有订单的联系信息来自资料时，改写为结账表单填写的内容
func (s *OrderService) applyFormContact(order *models.Order, params orderCreateParams) (*models.Order, error) {
	if !params.FormContact || order.UserID != params.UserID || orderContact(order) == params.Contact {
		return order, nil
	}
	if err := s.orderRepo.UpdateFields(order.ID, contactUpdates(params.Contact)); err != nil {
		logger.Errorw("order_contact_sync_failed", "order_id", order.ID, "intent_id", params.IntentID, "error", err)
		return nil, ErrOrderUpdateFailed
	}
	latest, err := s.orderRepo.GetByID(order.ID)
	if err != nil || latest == nil {
		return nil, ErrOrderFetchFailed
	}
	return latest, nil
}

func orderContact(order *models.Order) CheckoutForm {
	return CheckoutForm{
		FirstName: order.FirstName,
		LastName:  order.LastName,
		Email:     order.Email,
		Phone:     order.Phone,
		Address:   order.Address,
		City:      order.City,
		State:     order.State,
		ZipCode:   order.ZipCode,
	}
}

func contactUpdates(form CheckoutForm) map[string]interface{} {
	return map[string]interface{}{
		"first_name": form.FirstName,
		"last_name":  form.LastName,
		"email":      form.Email,
		"phone":      form.Phone,
		"address":    form.Address,
		"city":       form.City,
		"state":      form.State,
		"zip_code":   form.ZipCode,
		"updated_at": time.Now(),
	}
}

func (s *OrderService) afterOrderCreated(order *models.Order) {
	if order == nil {
		return
	}
	s.enqueueStatusEmail(order.ID, order.Status)
	if order.Status == constants.OrderStatusPending {
		s.enqueueTimeoutCancel(order)
	}
}

func (s *OrderService) enqueueTimeoutCancel(order *models.Order) {
	if s.queueClient == nil || order == nil {
		return
	}
	delay := time.Duration(s.resolveExpireMinutes()) * time.Minute
	if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{OrderID: order.ID}, delay); err != nil {
		logger.Warnw("order_enqueue_timeout_cancel_failed", "order_id", order.ID, "delay", delay.String(), "error", err)
	}
}

func (s *OrderService) resolveExpireMinutes() int {
	if s.expireMinutes <= 0 {
		return 30
	}
	return s.expireMinutes
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return fmt.Sprintf("%s%s%06d", constants.OrderNoPrefix, now, time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%s%s%06d", constants.OrderNoPrefix, now, n.Int64())
}
