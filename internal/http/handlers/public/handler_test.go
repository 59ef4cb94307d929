package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/payment/stripe"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_handler_test"

type handlerTestEnv struct {
	db      *gorm.DB
	handler *Handler
	router  *gin.Engine
	user    *models.User
	product *models.Product
}

func setupHandlerTest(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	models.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{
		Stripe: config.StripeConfig{WebhookSecret: testWebhookSecret},
	}
	pricing, err := service.NewPricingPolicy(cfg.Store)
	require.NoError(t, err)

	c := &provider.Container{
		Config:       cfg,
		UserRepo:     repository.NewUserRepository(db),
		ProfileRepo:  repository.NewProfileRepository(db),
		CategoryRepo: repository.NewCategoryRepository(db),
		ProductRepo:  repository.NewProductRepository(db),
		CartRepo:     repository.NewCartRepository(db),
		OrderRepo:    repository.NewOrderRepository(db),
	}
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo, cfg.Store)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, pricing)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CartRepo, c.ProductRepo, c.UserRepo, c.ProfileRepo,
		c.CartService, nil, cfg.Stripe, pricing, 0)

	category := &models.Category{Name: "Lighting", Slug: "lighting"}
	require.NoError(t, db.Create(category).Error)
	product := &models.Product{
		CategoryID: category.ID,
		Name:       "Lamp",
		Slug:       "lamp",
		Price:      models.MustMoney("19.99"),
		Stock:      5,
		Available:  true,
	}
	require.NoError(t, db.Create(product).Error)
	user := &models.User{
		Username:     "ada",
		Email:        "ada@example.com",
		PasswordHash: "hash",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)

	h := New(c)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(CartMethodNotAllowed)
	r.GET("/products", h.GetProducts)
	r.POST("/webhook/stripe", h.StripeWebhook)
	authed := r.Group("/", func(ctx *gin.Context) {
		ctx.Set("user_id", user.ID)
		ctx.Next()
	})
	authed.GET("/cart", h.GetCart)
	authed.POST("/cart/add/:product_id", h.AddToCart)
	authed.POST("/cart/update/:item_id", h.UpdateCartItem)
	authed.POST("/cart/remove/:item_id", h.RemoveCartItem)
	authed.POST("/checkout", h.Checkout)
	authed.GET("/orders", h.ListOrders)

	return &handlerTestEnv{db: db, handler: h, router: r, user: user, product: product}
}

func (e *handlerTestEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	payload := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload), w.Body.String())
	}
	return w, payload
}

func (e *handlerTestEnv) firstCartItemID(t *testing.T) uint {
	t.Helper()
	var item models.CartItem
	require.NoError(t, e.db.Where("product_id = ?", e.product.ID).First(&item).Error)
	return item.ID
}

func TestAddToCartDefaultsQuantityAndAccumulates(t *testing.T) {
	env := setupHandlerTest(t)
	path := fmt.Sprintf("/cart/add/%d", env.product.ID)

	w, _ := env.do(t, http.MethodPost, path, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, payload := env.do(t, http.MethodPost, path, map[string]int{"quantity": 2}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := payload["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	assert.EqualValues(t, 3, items[0].(map[string]interface{})["quantity"])
}

func TestAddToCartUnknownProduct(t *testing.T) {
	env := setupHandlerTest(t)
	w, payload := env.do(t, http.MethodPost, "/cart/add/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.EqualValues(t, 404, payload["status_code"])
}

func TestUpdateCartItemReturnsBareJSON(t *testing.T) {
	env := setupHandlerTest(t)
	env.do(t, http.MethodPost, fmt.Sprintf("/cart/add/%d", env.product.ID), nil, nil)
	itemID := env.firstCartItemID(t)

	w, payload := env.do(t, http.MethodPost, fmt.Sprintf("/cart/update/%d", itemID), map[string]int{"quantity": 2}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "Cart updated successfully", payload["message"])
	assert.Equal(t, "39.98", payload["item_total"])
	assert.NotEmpty(t, payload["cart_total"])
	assert.NotContains(t, payload, "status_code")

	w, payload = env.do(t, http.MethodPost, fmt.Sprintf("/cart/update/%d", itemID), map[string]int{"quantity": 0}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, payload["success"])
	assert.NotEmpty(t, payload["message"])
}

func TestRemoveCartItemAndMethodNotAllowed(t *testing.T) {
	env := setupHandlerTest(t)
	env.do(t, http.MethodPost, fmt.Sprintf("/cart/add/%d", env.product.ID), nil, nil)
	itemID := env.firstCartItemID(t)

	w, payload := env.do(t, http.MethodGet, fmt.Sprintf("/cart/remove/%d", itemID), nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "Invalid request method", payload["message"])

	w, payload = env.do(t, http.MethodPost, fmt.Sprintf("/cart/remove/%d", itemID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Item removed from cart successfully", payload["message"])
	assert.Equal(t, "0.00", payload["cart_total"])

	w, payload = env.do(t, http.MethodPost, fmt.Sprintf("/cart/remove/%d", itemID), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, payload["success"])
}

func TestCheckoutInvalidFormReturnsFieldErrors(t *testing.T) {
	env := setupHandlerTest(t)
	env.do(t, http.MethodPost, fmt.Sprintf("/cart/add/%d", env.product.ID), nil, nil)

	w, payload := env.do(t, http.MethodPost, "/checkout", map[string]string{"first_name": "Ada", "email": "not-an-email"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	data := payload["data"].(map[string]interface{})
	errs := data["errors"].(map[string]interface{})
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "last_name")
	assert.Contains(t, errs, "payment_method_id")
	assert.NotContains(t, errs, "first_name")
	assert.Contains(t, data, "cart")

	var count int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetProductsRejectsInvalidPriceFilter(t *testing.T) {
	env := setupHandlerTest(t)
	w, payload := env.do(t, http.MethodGet, "/products?min_price=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 400, payload["status_code"])

	w, payload = env.do(t, http.MethodGet, "/products?q=lam&sort=price", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := payload["data"].(map[string]interface{})
	assert.Len(t, data["products"], 1)
}

func TestGetProductsPageOutOfRange(t *testing.T) {
	env := setupHandlerTest(t)
	for _, query := range []string{"page=2", "page=0", "page=abc"} {
		w, payload := env.do(t, http.MethodGet, "/products?"+query, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, query)
		assert.EqualValues(t, 404, payload["status_code"], query)
	}

	w, _ := env.do(t, http.MethodGet, "/products?page=1", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStripeWebhookSignature(t *testing.T) {
	env := setupHandlerTest(t)
	body := []byte(`{"id":"evt_1","type":"charge.refunded","data":{"object":{"object":"charge","id":"ch_1"}}}`)

	w, payload := env.do(t, http.MethodPost, "/webhook/stripe", body, map[string]string{"Stripe-Signature": "t=1,v1=deadbeef"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, payload, "error")

	sig := stripe.SignPayload(testWebhookSecret, time.Now().Unix(), body)
	w, payload = env.do(t, http.MethodPost, "/webhook/stripe", body, map[string]string{"Stripe-Signature": sig})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", payload["status"])
}

func TestStripeWebhookSucceededCreatesOrder(t *testing.T) {
	env := setupHandlerTest(t)
	env.do(t, http.MethodPost, fmt.Sprintf("/cart/add/%d", env.product.ID), map[string]int{"quantity": 2}, nil)
	view, err := env.handler.CartService.GetCart(env.user.ID)
	require.NoError(t, err)
	amount, err := view.Totals.MinorAmount("usd")
	require.NoError(t, err)

	body := []byte(fmt.Sprintf(`{"id":"evt_2","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","id":"pi_hook","status":"succeeded","amount":%d,"currency":"usd","metadata":{"user_id":"%d"}}}}`, amount, env.user.ID))
	sig := stripe.SignPayload(testWebhookSecret, time.Now().Unix(), body)

	for i := 0; i < 2; i++ {
		w, payload := env.do(t, http.MethodPost, "/webhook/stripe", body, map[string]string{"Stripe-Signature": sig})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "success", payload["status"])
	}

	var orders []models.Order
	require.NoError(t, env.db.Find(&orders).Error)
	require.Len(t, orders, 1)
	assert.Equal(t, "paid", orders[0].Status)
	assert.Equal(t, "pi_hook", orders[0].StripePaymentIntent)

	w, payload := env.do(t, http.MethodGet, "/orders", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, payload["data"], 1)
}
