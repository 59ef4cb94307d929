package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db          *gorm.DB
	categories  *repository.GormCategoryRepository
	products    *repository.GormProductRepository
	carts       *repository.GormCartRepository
	orders      *repository.GormOrderRepository
	users       *repository.GormUserRepository
	profiles    *repository.GormProfileRepository
	cartService *CartService
}

func setupServiceTestDB(t *testing.T) *serviceTestEnv {
	t.Helper()
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

	env := &serviceTestEnv{
		db:         db,
		categories: repository.NewCategoryRepository(db),
		products:   repository.NewProductRepository(db),
		carts:      repository.NewCartRepository(db),
		orders:     repository.NewOrderRepository(db),
		users:      repository.NewUserRepository(db),
		profiles:   repository.NewProfileRepository(db),
	}
	env.cartService = NewCartService(env.carts, env.products, DefaultPricingPolicy())
	return env
}

func (e *serviceTestEnv) createCategory(t *testing.T, name, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: slug}
	require.NoError(t, e.db.Create(category).Error)
	return category
}

func (e *serviceTestEnv) createProduct(t *testing.T, categoryID uint, name, slug, price string, stock int, available bool) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID: categoryID,
		Name:       name,
		Slug:       slug,
		Price:      models.MustMoney(price),
		Stock:      stock,
		Available:  true,
	}
	require.NoError(t, e.db.Create(product).Error)
	if !available {
		require.NoError(t, e.db.Model(product).Update("available", false).Error)
		product.Available = false
	}
	return product
}

func (e *serviceTestEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

// stripeStub 模拟 Stripe PaymentIntent 接口
type stripeStub struct {
	mu       sync.Mutex
	server   *httptest.Server
	requests []map[string]string
	status   string
	cardErr  string
	intents  map[string]map[string]interface{}
}

func newStripeStub(t *testing.T) *stripeStub {
	t.Helper()
	stub := &stripeStub{status: "succeeded", intents: map[string]map[string]interface{}{}}
	stub.server = httptest.NewServer(http.HandlerFunc(stub.serve))
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *stripeStub) config() config.StripeConfig {
	return config.StripeConfig{
		SecretKey:      "sk_test_stub",
		PublishableKey: "pk_test_stub",
		WebhookSecret:  "whsec_stub",
		APIBaseURL:     s.server.URL,
	}
}

func (s *stripeStub) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/payment_intents/") {
		id := strings.TrimPrefix(r.URL.Path, "/v1/payment_intents/")
		intent, ok := s.intents[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such payment_intent"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(intent)
		return
	}

	_ = r.ParseForm()
	form := map[string]string{}
	for key := range r.PostForm {
		form[key] = r.PostForm.Get(key)
	}
	s.requests = append(s.requests, form)
	if s.cardErr != "" {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = fmt.Fprintf(w, `{"error":{"type":"card_error","code":"card_declined","decline_code":"generic_decline","message":%q}}`, s.cardErr)
		return
	}
	id := fmt.Sprintf("pi_stub_%d", len(s.requests))
	status := "requires_payment_method"
	if form["confirm"] == "true" {
		status = s.status
	}
	var amount int64
	_, _ = fmt.Sscanf(form["amount"], "%d", &amount)
	intent := map[string]interface{}{
		"id":            id,
		"object":        "payment_intent",
		"client_secret": id + "_secret",
		"status":        status,
		"amount":        amount,
		"currency":      form["currency"],
		"metadata":      map[string]string{"user_id": form["metadata[user_id]"]},
	}
	s.intents[id] = intent
	_ = json.NewEncoder(w).Encode(intent)
}

func (s *stripeStub) lastRequest() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

func (s *stripeStub) setIntent(id string, intent map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[id] = intent
}
