package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/storefront-next/internal/authz"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type adminTestEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	adminID uint
}

func setupAdminTest(t *testing.T) *adminTestEnv {
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

	cfg := &config.Config{JWT: config.JWTConfig{SecretKey: "admin-test-secret", ExpireHours: 1}}
	authzService, err := authz.NewService(db)
	require.NoError(t, err)
	pricing := service.DefaultPricingPolicy()

	c := &provider.Container{
		Config:       cfg,
		AdminRepo:    repository.NewAdminRepository(db),
		UserRepo:     repository.NewUserRepository(db),
		ProfileRepo:  repository.NewProfileRepository(db),
		CategoryRepo: repository.NewCategoryRepository(db),
		ProductRepo:  repository.NewProductRepository(db),
		CartRepo:     repository.NewCartRepository(db),
		OrderRepo:    repository.NewOrderRepository(db),
		AuthzService: authzService,
	}
	c.AuthService = service.NewAuthService(cfg, c.AdminRepo)
	c.UserAdminService = service.NewUserAdminService(c.UserRepo, c.ProfileRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo, cfg.Store)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, pricing)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CartRepo, c.ProductRepo, c.UserRepo, c.ProfileRepo,
		c.CartService, nil, cfg.Stripe, pricing, 0)

	root, err := c.AuthService.CreateAdmin("root", "Sup3r-secret")
	require.NoError(t, err)

	h := New(c)
	r := gin.New()
	authed := r.Group("/admin", func(ctx *gin.Context) {
		ctx.Set("admin_id", root.ID)
		ctx.Set("username", root.Username)
		ctx.Next()
	})
	authed.GET("/categories/:id", h.GetCategory)
	authed.POST("/categories", h.CreateCategory)
	authed.DELETE("/categories/:id", h.DeleteCategory)
	authed.POST("/products", h.CreateProduct)
	authed.PATCH("/products", h.BulkPatchProducts)
	authed.GET("/products", h.ListProducts)
	authed.PATCH("/orders/:id", h.AdminPatchOrder)
	authed.POST("/authz/admins", h.CreateAuthzAdmin)
	authed.DELETE("/authz/admins/:id", h.DeleteAuthzAdmin)

	return &adminTestEnv{db: db, router: r, adminID: root.ID}
}

func (e *adminTestEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	payload := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload), w.Body.String())
	return w, payload
}

func TestCategoryCreateDerivesSlugAndGuardsDelete(t *testing.T) {
	env := setupAdminTest(t)

	w, payload := env.do(t, http.MethodPost, "/admin/categories", map[string]string{"name": "Desk Lamps"})
	require.Equal(t, http.StatusOK, w.Code, payload)
	category := payload["data"].(map[string]interface{})
	assert.Equal(t, "desk-lamps", category["slug"])
	categoryID := uint(category["id"].(float64))

	w, _ = env.do(t, http.MethodPost, "/admin/categories", map[string]string{"name": "Desk Lamps"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = env.do(t, http.MethodPost, "/admin/products", map[string]interface{}{
		"category_id": categoryID,
		"name":        "Brass Lamp",
		"price":       "49.90",
		"stock":       3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/categories/%d", categoryID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = env.do(t, http.MethodGet, "/admin/categories/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProductRejectsInvalidPrice(t *testing.T) {
	env := setupAdminTest(t)
	category := &models.Category{Name: "Books", Slug: "books"}
	require.NoError(t, env.db.Create(category).Error)

	w, _ := env.do(t, http.MethodPost, "/admin/products", map[string]interface{}{
		"category_id": category.ID,
		"name":        "Free Book",
		"price":       "0",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkPatchProducts(t *testing.T) {
	env := setupAdminTest(t)
	category := &models.Category{Name: "Books", Slug: "books"}
	require.NoError(t, env.db.Create(category).Error)
	product := &models.Product{CategoryID: category.ID, Name: "Go", Slug: "go", Price: models.MustMoney("30.00"), Stock: 2, Available: true}
	require.NoError(t, env.db.Create(product).Error)

	w, payload := env.do(t, http.MethodPatch, "/admin/products", map[string]interface{}{
		"items": []map[string]interface{}{{"id": product.ID, "price": "25.50", "stock": 9, "available": false}},
	})
	require.Equal(t, http.StatusOK, w.Code, payload)
	assert.EqualValues(t, 1, payload["data"].(map[string]interface{})["updated"])

	var stored models.Product
	require.NoError(t, env.db.First(&stored, product.ID).Error)
	assert.Equal(t, "25.50", stored.Price.StringFixed(2))
	assert.Equal(t, 9, stored.Stock)
	assert.False(t, stored.Available)

	w, _ = env.do(t, http.MethodPatch, "/admin/products", map[string]interface{}{
		"items": []map[string]interface{}{{"id": 999, "stock": 1}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, http.MethodGet, "/admin/products?available=false", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPatchOrderStatusTransitions(t *testing.T) {
	env := setupAdminTest(t)
	order := &models.Order{
		OrderNo:             "SF-ADMIN-1",
		UserID:              1,
		Email:               "ada@example.com",
		Status:              "paid",
		StripePaymentIntent: "pi_admin_1",
		TotalPrice:          models.MustMoney("10.00"),
	}
	require.NoError(t, env.db.Create(order).Error)
	path := fmt.Sprintf("/admin/orders/%d", order.ID)

	w, payload := env.do(t, http.MethodPatch, path, map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code, payload)
	assert.Equal(t, "shipped", payload["data"].(map[string]interface{})["status"])

	w, _ = env.do(t, http.MethodPatch, path, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, payload = env.do(t, http.MethodPatch, path, map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, payload["data"].(map[string]interface{})["errors"], "email")

	w, _ = env.do(t, http.MethodPatch, path, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAuthzAdminGuards(t *testing.T) {
	env := setupAdminTest(t)

	w, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/admin/authz/admins/%d", env.adminID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, payload := env.do(t, http.MethodPost, "/admin/authz/admins", map[string]string{"username": "clerk", "password": "Cl3rk-password"})
	require.Equal(t, http.StatusOK, w.Code, payload)
	clerkID := uint(payload["data"].(map[string]interface{})["id"].(float64))

	w, _ = env.do(t, http.MethodPost, "/admin/authz/admins", map[string]string{"username": "clerk", "password": "Cl3rk-password"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/authz/admins/%d", clerkID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/authz/admins/%d", clerkID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
