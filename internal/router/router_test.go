package router

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAdminPermissionCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	noop := func(*gin.Context) {}
	r.POST("/api/v1/admin/login", noop)
	r.GET("/api/v1/admin/captcha", noop)
	r.GET("/api/v1/admin/products", noop)
	r.PATCH("/api/v1/admin/products", noop)
	r.DELETE("/api/v1/admin/orders/:id", noop)
	r.GET("/api/v1/admin/authz/roles/:role/policies", noop)
	r.GET("/api/v1/products", noop)

	items := buildAdminPermissionCatalog(r)
	require.Len(t, items, 4)

	permissions := make([]string, 0, len(items))
	modules := map[string]string{}
	for _, item := range items {
		permissions = append(permissions, item.Permission)
		modules[item.Permission] = item.Module
	}
	assert.Contains(t, permissions, "PATCH:/admin/products")
	assert.Contains(t, permissions, "DELETE:/admin/orders/:id")
	assert.NotContains(t, permissions, "POST:/admin/login")
	assert.Equal(t, "orders", modules["DELETE:/admin/orders/:id"])
	assert.Equal(t, "authz", modules["GET:/admin/authz/roles/:role/policies"])
}

func TestDeriveAdminPermissionModule(t *testing.T) {
	assert.Equal(t, "system", deriveAdminPermissionModule(""))
	assert.Equal(t, "cart-items", deriveAdminPermissionModule("/admin/cart-items/:id"))
	assert.Equal(t, "authz", deriveAdminPermissionModule("/admin/authz/admins"))
}

func TestIsCartAjaxPath(t *testing.T) {
	assert.True(t, isCartAjaxPath("/api/v1/cart/update/3"))
	assert.True(t, isCartAjaxPath("/api/v1/cart/remove/3"))
	assert.False(t, isCartAjaxPath("/api/v1/cart/add/3"))
	assert.False(t, isCartAjaxPath("/api/v1/cart"))
}
