package router

import (
	"sort"
	"strings"

	"github.com/storefront-next/internal/authz"
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	adminhandlers "github.com/storefront-next/internal/http/handlers/admin"
	publichandlers "github.com/storefront-next/internal/http/handlers/public"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        cache.Key("rate:login"),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        cache.Key("rate:admin_login"),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.NoRoute(func(ctx *gin.Context) {
		handlershared.RespondError(ctx, response.CodeNotFound, "error.not_found", nil)
	})
	r.NoMethod(func(ctx *gin.Context) {
		if isCartAjaxPath(ctx.Request.URL.Path) {
			publichandlers.CartMethodNotAllowed(ctx)
			return
		}
		handlershared.RespondError(ctx, response.CodeMethodNotAllowed, "error.method_not_allowed", nil)
	})

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 目录（公开）
		apiV1.GET("/home", publicHandler.GetHome)
		apiV1.GET("/products", publicHandler.GetProducts)
		apiV1.GET("/categories", publicHandler.GetCategories)
		apiV1.GET("/category/:slug", publicHandler.GetCategoryProducts)
		apiV1.GET("/product/:slug", publicHandler.GetProductBySlug)
		apiV1.GET("/captcha", publicHandler.GetImageCaptcha)

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("login")), publicHandler.UserLogin)
		}

		// 支付网关回调
		apiV1.POST("/webhook/stripe", publicHandler.StripeWebhook)

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)

			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/add/:product_id", publicHandler.AddToCart)
			user.POST("/cart/update/:item_id", publicHandler.UpdateCartItem)
			user.POST("/cart/remove/:item_id", publicHandler.RemoveCartItem)

			user.GET("/checkout", publicHandler.GetCheckout)
			user.POST("/checkout", publicHandler.Checkout)
			user.POST("/payment", publicHandler.CreatePaymentIntent)
			user.GET("/payment/success", publicHandler.PaymentSuccess)
			user.GET("/payment/cancel", publicHandler.PaymentCancel)

			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)
			admin.GET("/captcha", publicHandler.GetImageCaptcha)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 分类管理
				authorized.GET("/categories", adminHandler.ListCategories)
				authorized.GET("/categories/:id", adminHandler.GetCategory)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				// 商品管理
				authorized.GET("/products", adminHandler.ListProducts)
				authorized.PATCH("/products", adminHandler.BulkPatchProducts)
				authorized.GET("/products/:id", adminHandler.GetProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				// 购物车
				authorized.GET("/carts", adminHandler.ListCarts)
				authorized.GET("/carts/:id", adminHandler.GetCart)
				authorized.DELETE("/carts/:id", adminHandler.DeleteCart)
				authorized.GET("/cart-items", adminHandler.ListCartItems)
				authorized.PATCH("/cart-items/:id", adminHandler.PatchCartItem)
				authorized.DELETE("/cart-items/:id", adminHandler.DeleteCartItem)

				// 订单管理
				authorized.GET("/orders", adminHandler.AdminListOrders)
				authorized.GET("/orders/:id", adminHandler.AdminGetOrder)
				authorized.PATCH("/orders/:id", adminHandler.AdminPatchOrder)
				authorized.DELETE("/orders/:id", adminHandler.AdminDeleteOrder)
				authorized.GET("/order-items", adminHandler.AdminListOrderItems)
				authorized.GET("/order-items/:id", adminHandler.AdminGetOrderItem)
				authorized.DELETE("/order-items/:id", adminHandler.AdminDeleteOrderItem)

				// 用户管理
				authorized.GET("/users", adminHandler.ListUsers)
				authorized.GET("/users/:id", adminHandler.GetUser)
				authorized.PATCH("/users/:id", adminHandler.PatchUser)
				authorized.DELETE("/users/:id", adminHandler.DeleteUser)
				authorized.GET("/profiles", adminHandler.ListProfiles)
				authorized.GET("/profiles/:id", adminHandler.GetProfile)
				authorized.PATCH("/profiles/:id", adminHandler.PatchProfile)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
				authorized.POST("/authz/admins", adminHandler.CreateAuthzAdmin)
				authorized.DELETE("/authz/admins/:id", adminHandler.DeleteAuthzAdmin)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

// isCartAjaxPath 购物车 AJAX 路由使用裸 JSON 的 405 响应
func isCartAjaxPath(path string) bool {
	return strings.HasPrefix(path, "/api/v1/cart/update/") || strings.HasPrefix(path, "/api/v1/cart/remove/")
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" || item.Path == "/api/v1/admin/captcha" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
