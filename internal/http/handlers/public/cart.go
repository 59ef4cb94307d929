package public

import (
	"errors"
	"net/http"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartQuantityRequest 购物车数量请求
type CartQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// GetCart 获取购物车（不存在时创建）
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	view, err := h.CartService.GetCart(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_fetch_failed", err)
		return
	}
	response.Success(c, view)
}

// AddToCart 加入购物车，已存在的商品累加数量
func (h *Handler) AddToCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := handlershared.ParseUintParam(c, "product_id")
	if !ok {
		respondError(c, response.CodeNotFound, "error.product_not_found", nil)
		return
	}
	quantity := 1
	var req CartQuantityRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
	}

	view, err := h.CartService.AddProduct(uid, productID, quantity)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	response.Success(c, view)
}

// UpdateCartItem 修改购物车项数量（前端 AJAX，返回裸 JSON）
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, ok := handlershared.ParseUintParam(c, "item_id")
	if !ok {
		respondCartAjaxError(c, http.StatusNotFound, service.ErrCartItemNotFound)
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondCartAjaxError(c, http.StatusBadRequest, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	result, err := h.CartService.UpdateItem(uid, itemID, quantity)
	if err != nil {
		respondCartAjaxError(c, cartAjaxStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    localize(c, "cart.updated"),
		"item_total": result.ItemTotal,
		"cart_total": result.Totals.Total,
		"totals":     result.Totals,
	})
}

// RemoveCartItem 删除购物车项（前端 AJAX，返回裸 JSON）
func (h *Handler) RemoveCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, ok := handlershared.ParseUintParam(c, "item_id")
	if !ok {
		respondCartAjaxError(c, http.StatusNotFound, service.ErrCartItemNotFound)
		return
	}

	totals, err := h.CartService.RemoveItem(uid, itemID)
	if err != nil {
		respondCartAjaxError(c, cartAjaxStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    localize(c, "cart.item_removed"),
		"cart_total": totals.Total,
		"totals":     totals,
	})
}

// CartMethodNotAllowed 购物车 AJAX 路由的非法方法响应
func CartMethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{
		"success": false,
		"message": localize(c, "error.method_not_allowed"),
	})
}

func cartAjaxStatus(err error) int {
	if errors.Is(err, service.ErrCartItemNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func respondCartAjaxError(c *gin.Context, status int, err error) {
	key := "error.cart_update_failed"
	for _, rule := range cartErrorRules {
		if errors.Is(err, rule.Target) {
			key = rule.Key
			break
		}
	}
	if key == "error.cart_update_failed" {
		requestLog(c).Warnw("cart_ajax_failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"message": localize(c, key),
	})
}
