package admin

import (
	"strings"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemPatchRequest 后台修改购物车项数量
type CartItemPatchRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// ListCarts 购物车列表（按用户名/邮箱搜索）
func (h *Handler) ListCarts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	carts, total, err := h.CartService.ListCarts(service.CartAdminListInput{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, carts, response.BuildPagination(page, pageSize, total))
}

// GetCart 购物车详情（含总额）
func (h *Handler) GetCart(c *gin.Context) {
	id, ok := parseIDParam(c, "error.cart_not_found")
	if !ok {
		return
	}
	view, err := h.CartService.GetCartAdmin(id)
	if err != nil {
		respondWithMappedError(c, err, cartAdminErrorRules, response.CodeInternal, "error.cart_fetch_failed")
		return
	}
	response.Success(c, view)
}

// DeleteCart 删除购物车
func (h *Handler) DeleteCart(c *gin.Context) {
	id, ok := parseIDParam(c, "error.cart_not_found")
	if !ok {
		return
	}
	if err := h.CartService.DeleteCart(id); err != nil {
		respondWithMappedError(c, err, cartAdminErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	requestLog(c).Infow("admin_cart_deleted", "admin_id", currentAdminID(c), "cart_id", id)
	response.Success(c, nil)
}

// ListCartItems 购物车项列表（按用户名/商品名搜索）
func (h *Handler) ListCartItems(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	items, total, err := h.CartService.ListItems(service.CartItemAdminListInput{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// PatchCartItem 修改购物车项数量
func (h *Handler) PatchCartItem(c *gin.Context) {
	id, ok := parseIDParam(c, "error.cart_item_not_found")
	if !ok {
		return
	}
	var req CartItemPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.CartService.UpdateItemQuantityAdmin(id, req.Quantity)
	if err != nil {
		respondWithMappedError(c, err, cartAdminErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	response.Success(c, item)
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	id, ok := parseIDParam(c, "error.cart_item_not_found")
	if !ok {
		return
	}
	if err := h.CartService.DeleteItemAdmin(id); err != nil {
		respondWithMappedError(c, err, cartAdminErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	response.Success(c, nil)
}
