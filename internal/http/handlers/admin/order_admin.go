package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderPatchRequest 后台修改订单：状态与联系信息可分别提交
type OrderPatchRequest struct {
	Status *string `json:"status"`
	service.OrderContactInput
}

func (r OrderPatchRequest) hasContact() bool {
	in := r.OrderContactInput
	return in.FirstName != nil || in.LastName != nil || in.Email != nil || in.Phone != nil ||
		in.Address != nil || in.City != nil || in.State != nil || in.ZipCode != nil
}

// AdminListOrders 订单列表（状态、时间区间、关键字筛选）
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	orders, total, err := h.OrderService.ListAdmin(service.OrderAdminListInput{
		Page:        page,
		PageSize:    pageSize,
		Status:      strings.TrimSpace(c.Query("status")),
		Search:      strings.TrimSpace(c.Query("search")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "error.order_fetch_failed")
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// AdminGetOrder 订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "error.order_not_found")
	if !ok {
		return
	}
	order, err := h.OrderService.GetAdmin(id)
	if err != nil {
		respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// AdminPatchOrder 修改订单状态或联系信息
func (h *Handler) AdminPatchOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "error.order_not_found")
	if !ok {
		return
	}
	var req OrderPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Status == nil && !req.hasContact() {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if req.hasContact() {
		if _, err := h.OrderService.UpdateContact(id, req.OrderContactInput); err != nil {
			if formErr, ok := service.AsFormError(err); ok {
				respondFormError(c, formErr)
				return
			}
			respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "error.order_update_failed")
			return
		}
	}
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if _, err := h.OrderService.UpdateStatus(id, status); err != nil {
			respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "error.order_update_failed")
			return
		}
		requestLog(c).Infow("admin_order_status_updated", "admin_id", currentAdminID(c), "order_id", id, "status", status)
	}

	order, err := h.OrderService.GetAdmin(id)
	if err != nil {
		respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// AdminDeleteOrder 删除订单
func (h *Handler) AdminDeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "error.order_not_found")
	if !ok {
		return
	}
	if err := h.OrderService.Delete(id); err != nil {
		respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "error.order_update_failed")
		return
	}
	requestLog(c).Infow("admin_order_deleted", "admin_id", currentAdminID(c), "order_id", id)
	response.Success(c, nil)
}

// AdminListOrderItems 订单项列表（订单状态、分类、关键字筛选）
func (h *Handler) AdminListOrderItems(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	input := service.OrderItemAdminListInput{
		Page:        page,
		PageSize:    pageSize,
		OrderStatus: strings.TrimSpace(c.Query("order_status")),
		Search:      strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			input.CategoryID = uint(parsed)
		}
	}
	items, total, err := h.OrderService.ListItemsAdmin(input)
	if err != nil {
		respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "error.order_fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// AdminGetOrderItem 订单项详情
func (h *Handler) AdminGetOrderItem(c *gin.Context) {
	id, ok := parseIDParam(c, "error.order_item_not_found")
	if !ok {
		return
	}
	item, err := h.OrderService.GetItemAdmin(id)
	if err != nil {
		respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "error.order_fetch_failed")
		return
	}
	response.Success(c, item)
}

// AdminDeleteOrderItem 删除订单项
func (h *Handler) AdminDeleteOrderItem(c *gin.Context) {
	id, ok := parseIDParam(c, "error.order_item_not_found")
	if !ok {
		return
	}
	if err := h.OrderService.DeleteItemAdmin(id); err != nil {
		respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "error.order_update_failed")
		return
	}
	response.Success(c, nil)
}

// parseTimeNullable 解析 RFC3339 或 YYYY-MM-DD，空串返回 nil
func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
