package service

import (
	"net/mail"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// OrderAdminListInput 后台订单列表输入
type OrderAdminListInput struct {
	Page        int
	PageSize    int
	Status      string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// OrderItemAdminListInput 后台订单项列表输入
type OrderItemAdminListInput struct {
	Page        int
	PageSize    int
	OrderStatus string
	CategoryID  uint
	Search      string
}

// OrderContactInput 后台修改订单联系信息，nil 字段不修改
type OrderContactInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	ZipCode   *string `json:"zip_code"`
}

// ensureOrderCanceledIfExpired 读取时懒同步过期订单状态
func (s *OrderService) ensureOrderCanceledIfExpired(order *models.Order) {
	if order == nil || order.Status != constants.OrderStatusPending {
		return
	}
	if !s.pendingExpired(order, time.Now()) {
		return
	}
	if err := s.transition(order, constants.OrderStatusCanceled); err != nil {
		logger.Debugw("order_lazy_cancel_skipped", "order_id", order.ID, "error", err)
	}
}

// ListUserOrders 用户订单列表
func (s *OrderService) ListUserOrders(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	if userID == 0 {
		return nil, 0, ErrUserNotFound
	}
	orders, total, err := s.orderRepo.ListByUser(repository.OrderListFilter{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	for i := range orders {
		s.ensureOrderCanceledIfExpired(&orders[i])
	}
	return orders, total, nil
}

// GetUserOrder 获取用户自己的订单
func (s *OrderService) GetUserOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	s.ensureOrderCanceledIfExpired(order)
	return order, nil
}

// ListAdmin 后台订单列表
func (s *OrderService) ListAdmin(input OrderAdminListInput) ([]models.Order, int64, error) {
	status := strings.TrimSpace(input.Status)
	if status != "" && !IsValidOrderStatus(status) {
		return nil, 0, ErrOrderStatusInvalid
	}
	orders, total, err := s.orderRepo.ListAdmin(repository.OrderListFilter{
		Page:        input.Page,
		PageSize:    input.PageSize,
		Status:      status,
		Search:      strings.TrimSpace(input.Search),
		CreatedFrom: input.CreatedFrom,
		CreatedTo:   input.CreatedTo,
	})
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}

// GetAdmin 后台订单详情
func (s *OrderService) GetAdmin(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateContact 后台修改订单联系信息
func (s *OrderService) UpdateContact(orderID uint, input OrderContactInput) (*models.Order, error) {
	order, err := s.GetAdmin(orderID)
	if err != nil {
		return nil, err
	}
	form := CheckoutForm{
		FirstName: pickString(input.FirstName, order.FirstName),
		LastName:  pickString(input.LastName, order.LastName),
		Email:     pickString(input.Email, order.Email),
		Phone:     pickString(input.Phone, order.Phone),
		Address:   pickString(input.Address, order.Address),
		City:      pickString(input.City, order.City),
		State:     pickString(input.State, order.State),
		ZipCode:   pickString(input.ZipCode, order.ZipCode),
	}
	form.Normalize()
	if form.Email != "" {
		if _, err := mail.ParseAddress(form.Email); err != nil {
			return nil, &FormError{Fields: map[string]FieldError{"email": {Key: "form.email"}}}
		}
	}
	if err := s.orderRepo.UpdateFields(order.ID, contactUpdates(form)); err != nil {
		return nil, ErrOrderUpdateFailed
	}
	return s.GetAdmin(order.ID)
}

// Delete 后台删除订单
func (s *OrderService) Delete(orderID uint) error {
	if _, err := s.GetAdmin(orderID); err != nil {
		return err
	}
	if err := s.orderRepo.Delete(orderID); err != nil {
		return ErrOrderUpdateFailed
	}
	return nil
}

// ListItemsAdmin 后台订单项列表
func (s *OrderService) ListItemsAdmin(input OrderItemAdminListInput) ([]models.OrderItem, int64, error) {
	status := strings.TrimSpace(input.OrderStatus)
	if status != "" && !IsValidOrderStatus(status) {
		return nil, 0, ErrOrderStatusInvalid
	}
	items, total, err := s.orderRepo.ListItems(repository.OrderItemListFilter{
		Page:        input.Page,
		PageSize:    input.PageSize,
		OrderStatus: status,
		CategoryID:  input.CategoryID,
		Search:      strings.TrimSpace(input.Search),
	})
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return items, total, nil
}

// GetItemAdmin 后台订单项详情
func (s *OrderService) GetItemAdmin(itemID uint) (*models.OrderItem, error) {
	item, err := s.orderRepo.GetItemByID(itemID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if item == nil {
		return nil, ErrOrderItemNotFound
	}
	return item, nil
}

// DeleteItemAdmin 后台删除订单项
func (s *OrderService) DeleteItemAdmin(itemID uint) error {
	if _, err := s.GetItemAdmin(itemID); err != nil {
		return err
	}
	if err := s.orderRepo.DeleteItem(itemID); err != nil {
		return ErrOrderUpdateFailed
	}
	return nil
}

func pickString(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
