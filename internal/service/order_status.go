package service

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusPaid:     true,
		constants.OrderStatusCanceled: true,
	},
	constants.OrderStatusPaid: {
		constants.OrderStatusShipped:  true,
		constants.OrderStatusCanceled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
}

// IsValidOrderStatus 判断订单状态是否合法
func IsValidOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPending,
		constants.OrderStatusPaid,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
		constants.OrderStatusCanceled:
		return true
	}
	return false
}

// CanTransition 判断状态流转是否允许
func CanTransition(from, to string) bool {
	next, ok := allowedTransitions[from]
	return ok && next[to]
}

// UpdateStatus 后台修改订单状态
func (s *OrderService) UpdateStatus(orderID uint, status string) (*models.Order, error) {
	if !IsValidOrderStatus(status) {
		return nil, ErrOrderStatusInvalid
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == status {
		return order, nil
	}
	if err := s.transition(order, status); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// CancelExpiredPendingOrder 超时未支付的订单自动取消
func (s *OrderService) CancelExpiredPendingOrder(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return ErrOrderFetchFailed
	}
	if order == nil || order.Status != constants.OrderStatusPending {
		return nil
	}
	if !s.pendingExpired(order, time.Now()) {
		return nil
	}
	if err := s.transition(order, constants.OrderStatusCanceled); err != nil {
		if errors.Is(err, ErrOrderStatusInvalid) {
			return nil
		}
		return err
	}
	logger.Infow("order_timeout_canceled", "order_id", order.ID, "order_no", order.OrderNo)
	return nil
}

// SweepExpiredPendingOrders 批量取消超时订单，返回取消数量
func (s *OrderService) SweepExpiredPendingOrders(limit int) (int, error) {
	before := time.Now().Add(-time.Duration(s.resolveExpireMinutes()) * time.Minute)
	orders, err := s.orderRepo.ListPendingBefore(before, limit)
	if err != nil {
		return 0, err
	}
	canceled := 0
	for i := range orders {
		if err := s.transition(&orders[i], constants.OrderStatusCanceled); err != nil {
			if errors.Is(err, ErrOrderStatusInvalid) {
				continue
			}
			return canceled, err
		}
		canceled++
	}
	return canceled, nil
}

func (s *OrderService) pendingExpired(order *models.Order, now time.Time) bool {
	expireAt := order.CreatedAt.Add(time.Duration(s.resolveExpireMinutes()) * time.Minute)
	return !expireAt.After(now)
}

// markPaid 待支付订单补记为已支付，其余状态原样返回
func (s *OrderService) markPaid(order *models.Order) (*models.Order, error) {
	if order.Status != constants.OrderStatusPending {
		return order, nil
	}
	if err := s.transition(order, constants.OrderStatusPaid); err != nil && !errors.Is(err, ErrOrderStatusInvalid) {
		return nil, err
	}
	latest, err := s.orderRepo.GetByID(order.ID)
	if err != nil || latest == nil {
		return order, nil
	}
	return latest, nil
}

// transition 条件更新状态并记录时间戳，状态已被并发修改时返回 ErrOrderStatusInvalid
func (s *OrderService) transition(order *models.Order, to string) error {
	if !CanTransition(order.Status, to) {
		return ErrOrderStatusInvalid
	}
	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	switch to {
	case constants.OrderStatusPaid:
		updates["paid_at"] = now
	case constants.OrderStatusCanceled:
		updates["canceled_at"] = now
	}
	ok, err := s.orderRepo.UpdateStatus(order.ID, order.Status, to, updates)
	if err != nil {
		logger.Errorw("order_update_status_failed", "order_id", order.ID, "from", order.Status, "to", to, "error", err)
		return ErrOrderUpdateFailed
	}
	if !ok {
		return ErrOrderStatusInvalid
	}
	order.Status = to
	s.enqueueStatusEmail(order.ID, to)
	return nil
}
