package service

import (
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/queue"
)

// enqueueStatusEmail 入队订单状态邮件，失败只记录日志
func (s *OrderService) enqueueStatusEmail(orderID uint, status string) {
	if s.queueClient == nil || orderID == 0 {
		return
	}
	if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: orderID,
		Status:  status,
	}); err != nil {
		logger.Warnw("order_enqueue_status_email_failed",
			"order_id", orderID,
			"status", status,
			"error", err,
		)
	}
}
