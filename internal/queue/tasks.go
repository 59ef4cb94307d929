package queue

import (
	"encoding/json"
	"fmt"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	TaskOrderStatusEmail   = constants.TaskOrderStatusEmail
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
)

// OrderStatusEmailPayload 订单状态变更后发送通知邮件
type OrderStatusEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// OrderTimeoutCancelPayload 待支付订单到期取消
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	return newTask(TaskOrderStatusEmail, payload)
}

func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	return newTask(TaskOrderTimeoutCancel, payload)
}

// ParseOrderStatusEmailPayload 载荷无法解析时返回包裹 asynq.SkipRetry 的错误
func ParseOrderStatusEmailPayload(task *asynq.Task) (OrderStatusEmailPayload, error) {
	return parsePayload[OrderStatusEmailPayload](task)
}

// ParseOrderTimeoutCancelPayload 同 ParseOrderStatusEmailPayload
func ParseOrderTimeoutCancelPayload(task *asynq.Task) (OrderTimeoutCancelPayload, error) {
	return parsePayload[OrderTimeoutCancelPayload](task)
}

func newTask(typename string, payload any) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", typename, err)
	}
	return asynq.NewTask(typename, body), nil
}

func parsePayload[T any](task *asynq.Task) (T, error) {
	var payload T
	if task == nil {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	return payload, nil
}
