package repository

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	GetByPaymentIntent(intentID string) (*models.Order, error)
	GetLatestByUser(userID uint) (*models.Order, error)
	ListPendingBefore(before time.Time, limit int) ([]models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatus(id uint, fromStatus, toStatus string, updates map[string]interface{}) (bool, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	ListItems(filter OrderItemListFilter) ([]models.OrderItem, int64, error)
	GetItemByID(id uint) (*models.OrderItem, error)
	DeleteItem(id uint) error
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

func (r *GormOrderRepository) withItems(query *gorm.DB) *gorm.DB {
	return query.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

// Create 创建订单与订单项（调用方负责事务）
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit("Items", "User").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Omit("Order", "Product").Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// GetByID 获取订单（含订单项）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	return firstOrNil[models.Order](r.withItems(r.db.Preload("User")).Where("id = ?", id))
}

// GetByIDAndUser 获取用户自己的订单
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	return firstOrNil[models.Order](r.withItems(r.db).Where("id = ? AND user_id = ?", id, userID))
}

// GetByPaymentIntent 按支付意图查找订单
func (r *GormOrderRepository) GetByPaymentIntent(intentID string) (*models.Order, error) {
	if intentID == "" {
		return nil, nil
	}
	return firstOrNil[models.Order](r.withItems(r.db).Where("stripe_payment_intent = ?", intentID))
}

// GetLatestByUser 获取用户最近一笔订单
func (r *GormOrderRepository) GetLatestByUser(userID uint) (*models.Order, error) {
	return firstOrNil[models.Order](r.withItems(r.db).Where("user_id = ?", userID).Order("created_at DESC, id DESC"))
}

// ListPendingBefore 查询创建时间早于 before 的待支付订单
func (r *GormOrderRepository) ListPendingBefore(before time.Time, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var orders []models.Order
	err := r.db.Where("status = ? AND created_at < ?", constants.OrderStatusPending, before).
		Order("id ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByUser 用户订单列表
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(r.withItems(query), filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListAdmin 后台订单列表（状态过滤，用户名/邮箱/姓名搜索）
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Joins("LEFT JOIN users ON users.id = orders.user_id")
	if filter.UserID > 0 {
		query = query.Where("orders.user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("orders.status = ?", filter.Status)
	}
	query = applySearch(query, r.db, filter.Search,
		"users.username", "users.email", "orders.first_name", "orders.last_name", "orders.order_no")
	query = applyCreatedRange(query, "orders.created_at", filter.CreatedFrom, filter.CreatedTo)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query.Preload("User"), filter.Page, filter.PageSize)
	if err := query.Order("orders.created_at DESC, orders.id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus 条件更新订单状态，返回是否命中（当前状态不符时不更新）
func (r *GormOrderRepository) UpdateStatus(id uint, fromStatus, toStatus string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"status": toStatus}
	for key, value := range updates {
		values[key] = value
	}
	result := r.db.Model(&models.Order{}).Where("id = ? AND status = ?", id, fromStatus).Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateFields 更新订单联系信息等字段
func (r *GormOrderRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 删除订单及订单项
func (r *GormOrderRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, id).Error
	})
}

// ListItems 后台订单项列表（订单状态/商品分类过滤，用户名/商品名搜索）
func (r *GormOrderRepository) ListItems(filter OrderItemListFilter) ([]models.OrderItem, int64, error) {
	query := r.db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Joins("LEFT JOIN products ON products.id = order_items.product_id")
	if filter.OrderStatus != "" {
		query = query.Where("orders.status = ?", filter.OrderStatus)
	}
	if filter.CategoryID > 0 {
		query = query.Where("products.category_id = ?", filter.CategoryID)
	}
	query = applySearch(query, r.db, filter.Search, "users.username", "order_items.product_name")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.OrderItem
	query = applyPagination(query.Preload("Order"), filter.Page, filter.PageSize)
	if err := query.Order("order_items.id DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetItemByID 获取订单项
func (r *GormOrderRepository) GetItemByID(id uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.Preload("Order").Preload("Product").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// DeleteItem 删除订单项
func (r *GormOrderRepository) DeleteItem(id uint) error {
	return r.db.Delete(&models.OrderItem{}, id).Error
}
