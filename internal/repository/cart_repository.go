package repository

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetOrCreateByUser(userID uint) (*models.Cart, error)
	GetByUser(userID uint) (*models.Cart, error)
	GetByID(id uint) (*models.Cart, error)
	ListItems(cartID uint) ([]models.CartItem, error)
	GetItemForUser(itemID, userID uint) (*models.CartItem, error)
	GetItemByID(itemID uint) (*models.CartItem, error)
	AddOrIncrement(cartID, productID uint, quantity int) (*models.CartItem, error)
	UpdateItemQuantity(itemID uint, quantity int) error
	DeleteItem(itemID uint) error
	ClearItems(cartID uint) error
	ListCarts(filter CartListFilter) ([]models.Cart, int64, error)
	ListAllItems(filter CartItemListFilter) ([]models.CartItem, int64, error)
	DeleteCart(id uint) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetOrCreateByUser 获取用户购物车，不存在时创建（user_id 唯一）
func (r *GormCartRepository) GetOrCreateByUser(userID uint) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return nil, err
	}
	return r.GetByUser(userID)
}

// GetByUser 获取用户购物车
func (r *GormCartRepository) GetByUser(userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// GetByID 后台查看购物车详情
func (r *GormCartRepository) GetByID(id uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		First(&cart, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// ListItems 获取购物车项（含商品）
func (r *GormCartRepository) ListItems(cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Where("cart_id = ?", cartID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetItemForUser 获取属于指定用户的购物车项
func (r *GormCartRepository) GetItemForUser(itemID, userID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Preload("Product").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetItemByID 根据 ID 获取购物车项
func (r *GormCartRepository) GetItemByID(itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Preload("Product").First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// AddOrIncrement 加入购物车：已存在则累加数量，不重复建行
func (r *GormCartRepository) AddOrIncrement(cartID, productID uint, quantity int) (*models.CartItem, error) {
	now := time.Now()
	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", quantity),
			"updated_at": now,
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, err
	}

	var saved models.CartItem
	if err := r.db.Preload("Product").
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateItemQuantity 更新购物车项数量
func (r *GormCartRepository) UpdateItemQuantity(itemID uint, quantity int) error {
	return r.db.Model(&models.CartItem{}).Where("id = ?", itemID).Updates(map[string]interface{}{
		"quantity":   quantity,
		"updated_at": time.Now(),
	}).Error
}

// DeleteItem 删除购物车项
func (r *GormCartRepository) DeleteItem(itemID uint) error {
	return r.db.Delete(&models.CartItem{}, itemID).Error
}

// ClearItems 清空购物车项
func (r *GormCartRepository) ClearItems(cartID uint) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// ListCarts 后台购物车列表（按用户名/邮箱搜索）
func (r *GormCartRepository) ListCarts(filter CartListFilter) ([]models.Cart, int64, error) {
	query := r.db.Model(&models.Cart{}).Joins("JOIN users ON users.id = carts.user_id")
	query = applySearch(query, r.db, filter.Search, "users.username", "users.email")
	query = applyCreatedRange(query, "carts.created_at", filter.CreatedFrom, filter.CreatedTo)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var carts []models.Cart
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("User").Order("carts.updated_at DESC, carts.id DESC").Find(&carts).Error; err != nil {
		return nil, 0, err
	}
	return carts, total, nil
}

// ListAllItems 后台购物车项列表（按用户名/商品名搜索）
func (r *GormCartRepository) ListAllItems(filter CartItemListFilter) ([]models.CartItem, int64, error) {
	query := r.db.Model(&models.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Joins("JOIN users ON users.id = carts.user_id").
		Joins("JOIN products ON products.id = cart_items.product_id")
	query = applySearch(query, r.db, filter.Search, "users.username", "products.name")
	query = applyCreatedRange(query, "cart_items.created_at", filter.CreatedFrom, filter.CreatedTo)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.CartItem
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Product").Preload("Cart").Order("cart_items.created_at DESC, cart_items.id DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// DeleteCart 删除购物车及其全部购物车项
func (r *GormCartRepository) DeleteCart(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cart{}, id).Error
	})
}
