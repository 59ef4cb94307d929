package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryListFilter 分类列表过滤条件
type CategoryListFilter struct {
	Page        int
	PageSize    int
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ProductListFilter 商品列表过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   uint
	Search       string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Available    *bool
	Sort         string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	WithCategory bool
}

// ProductEditablePatch 商品列表内可编辑字段（价格/库存/上架）
type ProductEditablePatch struct {
	ID        uint
	Price     *decimal.Decimal
	Stock     *int
	Available *bool
}

// CartListFilter 购物车列表过滤条件
type CartListFilter struct {
	Page        int
	PageSize    int
	Search      string // 用户名/邮箱
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CartItemListFilter 购物车项列表过滤条件
type CartItemListFilter struct {
	Page        int
	PageSize    int
	Search      string // 用户名/商品名
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// OrderListFilter 订单列表过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	Search      string // 用户名/邮箱/姓名
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// OrderItemListFilter 订单项列表过滤条件
type OrderItemListFilter struct {
	Page        int
	PageSize    int
	OrderStatus string
	CategoryID  uint
	Search      string // 用户名/商品名
}

// UserListFilter 用户列表过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Search   string
	IsStaff  *bool
	IsActive *bool
}

// ProfileListFilter 用户资料列表过滤条件
type ProfileListFilter struct {
	Page     int
	PageSize int
	City     string
	State    string
	Search   string
}
