package models

import "time"

// CartItem 购物车项
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                         // 主键
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_item_product" json:"cart_id"`    // 购物车ID
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_item_product" json:"product_id"` // 商品ID
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`                           // 数量（正整数）
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                      // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
	Cart    *Cart    `gorm:"foreignKey:CartID" json:"cart,omitempty"`       // 所属购物车
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// TotalPrice 行小计，按商品当前价格计算
func (i CartItem) TotalPrice() Money {
	if i.Product == nil {
		return Money{}
	}
	return i.Product.Price.Times(i.Quantity)
}
