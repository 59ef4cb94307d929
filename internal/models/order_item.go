package models

import "time"

// OrderItem 订单项，价格为下单时的快照
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                               // 主键
	OrderID     uint      `gorm:"not null;index" json:"order_id"`                     // 订单ID
	ProductID   uint      `gorm:"not null;index" json:"product_id"`                   // 商品ID
	ProductName string    `gorm:"type:varchar(200);not null" json:"product_name"`     // 商品名称快照
	Price       Money     `gorm:"type:decimal(10,2);not null;default:0" json:"price"` // 单价快照
	Quantity    int       `gorm:"not null" json:"quantity"`                           // 数量
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                            // 创建时间

	Order   *Order   `gorm:"foreignKey:OrderID" json:"order,omitempty"`     // 所属订单
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// TotalPrice 行小计
func (i OrderItem) TotalPrice() Money {
	return i.Price.Times(i.Quantity)
}
