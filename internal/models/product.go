package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                               // 主键
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`                  // 分类ID
	Name        string         `gorm:"type:varchar(200);not null;index" json:"name"`       // 商品名称
	Slug        string         `gorm:"type:varchar(200);uniqueIndex;not null" json:"slug"` // 唯一标识
	Description string         `gorm:"type:text" json:"description"`                       // 商品描述
	Price       Money          `gorm:"type:decimal(10,2);not null;default:0" json:"price"` // 单价
	Stock       int            `gorm:"not null;default:0" json:"stock"`                    // 库存
	Available   bool           `gorm:"not null;default:true;index" json:"available"`       // 是否上架
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 所属分类
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
