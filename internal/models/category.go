package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 商品分类
type Category struct {
	ID          uint           `gorm:"primarykey" json:"id"`                               // 主键
	Name        string         `gorm:"type:varchar(100);not null" json:"name"`             // 分类名称
	Slug        string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"` // 唯一标识
	Description string         `gorm:"type:text" json:"description"`                       // 分类描述
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
