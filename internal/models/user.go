package models

import (
	"time"

	"gorm.io/gorm"
)

// User 前台用户
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                   // 主键
	Username     string         `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"` // 用户名
	Email        string         `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`    // 邮箱
	PasswordHash string         `gorm:"not null" json:"-"`                                      // 密码哈希（不返回给前端）
	FirstName    string         `gorm:"type:varchar(150);default:''" json:"first_name"`         // 名
	LastName     string         `gorm:"type:varchar(150);default:''" json:"last_name"`          // 姓
	IsStaff      bool           `gorm:"not null;default:false;index" json:"is_staff"`           // 员工标记
	IsActive     bool           `gorm:"not null;default:true;index" json:"is_active"`           // 是否启用
	TokenVersion uint64         `gorm:"not null;default:0" json:"-"`                            // Token 版本（用于全量失效）
	LastLoginAt  *time.Time     `json:"last_login_at"`                                          // 最后登录时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                         // 软删除时间

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"` // 用户资料
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
