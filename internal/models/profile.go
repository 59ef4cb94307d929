package models

import "time"

// Profile 用户扩展资料（收货信息）
type Profile struct {
	ID        uint      `gorm:"primarykey" json:"id"`                 // 主键
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`  // 用户ID
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`        // 电话
	Address   string    `gorm:"type:varchar(250)" json:"address"`     // 地址
	City      string    `gorm:"type:varchar(100);index" json:"city"`  // 城市
	State     string    `gorm:"type:varchar(100);index" json:"state"` // 州/省
	ZipCode   string    `gorm:"type:varchar(20)" json:"zip_code"`     // 邮编
	CreatedAt time.Time `gorm:"index" json:"created_at"`              // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                           // 更新时间

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 所属用户
}

// TableName 指定表名
func (Profile) TableName() string {
	return "profiles"
}
