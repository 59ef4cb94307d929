package models

import "time"

// Order 订单，仅在支付成功后由结账流程创建
type Order struct {
	ID                  uint       `gorm:"primarykey" json:"id"`                                                // 主键
	OrderNo             string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_no"`               // 订单号
	UserID              uint       `gorm:"not null;index" json:"user_id"`                                       // 用户ID
	FirstName           string     `gorm:"type:varchar(100)" json:"first_name"`                                 // 名
	LastName            string     `gorm:"type:varchar(100)" json:"last_name"`                                  // 姓
	Email               string     `gorm:"type:varchar(254);index" json:"email"`                                // 邮箱
	Phone               string     `gorm:"type:varchar(20)" json:"phone"`                                       // 电话
	Address             string     `gorm:"type:varchar(250)" json:"address"`                                    // 地址
	City                string     `gorm:"type:varchar(100)" json:"city"`                                       // 城市
	State               string     `gorm:"type:varchar(100)" json:"state"`                                      // 州/省
	ZipCode             string     `gorm:"type:varchar(20)" json:"zip_code"`                                    // 邮编
	Currency            string     `gorm:"type:varchar(8);not null;default:'usd'" json:"currency"`              // 币种
	Subtotal            Money      `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`               // 商品小计
	Shipping            Money      `gorm:"type:decimal(10,2);not null;default:0" json:"shipping"`               // 运费
	Tax                 Money      `gorm:"type:decimal(10,2);not null;default:0" json:"tax"`                    // 税费
	TotalPrice          Money      `gorm:"type:decimal(10,2);not null;default:0" json:"total_price"`            // 订单总额
	Status              string     `gorm:"type:varchar(20);not null;index" json:"status"`                       // 订单状态
	StripePaymentIntent string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"stripe_payment_intent"` // 支付意图ID
	PaidAt              *time.Time `json:"paid_at"`                                                             // 支付时间
	CanceledAt          *time.Time `json:"canceled_at"`                                                         // 取消时间
	CreatedAt           time.Time  `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt           time.Time  `gorm:"index" json:"updated_at"`                                             // 更新时间

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 订单项
	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`                               // 下单用户
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
