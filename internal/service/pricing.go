package service

import (
	"fmt"
	"strings"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/payment/stripe"

	"github.com/shopspring/decimal"
)

const (
	defaultCurrency     = "usd"
	defaultShippingFlat = "10.00"
	defaultTaxRate      = "0.10"
)

// Line 计价行（单价 × 数量）
type Line struct {
	Price    models.Money
	Quantity int
}

// PricingPolicy 运费与税率策略
type PricingPolicy struct {
	Currency     string
	ShippingFlat decimal.Decimal
	TaxRate      decimal.Decimal
}

// Totals 购物车/订单金额汇总
type Totals struct {
	Subtotal models.Money `json:"subtotal"`
	Shipping models.Money `json:"shipping"`
	Tax      models.Money `json:"tax"`
	Total    models.Money `json:"total"`
}

// DefaultPricingPolicy 默认策略：固定运费 10.00，税率 10%
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		Currency:     defaultCurrency,
		ShippingFlat: decimal.RequireFromString(defaultShippingFlat),
		TaxRate:      decimal.RequireFromString(defaultTaxRate),
	}
}

// NewPricingPolicy 从店铺配置构建计价策略
func NewPricingPolicy(cfg config.StoreConfig) (PricingPolicy, error) {
	policy := DefaultPricingPolicy()
	if currency := strings.ToLower(strings.TrimSpace(cfg.Currency)); currency != "" {
		policy.Currency = currency
	}
	if raw := strings.TrimSpace(cfg.ShippingFlat); raw != "" {
		shipping, err := decimal.NewFromString(raw)
		if err != nil || shipping.IsNegative() {
			return policy, fmt.Errorf("%w: store.shipping_flat %q", ErrConfigInvalid, raw)
		}
		policy.ShippingFlat = shipping
	}
	if raw := strings.TrimSpace(cfg.TaxRate); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil || rate.IsNegative() {
			return policy, fmt.Errorf("%w: store.tax_rate %q", ErrConfigInvalid, raw)
		}
		policy.TaxRate = rate
	}
	return policy, nil
}

// ComputeTotals 唯一的金额计算入口：
// subtotal = Σ price × qty；小计大于 0 时收取固定运费；tax = round2(subtotal × rate)
func ComputeTotals(lines []Line, policy PricingPolicy) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.Price.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)

	shipping := decimal.Zero
	tax := decimal.Zero
	if subtotal.GreaterThan(decimal.Zero) {
		shipping = policy.ShippingFlat.Round(2)
		tax = subtotal.Mul(policy.TaxRate).Round(2)
	}
	return Totals{
		Subtotal: models.NewMoneyFromDecimal(subtotal),
		Shipping: models.NewMoneyFromDecimal(shipping),
		Tax:      models.NewMoneyFromDecimal(tax),
		Total:    models.NewMoneyFromDecimal(subtotal.Add(shipping).Add(tax)),
	}
}

// MinorAmount 总额转换为网关最小货币单位
func (t Totals) MinorAmount(currency string) (int64, error) {
	return stripe.ToMinorAmount(t.Total.Decimal, currency)
}

// IsEmpty 小计为零
func (t Totals) IsEmpty() bool {
	return !t.Subtotal.Decimal.GreaterThan(decimal.Zero)
}

// CartLines 购物车项转换为计价行
func CartLines(items []models.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		lines = append(lines, Line{Price: item.Product.Price, Quantity: item.Quantity})
	}
	return lines
}

// OrderLines 订单项转换为计价行（使用价格快照）
func OrderLines(items []models.OrderItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{Price: item.Price, Quantity: item.Quantity})
	}
	return lines
}
