package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestFromViperDefaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Store.ShippingFlat != "10.00" || cfg.Store.TaxRate != "0.10" {
		t.Fatalf("unexpected pricing defaults: %+v", cfg.Store)
	}
	if cfg.Store.Currency != "usd" || cfg.Store.PageSize != 12 {
		t.Fatalf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Store.FeaturedProductCount != 8 || cfg.Store.HomeCategoryCount != 3 || cfg.Store.RelatedProductCount != 4 {
		t.Fatalf("unexpected listing defaults: %+v", cfg.Store)
	}
	if cfg.Stripe.APIBaseURL != "https://api.stripe.com" || cfg.Stripe.WebhookToleranceSeconds != 300 {
		t.Fatalf("unexpected stripe defaults: %+v", cfg.Stripe)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("unexpected database driver: %s", cfg.Database.Driver)
	}
}

func TestFromViperEnvOverride(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_env")
	t.Setenv("STORE_TAX_RATE", "0.07")

	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Stripe.WebhookSecret != "whsec_env" {
		t.Fatalf("expected env webhook secret, got %q", cfg.Stripe.WebhookSecret)
	}
	if cfg.Store.TaxRate != "0.07" {
		t.Fatalf("expected env tax rate, got %q", cfg.Store.TaxRate)
	}
}

func TestFromViperExplicitValue(t *testing.T) {
	v := viper.New()
	v.Set("store.shipping_flat", "4.50")
	v.Set("captcha.scenes.login", true)

	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Store.ShippingFlat != "4.50" {
		t.Fatalf("expected explicit shipping, got %q", cfg.Store.ShippingFlat)
	}
	if !cfg.Captcha.Scenes.Login {
		t.Fatalf("expected login captcha scene enabled")
	}
}
