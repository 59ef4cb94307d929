package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig(" sk_test_123 ", "", " whsec_123 ", "", 0)
	if cfg.SecretKey != "sk_test_123" {
		t.Fatalf("unexpected secret key: %s", cfg.SecretKey)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("unexpected default api base url: %s", cfg.APIBaseURL)
	}
	if cfg.WebhookToleranceSeconds != defaultWebhookToleranceS {
		t.Fatalf("unexpected tolerance: %d", cfg.WebhookToleranceSeconds)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("validate config failed: %v", err)
	}
	if err := ValidateConfig(NewConfig("", "", "", "", 0)); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected config invalid, got %v", err)
	}
}

func TestCreatePaymentIntentSendsConfirmForm(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk_test_1" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		_ = r.ParseForm()
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "pi_123",
			"client_secret": "pi_123_secret_abc",
			"status":        "succeeded",
			"amount":        3200,
			"currency":      "usd",
			"metadata":      map[string]interface{}{"user_id": "7"},
		})
	}))
	defer server.Close()

	cfg := NewConfig("sk_test_1", "", "", server.URL, 0)
	intent, err := CreatePaymentIntent(context.Background(), cfg, PaymentIntentInput{
		Amount:          3200,
		Currency:        "USD",
		PaymentMethodID: "pm_card_visa",
		Confirm:         true,
		Metadata:        map[string]string{"user_id": "7"},
	})
	if err != nil {
		t.Fatalf("create payment intent failed: %v", err)
	}
	if intent.ID != "pi_123" || intent.Status != "succeeded" || intent.Amount != 3200 {
		t.Fatalf("unexpected intent: %+v", intent)
	}
	if intent.Metadata["user_id"] != "7" {
		t.Fatalf("unexpected metadata: %v", intent.Metadata)
	}
	want := map[string]string{
		"amount":                             "3200",
		"currency":                           "usd",
		"payment_method":                     "pm_card_visa",
		"confirm":                            "true",
		"automatic_payment_methods[enabled]": "true",
		"automatic_payment_methods[allow_redirects]": "never",
		"metadata[user_id]":                          "7",
	}
	for k, v := range want {
		if gotForm[k] != v {
			t.Fatalf("form %s: want %q got %q", k, v, gotForm[k])
		}
	}
}

func TestCreatePaymentIntentCardError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","decline_code":"generic_decline","message":"Your card was declined."}}`))
	}))
	defer server.Close()

	cfg := NewConfig("sk_test_1", "", "", server.URL, 0)
	_, err := CreatePaymentIntent(context.Background(), cfg, PaymentIntentInput{Amount: 100, Currency: "usd", Confirm: true})
	if !errors.Is(err, ErrCardDeclined) {
		t.Fatalf("expected card declined, got %v", err)
	}
	var cardErr *CardError
	if !errors.As(err, &cardErr) {
		t.Fatalf("expected *CardError")
	}
	if cardErr.Message != "Your card was declined." || cardErr.DeclineCode != "generic_decline" {
		t.Fatalf("unexpected card error: %+v", cardErr)
	}
}

func TestRetrievePaymentIntentServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such payment_intent"}}`))
	}))
	defer server.Close()

	cfg := NewConfig("sk_test_1", "", "", server.URL, 0)
	_, err := RetrievePaymentIntent(context.Background(), cfg, "pi_missing")
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected request failed, got %v", err)
	}
	if errors.Is(err, ErrCardDeclined) {
		t.Fatalf("non card error must not match card declined")
	}
}

func TestVerifyAndParseWebhookPaymentIntentSucceeded(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := NewConfig("", "", "whsec_test_abc", "", 300)
	payload := map[string]interface{}{
		"id":   "evt_test_1",
		"type": "payment_intent.succeeded",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"object":   "payment_intent",
				"id":       "pi_test_123",
				"status":   "succeeded",
				"currency": "usd",
				"amount":   1288,
				"metadata": map[string]interface{}{"user_id": "42"},
			},
		},
	}
	body, _ := json.Marshal(payload)
	headers := map[string]string{"stripe-signature": SignPayload(cfg.WebhookSecret, now.Unix(), body)}

	event, err := VerifyAndParseWebhook(cfg, headers, body, now)
	if err != nil {
		t.Fatalf("verify and parse webhook failed: %v", err)
	}
	if event.Type != "payment_intent.succeeded" || event.PaymentIntentID != "pi_test_123" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Amount != 1288 || event.Metadata["user_id"] != "42" {
		t.Fatalf("unexpected amount or metadata: %d %v", event.Amount, event.Metadata)
	}
}

func TestWebhookAmountPrefersAmountReceived(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := NewConfig("", "", "whsec_test_abc", "", 300)
	body := []byte(`{"id":"evt_2","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","id":"pi_2","status":"succeeded","amount":1500,"amount_received":1288,"currency":"usd"}}}`)
	headers := map[string]string{"Stripe-Signature": SignPayload(cfg.WebhookSecret, now.Unix(), body)}

	event, err := VerifyAndParseWebhook(cfg, headers, body, now)
	if err != nil {
		t.Fatalf("verify and parse webhook failed: %v", err)
	}
	if event.Amount != 1288 {
		t.Fatalf("expected amount_received 1288, got %d", event.Amount)
	}

	intent := &PaymentIntent{Amount: 1500, AmountReceived: 1288}
	if intent.SettledAmount() != event.Amount {
		t.Fatalf("intent and webhook amounts disagree: %d vs %d", intent.SettledAmount(), event.Amount)
	}
	intent.AmountReceived = 0
	if intent.SettledAmount() != 1500 {
		t.Fatalf("expected fallback to amount, got %d", intent.SettledAmount())
	}
}

func TestVerifyAndParseWebhookRejectsBadSignatures(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := NewConfig("", "", "whsec_test_abc", "", 300)
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","id":"pi_1"}}}`)

	cases := map[string]map[string]string{
		"missing":   {},
		"malformed": {"Stripe-Signature": "garbage"},
		"wrong":     {"Stripe-Signature": "t=1760000000,v1=invalid-signature"},
		"expired":   {"Stripe-Signature": SignPayload(cfg.WebhookSecret, now.Add(-time.Hour).Unix(), body)},
		"secret":    {"Stripe-Signature": SignPayload("whsec_other", now.Unix(), body)},
	}
	for name, headers := range cases {
		if _, err := VerifyAndParseWebhook(cfg, headers, body, now); !errors.Is(err, ErrSignatureInvalid) {
			t.Fatalf("%s: expected signature invalid, got %v", name, err)
		}
	}
}

func TestMinorAmountConversion(t *testing.T) {
	minor, err := ToMinorAmount(decimal.RequireFromString("32.50"), "usd")
	if err != nil || minor != 3250 {
		t.Fatalf("expected 3250, got %d err=%v", minor, err)
	}
	minor, err = ToMinorAmount(decimal.RequireFromString("500"), "JPY")
	if err != nil || minor != 500 {
		t.Fatalf("expected 500 for zero decimal currency, got %d err=%v", minor, err)
	}
	if _, err := ToMinorAmount(decimal.RequireFromString("1.005"), "usd"); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected precision error, got %v", err)
	}
	if got := FromMinorAmount(1288, "usd").StringFixed(2); got != "12.88" {
		t.Fatalf("unexpected from minor: %s", got)
	}
}
