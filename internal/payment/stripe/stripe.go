package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("stripe config invalid")
	ErrRequestFailed    = errors.New("stripe request failed")
	ErrResponseInvalid  = errors.New("stripe response invalid")
	ErrSignatureInvalid = errors.New("stripe signature invalid")
	ErrCardDeclined     = errors.New("stripe card declined")
)

const (
	defaultAPIBaseURL        = "https://api.stripe.com"
	defaultTimeout           = 12 * time.Second
	defaultWebhookToleranceS = 300
)

var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {},
	"CLP": {},
	"DJF": {},
	"GNF": {},
	"JPY": {},
	"KMF": {},
	"KRW": {},
	"MGA": {},
	"PYG": {},
	"RWF": {},
	"UGX": {},
	"VND": {},
	"VUV": {},
	"XAF": {},
	"XOF": {},
	"XPF": {},
}

// Config Stripe 网关配置。
type Config struct {
	SecretKey               string
	PublishableKey          string
	WebhookSecret           string
	APIBaseURL              string
	WebhookToleranceSeconds int
}

// PaymentIntentInput 创建 PaymentIntent 输入，金额为最小货币单位。
type PaymentIntentInput struct {
	Amount          int64
	Currency        string
	PaymentMethodID string
	Confirm         bool
	Description     string
	Metadata        map[string]string
}

// PaymentIntent Stripe PaymentIntent 摘要。
type PaymentIntent struct {
	ID             string
	ClientSecret   string
	Status         string
	Amount         int64
	AmountReceived int64
	Currency       string
	Metadata       map[string]string
	Raw            map[string]interface{}
}

// SettledAmount 实收金额，未返回 amount_received 时取 amount。
func (p *PaymentIntent) SettledAmount() int64 {
	return settledAmount(p.AmountReceived, p.Amount)
}

func settledAmount(received, amount int64) int64 {
	if received > 0 {
		return received
	}
	return amount
}

// WebhookEvent Stripe Webhook 解析结果。
// Amount 与 PaymentIntent.SettledAmount 同一口径
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	Status          string
	Amount          int64
	Currency        string
	Metadata        map[string]string
	Raw             map[string]interface{}
}

// CardError 网关返回的卡片错误（如拒付、余额不足）。
type CardError struct {
	StatusCode  int
	Code        string
	DeclineCode string
	Message     string
}

func (e *CardError) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return "card declined"
}

// Is 使 errors.Is(err, ErrCardDeclined) 成立。
func (e *CardError) Is(target error) bool {
	return target == ErrCardDeclined
}

// NewConfig 创建并归一化配置。
func NewConfig(secretKey, publishableKey, webhookSecret, apiBaseURL string, toleranceSeconds int) *Config {
	cfg := &Config{
		SecretKey:               secretKey,
		PublishableKey:          publishableKey,
		WebhookSecret:           webhookSecret,
		APIBaseURL:              apiBaseURL,
		WebhookToleranceSeconds: toleranceSeconds,
	}
	cfg.normalize()
	return cfg
}

// ValidateConfig 校验调用 API 所需配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return fmt.Errorf("%w: api_base_url is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(cfg.APIBaseURL)); err != nil {
		return fmt.Errorf("%w: api_base_url is invalid", ErrConfigInvalid)
	}
	return nil
}

// CreatePaymentIntent 创建 PaymentIntent；Confirm 为 true 时立即确认扣款。
func CreatePaymentIntent(ctx context.Context, cfg *Config, input PaymentIntentInput) (*PaymentIntent, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrConfigInvalid)
	}
	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrConfigInvalid)
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(input.Amount, 10))
	form.Set("currency", currency)
	if desc := strings.TrimSpace(input.Description); desc != "" {
		form.Set("description", desc)
	}
	if pm := strings.TrimSpace(input.PaymentMethodID); pm != "" {
		form.Set("payment_method", pm)
	}
	if input.Confirm {
		form.Set("confirm", "true")
		form.Set("automatic_payment_methods[enabled]", "true")
		form.Set("automatic_payment_methods[allow_redirects]", "never")
	}
	keys := make([]string, 0, len(input.Metadata))
	for key := range input.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		form.Set(fmt.Sprintf("metadata[%s]", key), input.Metadata[key])
	}

	respBody, statusCode, err := doRequest(ctx, cfg, http.MethodPost, "/v1/payment_intents", form)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, decodeAPIError(statusCode, respBody, "create payment intent")
	}
	return decodePaymentIntent(respBody)
}

// RetrievePaymentIntent 查询 PaymentIntent。
func RetrievePaymentIntent(ctx context.Context, cfg *Config, intentID string) (*PaymentIntent, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, fmt.Errorf("%w: payment intent id is required", ErrConfigInvalid)
	}
	path := fmt.Sprintf("/v1/payment_intents/%s", url.PathEscape(intentID))
	respBody, statusCode, err := doRequest(ctx, cfg, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, decodeAPIError(statusCode, respBody, "retrieve payment intent")
	}
	return decodePaymentIntent(respBody)
}

// VerifyAndParseWebhook 校验签名并解析 Stripe webhook。
func VerifyAndParseWebhook(cfg *Config, headers map[string]string, body []byte, now time.Time) (*WebhookEvent, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("%w: webhook_secret is required", ErrSignatureInvalid)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: body is empty", ErrResponseInvalid)
	}
	if now.IsZero() {
		now = time.Now()
	}

	signatureHeader := getHeaderValue(headers, "Stripe-Signature")
	if strings.TrimSpace(signatureHeader) == "" {
		return nil, fmt.Errorf("%w: Stripe-Signature is required", ErrSignatureInvalid)
	}
	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, err
	}
	if cfg.WebhookToleranceSeconds > 0 {
		delta := math.Abs(float64(now.Unix() - timestamp))
		if delta > float64(cfg.WebhookToleranceSeconds) {
			return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrSignatureInvalid)
		}
	}

	expected := computeSignature(cfg.WebhookSecret, timestamp, body)
	matched := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(strings.ToLower(sig)), []byte(expected)) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: verify failed", ErrSignatureInvalid)
	}

	eventRaw, err := decodeRawMap(body)
	if err != nil {
		return nil, err
	}
	eventType := strings.TrimSpace(readString(eventRaw, "type"))
	if eventType == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrResponseInvalid)
	}
	event := &WebhookEvent{
		ID:   strings.TrimSpace(readString(eventRaw, "id")),
		Type: eventType,
		Raw:  eventRaw,
	}
	dataRaw := readMap(eventRaw, "data")
	objectRaw := readMap(dataRaw, "object")
	if objectRaw == nil {
		return nil, fmt.Errorf("%w: missing event object", ErrResponseInvalid)
	}
	if strings.TrimSpace(readString(objectRaw, "object")) == "payment_intent" {
		event.PaymentIntentID = strings.TrimSpace(readString(objectRaw, "id"))
		event.Status = strings.TrimSpace(readString(objectRaw, "status"))
		event.Amount = settledAmount(readInt64(objectRaw, "amount_received"), readInt64(objectRaw, "amount"))
		event.Currency = strings.ToLower(strings.TrimSpace(readString(objectRaw, "currency")))
		event.Metadata = readStringMap(objectRaw, "metadata")
	}
	return event, nil
}

// SignPayload 按 Stripe 规则生成 Stripe-Signature 头。
func SignPayload(secret string, timestamp int64, body []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, computeSignature(secret, timestamp, body))
}

// ToMinorAmount 金额转换为最小货币单位（零小数位币种不缩放）。
func ToMinorAmount(amount decimal.Decimal, currency string) (int64, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("%w: amount must be greater than zero", ErrConfigInvalid)
	}
	scale := currencyScale(currency)
	minor := amount.Shift(int32(scale))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: amount precision is invalid", ErrConfigInvalid)
	}
	return minor.IntPart(), nil
}

// FromMinorAmount 最小货币单位转换为金额。
func FromMinorAmount(minor int64, currency string) decimal.Decimal {
	scale := currencyScale(currency)
	return decimal.NewFromInt(minor).Shift(int32(-scale))
}

func (c *Config) normalize() {
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.PublishableKey = strings.TrimSpace(c.PublishableKey)
	c.WebhookSecret = strings.TrimSpace(c.WebhookSecret)
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	if c.WebhookToleranceSeconds <= 0 {
		c.WebhookToleranceSeconds = defaultWebhookToleranceS
	}
}

func currencyScale(currency string) int {
	upper := strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := zeroDecimalCurrencies[upper]; ok {
		return 0
	}
	return 2
}

func doRequest(ctx context.Context, cfg *Config, method, path string, form url.Values) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/") + path
	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.SecretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := (&http.Client{Timeout: defaultTimeout}).Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

// decodeAPIError 解析 {error:{type,code,decline_code,message}}，卡片错误返回 *CardError。
func decodeAPIError(statusCode int, body []byte, action string) error {
	raw, err := decodeRawMap(body)
	if err != nil {
		return fmt.Errorf("%w: %s status %d", ErrResponseInvalid, action, statusCode)
	}
	errRaw := readMap(raw, "error")
	message := strings.TrimSpace(readString(errRaw, "message"))
	if strings.TrimSpace(readString(errRaw, "type")) == "card_error" {
		return &CardError{
			StatusCode:  statusCode,
			Code:        strings.TrimSpace(readString(errRaw, "code")),
			DeclineCode: strings.TrimSpace(readString(errRaw, "decline_code")),
			Message:     message,
		}
	}
	if message == "" {
		return fmt.Errorf("%w: %s status %d", ErrRequestFailed, action, statusCode)
	}
	return fmt.Errorf("%w: %s status %d: %s", ErrRequestFailed, action, statusCode, message)
}

func decodePaymentIntent(body []byte) (*PaymentIntent, error) {
	raw, err := decodeRawMap(body)
	if err != nil {
		return nil, err
	}
	intent := &PaymentIntent{
		ID:             strings.TrimSpace(readString(raw, "id")),
		ClientSecret:   strings.TrimSpace(readString(raw, "client_secret")),
		Status:         strings.TrimSpace(readString(raw, "status")),
		Amount:         readInt64(raw, "amount"),
		AmountReceived: readInt64(raw, "amount_received"),
		Currency:       strings.ToLower(strings.TrimSpace(readString(raw, "currency"))),
		Metadata:       readStringMap(raw, "metadata"),
		Raw:            raw,
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("%w: missing payment intent id", ErrResponseInvalid)
	}
	return intent, nil
}

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return raw, nil
}

func computeSignature(secret string, timestamp int64, body []byte) string {
	payload := strconv.FormatInt(timestamp, 10) + "." + string(body)
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(payload))
	return strings.ToLower(hex.EncodeToString(h.Sum(nil)))
}

func parseSignatureHeader(signatureHeader string) (int64, []string, error) {
	timestamp := int64(0)
	signatures := make([]string, 0)
	parts := strings.Split(signatureHeader, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil || parsed <= 0 {
				return 0, nil, fmt.Errorf("%w: invalid timestamp", ErrSignatureInvalid)
			}
			timestamp = parsed
		case "v1":
			if value != "" {
				signatures = append(signatures, strings.ToLower(value))
			}
		}
	}
	if timestamp <= 0 {
		return 0, nil, fmt.Errorf("%w: timestamp is missing", ErrSignatureInvalid)
	}
	if len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: v1 signature is missing", ErrSignatureInvalid)
	}
	return timestamp, signatures, nil
}

func getHeaderValue(headers map[string]string, key string) string {
	if len(headers) == 0 || strings.TrimSpace(key) == "" {
		return ""
	}
	for h, value := range headers {
		if strings.EqualFold(strings.TrimSpace(h), key) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil || strings.TrimSpace(key) == "" {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return strings.TrimSpace(typed.String())
	case float64:
		return strconv.FormatInt(int64(typed), 10)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return ""
	}
}

func readMap(raw map[string]interface{}, key string) map[string]interface{} {
	if raw == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return nil
	}
	mapped, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	return mapped
}

func readStringMap(raw map[string]interface{}, key string) map[string]string {
	mapped := readMap(raw, key)
	result := make(map[string]string, len(mapped))
	for k := range mapped {
		result[k] = readString(mapped, k)
	}
	return result
}

func readInt64(raw map[string]interface{}, key string) int64 {
	if raw == nil || strings.TrimSpace(key) == "" {
		return 0
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return 0
	}
	switch typed := value.(type) {
	case float64:
		return int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
