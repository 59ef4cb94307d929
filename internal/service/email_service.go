package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/models"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// OrderStatusEmailInput 订单状态邮件输入
type OrderStatusEmailInput struct {
	OrderNo   string
	Status    string
	FirstName string
	Total     models.Money
	Currency  string
	Items     []models.OrderItem
	ShipTo    string
}

// Enabled 判断邮件服务是否可用
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(toEmail string, input OrderStatusEmailInput, locale string) error {
	subject, body := buildOrderStatusContent(input, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// BuildOrderStatusEmailInput 由订单组装邮件内容
func BuildOrderStatusEmailInput(order *models.Order, status string) OrderStatusEmailInput {
	parts := make([]string, 0, 4)
	for _, part := range []string{order.Address, order.City, order.State, order.ZipCode} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return OrderStatusEmailInput{
		OrderNo:   order.OrderNo,
		Status:    status,
		FirstName: order.FirstName,
		Total:     order.TotalPrice,
		Currency:  order.Currency,
		Items:     order.Items,
		ShipTo:    strings.Join(parts, ", "),
	}
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if !s.Enabled() {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	client, err := dialSMTP(addr, s.cfg.Host, s.cfg.UseSSL, s.cfg.UseTLS)
	if err != nil {
		return err
	}
	defer client.Close()
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}
	return sendSMTPData(client, s.cfg.From, []string{toEmail}, []byte(msg))
}

func buildOrderStatusContent(input OrderStatusEmailInput, locale string) (string, string) {
	normalized := i18n.NormalizeLocale(locale)
	status := strings.ToLower(strings.TrimSpace(input.Status))
	statusKey := "order.status." + status
	statusLabel := i18n.T(normalized, statusKey)
	if statusLabel == statusKey {
		statusLabel = input.Status
	}
	amount := input.Total.StringFixed(2)
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	subject := i18n.Sprintf(normalized, "email.order_status.subject", input.OrderNo, statusLabel)

	var body strings.Builder
	body.WriteString(i18n.Sprintf(normalized, "email.order_status.greeting", input.FirstName))
	body.WriteString("\n\n")
	switch status {
	case constants.OrderStatusPaid, constants.OrderStatusShipped, constants.OrderStatusDelivered, constants.OrderStatusCanceled:
		body.WriteString(i18n.Sprintf(normalized, "email.order_status.body_"+status, input.OrderNo, amount, currency))
	default:
		body.WriteString(i18n.Sprintf(normalized, "email.order_status.body", input.OrderNo, statusLabel, amount, currency))
	}
	if len(input.Items) > 0 {
		body.WriteString("\n\n")
		body.WriteString(i18n.T(normalized, "email.order_status.items"))
		for _, item := range input.Items {
			body.WriteString(fmt.Sprintf("\n- %s x %d  %s", item.ProductName, item.Quantity, item.TotalPrice().StringFixed(2)))
		}
	}
	if input.ShipTo != "" {
		body.WriteString("\n\n")
		body.WriteString(i18n.Sprintf(normalized, "email.order_status.ship_to", input.ShipTo))
	}
	return subject, body.String()
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

// dialSMTP 建立连接：SSL 直连 TLS，TLS 使用 STARTTLS，否则明文
func dialSMTP(addr, host string, useSSL, useTLS bool) (*smtp.Client, error) {
	if useSSL {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
		if err != nil {
			return nil, err
		}
		client, err := smtp.NewClient(conn, host)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return client, nil
	}
	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, err
	}
	if useTLS {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
