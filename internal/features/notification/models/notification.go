package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotificationType: слаботипизированный тег уведомления
type NotificationType string

const (
	TypePaymentReceived        NotificationType = "payment_received"
	TypeWithdrawalRequested    NotificationType = "withdrawal_requested"
	TypeNewAccountOpened       NotificationType = "new_account_opened"
	TypeMTCredentialsUpdated   NotificationType = "mt_credentials_updated"
	TypeTradingPasswordChanged NotificationType = "trading_password_changed"
)

type NotificationStatus string

const (
	StatusUnread NotificationStatus = "unread"
	StatusRead   NotificationStatus = "read"

	// Статусы, зеркалящие родительский платеж
	StatusPendingApproval NotificationStatus = "pending_approval"
	StatusApproved        NotificationStatus = "approved"
	StatusRejected        NotificationStatus = "rejected"
)

// Audience определяет, чья лента читает уведомление
type Audience string

const (
	AudienceAdmin Audience = "admin"
	AudienceUser  Audience = "user"
)

// Notification: производная денормализованная запись;
// никогда не удаляется, меняется только статус
type Notification struct {
	ID       string             `json:"id"`
	Type     NotificationType   `json:"type"`
	Status   NotificationStatus `json:"status"`
	Audience Audience           `json:"audience"`

	// Денормализованные поля для отображения без join-ов
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email,omitempty"`
	UserName  string `json:"user_name,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	PaymentID string `json:"payment_id,omitempty"`

	Amount   decimal.Decimal `json:"amount,omitempty"`
	Currency string          `json:"currency,omitempty"`
	Message  string          `json:"message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
