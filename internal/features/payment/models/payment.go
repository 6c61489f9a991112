package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentNotPending = errors.New("payment is not pending")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrAmountBelowMin    = errors.New("amount is below the minimum")
	ErrScreenshotTooBig  = errors.New("file size must be less than 5MB")
)

// PaymentType различает пополнение и вывод
type PaymentType string

const (
	TypeDeposit    PaymentType = "deposit"
	TypeWithdrawal PaymentType = "withdrawal"
)

// PaymentStatus: состояния машины: pending единственное нетерминальное
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusRejected  PaymentStatus = "rejected"
	StatusFailed    PaymentStatus = "failed"
)

// Terminal сообщает, достигнут ли терминальный статус;
// из терминального статуса переходов нет
func (s PaymentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusFailed
}

// Минимальные суммы пополнения по валюте счета
var (
	MinDepositINR = decimal.NewFromInt(1)
	MinDepositUSD = decimal.NewFromInt(10)
)

const (
	PrimaryCurrency  = "INR"
	FallbackCurrency = "USD"
)

// Payment: документ запроса на движение средств; никогда не удаляется,
// после терминального перехода меняются только аннотации
type Payment struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	AccountID string      `json:"account_id"`
	Type      PaymentType `json:"type"`

	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Status   PaymentStatus   `json:"status"`

	Reference string `json:"reference,omitempty"`
	UPIID     string `json:"upi_id,omitempty"`

	// Идентификатор транзакции, проставляемый колбэком шлюза
	TransactionID string `json:"transaction_id,omitempty"`

	// Скриншот оплаты, base64 внутри документа
	Screenshot     string `json:"screenshot,omitempty"`
	ScreenshotName string `json:"screenshot_name,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	RejectedBy  string     `json:"rejected_by,omitempty"`
}

type InitiateDepositRequest struct {
	AccountID string          `json:"account_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Currency  string          `json:"currency"`
	Reference string          `json:"reference"`
}

type InitiateWithdrawalRequest struct {
	AccountID string          `json:"account_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Currency  string          `json:"currency"`
	UPIID     string          `json:"upi_id" binding:"required"`
}

type SimulateGatewayRequest struct {
	Status string `json:"status" binding:"required"` // success | failed
}

// WithdrawalStatusResponse: ответ поллинга статуса вывода;
// completed наружу отдается как approved
type WithdrawalStatusResponse struct {
	Success  bool            `json:"success"`
	Status   string          `json:"status"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}
