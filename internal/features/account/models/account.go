package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAccountType = errors.New("unknown account type")
	ErrAccountLimit       = errors.New("you can open at most 3 accounts")
)

// AccountType: фиксированный набор типов торговых счетов
type AccountType string

const (
	AccountTypeStandard  AccountType = "standard"
	AccountTypePro       AccountType = "pro"
	AccountTypeRawSpread AccountType = "raw-spread"
	AccountTypeZero      AccountType = "zero"
)

// MaxAccountsPerUser: лимит счетов на пользователя;
// проверяется подсчетом документов в момент создания
const MaxAccountsPerUser = 3

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeStandard, AccountTypePro, AccountTypeRawSpread, AccountTypeZero:
		return true
	}
	return false
}

// Account представляет документ торгового счета
type Account struct {
	ID       string      `json:"id"`
	UserID   string      `json:"user_id"`
	Type     AccountType `json:"account_type"`
	Currency string      `json:"currency"`
	Nickname string      `json:"nickname"`
	Leverage string      `json:"leverage"`
	Platform string      `json:"platform"`

	// Хэш торгового пароля; сам пароль нигде не хранится
	TradingPasswordHash string `json:"trading_password_hash,omitempty"`

	// Баланс меняется только одобренными транзакциями
	Balance decimal.Decimal `json:"balance"`

	// Привязка к внешней торговой платформе, заполняется админом
	MTLogin  string `json:"mt_login,omitempty"`
	MTServer string `json:"mt_server,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// AccountResponse: счет без чувствительных полей
type AccountResponse struct {
	ID        string          `json:"id"`
	Type      AccountType     `json:"account_type"`
	Currency  string          `json:"currency"`
	Nickname  string          `json:"nickname"`
	Leverage  string          `json:"leverage"`
	Platform  string          `json:"platform"`
	Balance   decimal.Decimal `json:"balance"`
	MTLogin   string          `json:"mt_login,omitempty"`
	MTServer  string          `json:"mt_server,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type AccountSetupRequest struct {
	AccountType string `json:"account_type" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
	Nickname    string `json:"nickname" binding:"required"`
	Leverage    string `json:"leverage" binding:"required"`
	Platform    string `json:"platform" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type ChangeTradingPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type UpdateBalanceRequest struct {
	Balance decimal.Decimal `json:"balance" binding:"required"`
}

type SetMTCredentialsRequest struct {
	MTLogin  string `json:"mt_login" binding:"required"`
	MTServer string `json:"mt_server" binding:"required"`
}

type UpdateLeverageRequest struct {
	Leverage string `json:"leverage" binding:"required"`
}
