package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaxNameLength     = 64
	MaxEmailLength    = 255
	MaxNicknameLength = 20
	MaxMessageLength  = 2000

	MinPasswordLength = 8
	MaxPasswordLength = 15
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	upiRegex   = regexp.MustCompile(`^[a-zA-Z0-9._\-]+@[a-zA-Z]{3,}$`)

	lowerRegex   = regexp.MustCompile(`[a-z]`)
	upperRegex   = regexp.MustCompile(`[A-Z]`)
	digitRegex   = regexp.MustCompile(`\d`)
	specialRegex = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

// NormalizeEmail приводит email к каноническому виду;
// уникальность email регистронезависимая
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет адрес электронной почты
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email cannot exceed %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("email address is not valid")
	}
	return nil
}

// ValidatePassword проверяет пароль по правилам регистрации:
// 8-15 символов, верхний и нижний регистр, цифра и спецсимвол
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return fmt.Errorf("password must be %d-%d characters long", MinPasswordLength, MaxPasswordLength)
	}
	if !lowerRegex.MatchString(password) || !upperRegex.MatchString(password) {
		return fmt.Errorf("password must contain both uppercase and lowercase letters")
	}
	if !digitRegex.MatchString(password) {
		return fmt.Errorf("password must contain at least one number")
	}
	if !specialRegex.MatchString(password) {
		return fmt.Errorf("password must contain at least one special character")
	}
	return nil
}

// ValidateName проверяет отображаемое имя
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name cannot exceed %d characters", MaxNameLength)
	}
	return nil
}

// ValidateNickname проверяет псевдоним торгового счета
func ValidateNickname(nickname string) error {
	if len(strings.TrimSpace(nickname)) == 0 {
		return fmt.Errorf("nickname cannot be empty")
	}
	if len(nickname) > MaxNicknameLength {
		return fmt.Errorf("nickname cannot exceed %d characters", MaxNicknameLength)
	}
	return nil
}

// ValidateID проверяет, что идентификатор является корректным UUID,
// до любого обращения к хранилищу
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("identifier is not valid")
	}
	return nil
}

// ValidateAmount проверяет, что сумма положительная
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("amount must be greater than zero")
	}
	return nil
}

// ValidateUPI проверяет UPI-идентификатор для вывода средств
func ValidateUPI(upi string) error {
	if !upiRegex.MatchString(strings.TrimSpace(upi)) {
		return fmt.Errorf("UPI id is not valid")
	}
	return nil
}

// ValidateMessage проверяет текст сообщения чата
func ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if len(message) > MaxMessageLength {
		return fmt.Errorf("message cannot exceed %d characters", MaxMessageLength)
	}
	return nil
}
