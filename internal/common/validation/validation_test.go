package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"alice@example.com",
		"a.b-c_d+tag@sub.example.co",
	}
	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"alice@",
		"alice@nodot",
		"alice example@example.com",
		strings.Repeat("a", 250) + "@example.com",
	}

	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Sup3rSecret!"))
	assert.NoError(t, ValidatePassword("Aa1!aaaa")) // ровно 8

	invalid := []string{
		"Aa1!aaa",          // 7 символов
		"Aa1!aaaaaaaaaaaa", // 16 символов
		"alllower1!",
		"ALLUPPER1!",
		"NoDigits!!",
		"NoSpecial11",
	}
	for _, password := range invalid {
		assert.Error(t, ValidatePassword(password), password)
	}
}

func TestValidateUPI(t *testing.T) {
	assert.NoError(t, ValidateUPI("alice@upi"))
	assert.NoError(t, ValidateUPI("a.b-c_1@okhdfcbank"))
	assert.NoError(t, ValidateUPI("  alice@upi  "))

	invalid := []string{
		"",
		"alice",
		"alice@",
		"alice@ab",     // хэндл короче трех букв
		"alice@bank1",  // цифры после @ не допускаются
		"al ice@upi",
	}
	for _, upi := range invalid {
		assert.Error(t, ValidateUPI(upi), upi)
	}
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.NewFromFloat(0.01)))
	assert.Error(t, ValidateAmount(decimal.Zero))
	assert.Error(t, ValidateAmount(decimal.NewFromInt(-10)))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID(uuid.New().String()))
	assert.Error(t, ValidateID("42"))
	assert.Error(t, ValidateID("../secrets"))
}

func TestValidateNickname(t *testing.T) {
	assert.NoError(t, ValidateNickname("my account"))
	assert.Error(t, ValidateNickname("   "))
	assert.Error(t, ValidateNickname(strings.Repeat("n", 21)))
}

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, ValidateMessage("hello"))
	assert.Error(t, ValidateMessage(" "))
	assert.Error(t, ValidateMessage(strings.Repeat("m", 2001)))
}
