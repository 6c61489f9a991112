package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"trading-portal-backend/internal/common/validation"
	"trading-portal-backend/internal/features/account/models"
	"trading-portal-backend/internal/features/account/repository"
	notifmodels "trading-portal-backend/internal/features/notification/models"
	notifservice "trading-portal-backend/internal/features/notification/service"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountLimit    = fmt.Errorf("account limit reached: at most %d accounts per user", models.MaxAccountsPerUser)
	ErrNotOwner        = errors.New("account not found") // чужой счет неотличим от несуществующего
)

type AccountService interface {
	Create(ctx context.Context, userID, userEmail, userName string, input *models.AccountSetupRequest) (*models.AccountResponse, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.AccountResponse, error)
	GetOwned(ctx context.Context, userID, accountID string) (*models.Account, error)
	ChangeTradingPassword(ctx context.Context, userID, userEmail, accountID, password string) error
	UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error
	SetMTCredentials(ctx context.Context, accountID, mtLogin, mtServer string) error
	UpdateLeverage(ctx context.Context, accountID, leverage string) error
	DeleteByOwner(ctx context.Context, userID string) (int, error)
}

type accountService struct {
	repo          repository.AccountRepository
	notifications notifservice.NotificationService
}

func NewAccountService(repo repository.AccountRepository, notifications notifservice.NotificationService) AccountService {
	return &accountService{
		repo:          repo,
		notifications: notifications,
	}
}

func (s *accountService) Create(ctx context.Context, userID, userEmail, userName string, input *models.AccountSetupRequest) (*models.AccountResponse, error) {
	accountType := models.AccountType(input.AccountType)
	if !accountType.Valid() {
		return nil, models.ErrInvalidAccountType
	}
	if err := validation.ValidateNickname(input.Nickname); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	// Лимит проверяется подсчетом документов на момент вызова
	count, err := s.repo.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= models.MaxAccountsPerUser {
		return nil, ErrAccountLimit
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:                  uuid.New().String(),
		UserID:              userID,
		Type:                accountType,
		Currency:            strings.ToUpper(strings.TrimSpace(input.Currency)),
		Nickname:            strings.TrimSpace(input.Nickname),
		Leverage:            input.Leverage,
		Platform:            input.Platform,
		TradingPasswordHash: string(hash),
		Balance:             decimal.Zero,
		CreatedAt:           time.Now(),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	if _, err := s.notifications.Notify(ctx, &notifmodels.Notification{
		Type:      notifmodels.TypeNewAccountOpened,
		Audience:  notifmodels.AudienceAdmin,
		UserID:    userID,
		UserEmail: userEmail,
		UserName:  userName,
		AccountID: account.ID,
		Message:   fmt.Sprintf("New %s account opened (%s)", account.Type, account.Currency),
	}); err != nil {
		// Фанаут не должен ронять создание счета
		return toAccountResponse(account), nil
	}

	return toAccountResponse(account), nil
}

func (s *accountService) ListByOwner(ctx context.Context, userID string) ([]*models.AccountResponse, error) {
	accounts, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, toAccountResponse(account))
	}

	return responses, nil
}

func (s *accountService) GetOwned(ctx context.Context, userID, accountID string) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	if account.UserID != userID {
		return nil, ErrNotOwner
	}

	return account, nil
}

func (s *accountService) ChangeTradingPassword(ctx context.Context, userID, userEmail, accountID, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	account, err := s.GetOwned(ctx, userID, accountID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account.TradingPasswordHash = string(hash)
	if err := s.repo.Update(ctx, account); err != nil {
		return err
	}

	_, err = s.notifications.Notify(ctx, &notifmodels.Notification{
		Type:      notifmodels.TypeTradingPasswordChanged,
		Audience:  notifmodels.AudienceAdmin,
		UserID:    userID,
		UserEmail: userEmail,
		AccountID: account.ID,
		Message:   "Trading password changed",
	})
	return err
}

func (s *accountService) UpdateBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("balance cannot be negative")
	}

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return ErrAccountNotFound
	}

	account.Balance = balance
	return s.repo.Update(ctx, account)
}

func (s *accountService) SetMTCredentials(ctx context.Context, accountID, mtLogin, mtServer string) error {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return ErrAccountNotFound
	}

	account.MTLogin = strings.TrimSpace(mtLogin)
	account.MTServer = strings.TrimSpace(mtServer)
	if err := s.repo.Update(ctx, account); err != nil {
		return err
	}

	// Владелец видит обновление реквизитов в своей ленте
	_, err = s.notifications.Notify(ctx, &notifmodels.Notification{
		Type:      notifmodels.TypeMTCredentialsUpdated,
		Audience:  notifmodels.AudienceUser,
		UserID:    account.UserID,
		AccountID: account.ID,
		Message:   fmt.Sprintf("Platform credentials updated for account %s", account.Nickname),
	})
	return err
}

func (s *accountService) UpdateLeverage(ctx context.Context, accountID, leverage string) error {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return ErrAccountNotFound
	}

	account.Leverage = leverage
	return s.repo.Update(ctx, account)
}

// DeleteByOwner удаляет все счета пользователя; используется каскадом
// при удалении пользователя админом. Платежи и уведомления не трогаем.
func (s *accountService) DeleteByOwner(ctx context.Context, userID string) (int, error) {
	accounts, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, account := range accounts {
		if err := s.repo.Delete(ctx, account.ID); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}

func toAccountResponse(account *models.Account) *models.AccountResponse {
	return &models.AccountResponse{
		ID:        account.ID,
		Type:      account.Type,
		Currency:  account.Currency,
		Nickname:  account.Nickname,
		Leverage:  account.Leverage,
		Platform:  account.Platform,
		Balance:   account.Balance,
		MTLogin:   account.MTLogin,
		MTServer:  account.MTServer,
		CreatedAt: account.CreatedAt,
	}
}
