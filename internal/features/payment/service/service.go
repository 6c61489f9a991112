package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"trading-portal-backend/internal/common/config"
	"trading-portal-backend/internal/common/validation"
	accmodels "trading-portal-backend/internal/features/account/models"
	accountrepo "trading-portal-backend/internal/features/account/repository"
	notifmodels "trading-portal-backend/internal/features/notification/models"
	notifservice "trading-portal-backend/internal/features/notification/service"
	"trading-portal-backend/internal/features/payment/models"
	"trading-portal-backend/internal/features/payment/repository"
)

type PaymentService interface {
	InitiateDeposit(ctx context.Context, userID, userEmail string, input *models.InitiateDepositRequest) (*models.Payment, error)
	InitiateWithdrawal(ctx context.Context, userID, userEmail string, input *models.InitiateWithdrawalRequest) (*models.Payment, error)
	SimulateGateway(ctx context.Context, userID, paymentID string, success bool) (*models.Payment, error)
	UploadScreenshot(ctx context.Context, userID, paymentID, filename string, data []byte) error
	Approve(ctx context.Context, adminID, paymentID string) (*models.Payment, error)
	Reject(ctx context.Context, adminID, paymentID string) (*models.Payment, error)
	WithdrawalStatus(ctx context.Context, userID, paymentID string) (*models.WithdrawalStatusResponse, error)
	ListPending(ctx context.Context) ([]*models.Payment, error)
}

type paymentService struct {
	payments      repository.PaymentRepository
	accounts      accountrepo.AccountRepository
	notifications notifservice.NotificationService
	config        *config.Config
}

func NewPaymentService(
	payments repository.PaymentRepository,
	accounts accountrepo.AccountRepository,
	notifications notifservice.NotificationService,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		payments:      payments,
		accounts:      accounts,
		notifications: notifications,
		config:        cfg,
	}
}

// InitiateDeposit создает pending-запись пополнения; баланс не меняется
// до одобрения админом
func (s *paymentService) InitiateDeposit(ctx context.Context, userID, userEmail string, input *models.InitiateDepositRequest) (*models.Payment, error) {
	if err := validation.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	account, err := s.ownedAccount(ctx, userID, input.AccountID)
	if err != nil {
		return nil, err
	}

	// Счет в неосновной валюте принимает пополнения только в резервной
	// валюте, независимо от того, что запросил клиент
	currency := models.FallbackCurrency
	minAmount := models.MinDepositUSD
	if account.Currency == models.PrimaryCurrency {
		currency = models.PrimaryCurrency
		minAmount = models.MinDepositINR
	}

	if input.Amount.LessThan(minAmount) {
		return nil, fmt.Errorf("%w: minimum deposit is %s %s", models.ErrAmountBelowMin, minAmount.String(), currency)
	}

	payment := &models.Payment{
		ID:        uuid.New().String(),
		UserID:    userID,
		AccountID: account.ID,
		Type:      models.TypeDeposit,
		Amount:    input.Amount,
		Currency:  currency,
		Status:    models.StatusPending,
		Reference: strings.TrimSpace(input.Reference),
		CreatedAt: time.Now(),
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// InitiateWithdrawal создает pending-запись вывода; сумма проверяется
// против текущего баланса в момент подачи
func (s *paymentService) InitiateWithdrawal(ctx context.Context, userID, userEmail string, input *models.InitiateWithdrawalRequest) (*models.Payment, error) {
	if err := validation.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := validation.ValidateUPI(input.UPIID); err != nil {
		return nil, err
	}

	account, err := s.ownedAccount(ctx, userID, input.AccountID)
	if err != nil {
		return nil, err
	}

	if input.Amount.GreaterThan(account.Balance) {
		return nil, models.ErrInsufficientFunds
	}

	payment := &models.Payment{
		ID:        uuid.New().String(),
		UserID:    userID,
		AccountID: account.ID,
		Type:      models.TypeWithdrawal,
		Amount:    input.Amount,
		Currency:  account.Currency,
		Status:    models.StatusPending,
		UPIID:     strings.TrimSpace(input.UPIID),
		CreatedAt: time.Now(),
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	if _, err := s.notifications.Notify(ctx, &notifmodels.Notification{
		Type:      notifmodels.TypeWithdrawalRequested,
		Status:    notifmodels.StatusPendingApproval,
		Audience:  notifmodels.AudienceAdmin,
		UserID:    userID,
		UserEmail: userEmail,
		AccountID: account.ID,
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Message:   fmt.Sprintf("Withdrawal requested: %s %s", payment.Amount.String(), payment.Currency),
	}); err != nil {
		return payment, nil
	}

	return payment, nil
}

// SimulateGateway подменяет колбэк платежного шлюза: success проставляет
// идентификатор транзакции и оставляет запись в pending, failure переводит
// ее в терминальный failed минуя ревью админа
func (s *paymentService) SimulateGateway(ctx context.Context, userID, paymentID string, success bool) (*models.Payment, error) {
	payment, err := s.ownedPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Status != models.StatusPending {
		return nil, models.ErrPaymentNotPending
	}

	now := time.Now()

	if !success {
		payment.Status = models.StatusFailed
		payment.FailedAt = &now
		if err := s.payments.Update(ctx, payment); err != nil {
			return nil, err
		}
		return payment, nil
	}

	payment.TransactionID = uuid.New().String()
	payment.SubmittedAt = &now
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	if _, err := s.notifications.UpsertForPayment(ctx, &notifmodels.Notification{
		Type:      notifmodels.TypePaymentReceived,
		Status:    notifmodels.StatusPendingApproval,
		Audience:  notifmodels.AudienceAdmin,
		UserID:    payment.UserID,
		AccountID: payment.AccountID,
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Message:   fmt.Sprintf("Payment received: %s %s", payment.Amount.String(), payment.Currency),
	}); err != nil {
		return payment, nil
	}

	return payment, nil
}

// UploadScreenshot прикрепляет скриншот оплаты к pending-записи владельца
func (s *paymentService) UploadScreenshot(ctx context.Context, userID, paymentID, filename string, data []byte) error {
	if int64(len(data)) > s.config.Upload.MaxScreenshotBytes {
		return models.ErrScreenshotTooBig
	}

	payment, err := s.ownedPayment(ctx, userID, paymentID)
	if err != nil {
		return err
	}

	if payment.Status != models.StatusPending {
		return models.ErrPaymentNotPending
	}

	payment.Screenshot = base64.StdEncoding.EncodeToString(data)
	payment.ScreenshotName = filename
	return s.payments.Update(ctx, payment)
}

// Approve: единственная операция, меняющая баланс счета.
// Работает только из pending: повторное одобрение уже завершенной записи
// отклоняется. Баланс для вывода перепроверяется на момент одобрения.
func (s *paymentService) Approve(ctx context.Context, adminID, paymentID string) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, models.ErrPaymentNotFound
	}

	if payment.Status != models.StatusPending {
		return nil, models.ErrPaymentNotPending
	}

	account, err := s.accounts.GetByID(ctx, payment.AccountID)
	if err != nil {
		return nil, fmt.Errorf("account for payment %s: %w", payment.ID, err)
	}

	switch payment.Type {
	case models.TypeDeposit:
		account.Balance = account.Balance.Add(payment.Amount)
	case models.TypeWithdrawal:
		// Баланс мог упасть с момента подачи заявки
		if payment.Amount.GreaterThan(account.Balance) {
			return nil, models.ErrInsufficientFunds
		}
		account.Balance = account.Balance.Sub(payment.Amount)
	default:
		return nil, fmt.Errorf("unknown payment type %q", payment.Type)
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	now := time.Now()
	payment.Status = models.StatusCompleted
	payment.ApprovedAt = &now
	payment.ApprovedBy = adminID

	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	// Статус платежа и уведомление обновляются двумя отдельными записями
	// без общей транзакции
	if err := s.notifications.SetStatusForPayment(ctx, payment.ID, notifmodels.StatusApproved); err != nil {
		return payment, nil
	}

	return payment, nil
}

// Reject переводит pending-запись в rejected; баланс не меняется
func (s *paymentService) Reject(ctx context.Context, adminID, paymentID string) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, models.ErrPaymentNotFound
	}

	if payment.Status != models.StatusPending {
		return nil, models.ErrPaymentNotPending
	}

	now := time.Now()
	payment.Status = models.StatusRejected
	payment.RejectedAt = &now
	payment.RejectedBy = adminID

	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.notifications.SetStatusForPayment(ctx, payment.ID, notifmodels.StatusRejected); err != nil {
		return payment, nil
	}

	return payment, nil
}

// WithdrawalStatus отдает статус для поллинга со стороны пользователя;
// completed наружу транслируется как approved
func (s *paymentService) WithdrawalStatus(ctx context.Context, userID, paymentID string) (*models.WithdrawalStatusResponse, error) {
	payment, err := s.ownedPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}

	status := string(payment.Status)
	if payment.Status == models.StatusCompleted {
		status = "approved"
	}

	return &models.WithdrawalStatusResponse{
		Success:  true,
		Status:   status,
		Amount:   payment.Amount,
		Currency: payment.Currency,
	}, nil
}

func (s *paymentService) ListPending(ctx context.Context) ([]*models.Payment, error) {
	return s.payments.ListPending(ctx)
}

// ownedAccount возвращает счет, если он принадлежит пользователю;
// чужой счет неотличим от несуществующего
func (s *paymentService) ownedAccount(ctx context.Context, userID, accountID string) (*accmodels.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil || account.UserID != userID {
		return nil, fmt.Errorf("account not found")
	}

	return account, nil
}

func (s *paymentService) ownedPayment(ctx context.Context, userID, paymentID string) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil || payment.UserID != userID {
		return nil, models.ErrPaymentNotFound
	}

	return payment, nil
}
