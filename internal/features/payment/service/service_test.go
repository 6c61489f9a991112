package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-portal-backend/internal/common/config"
	accmodels "trading-portal-backend/internal/features/account/models"
	notifmodels "trading-portal-backend/internal/features/notification/models"
	"trading-portal-backend/internal/features/payment/models"
)

type fakePaymentRepo struct {
	payments map[string]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*models.Payment)}
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	r.payments[payment.ID] = payment
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id string) (*models.Payment, error) {
	payment, ok := r.payments[id]
	if !ok {
		return nil, models.ErrPaymentNotFound
	}
	copied := *payment
	return &copied, nil
}

func (r *fakePaymentRepo) Update(_ context.Context, payment *models.Payment) error {
	if _, ok := r.payments[payment.ID]; !ok {
		return models.ErrPaymentNotFound
	}
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) ListByUser(_ context.Context, userID string) ([]*models.Payment, error) {
	var result []*models.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *fakePaymentRepo) ListPending(_ context.Context) ([]*models.Payment, error) {
	var result []*models.Payment
	for _, p := range r.payments {
		if p.Status == models.StatusPending {
			result = append(result, p)
		}
	}
	return result, nil
}

type fakeAccountRepo struct {
	accounts map[string]*accmodels.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*accmodels.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *accmodels.Account) error {
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*accmodels.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, errors.New("account not found")
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) Update(_ context.Context, account *accmodels.Account) error {
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id string) error {
	delete(r.accounts, id)
	return nil
}

func (r *fakeAccountRepo) ListByOwner(_ context.Context, userID string) ([]*accmodels.Account, error) {
	var result []*accmodels.Account
	for _, a := range r.accounts {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *fakeAccountRepo) CountByOwner(_ context.Context, userID string) (int, error) {
	count := 0
	for _, a := range r.accounts {
		if a.UserID == userID {
			count++
		}
	}
	return count, nil
}

type fakeNotifications struct {
	created  []*notifmodels.Notification
	statuses map[string]notifmodels.NotificationStatus
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{statuses: make(map[string]notifmodels.NotificationStatus)}
}

func (f *fakeNotifications) Notify(_ context.Context, n *notifmodels.Notification) (*notifmodels.Notification, error) {
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeNotifications) UpsertForPayment(_ context.Context, n *notifmodels.Notification) (*notifmodels.Notification, error) {
	for _, existing := range f.created {
		if existing.PaymentID == n.PaymentID {
			existing.Amount = n.Amount
			existing.Message = n.Message
			return existing, nil
		}
	}
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeNotifications) SetStatusForPayment(_ context.Context, paymentID string, status notifmodels.NotificationStatus) error {
	f.statuses[paymentID] = status
	return nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, _ string) error { return nil }

func (f *fakeNotifications) ListAdmin(_ context.Context) ([]*notifmodels.Notification, error) {
	return f.created, nil
}

func (f *fakeNotifications) ListAdminByType(_ context.Context, t notifmodels.NotificationType) ([]*notifmodels.Notification, error) {
	var result []*notifmodels.Notification
	for _, n := range f.created {
		if n.Type == t {
			result = append(result, n)
		}
	}
	return result, nil
}

func (f *fakeNotifications) ListForUser(_ context.Context, _ string) ([]*notifmodels.Notification, error) {
	return nil, nil
}

type paymentFixture struct {
	service       PaymentService
	payments      *fakePaymentRepo
	accounts      *fakeAccountRepo
	notifications *fakeNotifications
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Upload.MaxScreenshotBytes = 5 * 1024 * 1024

	payments := newFakePaymentRepo()
	accounts := newFakeAccountRepo()
	notifications := newFakeNotifications()

	return &paymentFixture{
		service:       NewPaymentService(payments, accounts, notifications, cfg),
		payments:      payments,
		accounts:      accounts,
		notifications: notifications,
	}
}

func (f *paymentFixture) addAccount(id, userID, currency string, balance int64) *accmodels.Account {
	account := &accmodels.Account{
		ID:       id,
		UserID:   userID,
		Type:     accmodels.AccountTypeStandard,
		Currency: currency,
		Balance:  decimal.NewFromInt(balance),
	}
	f.accounts.accounts[id] = account
	return account
}

func TestInitiateDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending payment without touching balance", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-1", "user-1", "INR", 0)

		payment, err := f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(100),
			Reference: "ref-42",
		})
		require.NoError(t, err)

		assert.Equal(t, models.StatusPending, payment.Status)
		assert.Equal(t, models.TypeDeposit, payment.Type)
		assert.Equal(t, "INR", payment.Currency)
		assert.Equal(t, "ref-42", payment.Reference)

		account, _ := f.accounts.GetByID(ctx, "acc-1")
		assert.True(t, account.Balance.IsZero())

		// Пополнения не порождают уведомлений до колбэка шлюза
		assert.Empty(t, f.notifications.created)
	})

	t.Run("forces fallback currency for non-INR accounts", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-1", "user-1", "EUR", 0)

		payment, err := f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(50),
			Currency:  "EUR",
		})
		require.NoError(t, err)
		assert.Equal(t, "USD", payment.Currency)
	})

	t.Run("enforces minimum per currency", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-inr", "user-1", "INR", 0)
		f.addAccount("acc-usd", "user-1", "USD", 0)

		_, err := f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-inr",
			Amount:    decimal.NewFromFloat(0.5),
		})
		assert.ErrorIs(t, err, models.ErrAmountBelowMin)

		_, err = f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-usd",
			Amount:    decimal.NewFromInt(9),
		})
		assert.ErrorIs(t, err, models.ErrAmountBelowMin)

		_, err = f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-usd",
			Amount:    decimal.NewFromInt(10),
		})
		assert.NoError(t, err)
	})

	t.Run("rejects zero and negative amounts", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-1", "user-1", "INR", 0)

		_, err := f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-1",
			Amount:    decimal.Zero,
		})
		assert.Error(t, err)

		_, err = f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(-5),
		})
		assert.Error(t, err)
	})

	t.Run("foreign account looks like a missing one", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-1", "user-1", "INR", 0)

		_, err := f.service.InitiateDeposit(ctx, "user-2", "b@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(100),
		})
		require.Error(t, err)
		assert.Equal(t, "account not found", err.Error())
	})
}

func TestInitiateWithdrawal(t *testing.T) {
	ctx := context.Background()

	t.Run("checks balance at submission", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-1", "user-1", "INR", 30)

		_, err := f.service.InitiateWithdrawal(ctx, "user-1", "a@b.com", &models.InitiateWithdrawalRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(50),
			UPIID:     "alice@upi",
		})
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)

		payment, err := f.service.InitiateWithdrawal(ctx, "user-1", "a@b.com", &models.InitiateWithdrawalRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(20),
			UPIID:     "alice@upi",
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, payment.Status)

		// Баланс не меняется до одобрения
		account, _ := f.accounts.GetByID(ctx, "acc-1")
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(30)))
	})

	t.Run("notifies admin with pending approval status", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-1", "user-1", "INR", 100)

		payment, err := f.service.InitiateWithdrawal(ctx, "user-1", "alice@example.com", &models.InitiateWithdrawalRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(40),
			UPIID:     "alice@upi",
		})
		require.NoError(t, err)

		require.Len(t, f.notifications.created, 1)
		n := f.notifications.created[0]
		assert.Equal(t, notifmodels.TypeWithdrawalRequested, n.Type)
		assert.Equal(t, notifmodels.StatusPendingApproval, n.Status)
		assert.Equal(t, payment.ID, n.PaymentID)
		assert.Equal(t, "acc-1", n.AccountID)
	})

	t.Run("rejects malformed UPI id", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-1", "user-1", "INR", 100)

		for _, upi := range []string{"", "no-at-sign", "alice@", "alice@ab", "al ice@upi"} {
			_, err := f.service.InitiateWithdrawal(ctx, "user-1", "a@b.com", &models.InitiateWithdrawalRequest{
				AccountID: "acc-1",
				Amount:    decimal.NewFromInt(10),
				UPIID:     upi,
			})
			assert.Error(t, err, "upi %q should be rejected", upi)
		}
	})
}

func TestSimulateGateway(t *testing.T) {
	ctx := context.Background()

	initiate := func(t *testing.T, f *paymentFixture) *models.Payment {
		t.Helper()
		f.addAccount("acc-1", "user-1", "INR", 0)
		payment, err := f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(100),
		})
		require.NoError(t, err)
		return payment
	}

	t.Run("success keeps payment pending and notifies admin", func(t *testing.T) {
		f := newPaymentFixture(t)
		payment := initiate(t, f)

		updated, err := f.service.SimulateGateway(ctx, "user-1", payment.ID, true)
		require.NoError(t, err)

		assert.Equal(t, models.StatusPending, updated.Status)
		assert.NotEmpty(t, updated.TransactionID)
		assert.NotNil(t, updated.SubmittedAt)

		require.Len(t, f.notifications.created, 1)
		assert.Equal(t, notifmodels.TypePaymentReceived, f.notifications.created[0].Type)
	})

	t.Run("repeated success callback does not duplicate the notification", func(t *testing.T) {
		f := newPaymentFixture(t)
		payment := initiate(t, f)

		_, err := f.service.SimulateGateway(ctx, "user-1", payment.ID, true)
		require.NoError(t, err)
		_, err = f.service.SimulateGateway(ctx, "user-1", payment.ID, true)
		require.NoError(t, err)

		assert.Len(t, f.notifications.created, 1)
	})

	t.Run("failure is terminal and skips admin review", func(t *testing.T) {
		f := newPaymentFixture(t)
		payment := initiate(t, f)

		updated, err := f.service.SimulateGateway(ctx, "user-1", payment.ID, false)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFailed, updated.Status)
		assert.NotNil(t, updated.FailedAt)

		_, err = f.service.SimulateGateway(ctx, "user-1", payment.ID, true)
		assert.ErrorIs(t, err, models.ErrPaymentNotPending)

		_, err = f.service.Approve(ctx, "admin-1", payment.ID)
		assert.ErrorIs(t, err, models.ErrPaymentNotPending)
	})

	t.Run("foreign payment looks like a missing one", func(t *testing.T) {
		f := newPaymentFixture(t)
		payment := initiate(t, f)

		_, err := f.service.SimulateGateway(ctx, "user-2", payment.ID, true)
		assert.ErrorIs(t, err, models.ErrPaymentNotFound)
	})
}

func TestUploadScreenshot(t *testing.T) {
	ctx := context.Background()

	t.Run("stores screenshot inline", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-1", "user-1", "INR", 0)

		payment, err := f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(100),
		})
		require.NoError(t, err)

		err = f.service.UploadScreenshot(ctx, "user-1", payment.ID, "proof.png", []byte("png-bytes"))
		require.NoError(t, err)

		stored, _ := f.payments.GetByID(ctx, payment.ID)
		assert.NotEmpty(t, stored.Screenshot)
		assert.Equal(t, "proof.png", stored.ScreenshotName)
	})

	t.Run("rejects files over the limit", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-1", "user-1", "INR", 0)

		payment, err := f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(100),
		})
		require.NoError(t, err)

		tooBig := bytes.Repeat([]byte{0x1}, 5*1024*1024+1)
		err = f.service.UploadScreenshot(ctx, "user-1", payment.ID, "huge.png", tooBig)
		assert.ErrorIs(t, err, models.ErrScreenshotTooBig)
	})

	t.Run("rejects upload to a settled payment", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-1", "user-1", "INR", 0)

		payment, err := f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(100),
		})
		require.NoError(t, err)

		_, err = f.service.Approve(ctx, "admin-1", payment.ID)
		require.NoError(t, err)

		err = f.service.UploadScreenshot(ctx, "user-1", payment.ID, "late.png", []byte("x"))
		assert.ErrorIs(t, err, models.ErrPaymentNotPending)
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("deposit approval credits the account", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-1", "user-1", "INR", 10)

		payment, err := f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(100),
		})
		require.NoError(t, err)

		approved, err := f.service.Approve(ctx, "admin-1", payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, approved.Status)
		assert.Equal(t, "admin-1", approved.ApprovedBy)
		assert.NotNil(t, approved.ApprovedAt)

		account, _ := f.accounts.GetByID(ctx, "acc-1")
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(110)))

		assert.Equal(t, notifmodels.StatusApproved, f.notifications.statuses[payment.ID])
	})

	t.Run("re-approval of a settled payment is a conflict", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.addAccount("acc-1", "user-1", "INR", 0)

		payment, err := f.service.InitiateDeposit(ctx, "user-1", "a@b.com", &models.InitiateDepositRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(100),
		})
		require.NoError(t, err)

		_, err = f.service.Approve(ctx, "admin-1", payment.ID)
		require.NoError(t, err)

		_, err = f.service.Approve(ctx, "admin-2", payment.ID)
		assert.ErrorIs(t, err, models.ErrPaymentNotPending)

		// Баланс зачислен ровно один раз
		account, _ := f.accounts.GetByID(ctx, "acc-1")
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
	})

	t.Run("withdrawal approval re-checks the balance", func(t *testing.T) {
		f := newPaymentFixture(t)
		account := f.addAccount("acc-1", "user-1", "INR", 30)

		payment, err := f.service.InitiateWithdrawal(ctx, "user-1", "a@b.com", &models.InitiateWithdrawalRequest{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(20),
			UPIID:     "alice@upi",
		})
		require.NoError(t, err)

		// Баланс упал между подачей и одобрением
		account.Balance = decimal.NewFromInt(5)
		require.NoError(t, f.accounts.Update(ctx, account))

		_, err = f.service.Approve(ctx, "admin-1", payment.ID)
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)

		// Запись осталась pending, можно одобрить после пополнения
		account.Balance = decimal.NewFromInt(30)
		require.NoError(t, f.accounts.Update(ctx, account))

		approved, err := f.service.Approve(ctx, "admin-1", payment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, approved.Status)

		updated, _ := f.accounts.GetByID(ctx, "acc-1")
		assert.True(t, updated.Balance.Equal(decimal.NewFromInt(10)))
	})

	t.Run("unknown payment", func(t *testing.T) {
		f := newPaymentFixture(t)
		_, err := f.service.Approve(ctx, "admin-1", "missing")
		assert.ErrorIs(t, err, models.ErrPaymentNotFound)
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()

	f := newPaymentFixture(t)
	f.addAccount("acc-1", "user-1", "INR", 30)

	payment, err := f.service.InitiateWithdrawal(ctx, "user-1", "a@b.com", &models.InitiateWithdrawalRequest{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(20),
		UPIID:     "alice@upi",
	})
	require.NoError(t, err)

	rejected, err := f.service.Reject(ctx, "admin-1", payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.Equal(t, "admin-1", rejected.RejectedBy)
	assert.NotNil(t, rejected.RejectedAt)

	// Отказ не трогает баланс
	account, _ := f.accounts.GetByID(ctx, "acc-1")
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(30)))

	assert.Equal(t, notifmodels.StatusRejected, f.notifications.statuses[payment.ID])

	_, err = f.service.Approve(ctx, "admin-1", payment.ID)
	assert.ErrorIs(t, err, models.ErrPaymentNotPending)
}

func TestWithdrawalStatus(t *testing.T) {
	ctx := context.Background()

	f := newPaymentFixture(t)
	f.addAccount("acc-1", "user-1", "INR", 50)

	payment, err := f.service.InitiateWithdrawal(ctx, "user-1", "a@b.com", &models.InitiateWithdrawalRequest{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(20),
		UPIID:     "alice@upi",
	})
	require.NoError(t, err)

	status, err := f.service.WithdrawalStatus(ctx, "user-1", payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", status.Status)

	_, err = f.service.Approve(ctx, "admin-1", payment.ID)
	require.NoError(t, err)

	// Завершенный вывод наружу виден как approved
	status, err = f.service.WithdrawalStatus(ctx, "user-1", payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", status.Status)
	assert.True(t, status.Amount.Equal(decimal.NewFromInt(20)))

	_, err = f.service.WithdrawalStatus(ctx, "user-2", payment.ID)
	assert.ErrorIs(t, err, models.ErrPaymentNotFound)
}
