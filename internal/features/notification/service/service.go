package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"trading-portal-backend/internal/features/notification/models"
	"trading-portal-backend/internal/features/notification/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService interface {
	Notify(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	UpsertForPayment(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	SetStatusForPayment(ctx context.Context, paymentID string, status models.NotificationStatus) error
	MarkRead(ctx context.Context, id string) error
	ListAdmin(ctx context.Context) ([]*models.Notification, error)
	ListAdminByType(ctx context.Context, t models.NotificationType) ([]*models.Notification, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Notification, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Notify создает уведомление, заполняя служебные поля
func (s *notificationService) Notify(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	notification.ID = uuid.New().String()
	if notification.Status == "" {
		notification.Status = models.StatusUnread
	}
	if notification.Audience == "" {
		notification.Audience = models.AudienceAdmin
	}
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = notification.CreatedAt

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	return notification, nil
}

// UpsertForPayment создает уведомление о платеже либо обновляет
// существующее (повторный колбэк шлюза обновляет, а не дублирует)
func (s *notificationService) UpsertForPayment(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	existing, err := s.repo.GetByPaymentID(ctx, notification.PaymentID)
	if err != nil {
		return s.Notify(ctx, notification)
	}

	existing.Amount = notification.Amount
	existing.Currency = notification.Currency
	existing.Message = notification.Message
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// SetStatusForPayment зеркалит статус родительского платежа
// в связанное уведомление; отсутствие связи не ошибка
func (s *notificationService) SetStatusForPayment(ctx context.Context, paymentID string, status models.NotificationStatus) error {
	notification, err := s.repo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil
	}

	notification.Status = status
	notification.UpdatedAt = time.Now()
	return s.repo.Update(ctx, notification)
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrNotificationNotFound
	}

	notification.Status = models.StatusRead
	notification.UpdatedAt = time.Now()
	return s.repo.Update(ctx, notification)
}

func (s *notificationService) ListAdmin(ctx context.Context) ([]*models.Notification, error) {
	return s.repo.ListAdmin(ctx)
}

func (s *notificationService) ListAdminByType(ctx context.Context, t models.NotificationType) ([]*models.Notification, error) {
	all, err := s.repo.ListAdmin(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Notification, 0, len(all))
	for _, n := range all {
		if n.Type == t {
			filtered = append(filtered, n)
		}
	}

	return filtered, nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}
