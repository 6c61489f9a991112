package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"trading-portal-backend/internal/features/notification/models"
	"trading-portal-backend/internal/features/notification/repository"
)

const (
	keyPrefixNotification = "notification:"
	keyAdminFeed          = "notifications:admin"
	keyPrefixUserFeed     = "notifications:user:"
	keyPrefixPaymentLink  = "notification:payment:"
)

var ErrNotificationNotFound = fmt.Errorf("notification not found")

type notificationRepository struct {
	client *redis.Client
}

func NewNotificationRepository(client *redis.Client) repository.NotificationRepository {
	return &notificationRepository{client: client}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, keyPrefixNotification+notification.ID, data, 0)

	switch notification.Audience {
	case models.AudienceUser:
		pipe.SAdd(ctx, keyPrefixUserFeed+notification.UserID, notification.ID)
	default:
		pipe.SAdd(ctx, keyAdminFeed, notification.ID)
	}

	if notification.PaymentID != "" {
		// Обратная ссылка платеж -> уведомление для зеркалирования статуса
		pipe.Set(ctx, keyPrefixPaymentLink+notification.PaymentID, notification.ID, 0)
	}

	_, err = pipe.Exec(ctx)
	return err
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	data, err := r.client.Get(ctx, keyPrefixNotification+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	var notification models.Notification
	if err := json.Unmarshal(data, &notification); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	return &notification, nil
}

func (r *notificationRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Notification, error) {
	id, err := r.client.Get(ctx, keyPrefixPaymentLink+paymentID).Result()
	if err == redis.Nil {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve payment link: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *notificationRepository) Update(ctx context.Context, notification *models.Notification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	return r.client.Set(ctx, keyPrefixNotification+notification.ID, data, 0).Err()
}

func (r *notificationRepository) ListAdmin(ctx context.Context) ([]*models.Notification, error) {
	return r.listByFeed(ctx, keyAdminFeed)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	return r.listByFeed(ctx, keyPrefixUserFeed+userID)
}

func (r *notificationRepository) listByFeed(ctx context.Context, feedKey string) ([]*models.Notification, error) {
	ids, err := r.client.SMembers(ctx, feedKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notification ids: %w", err)
	}

	notifications := make([]*models.Notification, 0, len(ids))
	for _, id := range ids {
		notification, err := r.GetByID(ctx, id)
		if err != nil {
			continue
		}
		notifications = append(notifications, notification)
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})

	return notifications, nil
}
