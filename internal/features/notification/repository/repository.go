package repository

import (
	"context"

	"trading-portal-backend/internal/features/notification/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Notification, error)
	Update(ctx context.Context, notification *models.Notification) error
	ListAdmin(ctx context.Context) ([]*models.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Notification, error)
}
