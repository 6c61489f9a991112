package repository

import (
	"context"

	"trading-portal-backend/internal/features/payment/models"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	ListByUser(ctx context.Context, userID string) ([]*models.Payment, error)
	ListPending(ctx context.Context) ([]*models.Payment, error)
}
