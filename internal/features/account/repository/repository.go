package repository

import (
	"context"

	"trading-portal-backend/internal/features/account/models"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, userID string) ([]*models.Account, error)
	CountByOwner(ctx context.Context, userID string) (int, error)
}
