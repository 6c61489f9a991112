package repository

import (
	"context"

	"trading-portal-backend/internal/features/chat/models"
)

type ChatRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListThread(ctx context.Context, userID string) ([]*models.Message, error)
	MarkThreadRead(ctx context.Context, userID string, from models.SenderRole) error
	UnreadThreads(ctx context.Context) ([]string, error)
}
