package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"trading-portal-backend/internal/common/validation"
	"trading-portal-backend/internal/features/chat/models"
	"trading-portal-backend/internal/features/chat/repository"
)

type ChatService interface {
	SendFromUser(ctx context.Context, userID, text string) (*models.Message, error)
	SendFromAdmin(ctx context.Context, adminID, userID, text string) (*models.Message, error)
	UserMessages(ctx context.Context, userID string) ([]*models.Message, error)
	AdminMessages(ctx context.Context, userID string) ([]*models.Message, error)
	UnreadUsers(ctx context.Context) ([]string, error)
}

type chatService struct {
	repo repository.ChatRepository
}

func NewChatService(repo repository.ChatRepository) ChatService {
	return &chatService{repo: repo}
}

func (s *chatService) SendFromUser(ctx context.Context, userID, text string) (*models.Message, error) {
	return s.send(ctx, userID, userID, models.RoleUser, text)
}

func (s *chatService) SendFromAdmin(ctx context.Context, adminID, userID, text string) (*models.Message, error) {
	return s.send(ctx, userID, adminID, models.RoleAdmin, text)
}

// UserMessages возвращает тред пользователя и помечает прочитанными
// сообщения админа
func (s *chatService) UserMessages(ctx context.Context, userID string) ([]*models.Message, error) {
	messages, err := s.repo.ListThread(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkThreadRead(ctx, userID, models.RoleAdmin); err != nil {
		return messages, nil
	}

	return messages, nil
}

// AdminMessages возвращает тред и помечает прочитанными сообщения
// пользователя
func (s *chatService) AdminMessages(ctx context.Context, userID string) ([]*models.Message, error) {
	messages, err := s.repo.ListThread(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkThreadRead(ctx, userID, models.RoleUser); err != nil {
		return messages, nil
	}

	return messages, nil
}

func (s *chatService) UnreadUsers(ctx context.Context) ([]string, error) {
	return s.repo.UnreadThreads(ctx)
}

func (s *chatService) send(ctx context.Context, userID, senderID string, role models.SenderRole, text string) (*models.Message, error) {
	if err := validation.ValidateMessage(text); err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:         uuid.New().String(),
		UserID:     userID,
		SenderID:   senderID,
		SenderRole: role,
		Text:       strings.TrimSpace(text),
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}
