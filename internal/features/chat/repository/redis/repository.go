package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"trading-portal-backend/internal/features/chat/models"
	"trading-portal-backend/internal/features/chat/repository"
)

const (
	keyPrefixMessage = "chat:message:"
	keyPrefixThread  = "chat:thread:"
	// Пользователи с непрочитанными администратором сообщениями
	keyUnreadForAdmin = "chat:unread:admin"
)

type chatRepository struct {
	client *redis.Client
}

func NewChatRepository(client *redis.Client) repository.ChatRepository {
	return &chatRepository{client: client}
}

func (r *chatRepository) Create(ctx context.Context, message *models.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, keyPrefixMessage+message.ID, data, 0)
	pipe.SAdd(ctx, keyPrefixThread+message.UserID, message.ID)
	if message.SenderRole == models.RoleUser {
		pipe.SAdd(ctx, keyUnreadForAdmin, message.UserID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *chatRepository) ListThread(ctx context.Context, userID string) ([]*models.Message, error) {
	ids, err := r.client.SMembers(ctx, keyPrefixThread+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list thread: %w", err)
	}

	messages := make([]*models.Message, 0, len(ids))
	for _, id := range ids {
		data, err := r.client.Get(ctx, keyPrefixMessage+id).Bytes()
		if err != nil {
			continue
		}

		var message models.Message
		if err := json.Unmarshal(data, &message); err != nil {
			continue
		}
		messages = append(messages, &message)
	}

	// Сообщения упорядочены по времени создания
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	return messages, nil
}

// MarkThreadRead помечает прочитанными сообщения треда, отправленные
// стороной from
func (r *chatRepository) MarkThreadRead(ctx context.Context, userID string, from models.SenderRole) error {
	messages, err := r.ListThread(ctx, userID)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	for _, message := range messages {
		if message.SenderRole != from || message.Read {
			continue
		}

		message.Read = true
		data, err := json.Marshal(message)
		if err != nil {
			continue
		}
		pipe.Set(ctx, keyPrefixMessage+message.ID, data, 0)
	}

	if from == models.RoleUser {
		pipe.SRem(ctx, keyUnreadForAdmin, userID)
	}

	_, err = pipe.Exec(ctx)
	return err
}

func (r *chatRepository) UnreadThreads(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, keyUnreadForAdmin).Result()
}
