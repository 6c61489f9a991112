package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trading-portal-backend/internal/features/auth/models"
	"trading-portal-backend/internal/features/auth/repository"
)

const (
	keyPrefixUser  = "user:"
	keyPrefixEmail = "user:email:"
)

var ErrUserNotFound = fmt.Errorf("user not found")

type userRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) repository.UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, keyPrefixUser+user.ID, data, 0)
	// Вторичный индекс: email -> id
	pipe.Set(ctx, keyPrefixEmail+user.Email, user.ID, 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	data, err := r.client.Get(ctx, keyPrefixUser+id).Bytes()
	if err == redis.Nil {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	id, err := r.client.Get(ctx, keyPrefixEmail+email).Result()
	if err == redis.Nil {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve email index: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	return r.client.Set(ctx, keyPrefixUser+user.ID, data, 0).Err()
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, keyPrefixUser+id)
	pipe.Del(ctx, keyPrefixEmail+user.Email)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	iter := r.client.Scan(ctx, 0, keyPrefixUser+"*", 0).Iterator()

	for iter.Next(ctx) {
		key := iter.Val()

		data, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}

		var user models.User
		if err := json.Unmarshal(data, &user); err != nil {
			// Ключи индекса email хранят голый id и сюда тоже попадают
			continue
		}
		if user.ID == "" {
			continue
		}

		users = append(users, &user)
	}

	return users, iter.Err()
}
