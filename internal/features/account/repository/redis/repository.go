package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"trading-portal-backend/internal/features/account/models"
	"trading-portal-backend/internal/features/account/repository"
)

const (
	keyPrefixAccount = "account:"
	keyPrefixOwner   = "user:accounts:"
)

var ErrAccountNotFound = fmt.Errorf("account not found")

type accountRepository struct {
	client *redis.Client
}

func NewAccountRepository(client *redis.Client) repository.AccountRepository {
	return &accountRepository{client: client}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, keyPrefixAccount+account.ID, data, 0)
	pipe.SAdd(ctx, keyPrefixOwner+account.UserID, account.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	data, err := r.client.Get(ctx, keyPrefixAccount+id).Bytes()
	if err == redis.Nil {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	var account models.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	return r.client.Set(ctx, keyPrefixAccount+account.ID, data, 0).Err()
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	account, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, keyPrefixAccount+id)
	pipe.SRem(ctx, keyPrefixOwner+account.UserID, id)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *accountRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Account, error) {
	ids, err := r.client.SMembers(ctx, keyPrefixOwner+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list account ids: %w", err)
	}

	accounts := make([]*models.Account, 0, len(ids))
	for _, id := range ids {
		account, err := r.GetByID(ctx, id)
		if err != nil {
			continue
		}
		accounts = append(accounts, account)
	}

	// Новые счета первыми
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})

	return accounts, nil
}

func (r *accountRepository) CountByOwner(ctx context.Context, userID string) (int, error) {
	count, err := r.client.SCard(ctx, keyPrefixOwner+userID).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return int(count), nil
}
