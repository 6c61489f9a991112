package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"trading-portal-backend/internal/features/payment/models"
	"trading-portal-backend/internal/features/payment/repository"
)

const (
	keyPrefixPayment = "payment:"
	keyPrefixByUser  = "user:payments:"
	keyPendingSet    = "payments:pending"
)

var ErrPaymentNotFound = fmt.Errorf("payment not found")

type paymentRepository struct {
	client *redis.Client
}

func NewPaymentRepository(client *redis.Client) repository.PaymentRepository {
	return &paymentRepository{client: client}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	data, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, keyPrefixPayment+payment.ID, data, 0)
	pipe.SAdd(ctx, keyPrefixByUser+payment.UserID, payment.ID)
	if payment.Status == models.StatusPending {
		pipe.SAdd(ctx, keyPendingSet, payment.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	data, err := r.client.Get(ctx, keyPrefixPayment+id).Bytes()
	if err == redis.Nil {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	var payment models.Payment
	if err := json.Unmarshal(data, &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	data, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, keyPrefixPayment+payment.ID, data, 0)
	if payment.Status.Terminal() {
		pipe.SRem(ctx, keyPendingSet, payment.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	ids, err := r.client.SMembers(ctx, keyPrefixByUser+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list payment ids: %w", err)
	}

	return r.collect(ctx, ids)
}

func (r *paymentRepository) ListPending(ctx context.Context) ([]*models.Payment, error) {
	ids, err := r.client.SMembers(ctx, keyPendingSet).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}

	return r.collect(ctx, ids)
}

func (r *paymentRepository) collect(ctx context.Context, ids []string) ([]*models.Payment, error) {
	payments := make([]*models.Payment, 0, len(ids))
	for _, id := range ids {
		payment, err := r.GetByID(ctx, id)
		if err != nil {
			continue
		}
		payments = append(payments, payment)
	}

	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})

	return payments, nil
}
