package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
)

const checkoutKeyPrefix = "checkout:"

// CheckoutStepRepository implements repository.CheckoutStepRepository using Redis.
type CheckoutStepRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCheckoutStepRepository creates a new Redis-backed step repository.
func NewCheckoutStepRepository(client redis.UniversalClient, ttl time.Duration) *CheckoutStepRepository {
	return &CheckoutStepRepository{
		client: client,
		ttl:    ttl,
	}
}

// GetStep returns the stored step. Missing or unrecognized values read as closed.
func (r *CheckoutStepRepository) GetStep(ctx context.Context, sessionID string) (domain.Step, error) {
	val, err := r.client.Get(ctx, checkoutKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.StepClosed, nil
		}
		return domain.StepClosed, fmt.Errorf("redis get checkout step: %w", err)
	}
	return domain.ParseStep(val), nil
}

// SetStep stores the step. Closed is stored as a key deletion.
func (r *CheckoutStepRepository) SetStep(ctx context.Context, sessionID string, step domain.Step) error {
	key := checkoutKeyPrefix + sessionID

	if step == domain.StepClosed {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis del checkout step: %w", err)
		}
		return nil
	}

	if err := r.client.Set(ctx, key, string(step), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set checkout step: %w", err)
	}
	return nil
}
