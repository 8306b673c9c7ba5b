package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const cartKeyPrefix = "cart:"

// CartSlotRepository implements repository.CartSlotRepository using Redis.
// The value is the bare JSON array of line items with no version tag.
type CartSlotRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCartSlotRepository creates a new Redis-backed cart slot repository.
func NewCartSlotRepository(client redis.UniversalClient, ttl time.Duration) *CartSlotRepository {
	return &CartSlotRepository{
		client: client,
		ttl:    ttl,
	}
}

// Load reads the session's cart slot.
func (r *CartSlotRepository) Load(ctx context.Context, sessionID string) ([]domain.CartLineItem, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart", sessionID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var items []domain.CartLineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w: %w", repository.ErrCorruptSlot, err)
	}

	return items, nil
}

// Save writes the full sequence with the configured TTL.
func (r *CartSlotRepository) Save(ctx context.Context, sessionID string, items []domain.CartLineItem) error {
	if items == nil {
		items = []domain.CartLineItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, cartKeyPrefix+sessionID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Delete removes the session's cart slot.
func (r *CartSlotRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cartKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
