package repository

import (
	"context"
	"errors"
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// ErrCorruptSlot is returned when a stored value exists but cannot be decoded.
var ErrCorruptSlot = errors.New("stored value is corrupt")

// CartSlotRepository persists the ordered line items of one session's cart.
type CartSlotRepository interface {
	// Load returns the stored sequence. A missing slot yields a NOT_FOUND
	// AppError; an undecodable slot yields an error wrapping ErrCorruptSlot.
	Load(ctx context.Context, sessionID string) ([]domain.CartLineItem, error)

	// Save overwrites the slot with the full sequence.
	Save(ctx context.Context, sessionID string, items []domain.CartLineItem) error

	// Delete removes the slot.
	Delete(ctx context.Context, sessionID string) error
}

// CheckoutStepRepository persists the current checkout step of a session.
type CheckoutStepRepository interface {
	// GetStep returns StepClosed when nothing is stored.
	GetStep(ctx context.Context, sessionID string) (domain.Step, error)
	SetStep(ctx context.Context, sessionID string, step domain.Step) error
}

// CatalogCache stores normalized catalog responses.
type CatalogCache interface {
	// Get decodes the cached value for key into dst. It reports false on a
	// cache miss.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Invalidate drops every cached entry whose key starts with prefix and
	// returns how many were removed.
	Invalidate(ctx context.Context, prefix string) (int, error)
}
