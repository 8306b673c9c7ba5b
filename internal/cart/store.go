// Package cart holds the in-memory cart of a shopper session together with
// its durable mirror.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// Slot is the durable storage behind a Store.
type Slot interface {
	Load(ctx context.Context, sessionID string) ([]domain.CartLineItem, error)
	Save(ctx context.Context, sessionID string, items []domain.CartLineItem) error
}

// NewLineItem is what a caller supplies to AddItem. Quantity is never taken
// from the caller; a new line always starts at 1.
type NewLineItem struct {
	ProductID         string
	Name              string
	Brand             string
	UnitPrice         int64
	OriginalUnitPrice int64
	ImageURL          string
	Color             string
	Size              string
}

// Store is the cart of one session. Operations never fail from the caller's
// point of view: storage problems are logged and the in-memory state wins.
//
// Mutations made before Load completes stay in memory and are not written,
// so an empty pre-load state can never overwrite a stored cart. A later
// successful load replaces them with the stored lines.
type Store struct {
	mu        sync.Mutex
	slot      Slot
	sessionID string
	logger    *slog.Logger

	items  []domain.CartLineItem
	loaded bool
}

// NewStore creates an unloaded store for sessionID.
func NewStore(slot Slot, sessionID string, logger *slog.Logger) *Store {
	return &Store{
		slot:      slot,
		sessionID: sessionID,
		logger:    logger,
	}
}

// Load reads the slot until it succeeds. Later calls are no-ops. A missing or
// undecodable slot is an empty cart. Any other failure (cancellation, timeout,
// outage) is logged and leaves the store unloaded so the next call retries.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return
	}

	items, err := s.slot.Load(ctx, s.sessionID)
	switch {
	case err == nil:
		s.items = items
	case errors.Is(err, apperrors.ErrNotFound):
		s.items = nil
	case errors.Is(err, repository.ErrCorruptSlot):
		storageFailures.WithLabelValues("load").Inc()
		s.log(ctx).Warn("cart storage slot is corrupt, starting empty",
			slog.String("error", err.Error()),
		)
		s.items = nil
	default:
		storageFailures.WithLabelValues("load").Inc()
		s.log(ctx).Warn("cart storage load failed, will retry",
			slog.String("error", err.Error()),
		)
		return
	}
	s.loaded = true
}

// Loaded reports whether Load has completed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// AddItem increments the quantity of the line identified by
// (ProductID, Color, Size), or appends a new line with quantity 1.
func (s *Store) AddItem(ctx context.Context, item NewLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ProductID, item.Color, item.Size); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, domain.CartLineItem{
			ProductID:         item.ProductID,
			Name:              item.Name,
			Brand:             item.Brand,
			UnitPrice:         item.UnitPrice,
			OriginalUnitPrice: item.OriginalUnitPrice,
			ImageURL:          item.ImageURL,
			Color:             item.Color,
			Size:              item.Size,
			Quantity:          1,
		})
	}

	cartOperations.WithLabelValues("add").Inc()
	s.persist(ctx)
}

// RemoveItem deletes the line matching the triple exactly. No match is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID, color, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(productID, color, size)
	cartOperations.WithLabelValues("remove").Inc()
	s.persist(ctx)
}

// UpdateQuantity sets the matching line's quantity. A quantity of zero or
// less removes the line. No match is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int, color, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.remove(productID, color, size)
	} else if i := s.indexOf(productID, color, size); i >= 0 {
		s.items[i].Quantity = quantity
	}

	cartOperations.WithLabelValues("update").Inc()
	s.persist(ctx)
}

// Clear empties the cart unconditionally.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	cartOperations.WithLabelValues("clear").Inc()
	s.persist(ctx)
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems is the sum of all quantities.
func (s *Store) TotalItems() int {
	return s.Summary().TotalItems
}

// TotalPrice is the sum of UnitPrice times Quantity.
func (s *Store) TotalPrice() int64 {
	return s.Summary().TotalPrice
}

// Summary returns the items together with their derived totals.
func (s *Store) Summary() domain.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Summarize(s.items)
}

func (s *Store) indexOf(productID, color, size string) int {
	for i := range s.items {
		if s.items[i].Matches(productID, color, size) {
			return i
		}
	}
	return -1
}

func (s *Store) remove(productID, color, size string) {
	if i := s.indexOf(productID, color, size); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) {
	if !s.loaded {
		return
	}

	snapshot := make([]domain.CartLineItem, len(s.items))
	copy(snapshot, s.items)

	if err := s.slot.Save(ctx, s.sessionID, snapshot); err != nil {
		storageFailures.WithLabelValues("persist").Inc()
		s.log(ctx).Error("cart storage persist failed",
			slog.String("error", err.Error()),
			slog.Int("items", len(snapshot)),
		)
	}
}

func (s *Store) log(ctx context.Context) *slog.Logger {
	l := logger.WithContext(ctx, s.logger)
	if logger.SessionIDFromContext(ctx) == "" {
		l = l.With(slog.String("session_id", s.sessionID))
	}
	return l
}
