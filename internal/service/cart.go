package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/logger"
)

// Reasons attached to cart.cleared events.
const (
	ClearReasonExplicit = "explicit"
	ClearReasonCheckout = "checkout_finished"
)

// AddItemInput holds the parameters for adding a product to the cart. There
// is no quantity: every add counts one unit.
type AddItemInput struct {
	ProductID         string `json:"product_id" validate:"required,max=128"`
	Name              string `json:"name" validate:"required,max=256"`
	Brand             string `json:"brand" validate:"max=128"`
	UnitPrice         int64  `json:"unit_price" validate:"gte=0"`
	OriginalUnitPrice int64  `json:"original_unit_price" validate:"gte=0"`
	ImageURL          string `json:"image_url" validate:"max=2048"`
	Color             string `json:"color" validate:"max=64"`
	Size              string `json:"size" validate:"max=64"`
}

// UpdateQuantityInput holds the parameters for setting a line quantity. A
// quantity of zero or less removes the line.
type UpdateQuantityInput struct {
	Quantity int    `json:"quantity"`
	Color    string `json:"color" validate:"max=64"`
	Size     string `json:"size" validate:"max=64"`
}

// EventPublisher publishes storefront domain events.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, sessionID, operation string, cart domain.CartSummary) error
	PublishCartCleared(ctx context.Context, sessionID, reason string) error
	PublishCheckoutConfirmed(ctx context.Context, sessionID string, cart domain.CartSummary) error
}

// CartStores hands out the cart store of a session.
type CartStores interface {
	Get(ctx context.Context, sessionID string) *cart.Store
}

// CartService exposes the cart of a session. None of its operations fail:
// storage problems are handled inside the store and event publishing is
// best effort.
type CartService struct {
	stores CartStores
	events EventPublisher
	logger *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(stores CartStores, events EventPublisher, logger *slog.Logger) *CartService {
	return &CartService{
		stores: stores,
		events: events,
		logger: logger,
	}
}

// GetCart returns the session's items and totals.
func (s *CartService) GetCart(ctx context.Context, sessionID string) domain.CartSummary {
	return s.stores.Get(ctx, sessionID).Summary()
}

// AddItem adds one unit of the product variant.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) domain.CartSummary {
	store := s.stores.Get(ctx, sessionID)
	store.AddItem(ctx, cart.NewLineItem{
		ProductID:         input.ProductID,
		Name:              input.Name,
		Brand:             input.Brand,
		UnitPrice:         input.UnitPrice,
		OriginalUnitPrice: input.OriginalUnitPrice,
		ImageURL:          input.ImageURL,
		Color:             input.Color,
		Size:              input.Size,
	})
	return s.updated(ctx, sessionID, "add", store)
}

// UpdateQuantity sets the quantity of the line identified by the triple.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, input UpdateQuantityInput) domain.CartSummary {
	store := s.stores.Get(ctx, sessionID)
	store.UpdateQuantity(ctx, productID, input.Quantity, input.Color, input.Size)
	return s.updated(ctx, sessionID, "update", store)
}

// RemoveItem deletes the line identified by the triple.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID, color, size string) domain.CartSummary {
	store := s.stores.Get(ctx, sessionID)
	store.RemoveItem(ctx, productID, color, size)
	return s.updated(ctx, sessionID, "remove", store)
}

// ClearCart empties the session's cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID, reason string) domain.CartSummary {
	store := s.stores.Get(ctx, sessionID)
	store.Clear(ctx)

	if err := s.events.PublishCartCleared(ctx, sessionID, reason); err != nil {
		s.warnPublish(ctx, "cart.cleared", err)
	}
	return store.Summary()
}

func (s *CartService) updated(ctx context.Context, sessionID, operation string, store *cart.Store) domain.CartSummary {
	summary := store.Summary()
	if err := s.events.PublishCartUpdated(ctx, sessionID, operation, summary); err != nil {
		s.warnPublish(ctx, "cart.updated", err)
	}
	return summary
}

func (s *CartService) warnPublish(ctx context.Context, event string, err error) {
	logger.WithContext(ctx, s.logger).Warn("failed to publish event",
		slog.String("event", event),
		slog.String("error", err.Error()),
	)
}
