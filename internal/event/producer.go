package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicCartUpdated       = pkgkafka.Topic("cart", "updated")
	TopicCartCleared       = pkgkafka.Topic("cart", "cleared")
	TopicCheckoutConfirmed = pkgkafka.Topic("checkout", "confirmed")
)

// Aggregate types.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeCheckout = "checkout"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID  string         `json:"session_id"`
	Operation  string         `json:"operation"`
	Items      []CartItemData `json:"items"`
	TotalItems int            `json:"total_items"`
	TotalPrice int64          `json:"total_price"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// CheckoutConfirmedData is the payload for a checkout.confirmed event.
type CheckoutConfirmedData struct {
	SessionID  string         `json:"session_id"`
	Items      []CartItemData `json:"items"`
	TotalItems int            `json:"total_items"`
	TotalPrice int64          `json:"total_price"`
}

// Publisher sends one event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID, operation string, cart domain.CartSummary) error {
	data := CartUpdatedData{
		SessionID:  sessionID,
		Operation:  operation,
		Items:      itemData(cart.Items),
		TotalItems: cart.TotalItems,
		TotalPrice: cart.TotalPrice,
	}

	if err := p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeCart, data); err != nil {
		return err
	}

	logger.WithContext(ctx, p.logger).Debug("published cart.updated event",
		slog.String("operation", operation),
		slog.Int("total_items", cart.TotalItems),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID, reason string) error {
	data := CartClearedData{SessionID: sessionID, Reason: reason}
	return p.publish(ctx, TopicCartCleared, sessionID, AggregateTypeCart, data)
}

// PublishCheckoutConfirmed publishes a checkout.confirmed event.
func (p *Producer) PublishCheckoutConfirmed(ctx context.Context, sessionID string, cart domain.CartSummary) error {
	data := CheckoutConfirmedData{
		SessionID:  sessionID,
		Items:      itemData(cart.Items),
		TotalItems: cart.TotalItems,
		TotalPrice: cart.TotalPrice,
	}

	if err := p.publish(ctx, TopicCheckoutConfirmed, sessionID, AggregateTypeCheckout, data); err != nil {
		return err
	}

	logger.WithContext(ctx, p.logger).Info("published checkout.confirmed event",
		slog.Int64("total_price", cart.TotalPrice),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

func itemData(items []domain.CartLineItem) []CartItemData {
	out := make([]CartItemData, len(items))
	for i, it := range items {
		out[i] = CartItemData{
			ProductID: it.ProductID,
			Name:      it.Name,
			Color:     it.Color,
			Size:      it.Size,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		}
	}
	return out
}

// NoopPublisher drops every event. It is used when events are disabled.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }
