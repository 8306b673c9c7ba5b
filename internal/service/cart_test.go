package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func TestCartService_AddItemPublishesUpdate(t *testing.T) {
	env := newTestEnv(t)
	ev := new(mockEvents)
	ev.On("PublishCartUpdated", mock.Anything, "sess-1", "add", mock.MatchedBy(func(c domain.CartSummary) bool {
		return c.TotalItems == 1 && c.TotalPrice == 1000
	})).Return(nil).Once()

	svc := NewCartService(env.registry, ev, testLogger())
	summary := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: "P1", Name: "Camiseta", UnitPrice: 1000})

	assert.Equal(t, 1, summary.TotalItems)
	assert.Equal(t, int64(1000), summary.TotalPrice)
	ev.AssertExpectations(t)
}

func TestCartService_PersistsToSlot(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCartService(env.registry, permissiveEvents(), testLogger())
	ctx := context.Background()

	svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: "P1", Name: "Camiseta", UnitPrice: 1000, Color: "Rojo"})
	svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: "P1", Name: "Camiseta", UnitPrice: 1000, Color: "Rojo"})

	raw, err := env.mr.Get("cart:sess-1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"product_id":"P1","name":"Camiseta","brand":"","unit_price":1000,"image_url":"","color":"Rojo","quantity":2}]`, raw)
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCartService(env.registry, permissiveEvents(), testLogger())
	ctx := context.Background()

	svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: "P1", Name: "A", UnitPrice: 100, Size: "M"})
	svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: "P2", Name: "B", UnitPrice: 50})

	summary := svc.UpdateQuantity(ctx, "sess-1", "P1", UpdateQuantityInput{Quantity: 4, Size: "M"})
	assert.Equal(t, 5, summary.TotalItems)
	assert.Equal(t, int64(450), summary.TotalPrice)

	summary = svc.UpdateQuantity(ctx, "sess-1", "P1", UpdateQuantityInput{Quantity: -5, Size: "M"})
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "P2", summary.Items[0].ProductID)

	summary = svc.RemoveItem(ctx, "sess-1", "P2", "", "")
	assert.True(t, summary.IsEmpty())
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCartService(env.registry, permissiveEvents(), testLogger())
	ctx := context.Background()

	svc.AddItem(ctx, "a", AddItemInput{ProductID: "P1", Name: "A", UnitPrice: 100})

	assert.Equal(t, 1, svc.GetCart(ctx, "a").TotalItems)
	assert.Equal(t, 0, svc.GetCart(ctx, "b").TotalItems)
}

func TestCartService_ClearPublishesCleared(t *testing.T) {
	env := newTestEnv(t)
	ev := permissiveEvents()
	svc := NewCartService(env.registry, ev, testLogger())
	ctx := context.Background()

	svc.AddItem(ctx, "sess-1", AddItemInput{ProductID: "P1", Name: "A", UnitPrice: 100})
	summary := svc.ClearCart(ctx, "sess-1", ClearReasonExplicit)

	assert.True(t, summary.IsEmpty())
	ev.AssertCalled(t, "PublishCartCleared", mock.Anything, "sess-1", ClearReasonExplicit)
}

func TestCartService_PublishFailureIsNotSurfaced(t *testing.T) {
	env := newTestEnv(t)
	ev := new(mockEvents)
	ev.On("PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := NewCartService(env.registry, ev, testLogger())
	summary := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: "P1", Name: "A", UnitPrice: 100})
	assert.Equal(t, 1, summary.TotalItems)
}

func TestCartService_StorageDownStillServes(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCartService(env.registry, permissiveEvents(), testLogger())
	env.mr.Close()

	summary := svc.AddItem(context.Background(), "sess-1", AddItemInput{ProductID: "P1", Name: "A", UnitPrice: 100})
	assert.Equal(t, 1, summary.TotalItems)
}
