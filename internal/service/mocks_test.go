package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
)

// ---------------------------------------------------------------------------
// Mock EventPublisher
// ---------------------------------------------------------------------------

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishCartUpdated(ctx context.Context, sessionID, operation string, c domain.CartSummary) error {
	args := m.Called(ctx, sessionID, operation, c)
	return args.Error(0)
}

func (m *mockEvents) PublishCartCleared(ctx context.Context, sessionID, reason string) error {
	args := m.Called(ctx, sessionID, reason)
	return args.Error(0)
}

func (m *mockEvents) PublishCheckoutConfirmed(ctx context.Context, sessionID string, c domain.CartSummary) error {
	args := m.Called(ctx, sessionID, c)
	return args.Error(0)
}

func permissiveEvents() *mockEvents {
	ev := new(mockEvents)
	ev.On("PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ev.On("PublishCartCleared", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ev.On("PublishCheckoutConfirmed", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return ev
}

// ---------------------------------------------------------------------------
// Mock Catalog
// ---------------------------------------------------------------------------

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) FetchProducts(ctx context.Context, f catalog.Filter) ([]domain.ProductDisplay, error) {
	args := m.Called(ctx, f)
	if v := args.Get(0); v != nil {
		return v.([]domain.ProductDisplay), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalog) FetchProduct(ctx context.Context, id string) (*domain.ProductDisplay, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.ProductDisplay), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCatalog) FetchProductDetail(ctx context.Context, id string) (*domain.ProductDetail, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.ProductDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

// ---------------------------------------------------------------------------
// Mock CheckoutStepRepository
// ---------------------------------------------------------------------------

type mockSteps struct {
	mock.Mock
}

func (m *mockSteps) GetStep(ctx context.Context, sessionID string) (domain.Step, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.Step), args.Error(1)
}

func (m *mockSteps) SetStep(ctx context.Context, sessionID string, step domain.Step) error {
	args := m.Called(ctx, sessionID, step)
	return args.Error(0)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
}

type testEnv struct {
	mr       *miniredis.Miniredis
	registry *cart.Registry
	steps    *redisrepo.CheckoutStepRepository
}

// newTestEnv wires real Redis-backed stores against miniredis.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	slots := redisrepo.NewCartSlotRepository(rdb, time.Hour)
	return &testEnv{
		mr:       mr,
		registry: cart.NewRegistry(slots, time.Minute, testLogger()),
		steps:    redisrepo.NewCheckoutStepRepository(rdb, time.Hour),
	}
}

func sampleDetail() *domain.ProductDetail {
	offer := func(price, list int64, available bool, msg string) []domain.Offer {
		return []domain.Offer{{SellerID: "1", SellerName: "Vélez", Price: price, ListPrice: list, IsAvailable: available, AvailableQuantity: 3, InfoMessage: msg}}
	}
	return &domain.ProductDetail{
		ID:    "125",
		Name:  "Camiseta",
		Brand: "Vélez",
		Items: []domain.ProductItem{
			{ID: "sku-rojo-m", Images: []string{"rojo-1.jpg", "rojo-2.jpg"}, Dimensions: map[string][]string{"Color": {"Rojo"}, "Talla": {"M"}}, Offers: offer(1000, 1500, true, "")},
			{ID: "sku-azul-l", Images: []string{"azul.jpg"}, Dimensions: map[string][]string{"Color": {"Azul"}, "Talla": {"L"}}, Offers: offer(1200, 1200, false, "Producto agotado")},
		},
		SKUSpecifications: []domain.VariantDimension{
			{Name: "Color", Position: 0, Values: []domain.VariantValue{{Name: "Rojo"}, {Name: "Azul", Position: 1}}},
			{Name: "Talla", Position: 1, Values: []domain.VariantValue{{Name: "M"}, {Name: "L", Position: 1}}},
		},
		Specifications: []domain.Specification{{Label: "Marca", Value: "Vélez"}},
	}
}
