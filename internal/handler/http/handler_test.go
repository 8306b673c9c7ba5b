package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ============================================================================
// Mock Catalog
// ============================================================================

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) FetchProducts(ctx context.Context, f catalog.Filter) ([]domain.ProductDisplay, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductDisplay), args.Error(1)
}

func (m *mockCatalog) FetchProduct(ctx context.Context, id string) (*domain.ProductDisplay, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductDisplay), args.Error(1)
}

func (m *mockCatalog) FetchProductDetail(ctx context.Context, id string) (*domain.ProductDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductDetail), args.Error(1)
}

// ============================================================================
// Test helpers
// ============================================================================

const testSession = "sess-123"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testServer struct {
	handler http.Handler
	catalog *mockCatalog
	mr      *miniredis.Miniredis
}

// newTestServer builds the production router over miniredis-backed cart and
// checkout state and a mocked catalog.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := testLogger()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	registry := cart.NewRegistry(redisrepo.NewCartSlotRepository(rdb, time.Hour), time.Minute, logger)
	events := event.NewProducer(event.NoopPublisher{}, logger)
	carts := service.NewCartService(registry, events, logger)

	cat := new(mockCatalog)
	svc := Services{
		Products: service.NewProductService(cat, logger),
		Carts:    carts,
		Checkout: service.NewCheckoutService(redisrepo.NewCheckoutStepRepository(rdb, time.Hour), carts, events, logger),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := RouterConfig{
		RequestTimeout: 5 * time.Second,
		CORS:           middleware.DefaultCORSConfig(),
		ProductMaxAge:  time.Minute,
	}
	return &testServer{
		handler: NewRouter(ctx, cfg, svc, health.NewHandler(), logger),
		catalog: cat,
		mr:      mr,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, session string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope[T any] struct {
	Data  T                       `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

// decodeResponse reads the response body into the standard envelope with a
// typed data payload.
func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var resp envelope[T]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func sampleDetail() *domain.ProductDetail {
	return &domain.ProductDetail{
		ID:    "125",
		Name:  "Camiseta",
		Brand: "Vélez",
		Items: []domain.ProductItem{
			{
				ID:         "sku-rojo-m",
				Images:     []string{"rojo.jpg"},
				Dimensions: map[string][]string{"Color": {"Rojo"}, "Talla": {"M"}},
				Offers:     []domain.Offer{{Price: 1000, ListPrice: 1500, IsAvailable: true}},
			},
			{
				ID:         "sku-azul-l",
				Images:     []string{"azul.jpg"},
				Dimensions: map[string][]string{"Color": {"Azul"}, "Talla": {"L"}},
				Offers:     []domain.Offer{{Price: 1200, ListPrice: 1200, IsAvailable: true}},
			},
		},
	}
}
