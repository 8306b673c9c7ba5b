package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// RouterConfig holds the tunables of the HTTP surface.
type RouterConfig struct {
	RequestTimeout time.Duration
	CORS           middleware.CORSConfig

	// RateLimitRPS disables rate limiting when zero.
	RateLimitRPS   float64
	RateLimitBurst int

	// ProductMaxAge is the browser cache lifetime of catalog responses.
	ProductMaxAge time.Duration
}

// Services groups the application services behind the router.
type Services struct {
	Products *service.ProductService
	Carts    *service.CartService
	Checkout *service.CheckoutService
}

// NewRouter creates a chi router with all storefront routes registered.
// Background work started by the router (rate limiter eviction) stops when
// ctx is done.
func NewRouter(
	ctx context.Context,
	cfg RouterConfig,
	svc Services,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	productHandler := NewProductHandler(svc.Products, logger)
	cartHandler := NewCartHandler(svc.Carts, logger)
	checkoutHandler := NewCheckoutHandler(svc.Checkout, logger)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		}
		r.Use(ContentTypeJSON)

		r.Route("/products", func(r chi.Router) {
			if cfg.ProductMaxAge > 0 {
				r.Use(middleware.CacheControl(cfg.ProductMaxAge))
			}

			r.Get("/", productHandler.ListProducts)
			r.Get("/{id}", productHandler.GetProduct)
			r.Get("/{id}/detail", productHandler.GetDetail)
			r.Post("/{id}/selection", productHandler.ApplySelection)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(middleware.RequireSession)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)

				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{productId}", cartHandler.UpdateQuantity)
				r.Delete("/items/{productId}", cartHandler.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkoutHandler.GetCheckout)
				r.Post("/{action}", checkoutHandler.Apply)
			})
		})
	})

	return r
}
