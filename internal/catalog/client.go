// Package catalog talks to the remote product catalog and translates its
// responses into the storefront's product shapes.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
)

const (
	upstreamName = "catalog"
	tracerName   = "storefront/catalog"

	cachePrefixList    = "list:"
	cachePrefixSearch  = "search:"
	cachePrefixDetail  = "detail:"
	cachePrefixProduct = "product:"

	maxBodyBytes = 8 << 20
)

var (
	// ErrCatalogUnavailable means the catalog could not be reached or failed.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrProductNotFound means the catalog has no product with the given id.
	ErrProductNotFound = errors.New("product not found")
)

// Config holds catalog client settings.
type Config struct {
	BaseURL   string
	ListTTL   time.Duration
	SearchTTL time.Duration
	DetailTTL time.Duration
}

// Client fetches and normalizes catalog data. The cache is optional.
type Client struct {
	doer    httpclient.Doer
	cache   repository.CatalogCache
	baseURL string
	cfg     Config
	logger  *slog.Logger
}

// NewClient creates a catalog client. cache may be nil.
func NewClient(doer httpclient.Doer, cache repository.CatalogCache, cfg Config, logger *slog.Logger) *Client {
	return &Client{
		doer:    doer,
		cache:   cache,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
		logger:  logger,
	}
}

// FetchProducts returns the normalized listing for f. Search terms shorter
// than MinSearchLength are ignored.
func (c *Client) FetchProducts(ctx context.Context, f Filter) ([]domain.ProductDisplay, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f = f.normalized()

	ttl := c.cfg.ListTTL
	kind := "list"
	if f.IsSearch() {
		ttl = c.cfg.SearchTTL
		kind = "search"
	}

	var products []domain.ProductDisplay
	if c.cacheGet(ctx, kind, f.cacheKey(), &products) {
		return products, nil
	}

	products, err := c.fetchList(ctx, f.Query())
	if err != nil {
		return nil, err
	}

	c.cacheSet(ctx, f.cacheKey(), products, ttl)
	return products, nil
}

// FetchProduct looks a product up by searching for its id and keeping the
// entry whose id matches exactly.
func (c *Client) FetchProduct(ctx context.Context, id string) (*domain.ProductDisplay, error) {
	var cached domain.ProductDisplay
	if c.cacheGet(ctx, "product", cachePrefixProduct+id, &cached) {
		return &cached, nil
	}

	products, err := c.fetchList(ctx, url.Values{"search": []string{id}})
	if err != nil {
		return nil, err
	}

	for i := range products {
		if products[i].ID == id {
			c.cacheSet(ctx, cachePrefixProduct+id, products[i], c.cfg.ListTTL)
			return &products[i], nil
		}
	}
	return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
}

// FetchProductDetail returns the full record of a product. The catalog
// answers with an array whose first element is the product.
func (c *Client) FetchProductDetail(ctx context.Context, id string) (*domain.ProductDetail, error) {
	var cached domain.ProductDetail
	if c.cacheGet(ctx, "detail", cachePrefixDetail+id, &cached) {
		return &cached, nil
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "catalog.FetchProductDetail",
		attribute.String("catalog.product_id", id),
	)
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	var body []byte
	body, err = c.get(ctx, "detail", c.baseURL+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var records []upstreamDetail
	if err = json.Unmarshal(body, &records); err != nil {
		err = fmt.Errorf("decode product detail %s: %w", id, err)
		return nil, err
	}
	if len(records) == 0 {
		err = fmt.Errorf("product %s: %w", id, ErrProductNotFound)
		return nil, err
	}

	detail := toDetail(records[0])
	c.cacheSet(ctx, cachePrefixDetail+id, detail, c.cfg.DetailTTL)
	return &detail, nil
}

// Invalidate drops cached entries for productID, or everything when
// productID is empty. Listings are always dropped since any product change
// can alter them.
func (c *Client) Invalidate(ctx context.Context, productID string) (int, error) {
	if c.cache == nil {
		return 0, nil
	}

	prefixes := []string{""}
	if productID != "" {
		prefixes = []string{
			cachePrefixDetail + productID,
			cachePrefixProduct + productID,
			cachePrefixList,
			cachePrefixSearch,
		}
	}

	total := 0
	for _, p := range prefixes {
		n, err := c.cache.Invalidate(ctx, p)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (c *Client) fetchList(ctx context.Context, q url.Values) ([]domain.ProductDisplay, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "catalog.FetchProducts",
		attribute.String("catalog.query", q.Encode()),
	)
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	target := c.baseURL
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}

	var body []byte
	body, err = c.get(ctx, "list", target)
	if err != nil {
		return nil, err
	}

	var raw []upstreamProduct
	var shape listShape
	raw, shape, err = decodeList(body)
	listShapes.WithLabelValues(shape.String()).Inc()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("catalog.shape", shape.String()),
		attribute.Int("catalog.results", len(raw)),
	)

	products := make([]domain.ProductDisplay, 0, len(raw))
	for _, p := range raw {
		products = append(products, toDisplay(p))
	}
	return products, nil
}

// get performs a GET and returns the body of a 2xx response. Transport
// failures and 5xx map to ErrCatalogUnavailable, 404 to ErrProductNotFound.
func (c *Client) get(ctx context.Context, op, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		upstreamRequests.WithLabelValues(op, "unavailable").Inc()
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if err := httpclient.CheckResponse(resp, upstreamName); err != nil {
		switch {
		case httpclient.IsNotFound(err):
			upstreamRequests.WithLabelValues(op, "not_found").Inc()
			return nil, fmt.Errorf("%w: %w", ErrProductNotFound, err)
		case httpclient.IsUnavailable(err):
			upstreamRequests.WithLabelValues(op, "unavailable").Inc()
			return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
		default:
			upstreamRequests.WithLabelValues(op, "rejected").Inc()
			return nil, fmt.Errorf("catalog %s: %w", op, err)
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		upstreamRequests.WithLabelValues(op, "unavailable").Inc()
		return nil, fmt.Errorf("%w: read body: %w", ErrCatalogUnavailable, err)
	}

	upstreamRequests.WithLabelValues(op, "ok").Inc()
	return body, nil
}

func (c *Client) cacheGet(ctx context.Context, kind, key string, dst any) bool {
	if c.cache == nil {
		return false
	}

	hit, err := c.cache.Get(ctx, key, dst)
	if err != nil {
		cacheLookups.WithLabelValues(kind, "error").Inc()
		logger.WithContext(ctx, c.logger).Warn("catalog cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	if hit {
		cacheLookups.WithLabelValues(kind, "hit").Inc()
	} else {
		cacheLookups.WithLabelValues(kind, "miss").Inc()
	}
	return hit
}

func (c *Client) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.cache == nil || ttl <= 0 {
		return
	}

	if err := c.cache.Set(ctx, key, value, ttl); err != nil {
		logger.WithContext(ctx, c.logger).Warn("catalog cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
