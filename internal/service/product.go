package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/variant"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// VariantErrorDismissMS is how long a rejected variant choice message stays
// on screen before the client reverts to the prior selection.
const VariantErrorDismissMS = 3000

// Error codes returned for product operations.
const (
	CodeCatalogUnavailable      = "CATALOG_UNAVAILABLE"
	CodeUnknownVariantValue     = "UNKNOWN_VARIANT_VALUE"
	CodeIncompatibleCombination = "INCOMPATIBLE_COMBINATION"
)

// Catalog reads products from the remote catalog.
type Catalog interface {
	FetchProducts(ctx context.Context, f catalog.Filter) ([]domain.ProductDisplay, error)
	FetchProduct(ctx context.Context, id string) (*domain.ProductDisplay, error)
	FetchProductDetail(ctx context.Context, id string) (*domain.ProductDetail, error)
}

// SelectionInput is a variant choice made on the detail view.
type SelectionInput struct {
	Selection domain.Selection `json:"selection"`
	Dimension string           `json:"dimension" validate:"required,max=64"`
	Value     string           `json:"value" validate:"required,max=128"`
}

// OfferView is the price and availability block of the current item.
type OfferView struct {
	SellerName        string `json:"seller_name,omitempty"`
	Price             int64  `json:"price"`
	ListPrice         int64  `json:"list_price,omitempty"`
	Savings           int64  `json:"savings,omitempty"`
	Available         bool   `json:"available"`
	AvailableQuantity int    `json:"available_quantity"`
	InfoMessage       string `json:"info_message,omitempty"`
}

// ProductDetailView is everything the detail view renders for one selection.
type ProductDetailView struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Brand            string                  `json:"brand"`
	Description      string                  `json:"description"`
	Selection        domain.Selection        `json:"selection"`
	SelectionMatched bool                    `json:"selection_matched"`
	CurrentItem      *domain.ProductItem     `json:"current_item,omitempty"`
	CurrentOffer     *OfferView              `json:"current_offer,omitempty"`
	Images           []string                `json:"images"`
	Variations       []variant.DimensionView `json:"variations"`
	Specifications   []domain.Specification  `json:"specifications"`
}

// ProductService serves catalog listings and the variant-aware detail view.
type ProductService struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(c Catalog, logger *slog.Logger) *ProductService {
	return &ProductService{
		catalog: c,
		logger:  logger,
	}
}

// ListProducts returns the catalog listing for f.
func (s *ProductService) ListProducts(ctx context.Context, f catalog.Filter) ([]domain.ProductDisplay, error) {
	products, err := s.catalog.FetchProducts(ctx, f)
	if err != nil {
		return nil, s.catalogError(ctx, "list products", "", err)
	}
	return products, nil
}

// GetProduct returns the listing entry of one product.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.ProductDisplay, error) {
	p, err := s.catalog.FetchProduct(ctx, id)
	if err != nil {
		return nil, s.catalogError(ctx, "get product", id, err)
	}
	return p, nil
}

// GetDetail builds the detail view for sel. An empty selection is seeded
// from the first available item.
func (s *ProductService) GetDetail(ctx context.Context, id string, sel domain.Selection) (*ProductDetailView, error) {
	detail, err := s.catalog.FetchProductDetail(ctx, id)
	if err != nil {
		return nil, s.catalogError(ctx, "get product detail", id, err)
	}

	sel = variant.Restrict(sel, detail.SKUSpecifications, detail.Items)
	if len(sel) == 0 {
		sel = variant.InitialSelection(detail.Items)
	}
	return s.buildView(ctx, detail, sel), nil
}

// ApplySelection applies one variant choice on top of input.Selection. A
// rejected choice leaves the selection unchanged and returns a 422 whose
// details carry the prior selection and a dismiss hint.
func (s *ProductService) ApplySelection(ctx context.Context, id string, input SelectionInput) (*ProductDetailView, error) {
	detail, err := s.catalog.FetchProductDetail(ctx, id)
	if err != nil {
		return nil, s.catalogError(ctx, "apply selection", id, err)
	}

	prior := variant.Restrict(input.Selection, detail.SKUSpecifications, detail.Items)
	next, err := variant.ApplyVariationChoice(input.Dimension, input.Value, prior, detail.Items)
	if err != nil {
		return nil, variantError(err, input, prior)
	}

	return s.buildView(ctx, detail, next), nil
}

func (s *ProductService) buildView(ctx context.Context, d *domain.ProductDetail, sel domain.Selection) *ProductDetailView {
	view := &ProductDetailView{
		ID:               d.ID,
		Name:             d.Name,
		Brand:            d.Brand,
		Description:      d.Description,
		Selection:        sel.Clone(),
		SelectionMatched: true,
		Images:           []string{},
		Variations:       variant.Variations(d.SKUSpecifications, d.Items, sel),
		Specifications:   d.Specifications,
	}
	if view.Specifications == nil {
		view.Specifications = []domain.Specification{}
	}

	current, err := variant.ResolveCurrentItem(d.Items, sel)
	switch {
	case errors.Is(err, variant.ErrNoItems):
		view.SelectionMatched = len(sel) == 0
		return view
	case errors.Is(err, variant.ErrNoMatch):
		// Display falls back to the first item but the response says so.
		logger.WithContext(ctx, s.logger).Warn("selection matches no item, showing first item",
			slog.String("product_id", d.ID),
			slog.Any("selection", map[string]string(sel)),
		)
		view.SelectionMatched = false
		current = &d.Items[0]
	}

	item := *current
	view.CurrentItem = &item
	view.Images = append(view.Images, item.Images...)
	if o, ok := item.PrimaryOffer(); ok {
		view.CurrentOffer = offerView(o)
	}
	return view
}

func offerView(o domain.Offer) *OfferView {
	v := &OfferView{
		SellerName:        o.SellerName,
		Price:             o.Price,
		Available:         o.IsAvailable,
		AvailableQuantity: o.AvailableQuantity,
		InfoMessage:       o.InfoMessage,
	}
	if o.ListPrice > o.Price {
		v.ListPrice = o.ListPrice
		v.Savings = o.ListPrice - o.Price
	}
	return v
}

// variantError renders a rejected choice as the message shown to the shopper.
func variantError(err error, input SelectionInput, prior domain.Selection) error {
	var ce *variant.ChoiceError
	if !errors.As(err, &ce) {
		return apperrors.Internal(err)
	}

	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, variant.ErrUnknownVariantValue):
		appErr = apperrors.Unprocessable(CodeUnknownVariantValue,
			fmt.Sprintf("%s %q no está disponible para este producto.", input.Dimension, input.Value))
	default:
		appErr = apperrors.Unprocessable(CodeIncompatibleCombination,
			fmt.Sprintf("Esta combinación de %s no está disponible.", strings.Join(ce.Dimensions(), " y ")))
	}

	return appErr.
		WithDetail("dismiss_after_ms", VariantErrorDismissMS).
		WithDetail("selection", prior).
		WithDetail("dimension", input.Dimension).
		WithDetail("value", input.Value)
}

func (s *ProductService) catalogError(ctx context.Context, op, id string, err error) error {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		return apperrors.NotFound("product", id)
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		logger.WithContext(ctx, s.logger).Warn("catalog unavailable",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return apperrors.ServiceUnavailable(CodeCatalogUnavailable,
			"No se pudieron cargar los productos. Intenta de nuevo.", err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
