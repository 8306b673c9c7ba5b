package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := f.Validate(); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	products, err := h.service.ListProducts(r.Context(), f)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// GetDetail handles GET /api/v1/products/{id}/detail. Every query parameter
// is read as a dimension of the selection (?Color=Rojo&Talla=M); without any
// the initial selection is used.
func (h *ProductHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetDetail(r.Context(), chi.URLParam(r, "id"), selectionFromQuery(r.URL.Query()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, view)
}

// ApplySelection handles POST /api/v1/products/{id}/selection
func (h *ProductHandler) ApplySelection(w http.ResponseWriter, r *http.Request) {
	var req service.SelectionInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.ApplySelection(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, view)
}

func parseFilter(q url.Values) (catalog.Filter, error) {
	f := catalog.Filter{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return f, apperrors.InvalidInput("limit must be an integer")
		}
		f.Limit = limit
	}
	return f, nil
}

func selectionFromQuery(q url.Values) domain.Selection {
	sel := domain.Selection{}
	for dim, values := range q {
		if len(values) > 0 && values[0] != "" {
			sel[dim] = values[0]
		}
	}
	return sel
}
