package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints. Every route runs
// behind middleware.RequireSession.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	httputil.WriteData(w, http.StatusOK, h.service.GetCart(r.Context(), sessionID))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddItemInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sessionID := middleware.SessionIDFromContext(r.Context())
	httputil.WriteData(w, http.StatusOK, h.service.AddItem(r.Context(), sessionID, req))
}

// UpdateQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateQuantityInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sessionID := middleware.SessionIDFromContext(r.Context())
	summary := h.service.UpdateQuantity(r.Context(), sessionID, chi.URLParam(r, "productId"), req)
	httputil.WriteData(w, http.StatusOK, summary)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}?color=&size=
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := middleware.SessionIDFromContext(r.Context())
	summary := h.service.RemoveItem(r.Context(), sessionID, chi.URLParam(r, "productId"), q.Get("color"), q.Get("size"))
	httputil.WriteData(w, http.StatusOK, summary)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	httputil.WriteData(w, http.StatusOK, h.service.ClearCart(r.Context(), sessionID, service.ClearReasonExplicit))
}
