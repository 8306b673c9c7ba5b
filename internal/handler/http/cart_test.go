package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/middleware"
)

func addBody(productID string) map[string]any {
	return map[string]any{
		"product_id": productID,
		"name":       "Camiseta",
		"brand":      "Vélez",
		"unit_price": 1000,
		"color":      "Rojo",
		"size":       "M",
	}
}

func TestGetCart_Empty(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/cart", nil, testSession)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	resp := decodeResponse[domain.CartSummary](t, rec)
	assert.Nil(t, resp.Error)
	assert.Equal(t, 0, resp.Data.TotalItems)
	assert.Equal(t, int64(0), resp.Data.TotalPrice)
}

func TestAddItem_IncrementsSameVariant(t *testing.T) {
	srv := newTestServer(t)

	srv.do(t, http.MethodPost, "/api/v1/cart/items", addBody("P1"), testSession)
	rec := srv.do(t, http.MethodPost, "/api/v1/cart/items", addBody("P1"), testSession)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse[domain.CartSummary](t, rec)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, 2, resp.Data.Items[0].Quantity)
	assert.Equal(t, 2, resp.Data.TotalItems)
	assert.Equal(t, int64(2000), resp.Data.TotalPrice)

	stored, err := srv.mr.Get("cart:" + testSession)
	require.NoError(t, err)
	assert.Contains(t, stored, `"quantity":2`)
}

func TestAddItem_ValidationError_MissingFields(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"unit_price": 10}, testSession)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse[any](t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "is required", resp.Error.Fields["product_id"])
	assert.Equal(t, "is required", resp.Error.Fields["name"])
}

func TestAddItem_InvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/cart/items", "{not json", testSession)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse[any](t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestAddItem_RejectsNonJSONContentType(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader("product_id=P1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(middleware.SessionHeader, testSession)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNSUPPORTED_MEDIA_TYPE")
}

func TestUpdateQuantity(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", addBody("P1"), testSession)

	rec := srv.do(t, http.MethodPut, "/api/v1/cart/items/P1",
		map[string]any{"quantity": 5, "color": "Rojo", "size": "M"}, testSession)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse[domain.CartSummary](t, rec)
	assert.Equal(t, 5, resp.Data.TotalItems)
	assert.Equal(t, int64(5000), resp.Data.TotalPrice)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", addBody("P1"), testSession)

	rec := srv.do(t, http.MethodPut, "/api/v1/cart/items/P1",
		map[string]any{"quantity": 0, "color": "Rojo", "size": "M"}, testSession)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse[domain.CartSummary](t, rec)
	assert.Empty(t, resp.Data.Items)
}

func TestUpdateQuantity_OtherVariantUntouched(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", addBody("P1"), testSession)

	rec := srv.do(t, http.MethodPut, "/api/v1/cart/items/P1",
		map[string]any{"quantity": 9, "color": "Azul", "size": "M"}, testSession)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse[domain.CartSummary](t, rec)
	assert.Equal(t, 1, resp.Data.TotalItems)
}

func TestRemoveItem_UsesVariantQuery(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", addBody("P1"), testSession)

	rec := srv.do(t, http.MethodDelete, "/api/v1/cart/items/P1?color=Azul&size=M", nil, testSession)
	resp := decodeResponse[domain.CartSummary](t, rec)
	assert.Equal(t, 1, resp.Data.TotalItems, "different color is a different line")

	rec = srv.do(t, http.MethodDelete, "/api/v1/cart/items/P1?color=Rojo&size=M", nil, testSession)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeResponse[domain.CartSummary](t, rec)
	assert.Equal(t, 0, resp.Data.TotalItems)
}

func TestClearCart(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", addBody("P1"), testSession)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", addBody("P2"), testSession)

	rec := srv.do(t, http.MethodDelete, "/api/v1/cart", nil, testSession)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse[domain.CartSummary](t, rec)
	assert.Equal(t, 0, resp.Data.TotalItems)

	stored, err := srv.mr.Get("cart:" + testSession)
	require.NoError(t, err)
	assert.Equal(t, "[]", stored)
}

func TestCart_SessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/cart/items", addBody("P1"), "alice")

	rec := srv.do(t, http.MethodGet, "/api/v1/cart", nil, "bob")

	resp := decodeResponse[domain.CartSummary](t, rec)
	assert.Equal(t, 0, resp.Data.TotalItems)
}

func TestAllSessionEndpoints_RejectMissingSession(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/v1/cart", nil},
		{http.MethodDelete, "/api/v1/cart", nil},
		{http.MethodPost, "/api/v1/cart/items", addBody("P1")},
		{http.MethodPut, "/api/v1/cart/items/P1", map[string]any{"quantity": 1}},
		{http.MethodDelete, "/api/v1/cart/items/P1", nil},
		{http.MethodGet, "/api/v1/checkout", nil},
		{http.MethodPost, "/api/v1/checkout/open", nil},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := srv.do(t, tt.method, tt.path, tt.body, "")

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			resp := decodeResponse[any](t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
		})
	}
}
