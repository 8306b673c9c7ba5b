package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrInternal,
		ErrConflict, ErrUnprocessable, ErrServiceUnavail,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "product not found"}
	assert.Equal(t, "NOT_FOUND: product not found", appErr.Error())

	wrapped := &AppError{Code: "INTERNAL_ERROR", Message: "boom", Err: fmt.Errorf("redis down")}
	assert.Contains(t, wrapped.Error(), "redis down")
}

func TestAppError_WithDetail(t *testing.T) {
	err := Unprocessable("UNKNOWN_VARIANT_VALUE", "Talla \"XXL\" is not available").
		WithDetail("dismiss_after_ms", 3000)

	assert.Equal(t, 3000, err.Details["dismiss_after_ms"])
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.True(t, errors.Is(err, ErrUnprocessable))
}

func TestConflict(t *testing.T) {
	err := Conflict("EMPTY_CART", "cart is empty")
	assert.Equal(t, "EMPTY_CART", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestServiceUnavailable_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := ServiceUnavailable("CATALOG_UNAVAILABLE", "catalog unavailable", cause)

	require.NotNil(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.True(t, errors.Is(err, ErrServiceUnavail))
	assert.True(t, errors.Is(err, cause))
}

func TestServiceUnavailable_NilCause(t *testing.T) {
	err := ServiceUnavailable("CATALOG_UNAVAILABLE", "catalog unavailable", nil)
	assert.True(t, errors.Is(err, ErrServiceUnavail))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", NotFound("product", "p1"), http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("ctx: %w", InvalidInput("bad")), http.StatusBadRequest},
		{"sentinel conflict", fmt.Errorf("x: %w", ErrConflict), http.StatusConflict},
		{"sentinel unprocessable", ErrUnprocessable, http.StatusUnprocessableEntity},
		{"sentinel unavailable", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"sentinel unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"unknown", fmt.Errorf("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
