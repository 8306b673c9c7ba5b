package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func TestListProducts_MapsUnavailable(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("FetchProducts", mock.Anything, catalog.Filter{}).
		Return(nil, fmt.Errorf("%w: dial tcp", catalog.ErrCatalogUnavailable))

	_, err := NewProductService(cat, testLogger()).ListProducts(context.Background(), catalog.Filter{})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, CodeCatalogUnavailable, appErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
}

func TestGetProduct_NotFound(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("FetchProduct", mock.Anything, "nope").Return(nil, catalog.ErrProductNotFound)

	_, err := NewProductService(cat, testLogger()).GetProduct(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetDetail_SeedsInitialSelection(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("FetchProductDetail", mock.Anything, "125").Return(sampleDetail(), nil)

	view, err := NewProductService(cat, testLogger()).GetDetail(context.Background(), "125", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.Selection{"Color": "Rojo", "Talla": "M"}, view.Selection)
	assert.True(t, view.SelectionMatched)
	require.NotNil(t, view.CurrentItem)
	assert.Equal(t, "sku-rojo-m", view.CurrentItem.ID)
	assert.Equal(t, []string{"rojo-1.jpg", "rojo-2.jpg"}, view.Images)

	require.NotNil(t, view.CurrentOffer)
	assert.Equal(t, int64(1000), view.CurrentOffer.Price)
	assert.Equal(t, int64(1500), view.CurrentOffer.ListPrice)
	assert.Equal(t, int64(500), view.CurrentOffer.Savings)
	assert.True(t, view.CurrentOffer.Available)

	require.Len(t, view.Variations, 2)
	assert.Equal(t, []domain.Specification{{Label: "Marca", Value: "Vélez"}}, view.Specifications)
}

func TestGetDetail_ExplicitSelection(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("FetchProductDetail", mock.Anything, "125").Return(sampleDetail(), nil)

	view, err := NewProductService(cat, testLogger()).GetDetail(context.Background(), "125", domain.Selection{"Color": "Azul"})
	require.NoError(t, err)

	assert.Equal(t, "sku-azul-l", view.CurrentItem.ID)
	assert.False(t, view.CurrentOffer.Available)
	assert.Zero(t, view.CurrentOffer.Savings)
	assert.Zero(t, view.CurrentOffer.ListPrice)
	assert.Equal(t, "Producto agotado", view.CurrentOffer.InfoMessage)
}

func TestGetDetail_IgnoresUnknownSelectionKeys(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("FetchProductDetail", mock.Anything, "125").Return(sampleDetail(), nil)
	svc := NewProductService(cat, testLogger())

	view, err := svc.GetDetail(context.Background(), "125", domain.Selection{"Color": "Azul", "utm_source": "newsletter"})
	require.NoError(t, err)
	assert.True(t, view.SelectionMatched)
	assert.Equal(t, "sku-azul-l", view.CurrentItem.ID)
	assert.Equal(t, domain.Selection{"Color": "Azul"}, view.Selection)

	view, err = svc.GetDetail(context.Background(), "125", domain.Selection{"utm_source": "newsletter"})
	require.NoError(t, err)
	assert.True(t, view.SelectionMatched)
	assert.Equal(t, "sku-rojo-m", view.CurrentItem.ID, "only unknown keys seeds the initial selection")
}

func TestGetDetail_ImpossibleSelectionFallsBackVisibly(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("FetchProductDetail", mock.Anything, "125").Return(sampleDetail(), nil)

	view, err := NewProductService(cat, testLogger()).GetDetail(context.Background(), "125", domain.Selection{"Color": "Rojo", "Talla": "L"})
	require.NoError(t, err)

	assert.False(t, view.SelectionMatched)
	assert.Equal(t, "sku-rojo-m", view.CurrentItem.ID)
}

func TestGetDetail_NoItems(t *testing.T) {
	d := sampleDetail()
	d.Items = nil
	cat := new(mockCatalog)
	cat.On("FetchProductDetail", mock.Anything, "125").Return(d, nil)

	view, err := NewProductService(cat, testLogger()).GetDetail(context.Background(), "125", nil)
	require.NoError(t, err)

	assert.Nil(t, view.CurrentItem)
	assert.Nil(t, view.CurrentOffer)
	assert.Empty(t, view.Images)
	assert.True(t, view.SelectionMatched)
}

func TestGetDetail_Unavailable(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("FetchProductDetail", mock.Anything, "125").Return(nil, catalog.ErrCatalogUnavailable)

	_, err := NewProductService(cat, testLogger()).GetDetail(context.Background(), "125", nil)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestApplySelection_Success(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("FetchProductDetail", mock.Anything, "125").Return(sampleDetail(), nil)

	input := SelectionInput{Selection: domain.Selection{"Color": "Azul"}, Dimension: "Talla", Value: "L"}
	view, err := NewProductService(cat, testLogger()).ApplySelection(context.Background(), "125", input)
	require.NoError(t, err)

	assert.Equal(t, domain.Selection{"Color": "Azul", "Talla": "L"}, view.Selection)
	assert.Equal(t, "sku-azul-l", view.CurrentItem.ID)
	assert.Equal(t, domain.Selection{"Color": "Azul"}, input.Selection)
}

func TestApplySelection_IncompatibleCombination(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("FetchProductDetail", mock.Anything, "125").Return(sampleDetail(), nil)

	input := SelectionInput{Selection: domain.Selection{"Color": "Rojo"}, Dimension: "Talla", Value: "L"}
	_, err := NewProductService(cat, testLogger()).ApplySelection(context.Background(), "125", input)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, CodeIncompatibleCombination, appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
	assert.Equal(t, "Esta combinación de Color y Talla no está disponible.", appErr.Message)
	assert.Equal(t, VariantErrorDismissMS, appErr.Details["dismiss_after_ms"])
	assert.Equal(t, domain.Selection{"Color": "Rojo"}, appErr.Details["selection"])
	assert.Equal(t, domain.Selection{"Color": "Rojo"}, input.Selection)
}

func TestApplySelection_UnknownValue(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("FetchProductDetail", mock.Anything, "125").Return(sampleDetail(), nil)

	input := SelectionInput{Selection: domain.Selection{}, Dimension: "Talla", Value: "XXL"}
	_, err := NewProductService(cat, testLogger()).ApplySelection(context.Background(), "125", input)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, CodeUnknownVariantValue, appErr.Code)
	assert.Equal(t, `Talla "XXL" no está disponible para este producto.`, appErr.Message)
}

func TestApplySelection_CatalogError(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("FetchProductDetail", mock.Anything, "125").Return(nil, errors.New("decode product detail"))

	_, err := NewProductService(cat, testLogger()).ApplySelection(context.Background(), "125",
		SelectionInput{Dimension: "Talla", Value: "M"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
}
