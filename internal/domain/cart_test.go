package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartLineItem_Matches(t *testing.T) {
	li := CartLineItem{ProductID: "P1", Color: "Azul", Size: "M"}

	assert.True(t, li.Matches("P1", "Azul", "M"))
	assert.False(t, li.Matches("P1", "Azul", ""))
	assert.False(t, li.Matches("P1", "", "M"))
	assert.False(t, li.Matches("P2", "Azul", "M"))

	plain := CartLineItem{ProductID: "P1"}
	assert.True(t, plain.Matches("P1", "", ""))
	assert.False(t, plain.Matches("P1", "Azul", ""))
}

func TestSummarize(t *testing.T) {
	items := []CartLineItem{
		{ProductID: "P1", UnitPrice: 1000, OriginalUnitPrice: 1500, Quantity: 2},
		{ProductID: "P2", UnitPrice: 250, Quantity: 3},
	}

	s := Summarize(items)
	assert.Equal(t, 5, s.TotalItems)
	assert.Equal(t, int64(2750), s.TotalPrice)
	assert.False(t, s.IsEmpty())

	s.Items[0].Quantity = 99
	assert.Equal(t, 2, items[0].Quantity, "summary must not alias the input")
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.TotalItems)
	assert.Equal(t, int64(0), s.TotalPrice)
	assert.True(t, s.IsEmpty())
	assert.NotNil(t, s.Items)
}

func TestSelection_WithDoesNotMutate(t *testing.T) {
	sel := Selection{"Color": "Rojo"}
	next := sel.With("Talla", "L")

	assert.Equal(t, Selection{"Color": "Rojo"}, sel)
	assert.Equal(t, Selection{"Color": "Rojo", "Talla": "L"}, next)
	assert.Equal(t, Selection{}, Selection(nil).Clone())
}

func TestProductItem_Helpers(t *testing.T) {
	it := ProductItem{
		Dimensions: map[string][]string{"Color": {"Rojo"}, "Talla": {"M", "L"}},
		Offers:     []Offer{{Price: 100, IsAvailable: true}, {Price: 90}},
	}

	assert.True(t, it.HasValue("Talla", "L"))
	assert.False(t, it.HasValue("Talla", "XL"))
	assert.False(t, it.HasValue("Material", "Cuero"))
	assert.True(t, it.Available())

	o, ok := it.PrimaryOffer()
	assert.True(t, ok)
	assert.Equal(t, int64(100), o.Price)

	assert.False(t, ProductItem{}.Available())
}
