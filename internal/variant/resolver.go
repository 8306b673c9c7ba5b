// Package variant resolves a shopper's partial variant selection against the
// purchasable items of a product.
//
// An item matches a selection when, for every (dimension, value) pair in the
// selection, the item carries that dimension and its value set contains the
// value. Dimensions absent from the selection are unconstrained. Items that
// lack a dimension never satisfy a constraint on it.
package variant

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
)

var (
	// ErrNoItems means the product has nothing purchasable at all.
	ErrNoItems = errors.New("product has no items")
	// ErrNoMatch means items exist but none satisfies the selection.
	ErrNoMatch = errors.New("no item matches the selection")
	// ErrUnknownVariantValue means no item carries the value for the dimension.
	ErrUnknownVariantValue = errors.New("unknown variant value")
	// ErrIncompatibleCombination means the value exists but not together with
	// the rest of the selection.
	ErrIncompatibleCombination = errors.New("incompatible variant combination")
)

// ChoiceError describes a rejected variation choice. It unwraps to
// ErrUnknownVariantValue or ErrIncompatibleCombination.
type ChoiceError struct {
	Kind      error
	Dimension string
	Value     string
	// Attempted is the selection that would have resulted.
	Attempted domain.Selection
}

func (e *ChoiceError) Error() string {
	return fmt.Sprintf("%v: %s=%q", e.Kind, e.Dimension, e.Value)
}

func (e *ChoiceError) Unwrap() error { return e.Kind }

// Dimensions returns the attempted selection's dimension names, sorted.
func (e *ChoiceError) Dimensions() []string {
	names := make([]string, 0, len(e.Attempted))
	for k := range e.Attempted {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Matches reports whether item satisfies every pair in sel.
func Matches(item domain.ProductItem, sel domain.Selection) bool {
	for dim, value := range sel {
		if !item.HasValue(dim, value) {
			return false
		}
	}
	return true
}

// ResolveCurrentItem returns the item to display for sel. The returned
// pointer addresses an element of items, so repeated calls with the same
// inputs return the same element.
//
// With an empty selection it returns the first available item, or items[0]
// when nothing is available. Otherwise it returns the first item in source
// order that matches, or ErrNoMatch. An empty items slice yields ErrNoItems.
func ResolveCurrentItem(items []domain.ProductItem, sel domain.Selection) (*domain.ProductItem, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	if len(sel) == 0 {
		for i := range items {
			if items[i].Available() {
				return &items[i], nil
			}
		}
		return &items[0], nil
	}

	for i := range items {
		if Matches(items[i], sel) {
			return &items[i], nil
		}
	}
	return nil, ErrNoMatch
}

// IsValueSelectable reports whether some item satisfies sel with dimension
// overridden to value.
func IsValueSelectable(dimension, value string, sel domain.Selection, items []domain.ProductItem) bool {
	candidate := sel.With(dimension, value)
	for i := range items {
		if Matches(items[i], candidate) {
			return true
		}
	}
	return false
}

// ApplyVariationChoice returns sel with dimension set to value. sel itself is
// never modified; on failure the caller keeps using it unchanged.
func ApplyVariationChoice(dimension, value string, sel domain.Selection, items []domain.ProductItem) (domain.Selection, error) {
	next := sel.With(dimension, value)

	known := false
	for i := range items {
		if items[i].HasValue(dimension, value) {
			known = true
			break
		}
	}
	if !known {
		return nil, &ChoiceError{Kind: ErrUnknownVariantValue, Dimension: dimension, Value: value, Attempted: next}
	}

	for i := range items {
		if Matches(items[i], next) {
			return next, nil
		}
	}
	return nil, &ChoiceError{Kind: ErrIncompatibleCombination, Dimension: dimension, Value: value, Attempted: next}
}

// InitialSelection seeds a selection from the first available item, taking
// the first value of each of its dimensions. When no item is available the
// selection is empty.
func InitialSelection(items []domain.ProductItem) domain.Selection {
	sel := domain.Selection{}
	for i := range items {
		if !items[i].Available() {
			continue
		}
		for dim, values := range items[i].Dimensions {
			if len(values) > 0 {
				sel[dim] = values[0]
			}
		}
		break
	}
	return sel
}

// Restrict drops every entry of sel whose key is not a dimension of the
// product, either advertised in dims or carried by an item.
func Restrict(sel domain.Selection, dims []domain.VariantDimension, items []domain.ProductItem) domain.Selection {
	known := make(map[string]bool, len(dims))
	for _, d := range dims {
		known[d.Name] = true
	}
	for i := range items {
		for name := range items[i].Dimensions {
			known[name] = true
		}
	}

	out := domain.Selection{}
	for dim, value := range sel {
		if known[dim] {
			out[dim] = value
		}
	}
	return out
}

// ValueView is one value button of a dimension.
type ValueView struct {
	Name       string `json:"name"`
	Selected   bool   `json:"selected"`
	Selectable bool   `json:"selectable"`
}

// DimensionView is one variant axis as presented to the shopper.
type DimensionView struct {
	Name   string      `json:"name"`
	Values []ValueView `json:"values"`
}

// Variations builds the per-dimension view for sel. Advertised dimensions are
// used in position order; when a product advertises none, dimensions are
// derived from the items themselves.
func Variations(dims []domain.VariantDimension, items []domain.ProductItem, sel domain.Selection) []DimensionView {
	if len(dims) == 0 {
		dims = deriveDimensions(items)
	}

	ordered := make([]domain.VariantDimension, len(dims))
	copy(ordered, dims)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	views := make([]DimensionView, 0, len(ordered))
	for _, d := range ordered {
		values := make([]domain.VariantValue, len(d.Values))
		copy(values, d.Values)
		sort.SliceStable(values, func(i, j int) bool { return values[i].Position < values[j].Position })

		view := DimensionView{Name: d.Name, Values: make([]ValueView, 0, len(values))}
		for _, v := range values {
			view.Values = append(view.Values, ValueView{
				Name:       v.Name,
				Selected:   sel[d.Name] == v.Name,
				Selectable: IsValueSelectable(d.Name, v.Name, sel, items),
			})
		}
		views = append(views, view)
	}
	return views
}

func deriveDimensions(items []domain.ProductItem) []domain.VariantDimension {
	seen := map[string]map[string]bool{}
	var names []string
	valueOrder := map[string][]string{}

	for _, it := range items {
		dimNames := make([]string, 0, len(it.Dimensions))
		for name := range it.Dimensions {
			dimNames = append(dimNames, name)
		}
		sort.Strings(dimNames)

		for _, name := range dimNames {
			if seen[name] == nil {
				seen[name] = map[string]bool{}
				names = append(names, name)
			}
			for _, v := range it.Dimensions[name] {
				if !seen[name][v] {
					seen[name][v] = true
					valueOrder[name] = append(valueOrder[name], v)
				}
			}
		}
	}

	dims := make([]domain.VariantDimension, 0, len(names))
	for i, name := range names {
		d := domain.VariantDimension{Name: name, Position: i}
		for j, v := range valueOrder[name] {
			d.Values = append(d.Values, domain.VariantValue{ID: strings.ToLower(v), Name: v, Position: j})
		}
		dims = append(dims, d)
	}
	return dims
}
