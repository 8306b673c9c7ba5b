package domain

import "time"

// ProductDisplay is the normalized listing view of a catalog product.
type ProductDisplay struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Brand       string     `json:"brand"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Images      []string   `json:"images"`
	Price       int64      `json:"price"`
	ListPrice   int64      `json:"list_price,omitempty"`
	Available   bool       `json:"available"`
	Category    string     `json:"category,omitempty"`
	Material    string     `json:"material,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// Offer is one seller's terms for a purchasable item.
type Offer struct {
	SellerID          string `json:"seller_id"`
	SellerName        string `json:"seller_name"`
	Default           bool   `json:"default"`
	Price             int64  `json:"price"`
	ListPrice         int64  `json:"list_price"`
	AvailableQuantity int    `json:"available_quantity"`
	IsAvailable       bool   `json:"is_available"`
	InfoMessage       string `json:"info_message,omitempty"`
}

// ProductItem is one purchasable SKU of a product. Dimensions maps a
// variant dimension name (for example "Color" or "Talla") to the values
// this item carries for it.
type ProductItem struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	EAN        string              `json:"ean,omitempty"`
	Images     []string            `json:"images"`
	Dimensions map[string][]string `json:"dimensions"`
	Offers     []Offer             `json:"offers"`
}

// PrimaryOffer returns the first seller offer.
func (it ProductItem) PrimaryOffer() (Offer, bool) {
	if len(it.Offers) == 0 {
		return Offer{}, false
	}
	return it.Offers[0], true
}

// Available reports whether the primary offer is available.
func (it ProductItem) Available() bool {
	o, ok := it.PrimaryOffer()
	return ok && o.IsAvailable
}

// HasValue reports whether the item carries value for dimension. An item
// without the dimension never has a value for it.
func (it ProductItem) HasValue(dimension, value string) bool {
	for _, v := range it.Dimensions[dimension] {
		if v == value {
			return true
		}
	}
	return false
}

// VariantValue is one legal value of a variant dimension.
type VariantValue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// VariantDimension advertises a variant axis and its values. Not every
// combination of advertised values is backed by an item.
type VariantDimension struct {
	Name     string         `json:"name"`
	Position int            `json:"position"`
	Values   []VariantValue `json:"values"`
}

// Specification is a labelled fact shown on the product page.
type Specification struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ProductDetail is the full catalog record of one product.
type ProductDetail struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Brand             string             `json:"brand"`
	Description       string             `json:"description"`
	Reference         string             `json:"reference,omitempty"`
	Categories        []string           `json:"categories,omitempty"`
	Items             []ProductItem      `json:"items"`
	SKUSpecifications []VariantDimension `json:"sku_specifications"`
	Specifications    []Specification    `json:"specifications,omitempty"`
}

// Selection maps a variant dimension to the chosen value.
type Selection map[string]string

// With returns a copy of s with dimension set to value. s is not modified.
func (s Selection) With(dimension, value string) Selection {
	out := make(Selection, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[dimension] = value
	return out
}

// Clone returns a copy of s. A nil selection clones to an empty one.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
