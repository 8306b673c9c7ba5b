package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Upstream attribute keys that arrive as top-level product fields with
// array values.
const (
	keyExternalMaterial = "MATERIAL EXTERNO"
	keyComposition      = "COMPOSICIÓN"
	keyCountryOfOrigin  = "PAÍS DE ORIGEN"
)

// upstreamProduct is one entry of a catalog listing.
type upstreamProduct struct {
	ProductID          string   `json:"productId"`
	ProductName        string   `json:"productName"`
	Brand              string   `json:"brand"`
	ProductReference   string   `json:"productReference"`
	Description        string   `json:"description"`
	MetaTagDescription string   `json:"metaTagDescription"`
	ReleaseDate        string   `json:"releaseDate"`
	Categories         []string `json:"categories"`
	Price              float64  `json:"price"`
	ListPrice          float64  `json:"listPrice"`
	Available          *bool    `json:"available"`
	Image              string   `json:"image"`

	// Attributes holds the array-valued attribute keys that are not part of
	// the fixed shape.
	Attributes map[string][]string `json:"-"`
}

func (p *upstreamProduct) UnmarshalJSON(data []byte) error {
	type plain upstreamProduct
	if err := json.Unmarshal(data, (*plain)(p)); err != nil {
		return err
	}
	attrs, err := decodeAttributes(data, keyExternalMaterial, keyComposition, keyCountryOfOrigin)
	if err != nil {
		return err
	}
	p.Attributes = attrs
	return nil
}

type upstreamImage struct {
	ImageID    string `json:"imageId"`
	ImageLabel string `json:"imageLabel"`
	ImageURL   string `json:"imageUrl"`
}

type upstreamCommercialOffer struct {
	Price               float64 `json:"Price"`
	ListPrice           float64 `json:"ListPrice"`
	AvailableQuantity   int     `json:"AvailableQuantity"`
	IsAvailable         bool    `json:"IsAvailable"`
	GetInfoErrorMessage string  `json:"GetInfoErrorMessage"`
}

type upstreamSeller struct {
	SellerID        string                  `json:"sellerId"`
	SellerName      string                  `json:"sellerName"`
	SellerDefault   bool                    `json:"sellerDefault"`
	CommertialOffer upstreamCommercialOffer `json:"commertialOffer"`
}

// upstreamItem is one SKU. Its variant values live under top-level keys whose
// names are listed in Variations, for example "Color" and "Talla".
type upstreamItem struct {
	ItemID     string           `json:"itemId"`
	Name       string           `json:"name"`
	EAN        string           `json:"ean"`
	Images     []upstreamImage  `json:"images"`
	Variations []string         `json:"variations"`
	Sellers    []upstreamSeller `json:"sellers"`

	Dimensions map[string][]string `json:"-"`
}

func (it *upstreamItem) UnmarshalJSON(data []byte) error {
	type plain upstreamItem
	if err := json.Unmarshal(data, (*plain)(it)); err != nil {
		return err
	}
	dims, err := decodeAttributes(data, it.Variations...)
	if err != nil {
		return fmt.Errorf("item %s: %w", it.ItemID, err)
	}
	it.Dimensions = dims
	return nil
}

type upstreamSKUField struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	Position int         `json:"position"`
}

type upstreamSKUValue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type upstreamSKUSpecification struct {
	Field  upstreamSKUField   `json:"field"`
	Values []upstreamSKUValue `json:"values"`
}

// upstreamDetail is the first element of a detail response.
type upstreamDetail struct {
	ProductID          string                     `json:"productId"`
	ProductName        string                     `json:"productName"`
	Brand              string                     `json:"brand"`
	ProductReference   string                     `json:"productReference"`
	Description        string                     `json:"description"`
	MetaTagDescription string                     `json:"metaTagDescription"`
	Categories         []string                   `json:"categories"`
	Items              []upstreamItem             `json:"items"`
	SKUSpecifications  []upstreamSKUSpecification `json:"skuSpecifications"`

	Attributes map[string][]string `json:"-"`
}

func (d *upstreamDetail) UnmarshalJSON(data []byte) error {
	type plain upstreamDetail
	if err := json.Unmarshal(data, (*plain)(d)); err != nil {
		return err
	}
	attrs, err := decodeAttributes(data, keyExternalMaterial, keyComposition, keyCountryOfOrigin)
	if err != nil {
		return err
	}
	d.Attributes = attrs
	return nil
}

// decodeAttributes pulls the named array-of-string keys out of a JSON object.
// Missing keys and non-array values are skipped.
func decodeAttributes(data []byte, keys ...string) (map[string][]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(keys))
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var values []string
		if err := json.Unmarshal(v, &values); err != nil {
			continue
		}
		out[k] = values
	}
	return out, nil
}

// listShape tags the three listing envelopes the catalog is known to send.
type listShape int

const (
	shapeUnknown listShape = iota
	shapeArray
	shapeProductsField
	shapeDataField
)

func (s listShape) String() string {
	switch s {
	case shapeArray:
		return "array"
	case shapeProductsField:
		return "products"
	case shapeDataField:
		return "data"
	default:
		return "unknown"
	}
}

type productsEnvelope struct {
	Products []upstreamProduct `json:"products"`
}

type dataEnvelope struct {
	Data []upstreamProduct `json:"data"`
}

// detectListShape classifies a listing body without decoding the products.
func detectListShape(body []byte) listShape {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return shapeUnknown
	}

	switch trimmed[0] {
	case '[':
		return shapeArray
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return shapeUnknown
		}
		if isArray(probe["products"]) {
			return shapeProductsField
		}
		if isArray(probe["data"]) {
			return shapeDataField
		}
	}
	return shapeUnknown
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// decodeList decodes a listing body through the decode path of its shape.
// An unknown shape yields an empty list.
func decodeList(body []byte) ([]upstreamProduct, listShape, error) {
	shape := detectListShape(body)

	switch shape {
	case shapeArray:
		var products []upstreamProduct
		if err := json.Unmarshal(body, &products); err != nil {
			return nil, shape, fmt.Errorf("decode %s listing: %w", shape, err)
		}
		return products, shape, nil
	case shapeProductsField:
		var env productsEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, shape, fmt.Errorf("decode %s listing: %w", shape, err)
		}
		return env.Products, shape, nil
	case shapeDataField:
		var env dataEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, shape, fmt.Errorf("decode %s listing: %w", shape, err)
		}
		return env.Data, shape, nil
	default:
		return []upstreamProduct{}, shape, nil
	}
}
