package catalog

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// Specification labels shown on the product page.
const (
	labelBrand       = "Marca"
	labelReference   = "Referencia"
	labelOrigin      = "País de Origen"
	labelComposition = "Composición"
)

var infoMessagePrefix = regexp.MustCompile(`(?s)^.*?Message:\s*`)

// toPrice converts an upstream decimal amount to whole currency units,
// rounding half away from zero. Fractions are not kept.
func toPrice(v float64) int64 {
	return int64(math.Round(v))
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// toDisplay normalizes one listing entry.
func toDisplay(p upstreamProduct) domain.ProductDisplay {
	price := toPrice(p.Price)

	d := domain.ProductDisplay{
		ID:          p.ProductID,
		Name:        p.ProductName,
		Brand:       p.Brand,
		Description: p.Description,
		Image:       p.Image,
		Images:      []string{},
		Price:       price,
		Available:   true,
		Category:    p.Brand,
	}

	if d.Description == "" {
		d.Description = p.MetaTagDescription
	}
	if p.Image != "" {
		d.Images = []string{p.Image}
	}
	if list := toPrice(p.ListPrice); list > price {
		d.ListPrice = list
	}
	if p.Available != nil {
		d.Available = *p.Available
	}
	if c := strings.ReplaceAll(firstOf(p.Categories), "/", ""); c != "" {
		d.Category = c
	}

	d.Material = firstOf(p.Attributes[keyExternalMaterial])
	if d.Material == "" {
		d.Material = firstOf(p.Attributes[keyComposition])
	}

	if p.ReleaseDate != "" {
		if t, err := time.Parse(time.RFC3339, p.ReleaseDate); err == nil {
			d.CreatedAt = &t
		}
	}

	return d
}

// toDetail normalizes a detail record.
func toDetail(u upstreamDetail) domain.ProductDetail {
	d := domain.ProductDetail{
		ID:                u.ProductID,
		Name:              u.ProductName,
		Brand:             u.Brand,
		Description:       u.Description,
		Reference:         u.ProductReference,
		Categories:        u.Categories,
		Items:             make([]domain.ProductItem, 0, len(u.Items)),
		SKUSpecifications: make([]domain.VariantDimension, 0, len(u.SKUSpecifications)),
	}
	if d.Description == "" {
		d.Description = u.MetaTagDescription
	}

	for _, it := range u.Items {
		d.Items = append(d.Items, toItem(it))
	}

	for _, spec := range u.SKUSpecifications {
		dim := domain.VariantDimension{
			Name:     spec.Field.Name,
			Position: spec.Field.Position,
			Values:   make([]domain.VariantValue, 0, len(spec.Values)),
		}
		for _, v := range spec.Values {
			dim.Values = append(dim.Values, domain.VariantValue{ID: v.ID, Name: v.Name, Position: v.Position})
		}
		d.SKUSpecifications = append(d.SKUSpecifications, dim)
	}

	d.Specifications = specifications(u)
	return d
}

func toItem(it upstreamItem) domain.ProductItem {
	item := domain.ProductItem{
		ID:         it.ItemID,
		Name:       it.Name,
		EAN:        it.EAN,
		Images:     make([]string, 0, len(it.Images)),
		Dimensions: it.Dimensions,
		Offers:     make([]domain.Offer, 0, len(it.Sellers)),
	}
	if item.Dimensions == nil {
		item.Dimensions = map[string][]string{}
	}

	for _, img := range it.Images {
		if img.ImageURL != "" {
			item.Images = append(item.Images, img.ImageURL)
		}
	}

	for _, s := range it.Sellers {
		o := s.CommertialOffer
		item.Offers = append(item.Offers, domain.Offer{
			SellerID:          s.SellerID,
			SellerName:        s.SellerName,
			Default:           s.SellerDefault,
			Price:             toPrice(o.Price),
			ListPrice:         toPrice(o.ListPrice),
			AvailableQuantity: o.AvailableQuantity,
			IsAvailable:       o.IsAvailable,
			InfoMessage:       CleanInfoMessage(o.GetInfoErrorMessage),
		})
	}
	return item
}

// specifications lists the non-empty facts of the specifications block.
func specifications(u upstreamDetail) []domain.Specification {
	candidates := []domain.Specification{
		{Label: labelBrand, Value: u.Brand},
		{Label: labelReference, Value: u.ProductReference},
		{Label: labelOrigin, Value: firstOf(u.Attributes[keyCountryOfOrigin])},
		{Label: labelComposition, Value: firstOf(u.Attributes[keyComposition])},
	}

	out := make([]domain.Specification, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.Value) != "" {
			out = append(out, c)
		}
	}
	return out
}

// CleanInfoMessage keeps only the text after "Message:" when the upstream
// sends a wrapped error string. Other text is returned trimmed.
func CleanInfoMessage(msg string) string {
	if msg == "" {
		return ""
	}
	if loc := infoMessagePrefix.FindStringIndex(msg); loc != nil {
		return strings.TrimSpace(msg[loc[1]:])
	}
	return strings.TrimSpace(msg)
}
