package domain

// CartLineItem is one (product, color, size) entry in a shopper's cart.
// An empty Color or Size means the product has no such variant and only
// matches another empty value.
type CartLineItem struct {
	ProductID         string `json:"product_id"`
	Name              string `json:"name"`
	Brand             string `json:"brand"`
	UnitPrice         int64  `json:"unit_price"`
	OriginalUnitPrice int64  `json:"original_unit_price,omitempty"`
	ImageURL          string `json:"image_url"`
	Color             string `json:"color,omitempty"`
	Size              string `json:"size,omitempty"`
	Quantity          int    `json:"quantity"`
}

// Matches reports whether the line is identified by the given triple.
func (li CartLineItem) Matches(productID, color, size string) bool {
	return li.ProductID == productID && li.Color == color && li.Size == size
}

// Subtotal is UnitPrice times Quantity.
func (li CartLineItem) Subtotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

// CartSummary is a snapshot of a cart with its derived totals.
type CartSummary struct {
	Items      []CartLineItem `json:"items"`
	TotalItems int            `json:"total_items"`
	TotalPrice int64          `json:"total_price"`
}

// Summarize derives totals from items. Items is copied.
func Summarize(items []CartLineItem) CartSummary {
	s := CartSummary{Items: make([]CartLineItem, len(items))}
	copy(s.Items, items)
	for _, it := range items {
		s.TotalItems += it.Quantity
		s.TotalPrice += it.Subtotal()
	}
	return s
}

// IsEmpty reports whether the summary has no line items.
func (s CartSummary) IsEmpty() bool {
	return len(s.Items) == 0
}
