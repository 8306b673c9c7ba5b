package catalog

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/utafrali/storefront/pkg/validator"
)

// MinSearchLength is the shortest search term sent upstream. Shorter terms
// are dropped and the unfiltered listing is returned.
const MinSearchLength = 3

// Filter narrows a product listing.
type Filter struct {
	Search string `query:"search" validate:"max=100"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Sort   string `query:"sort" validate:"omitempty,oneof=name price brand"`
	Order  string `query:"order" validate:"omitempty,oneof=asc desc"`
}

// Validate checks the filter against its tags.
func (f Filter) Validate() error {
	return validator.Validate(f)
}

// normalized trims the search term and drops it when it is too short.
func (f Filter) normalized() Filter {
	f.Search = strings.TrimSpace(f.Search)
	if utf8.RuneCountInString(f.Search) < MinSearchLength {
		f.Search = ""
	}
	return f
}

// IsSearch reports whether the filter carries a search term.
func (f Filter) IsSearch() bool {
	return f.Search != ""
}

// Query encodes the filter as upstream query parameters. Order is only sent
// together with sort.
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Sort != "" {
		q.Set("sort", f.Sort)
		if f.Order != "" {
			q.Set("order", f.Order)
		}
	}
	return q
}

// cacheKey is stable for equal filters since url.Values.Encode sorts keys.
func (f Filter) cacheKey() string {
	prefix := cachePrefixList
	if f.IsSearch() {
		prefix = cachePrefixSearch
	}
	return prefix + f.Query().Encode()
}
