package catalog

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// Sort orders accepted by the listing pipeline. Anything else (including the
// empty string) preserves upstream order.
const (
	SortPriceAsc   = "price-asc"
	SortPriceDesc  = "price-desc"
	SortNameAsc    = "name-asc"
	SortNameDesc   = "name-desc"
	SortRatingDesc = "rating-desc"
	SortNewest     = "newest"
)

// Filter is the ephemeral listing state carried in URL query parameters.
// The URL is the source of truth: a Filter is re-derived on every request
// and never stored.
type Filter struct {
	Category string
	Search   string
	SortBy   string
	Brand    string
	MinPrice decimal.NullDecimal
	MaxPrice decimal.NullDecimal
	Rating   decimal.NullDecimal
	Page     int
}

// ParseFilter derives a Filter from request query parameters. Numeric fields
// parse leniently: an absent or unparseable value is simply unset. Page
// defaults to 1.
func ParseFilter(values url.Values) Filter {
	f := Filter{
		Category: values.Get("category"),
		Search:   values.Get("search"),
		SortBy:   values.Get("sortBy"),
		Brand:    values.Get("brand"),
		MinPrice: parseNullDecimal(values.Get("minPrice")),
		MaxPrice: parseNullDecimal(values.Get("maxPrice")),
		Rating:   parseNullDecimal(values.Get("rating")),
		Page:     1,
	}
	if p, err := strconv.Atoi(values.Get("page")); err == nil && p > 1 {
		f.Page = p
	}
	return f
}

func parseNullDecimal(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
