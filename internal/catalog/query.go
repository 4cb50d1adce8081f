package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// applyFilters runs the client-side post-filter pipeline on one fetched page,
// in order: discounted-price range, minimum rating, brand-or-title substring.
// Bounds are inclusive; an unset bound does not constrain.
func applyFilters(products []Product, f Filter) []Product {
	out := products
	if f.MinPrice.Valid || f.MaxPrice.Valid {
		out = keep(out, func(p Product) bool {
			dp := p.DiscountedPrice()
			if f.MinPrice.Valid && dp.LessThan(f.MinPrice.Decimal) {
				return false
			}
			if f.MaxPrice.Valid && dp.GreaterThan(f.MaxPrice.Decimal) {
				return false
			}
			return true
		})
	}
	if f.Rating.Valid {
		out = keep(out, func(p Product) bool {
			return p.Rating.GreaterThanOrEqual(f.Rating.Decimal)
		})
	}
	if f.Brand != "" {
		q := strings.ToLower(f.Brand)
		out = keep(out, func(p Product) bool {
			return strings.Contains(strings.ToLower(p.Brand), q) ||
				strings.Contains(strings.ToLower(p.Title), q)
		})
	}
	return out
}

func keep(products []Product, pred func(Product) bool) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// applySort orders products in place. An unrecognized or empty sortBy
// preserves the upstream order.
func applySort(products []Product, sortBy string) {
	switch sortBy {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].DiscountedPrice().LessThan(products[j].DiscountedPrice())
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].DiscountedPrice().LessThan(products[i].DiscountedPrice())
		})
	case SortNameAsc:
		c := collate.New(language.English)
		sort.SliceStable(products, func(i, j int) bool {
			return c.CompareString(products[i].Title, products[j].Title) < 0
		})
	case SortNameDesc:
		c := collate.New(language.English)
		sort.SliceStable(products, func(i, j int) bool {
			return c.CompareString(products[j].Title, products[i].Title) < 0
		})
	case SortRatingDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].Rating.LessThan(products[i].Rating)
		})
	case SortNewest:
		// Highest ID first, as a recency proxy.
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].ID < products[i].ID
		})
	}
}
