// Package catalog holds the read-side engine behind storefront browsing and the
// admin inventory views: filter evaluation, stable sorting, pagination and
// availability derivation. Everything here is a pure function of its inputs.
package catalog

import (
	"slices"
	"strings"

	"repairshop/internal/domain/models"

	"github.com/shopspring/decimal"
)

// FilterSet is the full set of user-chosen constraints for one catalog query.
// Empty slices and zero values mean "no constraint".
type FilterSet struct {
	Categories    []string
	Brands        []string
	Models        []string
	PriceMin      *decimal.Decimal
	PriceMax      *decimal.Decimal
	InStockOnly   bool
	LowStockOnly  bool
	Compatibility []string
	Search        string

	// Invalid is set at the boundary when a parameter could not be parsed.
	Invalid bool
}

// Valid reports whether the set can match anything at all. A malformed
// parameter or an inverted price range makes every item fail.
func (f FilterSet) Valid() bool {
	if f.Invalid {
		return false
	}
	if f.PriceMin != nil && f.PriceMax != nil && f.PriceMin.GreaterThan(*f.PriceMax) {
		return false
	}
	return true
}

// Matches decides whether item satisfies every active predicate in f.
// Cheap equality checks run before string matching.
func Matches(item models.CatalogItem, f FilterSet) bool {
	if !f.Valid() {
		return false
	}
	if len(f.Categories) > 0 && !containsFold(f.Categories, item.Category) {
		return false
	}
	if len(f.Brands) > 0 && !containsFold(f.Brands, item.Brand) {
		return false
	}
	if len(f.Models) > 0 && !containsFold(f.Models, item.Model) {
		return false
	}
	if !priceInRange(item.Price, f.PriceMin, f.PriceMax) {
		return false
	}
	if f.InStockOnly && item.InStock <= 0 {
		return false
	}
	if f.LowStockOnly && !DeriveAvailability(item).LowStock {
		return false
	}
	if len(f.Compatibility) > 0 && !CompatibilityMatches(item.Compatibility, f.Compatibility) {
		return false
	}
	if !searchMatches(item, f.Search) {
		return false
	}
	return true
}

// Filter returns the items matching f, in their original order.
func Filter(items []models.CatalogItem, f FilterSet) []models.CatalogItem {
	out := make([]models.CatalogItem, 0, len(items))
	if !f.Valid() {
		return out
	}
	for _, it := range items {
		if Matches(it, f) {
			out = append(out, it)
		}
	}
	return out
}

// CompatibilityMatches splits the item's compatibility string on commas and
// reports whether any wanted token is a case-insensitive substring of any item
// token, or the other way round.
func CompatibilityMatches(itemCompat string, wanted []string) bool {
	tokens := SplitTokens(strings.ToLower(itemCompat))
	for _, w := range wanted {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		for _, t := range tokens {
			if strings.Contains(t, w) || strings.Contains(w, t) {
				return true
			}
		}
	}
	return false
}

// SplitTokens splits a comma separated list, trimming blanks and dropping empties.
func SplitTokens(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsFold(set []string, v string) bool {
	return slices.ContainsFunc(set, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(v))
	})
}

func priceInRange(price decimal.Decimal, lo, hi *decimal.Decimal) bool {
	floor := decimal.Zero
	if lo != nil {
		floor = *lo
	}
	if price.LessThan(floor) {
		return false
	}
	if hi != nil && price.GreaterThan(*hi) {
		return false
	}
	return true
}

func searchMatches(item models.CatalogItem, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{
		item.Name,
		item.Brand,
		item.Description,
		item.Compatibility,
		item.Category,
	}, " "))
	return strings.Contains(haystack, term)
}
