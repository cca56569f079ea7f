package catalog

import (
	"cmp"
	"slices"
	"strings"

	"repairshop/internal/domain/models"

	"github.com/shopspring/decimal"
)

type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets is the filter sidebar metadata for one kind.
type Facets struct {
	Categories []FacetCount     `json:"categories"`
	Brands     []FacetCount     `json:"brands"`
	InStock    int              `json:"inStock"`
	OutOfStock int              `json:"outOfStock"`
	LowStock   int              `json:"lowStock"`
	PriceMin   *decimal.Decimal `json:"priceMin"`
	PriceMax   *decimal.Decimal `json:"priceMax"`
}

// Summarize counts categories, brands and stock states over items. Category
// and brand buckets fold case the same way the filters do; each bucket is
// labelled with the first spelling seen in store order.
func Summarize(items []models.CatalogItem) Facets {
	categories := newTally()
	brands := newTally()
	var out Facets

	for _, it := range items {
		categories.add(it.Category)
		brands.add(it.Brand)

		a := DeriveAvailability(it)
		if a.InStock {
			out.InStock++
		} else {
			out.OutOfStock++
		}
		if a.LowStock {
			out.LowStock++
		}

		lo, hi := it.Price, it.Price
		if out.PriceMin == nil || lo.LessThan(*out.PriceMin) {
			out.PriceMin = &lo
		}
		if out.PriceMax == nil || hi.GreaterThan(*out.PriceMax) {
			out.PriceMax = &hi
		}
	}

	out.Categories = categories.counts()
	out.Brands = brands.counts()
	return out
}

type tally struct {
	label map[string]string
	count map[string]int
}

func newTally() tally {
	return tally{label: map[string]string{}, count: map[string]int{}}
}

func (t tally) add(raw string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	key := strings.ToLower(v)
	if _, ok := t.label[key]; !ok {
		t.label[key] = v
	}
	t.count[key]++
}

func (t tally) counts() []FacetCount {
	keys := make([]string, 0, len(t.count))
	for k := range t.count {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, cmp.Compare[string])

	out := make([]FacetCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, FacetCount{Value: t.label[k], Count: t.count[k]})
	}
	return out
}
