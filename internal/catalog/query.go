package catalog

import (
	"cmp"
	"slices"
	"strings"

	"repairshop/internal/domain/models"
)

type SortField string

const (
	SortNone    SortField = ""
	SortName    SortField = "name"
	SortPrice   SortField = "price"
	SortStock   SortField = "stock"
	SortCreated SortField = "createdAt"
)

// SortSpec picks the ordering of a result set. The zero value keeps store order.
type SortSpec struct {
	Field SortField `json:"field"`
	Desc  bool      `json:"desc"`
}

// PageRequest is 1-based; PerPage <= 0 falls back to DefaultPerPage.
type PageRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// ItemView is a catalog row with its derived availability.
type ItemView struct {
	models.CatalogItem
	Availability Availability `json:"availability"`
}

// PageResult is one page of a catalog query.
type PageResult struct {
	Data       []ItemView `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewItemView attaches derived availability to item.
func NewItemView(item models.CatalogItem) ItemView {
	return ItemView{CatalogItem: item, Availability: DeriveAvailability(item)}
}

// Query filters, sorts and paginates items. items must be in store order; the
// input slice is never modified.
func Query(items []models.CatalogItem, f FilterSet, page PageRequest, sort SortSpec) PageResult {
	filtered := Filter(items, f)
	SortItems(filtered, sort)

	p := Paginate(len(filtered), page.PerPage, page.Page)
	lo, hi := p.Bounds()

	data := make([]ItemView, 0, hi-lo)
	for _, it := range filtered[lo:hi] {
		data = append(data, NewItemView(it))
	}
	return PageResult{Data: data, Pagination: p}
}

// SortItems sorts in place. The sort is stable in both directions: items that
// compare equal keep their relative order.
func SortItems(items []models.CatalogItem, sort SortSpec) {
	compare := comparator(sort.Field)
	if compare == nil {
		return
	}
	if sort.Desc {
		asc := compare
		compare = func(a, b models.CatalogItem) int { return asc(b, a) }
	}
	slices.SortStableFunc(items, compare)
}

func comparator(field SortField) func(a, b models.CatalogItem) int {
	switch field {
	case SortName:
		return func(a, b models.CatalogItem) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case SortPrice:
		return func(a, b models.CatalogItem) int { return a.Price.Cmp(b.Price) }
	case SortStock:
		return func(a, b models.CatalogItem) int { return cmp.Compare(a.InStock, b.InStock) }
	case SortCreated:
		return func(a, b models.CatalogItem) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	return nil
}
