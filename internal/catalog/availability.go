package catalog

import (
	"cmp"
	"slices"

	"repairshop/internal/domain/models"
)

// Availability is derived on every read and never stored.
type Availability struct {
	InStock  bool `json:"inStock"`
	LowStock bool `json:"lowStock"`
}

// DeriveAvailability: low stock means a positive count at or below the reorder threshold.
func DeriveAvailability(item models.CatalogItem) Availability {
	return Availability{
		InStock:  item.InStock > 0,
		LowStock: item.InStock > 0 && item.InStock <= item.MinStock,
	}
}

// FeaturedByStock returns the first n items by stock count, highest first.
// Ties keep store order.
func FeaturedByStock(items []models.CatalogItem, n int) []models.CatalogItem {
	return takeSorted(items, n, func(a, b models.CatalogItem) int {
		return cmp.Compare(b.InStock, a.InStock)
	})
}

// FeaturedServices returns the n cheapest items. Ties keep store order.
func FeaturedServices(items []models.CatalogItem, n int) []models.CatalogItem {
	return takeSorted(items, n, func(a, b models.CatalogItem) int {
		return a.Price.Cmp(b.Price)
	})
}

// Featured applies the fixed policy for kind: services by price, everything else by stock.
func Featured(kind models.Kind, items []models.CatalogItem, n int) []models.CatalogItem {
	if kind == models.KindService {
		return FeaturedServices(items, n)
	}
	return FeaturedByStock(items, n)
}

func takeSorted(items []models.CatalogItem, n int, less func(a, b models.CatalogItem) int) []models.CatalogItem {
	if n <= 0 || len(items) == 0 {
		return []models.CatalogItem{}
	}
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, less)
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
