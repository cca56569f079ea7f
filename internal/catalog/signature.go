package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"

	"repairshop/internal/domain/models"
)

// signatureKey is the canonical form of a browse query. It is JSON encoded
// before hashing so user supplied values can never run into a neighbouring field.
type signatureKey struct {
	Kind     models.Kind `json:"kind"`
	Valid    bool        `json:"valid"`
	Cats     []string    `json:"cat"`
	Brands   []string    `json:"brand"`
	Models   []string    `json:"model"`
	Compat   []string    `json:"compat"`
	Min      *string     `json:"min"`
	Max      *string     `json:"max"`
	InStock  bool        `json:"stock"`
	LowStock bool        `json:"low"`
	Search   string      `json:"q"`
	Page     int         `json:"page"`
	PerPage  int         `json:"per"`
	Sort     SortField   `json:"sort"`
	Desc     bool        `json:"desc"`
}

// Signature returns a stable cache key for a browse query. List filters are
// sets, so their order and case do not change the key.
func Signature(kind models.Kind, f FilterSet, page PageRequest, sort SortSpec) string {
	key := signatureKey{
		Kind:     kind,
		Valid:    f.Valid(),
		Cats:     normalizeSet(f.Categories),
		Brands:   normalizeSet(f.Brands),
		Models:   normalizeSet(f.Models),
		Compat:   normalizeSet(f.Compatibility),
		InStock:  f.InStockOnly,
		LowStock: f.LowStockOnly,
		Search:   strings.ToLower(strings.TrimSpace(f.Search)),
		Page:     page.Page,
		PerPage:  page.PerPage,
		Sort:     sort.Field,
		Desc:     sort.Desc,
	}
	if f.PriceMin != nil {
		s := f.PriceMin.String()
		key.Min = &s
	}
	if f.PriceMax != nil {
		s := f.PriceMax.String()
		key.Max = &s
	}

	// a struct of strings, ints and bools always encodes
	raw, _ := json.Marshal(key)
	sum := sha256.Sum256(raw)
	return "browse:" + string(kind) + ":" + hex.EncodeToString(sum[:12])
}

func normalizeSet(values []string) []string {
	norm := make([]string, 0, len(values))
	for _, v := range values {
		norm = append(norm, strings.ToLower(strings.TrimSpace(v)))
	}
	slices.Sort(norm)
	return slices.Compact(norm)
}
