package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"repairshop/internal/utils"

	"github.com/shopspring/decimal"
)

// ParseFilterSet builds a FilterSet from request query values. List params
// accept repeated keys and comma separated values. Price bounds may be written
// the way the storefront displays them ("$1,299.00"). Unparseable numbers mark
// the set invalid instead of being dropped, so a broken price bound can never
// widen the result.
func ParseFilterSet(q url.Values) FilterSet {
	f := FilterSet{
		Categories:    listParam(q, "category"),
		Brands:        listParam(q, "brand"),
		Models:        listParam(q, "model"),
		Compatibility: listParam(q, "compatibility"),
		InStockOnly:   flagParam(q.Get("inStockOnly")),
		LowStockOnly:  flagParam(q.Get("lowStockOnly")),
		Search:        strings.TrimSpace(q.Get("search")),
	}

	var ok bool
	if f.PriceMin, ok = decimalParam(q.Get("priceMin")); !ok {
		f.Invalid = true
	}
	if f.PriceMax, ok = decimalParam(q.Get("priceMax")); !ok {
		f.Invalid = true
	}
	return f
}

// ParsePageRequest reads page and itemsPerPage, falling back to defaultPerPage
// and capping at MaxPerPage.
func ParsePageRequest(q url.Values, defaultPerPage int) PageRequest {
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}
	page, err := strconv.Atoi(strings.TrimSpace(q.Get("page")))
	if err != nil || page < 1 {
		page = 1
	}
	per, err := strconv.Atoi(strings.TrimSpace(q.Get("itemsPerPage")))
	if err != nil || per < 1 {
		per = defaultPerPage
	}
	if per > MaxPerPage {
		per = MaxPerPage
	}
	return PageRequest{Page: page, PerPage: per}
}

// ParseSort accepts sortBy values name, price, stock and createdAt. A leading
// "-" on sortBy also means descending.
func ParseSort(sortBy, sortOrder string) SortSpec {
	field := strings.TrimSpace(sortBy)
	desc := strings.EqualFold(strings.TrimSpace(sortOrder), "desc")
	if strings.HasPrefix(field, "-") {
		field = field[1:]
		desc = true
	}

	var f SortField
	switch strings.ToLower(field) {
	case "name":
		f = SortName
	case "price":
		f = SortPrice
	case "stock", "instock", "in_stock":
		f = SortStock
	case "createdat", "created_at", "date":
		f = SortCreated
	default:
		return SortSpec{}
	}
	return SortSpec{Field: f, Desc: desc}
}

func listParam(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		out = append(out, SplitTokens(raw)...)
	}
	return out
}

func flagParam(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func decimalParam(raw string) (*decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	d, err := utils.ParseMoney(raw)
	if err != nil {
		return nil, false
	}
	return &d, true
}
