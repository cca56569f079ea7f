package catalog

import (
	"net/url"
	"testing"

	"repairshop/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func testItem(id int64, name, category, price string, stock, minStock int) models.CatalogItem {
	return models.CatalogItem{
		ID:       id,
		Kind:     models.KindPart,
		Name:     name,
		Category: category,
		Brand:    "Apple",
		Price:    decimal.RequireFromString(price),
		InStock:  stock,
		MinStock: minStock,
	}
}

func TestMatchesComposesPredicates(t *testing.T) {
	screen := testItem(1, "OLED Screen", "screen", "50", 4, 1)

	assert.True(t, Matches(screen, FilterSet{
		Categories: []string{"screen"},
		PriceMin:   dec("0"),
		PriceMax:   dec("100"),
	}))
	assert.False(t, Matches(screen, FilterSet{Categories: []string{"battery"}}))
	assert.False(t, Matches(screen, FilterSet{Categories: []string{"screen"}, PriceMax: dec("49.99")}))
}

func TestMatchesEmptyFilterIsVacuous(t *testing.T) {
	assert.True(t, Matches(testItem(1, "Anything", "misc", "0", 0, 0), FilterSet{}))
}

func TestMatchesCategoryAndBrandIgnoreCase(t *testing.T) {
	it := testItem(1, "Battery", "Battery", "20", 2, 1)
	assert.True(t, Matches(it, FilterSet{Categories: []string{"battery"}, Brands: []string{"APPLE"}}))
	assert.False(t, Matches(it, FilterSet{Brands: []string{"Samsung"}}))
}

func TestMatchesModel(t *testing.T) {
	it := testItem(1, "Battery", "battery", "20", 2, 1)
	it.Model = "iPhone 13"
	assert.True(t, Matches(it, FilterSet{Models: []string{"iphone 13"}}))
	assert.False(t, Matches(it, FilterSet{Models: []string{"iPhone 14"}}))
}

func TestMatchesPriceRangeInclusive(t *testing.T) {
	it := testItem(1, "Cable", "cable", "10", 1, 0)
	assert.True(t, Matches(it, FilterSet{PriceMin: dec("10"), PriceMax: dec("10")}))
	assert.False(t, Matches(it, FilterSet{PriceMin: dec("10.01")}))
}

func TestMatchesNegativePriceOutsideDefaultRange(t *testing.T) {
	it := testItem(1, "Refund line", "misc", "-1", 1, 0)
	assert.False(t, Matches(it, FilterSet{}))
}

func TestMalformedPriceRangeRejectsEverything(t *testing.T) {
	items := []models.CatalogItem{
		testItem(1, "A", "screen", "50", 3, 0),
		testItem(2, "B", "screen", "5", 3, 0),
	}
	f := FilterSet{PriceMin: dec("100"), PriceMax: dec("10")}

	assert.False(t, f.Valid())
	assert.Empty(t, Filter(items, f))
}

func TestInvalidFlagRejectsEverything(t *testing.T) {
	f := FilterSet{Invalid: true}
	assert.False(t, Matches(testItem(1, "A", "screen", "50", 3, 0), f))
}

func TestMatchesInStockOnly(t *testing.T) {
	f := FilterSet{InStockOnly: true}
	assert.True(t, Matches(testItem(1, "A", "x", "1", 1, 0), f))
	assert.False(t, Matches(testItem(2, "B", "x", "1", 0, 0), f))
}

func TestMatchesLowStockOnly(t *testing.T) {
	f := FilterSet{LowStockOnly: true}
	assert.True(t, Matches(testItem(1, "A", "x", "1", 3, 5), f))
	assert.False(t, Matches(testItem(2, "B", "x", "1", 9, 5), f))
	assert.False(t, Matches(testItem(3, "C", "x", "1", 0, 5), f))
}

func TestCompatibilityBidirectionalSubstring(t *testing.T) {
	compat := "iPhone 15, iPhone 15 Pro"

	assert.True(t, CompatibilityMatches(compat, []string{"iPhone 15"}))
	assert.True(t, CompatibilityMatches(compat, []string{"15 Pro"}))
	assert.True(t, CompatibilityMatches(compat, []string{"apple iphone 15 pro max"}), "item token inside filter token")
	assert.False(t, CompatibilityMatches(compat, []string{"Galaxy S23"}))
	assert.False(t, CompatibilityMatches("", []string{"iPhone"}))
}

func TestMatchesCompatibilityAnyToken(t *testing.T) {
	it := testItem(1, "Screen", "screen", "80", 2, 1)
	it.Compatibility = "Galaxy S22 , Galaxy S23"
	assert.True(t, Matches(it, FilterSet{Compatibility: []string{"Pixel 8", "s23"}}))
	assert.False(t, Matches(it, FilterSet{Compatibility: []string{"Pixel 8"}}))
}

func TestMatchesSearchAcrossFields(t *testing.T) {
	it := testItem(1, "Charging Port", "flex", "15", 2, 1)
	it.Description = "Replacement dock connector"
	it.Compatibility = "iPhone 12"

	for _, term := range []string{"charging", "DOCK", "iphone 12", "flex", "apple"} {
		assert.True(t, Matches(it, FilterSet{Search: term}), term)
	}
	assert.False(t, Matches(it, FilterSet{Search: "battery"}))
	assert.True(t, Matches(it, FilterSet{Search: "   "}))
}

func TestSplitTokens(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, SplitTokens(" a ,, b c ,"))
	assert.Equal(t, []string{}, SplitTokens(""))
}

func TestParseFilterSet(t *testing.T) {
	q := url.Values{}
	q.Add("category", "screen, battery")
	q.Add("category", "camera")
	q.Set("brand", "Apple")
	q.Set("priceMin", "10")
	q.Set("priceMax", "99.5")
	q.Set("inStockOnly", "true")
	q.Add("compatibility", "iPhone 15")
	q.Set("search", "  oled ")

	f := ParseFilterSet(q)
	require.True(t, f.Valid())
	assert.Equal(t, []string{"screen", "battery", "camera"}, f.Categories)
	assert.Equal(t, []string{"Apple"}, f.Brands)
	assert.True(t, f.PriceMin.Equal(decimal.NewFromInt(10)))
	assert.True(t, f.PriceMax.Equal(decimal.RequireFromString("99.5")))
	assert.True(t, f.InStockOnly)
	assert.False(t, f.LowStockOnly)
	assert.Equal(t, []string{"iPhone 15"}, f.Compatibility)
	assert.Equal(t, "oled", f.Search)
}

func TestParseFilterSetAcceptsDisplayedPrices(t *testing.T) {
	f := ParseFilterSet(url.Values{"priceMin": {"$ 15"}, "priceMax": {"1,299.50"}})
	require.True(t, f.Valid())
	assert.True(t, f.PriceMin.Equal(decimal.NewFromInt(15)))
	assert.True(t, f.PriceMax.Equal(decimal.RequireFromString("1299.5")))
}

func TestParseFilterSetMalformedNumberIsInvalid(t *testing.T) {
	f := ParseFilterSet(url.Values{"priceMin": {"cheap"}})
	assert.False(t, f.Valid())
}

func TestParsePageRequest(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, PerPage: 12}, ParsePageRequest(url.Values{}, 12))
	assert.Equal(t, PageRequest{Page: 3, PerPage: 20}, ParsePageRequest(url.Values{"page": {"3"}, "itemsPerPage": {"20"}}, 12))
	assert.Equal(t, PageRequest{Page: 1, PerPage: MaxPerPage}, ParsePageRequest(url.Values{"page": {"-2"}, "itemsPerPage": {"5000"}}, 12))
	assert.Equal(t, PageRequest{Page: 1, PerPage: DefaultPerPage}, ParsePageRequest(url.Values{"itemsPerPage": {"x"}}, 0))
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortSpec{Field: SortPrice}, ParseSort("price", ""))
	assert.Equal(t, SortSpec{Field: SortPrice, Desc: true}, ParseSort("price", "DESC"))
	assert.Equal(t, SortSpec{Field: SortCreated, Desc: true}, ParseSort("-createdAt", "asc"))
	assert.Equal(t, SortSpec{Field: SortStock}, ParseSort("inStock", "asc"))
	assert.Equal(t, SortSpec{}, ParseSort("popularity", "desc"))
}
