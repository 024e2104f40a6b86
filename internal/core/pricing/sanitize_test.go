package pricing

import (
	"encoding/json"
	"testing"

	"grocery-pricing-engine/internal/pkg/common"
)

func TestSanitizeAliasedKeys(t *testing.T) {
	record := common.RawPriceRecord{
		"store_name":    "Kroger",
		"product":       "Large Eggs",
		"package_size":  "dozen",
		"price":         json.Number("2.99"),
		"unit_price":    "$0.25 each",
		"portion_cost":  "0.75",
		"store_type":    "supermarket",
		"store_address": "123 Main St",
		"url":           "https://kroger.com/p/eggs",
	}

	got := Sanitize(record)
	if got.StoreName != "Kroger" {
		t.Errorf("StoreName = %q", got.StoreName)
	}
	if got.ProductName != "Large Eggs" {
		t.Errorf("ProductName = %q", got.ProductName)
	}
	if got.PackagePrice != 2.99 {
		t.Errorf("PackagePrice = %v", got.PackagePrice)
	}
	if got.PortionCost != 0.75 {
		t.Errorf("PortionCost = %v (string coercion)", got.PortionCost)
	}
	if got.StoreType != "mainstream" {
		t.Errorf("StoreType = %q, want mainstream", got.StoreType)
	}
	if got.UnitPrice != "$0.25 each" {
		t.Errorf("UnitPrice = %q", got.UnitPrice)
	}
}

func TestSanitizeMissingAndNegativeValues(t *testing.T) {
	got := Sanitize(common.RawPriceRecord{
		"packagePrice": -3.99,
		"portionCost":  -1.0,
	})
	if got.PackagePrice != 0 {
		t.Errorf("PackagePrice = %v, want 0 for negative input", got.PackagePrice)
	}
	if got.PortionCost != 0 {
		t.Errorf("PortionCost = %v, want 0 for negative input", got.PortionCost)
	}

	empty := Sanitize(common.RawPriceRecord{})
	if empty.PackagePrice != 0 || empty.StoreName != "" {
		t.Errorf("empty record sanitized to %+v", empty)
	}
}

func TestSanitizeNumericUnitPriceKeptAsText(t *testing.T) {
	got := Sanitize(common.RawPriceRecord{"unitPrice": json.Number("7.99")})
	if got.UnitPrice != "7.99" {
		t.Errorf("UnitPrice = %q, want \"7.99\"", got.UnitPrice)
	}
}

func TestNormalizeStoreType(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Asian", "ethnic"},
		{"international", "ethnic"},
		{"gourmet", "specialty"},
		{"warehouse", "mainstream"},
		{"whatever", "mainstream"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeStoreType(tt.in); got != tt.want {
			t.Errorf("normalizeStoreType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecordIngredient(t *testing.T) {
	if got := RecordIngredient(common.RawPriceRecord{"ingredient_name": "tofu"}); got != "tofu" {
		t.Errorf("RecordIngredient = %q", got)
	}
	if got := RecordIngredient(common.RawPriceRecord{}); got != "" {
		t.Errorf("RecordIngredient = %q, want empty", got)
	}
}

func TestConfidenceScoring(t *testing.T) {
	full := common.SanitizedPriceOption{
		PackagePrice: 2.99,
		ProductName:  "Large Eggs",
		StoreAddress: "123 Main St",
		PackageSize:  "dozen",
		SourceURL:    "https://kroger.com",
	}
	if full.FieldScore() != 9 {
		t.Errorf("FieldScore = %d, want 9", full.FieldScore())
	}
	if full.Confidence() != 1 {
		t.Errorf("Confidence = %v, want 1", full.Confidence())
	}
	if full.ConfidenceLevel() != "high" {
		t.Errorf("ConfidenceLevel = %q", full.ConfidenceLevel())
	}

	medium := common.SanitizedPriceOption{PackagePrice: 2.99, ProductName: "Eggs"}
	if medium.FieldScore() != 5 || medium.ConfidenceLevel() != "medium" {
		t.Errorf("score=%d level=%q, want 5/medium", medium.FieldScore(), medium.ConfidenceLevel())
	}

	low := common.SanitizedPriceOption{PackagePrice: 2.99}
	if low.FieldScore() != 3 || low.ConfidenceLevel() != "low" {
		t.Errorf("score=%d level=%q, want 3/low", low.FieldScore(), low.ConfidenceLevel())
	}
}

func TestEstimatePackagePrice(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"chicken thighs", 7.99},
		{"ribeye steak", 11.99},
		{"atlantic salmon", 10.99},
		{"yellow onion", 2.49},
		{"smoked paprika", 4.49},
		{"something unusual", 4.99},
	}
	for _, tt := range tests {
		if got := EstimatePackagePrice(tt.name); got != tt.want {
			t.Errorf("EstimatePackagePrice(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTextFallbackPrices(t *testing.T) {
	raw := `I couldn't produce structured data, but here's what I found:
- Chicken breast is about $8.99 at Walmart
- Onions run $1.48 for a bag
Nothing on saffron, sorry.`

	ingredients := []common.IngredientRequest{
		{Name: "chicken breast", Amount: 1, Unit: "lb"},
		{Name: "onion", Amount: 2, Unit: "each"},
		{Name: "saffron", Amount: 1, Unit: "pinch"},
	}

	found := TextFallbackPrices(raw, ingredients)
	if len(found) != 2 {
		t.Fatalf("found %d ingredients, want 2", len(found))
	}
	if found["chicken breast"].PackagePrice != 8.99 {
		t.Errorf("chicken = %v", found["chicken breast"].PackagePrice)
	}
	if found["onion"].PackagePrice != 1.48 {
		t.Errorf("onion = %v", found["onion"].PackagePrice)
	}
	if _, ok := found["saffron"]; ok {
		t.Error("saffron has no dollar amount on its line")
	}
}

func TestTextFallbackPricesEmptyInput(t *testing.T) {
	if found := TextFallbackPrices("", []common.IngredientRequest{{Name: "milk"}}); len(found) != 0 {
		t.Errorf("found = %v, want none", found)
	}
}
