package pricing

import (
	"fmt"
	"math"
	"strings"

	"grocery-pricing-engine/internal/pkg/common"
)

// Field aliases seen in price-source output. The model is asked for exact
// keys but drifts between camelCase, snake_case and synonyms.
var (
	storeNameKeys    = []string{"storeName", "store_name", "store"}
	productNameKeys  = []string{"productName", "product_name", "product", "item"}
	packageSizeKeys  = []string{"packageSize", "package_size", "size"}
	packagePriceKeys = []string{"packagePrice", "package_price", "price"}
	unitPriceKeys    = []string{"unitPrice", "unit_price"}
	portionCostKeys  = []string{"portionCost", "portion_cost"}
	storeTypeKeys    = []string{"storeType", "store_type"}
	addressKeys      = []string{"storeAddress", "store_address", "address"}
	sourceURLKeys    = []string{"sourceUrl", "source_url", "url", "link"}
	ingredientKeys   = []string{"ingredient", "ingredientName", "ingredient_name"}
)

// Sanitize converts one untyped upstream record into a SanitizedPriceOption.
// Package price is clamped to >= 0 and the portion cost is always a finite
// non-negative number; nothing downstream ever sees NaN or a missing value.
func Sanitize(record common.RawPriceRecord) common.SanitizedPriceOption {
	option := common.SanitizedPriceOption{
		StoreName:    firstString(record, storeNameKeys),
		ProductName:  firstString(record, productNameKeys),
		PackageSize:  firstString(record, packageSizeKeys),
		UnitPrice:    stringOrNumber(record, unitPriceKeys),
		StoreType:    normalizeStoreType(firstString(record, storeTypeKeys)),
		StoreAddress: firstString(record, addressKeys),
		SourceURL:    firstString(record, sourceURLKeys),
	}

	if price, ok := firstFloat(record, packagePriceKeys); ok && price >= 0 {
		option.PackagePrice = price
	}
	if cost, ok := firstFloat(record, portionCostKeys); ok && cost >= 0 && !math.IsInf(cost, 0) {
		option.PortionCost = cost
	}

	return option
}

// RecordIngredient extracts the ingredient name a record claims to price.
func RecordIngredient(record common.RawPriceRecord) string {
	return firstString(record, ingredientKeys)
}

func firstString(record common.RawPriceRecord, keys []string) string {
	for _, key := range keys {
		if s, ok := record[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// stringOrNumber keeps unit-price labels as text: "$7.99/lb" stays intact
// and a bare number is formatted so the label parser can still reject it.
func stringOrNumber(record common.RawPriceRecord, keys []string) string {
	for _, key := range keys {
		switch v := record[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		default:
			if f, ok := common.ToFloat(v); ok {
				return fmt.Sprintf("%g", f)
			}
		}
	}
	return ""
}

func firstFloat(record common.RawPriceRecord, keys []string) (float64, bool) {
	for _, key := range keys {
		if v, exists := record[key]; exists {
			if f, ok := common.ToFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func normalizeStoreType(storeType string) string {
	switch strings.ToLower(strings.TrimSpace(storeType)) {
	case "ethnic", "asian", "international":
		return "ethnic"
	case "specialty", "gourmet", "health":
		return "specialty"
	case "mainstream", "supermarket", "grocery", "warehouse", "discount":
		return "mainstream"
	case "":
		return ""
	default:
		return "mainstream"
	}
}
