package common

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// IngredientRequest is the canonical ingredient shape used everywhere past the
// API boundary. Amount defaults to 1 and Unit to "each" when the source data
// omits them.
type IngredientRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// RawPriceRecord is one untyped record from the price source. Fields may be
// missing or carry strings where numbers are expected; it is never persisted.
type RawPriceRecord map[string]interface{}

// SanitizedPriceOption is a validated price record. PackagePrice is always
// >= 0 and PortionCost is always a finite non-negative number.
type SanitizedPriceOption struct {
	StoreName    string  `json:"storeName,omitempty"`
	ProductName  string  `json:"productName,omitempty"`
	PackageSize  string  `json:"packageSize,omitempty"`
	PackagePrice float64 `json:"packagePrice"`
	UnitPrice    string  `json:"unitPrice,omitempty"`
	PortionCost  float64 `json:"portionCost"`
	StoreType    string  `json:"storeType,omitempty"`
	StoreAddress string  `json:"storeAddress,omitempty"`
	SourceURL    string  `json:"sourceUrl,omitempty"`
}

// FieldScore is the weighted field-presence heuristic behind confidence:
// package price +3, product name +2, store address +2, package size +1,
// source URL +1.
func (o SanitizedPriceOption) FieldScore() int {
	score := 0
	if o.PackagePrice > 0 {
		score += 3
	}
	if o.ProductName != "" {
		score += 2
	}
	if o.StoreAddress != "" {
		score += 2
	}
	if o.PackageSize != "" {
		score += 1
	}
	if o.SourceURL != "" {
		score += 1
	}
	return score
}

// Confidence maps the field score onto 0..1.
func (o SanitizedPriceOption) Confidence() float64 {
	return math.Min(1, float64(o.FieldScore())/9)
}

// ConfidenceLevel buckets the field score: high >= 7, medium >= 4, else low.
func (o SanitizedPriceOption) ConfidenceLevel() string {
	switch score := o.FieldScore(); {
	case score >= 7:
		return "high"
	case score >= 4:
		return "medium"
	default:
		return "low"
	}
}

// PricingResult is the per-ingredient output of the pricing pipeline.
type PricingResult struct {
	ID            string                 `json:"id"`
	Original      string                 `json:"original"`
	Matched       string                 `json:"matched"`
	EstimatedCost float64                `json:"estimatedCost"`
	PortionCost   float64                `json:"portionCost"`
	PackagePrice  float64                `json:"packagePrice"`
	PackageSize   string                 `json:"packageSize,omitempty"`
	Confidence    float64                `json:"confidence"`
	NeedsReview   bool                   `json:"needsReview"`
	StoreName     string                 `json:"storeName,omitempty"`
	StoreAddress  string                 `json:"storeAddress,omitempty"`
	StoreOptions  []SanitizedPriceOption `json:"storeOptions,omitempty"`
	Alternatives  []SanitizedPriceOption `json:"alternatives,omitempty"`
}

// StoreInfo describes one store in a shopping plan. Built per location, never
// persisted.
type StoreInfo struct {
	Name                  string   `json:"name"`
	Type                  string   `json:"type"` // mainstream | ethnic | specialty
	Address               string   `json:"address,omitempty"`
	EstimatedShoppingTime int      `json:"estimatedShoppingTime"`
	Specialties           []string `json:"specialties,omitempty"`
}

// StoreAssignment maps one ingredient to the store it should be bought at,
// with up to 3 runner-up alternatives.
type StoreAssignment struct {
	Ingredient    string                 `json:"ingredient"`
	AssignedStore string                 `json:"assignedStore"`
	StoreType     string                 `json:"storeType"`
	PackagePrice  float64                `json:"packagePrice"`
	PortionCost   float64                `json:"portionCost"`
	Confidence    string                 `json:"confidence"`
	Alternatives  []SanitizedPriceOption `json:"alternatives,omitempty"`
}

// ShoppingPlan is the optimizer output.
type ShoppingPlan struct {
	PrimaryStore         string            `json:"primaryStore"`
	SecondaryStores      []string          `json:"secondaryStores"`
	Assignments          []StoreAssignment `json:"assignments"`
	Efficiency           int               `json:"efficiency"` // 0..100
	TotalStores          int               `json:"totalStores"`
	EstimatedTimeMinutes int               `json:"estimatedTimeMinutes"`
	TotalCost            float64           `json:"totalCost"`
}

// Aliased field names seen in ingredient payloads from upstream sources and
// older clients.
var (
	nameAliases   = []string{"name", "ingredient", "ingredient_name", "item"}
	amountAliases = []string{"amount", "quantity", "qty"}
	unitAliases   = []string{"unit", "units", "measure"}
)

// NormalizeIngredient collapses the duck-typed ingredient shape (a bare string
// or an object with aliased field names) into an IngredientRequest. It runs
// exactly once, at the API boundary; everything downstream sees the canonical
// type.
func NormalizeIngredient(raw interface{}) IngredientRequest {
	req := IngredientRequest{Amount: 1, Unit: "each"}

	switch v := raw.(type) {
	case string:
		req.Name = strings.TrimSpace(v)
	case map[string]interface{}:
		for _, key := range nameAliases {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				req.Name = strings.TrimSpace(s)
				break
			}
		}
		for _, key := range amountAliases {
			if amt, ok := toFloat(v[key]); ok && amt > 0 {
				req.Amount = amt
				break
			}
		}
		for _, key := range unitAliases {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				req.Unit = strings.ToLower(strings.TrimSpace(s))
				break
			}
		}
	case IngredientRequest:
		req = v
		if req.Amount <= 0 {
			req.Amount = 1
		}
		if req.Unit == "" {
			req.Unit = "each"
		}
	}

	return req
}

// NormalizeIngredients normalizes a raw ingredient list, dropping entries with
// no usable name.
func NormalizeIngredients(raw []interface{}) []IngredientRequest {
	out := make([]IngredientRequest, 0, len(raw))
	for _, r := range raw {
		req := NormalizeIngredient(r)
		if req.Name != "" {
			out = append(out, req)
		}
	}
	return out
}

// toFloat coerces the numeric shapes that survive JSON decoding.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ToFloat is the exported coercion used by the sanitizer.
func ToFloat(v interface{}) (float64, bool) {
	return toFloat(v)
}
