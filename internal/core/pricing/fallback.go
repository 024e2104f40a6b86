package pricing

import (
	"regexp"
	"strconv"
	"strings"

	"grocery-pricing-engine/internal/pkg/common"
)

// categoryEstimate is a typical package price for an ingredient category,
// used when the upstream gave us nothing at all.
type categoryEstimate struct {
	keywords []string
	price    float64
}

// Rough US supermarket shelf prices. Matching is first-hit, so keep the more
// specific categories before the broad ones.
var categoryEstimates = []categoryEstimate{
	{[]string{"saffron", "vanilla bean", "truffle"}, 12.99},
	{[]string{"beef", "steak", "lamb", "pork loin"}, 11.99},
	{[]string{"salmon", "shrimp", "fish", "tuna", "scallop"}, 10.99},
	{[]string{"chicken", "turkey", "pork", "bacon", "sausage"}, 7.99},
	{[]string{"cheese", "butter", "yogurt", "cream"}, 4.99},
	{[]string{"oil", "vinegar", "sauce", "paste"}, 5.49},
	{[]string{"spice", "pepper", "cumin", "paprika", "oregano", "seasoning", "powder"}, 4.49},
	{[]string{"rice", "pasta", "flour", "noodle", "bread", "grain", "oat"}, 3.49},
	{[]string{"milk", "egg", "tofu"}, 3.99},
	{[]string{"canned", "beans", "broth", "stock"}, 2.79},
	{[]string{"onion", "garlic", "tomato", "potato", "carrot", "celery", "lettuce", "herb", "cilantro", "parsley"}, 2.49},
}

// defaultEstimatePrice covers ingredients no category matches.
const defaultEstimatePrice = 4.99

// fallbackConfidence marks heuristic estimates; always below the review
// threshold.
const fallbackConfidence = 0.3

// unavailableConfidence marks results where even the heuristic had nothing
// to anchor on.
const unavailableConfidence = 0.1

// EstimatePackagePrice guesses a package price for an ingredient by category
// keyword.
func EstimatePackagePrice(ingredientName string) float64 {
	lower := strings.ToLower(ingredientName)
	for _, cat := range categoryEstimates {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.price
			}
		}
	}
	return defaultEstimatePrice
}

var (
	dollarPattern = regexp.MustCompile(`\$\s*(\d+(?:\.\d{1,2})?)`)
)

// TextFallbackPrices is the last parsing resort when no JSON array could be
// extracted: scan the raw text line by line for an ingredient mention
// followed by a dollar amount. Returns only the ingredients it found.
func TextFallbackPrices(raw string, ingredients []common.IngredientRequest) map[string]common.SanitizedPriceOption {
	found := make(map[string]common.SanitizedPriceOption)
	if strings.TrimSpace(raw) == "" {
		return found
	}

	lines := strings.Split(raw, "\n")
	for _, ing := range ingredients {
		token := firstToken(ing.Name)
		if token == "" {
			continue
		}
		for _, line := range lines {
			lower := strings.ToLower(line)
			if !strings.Contains(lower, token) {
				continue
			}
			m := dollarPattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			price, err := strconv.ParseFloat(m[1], 64)
			if err != nil || price <= 0 {
				continue
			}
			found[ing.Name] = common.SanitizedPriceOption{
				PackagePrice: price,
			}
			break
		}
	}
	return found
}

func firstToken(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
