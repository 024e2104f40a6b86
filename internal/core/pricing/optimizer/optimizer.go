// Package optimizer assigns every ingredient to a store, minimizing distinct
// store visits while preferring the shopper's primary store.
package optimizer

import (
	"sort"
	"strings"

	"grocery-pricing-engine/internal/pkg/common"
	"grocery-pricing-engine/internal/pkg/money"
)

// maxAlternatives caps the runner-up candidates kept per assignment.
const maxAlternatives = 3

// interStoreTravelMinutes is the travel assumption added per extra store.
const interStoreTravelMinutes = 10

// specialtyKeywords mark ingredients unlikely to be stocked at mainstream
// chains; matching is by substring against the ingredient name.
var specialtyKeywords = []string{
	"dashi", "miso", "gochujang", "gochugaru", "sumac", "za'atar", "zaatar",
	"tahini", "harissa", "fish sauce", "kimchi", "mirin", "shaoxing",
	"tamarind", "galangal", "lemongrass", "kaffir", "furikake", "nori",
	"wakame", "kombu", "bonito", "doubanjiang", "ghee", "paneer", "garam masala",
	"pandan", "shiso", "yuzu", "sambal",
}

// shoppingTimeByType estimates minutes spent inside one store.
var shoppingTimeByType = map[string]int{
	"mainstream": 30,
	"ethnic":     25,
	"specialty":  20,
}

// IsSpecialtyIngredient reports whether an ingredient needs an ethnic or
// specialty store.
func IsSpecialtyIngredient(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range specialtyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Optimize builds a shopping plan from per-ingredient price options. With no
// pricing data at all it returns a zeroed plan rather than guessing; that is
// the fail-safe contract, not an error.
func Optimize(ingredients []common.IngredientRequest, preferredStore, location string, options map[string][]common.SanitizedPriceOption) common.ShoppingPlan {
	plan := common.ShoppingPlan{
		SecondaryStores: []string{},
		Assignments:     []common.StoreAssignment{},
	}

	if len(ingredients) == 0 || !hasAnyOption(options) {
		return plan
	}

	for _, ing := range ingredients {
		candidates := options[ing.Name]
		if len(candidates) == 0 {
			continue
		}

		chosen, rest := choose(ing, candidates, preferredStore)
		if len(rest) > maxAlternatives {
			rest = rest[:maxAlternatives]
		}

		plan.Assignments = append(plan.Assignments, common.StoreAssignment{
			Ingredient:    ing.Name,
			AssignedStore: chosen.StoreName,
			StoreType:     storeType(chosen),
			PackagePrice:  chosen.PackagePrice,
			PortionCost:   chosen.PortionCost,
			Confidence:    chosen.ConfidenceLevel(),
			Alternatives:  rest,
		})
	}

	if len(plan.Assignments) == 0 {
		return plan
	}

	plan.PrimaryStore = primaryStore(plan.Assignments, preferredStore)

	// Aggregate metrics over the distinct stores actually visited.
	storeTypes := make(map[string]string)
	atPrimary := 0
	for _, a := range plan.Assignments {
		if a.AssignedStore == "" {
			continue
		}
		storeTypes[a.AssignedStore] = a.StoreType
		if a.AssignedStore == plan.PrimaryStore {
			atPrimary++
		}
	}

	plan.TotalStores = len(storeTypes)
	plan.Efficiency = int(float64(atPrimary)/float64(len(ingredients))*100 + 0.5)

	for name, typ := range storeTypes {
		if name != plan.PrimaryStore {
			plan.SecondaryStores = append(plan.SecondaryStores, name)
		}
		minutes, ok := shoppingTimeByType[typ]
		if !ok {
			minutes = shoppingTimeByType["mainstream"]
		}
		plan.EstimatedTimeMinutes += minutes
	}
	sort.Strings(plan.SecondaryStores)
	if plan.TotalStores > 1 {
		plan.EstimatedTimeMinutes += interStoreTravelMinutes * (plan.TotalStores - 1)
	}

	plan.TotalCost = totalPackageCost(plan.Assignments)

	return plan
}

// choose picks the candidate for one ingredient: preferred store first, then
// an ethnic store for specialty ingredients, then lowest package price.
func choose(ing common.IngredientRequest, candidates []common.SanitizedPriceOption, preferredStore string) (common.SanitizedPriceOption, []common.SanitizedPriceOption) {
	pick := -1

	if preferredStore != "" {
		for i, c := range candidates {
			if sameStore(c.StoreName, preferredStore) {
				pick = i
				break
			}
		}
	}

	if pick == -1 && IsSpecialtyIngredient(ing.Name) {
		for i, c := range candidates {
			if strings.EqualFold(c.StoreType, "ethnic") {
				pick = i
				break
			}
		}
	}

	if pick == -1 {
		for i, c := range candidates {
			if c.PackagePrice <= 0 {
				continue
			}
			if pick == -1 || c.PackagePrice < candidates[pick].PackagePrice {
				pick = i
			}
		}
	}
	if pick == -1 {
		pick = 0
	}

	rest := make([]common.SanitizedPriceOption, 0, len(candidates)-1)
	for i, c := range candidates {
		if i != pick {
			rest = append(rest, c)
		}
	}
	return candidates[pick], rest
}

// primaryStore is the preferred store when anything was assigned there,
// otherwise the most-assigned store.
func primaryStore(assignments []common.StoreAssignment, preferredStore string) string {
	counts := make(map[string]int)
	for _, a := range assignments {
		if a.AssignedStore == "" {
			continue
		}
		counts[a.AssignedStore]++
		if preferredStore != "" && sameStore(a.AssignedStore, preferredStore) {
			// Canonical casing comes from the assignment, not the request.
			preferredStore = a.AssignedStore
		}
	}
	if counts[preferredStore] > 0 {
		return preferredStore
	}

	best, bestCount := "", 0
	for name, count := range counts {
		if count > bestCount || (count == bestCount && name < best) {
			best, bestCount = name, count
		}
	}
	return best
}

// totalPackageCost sums package prices over distinct products actually
// purchased; the shopper pays full package price, and two recipe lines using
// the same product buy it once.
func totalPackageCost(assignments []common.StoreAssignment) float64 {
	seen := make(map[string]bool)
	var prices []float64
	for _, a := range assignments {
		key := a.AssignedStore + "|" + strings.ToLower(a.Ingredient)
		if a.PackagePrice <= 0 || seen[key] {
			continue
		}
		seen[key] = true
		prices = append(prices, a.PackagePrice)
	}
	return money.Sum(prices...)
}

func storeType(option common.SanitizedPriceOption) string {
	switch strings.ToLower(option.StoreType) {
	case "ethnic":
		return "ethnic"
	case "specialty":
		return "specialty"
	default:
		return "mainstream"
	}
}

func sameStore(a, b string) bool {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	na, nb := norm(a), norm(b)
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

func hasAnyOption(options map[string][]common.SanitizedPriceOption) bool {
	for _, opts := range options {
		if len(opts) > 0 {
			return true
		}
	}
	return false
}
