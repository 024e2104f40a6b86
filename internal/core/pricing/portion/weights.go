package portion

import "strings"

// eachWeights maps produce names to typical single-item weight in grams,
// used when a recipe asks for "1 onion" but the package is priced by weight.
// Values are rough averages for common US supermarket sizes.
var eachWeights = map[string]float64{
	"garlic clove": 3,
	"garlic":       40, // whole bulb
	"egg":          50,
	"shallot":      30,
	"scallion":     15,
	"green onion":  15,
	"onion":        150,
	"tomato":       120,
	"potato":       170,
	"carrot":       60,
	"celery":       40, // one stalk
	"lemon":        100,
	"lime":         70,
	"orange":       180,
	"apple":        180,
	"banana":       120,
	"avocado":      150,
	"bell pepper":  120,
	"jalapeno":     25,
	"cucumber":     200,
	"zucchini":     195,
	"mushroom":     20,
	"ginger":       60,
}

// longest-first match order so "garlic clove" wins over "garlic" and
// "green onion" over "onion".
var eachWeightOrder = []string{
	"garlic clove", "green onion", "bell pepper",
	"scallion", "shallot", "jalapeno", "cucumber", "zucchini", "mushroom",
	"garlic", "tomato", "potato", "carrot", "celery", "orange", "banana",
	"avocado", "ginger", "onion", "lemon", "apple", "lime", "egg",
}

// EachToGrams estimates the weight of one countable item of the named
// ingredient by substring match, e.g. 1 onion ~ 150 g.
func EachToGrams(ingredientName string) (float64, bool) {
	name := strings.ToLower(ingredientName)
	for _, key := range eachWeightOrder {
		if strings.Contains(name, key) {
			return eachWeights[key], true
		}
	}
	return 0, false
}

// wholeItemMarkers name goods usually bought and priced as a single unit,
// where portion cost legitimately equals package price.
//
// This is a known approximation: the list reflects observed traffic and may
// misclassify ingredients from cuisines outside it. Do not extend it without
// product input.
var wholeItemMarkers = []string{"whole", "chicken", "turkey", "fish"}

// smallProduceCutoffGrams bounds what counts as "small produce" for the
// whole-item check.
const smallProduceCutoffGrams = 250

// IsWholeItem reports whether an ingredient is priced as a whole unit: its
// name carries a whole-item marker, or it is a single piece of small produce
// requested by count.
func IsWholeItem(ingredientName, unit string, qty float64) bool {
	name := strings.ToLower(ingredientName)
	for _, marker := range wholeItemMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}

	u := NormalizeUnit(unit)
	if (u == "whole" || u == "each") && qty <= 1 {
		if grams, ok := EachToGrams(ingredientName); ok && grams <= smallProduceCutoffGrams {
			return true
		}
	}
	return false
}
