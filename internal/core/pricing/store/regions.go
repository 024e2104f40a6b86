// Package store validates store names against location-aware chain
// availability and resolves addresses through an optional directory
// collaborator.
package store

import "strings"

// nationalChains are always allowed regardless of state.
var nationalChains = map[string]bool{
	"walmart":     true,
	"target":      true,
	"costco":      true,
	"aldi":        true,
	"sams club":   true,
	"whole foods": true,
}

// regionalChains maps chains with limited footprints to the states they
// operate in. A chain listed here is blocked everywhere else, which stops the
// price source hallucinating a Texas-only chain for a Wisconsin address.
// Chains absent from both tables are allowed (fail open).
var regionalChains = map[string][]string{
	"heb":            {"TX"},
	"publix":         {"FL", "GA", "AL", "SC", "NC", "TN", "VA", "KY"},
	"wegmans":        {"NY", "PA", "NJ", "VA", "MD", "MA", "NC", "DE", "DC"},
	"meijer":         {"MI", "OH", "IN", "IL", "KY", "WI"},
	"h mart":         {"AZ", "CA", "CO", "GA", "IL", "MA", "MD", "NJ", "NY", "OR", "PA", "TX", "VA", "WA"},
	"99 ranch":       {"CA", "WA", "OR", "NV", "AZ", "TX", "NJ", "MD", "MA", "VA"},
	"winco":          {"WA", "OR", "ID", "NV", "CA", "UT", "AZ", "TX", "OK", "MT"},
	"hy-vee":         {"IA", "IL", "KS", "MN", "MO", "NE", "SD", "WI"},
	"giant eagle":    {"PA", "OH", "WV", "IN", "MD"},
	"harris teeter":  {"NC", "SC", "VA", "GA", "MD", "DE", "FL", "DC"},
	"market basket":  {"MA", "NH", "ME", "RI"},
	"king soopers":   {"CO", "WY"},
	"fred meyer":     {"WA", "OR", "ID", "AK"},
	"ralphs":         {"CA"},
	"piggly wiggly":  {"AL", "GA", "SC", "NC", "TN", "WI", "LA", "MS", "FL"},
	"stater bros":    {"CA"},
	"shoprite":       {"NJ", "NY", "CT", "PA", "DE", "MD"},
	"food lion":      {"NC", "SC", "VA", "GA", "MD", "DE", "PA", "TN", "WV", "KY"},
	"mitsuwa":        {"CA", "NJ", "IL", "TX", "HI", "WA"},
	"uwajimaya":      {"WA", "OR"},
	"fiesta mart":    {"TX"},
	"cardenas":       {"CA", "NV", "AZ"},
}

// domainBrands infers a store brand from a source URL hostname.
var domainBrands = map[string]string{
	"walmart.com":          "Walmart",
	"target.com":           "Target",
	"costco.com":           "Costco",
	"aldi.us":              "Aldi",
	"samsclub.com":         "Sam's Club",
	"wholefoodsmarket.com": "Whole Foods",
	"kroger.com":           "Kroger",
	"traderjoes.com":       "Trader Joe's",
	"publix.com":           "Publix",
	"safeway.com":          "Safeway",
	"albertsons.com":       "Albertsons",
	"heb.com":              "H-E-B",
	"wegmans.com":          "Wegmans",
	"meijer.com":           "Meijer",
	"hmart.com":            "H Mart",
	"hy-vee.com":           "Hy-Vee",
	"wincofoods.com":       "WinCo Foods",
	"foodlion.com":         "Food Lion",
	"shoprite.com":         "ShopRite",
	"99ranch.com":          "99 Ranch Market",
	"giantfood.com":        "Giant Food",
	"sprouts.com":          "Sprouts Farmers Market",
}

// zipRange maps a 3-digit ZIP prefix range to a state.
type zipRange struct {
	lo, hi int
	state  string
}

var zipRanges = []zipRange{
	{10, 27, "MA"}, {28, 29, "RI"}, {30, 38, "NH"}, {39, 49, "ME"},
	{50, 59, "VT"}, {60, 69, "CT"}, {70, 89, "NJ"}, {100, 149, "NY"},
	{150, 196, "PA"}, {197, 199, "DE"}, {200, 205, "DC"}, {206, 219, "MD"},
	{220, 246, "VA"}, {247, 268, "WV"}, {270, 289, "NC"}, {290, 299, "SC"},
	{300, 319, "GA"}, {320, 349, "FL"}, {350, 369, "AL"}, {370, 385, "TN"},
	{386, 397, "MS"}, {398, 399, "GA"}, {400, 427, "KY"}, {430, 459, "OH"},
	{460, 479, "IN"}, {480, 499, "MI"}, {500, 528, "IA"}, {530, 549, "WI"},
	{550, 567, "MN"}, {570, 577, "SD"}, {580, 588, "ND"}, {590, 599, "MT"},
	{600, 629, "IL"}, {630, 658, "MO"}, {660, 679, "KS"}, {680, 693, "NE"},
	{700, 714, "LA"}, {716, 729, "AR"}, {730, 749, "OK"}, {750, 799, "TX"},
	{800, 816, "CO"}, {820, 831, "WY"}, {832, 838, "ID"}, {840, 847, "UT"},
	{850, 865, "AZ"}, {870, 884, "NM"}, {885, 885, "TX"}, {889, 898, "NV"},
	{900, 961, "CA"}, {967, 968, "HI"}, {970, 979, "OR"}, {980, 994, "WA"},
	{995, 999, "AK"},
}

var stateCodes = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "DC": true, "FL": true, "GA": true, "HI": true,
	"ID": true, "IL": true, "IN": true, "IA": true, "KS": true, "KY": true,
	"LA": true, "ME": true, "MD": true, "MA": true, "MI": true, "MN": true,
	"MS": true, "MO": true, "MT": true, "NE": true, "NV": true, "NH": true,
	"NJ": true, "NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true, "SD": true,
	"TN": true, "TX": true, "UT": true, "VT": true, "VA": true, "WA": true,
	"WV": true, "WI": true, "WY": true,
}

// normalizeChain folds a chain name for table lookups: lowercase, punctuation
// stripped, whitespace collapsed. "H-E-B" and "HEB" land on the same key.
func normalizeChain(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "'", "")
	n = strings.ReplaceAll(n, ".", "")
	n = strings.Join(strings.Fields(n), " ")

	switch {
	case strings.HasPrefix(n, "h-e-b") || strings.HasPrefix(n, "heb"):
		return "heb"
	case strings.HasPrefix(n, "h mart") || strings.HasPrefix(n, "hmart"):
		return "h mart"
	case strings.HasPrefix(n, "sams club") || strings.HasPrefix(n, "sam s club"):
		return "sams club"
	case strings.HasPrefix(n, "whole foods"):
		return "whole foods"
	case strings.HasPrefix(n, "99 ranch"):
		return "99 ranch"
	case strings.HasPrefix(n, "winco"):
		return "winco"
	case strings.HasPrefix(n, "hyvee") || strings.HasPrefix(n, "hy-vee"):
		return "hy-vee"
	}

	// Regional table keys are prefixes of full trade names ("Giant Eagle
	// Supermarket").
	for key := range regionalChains {
		if strings.HasPrefix(n, key) {
			return key
		}
	}
	for key := range nationalChains {
		if strings.HasPrefix(n, key) {
			return key
		}
	}
	return n
}
