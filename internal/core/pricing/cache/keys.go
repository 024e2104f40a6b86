// Package cache is the tiered price cache keyed by (ingredient, location).
// Entries are fresh inside the TTL, servable-but-flagged inside the longer
// stale window, and purged after that.
package cache

import (
	"regexp"
	"strings"
)

// maxKeyLen caps key length so oversized upstream text cannot produce
// unbounded keys.
const maxKeyLen = 100

var zipKeyPattern = regexp.MustCompile(`\b(\d{5})\b`)

// IngredientKey normalizes an ingredient name for lookups: case-folded,
// whitespace-collapsed, length-capped. Cosmetic differences in upstream text
// must not cause cache misses.
func IngredientKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.Join(strings.Fields(key), " ")
	if len(key) > maxKeyLen {
		key = key[:maxKeyLen]
	}
	return key
}

// LocationKey normalizes a location: a 5-digit ZIP wins when present,
// otherwise the lower-cased city string.
func LocationKey(location string) string {
	if m := zipKeyPattern.FindStringSubmatch(location); m != nil {
		return m[1]
	}
	key := strings.ToLower(strings.TrimSpace(location))
	key = strings.Join(strings.Fields(key), " ")
	if len(key) > maxKeyLen {
		key = key[:maxKeyLen]
	}
	return key
}
