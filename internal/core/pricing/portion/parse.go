package portion

import (
	"regexp"
	"strconv"
	"strings"
)

// UnitPrice is a parsed unit-price label such as "$7.99/lb".
type UnitPrice struct {
	Price float64
	Unit  string
}

// PackageSize is a parsed package size such as "5 lb bag".
type PackageSize struct {
	Qty  float64
	Unit string
}

var (
	// "$7.99/lb", "7.99 / lb", "$0.59 per bulb", "$3.49 each"
	unitPricePattern = regexp.MustCompile(`(?i)\$?\s*(\d+(?:\.\d+)?)\s*(?:/|per\s+)\s*([a-z][a-z .]*)`)
	eachPricePattern = regexp.MustCompile(`(?i)\$?\s*(\d+(?:\.\d+)?)\s+(each|ea)\b`)

	// "5 lb", "16 oz", "1.5 L", "12 count", "dozen"
	packageSizePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*([a-z][a-z .]*)`)
	dozenPattern       = regexp.MustCompile(`(?i)\bdozen\b`)
)

// ParseUnitPrice parses a unit-price label into price and unit. Labels the
// patterns do not cover report failure and the resolver falls through.
func ParseUnitPrice(label string) (UnitPrice, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return UnitPrice{}, false
	}

	if m := unitPricePattern.FindStringSubmatch(label); m != nil {
		price, err := strconv.ParseFloat(m[1], 64)
		if err != nil || price < 0 {
			return UnitPrice{}, false
		}
		unit := NormalizeUnit(m[2])
		if _, _, ok := LookupUnit(unit); !ok {
			return UnitPrice{}, false
		}
		return UnitPrice{Price: price, Unit: unit}, true
	}

	if m := eachPricePattern.FindStringSubmatch(label); m != nil {
		price, err := strconv.ParseFloat(m[1], 64)
		if err != nil || price < 0 {
			return UnitPrice{}, false
		}
		return UnitPrice{Price: price, Unit: "each"}, true
	}

	return UnitPrice{}, false
}

// ParsePackageSize parses a package-size label into quantity and unit.
func ParsePackageSize(label string) (PackageSize, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return PackageSize{}, false
	}

	if dozenPattern.MatchString(label) && !packageSizePattern.MatchString(label) {
		return PackageSize{Qty: 12, Unit: "each"}, true
	}

	m := packageSizePattern.FindStringSubmatch(label)
	if m == nil {
		return PackageSize{}, false
	}
	qty, err := strconv.ParseFloat(m[1], 64)
	if err != nil || qty <= 0 {
		return PackageSize{}, false
	}

	// Trailing descriptors ("5 lb bag") reduce to the leading recognized
	// unit; two-word units like "fl oz" are tried before single words.
	words := strings.Fields(NormalizeUnit(m[2]))
	if len(words) >= 2 {
		pair := words[0] + " " + words[1]
		if _, _, ok := LookupUnit(pair); ok {
			return PackageSize{Qty: qty, Unit: pair}, true
		}
	}
	if len(words) >= 1 {
		if _, _, ok := LookupUnit(words[0]); ok {
			return PackageSize{Qty: qty, Unit: words[0]}, true
		}
	}

	return PackageSize{}, false
}
