package portion

import (
	"math"

	"go.uber.org/zap"

	"grocery-pricing-engine/internal/pkg/common"
	"grocery-pricing-engine/internal/pkg/money"
)

// DefaultPortionFraction is the last-resort portion estimate: the fraction of
// a package a recipe typically consumes when no structured size data exists.
// Empirical constant; keep it named and overridable, not inlined.
const DefaultPortionFraction = 0.25

// Resolver computes portion costs from sanitized price options.
type Resolver struct {
	portionFraction float64
}

// NewResolver creates a resolver. A non-positive fraction falls back to
// DefaultPortionFraction.
func NewResolver(portionFraction float64) *Resolver {
	if portionFraction <= 0 || portionFraction > 1 {
		portionFraction = DefaultPortionFraction
	}
	return &Resolver{portionFraction: portionFraction}
}

// Resolve returns the dollar cost of the needed quantity. It always returns a
// finite value >= 0 and never exceeds the package price (shoppers buy at most
// one package per recipe line; whole items cap at package price anyway).
//
// Strategies, first satisfied wins:
//  1. trust the upstream portion cost (whole items, or clearly below package)
//  2. deterministic package-size arithmetic
//  3. unit-price label parsing ("$7.99/lb")
//  4. linear gram-based fallback
//  5. portionFraction * packagePrice
func (r *Resolver) Resolve(option common.SanitizedPriceOption, neededQty float64, neededUnit, ingredientName string) float64 {
	if neededQty <= 0 || math.IsNaN(neededQty) || math.IsInf(neededQty, 0) {
		neededQty = 1
	}
	pkgPrice := option.PackagePrice
	if pkgPrice <= 0 || math.IsNaN(pkgPrice) || math.IsInf(pkgPrice, 0) {
		return 0
	}

	if cost, ok := r.trustUpstream(option, neededQty, neededUnit, ingredientName); ok {
		return r.clamp(cost, pkgPrice)
	}
	if cost, ok := r.fromPackageSize(option, neededQty, neededUnit, ingredientName); ok {
		return r.clamp(cost, pkgPrice)
	}
	if cost, ok := r.fromUnitPriceLabel(option, neededQty, neededUnit, ingredientName); ok {
		return r.clamp(cost, pkgPrice)
	}
	if cost, ok := r.fromGramEstimate(option, neededQty, neededUnit, ingredientName); ok {
		return r.clamp(cost, pkgPrice)
	}

	common.LogDebug("portion cost fell back to package fraction",
		zap.String("ingredient", ingredientName),
		zap.Float64("fraction", r.portionFraction),
	)
	return money.RoundCents(r.portionFraction * pkgPrice)
}

// trustUpstream accepts the model-supplied portion cost when it is plausible:
// positive, at most the package price, and either a whole item or clearly
// below package price. The 90% guard catches models echoing the package
// price as the portion cost for divisible goods.
func (r *Resolver) trustUpstream(option common.SanitizedPriceOption, neededQty float64, neededUnit, ingredientName string) (float64, bool) {
	pc := option.PortionCost
	if pc <= 0 || math.IsNaN(pc) || math.IsInf(pc, 0) || pc > option.PackagePrice {
		return 0, false
	}
	if IsWholeItem(ingredientName, neededUnit, neededQty) || pc < 0.9*option.PackagePrice {
		return pc, true
	}
	return 0, false
}

// fromPackageSize computes (needed qty in the package's unit) / package qty *
// package price.
func (r *Resolver) fromPackageSize(option common.SanitizedPriceOption, neededQty float64, neededUnit, ingredientName string) (float64, bool) {
	pkg, ok := ParsePackageSize(option.PackageSize)
	if !ok || pkg.Qty <= 0 {
		return 0, false
	}

	pkgKind, _, _ := LookupUnit(pkg.Unit)
	neededKind, _, neededKnown := LookupUnit(neededUnit)

	// Countable package, countable need: pay per item, whole items only.
	if pkgKind == KindCount && (!neededKnown || neededKind == KindCount) {
		items, _ := Convert(neededQty, "each", "each")
		if neededKnown {
			if converted, ok := Convert(neededQty, neededUnit, "each"); ok {
				items = converted
			}
		}
		return option.PackagePrice / pkg.Qty * math.Ceil(items), true
	}

	// "each" need against a weight/volume package goes through the
	// per-item weight table: 1 onion ~ 150 g of a 3 lb bag.
	if (!neededKnown || neededKind == KindCount) && pkgKind == KindMass {
		grams, ok := EachToGrams(ingredientName)
		if !ok {
			return 0, false
		}
		pkgGrams, _, _ := ToCanonical(pkg.Qty, pkg.Unit)
		if pkgGrams <= 0 {
			return 0, false
		}
		return neededQty * grams / pkgGrams * option.PackagePrice, true
	}

	converted, ok := Convert(neededQty, neededUnit, pkg.Unit)
	if !ok {
		return 0, false
	}
	return converted / pkg.Qty * option.PackagePrice, true
}

// fromUnitPriceLabel parses labels like "$7.99/lb" or "0.59 per bulb" and
// multiplies by the needed quantity converted into the label's unit.
func (r *Resolver) fromUnitPriceLabel(option common.SanitizedPriceOption, neededQty float64, neededUnit, ingredientName string) (float64, bool) {
	up, ok := ParseUnitPrice(option.UnitPrice)
	if !ok {
		return 0, false
	}

	if converted, ok := Convert(neededQty, neededUnit, up.Unit); ok {
		return up.Price * converted, true
	}

	// "each" need against a by-weight unit price, via the weight table.
	labelKind, _, _ := LookupUnit(up.Unit)
	neededKind, _, neededKnown := LookupUnit(neededUnit)
	if (!neededKnown || neededKind == KindCount) && labelKind == KindMass {
		grams, ok := EachToGrams(ingredientName)
		if !ok {
			return 0, false
		}
		perUnitGrams, _, _ := ToCanonical(1, up.Unit)
		if perUnitGrams <= 0 {
			return 0, false
		}
		return up.Price * neededQty * grams / perUnitGrams, true
	}

	return 0, false
}

// fromGramEstimate converts both needed and package quantities to grams and
// prices linearly. Milliliters are treated as grams, close enough for
// groceries.
func (r *Resolver) fromGramEstimate(option common.SanitizedPriceOption, neededQty float64, neededUnit, ingredientName string) (float64, bool) {
	pkg, ok := ParsePackageSize(option.PackageSize)
	if !ok || pkg.Qty <= 0 {
		return 0, false
	}

	pkgCanonical, pkgKind, ok := ToCanonical(pkg.Qty, pkg.Unit)
	if !ok || pkgCanonical <= 0 {
		return 0, false
	}

	if pkgKind == KindCount {
		return option.PackagePrice / pkgCanonical * math.Ceil(neededQty), true
	}

	neededGrams, ok := toGrams(neededQty, neededUnit, ingredientName)
	if !ok {
		return 0, false
	}
	return option.PackagePrice / pkgCanonical * neededGrams, true
}

// toGrams converts a quantity to grams, routing countable units through the
// per-item weight table.
func toGrams(qty float64, unit, ingredientName string) (float64, bool) {
	kind, _, known := LookupUnit(unit)
	if !known || kind == KindCount {
		grams, ok := EachToGrams(ingredientName)
		if !ok {
			return 0, false
		}
		return qty * grams, true
	}
	canonical, _, ok := ToCanonical(qty, unit)
	return canonical, ok
}

// clamp bounds a cost to [0, packagePrice] and rounds to cents.
func (r *Resolver) clamp(cost, pkgPrice float64) float64 {
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return 0
	}
	if cost > pkgPrice {
		cost = pkgPrice
	}
	return money.RoundCents(cost)
}
