package portion

import (
	"testing"

	"grocery-pricing-engine/internal/pkg/common"
)

func TestResolveTrustsUpstreamForWholeItems(t *testing.T) {
	r := NewResolver(0)
	option := common.SanitizedPriceOption{
		PackagePrice: 8.99,
		PortionCost:  8.99,
	}
	got := r.Resolve(option, 1, "each", "whole chicken")
	if got != 8.99 {
		t.Errorf("Resolve = %v, want 8.99", got)
	}
}

func TestResolveRejectsEchoedPackagePrice(t *testing.T) {
	// A divisible good whose portion cost equals the package price is a model
	// echo, not a real portion; package-size arithmetic must win.
	r := NewResolver(0)
	option := common.SanitizedPriceOption{
		PackagePrice: 4.99,
		PortionCost:  4.99,
		PackageSize:  "5 lb bag",
	}
	got := r.Resolve(option, 1, "lb", "jasmine rice")
	if got != 1.00 {
		t.Errorf("Resolve = %v, want 1.00", got)
	}
}

func TestResolveTrustsUpstreamWhenClearlyBelowPackage(t *testing.T) {
	r := NewResolver(0)
	option := common.SanitizedPriceOption{
		PackagePrice: 4.00,
		PortionCost:  1.00,
	}
	got := r.Resolve(option, 2, "tbsp", "soy sauce")
	if got != 1.00 {
		t.Errorf("Resolve = %v, want 1.00", got)
	}
}

func TestResolveCountablePackage(t *testing.T) {
	r := NewResolver(0)
	option := common.SanitizedPriceOption{
		PackagePrice: 2.99,
		PackageSize:  "dozen",
	}
	// 3 of 12 eggs; partial items round up to whole eggs.
	got := r.Resolve(option, 3, "each", "eggs")
	if got != 0.75 {
		t.Errorf("Resolve = %v, want 0.75", got)
	}
}

func TestResolveEachAgainstWeightPackage(t *testing.T) {
	r := NewResolver(0)
	option := common.SanitizedPriceOption{
		PackagePrice: 2.49,
		PackageSize:  "3 lb bag",
	}
	// 2 onions at ~150 g each out of a 1360.8 g bag.
	got := r.Resolve(option, 2, "each", "yellow onion")
	if got != 0.55 {
		t.Errorf("Resolve = %v, want 0.55", got)
	}
}

func TestResolveUnitPriceLabel(t *testing.T) {
	r := NewResolver(0)
	option := common.SanitizedPriceOption{
		PackagePrice: 7.99,
		UnitPrice:    "$7.99/lb",
	}
	got := r.Resolve(option, 8, "oz", "ground beef")
	if got != 4.00 {
		t.Errorf("Resolve = %v, want 4.00", got)
	}
}

func TestResolveFractionFallback(t *testing.T) {
	r := NewResolver(0)
	option := common.SanitizedPriceOption{PackagePrice: 5.00}
	got := r.Resolve(option, 2, "tbsp", "mystery sauce")
	if got != DefaultPortionFraction*5.00 {
		t.Errorf("Resolve = %v, want %v", got, DefaultPortionFraction*5.00)
	}
}

func TestResolveCustomFraction(t *testing.T) {
	r := NewResolver(0.1)
	option := common.SanitizedPriceOption{PackagePrice: 10.00}
	if got := r.Resolve(option, 1, "pinch", "paprika"); got != 1.00 {
		t.Errorf("Resolve = %v, want 1.00", got)
	}
}

func TestResolveNeverExceedsPackagePrice(t *testing.T) {
	r := NewResolver(0)
	option := common.SanitizedPriceOption{
		PackagePrice: 5.99,
		UnitPrice:    "$2.00/lb",
	}
	got := r.Resolve(option, 10, "lb", "potatoes")
	if got != 5.99 {
		t.Errorf("Resolve = %v, want clamp at 5.99", got)
	}
}

func TestResolveZeroPackagePrice(t *testing.T) {
	r := NewResolver(0)
	if got := r.Resolve(common.SanitizedPriceOption{}, 1, "lb", "flour"); got != 0 {
		t.Errorf("Resolve = %v, want 0", got)
	}
}

func TestResolveNonPositiveQuantityDefaultsToOne(t *testing.T) {
	r := NewResolver(0)
	option := common.SanitizedPriceOption{
		PackagePrice: 2.99,
		PackageSize:  "dozen",
	}
	got := r.Resolve(option, 0, "each", "eggs")
	if got != 0.25 {
		t.Errorf("Resolve = %v, want 0.25", got)
	}
}
