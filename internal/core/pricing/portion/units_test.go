package portion

import (
	"math"
	"testing"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		qty      float64
		from, to string
		want     float64
		ok       bool
	}{
		{"lb to g", 1, "lb", "g", 453.6, true},
		{"g to lb", 453.6, "g", "lb", 1, true},
		{"kg to oz", 1, "kg", "oz", 1000 / 28.35, true},
		{"cups to ml", 2, "cups", "ml", 480, true},
		{"tbsp to tsp", 1, "tbsp", "tsp", 3, true},
		{"fl oz to ml", 1, "fl oz", "ml", 29.57, true},
		{"dozen to each", 1, "dozen", "each", 12, true},
		{"mass to volume fails", 1, "lb", "cup", 0, false},
		{"unknown unit fails", 1, "smidgen", "g", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Convert(tt.qty, tt.from, tt.to)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Convert = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeUnit(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" LB ", "lb"},
		{"fl. oz.", "fl oz"},
		{"Fl  Oz", "fl oz"},
		{"Cups", "cups"},
	}
	for _, tt := range tests {
		if got := NormalizeUnit(tt.in); got != tt.want {
			t.Errorf("NormalizeUnit(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseUnitPrice(t *testing.T) {
	tests := []struct {
		label string
		price float64
		unit  string
		ok    bool
	}{
		{"$7.99/lb", 7.99, "lb", true},
		{"7.99 / lb", 7.99, "lb", true},
		{"$0.59 per bulb", 0.59, "bulb", true},
		{"$3.49 each", 3.49, "each", true},
		{"2.99 ea", 2.99, "each", true},
		{"$4.99/fl oz", 4.99, "fl oz", true},
		{"", 0, "", false},
		{"cheap", 0, "", false},
		{"$7.99/parsec", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseUnitPrice(tt.label)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (got.Price != tt.price || got.Unit != tt.unit) {
				t.Errorf("got %+v, want price=%v unit=%q", got, tt.price, tt.unit)
			}
		})
	}
}

func TestParsePackageSize(t *testing.T) {
	tests := []struct {
		label string
		qty   float64
		unit  string
		ok    bool
	}{
		{"5 lb bag", 5, "lb", true},
		{"16 oz", 16, "oz", true},
		{"12 fl oz bottle", 12, "fl oz", true},
		{"1.5 L", 1.5, "l", true},
		{"dozen", 12, "each", true},
		{"12 count", 12, "count", true},
		{"", 0, "", false},
		{"family size", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParsePackageSize(tt.label)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (got.Qty != tt.qty || got.Unit != tt.unit) {
				t.Errorf("got %+v, want qty=%v unit=%q", got, tt.qty, tt.unit)
			}
		})
	}
}

func TestEachToGrams(t *testing.T) {
	if grams, ok := EachToGrams("yellow onion"); !ok || grams != 150 {
		t.Errorf("onion = %v,%v; want 150,true", grams, ok)
	}
	// Longest match wins: a clove is not a whole bulb.
	if grams, ok := EachToGrams("garlic clove"); !ok || grams != 3 {
		t.Errorf("garlic clove = %v,%v; want 3,true", grams, ok)
	}
	if grams, ok := EachToGrams("green onion"); !ok || grams != 15 {
		t.Errorf("green onion = %v,%v; want 15,true", grams, ok)
	}
	if _, ok := EachToGrams("saffron"); ok {
		t.Error("saffron should have no per-item weight")
	}
}

func TestIsWholeItem(t *testing.T) {
	tests := []struct {
		name string
		unit string
		qty  float64
		want bool
	}{
		{"whole chicken", "each", 1, true},
		{"chicken thighs", "lb", 2, true}, // marker word
		{"lemon", "each", 1, true},        // small produce, single count
		{"lemon", "each", 3, false},
		{"flour", "cup", 2, false},
		{"cucumber", "whole", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWholeItem(tt.name, tt.unit, tt.qty); got != tt.want {
				t.Errorf("IsWholeItem(%q,%q,%v) = %v, want %v", tt.name, tt.unit, tt.qty, got, tt.want)
			}
		})
	}
}
