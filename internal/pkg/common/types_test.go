package common

import (
	"encoding/json"
	"testing"
)

func TestNormalizeIngredientString(t *testing.T) {
	got := NormalizeIngredient("  chicken breast  ")
	if got.Name != "chicken breast" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Amount != 1 || got.Unit != "each" {
		t.Errorf("defaults = %v %q, want 1 each", got.Amount, got.Unit)
	}
}

func TestNormalizeIngredientObjectAliases(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]interface{}
		want IngredientRequest
	}{
		{
			"canonical keys",
			map[string]interface{}{"name": "flour", "amount": 2.0, "unit": "cups"},
			IngredientRequest{Name: "flour", Amount: 2, Unit: "cups"},
		},
		{
			"aliased keys",
			map[string]interface{}{"ingredient": "milk", "qty": "1.5", "measure": "Cups"},
			IngredientRequest{Name: "milk", Amount: 1.5, Unit: "cups"},
		},
		{
			"json number amount",
			map[string]interface{}{"ingredient_name": "rice", "quantity": json.Number("3")},
			IngredientRequest{Name: "rice", Amount: 3, Unit: "each"},
		},
		{
			"negative amount defaults",
			map[string]interface{}{"item": "salt", "amount": -2.0},
			IngredientRequest{Name: "salt", Amount: 1, Unit: "each"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeIngredient(tt.in); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeIngredientsDropsNameless(t *testing.T) {
	raw := []interface{}{
		"tofu",
		map[string]interface{}{"amount": 2.0},
		map[string]interface{}{"name": "  "},
		map[string]interface{}{"name": "garlic", "qty": 3.0, "unit": "cloves"},
		42,
	}

	got := NormalizeIngredients(raw)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "tofu" || got[1].Name != "garlic" {
		t.Errorf("names = %q, %q", got[0].Name, got[1].Name)
	}
	if got[1].Amount != 3 || got[1].Unit != "cloves" {
		t.Errorf("garlic = %+v", got[1])
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"float64", 2.5, 2.5, true},
		{"int", 3, 3, true},
		{"json number", json.Number("4.25"), 4.25, true},
		{"numeric string", " 1.99 ", 1.99, true},
		{"junk string", "cheap", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ToFloat(%v) = %v,%v; want %v,%v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
