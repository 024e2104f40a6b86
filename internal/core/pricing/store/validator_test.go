package store

import (
	"context"
	"testing"
)

func TestChainAvailableIn(t *testing.T) {
	tests := []struct {
		name  string
		store string
		state string
		want  bool
	}{
		{"national chain anywhere", "Walmart", "WI", true},
		{"national chain normalized", "Sam's Club", "VT", true},
		{"heb in texas", "H-E-B", "TX", true},
		{"heb outside texas", "H-E-B", "WI", false},
		{"h mart outside footprint", "H Mart", "WI", false},
		{"h mart in footprint", "H Mart", "NY", true},
		{"publix in florida", "Publix", "FL", true},
		{"publix in oregon", "Publix", "OR", false},
		{"unknown chain fails open", "Joe's Corner Market", "WI", true},
		{"unresolved state fails open", "H-E-B", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChainAvailableIn(tt.store, tt.state); got != tt.want {
				t.Errorf("ChainAvailableIn(%q, %q) = %v, want %v", tt.store, tt.state, got, tt.want)
			}
		})
	}
}

func TestStateFromLocation(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"Milwaukee, WI", "WI"},
		{"53202", "WI"},
		{"Austin, TX 78701", "TX"},
		{"78701", "TX"},
		{"10001", "NY"},
		{"Milwaukee", ""},
		{"", ""},
		{"XX", ""}, // not a real state code
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			if got := StateFromLocation(tt.location); got != tt.want {
				t.Errorf("StateFromLocation(%q) = %q, want %q", tt.location, got, tt.want)
			}
		})
	}
}

func TestInferBrandFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.walmart.com/ip/12345", "Walmart"},
		{"https://grocery.walmart.com/product", "Walmart"},
		{"https://www.traderjoes.com/home", "Trader Joe's"},
		{"https://example.com/item", ""},
		{"", ""},
		{"not a url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := InferBrandFromURL(tt.url); got != tt.want {
				t.Errorf("InferBrandFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestValidatePreservesNameOnFailure(t *testing.T) {
	v := NewValidator(nil)
	// H Mart has no Wisconsin stores; the name must survive, only unverified.
	got := v.Validate(context.Background(), "H Mart", "", "53202")
	if got.StoreName != "H Mart" {
		t.Errorf("StoreName = %q, want H Mart", got.StoreName)
	}
	if got.Verified {
		t.Error("expected Verified = false")
	}
}

func TestValidateNationalChain(t *testing.T) {
	v := NewValidator(nil)
	got := v.Validate(context.Background(), "Walmart", "", "Milwaukee, WI")
	if !got.Verified {
		t.Error("expected Verified = true")
	}
}

func TestValidateInfersNameFromURL(t *testing.T) {
	v := NewValidator(nil)
	got := v.Validate(context.Background(), "", "https://www.target.com/p/item", "53202")
	if got.StoreName != "Target" {
		t.Errorf("StoreName = %q, want Target", got.StoreName)
	}
	if !got.Verified {
		t.Error("expected Verified = true")
	}
}

func TestValidateEmptyEverything(t *testing.T) {
	v := NewValidator(nil)
	got := v.Validate(context.Background(), "", "", "53202")
	if got.StoreName != "" || got.Verified {
		t.Errorf("got %+v, want zero Validation", got)
	}
}

type fakeGeocoder struct {
	address string
}

func (f fakeGeocoder) LookupAddress(ctx context.Context, storeName, location string) (string, bool) {
	if f.address == "" {
		return "", false
	}
	return f.address, true
}

func TestValidateGeocoderRefreshesAddress(t *testing.T) {
	v := NewValidator(fakeGeocoder{address: "123 Main St, Milwaukee, WI"})
	got := v.Validate(context.Background(), "Walmart", "", "53202")
	if got.StoreAddress != "123 Main St, Milwaukee, WI" {
		t.Errorf("StoreAddress = %q", got.StoreAddress)
	}
}
