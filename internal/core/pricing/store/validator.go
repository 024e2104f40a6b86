package store

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"grocery-pricing-engine/internal/pkg/common"
)

// Geocoder resolves a verified address for a store near a location. It is
// best-effort: implementations return ok=false rather than errors, and a nil
// Geocoder disables lookups entirely.
type Geocoder interface {
	LookupAddress(ctx context.Context, storeName, location string) (address string, ok bool)
}

// Validation is the outcome of validating one store name.
type Validation struct {
	StoreName    string
	StoreAddress string
	Verified     bool
}

// Validator checks store names against state-level chain availability.
type Validator struct {
	geocoder Geocoder
}

// NewValidator creates a validator. geocoder may be nil.
func NewValidator(geocoder Geocoder) *Validator {
	return &Validator{geocoder: geocoder}
}

// Validate repairs and verifies a store name for a location. A missing name
// is inferred from the source URL. Validation failure preserves the name —
// swapping in a different brand would misrepresent the source — and only the
// verified flag and address resolution differ.
func (v *Validator) Validate(ctx context.Context, storeName, sourceURL, location string) Validation {
	name := strings.TrimSpace(storeName)
	if name == "" {
		name = InferBrandFromURL(sourceURL)
	}
	if name == "" {
		return Validation{}
	}

	state := StateFromLocation(location)
	verified := ChainAvailableIn(name, state)
	if !verified {
		common.LogWarn("store failed location validation",
			zap.String("store", name),
			zap.String("state", state),
			zap.String("location", location),
		)
	}

	result := Validation{StoreName: name, Verified: verified}
	if v.geocoder != nil {
		if addr, ok := v.geocoder.LookupAddress(ctx, name, location); ok {
			result.StoreAddress = addr
		}
	}
	return result
}

// ChainAvailableIn reports whether a chain plausibly operates in a state.
// National chains always pass; regional chains pass only in their footprint;
// unknown chains and unresolved states pass (fail open — a false block is
// worse than an occasional wrong-state suggestion).
func ChainAvailableIn(storeName, state string) bool {
	key := normalizeChain(storeName)

	if nationalChains[key] {
		return true
	}
	states, regional := regionalChains[key]
	if !regional || state == "" {
		return true
	}
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

// InferBrandFromURL maps a source URL's hostname to a store brand.
func InferBrandFromURL(sourceURL string) string {
	if sourceURL == "" {
		return ""
	}
	u, err := url.Parse(sourceURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))

	if brand, ok := domainBrands[host]; ok {
		return brand
	}
	// Subdomains like grocery.walmart.com.
	for domain, brand := range domainBrands {
		if strings.HasSuffix(host, "."+domain) {
			return brand
		}
	}
	return ""
}

var (
	stateCodePattern = regexp.MustCompile(`\b([A-Z]{2})\b`)
	zipPattern       = regexp.MustCompile(`\b(\d{5})\b`)
)

// StateFromLocation determines the 2-letter state code from a free-text
// location: an explicit state code in a city string wins, then a ZIP prefix.
// Returns "" when unresolved.
func StateFromLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return ""
	}

	for _, m := range stateCodePattern.FindAllStringSubmatch(location, -1) {
		if stateCodes[m[1]] {
			return m[1]
		}
	}

	if m := zipPattern.FindStringSubmatch(location); m != nil {
		prefix, _ := strconv.Atoi(m[1][:3])
		for _, r := range zipRanges {
			if prefix >= r.lo && prefix <= r.hi {
				return r.state
			}
		}
	}

	return ""
}
