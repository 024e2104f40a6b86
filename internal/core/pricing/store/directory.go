package store

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"grocery-pricing-engine/internal/pkg/common"
)

// DirectoryClient is a resty-backed Geocoder that asks an external store
// directory for a verified address. Absence of a match or any transport
// failure is reported as ok=false and never errors the pricing pipeline.
type DirectoryClient struct {
	client *resty.Client
}

// directoryResponse is the directory's best-match payload.
type directoryResponse struct {
	Matched bool   `json:"matched"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// NewDirectoryClient creates a directory client, or nil when no base URL is
// configured (lookups are then skipped).
func NewDirectoryClient(baseURL string, timeout time.Duration) *DirectoryClient {
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &DirectoryClient{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
	}
}

// LookupAddress implements Geocoder.
func (d *DirectoryClient) LookupAddress(ctx context.Context, storeName, location string) (string, bool) {
	var result directoryResponse
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParam("name", storeName).
		SetQueryParam("location", location).
		SetResult(&result).
		Get("/v1/stores/search")

	if err != nil {
		common.LogDebug("store directory lookup failed",
			zap.String("store", storeName),
			zap.Error(err),
		)
		return "", false
	}
	if resp.StatusCode() != http.StatusOK || !result.Matched || result.Address == "" {
		return "", false
	}
	return result.Address, true
}
