// Package upstream talks to the text-completion price source. The response
// is prose with an embedded JSON array at best; callers must treat it as
// untrusted text.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"grocery-pricing-engine/internal/infrastructure/config"
	"grocery-pricing-engine/internal/pkg/common"
)

// ServiceName keys the circuit breaker and rate limiter for this upstream.
const ServiceName = "price-source"

// Client is the resty-backed chat-completions client.
type Client struct {
	config *config.PriceSourceConfig
	client *resty.Client
}

// NewClient creates the price-source client.
func NewClient(cfg *config.PriceSourceConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json")

	return &Client{
		config: cfg,
		client: client,
	}
}

// completionResponse is the subset of the chat-completions payload we read.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// FetchPrices asks the model for grocery prices for one ingredient batch and
// returns the raw completion text. Timeouts map to ErrUpstreamTimeout and
// non-2xx responses to ErrUpstreamHTTP with the response body attached for
// the debug path.
func (c *Client) FetchPrices(ctx context.Context, ingredients []common.IngredientRequest, location, preferredStore string) (string, error) {
	prompt := buildPrompt(ingredients, location, preferredStore)

	req := map[string]interface{}{
		"model": c.config.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens": c.config.MaxTokens,
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	common.LogUpstreamCall(ServiceName, time.Since(start), err)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", common.WrapError(common.ErrUpstreamTimeout, err)
		}
		return "", common.WrapError(common.ErrUpstreamHTTP, err)
	}

	if resp.StatusCode() != http.StatusOK {
		body := resp.String()
		common.LogError("price source returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("response_body", body),
		)
		return "", common.WrapError(common.ErrUpstreamHTTP,
			fmt.Errorf("price source error (status %d): %s", resp.StatusCode(), body))
	}

	var result completionResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return "", common.WrapError(common.ErrParseFailure,
			fmt.Errorf("failed to parse completion envelope: %w", err))
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", common.WrapError(common.ErrParseFailure,
			fmt.Errorf("empty completion from price source"))
	}

	return result.Choices[0].Message.Content, nil
}

// buildPrompt describes the batch to the model. Records come back keyed by
// the "ingredient" field so results can be matched independent of order.
func buildPrompt(ingredients []common.IngredientRequest, location, preferredStore string) string {
	var sb strings.Builder
	sb.WriteString("Find current grocery prices for these ingredients near ")
	sb.WriteString(location)
	sb.WriteString(".\n")
	if preferredStore != "" {
		sb.WriteString("Prefer prices from ")
		sb.WriteString(preferredStore)
		sb.WriteString(" when available, plus one alternative store per ingredient.\n")
	}
	sb.WriteString("Ingredients:\n")
	for _, ing := range ingredients {
		sb.WriteString(fmt.Sprintf("- %s: %g %s\n", ing.Name, ing.Amount, ing.Unit))
	}
	sb.WriteString(`
Respond with ONLY a JSON array, no prose. One object per ingredient-store pair:
[{"ingredient":"...","storeName":"...","productName":"...","packageSize":"...","packagePrice":0.00,"unitPrice":"$0.00/lb","portionCost":0.00,"storeType":"mainstream|ethnic|specialty","storeAddress":"...","sourceUrl":"..."}]
Requirements:
1. packagePrice is the shelf price of the smallest purchasable package.
2. portionCost is the cost of only the quantity listed above.
3. Use real store names that operate near the given location.
4. Omit fields you cannot determine rather than guessing.`)
	return sb.String()
}
