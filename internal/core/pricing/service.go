// Package pricing resolves ingredient prices: cache first, then guarded
// batch calls to the price source, then sanitization, portion math and store
// validation. Failures degrade per ingredient instead of failing the request.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grocery-pricing-engine/internal/core/pricing/cache"
	"grocery-pricing-engine/internal/core/pricing/extract"
	"grocery-pricing-engine/internal/core/pricing/optimizer"
	"grocery-pricing-engine/internal/core/pricing/portion"
	"grocery-pricing-engine/internal/core/pricing/store"
	"grocery-pricing-engine/internal/core/resilience"
	"grocery-pricing-engine/internal/core/upstream"
	"grocery-pricing-engine/internal/infrastructure/config"
	"grocery-pricing-engine/internal/pkg/common"
	"grocery-pricing-engine/internal/pkg/money"
)

// reviewThreshold flags results for manual review below this confidence.
const reviewThreshold = 0.5

// unverifiedConfidenceCap bounds confidence when the store failed location
// validation; always below reviewThreshold so the result gets flagged.
const unverifiedConfidenceCap = 0.45

// Upstream fetches raw price text for one ingredient batch.
type Upstream interface {
	FetchPrices(ctx context.Context, ingredients []common.IngredientRequest, location, preferredStore string) (string, error)
}

// Request is one resolution request after boundary normalization.
type Request struct {
	Ingredients    []common.IngredientRequest
	Location       string
	PreferredStore string
	BuildPlan      bool
}

// Response is the full resolution output.
type Response struct {
	Results        []common.PricingResult `json:"results"`
	TotalEstimated float64                `json:"totalEstimated"`
	Plan           *common.ShoppingPlan   `json:"shoppingPlan,omitempty"`
}

// Service orchestrates the resolution pipeline.
type Service struct {
	upstream  Upstream
	cache     *cache.PriceCache // nil disables caching
	resolver  *portion.Resolver
	validator *store.Validator
	breakers  *resilience.Registry
	limiter   *resilience.SlidingLimiter // nil disables upstream rate limiting
	cfg       config.PricingConfig
}

// NewService wires the pipeline. The breaker registry is injected so callers
// and tests control breaker state; the service never creates its own.
func NewService(up Upstream, priceCache *cache.PriceCache, resolver *portion.Resolver, validator *store.Validator, breakers *resilience.Registry, limiter *resilience.SlidingLimiter, cfg config.PricingConfig) *Service {
	return &Service{
		upstream:  up,
		cache:     priceCache,
		resolver:  resolver,
		validator: validator,
		breakers:  breakers,
		limiter:   limiter,
		cfg:       cfg,
	}
}

// failure classes decide the fallback chain for ingredients whose batch
// failed: hard failures (upstream said no) go stale-then-unavailable, soft
// failures (timeout, breaker open, rate limit, nothing parsed) go
// stale-then-heuristic.
const (
	failNone = iota
	failSoft
	failHard
)

// ResolvePrices resolves every ingredient in input order. It returns an
// error only when an upstream hard failure leaves no usable result at all;
// partial failures degrade per ingredient.
func (s *Service) ResolvePrices(ctx context.Context, req Request) (*Response, error) {
	if len(req.Ingredients) == 0 {
		return &Response{Results: []common.PricingResult{}}, nil
	}

	names := make([]string, len(req.Ingredients))
	byName := make(map[string]common.IngredientRequest, len(req.Ingredients))
	for i, ing := range req.Ingredients {
		names[i] = ing.Name
		byName[ing.Name] = ing
	}

	hits := map[string]cache.Hit{}
	missing := names
	if s.cache != nil {
		hits, missing = s.cache.GetMany(ctx, names, req.Location)
	}

	options := make(map[string][]common.SanitizedPriceOption)
	failures := make(map[string]int)
	var hardErr error

	var toFetch []common.IngredientRequest
	for _, name := range missing {
		toFetch = append(toFetch, byName[name])
	}

	for _, batch := range batchIngredients(toFetch, s.cfg.BatchSize) {
		raw, err := s.fetchBatch(ctx, batch, req)
		if err != nil {
			class := failSoft
			if common.ErrorCode(err) == common.ErrCodeUpstreamHTTP {
				class = failHard
				hardErr = err
			}
			common.LogWarn("price batch failed",
				zap.Int("batch_size", len(batch)),
				zap.String("error_code", common.ErrorCode(err)),
				zap.Error(err),
			)
			for _, ing := range batch {
				failures[ing.Name] = class
			}
			continue
		}

		records := extract.JSONArray(raw)
		if records == nil {
			// No JSON array anywhere in the completion. Scrape dollar
			// amounts out of the prose before giving up on the batch.
			recovered := TextFallbackPrices(raw, batch)
			for name, opt := range recovered {
				options[name] = append(options[name], opt)
			}
			common.LogWarn("no JSON array in completion, used text fallback",
				zap.Int("recovered", len(recovered)),
				zap.String("raw_response", raw),
			)
		} else {
			for _, record := range records {
				name := matchIngredient(record, batch)
				if name == "" {
					common.LogDebug("dropping unmatched price record",
						zap.String("record_ingredient", RecordIngredient(record)),
					)
					continue
				}
				options[name] = append(options[name], Sanitize(record))
			}
		}

		for _, ing := range batch {
			if len(options[ing.Name]) == 0 {
				failures[ing.Name] = failSoft
			}
		}
	}

	results := make([]common.PricingResult, 0, len(req.Ingredients))
	planOptions := make(map[string][]common.SanitizedPriceOption)
	cacheable := make(map[string]common.SanitizedPriceOption)

	for _, ing := range req.Ingredients {
		var result common.PricingResult

		if hit, ok := hits[ing.Name]; ok {
			// Cached options store the raw record; chain availability depends
			// on the requested location, so validation re-runs on every hit.
			option, confidence := s.validateOption(ctx, hit.Option, req.Location)
			result = s.resultFromOption(ing, option, confidence, req.Location)
			planOptions[ing.Name] = []common.SanitizedPriceOption{option}
		} else if candidates := options[ing.Name]; len(candidates) > 0 {
			best, rest := rankCandidates(candidates)
			best, confidence := s.validateOption(ctx, best, req.Location)
			result = s.resultFromOption(ing, best, confidence, req.Location)
			result.StoreOptions = append([]common.SanitizedPriceOption{best}, rest...)
			if len(rest) > 3 {
				rest = rest[:3]
			}
			result.Alternatives = rest
			planOptions[ing.Name] = result.StoreOptions
			if best.PackagePrice > 0 {
				cacheable[ing.Name] = best
			}
		} else {
			result = s.fallbackResult(ctx, ing, req.Location, failures[ing.Name])
		}

		results = append(results, result)
	}

	if s.cache != nil && len(cacheable) > 0 {
		s.cache.PutMany(ctx, req.Location, cacheable, 0)
	}

	if hardErr != nil && !anyUsable(results) {
		return nil, hardErr
	}

	costs := make([]float64, len(results))
	for i, r := range results {
		costs[i] = r.EstimatedCost
	}

	resp := &Response{
		Results:        results,
		TotalEstimated: money.Sum(costs...),
	}
	if req.BuildPlan {
		plan := optimizer.Optimize(req.Ingredients, req.PreferredStore, req.Location, planOptions)
		resp.Plan = &plan
	}
	return resp, nil
}

// fetchBatch runs one upstream call behind the rate limiter, the circuit
// breaker and the per-batch timeout.
func (s *Service) fetchBatch(ctx context.Context, batch []common.IngredientRequest, req Request) (string, error) {
	if s.limiter != nil {
		if ok, wait := s.limiter.Allow(); !ok {
			return "", common.WrapError(common.ErrRateLimited,
				fmt.Errorf("upstream rate limit reached, retry in %s", wait.Round(time.Millisecond)))
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	var raw string
	err := s.breakers.Get(upstream.ServiceName).Execute(callCtx, func(ctx context.Context) error {
		var ferr error
		raw, ferr = s.upstream.FetchPrices(ctx, batch, req.Location, req.PreferredStore)
		return ferr
	})
	if err != nil {
		if errors.Is(err, resilience.ErrOpen) {
			return "", common.WrapError(common.ErrCircuitOpen, err)
		}
		return "", err
	}
	return raw, nil
}

// validateOption checks the option's store against the location and caps
// confidence when validation fails. The store name is preserved either way.
func (s *Service) validateOption(ctx context.Context, option common.SanitizedPriceOption, location string) (common.SanitizedPriceOption, float64) {
	validation := s.validator.Validate(ctx, option.StoreName, option.SourceURL, location)
	if validation.StoreName != "" {
		option.StoreName = validation.StoreName
	}
	if validation.StoreAddress != "" {
		option.StoreAddress = validation.StoreAddress
	}

	confidence := option.Confidence()
	if !validation.Verified && confidence > unverifiedConfidenceCap {
		confidence = unverifiedConfidenceCap
	}
	return option, confidence
}

// resultFromOption builds the per-ingredient result. Portion cost is always
// re-resolved against the requested quantity; a cached option may have been
// priced for a different amount.
func (s *Service) resultFromOption(ing common.IngredientRequest, option common.SanitizedPriceOption, confidence float64, location string) common.PricingResult {
	portionCost := s.resolver.Resolve(option, ing.Amount, ing.Unit, ing.Name)

	matched := option.ProductName
	if matched == "" {
		matched = ing.Name
	}

	return common.PricingResult{
		ID:            resultID(ing.Name, location),
		Original:      ing.Name,
		Matched:       matched,
		EstimatedCost: portionCost,
		PortionCost:   portionCost,
		PackagePrice:  option.PackagePrice,
		PackageSize:   option.PackageSize,
		Confidence:    confidence,
		NeedsReview:   confidence < reviewThreshold || option.StoreName == "",
		StoreName:     option.StoreName,
		StoreAddress:  option.StoreAddress,
	}
}

// fallbackResult handles an ingredient whose batch produced nothing: a stale
// cache entry if one exists, then a category estimate for soft failures, or
// an explicit unavailable marker for hard ones.
func (s *Service) fallbackResult(ctx context.Context, ing common.IngredientRequest, location string, class int) common.PricingResult {
	if s.cache != nil {
		if hit, ok := s.cache.GetStale(ctx, ing.Name, location); ok {
			confidence := hit.Option.Confidence()
			if confidence > unverifiedConfidenceCap {
				confidence = unverifiedConfidenceCap
			}
			return s.resultFromOption(ing, hit.Option, confidence, location)
		}
	}

	if class == failHard {
		return common.PricingResult{
			ID:          resultID(ing.Name, location),
			Original:    ing.Name,
			Matched:     "Pricing unavailable",
			Confidence:  unavailableConfidence,
			NeedsReview: true,
		}
	}

	estimate := common.SanitizedPriceOption{PackagePrice: EstimatePackagePrice(ing.Name)}
	result := s.resultFromOption(ing, estimate, fallbackConfidence, location)
	result.Matched = ing.Name
	return result
}

// rankCandidates orders options by field completeness, breaking ties on the
// lower package price, and returns the winner plus the rest in rank order.
func rankCandidates(candidates []common.SanitizedPriceOption) (common.SanitizedPriceOption, []common.SanitizedPriceOption) {
	ranked := make([]common.SanitizedPriceOption, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := ranked[i].FieldScore(), ranked[j].FieldScore()
		if si != sj {
			return si > sj
		}
		pi, pj := ranked[i].PackagePrice, ranked[j].PackagePrice
		if pi <= 0 {
			return false
		}
		if pj <= 0 {
			return true
		}
		return pi < pj
	})
	return ranked[0], ranked[1:]
}

// matchIngredient maps one upstream record back to a batch ingredient. The
// model is asked to echo the ingredient name but drifts, so matching falls
// through exact, substring and first-token comparisons.
func matchIngredient(record common.RawPriceRecord, batch []common.IngredientRequest) string {
	label := strings.ToLower(strings.TrimSpace(RecordIngredient(record)))
	if label == "" {
		label = strings.ToLower(firstString(record, productNameKeys))
	}
	if label == "" {
		if len(batch) == 1 {
			return batch[0].Name
		}
		return ""
	}

	for _, ing := range batch {
		if strings.EqualFold(ing.Name, label) {
			return ing.Name
		}
	}

	// Fuzzy passes try longer names first so "green onion" claims a
	// "green onions" record before "onion" can.
	byLength := make([]common.IngredientRequest, len(batch))
	copy(byLength, batch)
	sort.SliceStable(byLength, func(i, j int) bool {
		return len(byLength[i].Name) > len(byLength[j].Name)
	})
	for _, ing := range byLength {
		lower := strings.ToLower(ing.Name)
		if strings.Contains(label, lower) || strings.Contains(lower, label) {
			return ing.Name
		}
	}
	for _, ing := range byLength {
		if tok := firstToken(ing.Name); tok != "" && strings.Contains(label, tok) {
			return ing.Name
		}
	}
	return ""
}

// resultID is deterministic over the normalized ingredient and location so
// identical requests produce identical IDs.
func resultID(name, location string) string {
	seed := cache.IngredientKey(name) + "|" + cache.LocationKey(location)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

// anyUsable reports whether at least one result carries real pricing data.
func anyUsable(results []common.PricingResult) bool {
	for _, r := range results {
		if r.PackagePrice > 0 || r.EstimatedCost > 0 {
			return true
		}
	}
	return false
}

// batchIngredients splits ingredients into fixed-size batches, preserving
// order.
func batchIngredients(items []common.IngredientRequest, size int) [][]common.IngredientRequest {
	if size <= 0 {
		size = 1
	}
	var batches [][]common.IngredientRequest
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
