// Package valuation drives the pipeline that turns a raw address into a
// priced, cache-consistent, conditionally-revalidatable response.
package valuation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"homeworth/server/internal/cache"
	"homeworth/server/internal/models"
	"homeworth/server/internal/providers"
	"homeworth/server/internal/resolver"
	"homeworth/server/internal/strategy"
)

// ErrInvalidInput marks client-side input problems: addresses that are too
// short, ambiguous, or resolved below the confidence gate. Never retried.
var ErrInvalidInput = errors.New("invalid input")

// Comparable query shape and trend depth are fixed by the pipeline contract.
const (
	compsRadiusKm   = 2.0
	compsMaxAgeDays = 90
	compsLimit      = 6
	trendMonths     = 12

	minConfidence = 0.7

	disclaimer = "This valuation is an estimate and not a financial appraisal."
)

// Orchestrator sequences resolve → geocode → {comps, trends} → features →
// strategy, and owns cache-key derivation and ETag computation.
type Orchestrator struct {
	resolver *resolver.Resolver
	geo      providers.Geocoder
	comps    providers.CompsSource
	trends   providers.TrendsSource
	strategy strategy.Strategy
	store    cache.Store
	ttl      time.Duration
	currency string
	logger   *logrus.Logger
}

// New wires the pipeline. The strategy is fixed for the process lifetime;
// selection happens once at construction, never per request.
func New(
	res *resolver.Resolver,
	geo providers.Geocoder,
	comps providers.CompsSource,
	trends providers.TrendsSource,
	strat strategy.Strategy,
	store cache.Store,
	ttl time.Duration,
	currency string,
	logger *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		resolver: res,
		geo:      geo,
		comps:    comps,
		trends:   trends,
		strategy: strat,
		store:    store,
		ttl:      ttl,
		currency: currency,
		logger:   logger,
	}
}

// Estimate produces the valuation response for a raw address, reporting
// whether it was served from cache and the weak ETag for the payload bytes.
func (o *Orchestrator) Estimate(ctx context.Context, rawAddress string) (*models.ValuationResponse, bool, string, error) {
	candidates := o.resolver.Resolve(ctx, rawAddress)
	if len(candidates) != 1 {
		return nil, false, "", fmt.Errorf("%w: address is ambiguous (%d candidates)", ErrInvalidInput, len(candidates))
	}
	candidate := candidates[0]
	if candidate.Confidence < minConfidence {
		return nil, false, "", fmt.Errorf("%w: address confidence %.2f below %.2f", ErrInvalidInput, candidate.Confidence, minConfidence)
	}

	normalized := NormalizeAddress(candidate.Address)
	cacheKey := "valuation:" + normalized

	if value, ok, err := o.store.Get(ctx, cacheKey); err != nil {
		o.logger.WithError(err).Warn("Cache lookup failed, recomputing")
	} else if ok {
		var response models.ValuationResponse
		if err := json.Unmarshal([]byte(value), &response); err == nil {
			// ETag comes from the exact cached bytes so repeated hits agree.
			etag := weakETag([]byte(value))
			response.Cached = true
			response.ETag = etag
			return &response, true, etag, nil
		}
		o.logger.WithField("key", cacheKey).Warn("Discarding undecodable cache entry")
	}

	geo, err := o.geo.Resolve(ctx, normalized)
	if err != nil {
		return nil, false, "", err
	}

	// Comps and trends only depend on the geocode result, so they run
	// concurrently to cut end-to-end latency.
	var (
		comps  []models.ComparableSale
		trends []models.TrendPoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comps, err = o.comps.RecentSales(gctx, geo.Point, compsRadiusKm, compsMaxAgeDays, compsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		trends, err = o.trends.PriceIndex(gctx, geo.Area, trendMonths)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, false, "", err
	}

	features := Synthesize(normalized, candidate.PropertyType, geo, comps, trends)

	estimate, err := o.strategy.Predict(ctx, features)
	if err != nil {
		return nil, false, "", err
	}

	response := &models.ValuationResponse{
		Address:         rawAddress,
		Currency:        o.currency,
		Valuation:       estimate.Base,
		Range:           models.ValuationRange{Low: estimate.Low, High: estimate.High},
		Confidence:      estimate.Confidence,
		TrendMoMPct:     math.Round(estimate.TrendMoMPct*10) / 10,
		ComparablesUsed: estimate.Comps,
		Insights:        estimate.Insights,
		SparklineIndex:  estimate.Sparkline,
		Factors:         estimate.Factors,
		Disclaimer:      disclaimer,
		Cached:          false,
	}

	// Canonical bytes: cached=false, no etag field. Both the stored value
	// and the validator hash come from this exact serialization, so
	// concurrent writers with the same inputs produce the same ETag.
	payload, err := json.Marshal(response)
	if err != nil {
		return nil, false, "", fmt.Errorf("serialize response: %w", err)
	}
	etag := weakETag(payload)

	if err := o.store.Set(ctx, cacheKey, string(payload), o.ttl); err != nil {
		o.logger.WithError(err).Warn("Failed to cache valuation response")
	}

	o.logger.WithFields(logrus.Fields{
		"address_norm": normalized,
		"valuation":    response.Valuation,
		"confidence":   response.Confidence,
		"comps":        response.ComparablesUsed,
	}).Info("Computed valuation")

	response.ETag = etag
	return response, false, etag, nil
}

// weakETag hashes payload bytes into a weak validator for conditional
// requests.
func weakETag(payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf(`W/"%s"`, hex.EncodeToString(sum[:])[:24])
}
