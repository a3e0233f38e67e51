package strategy

import (
	"context"
	"math"

	"homeworth/server/internal/models"
	"homeworth/server/internal/seed"
)

// Heuristic is the deterministic baseline estimator. The base price comes
// from a seeded function of the normalized address, nudged by comparable
// prices and the local trend, so the service is fully operable with zero
// external dependencies. It never fails.
type Heuristic struct{}

func (Heuristic) Predict(_ context.Context, features models.FeatureRecord) (*models.ValuationEstimate, error) {
	s := seed.FNV1a32(features.AddressNorm)

	baseSeed := 350_000 + int(seed.Rand(s, 1)[0]*1_850_000)
	compsAvg := features.CompsAvgPrice
	if compsAvg == 0 {
		compsAvg = baseSeed
	}
	trend := features.TrendMoMPct

	// 60% seeded base, 35% trend-adjusted comp average, 5% seeded base again.
	blended := int(0.6*float64(baseSeed) + 0.35*float64(compsAvg)*(1+trend/100.0) + 0.05*float64(baseSeed))

	low, high := seed.MoneyBand(blended, s)
	confidence := 60 + int(math.Min(30, math.Max(0, features.SignalQuality)))

	insights := features.Insights
	if len(insights) == 0 {
		if features.CompsCount >= 4 {
			insights = []string{"Comparable activity supports the estimate."}
		} else {
			insights = []string{"Limited recent comps in radius."}
		}
	}

	return &models.ValuationEstimate{
		Base:        blended,
		Low:         low,
		High:        high,
		Confidence:  confidence,
		TrendMoMPct: math.Round(trend*10) / 10,
		Comps:       features.CompsCount,
		Insights:    insights,
		Sparkline:   seed.Sparkline(s),
		Factors: map[string]float64{
			"comps_weight":    0.45,
			"trend_weight":    0.20,
			"locality_weight": 0.20,
			"property_weight": 0.15,
		},
	}, nil
}
