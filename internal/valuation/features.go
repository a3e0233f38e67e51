package valuation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"homeworth/server/internal/models"
)

// Fallback medians when no comparable carries the attribute.
const (
	defaultBedsMedian  = 3
	defaultBathsMedian = 2
	defaultSqftMedian  = 1200
)

// NormalizeAddress makes an address stable for cache keys and seeds: trim,
// lowercase, collapse internal whitespace.
func NormalizeAddress(addr string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(addr))), " ")
}

// Synthesize turns the provider results into the flat feature record handed
// to the valuation strategy. Partial results degrade to defaults rather than
// failing: missing trends mean 0%, missing attributes fall back to typical
// values.
func Synthesize(addressNorm, propertyType string, geo *models.GeocodeResult, comps []models.ComparableSale, trends []models.TrendPoint) models.FeatureRecord {
	trendMoM := trendMoMPct(trends)

	var compsAvg int
	if len(comps) > 0 {
		sum := 0
		for _, c := range comps {
			sum += c.SalePrice
		}
		compsAvg = sum / len(comps)
	}

	beds := attributeMedian(comps, defaultBedsMedian, func(c models.ComparableSale) *float64 {
		if c.Beds == nil {
			return nil
		}
		v := float64(*c.Beds)
		return &v
	})
	baths := attributeMedian(comps, defaultBathsMedian, func(c models.ComparableSale) *float64 {
		return c.Baths
	})
	sqft := attributeMedian(comps, defaultSqftMedian, func(c models.ComparableSale) *float64 {
		if c.LivingSqft == nil {
			return nil
		}
		v := float64(*c.LivingSqft)
		return &v
	})

	// Advisory quality hint only: bounded [0,30], growing with comp count
	// and trend magnitude. Feeds confidence, never gates the pipeline.
	signalQuality := math.Min(30, float64(len(comps)*4)+math.Floor(math.Abs(trendMoM)/0.5))

	var insights []string
	if len(comps) > 0 {
		insights = append(insights, fmt.Sprintf("%d comparable sale(s) within ~2km in the last 90 days.", len(comps)))
	}
	if trendMoM != 0 {
		direction := "up"
		if trendMoM < 0 {
			direction = "down"
		}
		insights = append(insights, fmt.Sprintf("Local price index is %s %.1f%% MoM.", direction, math.Abs(trendMoM)))
	}

	return models.FeatureRecord{
		AddressNorm:   addressNorm,
		Lat:           geo.Point.Lat,
		Lon:           geo.Point.Lon,
		AreaName:      geo.Area.Name,
		AreaCode:      geo.Area.Code,
		City:          geo.City,
		Province:      geo.Province,
		PropertyType:  propertyType,
		TrendMoMPct:   trendMoM,
		CompsCount:    len(comps),
		CompsAvgPrice: compsAvg,
		BedsMedian:    beds,
		BathsMedian:   baths,
		SqftMedian:    sqft,
		SignalQuality: signalQuality,
		Insights:      insights,
	}
}

// trendMoMPct derives month-over-month change from the last two index
// points. Fewer than two points, or a zero prior value, yields 0 rather than
// an error.
func trendMoMPct(trends []models.TrendPoint) float64 {
	if len(trends) < 2 {
		return 0
	}
	prev := trends[len(trends)-2].Index
	curr := trends[len(trends)-1].Index
	if prev == 0 {
		return 0
	}
	return (curr - prev) / prev * 100.0
}

// attributeMedian computes the median over comps where the attribute is
// present, falling back when none carry it.
func attributeMedian(comps []models.ComparableSale, fallback float64, pick func(models.ComparableSale) *float64) float64 {
	var values []float64
	for _, c := range comps {
		if v := pick(c); v != nil {
			values = append(values, *v)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}
