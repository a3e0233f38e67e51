package models

import "time"

// GeoPoint is a resolved WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoArea is a named market segment, e.g. "Kitsilano" or "Downtown".
type GeoArea struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// GeocodeResult maps an address onto a point and its market area.
type GeocodeResult struct {
	Point    GeoPoint `json:"point"`
	Area     GeoArea  `json:"area"`
	City     string   `json:"city"`
	Province string   `json:"province"`
	Country  string   `json:"country"`
}

// ComparableSale is one nearby historical sale used as a pricing reference.
// Beds, baths, living area and type are optional because listing feeds are sparse.
type ComparableSale struct {
	DistanceKm   float64   `json:"distance_km"`
	SalePrice    int       `json:"sale_price"`
	SaleDate     time.Time `json:"sale_date"`
	Beds         *int      `json:"beds,omitempty"`
	Baths        *float64  `json:"baths,omitempty"`
	LivingSqft   *int      `json:"living_sqft,omitempty"`
	PropertyType string    `json:"property_type,omitempty"`
}

// TrendPoint is one month of an area price index (100 = baseline).
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Index float64   `json:"index"`
}

// AddressCandidate is one disambiguation of a raw address string.
type AddressCandidate struct {
	Address      string  `json:"address"`
	Confidence   float64 `json:"confidence"`
	PropertyType string  `json:"property_type,omitempty"`
}

// FeatureRecord is the synthesized input handed to a valuation strategy.
// It is derived once per request and never mutated afterwards.
type FeatureRecord struct {
	AddressNorm   string   `json:"address_norm"`
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	AreaName      string   `json:"area_name"`
	AreaCode      string   `json:"area_code"`
	City          string   `json:"city"`
	Province      string   `json:"province"`
	PropertyType  string   `json:"property_type,omitempty"`
	TrendMoMPct   float64  `json:"trend_mom_pct"`
	CompsCount    int      `json:"comps_count"`
	CompsAvgPrice int      `json:"comps_avg_price"`
	BedsMedian    float64  `json:"beds_median"`
	BathsMedian   float64  `json:"baths_median"`
	SqftMedian    float64  `json:"sqft_median"`
	SignalQuality float64  `json:"signal_quality"`
	Insights      []string `json:"insights"`
}

// ValuationEstimate is a strategy's raw output. All strategies return the
// same shape so the orchestrator stays indifferent to which one is active.
type ValuationEstimate struct {
	Base        int                `json:"base"`
	Low         int                `json:"low"`
	High        int                `json:"high"`
	Confidence  int                `json:"confidence"`
	TrendMoMPct float64            `json:"trend_mom_pct"`
	Comps       int                `json:"comps"`
	Insights    []string           `json:"insights"`
	Sparkline   []int              `json:"sparkline"`
	Factors     map[string]float64 `json:"factors"`
}

// ValuationRange is the low/high band around the point estimate.
type ValuationRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// ValuationResponse is the final API payload. Field order is the canonical
// serialization order: the ETag is a hash of these bytes, so two identical
// payloads always carry the same validator.
type ValuationResponse struct {
	Address         string             `json:"address"`
	Currency        string             `json:"currency"`
	Valuation       int                `json:"valuation"`
	Range           ValuationRange     `json:"range"`
	Confidence      int                `json:"confidence"`
	TrendMoMPct     float64            `json:"trend_mom_pct"`
	ComparablesUsed int                `json:"comparables_used"`
	Insights        []string           `json:"insights"`
	SparklineIndex  []int              `json:"sparkline_index_12m"`
	Factors         map[string]float64 `json:"factors"`
	Disclaimer      string             `json:"disclaimer"`
	Cached          bool               `json:"cached"`
	ETag            string             `json:"etag,omitempty"`
}
