// Package providers holds the three read-only data sources the valuation
// pipeline fans out to: geocoding, comparable sales, and area price trends.
// Each has a deterministic offline implementation for zero-dependency
// operation and a network-backed implementation for real deployments.
package providers

import (
	"context"
	"errors"

	"homeworth/server/internal/models"
)

// ErrUnavailable wraps any provider transport or decode failure. The
// orchestrator surfaces it rather than silently defaulting.
var ErrUnavailable = errors.New("provider unavailable")

// Geocoder resolves an address into a point and its market area.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (*models.GeocodeResult, error)
}

// CompsSource returns nearby recent sales around a point.
type CompsSource interface {
	RecentSales(ctx context.Context, point models.GeoPoint, radiusKm float64, maxAgeDays, limit int) ([]models.ComparableSale, error)
}

// TrendsSource returns the trailing monthly price index for an area.
type TrendsSource interface {
	PriceIndex(ctx context.Context, area models.GeoArea, months int) ([]models.TrendPoint, error)
}
