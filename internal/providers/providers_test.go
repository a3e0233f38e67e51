package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"homeworth/server/internal/models"
)

func TestMockGeocoderDeterministic(t *testing.T) {
	g := MockGeocoder{}
	ctx := context.Background()

	a, err := g.Resolve(ctx, "123 main st vancouver")
	require.NoError(t, err)
	b, err := g.Resolve(ctx, "123 main st vancouver")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := g.Resolve(ctx, "456 oak ave victoria")
	require.NoError(t, err)
	assert.NotEqual(t, a.Point, c.Point)
}

func TestMockGeocoderValidRange(t *testing.T) {
	g := MockGeocoder{}
	for _, addr := range []string{"1 a st", "99 b ave", "742 evergreen terrace"} {
		result, err := g.Resolve(context.Background(), addr)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Point.Lat, -90.0)
		assert.LessOrEqual(t, result.Point.Lat, 90.0)
		assert.GreaterOrEqual(t, result.Point.Lon, -180.0)
		assert.LessOrEqual(t, result.Point.Lon, 180.0)
		assert.NotEmpty(t, result.Area.Name)
		assert.NotEmpty(t, result.City)
	}
}

func TestMockCompsInvariants(t *testing.T) {
	c := MockComps{}
	point := models.GeoPoint{Lat: 49.28, Lon: -123.12}

	comps, err := c.RecentSales(context.Background(), point, 2.0, 90, 6)
	require.NoError(t, err)
	require.Len(t, comps, 6)

	cutoff := time.Now().UTC().AddDate(0, 0, -91)
	for i, comp := range comps {
		assert.GreaterOrEqual(t, comp.DistanceKm, 0.0)
		assert.LessOrEqual(t, comp.DistanceKm, 2.0)
		assert.Greater(t, comp.SalePrice, 0)
		assert.True(t, comp.SaleDate.After(cutoff))
		if i > 0 {
			assert.GreaterOrEqual(t, comp.DistanceKm, comps[i-1].DistanceKm, "closer comps come first")
		}
	}
}

func TestMockTrendsSeries(t *testing.T) {
	tr := MockTrends{}
	area := models.GeoArea{Name: "Kitsilano", Code: "MLS-02"}

	points, err := tr.PriceIndex(context.Background(), area, 12)
	require.NoError(t, err)
	require.Len(t, points, 12)

	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Date.After(points[i-1].Date), "series is chronological")
	}

	again, err := tr.PriceIndex(context.Background(), area, 12)
	require.NoError(t, err)
	for i := range points {
		assert.Equal(t, points[i].Index, again[i].Index)
	}
}

func TestHTTPGeocoder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/resolve", r.URL.Path)
		assert.Equal(t, "123 main st", r.URL.Query().Get("address"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.GeocodeResult{
			Point:    models.GeoPoint{Lat: 49.26, Lon: -123.15},
			Area:     models.GeoArea{Name: "Kitsilano", Code: "MLS-02"},
			City:     "Vancouver",
			Province: "BC",
		})
	}))
	defer server.Close()

	g := NewHTTPGeocoder(server.URL)
	result, err := g.Resolve(context.Background(), "123 main st")
	require.NoError(t, err)
	assert.Equal(t, "Kitsilano", result.Area.Name)
	assert.Equal(t, "Canada", result.Country, "country defaults when omitted")
}

func TestHTTPGeocoderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	g := NewHTTPGeocoder(server.URL)
	_, err := g.Resolve(context.Background(), "123 main st")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPComps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recent-sales", r.URL.Path)
		assert.Equal(t, "6", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{"distance_km": 0.4, "sale_price": 910000, "sale_date": "2025-05-20", "beds": 3},
			{"distance_km": 1.1, "sale_price": 780000, "sale_date": "2025-04-02"},
		})
	}))
	defer server.Close()

	c := NewHTTPComps(server.URL)
	comps, err := c.RecentSales(context.Background(), models.GeoPoint{Lat: 49, Lon: -123}, 2, 90, 6)
	require.NoError(t, err)
	require.Len(t, comps, 2)
	require.NotNil(t, comps[0].Beds)
	assert.Equal(t, 3, *comps[0].Beds)
	assert.Nil(t, comps[1].Beds)
}

func TestHTTPTrends(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/price-index", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{"date": "2025-04-01", "index": 101.2},
			{"date": "2025-05-01", "index": 102.9},
		})
	}))
	defer server.Close()

	tr := NewHTTPTrends(server.URL)
	points, err := tr.PriceIndex(context.Background(), models.GeoArea{Name: "Downtown"}, 12)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 102.9, points[1].Index)
}

func TestDBComps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.db")

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&SaleRecord{}))

	beds := 3
	now := time.Now().UTC()
	rows := []SaleRecord{
		// Within radius and window.
		{Latitude: 49.2810, Longitude: -123.1210, SalePrice: 950000, SaleDate: now.AddDate(0, 0, -10), Beds: &beds, PropertyType: "house"},
		// Too old.
		{Latitude: 49.2811, Longitude: -123.1211, SalePrice: 800000, SaleDate: now.AddDate(0, 0, -120)},
		// Too far.
		{Latitude: 49.5000, Longitude: -123.1200, SalePrice: 700000, SaleDate: now.AddDate(0, 0, -5)},
	}
	require.NoError(t, db.Create(&rows).Error)

	comps, err := NewDBComps(path, logrus.New())
	require.NoError(t, err)

	sales, err := comps.RecentSales(context.Background(), models.GeoPoint{Lat: 49.2800, Lon: -123.1200}, 2.0, 90, 6)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 950000, sales[0].SalePrice)
	assert.Less(t, sales[0].DistanceKm, 2.0)
}
