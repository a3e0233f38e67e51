package providers

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"

	"homeworth/server/internal/models"
	"homeworth/server/internal/seed"
)

var mockAreaNames = []string{"Downtown", "West End", "Kitsilano", "Mount Pleasant", "Fairview", "Yaletown", "Oakridge"}

var mockCities = []struct {
	City     string
	Province string
}{
	{"Vancouver", "BC"},
	{"Victoria", "BC"},
	{"Burnaby", "BC"},
	{"Surrey", "BC"},
	{"Kelowna", "BC"},
}

// MockGeocoder maps an address string to a stable point and area using the
// address seed. Entirely deterministic, no external dependencies.
type MockGeocoder struct{}

func (MockGeocoder) Resolve(_ context.Context, address string) (*models.GeocodeResult, error) {
	s := seed.FNV1a32(address)
	// Keep coordinates roughly within Canada for realism.
	lat := 42.0 + seed.Rand(s, 1)[0]*(83.0-42.0)/2
	lon := -141.0 + seed.Rand(s+1, 1)[0]*(-52.0+141.0)
	point := models.GeoPoint{
		Lat: math.Round(lat*1e6) / 1e6,
		Lon: math.Round(lon*1e6) / 1e6,
	}

	areaIdx := int(seed.Rand(s+2, 1)[0]*float64(len(mockAreaNames))) % len(mockAreaNames)
	area := models.GeoArea{
		Name: mockAreaNames[areaIdx],
		Code: fmt.Sprintf("MLS-%02d", areaIdx),
	}

	cityIdx := int(seed.Rand(s+3, 1)[0]*float64(len(mockCities))) % len(mockCities)
	return &models.GeocodeResult{
		Point:    point,
		Area:     area,
		City:     mockCities[cityIdx].City,
		Province: mockCities[cityIdx].Province,
		Country:  "Canada",
	}, nil
}

// HTTPGeocoder queries a geocoding service exposing GET /resolve.
type HTTPGeocoder struct {
	client *resty.Client
}

func NewHTTPGeocoder(baseURL string) *HTTPGeocoder {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(10 * time.Second)
	return &HTTPGeocoder{client: client}
}

func (g *HTTPGeocoder) Resolve(ctx context.Context, address string) (*models.GeocodeResult, error) {
	var result models.GeocodeResult
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("address", address).
		SetResult(&result).
		Get("/resolve")
	if err != nil {
		return nil, eris.Wrap(ErrUnavailable, err.Error())
	}
	if resp.IsError() {
		return nil, eris.Wrapf(ErrUnavailable, "geocode status %d", resp.StatusCode())
	}
	if result.Country == "" {
		result.Country = "Canada"
	}
	return &result, nil
}
