package providers

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"

	"homeworth/server/internal/models"
	"homeworth/server/internal/seed"
)

// MockTrends synthesizes a smoothed price index for an area: starts near 100
// and drifts month by month, stable per area name.
type MockTrends struct{}

func (MockTrends) PriceIndex(_ context.Context, area models.GeoArea, months int) ([]models.TrendPoint, error) {
	s := seed.FNV1a32(area.Name + area.Code)
	idx := 100.0 + seed.Rand(s, 1)[0]*8.0

	now := time.Now().UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	out := make([]models.TrendPoint, 0, months)
	for i := months; i > 0; i-- {
		// Monthly drift of +/- 1.5% with seed noise.
		drift := (seed.Rand(s+uint32(i), 1)[0] - 0.5) * 3.0
		idx *= 1.0 + drift/100.0
		out = append(out, models.TrendPoint{
			Date:  firstOfMonth.AddDate(0, -i, 0),
			Index: math.Round(idx*100) / 100,
		})
	}
	return out, nil
}

// HTTPTrends queries a trends service exposing GET /price-index.
type HTTPTrends struct {
	client *resty.Client
}

func NewHTTPTrends(baseURL string) *HTTPTrends {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(10 * time.Second)
	return &HTTPTrends{client: client}
}

type trendItem struct {
	Date  string  `json:"date"`
	Index float64 `json:"index"`
}

func (t *HTTPTrends) PriceIndex(ctx context.Context, area models.GeoArea, months int) ([]models.TrendPoint, error) {
	var items []trendItem
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"area":   area.Name,
			"code":   area.Code,
			"months": strconv.Itoa(months),
		}).
		SetResult(&items).
		Get("/price-index")
	if err != nil {
		return nil, eris.Wrapf(ErrUnavailable, "trends: %v", err)
	}
	if resp.IsError() {
		return nil, eris.Wrapf(ErrUnavailable, "trends status %d", resp.StatusCode())
	}

	out := make([]models.TrendPoint, 0, len(items))
	for _, item := range items {
		date, err := time.Parse("2006-01-02", item.Date)
		if err != nil {
			return nil, eris.Wrapf(ErrUnavailable, "trends: bad date %q", item.Date)
		}
		out = append(out, models.TrendPoint{Date: date, Index: item.Index})
	}
	return out, nil
}
