package providers

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"

	"homeworth/server/internal/models"
	"homeworth/server/internal/seed"
)

// MockComps synthesizes plausible sales near a point. Prices and attributes
// are fake but stable for a given coordinate.
type MockComps struct{}

func (MockComps) RecentSales(_ context.Context, point models.GeoPoint, radiusKm float64, maxAgeDays, limit int) ([]models.ComparableSale, error) {
	s := seed.FNV1a32(fmt.Sprintf("%v,%v", point.Lat, point.Lon))
	today := time.Now().UTC().Truncate(24 * time.Hour)

	out := make([]models.ComparableSale, 0, limit)
	for i := 0; i < limit; i++ {
		ui := uint32(i)
		ageDays := int(seed.Rand(s+ui, 1)[0] * float64(maxAgeDays))
		price := 350_000 + int(seed.Rand(s+ui*31, 1)[0]*1_850_000)
		dist := math.Round(seed.Rand(s+7*ui, 1)[0]*radiusKm*100) / 100
		beds := 2 + int(seed.Rand(s+13*ui, 1)[0]*4)
		baths := 1 + math.Round(seed.Rand(s+17*ui, 1)[0]*2*10)/10
		sqft := 600 + int(seed.Rand(s+19*ui, 1)[0]*2800)
		propertyType := "house"
		if i%2 != 0 {
			propertyType = "condo"
		}
		out = append(out, models.ComparableSale{
			DistanceKm:   dist,
			SalePrice:    price,
			SaleDate:     today.AddDate(0, 0, -ageDays),
			Beds:         &beds,
			Baths:        &baths,
			LivingSqft:   &sqft,
			PropertyType: propertyType,
		})
	}

	// Closer comps first; newer sales break distance ties.
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].SaleDate.After(out[j].SaleDate)
	})
	return out, nil
}

// HTTPComps queries a comps service exposing GET /recent-sales.
type HTTPComps struct {
	client *resty.Client
}

func NewHTTPComps(baseURL string) *HTTPComps {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(15 * time.Second)
	return &HTTPComps{client: client}
}

type compItem struct {
	DistanceKm   float64  `json:"distance_km"`
	SalePrice    int      `json:"sale_price"`
	SaleDate     string   `json:"sale_date"`
	Beds         *int     `json:"beds"`
	Baths        *float64 `json:"baths"`
	LivingSqft   *int     `json:"living_sqft"`
	PropertyType string   `json:"property_type"`
}

func (c *HTTPComps) RecentSales(ctx context.Context, point models.GeoPoint, radiusKm float64, maxAgeDays, limit int) ([]models.ComparableSale, error) {
	var items []compItem
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":          strconv.FormatFloat(point.Lat, 'f', -1, 64),
			"lon":          strconv.FormatFloat(point.Lon, 'f', -1, 64),
			"radius_km":    strconv.FormatFloat(radiusKm, 'f', -1, 64),
			"max_age_days": strconv.Itoa(maxAgeDays),
			"limit":        strconv.Itoa(limit),
		}).
		SetResult(&items).
		Get("/recent-sales")
	if err != nil {
		return nil, eris.Wrapf(ErrUnavailable, "comps: %v", err)
	}
	if resp.IsError() {
		return nil, eris.Wrapf(ErrUnavailable, "comps status %d", resp.StatusCode())
	}

	out := make([]models.ComparableSale, 0, len(items))
	for _, item := range items {
		saleDate, err := time.Parse("2006-01-02", item.SaleDate)
		if err != nil {
			return nil, eris.Wrapf(ErrUnavailable, "comps: bad sale_date %q", item.SaleDate)
		}
		out = append(out, models.ComparableSale{
			DistanceKm:   item.DistanceKm,
			SalePrice:    item.SalePrice,
			SaleDate:     saleDate,
			Beds:         item.Beds,
			Baths:        item.Baths,
			LivingSqft:   item.LivingSqft,
			PropertyType: item.PropertyType,
		})
	}
	return out, nil
}
