package providers

import (
	"context"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"homeworth/server/internal/models"
)

// SaleRecord is a historical sale row in the local sales database.
type SaleRecord struct {
	ID           int64     `gorm:"primaryKey"`
	Latitude     float64   `gorm:"index"`
	Longitude    float64   `gorm:"index"`
	SalePrice    int       `gorm:"not null"`
	SaleDate     time.Time `gorm:"index;not null"`
	Beds         *int
	Baths        *float64
	LivingSqft   *int
	PropertyType string
}

func (SaleRecord) TableName() string {
	return "sales"
}

// DBComps serves comparables from a local sqlite sales database. Recency is
// filtered in SQL; the radius cut uses haversine distance in Go because
// sqlite has no geo functions.
type DBComps struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewDBComps opens (and migrates) the sales database at path.
func NewDBComps(path string, log *logrus.Logger) (*DBComps, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, eris.Wrap(err, "comps: open sales database")
	}
	if err := db.AutoMigrate(&SaleRecord{}); err != nil {
		return nil, eris.Wrap(err, "comps: migrate sales database")
	}
	return &DBComps{db: db, logger: log}, nil
}

func (c *DBComps) RecentSales(ctx context.Context, point models.GeoPoint, radiusKm float64, maxAgeDays, limit int) ([]models.ComparableSale, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)

	// Cheap bounding box narrows the scan before the exact distance check.
	latDelta := radiusKm / 111.0
	lonDelta := radiusKm / 70.0

	var records []SaleRecord
	err := c.db.WithContext(ctx).
		Where("sale_date >= ?", cutoff).
		Where("latitude BETWEEN ? AND ?", point.Lat-latDelta, point.Lat+latDelta).
		Where("longitude BETWEEN ? AND ?", point.Lon-lonDelta, point.Lon+lonDelta).
		Find(&records).Error
	if err != nil {
		return nil, eris.Wrapf(ErrUnavailable, "comps: query sales: %v", err)
	}

	origin := orb.Point{point.Lon, point.Lat}
	out := make([]models.ComparableSale, 0, limit)
	for _, record := range records {
		distKm := geo.DistanceHaversine(origin, orb.Point{record.Longitude, record.Latitude}) / 1000
		if distKm > radiusKm {
			continue
		}
		out = append(out, models.ComparableSale{
			DistanceKm:   distKm,
			SalePrice:    record.SalePrice,
			SaleDate:     record.SaleDate,
			Beds:         record.Beds,
			Baths:        record.Baths,
			LivingSqft:   record.LivingSqft,
			PropertyType: record.PropertyType,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].SaleDate.After(out[j].SaleDate)
	})
	if len(out) > limit {
		out = out[:limit]
	}

	c.logger.WithFields(logrus.Fields{
		"scanned":  len(records),
		"returned": len(out),
	}).Debug("Queried sales database for comparables")
	return out, nil
}
