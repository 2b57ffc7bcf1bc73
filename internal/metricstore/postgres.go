// internal/metricstore/postgres.go

// Package metricstore provides the Postgres-backed measurement reader the
// data agents fetch through.
package metricstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/models"
)

const currentReadingSQL = `
SELECT metric, value, unit, measured_at,
       COALESCE(station_count, 0), COALESCE(measurement_type, 'avg')
FROM aq.current_readings
WHERE location_code = $1 AND location_level = $2 AND metric = $3`

const seriesSQL = `
SELECT date_trunc('day', measured_at) AS period, avg(value) AS value
FROM aq.readings
WHERE location_code = $1 AND location_level = $2 AND metric = $3
  AND measured_at >= now() - ($4 * interval '1 hour')
GROUP BY period
ORDER BY period`

const forecastSQL = `
SELECT period, predicted, COALESCE(lower_bound, 0), COALESCE(upper_bound, 0)
FROM aq.forecasts
WHERE location_code = $1 AND location_level = $2 AND metric = $3
  AND period > now() AND period <= now() + ($4 * interval '1 hour')
ORDER BY period`

const hotspotsSQL = `
SELECT locality_name, latitude, longitude, value, COALESCE(cluster_size, 1)
FROM aq.hotspots
WHERE parent_code = $1 AND parent_level = $2
  AND detected_at >= now() - ($3 * interval '1 hour')
ORDER BY value DESC`

// Store implements the agents' CurrentReader, SeriesReader, ForecastReader
// and HotspotReader against the aq measurement schema.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "metricstore"}),
	}
}

// CurrentReading returns the latest aggregated measurement, or nil when the
// location has no data for the metric.
func (s *Store) CurrentReading(ctx context.Context, code string, level models.LocationLevel, metric string) (*models.Reading, error) {
	row := s.db.QueryRowContext(ctx, currentReadingSQL, code, string(level), metric)

	var r models.Reading
	err := row.Scan(&r.Metric, &r.Value, &r.Unit, &r.Timestamp, &r.StationCount, &r.MeasurementType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current reading query failed: %w", err)
	}
	return &r, nil
}

// Series returns daily averages over the window, oldest first. An empty
// slice means no data, not an error.
func (s *Store) Series(ctx context.Context, code string, level models.LocationLevel, metric string, window time.Duration) ([]models.Sample, error) {
	rows, err := s.db.QueryContext(ctx, seriesSQL, code, string(level), metric, windowHours(window))
	if err != nil {
		return nil, fmt.Errorf("series query failed: %w", err)
	}
	defer rows.Close()

	var samples []models.Sample
	for rows.Next() {
		var sample models.Sample
		if err := rows.Scan(&sample.Period, &sample.Value); err != nil {
			return nil, fmt.Errorf("series scan failed: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("series rows failed: %w", err)
	}
	return samples, nil
}

// Forecast returns predicted points within the horizon, earliest first.
func (s *Store) Forecast(ctx context.Context, code string, level models.LocationLevel, metric string, horizon time.Duration) ([]models.ForecastPoint, error) {
	rows, err := s.db.QueryContext(ctx, forecastSQL, code, string(level), metric, windowHours(horizon))
	if err != nil {
		return nil, fmt.Errorf("forecast query failed: %w", err)
	}
	defer rows.Close()

	var points []models.ForecastPoint
	for rows.Next() {
		var p models.ForecastPoint
		if err := rows.Scan(&p.Period, &p.Predicted, &p.Lower, &p.Upper); err != nil {
			return nil, fmt.Errorf("forecast scan failed: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("forecast rows failed: %w", err)
	}
	return points, nil
}

// Hotspots returns clusters detected within the window, worst first.
func (s *Store) Hotspots(ctx context.Context, code string, level models.LocationLevel, window time.Duration) ([]models.HotspotRecord, error) {
	rows, err := s.db.QueryContext(ctx, hotspotsSQL, code, string(level), windowHours(window))
	if err != nil {
		return nil, fmt.Errorf("hotspots query failed: %w", err)
	}
	defer rows.Close()

	var records []models.HotspotRecord
	for rows.Next() {
		var rec models.HotspotRecord
		if err := rows.Scan(&rec.LocalityName, &rec.Latitude, &rec.Longitude, &rec.Value, &rec.ClusterSize); err != nil {
			return nil, fmt.Errorf("hotspots scan failed: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("hotspots rows failed: %w", err)
	}
	return records, nil
}

func windowHours(window time.Duration) int {
	hours := int(window.Hours())
	if hours < 1 {
		hours = 1
	}
	return hours
}
