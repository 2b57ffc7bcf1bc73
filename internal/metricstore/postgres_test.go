// internal/metricstore/postgres_test.go
package metricstore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/models"
)

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, logger.NewTestLogger(t)), mock
}

func TestCurrentReading_ReturnsReading(t *testing.T) {
	store, mock := newStore(t)

	measuredAt := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM aq\.current_readings`).
		WithArgs("10-02", "district", "pm25").
		WillReturnRows(sqlmock.NewRows([]string{
			"metric", "value", "unit", "measured_at", "station_count", "measurement_type",
		}).AddRow("pm25", 42.5, "µg/m³", measuredAt, 3, "avg"))

	reading, err := store.CurrentReading(context.Background(), "10-02", models.LevelDistrict, "pm25")
	require.NoError(t, err)
	require.NotNil(t, reading)
	assert.Equal(t, 42.5, reading.Value)
	assert.Equal(t, "µg/m³", reading.Unit)
	assert.Equal(t, 3, reading.StationCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrentReading_NoRowsMeansNoData(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery(`FROM aq\.current_readings`).
		WillReturnRows(sqlmock.NewRows([]string{
			"metric", "value", "unit", "measured_at", "station_count", "measurement_type",
		}))

	reading, err := store.CurrentReading(context.Background(), "99", models.LevelDistrict, "pm25")
	require.NoError(t, err)
	assert.Nil(t, reading)
}

func TestSeries_WindowConvertsToHours(t *testing.T) {
	store, mock := newStore(t)

	base := time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM aq\.readings`).
		WithArgs("10-02", "district", "pm25", 168).
		WillReturnRows(sqlmock.NewRows([]string{"period", "value"}).
			AddRow(base, 80.0).
			AddRow(base.AddDate(0, 0, 1), 95.0))

	samples, err := store.Series(context.Background(), "10-02", models.LevelDistrict, "pm25", 7*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 80.0, samples[0].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForecast_ReturnsPoints(t *testing.T) {
	store, mock := newStore(t)

	period := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM aq\.forecasts`).
		WithArgs("07", "district", "pm25", 24).
		WillReturnRows(sqlmock.NewRows([]string{"period", "predicted", "lower_bound", "upper_bound"}).
			AddRow(period, 110.0, 90.0, 130.0))

	points, err := store.Forecast(context.Background(), "07", models.LevelDistrict, "pm25", 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 110.0, points[0].Predicted)
	assert.Equal(t, 90.0, points[0].Lower)
}

func TestHotspots_ReturnsRecords(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery(`FROM aq\.hotspots`).
		WithArgs("10", "state", 24).
		WillReturnRows(sqlmock.NewRows([]string{"locality_name", "latitude", "longitude", "value", "cluster_size"}).
			AddRow("Gandhi Maidan", 25.61, 85.14, 300.0, 4).
			AddRow("Anisabad", 25.58, 85.10, 150.0, 2))

	records, err := store.Hotspots(context.Background(), "10", models.LevelState, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Gandhi Maidan", records[0].LocalityName)
	assert.Equal(t, 4, records[0].ClusterSize)
}

func TestQueries_ErrorPropagates(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery(`FROM aq\.readings`).WillReturnError(assert.AnError)

	_, err := store.Series(context.Background(), "10-02", models.LevelDistrict, "pm25", time.Hour)
	assert.Error(t, err)
}
