// internal/agents/forecast/handler_test.go
package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airquality-agent/internal/agents"
	stderrors "airquality-agent/internal/common/errors"
	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/models"
)

type stubForecast struct {
	points  []models.ForecastPoint
	err     error
	horizon time.Duration
}

func (s *stubForecast) Forecast(ctx context.Context, code string, level models.LocationLevel, metric string, horizon time.Duration) ([]models.ForecastPoint, error) {
	s.horizon = horizon
	if s.err != nil {
		return nil, s.err
	}
	return s.points, nil
}

func pointsOf(values ...float64) []models.ForecastPoint {
	base := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	out := make([]models.ForecastPoint, 0, len(values))
	for i, v := range values {
		out = append(out, models.ForecastPoint{Period: base.Add(time.Duration(i) * time.Hour), Predicted: v})
	}
	return out
}

func testConfig() Config {
	return Config{Timeout: time.Second, DefaultHorizon: 24 * time.Hour}
}

func forecastRequest(duration string) *agents.Request {
	return &agents.Request{
		Location: models.LocationCandidate{Level: models.LevelDistrict, Name: "Delhi", Code: "07"},
		Metric:   "pm25",
		Duration: duration,
	}
}

func TestFetch_PeakAndLow(t *testing.T) {
	h := NewHandler(&stubForecast{points: pointsOf(80, 140, 95)}, testConfig(), logger.NewNoOpLogger())

	outcome, err := h.Fetch(context.Background(), forecastRequest("tomorrow"))
	require.NoError(t, err)
	assert.False(t, outcome.NoData)

	peak := outcome.Data["peak"].(*models.ForecastPoint)
	low := outcome.Data["low"].(*models.ForecastPoint)
	assert.Equal(t, 140.0, peak.Predicted)
	assert.Equal(t, 80.0, low.Predicted)
	assert.Contains(t, outcome.Summary, "140.0")
	assert.Contains(t, outcome.Summary, "Poor")
}

func TestFetch_EmptyHorizonIsNoData(t *testing.T) {
	h := NewHandler(&stubForecast{}, testConfig(), logger.NewNoOpLogger())

	outcome, err := h.Fetch(context.Background(), forecastRequest("tomorrow"))
	require.NoError(t, err)
	assert.True(t, outcome.NoData)
}

func TestFetch_HorizonFromDurationPhrase(t *testing.T) {
	stub := &stubForecast{points: pointsOf(50)}
	h := NewHandler(stub, testConfig(), logger.NewNoOpLogger())

	_, err := h.Fetch(context.Background(), forecastRequest("next 2 days"))
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, stub.horizon)

	_, err = h.Fetch(context.Background(), forecastRequest("tomorrow"))
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, stub.horizon, "unrecognized phrase falls back to the default horizon")
}

func TestFetch_MissingLocation(t *testing.T) {
	h := NewHandler(&stubForecast{}, testConfig(), logger.NewNoOpLogger())

	_, err := h.Fetch(context.Background(), &agents.Request{Metric: "pm25"})
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeInsufficientInput))
}

func TestFetch_TimeoutMapsToMetricFetchTimeout(t *testing.T) {
	h := NewHandler(&stubForecast{err: context.DeadlineExceeded}, testConfig(), logger.NewNoOpLogger())

	_, err := h.Fetch(context.Background(), forecastRequest("tomorrow"))
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeMetricFetchTimeout))
}
