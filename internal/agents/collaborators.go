// internal/agents/collaborators.go
package agents

import (
	"context"
	"time"

	"airquality-agent/internal/models"
)

// Collaborator interfaces the metric store implements. Each returns its
// zero value with a nil error for "no data"; errors mean transport failure.

// CurrentReader serves the latest reading for one location. Shared by the
// current-reading and comparison agents.
type CurrentReader interface {
	CurrentReading(ctx context.Context, code string, level models.LocationLevel, metric string) (*models.Reading, error)
}

// SeriesReader serves a chronologically ordered series over a window.
type SeriesReader interface {
	Series(ctx context.Context, code string, level models.LocationLevel, metric string, window time.Duration) ([]models.Sample, error)
}

// ForecastReader serves predicted values over a horizon.
type ForecastReader interface {
	Forecast(ctx context.Context, code string, level models.LocationLevel, metric string, horizon time.Duration) ([]models.ForecastPoint, error)
}

// HotspotReader serves elevated-pollution clusters within a location.
type HotspotReader interface {
	Hotspots(ctx context.Context, code string, level models.LocationLevel, window time.Duration) ([]models.HotspotRecord, error)
}
