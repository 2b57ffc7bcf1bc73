// internal/agents/forecast/models.go
package forecast

import "airquality-agent/internal/models"

// Input contains the parameters for one forecast fetch.
type Input struct {
	Location models.LocationCandidate `json:"location"`
	Metric   string                   `json:"metric"`
	Duration string                   `json:"duration"`
}

// Output contains the predicted points and their extremes.
type Output struct {
	Points []models.ForecastPoint `json:"points,omitempty"`
	Peak   *models.ForecastPoint  `json:"peak,omitempty"`
	Low    *models.ForecastPoint  `json:"low,omitempty"`
	NoData bool                   `json:"noData"`
}
