// internal/agents/trend/models.go
package trend

import "airquality-agent/internal/models"

// Trend direction labels.
const (
	DirectionIncreasing   = "increasing"
	DirectionDecreasing   = "decreasing"
	DirectionStable       = "stable"
	DirectionInsufficient = "insufficient_data"
)

// Input contains the parameters for one trend fetch.
type Input struct {
	Location models.LocationCandidate `json:"location"`
	Metric   string                   `json:"metric"`
	Duration string                   `json:"duration"`
}

// Output contains the series and its derived statistics.
type Output struct {
	Samples       []models.Sample `json:"samples,omitempty"`
	Mean          float64         `json:"mean"`
	Min           float64         `json:"min"`
	Max           float64         `json:"max"`
	Direction     string          `json:"direction"`
	ChangePercent float64         `json:"changePercent"`
	NoData        bool            `json:"noData"`
}
