// internal/agents/current-reading/models.go
package currentreading

import "airquality-agent/internal/models"

// Input contains the parameters for one current-reading fetch.
type Input struct {
	Location models.LocationCandidate `json:"location"`
	Metric   string                   `json:"metric"`
}

// Output contains the fetch result.
type Output struct {
	Reading  *models.Reading `json:"reading,omitempty"`
	Category string          `json:"category,omitempty"`
	NoData   bool            `json:"noData"`
}
