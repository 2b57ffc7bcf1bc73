// internal/agents/comparison/models.go
package comparison

import "airquality-agent/internal/models"

// Input contains the comparison targets and metric.
type Input struct {
	Targets []models.LocationCandidate `json:"targets"`
	Metric  string                     `json:"metric"`
}

// Entry is one compared location. Value is nil when the location had no
// data or its fetch failed; nil entries are excluded from ranking.
type Entry struct {
	Name     string               `json:"name"`
	Code     string               `json:"code"`
	Level    models.LocationLevel `json:"level"`
	Value    *float64             `json:"value"`
	Category string               `json:"category,omitempty"`
}

// Output contains all entries plus the derived comparison statistics.
type Output struct {
	Entries      []Entry  `json:"entries"`
	Ranked       []Entry  `json:"ranked"` // ascending by value, input order on ties
	Best         *Entry   `json:"best,omitempty"`
	Worst        *Entry   `json:"worst,omitempty"`
	Difference   float64  `json:"difference"`
	AllSafe      bool     `json:"allSafe"`
	AllUnhealthy bool     `json:"allUnhealthy"`
	Excluded     []string `json:"excluded,omitempty"` // names without usable values
	NoData       bool     `json:"noData"`
}
