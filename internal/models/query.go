// internal/models/query.go
package models

// Intent classifies a natural-language query into one of the supported
// question categories.
type Intent string

const (
	IntentCurrentReading Intent = "current_reading"
	IntentTrend          Intent = "trend"
	IntentComparison     Intent = "comparison"
	IntentForecast       Intent = "forecast"
	IntentHotspot        Intent = "hotspot"
	IntentUnknown        Intent = "unknown"
)

// Entity slot names produced by the parser.
const (
	EntityLocation  = "location"
	EntityLocations = "locations" // comparison targets, comma separated
	EntityMetric    = "metric"
	EntityDuration  = "duration"
	EntityUnit      = "unit"
	EntityRawQuery  = "raw_query"
)

// ParsedQuery is the immutable output of the intent parser.
type ParsedQuery struct {
	Intent     Intent            `json:"intent"`
	Entities   map[string]string `json:"entities"`
	Confidence float64           `json:"confidence"`
	RawText    string            `json:"rawText"`
}

// Location returns the primary location entity, empty when none was extracted.
func (p *ParsedQuery) Location() string {
	if p == nil || p.Entities == nil {
		return ""
	}
	return p.Entities[EntityLocation]
}

// Metric returns the canonical metric entity, defaulting to pm25.
func (p *ParsedQuery) Metric() string {
	if p == nil || p.Entities == nil {
		return "pm25"
	}
	if m, ok := p.Entities[EntityMetric]; ok && m != "" {
		return m
	}
	return "pm25"
}
