// internal/models/reading.go
package models

import "time"

// Reading is a single normalized measurement for one location.
type Reading struct {
	Metric          string    `json:"metric"`
	Value           float64   `json:"value"`
	Unit            string    `json:"unit"`
	Timestamp       time.Time `json:"timestamp"`
	StationCount    int       `json:"stationCount,omitempty"`
	MeasurementType string    `json:"measurementType,omitempty"` // avg, latest
}

// Sample is one point in a chronological series.
type Sample struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}

// ForecastPoint is one predicted value in a forecast horizon.
type ForecastPoint struct {
	Period    time.Time `json:"period"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"lower,omitempty"`
	Upper     float64   `json:"upper,omitempty"`
}

// HotspotRecord is one elevated-pollution cluster returned by the store.
type HotspotRecord struct {
	LocalityName string  `json:"localityName"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Value        float64 `json:"value"`
	ClusterSize  int     `json:"clusterSize,omitempty"`
}

// AirQualityCategory labels a PM2.5 value using the CPCB-style bands the
// source data is published against.
func AirQualityCategory(value float64) string {
	switch {
	case value <= 30:
		return "Good"
	case value <= 60:
		return "Satisfactory"
	case value <= 90:
		return "Moderate"
	case value <= 120:
		return "Poor"
	case value <= 250:
		return "Very Poor"
	default:
		return "Severe"
	}
}
