// internal/agents/labels.go
package agents

import "strings"

var metricLabels = map[string]string{
	"pm25": "PM2.5",
	"pm10": "PM10",
	"no2":  "NO2",
	"so2":  "SO2",
	"o3":   "O3",
	"co":   "CO",
	"aqi":  "AQI",
}

// MetricLabel returns the display form of a canonical metric id.
func MetricLabel(metric string) string {
	if label, ok := metricLabels[metric]; ok {
		return label
	}
	return strings.ToUpper(metric)
}
