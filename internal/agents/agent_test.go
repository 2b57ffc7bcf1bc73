// internal/agents/agent_test.go
package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDurationPhrase(t *testing.T) {
	fallback := 24 * time.Hour

	tests := []struct {
		phrase string
		want   time.Duration
	}{
		{"7 days", 7 * 24 * time.Hour},
		{"2 weeks", 14 * 24 * time.Hour},
		{"last month", 30 * 24 * time.Hour},
		{"3 hours", 3 * time.Hour},
		{"year", 365 * 24 * time.Hour},
		{"day", 24 * time.Hour},
		{"tomorrow", fallback},
		{"", fallback},
		{"soon", fallback},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDurationPhrase(tt.phrase, fallback), "phrase %q", tt.phrase)
	}
}

func TestMetricLabel(t *testing.T) {
	assert.Equal(t, "PM2.5", MetricLabel("pm25"))
	assert.Equal(t, "AQI", MetricLabel("aqi"))
	assert.Equal(t, "XYZ", MetricLabel("xyz"))
}
