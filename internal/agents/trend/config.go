// internal/agents/trend/config.go
package trend

import (
	"time"

	"airquality-agent/internal/common/config"
)

// Config bounds the trend agent.
type Config struct {
	Timeout       time.Duration
	DeltaPercent  float64       // half-over-half change needed for a direction call
	DefaultWindow time.Duration // used when the query has no duration phrase
}

// ConfigFrom translates the central agent settings into package config.
func ConfigFrom(agent config.AgentConfig, thresholds config.ThresholdConfig) Config {
	timeout := time.Duration(agent.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	delta := thresholds.TrendDeltaPercent
	if delta <= 0 {
		delta = 10
	}
	return Config{
		Timeout:       timeout,
		DeltaPercent:  delta,
		DefaultWindow: 7 * 24 * time.Hour,
	}
}
