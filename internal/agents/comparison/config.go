// internal/agents/comparison/config.go
package comparison

import (
	"time"

	"airquality-agent/internal/common/config"
)

// Config bounds the comparison agent.
type Config struct {
	Timeout       time.Duration // per-location fetch budget
	SafeBound     float64       // all values <= this: everywhere safe
	UnhealthyBand float64       // all values > this: everywhere unhealthy
}

// ConfigFrom translates the central agent settings into package config.
func ConfigFrom(agent config.AgentConfig, thresholds config.ThresholdConfig) Config {
	timeout := time.Duration(agent.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	safe := thresholds.ComparisonSafe
	if safe <= 0 {
		safe = 60
	}
	unhealthy := thresholds.ComparisonUnhealthy
	if unhealthy <= 0 {
		unhealthy = 90
	}
	return Config{
		Timeout:       timeout,
		SafeBound:     safe,
		UnhealthyBand: unhealthy,
	}
}
