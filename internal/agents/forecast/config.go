// internal/agents/forecast/config.go
package forecast

import (
	"time"

	"airquality-agent/internal/common/config"
)

// Config bounds the forecast agent.
type Config struct {
	Timeout        time.Duration
	DefaultHorizon time.Duration
}

// ConfigFrom translates the central agent settings into package config.
func ConfigFrom(agent config.AgentConfig) Config {
	timeout := time.Duration(agent.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return Config{
		Timeout:        timeout,
		DefaultHorizon: 24 * time.Hour,
	}
}
