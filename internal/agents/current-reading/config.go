// internal/agents/current-reading/config.go
package currentreading

import (
	"time"

	"airquality-agent/internal/common/config"
)

// Config bounds the current-reading agent.
type Config struct {
	Timeout time.Duration
}

// ConfigFrom translates the central agent settings into package config.
func ConfigFrom(agent config.AgentConfig) Config {
	timeout := time.Duration(agent.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return Config{Timeout: timeout}
}
