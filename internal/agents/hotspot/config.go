// internal/agents/hotspot/config.go
package hotspot

import (
	"time"

	"airquality-agent/internal/common/config"
)

// Config bounds the hotspot agent. The breakpoints classify cluster
// severity; Minimum filters out clusters below reporting interest.
type Config struct {
	Timeout       time.Duration
	DefaultWindow time.Duration
	Severe        float64
	VeryPoor      float64
	Poor          float64
	Minimum       float64
}

// ConfigFrom translates the central agent settings into package config.
func ConfigFrom(agent config.AgentConfig, thresholds config.ThresholdConfig) Config {
	timeout := time.Duration(agent.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cfg := Config{
		Timeout:       timeout,
		DefaultWindow: 24 * time.Hour,
		Severe:        thresholds.HotspotSevere,
		VeryPoor:      thresholds.HotspotVeryPoor,
		Poor:          thresholds.HotspotPoor,
		Minimum:       thresholds.HotspotMinimum,
	}
	if cfg.Severe <= 0 {
		cfg.Severe = 250
	}
	if cfg.VeryPoor <= 0 {
		cfg.VeryPoor = 120
	}
	if cfg.Poor <= 0 {
		cfg.Poor = 90
	}
	if cfg.Minimum <= 0 {
		cfg.Minimum = 90
	}
	return cfg
}
