// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Search   SearchConfig   `mapstructure:"search"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Agents   AgentsConfig   `mapstructure:"agents"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	ListenAddress  string `mapstructure:"listen_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
	ReadTimeout    int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int    `mapstructure:"write_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
	URL       string   `mapstructure:"url"` // single-node alternative to addresses
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Query Pipeline Config ---

// SearchConfig selects and bounds the location-search collaborator.
type SearchConfig struct {
	Backend      string `mapstructure:"backend"`       // postgres | elasticsearch
	Timeout      int    `mapstructure:"timeout"`       // milliseconds
	CandidateCap int    `mapstructure:"candidate_cap"` // max disambiguation options
}

type CacheConfig struct {
	DefaultTTL    int `mapstructure:"default_ttl"`    // seconds
	SweepInterval int `mapstructure:"sweep_interval"` // seconds
}

// AgentConfig holds the core settings applicable to every data agent.
type AgentConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // milliseconds
}

// AgentsConfig carries per-agent settings plus the heuristic thresholds
// the agents compute derived statistics with.
type AgentsConfig struct {
	CurrentReading AgentConfig `mapstructure:"current_reading"`
	Trend          AgentConfig `mapstructure:"trend"`
	Comparison     AgentConfig `mapstructure:"comparison"`
	Forecast       AgentConfig `mapstructure:"forecast"`
	Hotspot        AgentConfig `mapstructure:"hotspot"`

	Thresholds ThresholdConfig `mapstructure:"thresholds"`
}

// ThresholdConfig holds heuristic constants. These bands are deployment
// configuration, not validated air-quality standards.
type ThresholdConfig struct {
	ComparisonSafe      float64 `mapstructure:"comparison_safe"`      // all-safe boundary (<=)
	ComparisonUnhealthy float64 `mapstructure:"comparison_unhealthy"` // all-unhealthy boundary (>)
	TrendDeltaPercent   float64 `mapstructure:"trend_delta_percent"`  // half-over-half change for a direction call
	HotspotSevere       float64 `mapstructure:"hotspot_severe"`
	HotspotVeryPoor     float64 `mapstructure:"hotspot_very_poor"`
	HotspotPoor         float64 `mapstructure:"hotspot_poor"`
	HotspotMinimum      float64 `mapstructure:"hotspot_minimum"` // severity filter floor
}

type WorkflowConfig struct {
	StateTTL int `mapstructure:"state_ttl"` // seconds a suspended state stays resumable by id
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
