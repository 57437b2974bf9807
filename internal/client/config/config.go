package config

import "time"

// Config holds runtime settings for the Vira a Página terminal client.
//
// Fields:
//   - ServerBaseURL: base URL of the REST backend.
//   - DatabasePath: SQLite file holding the persisted session.
//   - RequestTimeout: per-request deadline for REST calls.
//   - FetchRetries: extra attempts for idempotent reads on connectivity errors.
//   - WaitingApprovalActionable: lets providers accept/reject WAITING_APPROVAL proposals.
//   - OptimisticTransitions: apply accept/reject locally before the server confirms.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerBaseURL             string
	DatabasePath              string
	RequestTimeout            time.Duration
	FetchRetries              int
	WaitingApprovalActionable bool
	OptimisticTransitions     bool
	LogLevel                  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:3000"
	c.DatabasePath = "session.db"
	c.RequestTimeout = 10 * time.Second
	c.FetchRetries = 2
	c.WaitingApprovalActionable = false
	c.OptimisticTransitions = false
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
