package config

import (
	"encoding/json"
	"os"

	"github.com/virapagina/virapagina/internal/flagx"
	"github.com/virapagina/virapagina/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero values.
type JsonConfig struct {
	ServerBaseURL             *string         `json:"server_base_url"`
	DatabasePath              *string         `json:"database_path"`
	RequestTimeout            *timex.Duration `json:"request_timeout"`
	FetchRetries              *int            `json:"fetch_retries"`
	WaitingApprovalActionable *bool           `json:"waiting_approval_actionable"`
	OptimisticTransitions     *bool           `json:"optimistic_transitions"`
	LogLevel                  *string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c / -config. Without such a flag it does nothing. Read or decode errors
// panic; the caller decides whether to recover.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc JsonConfig) apply(cfg *Config) {
	if jc.ServerBaseURL != nil {
		cfg.ServerBaseURL = *jc.ServerBaseURL
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.FetchRetries != nil {
		cfg.FetchRetries = *jc.FetchRetries
	}
	if jc.WaitingApprovalActionable != nil {
		cfg.WaitingApprovalActionable = *jc.WaitingApprovalActionable
	}
	if jc.OptimisticTransitions != nil {
		cfg.OptimisticTransitions = *jc.OptimisticTransitions
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
