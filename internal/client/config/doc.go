// Package config loads runtime configuration for the Vira a Página client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the REST backend
//	-d string   path of the local session database
//	-t int      request timeout (seconds)
//	-r int      retries for idempotent reads
//	-w          allow accept/reject on WAITING_APPROVAL proposals
//	-o          optimistic accept/reject (rolled back on failure)
//	-l string   log level
//
// # JSON schema
//
// Keys that are absent keep their previous value. Durations use
// timex.Duration, so "10s" and integer nanoseconds are both accepted:
//
//	{
//	  "server_base_url": "http://localhost:3000",
//	  "database_path": "session.db",
//	  "request_timeout": "10s",
//	  "fetch_retries": 2,
//	  "waiting_approval_actionable": false,
//	  "optimistic_transitions": false,
//	  "log_level": "info"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
