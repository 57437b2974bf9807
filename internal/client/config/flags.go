package config

import (
	"flag"
	"os"
	"time"

	"github.com/virapagina/virapagina/internal/flagx"
)

var ownFlags = []string{"-a", "-d", "-t", "-r", "-w", "-o", "-l"}

// parseFlags populates Config fields from command-line flags.
//
// Only the flags listed in ownFlags are considered (see flagx.FilterArgs), so
// -c/-config and anything else on the command line do not interfere.
// A malformed value panics.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], ownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the REST backend")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local session database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.IntVar(&cfg.FetchRetries, "r", cfg.FetchRetries, "retries for idempotent reads")
	fs.BoolVar(&cfg.WaitingApprovalActionable, "w", cfg.WaitingApprovalActionable, "allow accept/reject on WAITING_APPROVAL proposals")
	fs.BoolVar(&cfg.OptimisticTransitions, "o", cfg.OptimisticTransitions, "apply accept/reject before the server confirms")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
