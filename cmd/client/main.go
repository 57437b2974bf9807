package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/virapagina/virapagina/internal/buildinfo"
	"github.com/virapagina/virapagina/internal/client/api"
	"github.com/virapagina/virapagina/internal/client/cli"
	"github.com/virapagina/virapagina/internal/client/config"
	"github.com/virapagina/virapagina/internal/client/exchanges"
	"github.com/virapagina/virapagina/internal/client/moderation"
	"github.com/virapagina/virapagina/internal/client/services"
	"github.com/virapagina/virapagina/internal/client/session"
	"github.com/virapagina/virapagina/internal/client/storage"
	"github.com/virapagina/virapagina/internal/filex"
	"github.com/virapagina/virapagina/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	if err := run(ctx, cfg, logger); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	dbPath, err := filex.EnsureParentDir(cfg.DatabasePath)
	if err != nil {
		return err
	}
	db, err := storage.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	mgr := session.NewManager(session.NewSQLStorage(db), logger)
	defer mgr.Close()
	// runs before the deferred closes above: the db outlives Initialize
	stopInit := mgr.Start(ctx)
	defer stopInit()

	client, err := api.NewClient(cfg.ServerBaseURL, mgr, logger,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRetries(cfg.FetchRetries),
	)
	if err != nil {
		return err
	}

	mode := exchanges.ModeConfirm
	if cfg.OptimisticTransitions {
		mode = exchanges.ModeOptimistic
	}
	ctrl := exchanges.NewController(mgr, client,
		exchanges.Policy{WaitingApprovalActionable: cfg.WaitingApprovalActionable}, mode, logger)
	defer ctrl.Close()

	mod := moderation.NewController(mgr, client, logger)
	defer mod.Close()

	app := cli.NewApp(cli.Deps{
		Config:    cfg,
		Log:       logger,
		Session:   mgr,
		Auth:      services.NewAuthService(client, mgr),
		Exchanges: ctrl,
		Proposer:  exchanges.NewProposer(mgr, client, logger),
		Moderator: mod,
		Books:     client,
	})
	return app.Run(ctx)
}
