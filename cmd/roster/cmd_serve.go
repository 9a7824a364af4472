package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Roupies/holbertonschool-web-back-end/internal/application/command"
	"github.com/Roupies/holbertonschool-web-back-end/internal/application/query"
	"github.com/Roupies/holbertonschool-web-back-end/internal/infrastructure/persistence/postgres"
	httpserver "github.com/Roupies/holbertonschool-web-back-end/internal/interface/http"
	"github.com/Roupies/holbertonschool-web-back-end/internal/interface/http/handlers"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/logger"
)

var serveFlags struct {
	addr      string
	noMigrate bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the roster over HTTP until SIGINT or SIGTERM, then drains open
requests for up to APP_SHUTDOWN_TIMEOUT. With Postgres, pending migrations are
applied before the listener opens unless --no-migrate is given.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (default HTTP_ADDR or :1245)")
	serveCmd.Flags().BoolVar(&serveFlags.noMigrate, "no-migrate", false, "skip Postgres migrations on startup")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	if b.pg != nil && !serveFlags.noMigrate {
		applied, err := postgres.NewMigrator(b.pg).Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database migrations completed", logger.Int("applied", applied))
	}

	srvCfg := httpserver.ConfigFrom(cfg)
	if serveFlags.addr != "" {
		srvCfg.Addr = serveFlags.addr
	}

	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	for _, c := range b.checkers {
		health.AddChecker(c)
	}

	graded := query.NewGetGradedByLocationHandler(b.source, b.grades,
		query.WithGradedCache(b.cache, cfg.Roster.CacheTTL),
		query.WithGradedLogger(log),
	)

	deps := httpserver.Dependencies{
		ListStudentIDs:      query.NewListStudentIDsHandler(b.source),
		GetGradedByLocation: graded,
		PageStudents:        query.NewPageStudentsHandler(b.source, cfg.Roster.DefaultPageSize),
		CountStudents:       query.NewCountStudentsHandler(b.source),
		NormalizeTags:       command.NewNormalizeTagsHandler(b.tags, log),
		Features:            cfg.Features,
		Logger:              log.With(logger.Component("http")),
		HealthChecker:       health,
	}
	if b.repo != nil {
		deps.RosterWrites = command.NewRosterWriteHandler(b.repo, b.cache, log)
	}

	srv := httpserver.NewServer(srvCfg, deps)
	defer srv.Close()

	log.Info("roster service is running",
		logger.String("store", b.kind),
		logger.String("http_address", srvCfg.Addr),
		logger.String("version", cfg.App.Version),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("starting graceful shutdown", logger.Duration("timeout", cfg.App.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("service error", logger.Err(err))
		return err
	}
	log.Info("shutdown completed successfully")
	return nil
}
