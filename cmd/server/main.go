package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-wa-relay/internal/adapter"
	"github.com/MKhiriev/go-wa-relay/internal/config"
	"github.com/MKhiriev/go-wa-relay/internal/handler"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/internal/server"
	"github.com/MKhiriev/go-wa-relay/internal/service"
	"github.com/MKhiriev/go-wa-relay/internal/store"
	"github.com/MKhiriev/go-wa-relay/internal/workers"
	"github.com/MKhiriev/go-wa-relay/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(build)

	log := logger.NewLogger("wa-relay")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	logger.SetLevel(cfg.App.LogLevel)

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	storages, closeStorages, err := newStorages(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer closeStorages()

	factory, err := adapter.NewWSClientFactory(cfg.Adapter, log.WithComponent("transport"))
	if err != nil {
		log.Fatal().Err(err).Msg("error creating transport adapter")
	}

	answers, err := adapter.NewHTTPAnswerAdapter(cfg.Adapter, log.WithComponent("answers"))
	if err != nil {
		log.Fatal().Err(err).Msg("error creating answer adapter")
	}

	services, err := service.NewServices(cfg, storages, factory, answers, build, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	bg := workers.NewWorkers(services.Controller, services.Journal, storages.SessionStore, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return bg.Run(gctx) })

	if err = g.Wait(); err != nil {
		log.Error().Err(err).Msg("relay stopped with error")
		return
	}
	log.Info().Msg("relay stopped")
}

// newStorages opens the session store and, when a DSN is configured, the
// migrated event journal.
func newStorages(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*store.Storages, func(), error) {
	identity := models.NewSessionIdentity(cfg.App.ClientID, cfg.Storage.Session.Root)
	policy := store.RetryPolicy{
		MaxAttempts: cfg.Workers.EraseAttempts,
		Interval:    cfg.Workers.EraseInterval,
	}
	sessions := store.NewSessionStore(identity, store.NewEraser(log.WithComponent("eraser")), policy, log.WithComponent("sessions"))

	if cfg.Storage.DB.DSN == "" {
		log.Warn().Msg("event journal disabled: no database configured")
		return store.NewStorages(sessions, nil), func() {}, nil
	}

	db, err := store.NewConnectSQLite(ctx, cfg.Storage.DB, log)
	if err != nil {
		return nil, nil, err
	}
	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error migrating database: %w", err)
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Err(err).Msg("error closing database")
		}
	}
	return store.NewStorages(sessions, store.NewEventRepository(db, log.WithComponent("journal"))), closeDB, nil
}

func printBuildInfo(build models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", build.BuildVersion())
	fmt.Printf("Build date: %s\n", build.BuildDate())
	fmt.Printf("Build commit: %s\n", build.BuildCommit())
}
