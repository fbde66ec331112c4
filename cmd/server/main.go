package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quayline/terminal-backend/internal/config"
	"github.com/quayline/terminal-backend/internal/db"
	httpapi "github.com/quayline/terminal-backend/internal/http"
	"github.com/quayline/terminal-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "terminal-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}
	if err := store.SeedBerths(ctx, cfg.BerthNumbers()); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed berths")
	}

	svcs := httpapi.Services{
		Vessels:    service.NewVesselService(store, logger),
		Operations: service.NewOperationService(store, logger),
		Berths:     service.NewBerthService(store, logger),
		Teams:      service.NewTeamService(store, logger),
		Ledger:     service.NewLedgerService(store, logger),
	}

	router := httpapi.Router(cfg, store, svcs, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
