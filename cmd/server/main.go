package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Mingle/internal/adapters/chat"
	router "github.com/dkeye/Mingle/internal/adapters/http"
	"github.com/dkeye/Mingle/internal/app"
	"github.com/dkeye/Mingle/internal/auth"
	"github.com/dkeye/Mingle/internal/config"
	"github.com/dkeye/Mingle/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Secret == "" {
		log.Fatal().Msg("secret is required, refusing to validate tokens without one")
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}

	store := storage.NewMessageStore(db)
	directory := storage.NewEventDirectory(db)
	validator := auth.NewJWTValidator(cfg.Secret, cfg.TokenIssuer)

	registry := app.NewRegistry()
	broadcaster := app.NewBroadcaster(registry)
	service := app.NewService(store, broadcaster, cfg.HistoryLimit)

	ctl := chat.NewController(validator, directory, registry, broadcaster, service, cfg.ReadLimit, cfg.PingPeriod)
	api := &router.API{Service: service, Registry: registry, Directory: directory}

	r := router.SetupRouter(ctx, cfg, ctl, api, validator)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Mingle chat relay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
