package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Simplici0/primaauto/internal/config"
	"github.com/Simplici0/primaauto/internal/db"
	"github.com/Simplici0/primaauto/internal/migrations"
	"github.com/Simplici0/primaauto/internal/obs"
	"github.com/Simplici0/primaauto/internal/premium"
	"github.com/Simplici0/primaauto/internal/rates"
	"github.com/Simplici0/primaauto/internal/seed"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("failed to load config")
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rateConfig, err := loadRates(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load rate configuration")
	}

	srv := newServer(rateConfig, logger, obs.NewMetrics(cfg.MetricsNamespace))
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Str("env", cfg.AppEnv).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

// loadRates reads the rate configuration once; it stays immutable for the
// lifetime of the process.
func loadRates(ctx context.Context, cfg config.Config, logger zerolog.Logger) (premium.Config, error) {
	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return premium.Config{}, err
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(ctx, database, cfg.MigrationsDir); err != nil {
			return premium.Config{}, err
		}
		stats, err := seed.Run(ctx, database, premium.DefaultConfig())
		if err != nil {
			return premium.Config{}, err
		}
		version, err := migrations.Version(ctx, database)
		if err != nil {
			return premium.Config{}, err
		}
		logger.Info().Int64("schema_version", version).Int("inserts", stats.Inserts).Msg("rate seed applied")
	}

	rateConfig, err := rates.Load(ctx, database)
	if err != nil {
		return premium.Config{}, err
	}
	logger.Info().
		Bool("tax_enabled", rateConfig.TaxEnabled).
		Str("tax_rate", rateConfig.TaxRate.String()).
		Ints("deductibles_dm", rateConfig.Surcharges[premium.MaterialDamage].Keys()).
		Ints("deductibles_rt", rateConfig.Surcharges[premium.TotalTheft].Keys()).
		Msg("rate configuration loaded")
	return rateConfig, nil
}
