package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"notifier/internal/adapter/repo"
	"notifier/internal/bulk"
	"notifier/internal/gateway"
	"notifier/internal/infra"
	"notifier/internal/infra/credentials"
)

// The worker does two things the API process must not depend on staying
// alive for: it reclaims jobs orphaned by a crashed process, and it runs
// the scheduled billing-reminder sweep.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	jobs := repo.NewJobRepository(dbpool)
	tracking := repo.NewNotificationRepository(dbpool)
	templates := repo.NewTemplateRepository(dbpool)
	sellers := repo.NewSellerRepository(dbpool)
	customers := repo.NewCustomerRepository(dbpool)

	sender := gateway.NewClient(gateway.Options{
		BaseURL:        cfg.GatewayBaseURL,
		RequestTimeout: cfg.GatewayTimeout,
		Retries:        cfg.GatewayRetries,
		SendsPerSec:    cfg.GatewaySendPerSec,
		Logger:         &logger,
	})

	runner := bulk.NewRunner(jobs, tracking, templates, credentials.NewStore(sellers), sender, logger, bulk.Options{
		DefaultPaceSeconds: cfg.DefaultPaceSeconds,
		ExpiringWindowDays: cfg.ExpiringWindowDays,
		DefaultCountryCode: cfg.DefaultCountryCode,
		ListLimit:          cfg.ListJobsLimit,
	})
	sweeper := bulk.NewSweeper(customers, tracking, sellers, runner, logger, cfg.ExpiringWindowDays)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SweepCronSpec, func() {
		if err := sweeper.Sweep(ctx); err != nil {
			logger.Error().Err(err).Msg("reminder sweep failed")
		}
	}); err != nil {
		logger.Fatal().Err(err).Str("spec", cfg.SweepCronSpec).Msg("invalid sweep cron spec")
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info().
		Str("sweep_cron", cfg.SweepCronSpec).
		Dur("recovery_poll", cfg.RecoveryPollInterval).
		Msg("worker started")

	ticker := time.NewTicker(cfg.RecoveryPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-cfg.RecoveryStaleAfter)
			n, err := runner.RecoverStale(ctx, cutoff)
			if err != nil {
				logger.Error().Err(err).Msg("stale job recovery failed")
				continue
			}
			if n > 0 {
				logger.Info().Int("jobs", n).Msg("recovered stale jobs")
			}
		}
	}
}
