package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"notifier/internal/adapter/repo"
	"notifier/internal/bulk"
	"notifier/internal/gateway"
	"notifier/internal/http/handlers"
	httpapi "notifier/internal/http/httpapi"
	"notifier/internal/infra"
	"notifier/internal/infra/credentials"
	"notifier/internal/infra/geoip"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	jobs := repo.NewJobRepository(dbpool)
	tracking := repo.NewNotificationRepository(dbpool)
	templates := repo.NewTemplateRepository(dbpool)
	sellers := repo.NewSellerRepository(dbpool)

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

	var resolver geoip.CountryResolver
	if cfg.GeoIPDBPath != "" {
		resolver, err = geoip.NewResolver(cfg.GeoIPDBPath)
		if err != nil {
			logger.Warn().Err(err).Msg("geoip database unavailable, country detection disabled")
			resolver = nil
		}
	}

	app := &handlers.App{
		Jobs:               runner,
		Templates:          templates,
		GeoIP:              resolver,
		Logger:             logger,
		DefaultCountryCode: cfg.DefaultCountryCode,
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, cfg, logger))

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
