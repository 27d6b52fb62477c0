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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/paclead/splitsettle/api/controllers"
	"github.com/paclead/splitsettle/api/routes"
	"github.com/paclead/splitsettle/internal/attempts"
	"github.com/paclead/splitsettle/internal/gateways"
	"github.com/paclead/splitsettle/internal/ledger"
	"github.com/paclead/splitsettle/internal/sales"
	"github.com/paclead/splitsettle/internal/split"
	"github.com/paclead/splitsettle/internal/webhooks/payment"
	"github.com/paclead/splitsettle/pkg/config"
	"github.com/paclead/splitsettle/pkg/db"
	"github.com/paclead/splitsettle/pkg/instance"
	"github.com/paclead/splitsettle/pkg/logger"
	"github.com/paclead/splitsettle/pkg/metrics"
	"github.com/paclead/splitsettle/pkg/migrate"
	"github.com/paclead/splitsettle/pkg/outbox"
	"github.com/paclead/splitsettle/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{"db": dbClient}

	var guard *payment.CompletionGuard
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		readiness["redis"] = redisClient

		guard, err = payment.NewCompletionGuard(redisClient, cfg.Webhook.CompletedTTL)
		if err != nil {
			logg.Error(ctx, "failed to create completion guard", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured, webhook completion guard disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	conn := dbClient.DB()
	salesRepo := sales.NewRepository(conn)
	attemptsRepo := attempts.NewRepository(conn)
	ledgerRepo := ledger.NewRepository(conn)
	splitRepo := split.NewRepository(conn)

	locator, err := sales.NewLocator(salesRepo)
	if err != nil {
		logg.Error(ctx, "failed to create sale locator", err)
		os.Exit(1)
	}
	updater, err := sales.NewUpdater(salesRepo)
	if err != nil {
		logg.Error(ctx, "failed to create sale updater", err)
		os.Exit(1)
	}
	recorder, err := attempts.NewRecorder(attemptsRepo)
	if err != nil {
		logg.Error(ctx, "failed to create attempt recorder", err)
		os.Exit(1)
	}

	engine, err := split.NewEngine(split.EngineParams{
		DB:         dbClient,
		Splits:     splitRepo,
		Ledger:     ledgerRepo,
		Outbox:     outbox.NewService(outbox.NewRepository(conn), logg),
		Settlement: cfg.Settlement,
		Metrics:    metrics.NewSplitMetrics(registry),
		Logger:     logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create split engine", err)
		os.Exit(1)
	}

	webhookService, err := payment.NewService(payment.ServiceParams{
		Registry: gateways.DefaultRegistry(),
		Verifier: gateways.NewVerifier(cfg.Webhook),
		Locator:  locator,
		Updater:  updater,
		Attempts: recorder,
		Splits:   engine,
		Guard:    guard,
		Metrics:  metrics.NewWebhookMetrics(registry),
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create payment webhook service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.ServiceParams{
		Ledger:   ledgerRepo,
		Sales:    salesRepo,
		Attempts: attemptsRepo,
	})
	if err != nil {
		logg.Error(ctx, "failed to create ledger service", err)
		os.Exit(1)
	}

	rulesService, err := split.NewRulesService(splitRepo)
	if err != nil {
		logg.Error(ctx, "failed to create split rules service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"instanceId": instance.GetID("api"),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Readiness:      readiness,
			PaymentWebhook: webhookService,
			Ledger:         ledgerService,
			SplitRules:     rulesService,
			Gatherer:       registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "api server shutdown failed", err)
		}
	}
}
