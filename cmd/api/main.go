package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/forkandfield/catersync/api/routes"
	"github.com/forkandfield/catersync/internal/accounts"
	"github.com/forkandfield/catersync/internal/leads"
	"github.com/forkandfield/catersync/internal/orders"
	"github.com/forkandfield/catersync/internal/tenants"
	ezmanagewebhook "github.com/forkandfield/catersync/internal/webhooks/ezmanage"
	"github.com/forkandfield/catersync/pkg/config"
	"github.com/forkandfield/catersync/pkg/db"
	"github.com/forkandfield/catersync/pkg/ezmanage"
	"github.com/forkandfield/catersync/pkg/logger"
	"github.com/forkandfield/catersync/pkg/metrics"
	"github.com/forkandfield/catersync/pkg/migrate"
	"github.com/forkandfield/catersync/pkg/nutshell"
	"github.com/forkandfield/catersync/pkg/outbox"
	"github.com/forkandfield/catersync/pkg/pubsub"
	"github.com/forkandfield/catersync/pkg/redis"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	registry, err := tenants.LoadRegistry(cfg.Tenants.ProfilesPath)
	if err != nil {
		logg.Error(context.Background(), "failed to load tenant profiles", err)
		os.Exit(1)
	}

	ezmanageClient, err := ezmanage.NewClient(cfg.EzManage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ezmanage client", err)
		os.Exit(1)
	}

	nutshellClient, err := nutshell.NewClient(cfg.Nutshell, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create nutshell client", err)
		os.Exit(1)
	}

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	webhookMetrics := metrics.NewWebhookMetrics(metricsRegistry)

	accountRepo := accounts.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	ordersService := orders.NewService(orderRepo, orders.NewStatusConverter(time.Now), logg)

	syncService := leads.NewSyncService(nutshellClient, registry, logg, webhookMetrics)
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	webhookService, err := ezmanagewebhook.NewService(ezmanagewebhook.ServiceParams{
		OrderRepo:         orderRepo,
		Fetcher:           ezmanageClient,
		Sync:              syncService,
		Outbox:            outboxService,
		TransactionRunner: dbClient,
		Logger:            logg,
		Metrics:           webhookMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := ezmanagewebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.IdempotencyTTL, "ezmanage-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			PubSub:          pubsubClient,
			Orders:          ordersService,
			WebhookService:  webhookService,
			Authenticator:   ezmanagewebhook.NewAuthenticator(accountRepo),
			WebhookGuard:    webhookGuard,
			MetricsRegistry: metricsRegistry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
