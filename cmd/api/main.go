package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/motorclubhq/clubhub-backend/api/routes"
	"github.com/motorclubhq/clubhub-backend/internal/clubs"
	"github.com/motorclubhq/clubhub-backend/internal/members"
	"github.com/motorclubhq/clubhub-backend/internal/monitoring"
	"github.com/motorclubhq/clubhub-backend/internal/notifications"
	"github.com/motorclubhq/clubhub-backend/internal/provisioning"
	"github.com/motorclubhq/clubhub-backend/internal/subscriptions"
	"github.com/motorclubhq/clubhub-backend/internal/transactions"
	paypalwebhook "github.com/motorclubhq/clubhub-backend/internal/webhooks/paypal"
	"github.com/motorclubhq/clubhub-backend/pkg/config"
	"github.com/motorclubhq/clubhub-backend/pkg/db"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/metrics"
	"github.com/motorclubhq/clubhub-backend/pkg/migrate"
	"github.com/motorclubhq/clubhub-backend/pkg/paypal"
	"github.com/motorclubhq/clubhub-backend/pkg/redis"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	paypalMetrics := metrics.NewPayPalMetrics(registry)

	clubRepo := clubs.NewRepository(dbClient.DB())
	memberRepo := members.NewRepository(dbClient.DB())
	transactionRepo := transactions.NewRepository(dbClient.DB())
	monitoringRepo := monitoring.NewRepository(dbClient.DB())

	monitoringService, err := monitoring.NewService(monitoring.ServiceParams{
		Repo:            monitoringRepo,
		TransactionRepo: transactionRepo,
		Logger:          logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create monitoring service", err)
		os.Exit(1)
	}

	paypalClient := paypal.NewClient(cfg.PayPal, monitoringService, paypalMetrics, logg)

	settingsService, err := clubs.NewService(clubs.ServiceParams{
		Repo:        clubRepo,
		TokenClient: paypalClient,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	provisioningService, err := provisioning.NewService(provisioning.ServiceParams{
		ClubRepo:     clubRepo,
		PayPalClient: paypalClient,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create provisioning service", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		ClubRepo:          clubRepo,
		MemberRepo:        memberRepo,
		TransactionRepo:   transactionRepo,
		PayPalClient:      paypalClient,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	webhookService, err := paypalwebhook.NewService(paypalwebhook.ServiceParams{
		ClubRepo:          clubRepo,
		MemberRepo:        memberRepo,
		TransactionRepo:   transactionRepo,
		TransactionRunner: dbClient,
		Notifier:          notifications.NewLogNotifier(logg),
		Metrics:           paypalMetrics,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard := paypalwebhook.NewGuard(redisClient, cfg.Webhook.IdempotencyTTL)

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
		Handler: routes.NewRouter(routes.Params{
			Config:              cfg,
			Logger:              logg,
			DB:                  dbClient,
			Redis:               redisClient,
			Registry:            registry,
			SettingsService:     settingsService,
			ProvisioningService: provisioningService,
			SubscriptionService: subscriptionService,
			MonitoringService:   monitoringService,
			PayPalClient:        paypalClient,
			ClubRepo:            clubRepo,
			TransactionRepo:     transactionRepo,
			WebhookGuard:        webhookGuard,
			WebhookService:      webhookService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
