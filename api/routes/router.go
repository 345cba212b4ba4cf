package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/motorclubhq/clubhub-backend/api/controllers"
	webhookcontrollers "github.com/motorclubhq/clubhub-backend/api/controllers/webhooks"
	"github.com/motorclubhq/clubhub-backend/api/middleware"
	"github.com/motorclubhq/clubhub-backend/internal/clubs"
	"github.com/motorclubhq/clubhub-backend/internal/monitoring"
	"github.com/motorclubhq/clubhub-backend/internal/provisioning"
	"github.com/motorclubhq/clubhub-backend/internal/subscriptions"
	"github.com/motorclubhq/clubhub-backend/internal/transactions"
	paypalwebhook "github.com/motorclubhq/clubhub-backend/internal/webhooks/paypal"
	"github.com/motorclubhq/clubhub-backend/pkg/config"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/paypal"
)

type pinger interface {
	Ping(context.Context) error
}

// Params collects everything the router composes.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       pinger
	Redis    pinger
	Registry *prometheus.Registry

	SettingsService     clubs.Service
	ProvisioningService provisioning.Service
	SubscriptionService subscriptions.Service
	MonitoringService   monitoring.Service

	PayPalClient    *paypal.Client
	ClubRepo        *clubs.Repository
	TransactionRepo *transactions.Repository
	WebhookGuard    *paypalwebhook.Guard
	WebhookService  *paypalwebhook.Service
}

// NewRouter wires middleware, controllers, and operational endpoints.
func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/paypal", webhookcontrollers.PayPalWebhook(
			p.WebhookService, p.PayPalClient, p.ClubRepo, p.WebhookGuard, cfg.PayPal, logg))
	})

	r.Route("/api/v1/clubs/{clubID}", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg), middleware.RequireClubAccess(logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Get("/paypal-settings", controllers.GetPayPalSettings(p.SettingsService, logg))
			r.Put("/paypal-settings", controllers.UpdatePayPalSettings(p.SettingsService, logg))
			r.Post("/setup-paypal-products", controllers.SetupPayPalProducts(p.ProvisioningService, logg))
			r.Get("/transactions", controllers.ListTransactions(p.TransactionRepo, logg))
		})

		r.Post("/paypal/create-subscription", controllers.CreateSubscription(p.SubscriptionService, logg))
		r.Post("/paypal/cancel-subscription", controllers.CancelSubscription(p.SubscriptionService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg), middleware.RequireAdmin(logg))
		r.Get("/paypal-monitoring", controllers.PayPalMonitoring(p.MonitoringService, logg))
	})

	return r
}
