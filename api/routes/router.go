package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forkandfield/catersync/api/controllers"
	webhookcontrollers "github.com/forkandfield/catersync/api/controllers/webhooks"
	"github.com/forkandfield/catersync/api/middleware"
	internalorders "github.com/forkandfield/catersync/internal/orders"
	ezmanagewebhook "github.com/forkandfield/catersync/internal/webhooks/ezmanage"
	"github.com/forkandfield/catersync/pkg/config"
	"github.com/forkandfield/catersync/pkg/logger"
)

type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              controllers.Pinger
	Redis           controllers.Pinger
	PubSub          controllers.Pinger
	Orders          internalorders.Service
	WebhookService  webhookcontrollers.EzManageWebhookService
	Authenticator   *ezmanagewebhook.Authenticator
	WebhookGuard    *ezmanagewebhook.IdempotencyGuard
	MetricsRegistry *prometheus.Registry
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis, params.PubSub))
	})

	if params.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/ezmanage", webhookcontrollers.EzManageWebhook(params.WebhookService, params.Authenticator, params.WebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/orders/{orderId}", controllers.GetOrder(params.Orders, logg))
		r.Get("/accounts/{accountId}/orders", controllers.ListAccountOrders(params.Orders, logg))
	})

	return r
}
