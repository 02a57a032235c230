package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adelcourt/fiches-backend/api/controllers"
	billingcontrollers "github.com/adelcourt/fiches-backend/api/controllers/billing"
	webhookcontrollers "github.com/adelcourt/fiches-backend/api/controllers/webhooks"
	"github.com/adelcourt/fiches-backend/api/middleware"
	"github.com/adelcourt/fiches-backend/api/responses"
	stripewebhook "github.com/adelcourt/fiches-backend/internal/webhooks/stripe"
	"github.com/adelcourt/fiches-backend/pkg/config"
	pkgerrors "github.com/adelcourt/fiches-backend/pkg/errors"
	"github.com/adelcourt/fiches-backend/pkg/logger"
	"github.com/adelcourt/fiches-backend/pkg/metrics"
	"github.com/adelcourt/fiches-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	stripeClient *stripe.Client,
	webhookService *stripewebhook.Service,
	webhookGuard *stripewebhook.IdempotencyGuard,
	webhookMetrics *metrics.WebhookMetrics,
	billingService billingcontrollers.Service,
	promRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins, cfg.CORS.MaxAgeSeconds),
	)

	// Stripe probes webhook endpoints with non-POST methods during setup;
	// the contract is an explicit 405 body rather than chi's bare default.
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMethodNotAllowed, ""))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(webhookService, stripeClient, webhookGuard, webhookMetrics, logg))
		r.HandleFunc("/test", webhookcontrollers.Echo(logg))
	})

	r.Route("/api/v1/billing", func(r chi.Router) {
		r.Post("/checkout-session", billingcontrollers.CreateCheckoutSession(billingService, logg))
		r.Post("/portal-session", billingcontrollers.CreatePortalSession(billingService, logg))
	})

	return r
}
