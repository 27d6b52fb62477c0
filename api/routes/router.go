package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paclead/splitsettle/api/controllers"
	ledgercontrollers "github.com/paclead/splitsettle/api/controllers/ledger"
	splitrulecontrollers "github.com/paclead/splitsettle/api/controllers/splitrules"
	webhookcontrollers "github.com/paclead/splitsettle/api/controllers/webhooks"
	"github.com/paclead/splitsettle/api/middleware"
	"github.com/paclead/splitsettle/internal/ledger"
	"github.com/paclead/splitsettle/internal/split"
	"github.com/paclead/splitsettle/pkg/config"
	"github.com/paclead/splitsettle/pkg/enums"
	"github.com/paclead/splitsettle/pkg/logger"
)

// Dependencies carries the services the router mounts. Readiness entries
// may be nil for dependencies that are not configured.
type Dependencies struct {
	Readiness      map[string]controllers.Pinger
	PaymentWebhook webhookcontrollers.PaymentWebhookService
	Ledger         ledger.Service
	SplitRules     split.RulesService
	// Gatherer serves /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/payment-webhook", func(r chi.Router) {
		r.Get("/", webhookcontrollers.PaymentWebhookStatus())
		r.Head("/", webhookcontrollers.PaymentWebhookStatus())
		r.Post("/", webhookcontrollers.PaymentWebhook(deps.PaymentWebhook, cfg.Webhook.MaxBodyBytes, logg))
		r.Post("/{gateway}", webhookcontrollers.PaymentWebhook(deps.PaymentWebhook, cfg.Webhook.MaxBodyBytes, logg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.App.CORSOrigins))
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Route("/v1/sales/{saleId}", func(r chi.Router) {
			r.Get("/ledger", ledgercontrollers.SaleLedger(deps.Ledger, logg))
			r.Get("/attempts", ledgercontrollers.SaleAttempts(deps.Ledger, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.ActorRoleAdmin, enums.ActorRoleService))
		r.Get("/ping", controllers.AdminPing())
		r.Route("/v1/organizations/{orgId}/split-rules", func(r chi.Router) {
			r.Get("/", splitrulecontrollers.List(deps.SplitRules, logg))
			r.Post("/", splitrulecontrollers.Create(deps.SplitRules, logg))
			r.Delete("/{ruleId}", splitrulecontrollers.Deactivate(deps.SplitRules, logg))
		})
	})

	return r
}
