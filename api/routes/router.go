package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/basket-activity/api/controllers"
	basketcontrollers "github.com/angelmondragon/basket-activity/api/controllers/baskets"
	reportcontrollers "github.com/angelmondragon/basket-activity/api/controllers/reports"
	"github.com/angelmondragon/basket-activity/api/middleware"
	"github.com/angelmondragon/basket-activity/internal/baskets"
	"github.com/angelmondragon/basket-activity/internal/products"
	"github.com/angelmondragon/basket-activity/internal/removeditems"
	"github.com/angelmondragon/basket-activity/internal/users"
	"github.com/angelmondragon/basket-activity/pkg/config"
	"github.com/angelmondragon/basket-activity/pkg/logger"
	"github.com/angelmondragon/basket-activity/pkg/metrics"
)

// RateLimiter backs the per-client throttles on expensive routes.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies carries everything the HTTP surface is wired to.
type Dependencies struct {
	Users        users.Service
	Products     products.Service
	Baskets      baskets.Service
	RemovedItems removeditems.Service

	RateLimiter RateLimiter
	Readiness   map[string]controllers.Pinger

	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Metrics(deps.HTTPMetrics),
	)

	trustedProxies, err := cfg.RateLimit.TrustedProxyPrefixes()
	if err != nil {
		logg.Error(context.Background(), "rate_limit.trusted_proxies_invalid", err)
	}
	exportPolicy := middleware.NewRateLimitPolicy(
		"export_csv",
		cfg.RateLimit.ExportWindow,
		cfg.RateLimit.ExportLimit,
	).TrustingProxies(trustedProxies)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/users", controllers.UsersList(deps.Users, logg))
		r.Get("/products", controllers.ProductsList(deps.Products, logg))

		r.Route("/baskets", func(r chi.Router) {
			r.Get("/", basketcontrollers.BasketFetch(deps.Baskets, deps.Users, logg))
			r.Post("/", basketcontrollers.BasketAdd(deps.Baskets, deps.Users, deps.Products, logg))
			r.Get("/removed-items", basketcontrollers.BasketRemovedItems(deps.Baskets, deps.Users, logg))
			r.Patch("/{user_id}/products/{product_id}", basketcontrollers.BasketRemoveForUser(deps.Baskets, logg))
		})
		r.Patch("/sessions/{session_id}/basket/products/{product_id}", basketcontrollers.BasketRemoveForSession(deps.Baskets, logg))

		r.Route("/removed-items", func(r chi.Router) {
			r.Get("/", reportcontrollers.RemovedItemsList(deps.RemovedItems, logg))
			r.With(middleware.RateLimit(exportPolicy, deps.RateLimiter, logg)).
				Get("/export-csv", reportcontrollers.RemovedItemsExportCSV(deps.RemovedItems, logg))
		})
	})

	return r
}
