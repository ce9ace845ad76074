package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ktecheletronicos/loja/internal/cart"
	"github.com/ktecheletronicos/loja/internal/catalog"
	"github.com/ktecheletronicos/loja/internal/location"
	"github.com/ktecheletronicos/loja/internal/order"
	"github.com/ktecheletronicos/loja/internal/search"
	"github.com/ktecheletronicos/loja/pkg/health"
	"github.com/ktecheletronicos/loja/pkg/middleware"
)

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Catalog  *catalog.Service
	Engine   *search.Engine
	Cart     *cart.Service
	Resolver *location.Resolver
	Fee      location.FeeConfig
	Orders   *order.Service
	Health   *health.Handler
	Logger   *slog.Logger

	CORSOrigins []string
	PprofCIDRs  []string

	// RateLimitRPS of 0 disables rate limiting.
	RateLimitRPS   int
	RateLimitBurst int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("loja"))
	r.Use(middleware.Tracing("loja"))
	r.Use(middleware.RequestLogger(deps.Logger))

	if deps.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst, deps.Logger))
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(deps.CORSOrigins) > 0 {
		corsCfg.AllowedOrigins = deps.CORSOrigins
	}
	r.Use(middleware.CORS(corsCfg))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, deps.PprofCIDRs, deps.Logger)

	catalogHandler := NewCatalogHandler(deps.Catalog, deps.Engine, deps.Logger)
	cartHandler := NewCartHandler(deps.Cart, deps.Logger)
	locationHandler := NewLocationHandler(deps.Resolver, deps.Fee, deps.Logger)
	orderHandler := NewOrderHandler(deps.Orders, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.CacheControl(300))

			r.Get("/", catalogHandler.ListProducts)
			r.Get("/suggestions", catalogHandler.Suggest)
			r.Get("/{slug}", catalogHandler.GetProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(SessionIDFromHeader)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items/{slug}/toggle", cartHandler.ToggleItem)
			r.Put("/items/{slug}", cartHandler.ChangeQuantity)
			r.Delete("/items/{slug}", cartHandler.RemoveItem)
		})

		r.Route("/location", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(SessionIDFromHeader)

			r.Post("/", locationHandler.UpdateLocation)
			r.Get("/distance", locationHandler.GetDistance)
			r.Get("/address", locationHandler.GetAddress)
			r.Put("/reference", locationHandler.SetReference)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(SessionIDFromHeader)

			r.Post("/", orderHandler.SubmitOrder)
		})
	})

	return r
}
