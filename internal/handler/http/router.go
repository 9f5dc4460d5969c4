package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flashmart/storefront/pkg/health"
	"github.com/flashmart/storefront/pkg/middleware"
)

// NewRouter creates a chi router with all storefront service routes registered.
func NewRouter(
	storefront *StorefrontHandler,
	admin *AdminHandler,
	healthHandler *health.Handler,
	adminToken string,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public, session-free reads.
		r.Get("/products", storefront.ListProducts)
		r.Get("/sale", storefront.GetSale)

		// Session-scoped storefront endpoints.
		r.Group(func(r chi.Router) {
			r.Use(SessionIDFromHeader)

			r.Get("/cart", storefront.GetCart)
			r.Delete("/cart", storefront.ClearCart)
			r.Post("/cart/items", storefront.AddItem)
			r.Delete("/cart/items/{productId}", storefront.RemoveItem)

			r.Post("/checkout", storefront.Checkout)

			r.Get("/notifications", storefront.GetSubscription)
			r.Post("/notifications/subscribe", storefront.Subscribe)
			r.Post("/notifications/unsubscribe", storefront.Unsubscribe)
		})

		// Admin write path, token-gated.
		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminToken(adminToken))

			r.Get("/sale", admin.GetSale)
			r.Put("/sale", admin.SetSale)
		})
	})

	return r
}
