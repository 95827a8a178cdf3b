package router

import (
	"net/http"
	"strings"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	orderHandler *handler.OrderHandler,
	httpMetrics *metrics.HTTPMetrics,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Prometheus scrape endpoint (no authentication required)
	mux.Handle("/metrics", metrics.Handler())

	// Order routes
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Collection: /api/orders
		if path == "/api/orders" || path == "/api/orders/" {
			switch r.Method {
			case http.MethodGet:
				orderHandler.List(w, r)
			case http.MethodPost:
				orderHandler.Create(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		// Discount sub-resource: /api/orders/{id}/discount
		if strings.HasSuffix(path, "/discount") {
			switch r.Method {
			case http.MethodPost:
				orderHandler.ApplyDiscount(w, r)
			case http.MethodDelete:
				orderHandler.RemoveDiscount(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		// Single order: /api/orders/{id}
		switch r.Method {
		case http.MethodGet:
			orderHandler.GetByID(w, r)
		case http.MethodPut, http.MethodPatch:
			orderHandler.Update(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}

	// Register order routes (both with and without trailing slash)
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Apply middleware in order: Recovery -> Logging -> Metrics -> CORS -> APIKeyAuth -> UserID
	var h http.Handler = mux
	h = middleware.UserID(logger)(h)
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = httpMetrics.Middleware()(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
