package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) http.Handler {
	r := mux.NewRouter()
	r.Use(loggingMiddleware, handler.metricsMiddleware)

	// mux skips Use middleware when no route matches
	r.NotFoundHandler = loggingMiddleware(handler.metricsMiddleware(http.NotFoundHandler()))
	r.MethodNotAllowedHandler = loggingMiddleware(handler.metricsMiddleware(http.HandlerFunc(methodNotAllowed)))

	// Health check and metrics
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.Handle("/metrics", handler.metrics.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/preco_fixo", handler.CalculateFixedPrice).Methods("POST")
	api.HandleFunc("/precos_futuros/{mes_contrato}", handler.GetLatestPrice).Methods("GET")

	return ZstdMiddleware(r)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}
