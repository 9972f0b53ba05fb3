package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/immigrai/checklist-delivery/internal/handlers"
	"github.com/immigrai/checklist-delivery/internal/middleware"
)

// NewRouter constructs a ServeMux with the service routes registered.
func NewRouter(h *handlers.WebhookHandler) http.Handler {
	mux := http.NewServeMux()

	// Payment provider webhook
	mux.HandleFunc("/webhook", h.HandleWebhook)

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Static liveness page; also the catch-all, Root 404s other paths
	mux.HandleFunc("/", h.Root)

	return middleware.RequestID(mux)
}
