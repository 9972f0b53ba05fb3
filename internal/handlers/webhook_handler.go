package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/immigrai/checklist-delivery/internal/httputil"
	"github.com/immigrai/checklist-delivery/internal/logging"
	"github.com/immigrai/checklist-delivery/internal/metrics"
	"github.com/immigrai/checklist-delivery/internal/models"
)

// signatureHeader carries the provider's payload signature.
const signatureHeader = "Stripe-Signature"

// maxBodyBytes bounds webhook payload reads. Provider events are a few KB.
const maxBodyBytes = 1 << 20

// Pipeline drives one webhook event end to end.
type Pipeline interface {
	Process(ctx context.Context, event models.InboundEvent) models.Result
}

// WebhookHandler owns the inbound HTTP surface of the service.
type WebhookHandler struct {
	pipeline Pipeline
	missing  []string // required settings absent at startup
	logger   *logging.Logger
}

// NewWebhookHandler creates the handler. When missing is non-empty the
// webhook endpoint answers 500 before any verification work, so a
// misconfigured deploy fails loudly instead of partway down the pipeline.
func NewWebhookHandler(pipeline Pipeline, missing []string, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		pipeline: pipeline,
		missing:  missing,
		logger:   logger,
	}
}

// HandleWebhook handles POST /webhook. Every business outcome acknowledges
// with 200 so the sender does not redeliver and re-trigger non-idempotent
// side effects; only a signature failure answers 400, and only missing
// configuration answers 500.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		httputil.WriteText(w, http.StatusOK, "webhook endpoint is live\n")
		return
	}
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if len(h.missing) > 0 {
		h.logger.ErrorContext(r.Context(), "webhook rejected: service not configured",
			"missing", strings.Join(h.missing, ", "))
		httputil.WriteError(w, http.StatusInternalServerError,
			"service not configured: "+strings.Join(h.missing, ", "))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	defer r.Body.Close()

	result := h.pipeline.Process(r.Context(), models.InboundEvent{
		Payload:   body,
		Signature: r.Header.Get(signatureHeader),
	})
	metrics.EventsTotal.WithLabelValues(string(result.Status)).Inc()

	switch result.Status {
	case models.StatusRejected:
		// The one non-2xx business path: the sender should redeliver,
		// nothing has happened yet.
		httputil.WriteError(w, http.StatusBadRequest, "invalid signature: "+result.Err.Error())
	case models.StatusIgnored:
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"ignored": result.EventType})
	case models.StatusNoEmail:
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "no_email"})
	case models.StatusUnmatched:
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "no_matching_lead"})
	case models.StatusDuplicate:
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
	case models.StatusProcessed:
		httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	default:
		// StatusError: acknowledged with the reason in the body; full
		// diagnostics are already in the logs.
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"error": result.Err.Error()})
	}
}

// Root handles GET / as a static liveness page.
func (h *WebhookHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	httputil.WriteText(w, http.StatusOK, "checklist delivery service\n")
}

// Health handles liveness checks.
func (h *WebhookHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready reports whether the service is configured to process events.
func (h *WebhookHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if len(h.missing) > 0 {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "not_ready",
			"missing": h.missing,
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
