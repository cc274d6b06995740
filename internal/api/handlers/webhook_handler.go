package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"paysync/internal/engine/reconcile"
	"paysync/internal/engine/webhooks"
	"paysync/internal/pkg/errors"
	"paysync/internal/platform/audit"
	"paysync/internal/platform/config"
	"paysync/internal/platform/models"
)

// WebhookHandler receives gateway notifications. The flow is strictly linear:
// method check, config check, signature verification over the raw body, parse,
// audit, reconcile. Signature failures return before the body is ever parsed
// or the store touched.
type WebhookHandler struct {
	secret string
	header string
	engine *reconcile.Engine
	audit  *audit.Logger
}

func NewWebhookHandler(cfg config.GatewayConfig, engine *reconcile.Engine, auditLog *audit.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret: cfg.WebhookSecret,
		header: cfg.SignatureHeader,
		engine: engine,
		audit:  auditLog,
	}
}

type webhookAck struct {
	Status string `json:"status"`
	Event  string `json:"event"`
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errors.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if h.secret == "" {
		log.Error().Str("kind", string(errors.KindConfig)).Msg("webhook secret not configured")
		errors.WriteError(w, http.StatusInternalServerError, "Webhook secret not configured")
		return
	}

	signature := r.Header.Get(h.header)
	if signature == "" {
		errors.WriteError(w, http.StatusBadRequest, "No signature provided")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !webhooks.Verify(h.secret, signature, body) {
		log.Warn().Str("kind", string(errors.KindSignature)).Msg("webhook signature mismatch")
		errors.WriteError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	ev, err := webhooks.ParseEvent(body)
	if err != nil {
		log.Error().Err(err).Str("kind", string(errors.KindOf(err))).Msg("webhook body unparseable")
		errors.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Best effort; never blocks or fails the request.
	h.audit.Record(ev.Event, webhooks.PaymentID(ev), ev.Raw, isReconcilable(ev.Event))

	outcome, err := h.engine.Process(r.Context(), ev)
	if err != nil {
		log.Error().
			Err(err).
			Str("kind", string(errors.KindOf(err))).
			Str("event", ev.Event).
			Str("payment_id", webhooks.PaymentID(ev)).
			Msg("webhook reconciliation failed")
		errors.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.Info().
		Str("event", ev.Event).
		Str("payment_id", webhooks.PaymentID(ev)).
		Int("matched", outcome.Matched).
		Bool("created", outcome.Created).
		Msg("webhook processed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(webhookAck{Status: "success", Event: ev.Event})
}

func isReconcilable(event string) bool {
	switch event {
	case models.EventPaymentCaptured, models.EventPaymentFailed,
		models.EventPaymentAuthorized, models.EventOrderPaid:
		return true
	}
	return false
}
