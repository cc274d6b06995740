package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"paysync/internal/pkg/errors"
	"paysync/internal/platform/models"
	"paysync/internal/platform/repositories"
)

// LogHandler exposes the webhook audit trail to support tooling.
type LogHandler struct {
	logs *repositories.WebhookLogRepository
}

func NewLogHandler(logs *repositories.WebhookLogRepository) *LogHandler {
	return &LogHandler{logs: logs}
}

func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.LogFilter{
		Event:     r.URL.Query().Get("event"),
		PaymentID: r.URL.Query().Get("payment_id"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.Limit = limit
		}
	}

	entries, err := h.logs.List(r.Context(), filter)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if entries == nil {
		entries = []models.WebhookLogEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
