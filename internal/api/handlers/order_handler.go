package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "paysync/internal/api/context"
	"paysync/internal/engine/reconcile"
	"paysync/internal/pkg/errors"
)

// OrderHandler is the support view of an order: every document the locator
// finds for a payment id, tagged with its collection.
type OrderHandler struct {
	store reconcile.OrderStore
}

func NewOrderHandler(store reconcile.OrderStore) *OrderHandler {
	return &OrderHandler{store: store}
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	paymentID := params.ByName("payment_id")

	matches, err := h.store.FindByPaymentID(r.Context(), paymentID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(matches) == 0 {
		errors.WriteError(w, http.StatusNotFound, "No order found for payment id")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(matches)
}
