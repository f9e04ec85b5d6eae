package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/kohortpay/kohort-bridge/internal/domain/order"
)

// processOrderResponse is the host-facing outcome of the order-processing
// hook. Exactly one field is populated: a redirect URL on success, notices
// when the buyer must see an error, or unavailable when the gateway should
// not be offered for this order.
type processOrderResponse struct {
	RedirectURL string   `json:"redirect_url,omitempty"`
	Notices     []string `json:"notices,omitempty"`
	Unavailable bool     `json:"unavailable,omitempty"`
}

// ProcessOrder handles POST /hooks/order-processing. The body is the host's
// order snapshot; payment failures come back as notices with a 200, matching
// the gateway contract that errors surface to the buyer, not the host.
func (h *Handler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	var o order.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid order payload")
		return
	}
	if o.ID == "" {
		respondError(w, r, http.StatusBadRequest, "order id is required")
		return
	}

	outcome, err := h.checkout.ProcessOrder(r.Context(), &o)
	if err != nil {
		zctx.From(r.Context()).Error("Process order", zap.String("order_id", o.ID), zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, r, http.StatusOK, processOrderResponse{
		RedirectURL: outcome.RedirectURL,
		Notices:     outcome.Notices,
		Unavailable: outcome.Unavailable,
	})
}
