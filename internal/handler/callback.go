package handler

import (
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/kohortpay/kohort-bridge/internal/domain/checkout"
)

// OrderReturn handles GET /hooks/order-return, the thank-you page callback.
// When the query carries a payment identifier the order's session is marked
// paid with an audit note; a missing identifier does nothing. Either way the
// buyer is sent on to the thank-you page.
//
// The identifier is trusted on presence alone. That matches the upstream
// gateway and is a documented integrity gap: anyone who knows an order id
// can mark it paid.
func (h *Handler) OrderReturn(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	paymentID := r.URL.Query().Get("payment_id")
	lg := zctx.From(r.Context()).With(zap.String("order_id", orderID))

	if orderID != "" && paymentID != "" {
		err := h.checkout.ConfirmPayment(r.Context(), orderID, paymentID)
		switch {
		case errors.Is(err, checkout.ErrSessionNotFound):
			lg.Warn("Return callback for unknown order", zap.String("payment_id", paymentID))
		case err != nil:
			lg.Error("Confirm payment", zap.Error(err))
		}
	}

	http.Redirect(w, r, h.returnTarget(orderID), http.StatusFound)
}

// returnTarget builds the thank-you page URL, carrying the order id through
// when present.
func (h *Handler) returnTarget(orderID string) string {
	if orderID == "" {
		return h.thankYouURL
	}
	u, err := url.Parse(h.thankYouURL)
	if err != nil {
		return h.thankYouURL
	}
	q := u.Query()
	q.Set("order_id", orderID)
	u.RawQuery = q.Encode()
	return u.String()
}
