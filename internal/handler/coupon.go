package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/kohortpay/kohort-bridge/internal/domain/referral"
)

type validateCouponRequest struct {
	Code      string          `json:"code"`
	CartTotal decimal.Decimal `json:"cart_total"`
}

type validateCouponResponse struct {
	PassThrough bool             `json:"pass_through"`
	Accept      bool             `json:"accept"`
	Cashback    decimal.Decimal  `json:"cashback"`
	Notice      *referral.Notice `json:"notice,omitempty"`
}

// ValidateCoupon handles POST /hooks/coupon-validate. The host calls it for
// every coupon about to be considered valid; codes without the referral
// prefix come back as pass-through and the host's own coupon logic applies.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid coupon payload")
		return
	}
	if req.Code == "" {
		respondError(w, r, http.StatusBadRequest, "coupon code is required")
		return
	}

	result := h.coupons.Validate(r.Context(), req.Code, req.CartTotal)

	respondJSON(w, r, http.StatusOK, validateCouponResponse{
		PassThrough: result.PassThrough,
		Accept:      result.Accept,
		Cashback:    result.Cashback,
		Notice:      result.Notice,
	})
}
