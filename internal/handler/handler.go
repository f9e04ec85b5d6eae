// Package handler exposes the bridge's extension-point HTTP API. The host
// commerce platform calls these endpoints at its checkout, coupon, and
// thank-you hooks; the handlers translate between the host's JSON and the
// domain services.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kohortpay/kohort-bridge/internal/domain/checkout"
	"github.com/kohortpay/kohort-bridge/internal/domain/order"
	"github.com/kohortpay/kohort-bridge/internal/domain/referral"
)

// CheckoutService is the order-processing and payment-confirmation surface
// the handlers need.
type CheckoutService interface {
	ProcessOrder(ctx context.Context, o *order.Order) (*checkout.Outcome, error)
	ConfirmPayment(ctx context.Context, orderID, paymentID string) error
}

// CouponValidator validates a single coupon code against a cart total.
type CouponValidator interface {
	Validate(ctx context.Context, code string, cartTotal decimal.Decimal) referral.Result
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ThankYouURL is where the order-return callback redirects the buyer
	// after recording the payment.
	ThankYouURL string
}

// Handler implements the extension-point endpoints.
type Handler struct {
	checkout    CheckoutService
	coupons     CouponValidator
	thankYouURL string
}

// New constructs a Handler with the required domain dependencies.
func New(cfg Config, checkoutSvc CheckoutService, coupons CouponValidator) *Handler {
	return &Handler{
		checkout:    checkoutSvc,
		coupons:     coupons,
		thankYouURL: cfg.ThankYouURL,
	}
}

// Routes mounts all extension-point endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/hooks/order-processing", h.ProcessOrder)
	r.Post("/hooks/coupon-validate", h.ValidateCoupon)
	r.Get("/hooks/order-return", h.OrderReturn)
}
