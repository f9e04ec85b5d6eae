// Package checkout turns completed host orders into KohortPay checkout
// sessions and tracks each session until the return callback confirms
// payment. All failures on the payment path are recovered into user-facing
// notices; nothing here aborts the host's request cycle.
package checkout

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kohortpay/kohort-bridge/internal/domain/order"
	"github.com/kohortpay/kohort-bridge/internal/kohort"
)

// genericErrorNotice is shown when the API could not be reached or returned
// nothing usable. The buyer retries checkout manually; there are no retries.
const genericErrorNotice = "The payment could not be started. Please try again or choose another payment method."

// defaultCurrency applies when the host omits the order currency.
const defaultCurrency = "EUR"

// SessionCreator is the slice of the KohortPay client the service needs.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, req *kohort.CheckoutSessionRequest) (*kohort.CheckoutSession, error)
}

// Outcome is the result of processing an order. Exactly one of RedirectURL,
// Notices, or Unavailable is meaningful: a redirect on success, notices when
// the buyer must be told something went wrong, Unavailable when the gateway
// should not have been offered at all.
type Outcome struct {
	RedirectURL string
	Notices     []string
	Unavailable bool
}

// Service implements the order-processing extension point.
type Service struct {
	settings Settings
	builder  *Builder
	api      SessionCreator
	sessions Repository
}

// NewService creates a checkout Service.
func NewService(settings Settings, api SessionCreator, sessions Repository) *Service {
	return &Service{
		settings: settings,
		builder:  NewBuilder(settings),
		api:      api,
		sessions: sessions,
	}
}

// ProcessOrder builds and submits a checkout session for the order, persists
// the session record, and returns the hosted payment page URL. API and
// transport failures become notices; the order is left untouched either way.
func (s *Service) ProcessOrder(ctx context.Context, o *order.Order) (*Outcome, error) {
	lg := zctx.From(ctx)

	if !s.settings.AvailableFor(o.Total) {
		lg.Info("Gateway unavailable for order",
			zap.String("order_id", o.ID),
			zap.Bool("enabled", s.settings.Enabled),
			zap.Bool("key_valid", s.settings.HasValidKey()),
		)
		return &Outcome{Unavailable: true}, nil
	}

	req := s.builder.Build(o)

	session, err := s.api.CreateCheckoutSession(ctx, req)
	if err != nil {
		if apiErr, ok := kohort.AsAPIError(err); ok {
			lg.Warn("Checkout session rejected",
				zap.String("order_id", o.ID),
				zap.Int("status", apiErr.StatusCode),
				zap.Strings("messages", apiErr.Messages),
			)
			notices := apiErr.Messages
			if len(notices) == 0 {
				notices = []string{genericErrorNotice}
			}
			return &Outcome{Notices: notices}, nil
		}

		lg.Error("Checkout session request failed", zap.String("order_id", o.ID), zap.Error(err))
		return &Outcome{Notices: []string{genericErrorNotice}}, nil
	}

	currency := o.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	// Without a stored session the return callback has nothing to reconcile
	// against, so a failed write blocks the redirect rather than losing the
	// payment trail.
	record := &Session{
		ID:                uuid.New().String(),
		OrderID:           o.ID,
		ProviderSessionID: session.ID,
		AmountTotal:       req.AmountTotal,
		Currency:          currency,
		Status:            StatusPending,
	}
	if err := s.sessions.Create(ctx, record); err != nil {
		lg.Error("Persist checkout session failed", zap.String("order_id", o.ID), zap.Error(err))
		return &Outcome{Notices: []string{genericErrorNotice}}, nil
	}

	lg.Info("Checkout session created",
		zap.String("order_id", o.ID),
		zap.String("session_id", session.ID),
		zap.Int64("amount_total", req.AmountTotal),
	)
	return &Outcome{RedirectURL: session.URL}, nil
}

// ConfirmPayment implements the order-paid return callback: it marks the
// order's session paid and appends an audit note carrying the payment
// identifier.
//
// The identifier's presence is the only check performed. This mirrors the
// upstream gateway behaviour and is a known trust boundary: the callback URL
// is guessable and the payment id is not verified against the provider.
func (s *Service) ConfirmPayment(ctx context.Context, orderID, paymentID string) error {
	note := "Payment confirmed via KohortPay, payment id " + paymentID
	if err := s.sessions.MarkPaid(ctx, orderID, paymentID, note); err != nil {
		return err
	}

	zctx.From(ctx).Info("Order marked paid",
		zap.String("order_id", orderID),
		zap.String("payment_id", paymentID),
	)
	return nil
}
