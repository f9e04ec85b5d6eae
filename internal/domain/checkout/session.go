package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Status is the lifecycle state of a stored checkout session.
type Status string

const (
	// StatusPending means the buyer was redirected but payment has not been
	// confirmed yet.
	StatusPending Status = "pending"
	// StatusPaid means the return callback confirmed payment.
	StatusPaid Status = "paid"
)

// ErrSessionNotFound is returned when no session exists for an order.
var ErrSessionNotFound = errors.New("checkout session not found")

// Session is the bridge's durable record of a checkout session created on
// KohortPay, keyed by the host order. It exists so the return callback can be
// reconciled with the session that initiated it.
type Session struct {
	ID                string
	OrderID           string
	ProviderSessionID string
	AmountTotal       int64
	Currency          string
	Status            Status
	PaymentID         string
	Note              string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Repository defines persistence operations for checkout sessions.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	FindByOrderID(ctx context.Context, orderID string) (*Session, error)
	// MarkPaid transitions the order's session to StatusPaid, recording the
	// payment identifier and an audit note.
	MarkPaid(ctx context.Context, orderID, paymentID, note string) error
}
