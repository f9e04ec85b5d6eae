package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kohortpay/kohort-bridge/internal/domain/checkout"
)

var _ checkout.Repository = (*SessionRepository)(nil)

// SessionRepository implements checkout.Repository backed by PostgreSQL.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a SessionRepository that uses the given pool.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create persists a new checkout session record.
func (r *SessionRepository) Create(ctx context.Context, s *checkout.Session) error {
	const q = `
		INSERT INTO checkout_sessions (id, order_id, provider_session_id, amount_total, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, q,
		s.ID, s.OrderID, s.ProviderSessionID, s.AmountTotal, s.Currency, string(s.Status))
	if err != nil {
		return errors.Wrapf(err, "create session for order %q", s.OrderID)
	}
	return nil
}

// FindByOrderID loads the session for an order. Returns
// checkout.ErrSessionNotFound when no record exists.
func (r *SessionRepository) FindByOrderID(ctx context.Context, orderID string) (*checkout.Session, error) {
	const q = `
		SELECT id, order_id, provider_session_id, amount_total, currency, status, payment_id, note, created_at, updated_at
		FROM checkout_sessions
		WHERE order_id = $1`

	var s checkout.Session
	var status string
	err := r.pool.QueryRow(ctx, q, orderID).Scan(
		&s.ID, &s.OrderID, &s.ProviderSessionID, &s.AmountTotal, &s.Currency,
		&status, &s.PaymentID, &s.Note, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, checkout.ErrSessionNotFound
		}
		return nil, errors.Wrapf(err, "find session for order %q", orderID)
	}
	s.Status = checkout.Status(status)
	return &s, nil
}

// MarkPaid transitions the order's session to paid, recording the payment id
// and audit note. Returns checkout.ErrSessionNotFound when no session exists
// for the order.
func (r *SessionRepository) MarkPaid(ctx context.Context, orderID, paymentID, note string) error {
	const q = `
		UPDATE checkout_sessions
		SET status = $2, payment_id = $3, note = $4, updated_at = now()
		WHERE order_id = $1`

	tag, err := r.pool.Exec(ctx, q, orderID, string(checkout.StatusPaid), paymentID, note)
	if err != nil {
		return errors.Wrapf(err, "mark session paid for order %q", orderID)
	}
	if tag.RowsAffected() == 0 {
		return checkout.ErrSessionNotFound
	}
	return nil
}

// ListSessions streams all session records in insertion order, invoking fn
// for each. Used by the reconciliation export.
func (r *SessionRepository) ListSessions(ctx context.Context, fn func(*checkout.Session) error) error {
	const q = `
		SELECT id, order_id, provider_session_id, amount_total, currency, status, payment_id, note, created_at, updated_at
		FROM checkout_sessions
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return errors.Wrap(err, "list sessions")
	}
	defer rows.Close()

	for rows.Next() {
		var s checkout.Session
		var status string
		if err := rows.Scan(
			&s.ID, &s.OrderID, &s.ProviderSessionID, &s.AmountTotal, &s.Currency,
			&status, &s.PaymentID, &s.Note, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return errors.Wrap(err, "scan session")
		}
		s.Status = checkout.Status(status)
		if err := fn(&s); err != nil {
			return err
		}
	}
	return errors.Wrap(rows.Err(), "iterate sessions")
}
