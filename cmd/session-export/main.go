// Command session-export dumps all stored checkout sessions as gzipped
// NDJSON for offline reconciliation against the KohortPay merchant dashboard.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/kohortpay/kohort-bridge/internal/domain/checkout"
	"github.com/kohortpay/kohort-bridge/internal/storage/postgres"
)

// exportRecord is one NDJSON line of the reconciliation dump.
type exportRecord struct {
	ID                string    `json:"id"`
	OrderID           string    `json:"order_id"`
	ProviderSessionID string    `json:"provider_session_id"`
	AmountTotal       int64     `json:"amount_total"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	PaymentID         string    `json:"payment_id,omitempty"`
	Note              string    `json:"note,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func main() {
	var (
		out         string
		databaseURL string
	)

	flag.StringVar(&out, "out", "sessions.ndjson.gz", "output file path")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, out, databaseURL); err != nil {
		slog.Error("session export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("session export completed successfully")
}

func run(ctx context.Context, out, databaseURL string) error {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	f, err := os.Create(out)
	if err != nil {
		return errors.Wrapf(err, "create %s", out)
	}
	defer func() { _ = f.Close() }()

	gz := pgzip.NewWriter(f)

	repo := postgres.NewSessionRepository(pool)
	sessions := make(chan *checkout.Session, 256)

	// Reader and writer run concurrently so DB streaming overlaps with
	// compression.
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(sessions)
		return repo.ListSessions(ctx, func(s *checkout.Session) error {
			select {
			case sessions <- s:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	g.Go(func() error {
		enc := json.NewEncoder(gz)
		var count int
		for s := range sessions {
			if err := enc.Encode(exportRecord{
				ID:                s.ID,
				OrderID:           s.OrderID,
				ProviderSessionID: s.ProviderSessionID,
				AmountTotal:       s.AmountTotal,
				Currency:          s.Currency,
				Status:            string(s.Status),
				PaymentID:         s.PaymentID,
				Note:              s.Note,
				CreatedAt:         s.CreatedAt,
				UpdatedAt:         s.UpdatedAt,
			}); err != nil {
				return errors.Wrapf(err, "encode session %s", s.ID)
			}
			count++
		}
		slog.Info("sessions exported", slog.Int("count", count))
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "flush gzip stream")
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", out)
	}

	return nil
}
