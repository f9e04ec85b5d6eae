// Package app wires configuration, storage, the KohortPay client, the domain
// services, and the HTTP server into a runnable bridge process.
package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kohortpay/kohort-bridge/internal/domain/checkout"
	"github.com/kohortpay/kohort-bridge/internal/domain/referral"
	"github.com/kohortpay/kohort-bridge/internal/handler"
	"github.com/kohortpay/kohort-bridge/internal/kohort"
	"github.com/kohortpay/kohort-bridge/internal/storage/postgres"
	"github.com/kohortpay/kohort-bridge/pkg/health"
	"github.com/kohortpay/kohort-bridge/pkg/httpmiddleware"
)

// orderReturnPath is where the hosted payment page sends buyers back to.
const orderReturnPath = "/hooks/order-return"

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	minimumAmount, err := cfg.Gateway.MinimumAmountDecimal()
	if err != nil {
		return err
	}

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.SetReady(true)

	// Outbound API client.
	apiClient := kohort.NewClient(kohort.Config{
		BaseURL:   cfg.KohortPay.APIBaseURL,
		SecretKey: cfg.KohortPay.SecretKey,
	})

	// Domain services.
	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	settings := checkout.Settings{
		Enabled:             cfg.Gateway.Enabled,
		SecretKey:           cfg.KohortPay.SecretKey,
		MinimumAmount:       minimumAmount,
		SuccessURL:          publicURL + orderReturnPath,
		CancelURL:           cfg.Gateway.CancelURL,
		PlaceholderImageURL: cfg.Gateway.PlaceholderImageURL,
	}
	sessionRepo := postgres.NewSessionRepository(pool)
	checkoutSvc := checkout.NewService(settings, apiClient, sessionRepo)

	notices := referral.NewNoticeMapper(func() decimal.Decimal { return minimumAmount })
	couponValidator := referral.NewValidator(apiClient, notices)

	// HTTP routes: extension-point hooks + health probes on one server.
	h := handler.New(
		handler.Config{ThankYouURL: cfg.Gateway.ThankYouURL},
		checkoutSvc,
		couponValidator,
	)

	router := chi.NewRouter()
	router.Get("/livez", healthSvc.LiveEndpoint)
	router.Get("/readyz", healthSvc.ReadyEndpoint)
	h.Routes(router)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{"Content-Type"},
				MaxAge:       86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("kohort-bridge", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
