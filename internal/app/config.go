package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Config holds the complete bridge configuration, loadable from environment
// variables (KHRT_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"HTTP listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (KHRT_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	// PublicURL is the externally reachable base URL of this bridge. The
	// hosted payment page redirects buyers back to it after payment.
	PublicURL string `usage:"Externally reachable base URL of the bridge" flag:"public-url"`

	KohortPay KohortPayConfig
	Gateway   GatewayConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// KohortPayConfig holds the payment API credentials and endpoint.
type KohortPayConfig struct {
	APIBaseURL string `default:"https://api.kohortpay.com" usage:"KohortPay API base URL" flag:"api-base-url"`
	SecretKey  string `usage:"Merchant secret key (sk_ or sk_test_ prefix)" flag:"secret-key"`
}

// GatewayConfig holds the merchant-facing gateway settings.
type GatewayConfig struct {
	Enabled bool `default:"true" usage:"Offer the gateway to buyers"`
	// MinimumAmount is the smallest order total the gateway accepts, in
	// major currency units.
	MinimumAmount string `default:"30" usage:"Minimum order amount (major units)" flag:"minimum-amount"`
	// ThankYouURL is the host's order-received page; the return callback
	// forwards buyers there.
	ThankYouURL string `usage:"Host thank-you page URL" flag:"thank-you-url"`
	// CancelURL is where the hosted payment page sends buyers who abandon
	// the payment, typically the host's checkout page.
	CancelURL string `usage:"Host checkout/cart page URL for canceled payments" flag:"cancel-url"`
	// PlaceholderImageURL is used for product lines without an image.
	PlaceholderImageURL string `usage:"Fallback product image URL" flag:"placeholder-image-url"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// MinimumAmountDecimal parses the configured minimum order amount.
func (c GatewayConfig) MinimumAmountDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.MinimumAmount)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse minimum amount %q", c.MinimumAmount)
	}
	return d, nil
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and flags, applying platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "KHRT",
		Files:     []string{"config.yaml", "/etc/kohort-bridge/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set KHRT_DATABASE_URL or DATABASE_URL")
	}
	if cfg.PublicURL == "" {
		return nil, errors.New("public URL is required: set KHRT_PUBLIC_URL")
	}
	if _, err := cfg.Gateway.MinimumAmountDecimal(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) using standard names like DATABASE_URL and PORT
// onto the KHRT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
