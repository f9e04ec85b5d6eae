package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Settings is the merchant-facing gateway configuration. It is loaded once at
// startup and passed explicitly; there is no ambient settings store.
type Settings struct {
	// Enabled toggles the whole gateway. When false the gateway is hidden
	// from buyers rather than erroring.
	Enabled bool
	// SecretKey is the merchant API key. Live keys start with "sk_", test
	// keys with "sk_test_". An absent or malformed key hides the gateway.
	SecretKey string
	// MinimumAmount is the smallest order total (major units) the gateway
	// accepts. Below it the gateway is unavailable for the order.
	MinimumAmount decimal.Decimal
	// SuccessURL and CancelURL are where the hosted payment page sends the
	// buyer back. The order id is appended as a query parameter.
	SuccessURL string
	CancelURL  string
	// PlaceholderImageURL is used for product lines without an image.
	PlaceholderImageURL string
}

// HasValidKey reports whether the secret key looks like a KohortPay key.
// Both live (sk_) and test (sk_test_) prefixes are accepted.
func (s Settings) HasValidKey() bool {
	return strings.HasPrefix(s.SecretKey, "sk_")
}

// AvailableFor reports whether the gateway can take payment for an order of
// the given total. A disabled gateway or missing key is a configuration gap,
// not an error: the gateway simply does not offer itself.
func (s Settings) AvailableFor(total decimal.Decimal) bool {
	return s.Enabled && s.HasValidKey() && total.GreaterThanOrEqual(s.MinimumAmount)
}
