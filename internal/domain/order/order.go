// Package order models the host commerce platform's order snapshot as it is
// handed to the bridge at the order-processing extension point. The host owns
// the order lifecycle; everything here is read-only input.
package order

import "github.com/shopspring/decimal"

// Billing holds the buyer's billing contact details.
type Billing struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Item is a single product line on the order. Total is the line total
// including tax, in major currency units.
type Item struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	ImageURL    string          `json:"image_url"`
}

// ShippingLine is a shipping method applied to the order.
type ShippingLine struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Tax   decimal.Decimal `json:"tax"`
}

// Order is a completed order as provided by the host platform.
type Order struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	Billing       Billing         `json:"billing"`
	Locale        string          `json:"locale"`
	Currency      string          `json:"currency"`
	Total         decimal.Decimal `json:"total"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	DiscountTax   decimal.Decimal `json:"discount_tax"`
	Items         []Item          `json:"items"`
	Shipping      []ShippingLine  `json:"shipping"`
	CouponCodes   []string        `json:"coupon_codes"`
}
