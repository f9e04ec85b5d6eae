package kohort

import "github.com/shopspring/decimal"

// LineItemType discriminates checkout session line items.
type LineItemType string

const (
	// LineItemProduct is a purchasable product line.
	LineItemProduct LineItemType = "PRODUCT"
	// LineItemShipping is a shipping method line, always quantity 1.
	LineItemShipping LineItemType = "SHIPPING"
	// LineItemDiscount is an aggregate discount line with a negative price.
	LineItemDiscount LineItemType = "DISCOUNT"
)

// LineItem is a single line of a checkout session. Price is in minor units
// and carries a negative sign for discount lines.
type LineItem struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Quantity    int          `json:"quantity"`
	Price       int64        `json:"price"`
	ImageURL    string       `json:"image_url,omitempty"`
	Type        LineItemType `json:"type"`
}

// Metadata links a checkout session back to the host platform's records.
type Metadata struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
}

// CheckoutSessionRequest is the payload for POST /checkout-sessions.
// Field names follow the KohortPay wire format exactly.
type CheckoutSessionRequest struct {
	CustomerFirstName        string     `json:"customerFirstName"`
	CustomerLastName         string     `json:"customerLastName"`
	CustomerEmail            string     `json:"customerEmail"`
	CustomerPhoneNumber      string     `json:"customerPhoneNumber,omitempty"`
	SuccessURL               string     `json:"successUrl"`
	CancelURL                string     `json:"cancelUrl"`
	Locale                   string     `json:"locale,omitempty"`
	AmountTotal              int64      `json:"amountTotal"`
	LineItems                []LineItem `json:"lineItems"`
	Metadata                 Metadata   `json:"metadata"`
	ClientReferenceID        string     `json:"clientReferenceId,omitempty"`
	PaymentClientReferenceID string     `json:"paymentClientReferenceId,omitempty"`
}

// CheckoutSession is the server-side payment record created by KohortPay.
// URL points at the hosted payment page the buyer is redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}

// DiscountType enumerates referral discount strategies reported by the
// validation endpoint.
type DiscountType string

const (
	// DiscountPercentage expresses the cashback as a percentage of the cart total.
	DiscountPercentage DiscountType = "PERCENTAGE"
	// DiscountAmount expresses the cashback as a fixed major-unit amount.
	DiscountAmount DiscountType = "AMOUNT"
)

// ReferralValidation is the successful outcome of validating a referral code.
// Value is the current discount level: a percentage for DiscountPercentage,
// a major-unit amount otherwise.
type ReferralValidation struct {
	DiscountType DiscountType
	Value        decimal.Decimal
}
