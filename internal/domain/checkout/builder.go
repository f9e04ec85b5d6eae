package checkout

import (
	"html"
	"net/url"
	"strings"

	"github.com/kohortpay/kohort-bridge/internal/domain/order"
	"github.com/kohortpay/kohort-bridge/internal/kohort"
	"github.com/kohortpay/kohort-bridge/internal/money"
)

// Builder assembles KohortPay checkout session requests from host orders.
type Builder struct {
	settings Settings
}

// NewBuilder creates a Builder using the given gateway settings.
func NewBuilder(settings Settings) *Builder {
	return &Builder{settings: settings}
}

// Build produces the session request for an order. Line items are emitted in
// order: one PRODUCT line per order item, one SHIPPING line per shipping
// method, then a single aggregate DISCOUNT line when any coupon is applied.
// All prices go through the same minor-unit normalization, so the signed sum
// of line prices equals AmountTotal whenever the host's totals are consistent.
func (b *Builder) Build(o *order.Order) *kohort.CheckoutSessionRequest {
	items := make([]kohort.LineItem, 0, len(o.Items)+len(o.Shipping)+1)

	for _, it := range o.Items {
		image := it.ImageURL
		if image == "" {
			image = b.settings.PlaceholderImageURL
		}
		items = append(items, kohort.LineItem{
			Name:        stripTags(it.Name),
			Description: stripTags(it.Description),
			Quantity:    it.Quantity,
			Price:       money.ToMinorUnits(it.Total),
			ImageURL:    image,
			Type:        kohort.LineItemProduct,
		})
	}

	for _, sh := range o.Shipping {
		items = append(items, kohort.LineItem{
			Name:     sh.Name,
			Quantity: 1,
			Price:    money.ToMinorUnits(sh.Total.Add(sh.Tax)),
			Type:     kohort.LineItemShipping,
		})
	}

	// One aggregate discount line for all coupons. A per-coupon line each
	// carrying the order's full discount would double-count it and break the
	// signed-sum invariant as soon as two coupons apply.
	if codes := distinct(o.CouponCodes); len(codes) > 0 {
		items = append(items, kohort.LineItem{
			Name:     strings.Join(codes, ", "),
			Quantity: 1,
			Price:    -money.ToMinorUnits(o.DiscountTotal.Add(o.DiscountTax)),
			Type:     kohort.LineItemDiscount,
		})
	}

	return &kohort.CheckoutSessionRequest{
		CustomerFirstName:   o.Billing.FirstName,
		CustomerLastName:    o.Billing.LastName,
		CustomerEmail:       o.Billing.Email,
		CustomerPhoneNumber: o.Billing.Phone,
		SuccessURL:          withOrderID(b.settings.SuccessURL, o.ID),
		CancelURL:           withOrderID(b.settings.CancelURL, o.ID),
		Locale:              o.Locale,
		AmountTotal:         money.ToMinorUnits(o.Total),
		LineItems:           items,
		Metadata: kohort.Metadata{
			OrderID:    o.ID,
			CustomerID: o.CustomerID,
		},
		ClientReferenceID: o.ID,
	}
}

// withOrderID appends an order_id query parameter to base, so the return
// callback knows which order the buyer came back for. Unparsable bases are
// returned as-is.
func withOrderID(base, orderID string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("order_id", orderID)
	u.RawQuery = q.Encode()
	return u.String()
}

// distinct deduplicates codes, preserving first-seen order.
func distinct(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// stripTags removes HTML markup from host-provided product text and unescapes
// common entities. Product names and descriptions frequently carry markup
// from the host's rich-text editor; the payment page wants plain text.
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	var sb strings.Builder
	sb.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}

	return strings.TrimSpace(html.UnescapeString(sb.String()))
}
