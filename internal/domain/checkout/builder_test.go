package checkout

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kohortpay/kohort-bridge/internal/domain/order"
	"github.com/kohortpay/kohort-bridge/internal/kohort"
	"github.com/kohortpay/kohort-bridge/internal/money"
)

func testSettings() Settings {
	return Settings{
		Enabled:             true,
		SecretKey:           "sk_test_abc",
		MinimumAmount:       decimal.NewFromInt(30),
		SuccessURL:          "https://shop.example/thanks",
		CancelURL:           "https://shop.example/cart",
		PlaceholderImageURL: "https://cdn.example/placeholder.png",
	}
}

func TestBuilder_Build(t *testing.T) {
	o := &order.Order{
		ID:         "51",
		CustomerID: "7",
		Billing: order.Billing{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@example.com",
			Phone:     "+33612345678",
		},
		Locale:        "fr-FR",
		Total:         decimal.RequireFromString("52.49"),
		DiscountTotal: decimal.RequireFromString("5.00"),
		DiscountTax:   decimal.RequireFromString("1.00"),
		Items: []order.Item{
			{
				Name:        "<b>Widget</b>",
				Description: "A &amp; B",
				Quantity:    2,
				Total:       decimal.RequireFromString("49.99"),
				ImageURL:    "https://cdn.example/widget.png",
			},
			{
				Name:     "Gadget",
				Quantity: 1,
				Total:    decimal.RequireFromString("3.50"),
			},
		},
		Shipping: []order.ShippingLine{
			{Name: "Standard", Total: decimal.RequireFromString("4.17"), Tax: decimal.RequireFromString("0.83")},
		},
		CouponCodes: []string{"SUMMER", "KHRTPAY-X7K2"},
	}

	req := NewBuilder(testSettings()).Build(o)

	assert.Equal(t, "Jane", req.CustomerFirstName)
	assert.Equal(t, "Doe", req.CustomerLastName)
	assert.Equal(t, "jane@example.com", req.CustomerEmail)
	assert.Equal(t, "+33612345678", req.CustomerPhoneNumber)
	assert.Equal(t, "fr-FR", req.Locale)
	assert.Equal(t, int64(5249), req.AmountTotal)
	assert.Equal(t, "https://shop.example/thanks?order_id=51", req.SuccessURL)
	assert.Equal(t, "https://shop.example/cart?order_id=51", req.CancelURL)
	assert.Equal(t, kohort.Metadata{OrderID: "51", CustomerID: "7"}, req.Metadata)
	assert.Equal(t, "51", req.ClientReferenceID)

	require.Len(t, req.LineItems, 4)

	assert.Equal(t, kohort.LineItem{
		Name:        "Widget",
		Description: "A & B",
		Quantity:    2,
		Price:       4999,
		ImageURL:    "https://cdn.example/widget.png",
		Type:        kohort.LineItemProduct,
	}, req.LineItems[0])

	assert.Equal(t, "https://cdn.example/placeholder.png", req.LineItems[1].ImageURL,
		"items without an image get the placeholder")

	assert.Equal(t, kohort.LineItem{
		Name:     "Standard",
		Quantity: 1,
		Price:    500,
		Type:     kohort.LineItemShipping,
	}, req.LineItems[2])

	assert.Equal(t, kohort.LineItem{
		Name:     "SUMMER, KHRTPAY-X7K2",
		Quantity: 1,
		Price:    -600,
		Type:     kohort.LineItemDiscount,
	}, req.LineItems[3])
}

func TestBuilder_NoCouponsNoDiscountLine(t *testing.T) {
	o := &order.Order{
		ID:    "1",
		Total: decimal.NewFromInt(40),
		Items: []order.Item{
			{Name: "Widget", Quantity: 1, Total: decimal.NewFromInt(40)},
		},
	}

	req := NewBuilder(testSettings()).Build(o)

	require.Len(t, req.LineItems, 1)
	assert.Equal(t, kohort.LineItemProduct, req.LineItems[0].Type)
}

func TestBuilder_DuplicateCouponCodes(t *testing.T) {
	o := &order.Order{
		ID:            "1",
		Total:         decimal.NewFromInt(35),
		DiscountTotal: decimal.NewFromInt(5),
		Items: []order.Item{
			{Name: "Widget", Quantity: 1, Total: decimal.NewFromInt(40)},
		},
		CouponCodes: []string{"SAVE5", "SAVE5"},
	}

	req := NewBuilder(testSettings()).Build(o)

	require.Len(t, req.LineItems, 2)
	assert.Equal(t, "SAVE5", req.LineItems[1].Name)
	assert.Equal(t, int64(-500), req.LineItems[1].Price)
}

// TestBuilder_SignedSumInvariant generates orders whose upstream totals are
// internally consistent and checks that the signed sum of line item prices
// always equals the normalized order total.
func TestBuilder_SignedSumInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := NewBuilder(testSettings())

	randAmount := func(maxCents int64) decimal.Decimal {
		return money.FromMinorUnits(rng.Int63n(maxCents) + 1)
	}

	for i := range 200 {
		o := &order.Order{ID: fmt.Sprintf("order-%d", i)}

		total := decimal.Zero
		for j := range 1 + rng.Intn(4) {
			line := randAmount(20000)
			o.Items = append(o.Items, order.Item{
				Name:     fmt.Sprintf("item-%d", j),
				Quantity: 1 + rng.Intn(3),
				Total:    line,
			})
			total = total.Add(line)
		}

		for range rng.Intn(3) {
			sh := order.ShippingLine{Name: "ship", Total: randAmount(2000), Tax: randAmount(500)}
			o.Shipping = append(o.Shipping, sh)
			total = total.Add(sh.Total).Add(sh.Tax)
		}

		for j := range rng.Intn(3) {
			o.CouponCodes = append(o.CouponCodes, fmt.Sprintf("CODE-%d", j))
		}
		if len(o.CouponCodes) > 0 {
			o.DiscountTotal = randAmount(1500)
			o.DiscountTax = randAmount(300)
			total = total.Sub(o.DiscountTotal).Sub(o.DiscountTax)
		}

		o.Total = total

		req := b.Build(o)

		var sum int64
		for _, li := range req.LineItems {
			sum += li.Price
		}
		require.Equal(t, req.AmountTotal, sum,
			"order %d: signed line item sum %d != amount total %d", i, sum, req.AmountTotal)
	}
}

// TestCheckoutSessionRequest_WireFormat pins the exact JSON field names the
// KohortPay API expects.
func TestCheckoutSessionRequest_WireFormat(t *testing.T) {
	req := &kohort.CheckoutSessionRequest{
		CustomerFirstName:   "Jane",
		CustomerLastName:    "Doe",
		CustomerEmail:       "jane@example.com",
		CustomerPhoneNumber: "+33612345678",
		SuccessURL:          "https://shop.example/thanks?order_id=51",
		CancelURL:           "https://shop.example/cart?order_id=51",
		Locale:              "fr-FR",
		AmountTotal:         5249,
		LineItems: []kohort.LineItem{
			{Name: "Widget", Description: "desc", Quantity: 2, Price: 4999,
				ImageURL: "https://cdn.example/w.png", Type: kohort.LineItemProduct},
			{Name: "SAVE5", Quantity: 1, Price: -500, Type: kohort.LineItemDiscount},
		},
		Metadata:          kohort.Metadata{OrderID: "51", CustomerID: "7"},
		ClientReferenceID: "51",
	}

	got, err := json.Marshal(req)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"customerFirstName": "Jane",
		"customerLastName": "Doe",
		"customerEmail": "jane@example.com",
		"customerPhoneNumber": "+33612345678",
		"successUrl": "https://shop.example/thanks?order_id=51",
		"cancelUrl": "https://shop.example/cart?order_id=51",
		"locale": "fr-FR",
		"amountTotal": 5249,
		"lineItems": [
			{"name":"Widget","description":"desc","quantity":2,"price":4999,"image_url":"https://cdn.example/w.png","type":"PRODUCT"},
			{"name":"SAVE5","quantity":1,"price":-500,"type":"DISCOUNT"}
		],
		"metadata": {"order_id":"51","customer_id":"7"},
		"clientReferenceId": "51"
	}`, string(got))
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "<p>Hello <b>world</b></p>", want: "Hello world"},
		{in: "A &amp; B", want: "A & B"},
		{in: "  padded  ", want: "padded"},
		{in: "<img src='x'>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, stripTags(tt.in))
		})
	}
}
