package checkout

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kohortpay/kohort-bridge/internal/domain/order"
	"github.com/kohortpay/kohort-bridge/internal/kohort"
)

type mockAPI struct {
	session *kohort.CheckoutSession
	err     error
	gotReq  *kohort.CheckoutSessionRequest
	calls   int
}

func (m *mockAPI) CreateCheckoutSession(_ context.Context, req *kohort.CheckoutSessionRequest) (*kohort.CheckoutSession, error) {
	m.calls++
	m.gotReq = req
	return m.session, m.err
}

type mockSessions struct {
	created   *Session
	createErr error

	found   *Session
	findErr error

	paidOrderID   string
	paidPaymentID string
	paidNote      string
	markErr       error
}

func (m *mockSessions) Create(_ context.Context, s *Session) error {
	m.created = s
	return m.createErr
}

func (m *mockSessions) FindByOrderID(_ context.Context, _ string) (*Session, error) {
	return m.found, m.findErr
}

func (m *mockSessions) MarkPaid(_ context.Context, orderID, paymentID, note string) error {
	m.paidOrderID = orderID
	m.paidPaymentID = paymentID
	m.paidNote = note
	return m.markErr
}

func validOrder() *order.Order {
	return &order.Order{
		ID:         "51",
		CustomerID: "7",
		Billing:    order.Billing{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
		Total:      decimal.NewFromInt(100),
		Items: []order.Item{
			{Name: "Widget", Quantity: 1, Total: decimal.NewFromInt(100)},
		},
	}
}

func TestService_ProcessOrder_Success(t *testing.T) {
	api := &mockAPI{session: &kohort.CheckoutSession{ID: "cs_1", URL: "https://pay.example/x"}}
	sessions := &mockSessions{}
	svc := NewService(testSettings(), api, sessions)

	out, err := svc.ProcessOrder(context.Background(), validOrder())

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/x", out.RedirectURL)
	assert.Empty(t, out.Notices)
	assert.False(t, out.Unavailable)

	require.NotNil(t, sessions.created)
	assert.NotEmpty(t, sessions.created.ID)
	assert.Equal(t, "51", sessions.created.OrderID)
	assert.Equal(t, "cs_1", sessions.created.ProviderSessionID)
	assert.Equal(t, int64(10000), sessions.created.AmountTotal)
	assert.Equal(t, "EUR", sessions.created.Currency, "currency defaults to EUR")
	assert.Equal(t, StatusPending, sessions.created.Status)
}

func TestService_ProcessOrder_Unavailable(t *testing.T) {
	tests := []struct {
		name     string
		settings func(Settings) Settings
		total    decimal.Decimal
	}{
		{
			name:     "gateway disabled",
			settings: func(s Settings) Settings { s.Enabled = false; return s },
			total:    decimal.NewFromInt(100),
		},
		{
			name:     "missing secret key",
			settings: func(s Settings) Settings { s.SecretKey = ""; return s },
			total:    decimal.NewFromInt(100),
		},
		{
			name:     "malformed secret key",
			settings: func(s Settings) Settings { s.SecretKey = "pk_live_nope"; return s },
			total:    decimal.NewFromInt(100),
		},
		{
			name:     "total below minimum",
			settings: func(s Settings) Settings { return s },
			total:    decimal.RequireFromString("29.99"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{}
			svc := NewService(tt.settings(testSettings()), api, &mockSessions{})

			o := validOrder()
			o.Total = tt.total

			out, err := svc.ProcessOrder(context.Background(), o)

			require.NoError(t, err)
			assert.True(t, out.Unavailable)
			assert.Zero(t, api.calls, "unavailable gateway must not call the API")
		})
	}
}

func TestService_ProcessOrder_TransportFailure(t *testing.T) {
	api := &mockAPI{err: errors.New("dial tcp: connection refused")}
	sessions := &mockSessions{}
	svc := NewService(testSettings(), api, sessions)

	out, err := svc.ProcessOrder(context.Background(), validOrder())

	require.NoError(t, err)
	assert.Empty(t, out.RedirectURL, "no redirect on transport failure")
	assert.Equal(t, []string{genericErrorNotice}, out.Notices)
	assert.Nil(t, sessions.created, "no session record on failure")
}

func TestService_ProcessOrder_APIError(t *testing.T) {
	api := &mockAPI{err: &kohort.APIError{
		StatusCode: 400,
		Code:       kohort.CodeUnknown,
		Messages:   []string{"amountTotal must be positive", "locale is invalid"},
	}}
	svc := NewService(testSettings(), api, &mockSessions{})

	out, err := svc.ProcessOrder(context.Background(), validOrder())

	require.NoError(t, err)
	assert.Empty(t, out.RedirectURL)
	assert.Equal(t, []string{"amountTotal must be positive", "locale is invalid"}, out.Notices)
}

func TestService_ProcessOrder_APIErrorWithoutMessages(t *testing.T) {
	api := &mockAPI{err: &kohort.APIError{StatusCode: 502, Code: kohort.CodeUnknown}}
	svc := NewService(testSettings(), api, &mockSessions{})

	out, err := svc.ProcessOrder(context.Background(), validOrder())

	require.NoError(t, err)
	assert.Equal(t, []string{genericErrorNotice}, out.Notices)
}

func TestService_ProcessOrder_StoreFailure(t *testing.T) {
	api := &mockAPI{session: &kohort.CheckoutSession{ID: "cs_1", URL: "https://pay.example/x"}}
	sessions := &mockSessions{createErr: errors.New("pool closed")}
	svc := NewService(testSettings(), api, sessions)

	out, err := svc.ProcessOrder(context.Background(), validOrder())

	require.NoError(t, err)
	assert.Empty(t, out.RedirectURL, "no redirect when the session record cannot be written")
	assert.Equal(t, []string{genericErrorNotice}, out.Notices)
}

func TestService_ConfirmPayment(t *testing.T) {
	sessions := &mockSessions{}
	svc := NewService(testSettings(), &mockAPI{}, sessions)

	err := svc.ConfirmPayment(context.Background(), "51", "pay_123")

	require.NoError(t, err)
	assert.Equal(t, "51", sessions.paidOrderID)
	assert.Equal(t, "pay_123", sessions.paidPaymentID)
	assert.Contains(t, sessions.paidNote, "pay_123")
}

func TestService_ConfirmPayment_UnknownOrder(t *testing.T) {
	sessions := &mockSessions{markErr: ErrSessionNotFound}
	svc := NewService(testSettings(), &mockAPI{}, sessions)

	err := svc.ConfirmPayment(context.Background(), "999", "pay_123")

	require.ErrorIs(t, err, ErrSessionNotFound)
}
