// Package kohort is the outbound HTTP client for the KohortPay payment API.
// It covers the two calls the bridge makes: creating checkout sessions and
// validating referral codes. Responses are decoded tolerantly — the API's
// error envelope varies between endpoints, so malformed or partial bodies
// degrade to an UNKNOWN_ERROR code rather than a decode failure.
package kohort

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// DefaultBaseURL is the production KohortPay API endpoint.
const DefaultBaseURL = "https://api.kohortpay.com"

// maxBodySize caps how much of a response body is read. API payloads are
// small; anything larger is not worth buffering.
const maxBodySize = 1 << 20

// Config configures a Client.
type Config struct {
	// BaseURL is the API root. Defaults to DefaultBaseURL when empty.
	BaseURL string
	// SecretKey is the merchant secret key, sent as a bearer token.
	SecretKey string
	// HTTPClient overrides the underlying HTTP client. When nil, a client
	// with a 30s timeout and an OpenTelemetry-instrumented transport is used.
	HTTPClient *http.Client
}

// Client talks to the KohortPay API. The zero value is not usable; construct
// with NewClient.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewClient creates a Client from cfg, applying defaults for the base URL and
// HTTP client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL:   base,
		secretKey: cfg.SecretKey,
		http:      hc,
	}
}

// CreateCheckoutSession posts req to /checkout-sessions and returns the
// created session. A non-2xx response with a structured body is returned as
// an *APIError; anything else is a wrapped transport error.
func (c *Client) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal checkout session request")
	}

	body, err := c.do(ctx, http.MethodPost, "/checkout-sessions", payload)
	if err != nil {
		return nil, err
	}

	session, err := decodeCheckoutSession(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode checkout session response")
	}
	return session, nil
}

// ValidateReferralCode posts to /payment-groups/{code}/validate and returns
// the referral's current discount level. The endpoint takes no request body.
func (c *Client) ValidateReferralCode(ctx context.Context, code string) (*ReferralValidation, error) {
	path := "/payment-groups/" + url.PathEscape(code) + "/validate"

	body, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}

	return decodeReferralValidation(body), nil
}

// do performs one authenticated API call and returns the response body on a
// 2xx status. Non-2xx responses are parsed into an *APIError; the raw error
// body is logged at debug level and otherwise dropped (no retries).
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zctx.From(ctx).Debug("KohortPay API error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, parseAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// decodeCheckoutSession extracts the session id and hosted payment page URL.
func decodeCheckoutSession(body []byte) (*CheckoutSession, error) {
	var session CheckoutSession

	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Str()
			if err != nil {
				return err
			}
			session.ID = v
			return nil
		case "url":
			v, err := d.Str()
			if err != nil {
				return err
			}
			session.URL = v
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse body")
	}
	if session.URL == "" {
		return nil, errors.New("response has no redirect url")
	}
	return &session, nil
}

// decodeReferralValidation extracts discount_type and the nested current
// discount value, defaulting to a 0% percentage discount for anything the
// body does not provide.
func decodeReferralValidation(body []byte) *ReferralValidation {
	v := &ReferralValidation{
		DiscountType: DiscountPercentage,
		Value:        decimal.Zero,
	}

	d := jx.DecodeBytes(body)
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "discount_type":
			s, err := d.Str()
			if err != nil {
				return err
			}
			if s != "" {
				v.DiscountType = DiscountType(s)
			}
			return nil
		case "current_discount_level":
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key != "value" {
					return d.Skip()
				}
				val, err := decodeDecimal(d)
				if err != nil {
					return err
				}
				v.Value = val
				return nil
			})
		default:
			return d.Skip()
		}
	})

	return v
}

// decodeDecimal reads a JSON number or numeric string as a decimal.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	default:
		if err := d.Skip(); err != nil {
			return decimal.Zero, err
		}
		return decimal.Zero, nil
	}
}

// parseAPIError builds an *APIError from a non-2xx response body. The API
// uses two envelope shapes: {"error":{"code":...,"message":...}} on the
// validation endpoint and {"message": "..."|["..."]} on session creation.
// Absent or unparsable bodies yield CodeUnknown with no messages.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Code:       CodeUnknown,
	}

	d := jx.DecodeBytes(body)
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "message":
			return appendMessages(d, apiErr)
		case "error":
			switch d.Next() {
			case jx.Object:
				return d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "code":
						s, err := d.Str()
						if err != nil {
							return err
						}
						if s != "" {
							apiErr.Code = s
						}
						return nil
					case "message":
						return appendMessages(d, apiErr)
					default:
						return d.Skip()
					}
				})
			case jx.String:
				s, err := d.Str()
				if err != nil {
					return err
				}
				apiErr.Messages = append(apiErr.Messages, s)
				return nil
			default:
				return d.Skip()
			}
		default:
			return d.Skip()
		}
	})

	return apiErr
}

// appendMessages reads a string or an array of strings into apiErr.Messages.
func appendMessages(d *jx.Decoder, apiErr *APIError) error {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		apiErr.Messages = append(apiErr.Messages, s)
		return nil
	case jx.Array:
		return d.Arr(func(d *jx.Decoder) error {
			s, err := d.Str()
			if err != nil {
				return err
			}
			apiErr.Messages = append(apiErr.Messages, s)
			return nil
		})
	default:
		return d.Skip()
	}
}
