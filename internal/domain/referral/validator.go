// Package referral intercepts coupon codes carrying the reserved KohortPay
// prefix and validates them against the payment-groups API. Codes without the
// prefix pass through to the host's own coupon engine untouched.
//
// An accepted referral code carries no monetary discount in the host's
// engine: the cashback is communicated to the buyer here and settled
// out-of-band by KohortPay after payment. The code stays applied on the cart
// as a zero-discount marker so the host does not reject it as unknown.
package referral

import (
	"context"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kohortpay/kohort-bridge/internal/kohort"
)

// CodePrefix is the reserved referral code prefix. Matching is
// case-insensitive.
const CodePrefix = "KHRTPAY"

var hundred = decimal.NewFromInt(100)

// CodeValidator is the slice of the KohortPay client the validator needs.
type CodeValidator interface {
	ValidateReferralCode(ctx context.Context, code string) (*kohort.ReferralValidation, error)
}

// NoticeKind discriminates buyer notices.
type NoticeKind string

const (
	// NoticeSuccess announces the cashback on an accepted code.
	NoticeSuccess NoticeKind = "success"
	// NoticeError explains why a code was rejected.
	NoticeError NoticeKind = "error"
)

// Notice is a buyer-facing message produced by validation.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Result is the outcome of validating one coupon code.
type Result struct {
	// PassThrough means the code does not carry the referral prefix and was
	// never sent to the API; the host applies its normal coupon logic.
	PassThrough bool
	// Accept reports whether the referral code is valid. Accepted codes stay
	// applied on the cart.
	Accept bool
	// Cashback is the computed reward in major currency units. Informational
	// only; crediting happens on the KohortPay side.
	Cashback decimal.Decimal
	// Notice is set for every intercepted code: the cashback announcement on
	// success (when cashback > 0) or the rejection reason.
	Notice *Notice
}

// IsReferralCode reports whether code carries the reserved prefix.
func IsReferralCode(code string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(code)), CodePrefix)
}

// Normalize canonicalizes a referral code for the API: trimmed and
// uppercased, nothing else.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validator validates referral codes via the KohortPay API.
type Validator struct {
	api     CodeValidator
	notices *NoticeMapper
}

// NewValidator creates a Validator.
func NewValidator(api CodeValidator, notices *NoticeMapper) *Validator {
	return &Validator{api: api, notices: notices}
}

// Validate checks one coupon code against the cart total. Codes without the
// referral prefix pass through unchanged. Intercepted codes are normalized
// and sent to the validation endpoint; rejection and transport failures both
// reject the code with a mapped notice.
func (v *Validator) Validate(ctx context.Context, code string, cartTotal decimal.Decimal) Result {
	if !IsReferralCode(code) {
		return Result{PassThrough: true}
	}

	normalized := Normalize(code)
	lg := zctx.From(ctx).With(zap.String("code", normalized))

	validation, err := v.api.ValidateReferralCode(ctx, normalized)
	if err != nil {
		errCode := kohort.CodeUnknown
		if apiErr, ok := kohort.AsAPIError(err); ok && apiErr.Code != "" {
			errCode = apiErr.Code
		}
		lg.Info("Referral code rejected", zap.String("error_code", errCode), zap.Error(err))
		return Result{
			Accept: false,
			Notice: &Notice{
				Kind:    NoticeError,
				Message: v.notices.RejectionMessage(errCode),
			},
		}
	}

	cashback := computeCashback(validation, cartTotal)

	result := Result{
		Accept:   true,
		Cashback: cashback,
	}
	if cashback.IsPositive() {
		result.Notice = &Notice{
			Kind:    NoticeSuccess,
			Message: v.notices.CashbackMessage(cashback),
		}
	}

	lg.Info("Referral code accepted", zap.String("cashback", cashback.String()))
	return result
}

// computeCashback derives the reward from the referral's current discount
// level: cart total × value/100 for percentage discounts, the value itself
// (major units) for fixed ones. Rounded to 2 decimal places.
func computeCashback(v *kohort.ReferralValidation, cartTotal decimal.Decimal) decimal.Decimal {
	var cashback decimal.Decimal
	if v.DiscountType == kohort.DiscountPercentage {
		cashback = cartTotal.Mul(v.Value).Div(hundred)
	} else {
		cashback = v.Value
	}
	return cashback.Round(2)
}
