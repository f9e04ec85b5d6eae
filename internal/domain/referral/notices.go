package referral

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kohortpay/kohort-bridge/internal/kohort"
)

// rejectionMessages maps known validation error codes to buyer-facing
// sentences. Codes outside the table fall back to genericRejection.
var rejectionMessages = map[string]string{
	kohort.CodeAmountTooLow:           "Your order total is too low to use this referral code.",
	kohort.CodeCompletedExpiredCancel: "The kohort linked to this referral code is completed, expired or canceled.",
	kohort.CodeMaxParticipantsReached: "The kohort linked to this referral code has reached its maximum number of participants.",
	kohort.CodeEmailAlreadyUsed:       "This email address has already been used in this kohort.",
	kohort.CodeNotFound:               "This referral code does not exist.",
}

const genericRejection = "This referral code is invalid."

const minimumAmountSuffix = "A minimum purchase of €%s is required to generate a referral code."

// NoticeMapper translates API error codes into localized buyer notices.
// Every message carries a suffix naming the minimum purchase amount required
// to generate a referral code; the amount is read at call time so settings
// changes take effect immediately.
type NoticeMapper struct {
	minimumAmount func() decimal.Decimal
}

// NewNoticeMapper creates a NoticeMapper reading the minimum purchase amount
// from the given provider.
func NewNoticeMapper(minimumAmount func() decimal.Decimal) *NoticeMapper {
	return &NoticeMapper{minimumAmount: minimumAmount}
}

// RejectionMessage returns the buyer-facing sentence for an error code,
// suffixed with the minimum purchase amount hint.
func (m *NoticeMapper) RejectionMessage(code string) string {
	msg, ok := rejectionMessages[code]
	if !ok {
		msg = genericRejection
	}
	return msg + " " + fmt.Sprintf(minimumAmountSuffix, m.minimumAmount().StringFixed(2))
}

// CashbackMessage returns the success notice announcing the computed
// cashback amount in major units.
func (m *NoticeMapper) CashbackMessage(cashback decimal.Decimal) string {
	return fmt.Sprintf("Referral code applied! You will receive €%s cashback once the payment completes.",
		cashback.StringFixed(2))
}
