package kohort

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Well-known error codes returned by the referral validation endpoint.
const (
	CodeAmountTooLow           = "AMOUNT_TOO_LOW"
	CodeCompletedExpiredCancel = "COMPLETED_EXPIRED_CANCELED"
	CodeMaxParticipantsReached = "MAX_PARTICIPANTS_REACHED"
	CodeEmailAlreadyUsed       = "EMAIL_ALREADY_USED"
	CodeNotFound               = "NOT_FOUND"
	CodeUnknown                = "UNKNOWN_ERROR"
)

// APIError is a structured error payload returned by the KohortPay API with a
// non-2xx status. Messages holds the human-readable message(s); Code holds the
// machine-readable error code when the endpoint provides one, falling back to
// CodeUnknown.
type APIError struct {
	StatusCode int
	Code       string
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("kohortpay: %s (status %d, code %s)",
			strings.Join(e.Messages, "; "), e.StatusCode, e.Code)
	}
	return fmt.Sprintf("kohortpay: status %d, code %s", e.StatusCode, e.Code)
}

// AsAPIError unwraps err to an *APIError if the API responded with a
// structured error. A false return means the request never produced a usable
// response (transport failure, timeout, malformed body on a 2xx).
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
