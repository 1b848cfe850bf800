package slack

import "errors"

// ErrMessageNotFound is returned when no message exists at the requested
// timestamp. The error text is surfaced verbatim to the requester.
var ErrMessageNotFound = errors.New("message not found at that timestamp")

// APIError is an ok=false envelope returned by the Web API. It marks
// API-level failures as opposed to transport failures; the engagement
// collector treats API-level failures on the reaction fetch as recoverable
// and falls back to reading the message body.
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string {
	return "slack api " + e.Method + ": " + e.Code
}

// IsAPIError reports whether err is an API-level (ok=false) error.
// Transport and decoding failures are not API errors and are always fatal.
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
