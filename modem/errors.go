package modem

import "fmt"

// TransportError is returned when the modem could not be reached or answered
// with a non-200 HTTP status.
type TransportError struct {
	// StatusCode is the HTTP status, zero when no response was received
	StatusCode int

	// Err is the underlying network error, if any
	Err error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TokenError is returned when the modem rejects the verification token.
type TokenError struct {
	Code int
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, errorMessage(e.Code))
}

// APIError is returned for any other error envelope sent by the modem.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// LookupError is returned when the modem reports a value missing from a
// table that is expected to be exhaustive.
type LookupError struct {
	Table string
	Key   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Table, e.Key)
}
