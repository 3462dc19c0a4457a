package client

import "fmt"

// RequestFailedError is returned for a non-OK, non-rate-limit status or a
// transport-level fault. It is never retried.
type RequestFailedError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

// Error implements the error interface.
func (e *RequestFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request failed for %s: %s", e.URL, e.Status)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is returned when an OK response body cannot be
// decoded. A successful status with an unparsable body indicates a protocol
// mismatch, not transience, so it is never retried.
type MalformedResponseError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
