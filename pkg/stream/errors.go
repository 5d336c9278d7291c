package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy rejects a submission made while a cycle is in flight. The
	// submission is a no-op: no state change, nothing reported to the sink.
	ErrBusy = errors.New("a request is already in flight")

	// ErrEmptyInput rejects an empty or whitespace-only submission. Like
	// ErrBusy, the rejection is silent as far as the sink is concerned.
	ErrEmptyInput = errors.New("empty input")

	// ErrMissingBody indicates the service answered without a response body.
	ErrMissingBody = errors.New("response has no body")
)

// TransportError reports a failed cycle: a network error, a non-2xx status,
// or a missing body. It is the only error class surfaced to the sink;
// malformed events mid-stream are swallowed.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Body != "":
		return fmt.Sprintf("service returned status %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("service returned status %d", e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }
