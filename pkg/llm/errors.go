package llm

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrUnavailable means the model endpoint could not be reached or
	// returned a server-side failure.
	ErrUnavailable = errors.New("llm: model unavailable")

	// ErrTimeout means the model call exceeded its deadline.
	ErrTimeout = errors.New("llm: model timeout")
)

// ClassifyTransportError maps a raw HTTP client error onto the taxonomy
// above so callers can decide between retry-once and fallback.
func ClassifyTransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Join(ErrTimeout, err)
	}
	return errors.Join(ErrUnavailable, err)
}
