package httpclient

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a request
// without attempting it.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// StatusError is returned when an upstream responds with a non-success status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// IsStatusError reports whether err carries an upstream HTTP status.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
