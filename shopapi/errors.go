package shopapi

import "fmt"

// TransportError is returned by the client when an HTTP exchange could not be completed
// at all: DNS failure, connection refused, timeout, or a broken connection. It is never
// used for completed exchanges with error status codes, which are reported as an
// ordinary Result.
type TransportError struct {
	// Op describes the attempted request, such as "POST /auth/login".
	Op string

	// Attempts is how many times the request was sent before giving up.
	Attempts int

	// Err is the error from the last attempt.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %s", e.Op, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
