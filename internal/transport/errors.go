package transport

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a reply whose body is not JSON
var ErrMalformedResponse = errors.New("malformed response")

// TransportError means the server could not be reached or answered with
// something unparseable.
type TransportError struct {
	Op   string
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError means the server was reachable but the payload signalled
// failure.
type ApplicationError struct {
	StatusCode int
	Message    string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed (status %d)", e.StatusCode)
	}
	return e.Message
}

// IsTransport reports whether err is (or wraps) a *TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsApplication reports whether err is (or wraps) an *ApplicationError
func IsApplication(err error) bool {
	var ae *ApplicationError
	return errors.As(err, &ae)
}
