package service

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError reports a request that never reached the server or whose
// response never arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError reports a non-2xx response.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Op == "" {
		return fmt.Sprintf("server error %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: server error %d: %s", e.Op, e.StatusCode, msg)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// IsAuthError reports whether the server rejected the credential.
func IsAuthError(err error) bool {
	var se *ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
