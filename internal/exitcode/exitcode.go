// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"
	"net/http"

	"todoboard/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, ambiguous, rejected input).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)

// FromError maps err to an exit code.
//
// Rejected credentials are auth errors. Client-side 4xx responses (missing
// resource, validation) are user errors. Other server responses and transport
// failures are backend errors. Errors raised locally, before any request, are
// user errors.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	if service.IsAuthError(err) {
		return AuthError
	}
	if service.IsNetworkError(err) {
		return BackendError
	}
	var se *service.ServerError
	if errors.As(err, &se) {
		if se.StatusCode >= http.StatusBadRequest && se.StatusCode < http.StatusInternalServerError {
			return UserError
		}
		return BackendError
	}
	return UserError
}
