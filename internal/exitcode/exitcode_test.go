package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"todoboard/internal/service"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"unauthorized", &service.ServerError{StatusCode: 401}, AuthError},
		{"forbidden", &service.ServerError{StatusCode: 403}, AuthError},
		{"not found", &service.ServerError{StatusCode: 404}, UserError},
		{"validation", &service.ServerError{StatusCode: 422}, UserError},
		{"server", &service.ServerError{StatusCode: 500}, BackendError},
		{"network", &service.NetworkError{Op: "list todos", Err: errors.New("refused")}, BackendError},
		{"wrapped", fmt.Errorf("edit: %w", &service.ServerError{StatusCode: 404}), UserError},
		{"local", errors.New("title is required"), UserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromError(tt.err); got != tt.want {
				t.Errorf("FromError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
