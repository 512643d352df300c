package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest},
		{"auth", Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("link is private"), http.StatusForbidden},
		{"not found", NotFound("content not found"), http.StatusNotFound},
		{"conflict", Conflict("duplicate"), http.StatusConflict},
		{"upstream", Upstream("scrape failed", errors.New("dial tcp")), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("gone")), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPublicMessage(t *testing.T) {
	// The wrapped cause must never leak.
	err := Upstream("failed to scrape URL", errors.New("dial tcp 10.0.0.1: i/o timeout"))
	if got := PublicMessage(err); got != "failed to scrape URL" {
		t.Errorf("PublicMessage() = %q", got)
	}

	if got := PublicMessage(errors.New("pq: relation does not exist")); got != "internal server error" {
		t.Errorf("PublicMessage(plain) = %q", got)
	}
}
