package faults_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/JaimeStill/cliprank/pkg/faults"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: bad value", faults.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("clip %w", faults.ErrNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("%w: own clip", faults.ErrForbidden), http.StatusForbidden},
		{"already awarded", fmt.Errorf("wrap: %w", fmt.Errorf("trophy %w", faults.ErrAlreadyAwarded)), http.StatusConflict},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := faults.HTTPStatus(tt.err); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
