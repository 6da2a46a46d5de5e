package fieldcheck_test

import (
	"testing"

	"github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/pkg/fieldcheck"
)

func TestExitCodeValues(t *testing.T) {
	tests := []struct {
		name     string
		constant int
		expected int
	}{
		{"ExitSuccess", fieldcheck.ExitSuccess, 0},
		{"ExitFailure", fieldcheck.ExitFailure, 1},
		{"ExitConfigError", fieldcheck.ExitConfigError, 2},
		{"ExitEnvError", fieldcheck.ExitEnvError, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("fieldcheck.%s = %d, want %d", tt.name, tt.constant, tt.expected)
			}
		})
	}
}

// Public codes must not drift from the ones the CLI derives from error kinds.
func TestExitCodeConsistency(t *testing.T) {
	tests := []struct {
		name   string
		public int
		err    error
	}{
		{"success", fieldcheck.ExitSuccess, nil},
		{"assertion", fieldcheck.ExitFailure, errors.Assertion("Tmax out of tolerance")},
		{"config", fieldcheck.ExitConfigError, errors.Config("bad suite")},
		{"not configured", fieldcheck.ExitConfigError, errors.NotConfigured("tolerance", "image/4D")},
		{"environment", fieldcheck.ExitEnvError, errors.Environment("archive missing")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.GetExitCode(tt.err); got != tt.public {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.public)
			}
		})
	}
}
