package suite

import (
	"errors"
	"time"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/internal/imagecmp"
	"github.com/AndreyAkinshin/fieldcheck/internal/stats"
)

// Kind is the family of a check.
type Kind string

const (
	KindImage     Kind = "image"
	KindStats     Kind = "stats"
	KindCounts    Kind = "counts"
	KindMeshPath  Kind = "mesh-path"
	KindFieldKeys Kind = "field-keys"
	KindSetup     Kind = "setup"
)

// Status is the outcome of a check.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	// StatusError means the check could not be evaluated (missing input,
	// unknown tolerance, unreadable file).
	StatusError Status = "error"
)

// CheckResult is the outcome of one check in a case.
type CheckResult struct {
	Name   string           `json:"name" yaml:"name"`
	Kind   Kind             `json:"kind" yaml:"kind"`
	Status Status           `json:"status" yaml:"status"`
	Detail string           `json:"detail,omitempty" yaml:"detail,omitempty"`
	Reason string           `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error  string           `json:"error,omitempty" yaml:"error,omitempty"`
	Image  *imagecmp.Result `json:"image,omitempty" yaml:"image,omitempty"`
	Stats  *stats.Result    `json:"stats,omitempty" yaml:"stats,omitempty"`

	err error
}

// Err returns the error of a failed or errored check. A result decoded
// from a report only keeps the message.
func (c CheckResult) Err() error {
	if c.err == nil && c.Error != "" {
		return errors.New(c.Error)
	}
	return c.err
}

// Passed reports whether the check passed.
func (c CheckResult) Passed() bool {
	return c.Status == StatusPassed
}

// CaseResult gathers the checks of one case.
type CaseResult struct {
	Name     string        `json:"name" yaml:"name"`
	Geometry string        `json:"geometry" yaml:"geometry"`
	Skipped  bool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Checks   []CheckResult `json:"checks" yaml:"checks"`
	Duration time.Duration `json:"duration_ns" yaml:"duration"`
}

// Passed reports whether no check of the case failed or errored.
func (c CaseResult) Passed() bool {
	for _, ch := range c.Checks {
		if ch.Status == StatusFailed || ch.Status == StatusError {
			return false
		}
	}
	return true
}

// Err joins the errors of the case's checks, each tagged with the case and
// check name.
func (c CaseResult) Err() error {
	var errs []error
	for _, ch := range c.Checks {
		if err := ch.Err(); err != nil {
			errs = append(errs, ferrors.CheckError(c.Name, ch.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Run is the result of one suite run.
type Run struct {
	ID        string        `json:"id" yaml:"id"`
	Suite     string        `json:"suite" yaml:"suite"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration"`
	Cases     []CaseResult  `json:"cases" yaml:"cases"`
}

// Totals counts checks by status across the run.
type Totals struct {
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Errored int `json:"errored" yaml:"errored"`
	Skipped int `json:"skipped" yaml:"skipped"`
}

// Totals counts every check of the run.
func (r *Run) Totals() Totals {
	var t Totals
	for _, c := range r.Cases {
		for _, ch := range c.Checks {
			switch ch.Status {
			case StatusPassed:
				t.Passed++
			case StatusFailed:
				t.Failed++
			case StatusError:
				t.Errored++
			case StatusSkipped:
				t.Skipped++
			}
		}
	}
	return t
}

// Passed reports whether every case passed.
func (r *Run) Passed() bool {
	for _, c := range r.Cases {
		if !c.Passed() {
			return false
		}
	}
	return true
}

// Err joins the errors of every case, or returns nil.
func (r *Run) Err() error {
	var errs []error
	for _, c := range r.Cases {
		if err := c.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
