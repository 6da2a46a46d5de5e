package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation patterns.
var (
	// Suite name: must start with lowercase letter, may contain lowercase, digits, hyphens.
	// Hyphens must not be consecutive or trailing.
	suiteNamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

	// Case name: letters, digits, dots, underscores and hyphens.
	caseNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

var (
	validGeometries = []string{"2D", "3D", "Axi"}
	validQuantities = []string{"temperature", "vonmises"}
	validFormats    = []string{string(ReportText), string(ReportJSON), string(ReportYAML)}
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration for errors and returns warnings for non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	if err := ValidateSuiteName(cfg.Suite.Name); err != nil {
		return nil, err
	}

	if cfg.Report != nil && cfg.Report.Format != "" && !contains(validFormats, cfg.Report.Format) {
		return nil, &ValidationError{
			Field:   "report.format",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validFormats, ", ")),
		}
	}

	seen := make(map[string]bool, len(cfg.Cases))
	for i, c := range cfg.Cases {
		if err := validateCase(i, c); err != nil {
			return nil, err
		}
		if seen[c.Name] {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("cases[%d].name", i),
				Message: fmt.Sprintf("duplicate case name %q", c.Name),
			}
		}
		seen[c.Name] = true

		if c.Skip {
			warnings = append(warnings, fmt.Sprintf("case %q is skipped", c.Name))
		}
		if len(c.Fields) == 0 && len(c.Stats) == 0 && c.Mesh == nil {
			warnings = append(warnings, fmt.Sprintf("case %q has no checks configured", c.Name))
		}
	}

	return warnings, nil
}

func validateCase(i int, c CaseConfig) error {
	prefix := fmt.Sprintf("cases[%d]", i)

	if err := ValidateCaseName(c.Name); err != nil {
		return &ValidationError{Field: prefix + ".name", Message: err.(*ValidationError).Message}
	}
	if c.Geometry == "" {
		return &ValidationError{Field: prefix + ".geometry", Message: "is required"}
	}
	if !contains(validGeometries, c.Geometry) {
		return &ValidationError{
			Field:   prefix + ".geometry",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validGeometries, ", ")),
		}
	}
	if c.Basedir == "" {
		return &ValidationError{Field: prefix + ".basedir", Message: "is required"}
	}

	for j, f := range c.Fields {
		if f.Field == "" {
			return &ValidationError{Field: fmt.Sprintf("%s.fields[%d].field", prefix, j), Message: "is required"}
		}
		if f.Include != "" && f.Unique != "" {
			return &ValidationError{
				Field:   fmt.Sprintf("%s.fields[%d]", prefix, j),
				Message: "include and unique are mutually exclusive",
			}
		}
	}

	for j, s := range c.Stats {
		field := fmt.Sprintf("%s.stats[%d]", prefix, j)
		if !contains(validQuantities, strings.ToLower(s.Quantity)) {
			return &ValidationError{
				Field:   field + ".quantity",
				Message: fmt.Sprintf("must be one of %s", strings.Join(validQuantities, ", ")),
			}
		}
		if s.Derived == "" {
			return &ValidationError{Field: field + ".derived", Message: "is required"}
		}
	}

	if c.Mesh != nil && c.Mesh.Counts == "" {
		return &ValidationError{Field: prefix + ".mesh.counts", Message: "is required"}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// ValidateSuiteName checks if a suite name is valid.
// Returns a ValidationError if the name is empty, too long (>128 chars),
// or doesn't match the required pattern.
func ValidateSuiteName(name string) error {
	if name == "" {
		return &ValidationError{Field: "suite.name", Message: "is required"}
	}
	if len(name) > 128 {
		return &ValidationError{Field: "suite.name", Message: "must be 128 characters or less"}
	}
	if !suiteNamePattern.MatchString(name) {
		return &ValidationError{
			Field:   "suite.name",
			Message: "must match pattern ^[a-z][a-z0-9]*(-[a-z0-9]+)*$ (lowercase letters, digits, non-consecutive hyphens)",
		}
	}
	return nil
}

// ValidateCaseName checks if a case name is valid.
func ValidateCaseName(name string) error {
	if name == "" {
		return &ValidationError{Field: "case name", Message: "is required"}
	}
	if !caseNamePattern.MatchString(name) {
		return &ValidationError{
			Field:   "case name",
			Message: "must match pattern ^[A-Za-z0-9][A-Za-z0-9._-]*$",
		}
	}
	return nil
}
