// Package fieldcheck provides public constants for tools that drive the
// fieldcheck CLI, such as CI wrappers that branch on its exit status.
package fieldcheck

// Exit codes returned by the fieldcheck CLI.
const (
	// ExitSuccess indicates every check passed.
	ExitSuccess = 0

	// ExitFailure indicates a check exceeded its tolerance, or a runtime
	// failure such as an unreadable image.
	ExitFailure = 1

	// ExitConfigError indicates an invalid suite configuration or a
	// tolerance, geometry or quantity that is not configured.
	ExitConfigError = 2

	// ExitEnvError indicates missing test data: an absent archive, case
	// directory, reference picture or mesh.
	ExitEnvError = 3
)
