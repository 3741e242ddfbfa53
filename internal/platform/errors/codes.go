// Package errors provides structured error handling with message catalogs.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Catalog errors
	CodeEmptyCatalog    Code = "EMPTY_CATALOG"
	CodeInvalidTemplate Code = "INVALID_TEMPLATE"

	// Hashing errors
	CodeCanonicalizationFailed Code = "CANONICALIZATION_FAILED"

	// Scenario errors
	CodeInvalidStepCount Code = "INVALID_STEP_COUNT"

	// Random/seed errors
	CodeSeedOutOfRange Code = "SEED_OUT_OF_RANGE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// ExitCode maps domain codes to process exit codes for command-line callers.
func (c Code) ExitCode() int {
	switch c {
	// Usage - bad input from the caller
	case CodeInvalidStepCount,
		CodeSeedOutOfRange,
		CodeInvalidTemplate:
		return 2

	// Precondition - nothing to generate from
	case CodeEmptyCatalog:
		return 3

	// Lookup misses
	case CodeNotFound:
		return 4

	// Data that cannot be hashed
	case CodeCanonicalizationFailed:
		return 5

	default:
		return 1
	}
}
