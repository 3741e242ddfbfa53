package config

import (
	"fmt"
	"os"
	"strings"

	apperrors "github.com/neetkit/cardforge/internal/platform/errors"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
// It provides a consistent fatal-exit pattern for CLI entry points.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// ExitErr writes err to stderr and exits with the code mapped from its
// domain error code. Domain errors also print their localized message for
// the locale named by LANG.
func ExitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if message, ok := apperrors.UserMessageOf(err, Locale()); ok {
		fmt.Fprintln(os.Stderr, message)
	}
	os.Exit(apperrors.CodeOf(err).ExitCode())
}

// Locale returns the process locale from LANG without its encoding suffix
// ("en_US.UTF-8" -> "en_US").
func Locale() string {
	locale, _, _ := strings.Cut(os.Getenv("LANG"), ".")
	if locale == "C" || locale == "POSIX" {
		return ""
	}
	return locale
}
