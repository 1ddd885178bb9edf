package cli

import "github.com/roowe/websearch/pkg/search"

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch search.KindOf(err) {
	case "":
		return ExitOK
	case search.KindInvalidInput, search.KindProviderUnsupported:
		return ExitUsage
	default:
		return ExitFailure
	}
}
