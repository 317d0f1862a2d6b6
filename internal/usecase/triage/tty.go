package triage

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsInteractive checks if stdin is a TTY. The triage loop needs a live
// terminal; piped input or CI means there is nobody to answer the prompts.
func IsInteractive() bool {
	return IsTTY(os.Stdin.Fd())
}
