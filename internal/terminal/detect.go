// Package terminal reports whether vizdeploy is attached to a terminal.
package terminal

import (
	"os"

	"golang.org/x/term"
)

var isTerminalFn = term.IsTerminal

// IsInteractive reports whether stdin and stdout are both interactive terminals.
// Prompts are only shown when this is true.
func IsInteractive() bool {
	return isTerminalFn(int(os.Stdin.Fd())) && isTerminalFn(int(os.Stdout.Fd()))
}
