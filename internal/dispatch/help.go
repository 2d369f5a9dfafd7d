package dispatch

import (
	"fmt"
	"io"
	"strings"

	"sectool/internal/command"
)

// WriteGeneralHelp prints the usage banner followed by every registered
// command's help, each preceded by a blank line, in registry order.
func WriteGeneralHelp(w io.Writer, tool string, registry *command.Registry) {
	_, _ = fmt.Fprintf(w, "Missing arguments. Printing general help message:\n")
	_, _ = fmt.Fprintf(w, "Usage: %s <command> [arguments]\n", tool)
	_, _ = fmt.Fprintf(w, "Commands: %s\n", strings.Join(registry.Names(), ", "))
	_, _ = fmt.Fprintf(w, "Run '%s <command> --help' for command options.\n", tool)

	registry.Each(func(_ string, cmd command.Command) {
		_, _ = fmt.Fprintln(w)
		cmd.Help(w)
	})
}
