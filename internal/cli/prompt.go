package cli

import (
	"fmt"
	"io"
	"os"

	"sectool/internal/mask"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

var errNoTerminal = errors.New("no terminal available for prompting")

// terminalPrompt prompts on w and reads the answer without echoing it.
func terminalPrompt(w io.Writer) func(string) (string, error) {
	return func(prompt string) (string, error) {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", errNoTerminal
		}

		fmt.Fprint(w, prompt)
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(w) // Add newline after password input
		if err != nil {
			return "", errors.Wrap(err, "failed to read password")
		}
		return string(secret), nil
	}
}

// readSecret returns value when set, otherwise prompts for label (twice
// when confirm is set). Masked values are revealed when reveal is set.
func (e Env) readSecret(value, label string, confirm, reveal bool) (string, error) {
	if value == "" {
		entered, err := e.Prompt("Enter " + label + ": ")
		if err != nil {
			return "", usageErrorf("read %s: %v", label, err)
		}
		if confirm {
			again, err := e.Prompt("Confirm " + label + ": ")
			if err != nil {
				return "", usageErrorf("read %s: %v", label, err)
			}
			if entered != again {
				return "", usageErrorf("%s: the entered values do not match", label)
			}
		}
		value = entered
	}
	if value == "" {
		return "", usageErrorf("%s must not be empty", label)
	}
	if !reveal {
		return value, nil
	}

	revealed, err := mask.Reveal(value)
	if err != nil {
		return "", errors.Wrap(err, "unmask value")
	}
	return revealed, nil
}
