package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"sectool/internal/command"
	"sectool/internal/config"
	"sectool/internal/logger"
	"sectool/internal/provider"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	cipherFlag  = "cipher"
	cipherUsage = "Cipher for a newly created store"
)

// Env carries what every command needs from the entry point.
type Env struct {
	Config *config.Config
	Log    *logrus.Logger
	Stdout io.Writer
	Stderr io.Writer
	// Prompt reads a secret without echo. Defaults to the terminal.
	Prompt func(prompt string) (string, error)
}

func (e Env) withDefaults() Env {
	if e.Config == nil {
		home, _ := os.UserHomeDir()
		e.Config = config.Default(home)
	}
	if e.Log == nil {
		e.Log = logger.Discard()
	}
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = os.Stderr
	}
	if e.Prompt == nil {
		e.Prompt = terminalPrompt(e.Stderr)
	}
	return e
}

// usageError marks bad invocations so each command can map them to its own
// status.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return errors.WithStack(usageError{err: fmt.Errorf(format, args...)})
}

func isUsageError(err error) bool {
	var ue usageError
	return errors.As(err, &ue)
}

// cobraCommand adapts a cobra command to command.Command. RunE may record a
// non-zero status with SetStatus and still return nil when the status is an
// outcome rather than a failure.
type cobraCommand struct {
	command.Base
	env      Env
	cmd      *cobra.Command
	classify func(error) int
}

func newCobraCommand(env Env, cmd *cobra.Command, classify func(error) int, aliases ...string) cobraCommand {
	cmd.Aliases = aliases
	cmd.Args = noArgs
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.WithStack(usageError{err: err})
	})
	return cobraCommand{
		Base:     command.NewBase(aliases...),
		env:      env,
		cmd:      cmd,
		classify: classify,
	}
}

// Execute parses args and runs the command.
func (c *cobraCommand) Execute(args []string) command.Result {
	if args == nil {
		args = []string{}
	}
	c.SetStatus(command.StatusOK)
	c.cmd.SetArgs(args)
	c.describeCiphers()

	if err := c.cmd.Execute(); err != nil {
		return c.Finish(c.classify(err), err)
	}
	return c.Finish(c.Status(), nil)
}

// Help writes the cobra help text to w.
func (c *cobraCommand) Help(w io.Writer) {
	c.cmd.SetOut(w)
	defer c.cmd.SetOut(c.env.Stdout)
	c.describeCiphers()
	_ = c.cmd.Help()
}

// describeCiphers lists the installed ciphers in the --cipher flag usage.
// The provider is only installed once dispatch starts.
func (c *cobraCommand) describeCiphers() {
	flag := c.cmd.Flags().Lookup(cipherFlag)
	if flag == nil {
		return
	}
	flag.Usage = cipherUsage
	if names := provider.Names(); len(names) > 0 {
		flag.Usage = fmt.Sprintf("%s (one of %s)", cipherUsage, strings.Join(names, ", "))
	}
}

func noArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("unexpected argument %q", args[0])
	}
	return nil
}
