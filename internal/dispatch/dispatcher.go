// Package dispatch is the process entry point logic: it installs the cipher
// provider, resolves the command token, runs the command and turns the
// outcome into an exit status.
package dispatch

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"sectool/internal/command"
	"sectool/internal/logger"
	"sectool/internal/notify"
	"sectool/internal/provider"

	"github.com/sirupsen/logrus"
)

const (
	msgExecutionFailed = "command execution failed"
	msgNotFound        = "command or alias %q not found"
)

// Dispatcher runs exactly one command per invocation.
type Dispatcher struct {
	tool     string
	registry *command.Registry
	stdout   io.Writer
	stderr   io.Writer
	install  func()
	log      *logrus.Logger
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithOutput routes help to stdout and diagnostics to stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(d *Dispatcher) {
		d.stdout = stdout
		d.stderr = stderr
	}
}

// WithInstaller replaces the cipher provider installation step.
func WithInstaller(install func()) Option {
	return func(d *Dispatcher) { d.install = install }
}

// WithLogger sets the logger used for debug breadcrumbs.
func WithLogger(lg *logrus.Logger) Option {
	return func(d *Dispatcher) { d.log = lg }
}

// New creates a Dispatcher for tool over registry.
func New(tool string, registry *command.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		tool:     tool,
		registry: registry,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		install:  provider.Install,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run dispatches args (without the program name) and returns the exit
// status for the process.
func (d *Dispatcher) Run(args []string) int {
	d.install()

	if len(args) == 0 || isHelpFlag(args[0]) {
		d.log.Debug("no command given, printing general help")
		WriteGeneralHelp(d.stdout, d.tool, d.registry)
		return command.StatusOK
	}

	token, forwarded := args[0], args[1:]
	cmd, ok := d.registry.Resolve(token)
	if !ok {
		notify.Errorf(d.stderr, msgNotFound, token)
		return command.StatusUnrecognizedCommand
	}

	d.log.WithFields(logrus.Fields{"token": token, "args": len(forwarded)}).Debug("dispatching command")
	status := d.execute(cmd, forwarded)
	d.log.WithFields(logrus.Fields{"token": token, "status": status}).Debug("command finished")
	return status
}

// execute runs cmd and reports failures. A panic leaves the status at
// whatever the command last recorded.
func (d *Dispatcher) execute(cmd command.Command, args []string) (status int) {
	defer func() {
		if r := recover(); r != nil {
			notify.Errorf(d.stderr, msgExecutionFailed)
			_, _ = fmt.Fprintf(d.stderr, "panic: %v\n%s", r, debug.Stack())
			status = cmd.Status()
		}
	}()

	res := cmd.Execute(args)
	if res.Err != nil {
		notify.Errorf(d.stderr, msgExecutionFailed)
		_, _ = fmt.Fprintf(d.stderr, "%+v\n", res.Err)
	}
	return res.Status
}

func isHelpFlag(arg string) bool {
	return arg == "--help" || arg == "-h"
}
