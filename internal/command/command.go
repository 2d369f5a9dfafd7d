// Package command defines the contract every sectool subcommand satisfies
// and the registry the dispatcher resolves command tokens against.
package command

import "io"

// Exit statuses owned by the dispatcher. Commands define their own codes in
// ranges they privately own.
const (
	StatusOK                  = 0
	StatusUnrecognizedCommand = 1
)

// Result is the outcome of a single Execute call.
type Result struct {
	Status int
	Err    error
}

// OK reports whether the command finished without error.
func (r Result) OK() bool { return r.Err == nil }

// Command is a unit of work the dispatcher can run.
type Command interface {
	// Execute runs the command with the arguments that followed the command
	// token. The returned status is also recorded and reported by Status.
	Execute(args []string) Result
	// Status returns the status of the most recent Execute call, zero before
	// the first one.
	Status() int
	// Help writes the command's descriptive text to w.
	Help(w io.Writer)
	// IsAlias reports whether name is an alternate identifier of the command.
	IsAlias(name string) bool
}

// Base carries the alias set and last recorded status. Concrete commands
// embed it to satisfy Status and IsAlias.
type Base struct {
	aliases []string
	status  int
}

// NewBase returns a Base recognising the given aliases.
func NewBase(aliases ...string) Base {
	return Base{aliases: aliases}
}

// IsAlias reports whether name is one of the registered aliases.
func (b *Base) IsAlias(name string) bool {
	for _, a := range b.aliases {
		if a == name {
			return true
		}
	}
	return false
}

// Aliases returns a copy of the alias list.
func (b *Base) Aliases() []string {
	return append([]string(nil), b.aliases...)
}

// Status returns the last recorded status.
func (b *Base) Status() int { return b.status }

// SetStatus records status as the outcome of the current execution.
func (b *Base) SetStatus(status int) { b.status = status }

// Finish records status and wraps it, together with err, into a Result.
func (b *Base) Finish(status int, err error) Result {
	b.status = status
	return Result{Status: status, Err: err}
}
