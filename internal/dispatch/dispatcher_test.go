package dispatch

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"sectool/internal/command"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommand struct {
	command.Base
	name     string
	gotArgs  []string
	calls    int
	status   int
	err      error
	preset   int
	panicked bool
}

func newFake(name string, aliases ...string) *fakeCommand {
	return &fakeCommand{Base: command.NewBase(aliases...), name: name}
}

func (f *fakeCommand) Execute(args []string) command.Result {
	f.calls++
	f.gotArgs = args
	if f.panicked {
		f.SetStatus(f.preset)
		panic("malformed input")
	}
	return f.Finish(f.status, f.err)
}

func (f *fakeCommand) Help(w io.Writer) {
	_, _ = fmt.Fprintf(w, "help for %s\n", f.name)
}

type harness struct {
	registry  *command.Registry
	stdout    bytes.Buffer
	stderr    bytes.Buffer
	installed int
}

func newHarness(cmds ...*fakeCommand) *harness {
	h := &harness{registry: command.NewRegistry()}
	for _, c := range cmds {
		h.registry.Register(c.name, c)
	}
	return h
}

func (h *harness) run(args ...string) int {
	d := New("sectool", h.registry,
		WithOutput(&h.stdout, &h.stderr),
		WithInstaller(func() { h.installed++ }),
	)
	return d.Run(args)
}

func TestRunWithoutArgumentsPrintsGeneralHelp(t *testing.T) {
	t.Parallel()

	cs := newFake("credential-store", "cs")
	mask := newFake("mask")
	h := newHarness(cs, mask)

	status := h.run()

	assert.Equal(t, command.StatusOK, status)
	assert.Equal(t, 1, h.installed)
	assert.Empty(t, h.stderr.String())
	assert.Equal(t, "Missing arguments. Printing general help message:\n"+
		"Usage: sectool <command> [arguments]\n"+
		"Commands: credential-store, mask\n"+
		"Run 'sectool <command> --help' for command options.\n"+
		"\nhelp for credential-store\n"+
		"\nhelp for mask\n", h.stdout.String())
	assert.Zero(t, cs.calls)
	assert.Zero(t, mask.calls)
}

func TestRunHelpFlagsMatchNoArguments(t *testing.T) {
	t.Parallel()

	bare := newHarness(newFake("mask"))
	require.Equal(t, command.StatusOK, bare.run())

	for _, flag := range []string{"--help", "-h"} {
		h := newHarness(newFake("mask"))
		status := h.run(flag, "ignored")
		assert.Equal(t, command.StatusOK, status, flag)
		assert.Equal(t, bare.stdout.String(), h.stdout.String(), flag)
		assert.Empty(t, h.stderr.String(), flag)
	}
}

func TestRunHelpFlagWinsOverCommandNamedLikeIt(t *testing.T) {
	t.Parallel()

	odd := newFake("--help")
	h := newHarness(odd)

	assert.Equal(t, command.StatusOK, h.run("--help"))
	assert.Zero(t, odd.calls)
	assert.Contains(t, h.stdout.String(), "Missing arguments")
}

func TestRunUnknownCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(newFake("mask"))

	status := h.run("foobar", "--x")

	assert.Equal(t, command.StatusUnrecognizedCommand, status)
	assert.Equal(t, 1, h.installed)
	assert.Contains(t, h.stderr.String(), "foobar")
	assert.Contains(t, h.stderr.String(), "not found")
	assert.Empty(t, h.stdout.String())
}

func TestRunForwardsRemainingArguments(t *testing.T) {
	t.Parallel()

	mask := newFake("mask")
	mask.status = 0
	h := newHarness(newFake("credential-store"), mask)

	status := h.run("mask", "--encrypt", "secret")

	assert.Equal(t, 0, status)
	assert.Equal(t, []string{"--encrypt", "secret"}, mask.gotArgs)
	assert.Equal(t, 1, mask.calls)
	assert.Empty(t, h.stderr.String())
}

func TestRunResolvesAliases(t *testing.T) {
	t.Parallel()

	cs := newFake("credential-store", "cs")
	cs.status = 8
	h := newHarness(cs)

	assert.Equal(t, 8, h.run("cs", "--exists", "db"))
	assert.Equal(t, []string{"--exists", "db"}, cs.gotArgs)
}

func TestRunReturnsCommandStatus(t *testing.T) {
	t.Parallel()

	vault := newFake("vault")
	vault.status = 3
	h := newHarness(vault)

	assert.Equal(t, 3, h.run("vault"))
	assert.Equal(t, []string{}, vault.gotArgs)
	assert.Empty(t, h.stderr.String())
}

func TestRunReportsFailureDetail(t *testing.T) {
	t.Parallel()

	cs := newFake("credential-store")
	cs.status = 7
	cs.err = errors.Wrap(errors.New("wrong password"), "open store")
	h := newHarness(cs)

	status := h.run("credential-store", "--aliases")

	assert.Equal(t, 7, status)
	lines := strings.SplitN(h.stderr.String(), "\n", 2)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "command execution failed")
	assert.Contains(t, lines[1], "wrong password")
	assert.Contains(t, lines[1], "open store")
	// %+v on a pkg/errors error carries the call stack
	assert.Contains(t, lines[1], "dispatcher_test.go")
}

func TestRunPanicKeepsLastRecordedStatus(t *testing.T) {
	t.Parallel()

	mask := newFake("mask")
	mask.panicked = true
	mask.preset = 7
	h := newHarness(mask)

	status := h.run("mask", "--secret")

	assert.Equal(t, 7, status)
	lines := strings.SplitN(h.stderr.String(), "\n", 2)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "command execution failed")
	assert.Contains(t, lines[1], "panic: malformed input")
	assert.Contains(t, lines[1], "goroutine")
}

func TestRunPanicBeforeStatusIsSetExitsWithZero(t *testing.T) {
	t.Parallel()

	mask := newFake("mask")
	mask.panicked = true
	h := newHarness(mask)

	assert.Equal(t, 0, h.run("mask"))
	assert.Contains(t, h.stderr.String(), "command execution failed")
}

func TestNewInstallsProviderByDefault(t *testing.T) {
	t.Parallel()

	d := New("sectool", command.NewRegistry())
	assert.NotNil(t, d.install)
	assert.NotNil(t, d.log)
}
