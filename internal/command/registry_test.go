package command

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	Base
	label string
}

func newStub(label string, aliases ...string) *stubCommand {
	return &stubCommand{Base: NewBase(aliases...), label: label}
}

func (s *stubCommand) Execute(args []string) Result { return s.Finish(StatusOK, nil) }
func (s *stubCommand) Help(w io.Writer)             { _, _ = io.WriteString(w, s.label+"\n") }

func TestResolveExactName(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	cs := newStub("cs", "store")
	mask := newStub("mask")
	r.Register("credential-store", cs)
	r.Register("mask", mask)

	got, ok := r.Resolve("credential-store")
	require.True(t, ok)
	assert.Same(t, cs, got)

	got, ok = r.Resolve("mask")
	require.True(t, ok)
	assert.Same(t, mask, got)
}

func TestResolveAlias(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	cs := newStub("cs", "cs", "credstore")
	r.Register("credential-store", cs)
	r.Register("mask", newStub("mask"))

	for _, alias := range []string{"cs", "credstore"} {
		got, ok := r.Resolve(alias)
		require.True(t, ok, alias)
		assert.Same(t, cs, got, alias)
	}
}

func TestResolveExactNameBeatsAlias(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	greedy := newStub("greedy", "mask")
	mask := newStub("mask")
	r.Register("greedy", greedy)
	r.Register("mask", mask)

	got, ok := r.Resolve("mask")
	require.True(t, ok)
	assert.Same(t, mask, got)
}

func TestResolveAliasCollisionFollowsRegistrationOrder(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	first := newStub("first", "x")
	second := newStub("second", "x")
	r.Register("first", first)
	r.Register("second", second)

	for i := 0; i < 20; i++ {
		got, ok := r.Resolve("x")
		require.True(t, ok)
		assert.Same(t, first, got)
	}
}

func TestResolveUnknown(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("mask", newStub("mask", "m"))

	got, ok := r.Resolve("foobar")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRegisterOverwriteKeepsPosition(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("a", newStub("a"))
	r.Register("b", newStub("b"))
	replacement := newStub("a2")
	r.Register("a", replacement)

	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.Equal(t, 2, r.Len())
	got, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestEachVisitsInRegistrationOrder(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, name := range []string{"vault", "credential-store", "mask"} {
		r.Register(name, newStub(name))
	}

	var seen []string
	r.Each(func(name string, _ Command) { seen = append(seen, name) })
	assert.Equal(t, []string{"vault", "credential-store", "mask"}, seen)
}

func TestBaseFinishRecordsStatus(t *testing.T) {
	t.Parallel()

	b := NewBase("x")
	assert.Equal(t, 0, b.Status())
	res := b.Finish(7, assert.AnError)
	assert.Equal(t, 7, b.Status())
	assert.Equal(t, 7, res.Status)
	assert.False(t, res.OK())
	assert.True(t, b.IsAlias("x"))
	assert.False(t, b.IsAlias("y"))
}
