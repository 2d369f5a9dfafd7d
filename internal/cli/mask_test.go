package cli

import (
	"strings"
	"testing"

	"sectool/internal/mask"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskPrintsMaskedValue(t *testing.T) {
	te := newTestEnv(t)

	res := run(t, NewMaskCommand(te.Env), "--secret", "hunter2", "--salt", "12345678", "--iteration", "42")
	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.Status)

	want, err := mask.Mask("hunter2", "12345678", 42)
	require.NoError(t, err)
	assert.Equal(t, want+"\n", te.stdout.String())
}

func TestMaskDefaultsAndUnmask(t *testing.T) {
	te := newTestEnv(t)
	te.answers = []string{"hunter2", "hunter2"}

	res := run(t, NewMaskCommand(te.Env))
	require.NoError(t, res.Err)
	masked := strings.TrimSpace(te.stdout.String())
	assert.True(t, strings.HasSuffix(masked, ";100"), masked)

	te.reset()
	res = run(t, NewMaskCommand(te.Env), "--unmask", masked)
	require.NoError(t, res.Err)
	assert.Equal(t, "hunter2\n", te.stdout.String())
}

func TestMaskFailuresUseStatusSeven(t *testing.T) {
	te := newTestEnv(t)

	for _, args := range [][]string{
		{"--secret", "x", "--salt", "short"},
		{"--secret", "x", "--iteration", "0"},
		{"--unmask", "plain"},
		{"--unmask", "MASK-a;b;c", "--secret", "x"},
		{"--no-such-flag"},
		{"--iteration", "many"},
	} {
		te.reset()
		res := run(t, NewMaskCommand(te.Env), args...)
		assert.Error(t, res.Err, args)
		assert.Equal(t, maskStatusFailure, res.Status, args)
	}
}

func TestMaskPromptMismatch(t *testing.T) {
	te := newTestEnv(t)
	te.answers = []string{"one", "two"}

	res := run(t, NewMaskCommand(te.Env))
	assert.Error(t, res.Err)
	assert.Equal(t, maskStatusFailure, res.Status)
	assert.Empty(t, te.stdout.String())
}
