package mask

import (
	"strings"
	"testing"

	"sectool/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	provider.Install()
	m.Run()
}

func TestMaskIsDeterministic(t *testing.T) {
	a, err := Mask("secret", "12345678", 123)
	require.NoError(t, err)
	b, err := Mask("secret", "12345678", 123)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, Prefix))
	assert.True(t, strings.HasSuffix(a, ";12345678;123"))
}

func TestMaskDependsOnSaltAndIterations(t *testing.T) {
	base, err := Mask("secret", "12345678", 100)
	require.NoError(t, err)
	otherSalt, err := Mask("secret", "87654321", 100)
	require.NoError(t, err)
	otherIter, err := Mask("secret", "12345678", 101)
	require.NoError(t, err)

	assert.NotEqual(t, base, otherSalt)
	assert.NotEqual(t, base, otherIter)
}

func TestUnmaskRoundTrip(t *testing.T) {
	masked, err := Mask("p@ss;word", "abcdEFGH", 50)
	require.NoError(t, err)

	plain, err := Unmask(masked)
	require.NoError(t, err)
	assert.Equal(t, "p@ss;word", plain)

	revealed, err := Reveal(masked)
	require.NoError(t, err)
	assert.Equal(t, "p@ss;word", revealed)
}

func TestRevealLeavesPlainValues(t *testing.T) {
	got, err := Reveal("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", got)
}

func TestMaskValidation(t *testing.T) {
	_, err := Mask("secret", "short", 10)
	assert.ErrorIs(t, err, ErrBadSalt)

	_, err = Mask("secret", "12345678", 0)
	assert.ErrorIs(t, err, ErrBadIterations)
}

func TestUnmaskRejectsMalformedInput(t *testing.T) {
	_, err := Unmask("plain")
	assert.ErrorIs(t, err, ErrNotMasked)

	_, err = Unmask("MASK-abc")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Unmask("MASK-!!!;12345678;10")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Unmask("MASK-YWJj;12345678;ten")
	assert.ErrorIs(t, err, ErrMalformed)

	masked, err := Mask("secret", "12345678", 10)
	require.NoError(t, err)
	tampered := strings.Replace(masked, ";10", ";11", 1)
	_, err = Unmask(tampered)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestRandomSalt(t *testing.T) {
	salt, err := RandomSalt()
	require.NoError(t, err)
	assert.Len(t, salt, SaltLength)
	for _, r := range salt {
		assert.Contains(t, saltCharset, string(r))
	}
}
