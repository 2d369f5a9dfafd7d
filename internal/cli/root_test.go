package cli

import (
	"testing"

	"sectool/internal/command"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterOrderAndAliases(t *testing.T) {
	te := newTestEnv(t)
	registry := command.NewRegistry()
	Register(registry, te.Env)

	assert.Equal(t, []string{CredentialStoreName, MaskName, VaultName}, registry.Names())

	for token, want := range map[string]string{
		"credential-store": CredentialStoreName,
		"cs":               CredentialStoreName,
		"credstore":        CredentialStoreName,
		"mask":             MaskName,
		"vault":            VaultName,
		"vault-migrate":    VaultName,
	} {
		got, ok := registry.Resolve(token)
		require.True(t, ok, token)
		expected, _ := registry.Lookup(want)
		assert.Same(t, expected, got, token)
	}

	_, ok := registry.Resolve("foobar")
	assert.False(t, ok)
}
