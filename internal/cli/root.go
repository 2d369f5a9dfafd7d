// Package cli holds the sectool subcommands. Each one parses its own flags
// with cobra and reports an exit status from the range it owns.
package cli

import "sectool/internal/command"

// Register adds every sectool command to registry, in the order they are
// listed in the general help.
func Register(registry *command.Registry, env Env) {
	registry.Register(CredentialStoreName, NewCredentialStoreCommand(env)) // exit codes 5 - 10
	registry.Register(MaskName, NewMaskCommand(env))                      // exit code 7
	registry.Register(VaultName, NewVaultCommand(env))                    // exit code 7
}
