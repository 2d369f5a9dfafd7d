package cli

import (
	"fmt"
	"strings"

	"sectool/internal/credstore"
	"sectool/internal/legacyvault"
	"sectool/internal/notify"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// VaultName is the canonical name of the vault migration command.
const VaultName = "vault"

// vaultStatusFailure is reported for every migration failure.
const vaultStatusFailure = 7

var errAliasClash = errors.New("legacy entries map to the same credential store alias")

type vaultOptions struct {
	dir            string
	vaultPassword  string
	recoveryPhrase string
	gitURL         string
	location       string
	password       string
	cipher         string
	summary        bool
}

// VaultCommand migrates a legacy vault into a credential store.
type VaultCommand struct {
	cobraCommand
	opts vaultOptions
}

// NewVaultCommand creates the vault command.
func NewVaultCommand(env Env) *VaultCommand {
	env = env.withDefaults()
	c := &VaultCommand{}

	cmd := &cobra.Command{
		Use:   VaultName,
		Short: "Migrate a legacy vault into a credential store",
		Long: `Convert every entry of a legacy vault directory (*.enc files sealed with a
master password and a .keyfile) into an alias of a credential store. The
credential store is created when it does not exist yet.

A missing keyfile is regenerated from the 12-word recovery phrase. With
--git-url the vault is cloned into --vault-dir first.

Any failure exits with status 7.`,
		Example: `  sectool vault --vault-dir ~/.password-store --location app.store
  sectool vault -d ./vault --git-url git@github.com:me/vault.git -m "word1 ... word12" --summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&c.opts.dir, "vault-dir", "d", "", "Legacy vault directory")
	flags.StringVarP(&c.opts.vaultPassword, "vault-password", "k", "", "Legacy vault master password, plain or masked (prompted when omitted)")
	flags.StringVarP(&c.opts.recoveryPhrase, "recovery-phrase", "m", "", "Recovery phrase used when the vault keyfile is missing")
	flags.StringVarP(&c.opts.gitURL, "git-url", "g", "", "Clone the legacy vault from this git remote first")
	flags.StringVarP(&c.opts.location, "location", "l", env.Config.Store.Location, "Target credential store file")
	flags.StringVarP(&c.opts.password, "password", "p", "", "Target store password, plain or masked (prompted when omitted)")
	flags.StringVar(&c.opts.cipher, cipherFlag, env.Config.Store.Cipher, cipherUsage)
	flags.BoolVar(&c.opts.summary, "summary", false, "Print the migrated aliases")

	c.cobraCommand = newCobraCommand(env, cmd, func(error) int { return vaultStatusFailure }, "vault-migrate")
	return c
}

func (c *VaultCommand) run() error {
	if c.opts.dir == "" {
		return usageErrorf("--vault-dir is required")
	}
	log := c.env.Log.WithFields(logrus.Fields{"command": VaultName, "vault": c.opts.dir})

	vault, err := c.openVault()
	if err != nil {
		return err
	}

	if !vault.HasKeyFile() {
		if c.opts.recoveryPhrase == "" {
			return errors.Wrap(legacyvault.ErrKeyFileMissing, "pass --recovery-phrase to regenerate it")
		}
		if err := vault.RecoverKeyFile(c.opts.recoveryPhrase); err != nil {
			return errors.Wrap(err, "recover keyfile")
		}
		notify.Warningf(c.env.Stderr, "Keyfile regenerated from recovery phrase")
	}

	names, err := vault.Entries()
	if err != nil {
		return errors.Wrap(err, "list legacy entries")
	}
	if err := checkAliasClashes(names); err != nil {
		return err
	}

	vaultPassword, err := c.env.readSecret(c.opts.vaultPassword, "legacy vault password", false, true)
	if err != nil {
		return err
	}

	// Decrypt everything before touching the target store
	secrets := make([]string, len(names))
	for i, name := range names {
		if secrets[i], err = vault.Read(name, vaultPassword); err != nil {
			return errors.Wrapf(err, "migrate %s", name)
		}
	}

	store, err := c.targetStore()
	if err != nil {
		return err
	}

	for i, name := range names {
		if err := store.Add(name, secrets[i]); err != nil {
			return errors.Wrapf(err, "migrate %s", name)
		}
		log.WithField("entry", name).Debug("entry migrated")
	}

	if err := store.Save(); err != nil {
		return errors.Wrap(err, "save credential store")
	}
	notify.Successf(c.env.Stdout, "Migrated %d entries from %s into %s", len(names), vault.Dir(), store.Path())

	if c.opts.summary {
		c.printSummary(vault, names)
	}
	return nil
}

// checkAliasClashes fails when legacy entries would be stored under the
// same case-insensitive alias.
func checkAliasClashes(names []string) error {
	seen := make(map[string]string, len(names))
	var clashes []string
	for _, name := range names {
		alias := credstore.Normalize(name)
		if first, ok := seen[alias]; ok {
			clashes = append(clashes, fmt.Sprintf("%s and %s", first, name))
			continue
		}
		seen[alias] = name
	}
	if len(clashes) > 0 {
		return errors.Wrapf(errAliasClash, "%s", strings.Join(clashes, "; "))
	}
	return nil
}

func (c *VaultCommand) openVault() (*legacyvault.Vault, error) {
	if c.opts.gitURL == "" {
		vault, err := legacyvault.Open(c.opts.dir)
		return vault, errors.Wrap(err, "open legacy vault")
	}

	notify.Infof(c.env.Stderr, "Cloning legacy vault from %s", c.opts.gitURL)
	vault, err := legacyvault.Clone(c.opts.gitURL, c.opts.dir, c.env.Stderr)
	return vault, errors.Wrap(err, "clone legacy vault")
}

func (c *VaultCommand) targetStore() (*credstore.Store, error) {
	exists := credstore.FileExists(c.opts.location)
	password, err := c.env.readSecret(c.opts.password, "credential store password", !exists && c.opts.password == "", true)
	if err != nil {
		return nil, err
	}

	if exists {
		store, err := credstore.Open(c.opts.location, password)
		return store, errors.Wrap(err, "open credential store")
	}
	store, err := credstore.Create(c.opts.location, password, c.opts.cipher)
	return store, errors.Wrap(err, "create credential store")
}

func (c *VaultCommand) printSummary(vault *legacyvault.Vault, names []string) {
	fmt.Fprintln(c.env.Stdout, "Migrated entries:")
	for _, name := range names {
		fmt.Fprintf(c.env.Stdout, "  %s\n", name)
	}

	head, err := vault.Head()
	switch {
	case err == nil:
		fmt.Fprintf(c.env.Stdout, "Legacy vault revision: %s\n", head)
	case errors.Is(err, legacyvault.ErrNotRepository):
		// not under git, nothing to report
	default:
		notify.Warningf(c.env.Stderr, "Could not read legacy vault revision: %v", err)
	}
}
