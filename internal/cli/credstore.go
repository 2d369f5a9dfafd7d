package cli

import (
	"fmt"
	"io/fs"

	"sectool/internal/credstore"
	"sectool/internal/crypto"
	"sectool/internal/mask"
	"sectool/internal/notify"
	"sectool/internal/provider"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CredentialStoreName is the canonical name of the credential store command.
const CredentialStoreName = "credential-store"

// Credential store statuses, range 5-10.
const (
	csStatusInvalidArguments = 5
	csStatusStoreIO          = 6
	csStatusCrypto           = 7
	csStatusAliasNotFound    = 8
	csStatusStoreExists      = 9
	csStatusGeneral          = 10
)

type credStoreOptions struct {
	location string
	password string
	cipher   string
	create   bool
	add      string
	secret   string
	remove   string
	exists   string
	aliases  bool
}

// CredentialStoreCommand manages a password-sealed credential store.
type CredentialStoreCommand struct {
	cobraCommand
	opts credStoreOptions
}

// NewCredentialStoreCommand creates the credential-store command.
func NewCredentialStoreCommand(env Env) *CredentialStoreCommand {
	env = env.withDefaults()
	c := &CredentialStoreCommand{}

	cmd := &cobra.Command{
		Use:   CredentialStoreName,
		Short: "Create and modify credential stores",
		Long: `Create a credential store and add, remove or check aliases in it.
The store is a single file sealed with the store password using Argon2id and
an authenticated cipher. Passwords may be given masked (MASK-...).

Exactly one of --add, --remove, --exists or --aliases may be given; --create
may be combined with --add or used alone.

Exit statuses: 5 invalid arguments, 6 store I/O, 7 wrong password or cipher,
8 alias not found, 9 store already exists, 10 other failures.`,
		Example: `  sectool credential-store --location app.store --create --password secret
  sectool cs -l app.store -p secret --add db --secret hunter2
  sectool cs -l app.store -p secret --aliases`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&c.opts.location, "location", "l", env.Config.Store.Location, "Location of the credential store file")
	flags.BoolVarP(&c.opts.create, "create", "c", false, "Create the credential store")
	flags.StringVarP(&c.opts.password, "password", "p", "", "Store password, plain or masked (prompted when omitted)")
	flags.StringVar(&c.opts.cipher, cipherFlag, env.Config.Store.Cipher, cipherUsage)
	flags.StringVarP(&c.opts.add, "add", "a", "", "Add (or replace) the secret stored under this alias")
	flags.StringVarP(&c.opts.secret, "secret", "x", "", "Secret to store with --add (prompted when omitted)")
	flags.StringVarP(&c.opts.remove, "remove", "r", "", "Remove this alias")
	flags.StringVarP(&c.opts.exists, "exists", "e", "", "Check whether this alias exists")
	flags.BoolVarP(&c.opts.aliases, "aliases", "v", false, "List the stored aliases")

	c.cobraCommand = newCobraCommand(env, cmd, credStoreStatus, "cs", "credstore")
	return c
}

func (c *CredentialStoreCommand) run() error {
	o := c.opts
	actions := 0
	for _, set := range []bool{o.add != "", o.remove != "", o.exists != "", o.aliases} {
		if set {
			actions++
		}
	}
	if actions > 1 {
		return usageErrorf("only one of --add, --remove, --exists and --aliases may be given")
	}
	if actions == 0 && !o.create {
		return usageErrorf("nothing to do, see --help")
	}
	if o.secret != "" && o.add == "" {
		return usageErrorf("--secret requires --add")
	}
	if o.location == "" {
		return usageErrorf("--location must not be empty")
	}

	password, err := c.env.readSecret(o.password, "credential store password", o.create && o.password == "", true)
	if err != nil {
		return err
	}

	var secret string
	if o.add != "" {
		// Read before --create writes the store
		if secret, err = c.env.readSecret(o.secret, "secret to store", o.secret == "", false); err != nil {
			return err
		}
	}

	log := c.env.Log.WithFields(logrus.Fields{"command": CredentialStoreName, "location": o.location})
	store, err := c.openStore(password)
	if err != nil {
		return err
	}
	log.WithField("aliases", store.Len()).Debug("credential store opened")

	switch {
	case o.add != "":
		return c.add(store, secret)
	case o.remove != "":
		if err := store.Remove(o.remove); err != nil {
			return errors.Wrap(err, "remove alias")
		}
		if err := store.Save(); err != nil {
			return errors.Wrap(err, "save credential store")
		}
		notify.Successf(c.env.Stdout, "Alias %q has been successfully removed", o.remove)
	case o.exists != "":
		if !store.Exists(o.exists) {
			notify.Infof(c.env.Stdout, "Alias %q does not exist", o.exists)
			c.SetStatus(csStatusAliasNotFound)
			return nil
		}
		notify.Infof(c.env.Stdout, "Alias %q exists", o.exists)
	case o.aliases:
		c.listAliases(store)
	}
	return nil
}

func (c *CredentialStoreCommand) openStore(password string) (*credstore.Store, error) {
	if c.opts.create {
		store, err := credstore.Create(c.opts.location, password, c.opts.cipher)
		if err != nil {
			return nil, errors.Wrap(err, "create credential store")
		}
		notify.Successf(c.env.Stdout, "Credential store %s created", c.opts.location)
		return store, nil
	}

	store, err := credstore.Open(c.opts.location, password)
	if err != nil {
		return nil, errors.Wrap(err, "open credential store")
	}
	return store, nil
}

func (c *CredentialStoreCommand) add(store *credstore.Store, secret string) error {
	if err := store.Add(c.opts.add, secret); err != nil {
		return errors.Wrap(err, "add alias")
	}
	if err := store.Save(); err != nil {
		return errors.Wrap(err, "save credential store")
	}
	notify.Successf(c.env.Stdout, "Alias %q has been successfully stored", c.opts.add)
	return nil
}

func (c *CredentialStoreCommand) listAliases(store *credstore.Store) {
	aliases := store.Aliases()
	if len(aliases) == 0 {
		fmt.Fprintln(c.env.Stdout, "Credential store contains no aliases")
		return
	}
	fmt.Fprintln(c.env.Stdout, "Credential store contains following aliases:")
	for _, a := range aliases {
		fmt.Fprintf(c.env.Stdout, "  %s\n", a)
	}
}

func credStoreStatus(err error) int {
	switch {
	case isUsageError(err):
		return csStatusInvalidArguments
	case errors.Is(err, credstore.ErrAliasNotFound):
		return csStatusAliasNotFound
	case errors.Is(err, credstore.ErrStoreExists):
		return csStatusStoreExists
	case errors.Is(err, crypto.ErrWrongPassword),
		errors.Is(err, crypto.ErrUnknownKDF),
		errors.Is(err, provider.ErrUnknownCipher),
		errors.Is(err, provider.ErrNotInstalled),
		errors.Is(err, mask.ErrMalformed),
		errors.Is(err, mask.ErrNotMasked),
		errors.Is(err, mask.ErrBadSalt),
		errors.Is(err, mask.ErrBadIterations):
		return csStatusCrypto
	case errors.Is(err, credstore.ErrStoreNotFound),
		errors.Is(err, credstore.ErrCorrupt),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, fs.ErrNotExist):
		return csStatusStoreIO
	default:
		return csStatusGeneral
	}
}
