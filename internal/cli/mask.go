package cli

import (
	"fmt"

	"sectool/internal/mask"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// MaskName is the canonical name of the mask command.
const MaskName = "mask"

// maskStatusFailure is reported for every mask failure.
const maskStatusFailure = 7

type maskOptions struct {
	secret     string
	salt       string
	iterations int
	unmask     string
}

// MaskCommand produces MASK- strings for use in configuration files.
type MaskCommand struct {
	cobraCommand
	opts maskOptions
}

// NewMaskCommand creates the mask command.
func NewMaskCommand(env Env) *MaskCommand {
	env = env.withDefaults()
	c := &MaskCommand{}

	cmd := &cobra.Command{
		Use:   MaskName,
		Short: "Mask a secret for use in configuration files",
		Long: `Mask a secret with a salt and an iteration count. The result has the form
MASK-<data>;<salt>;<iterations> and is accepted wherever sectool expects a
password. Masking hides a value from casual view; it is not encryption.

Any failure exits with status 7.`,
		Example: `  sectool mask --secret hunter2 --salt 12345678 --iteration 1000
  sectool mask --unmask 'MASK-...;12345678;1000'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&c.opts.secret, "secret", "x", "", "Secret to mask (prompted when omitted)")
	flags.StringVarP(&c.opts.salt, "salt", "s", "", "8 character salt (random when omitted)")
	flags.IntVarP(&c.opts.iterations, "iteration", "i", env.Config.Mask.Iterations, "Iteration count")
	flags.StringVarP(&c.opts.unmask, "unmask", "u", "", "Reveal a masked value instead")

	c.cobraCommand = newCobraCommand(env, cmd, func(error) int { return maskStatusFailure })
	return c
}

func (c *MaskCommand) run() error {
	if c.opts.unmask != "" {
		if c.opts.secret != "" {
			return usageErrorf("--secret and --unmask are mutually exclusive")
		}
		plain, err := mask.Unmask(c.opts.unmask)
		if err != nil {
			return errors.Wrap(err, "unmask")
		}
		fmt.Fprintln(c.env.Stdout, plain)
		return nil
	}

	secret, err := c.env.readSecret(c.opts.secret, "secret to mask", c.opts.secret == "", false)
	if err != nil {
		return err
	}

	salt := c.opts.salt
	if salt == "" {
		if salt, err = mask.RandomSalt(); err != nil {
			return errors.Wrap(err, "generate salt")
		}
	}

	masked, err := mask.Mask(secret, salt, c.opts.iterations)
	if err != nil {
		return errors.Wrap(err, "mask")
	}
	c.env.Log.WithField("command", MaskName).Debug("secret masked")
	fmt.Fprintln(c.env.Stdout, masked)
	return nil
}
