package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kevin07696/settlement-reconciler/internal/config"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	envFile    string
	stateDir   string
	verbose    bool
}

// cli carries the process streams so commands can be exercised in tests
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	opts   globalOptions

	// interactive reports whether prompting is possible
	interactive func() bool
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{
		in:     in,
		out:    out,
		errOut: errOut,
		interactive: func() bool {
			f, ok := in.(*os.File)
			return ok && term.IsTerminal(int(f.Fd()))
		},
	}

	root := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a processor settlement report against customer invoices",
		Long: `reconcile reads a payment processor's settlement report, looks up each
platform customer's latest invoice, and reports four figures: gross before
fees, net balance change, platform gross sales and platform net disbursed.

Settings are layered: last successful run < config file < .env < RECON_*
environment variables < flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&c.opts.configPath, "config", config.DefaultPath(), "Path to the YAML configuration file")
	root.PersistentFlags().StringVar(&c.opts.envFile, "env-file", ".env", "Path to a .env file")
	root.PersistentFlags().StringVar(&c.opts.stateDir, "state-dir", "", "Directory holding the last run's settings (default is the user config dir)")
	root.PersistentFlags().BoolVarP(&c.opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		c.newRunCmd(),
		c.newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves settings from the saved last run, the config file,
// the .env file and the environment
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, *config.Store, error) {
	store := config.NewStore(c.opts.stateDir)
	base, err := store.Load()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(config.LoadOptions{
		Base:       base,
		ConfigPath: c.opts.configPath,
		Required:   cmd.Flags().Changed("config"),
		EnvFile:    c.opts.envFile,
	})
	if err != nil {
		return nil, nil, err
	}
	if c.opts.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, store, nil
}
