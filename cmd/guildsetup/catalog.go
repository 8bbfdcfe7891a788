package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oklahomer/go-sarah-guildsetup/setup"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.catalog.List()
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No configuration files found in %s. Run 'guildsetup init'.\n", a.catalog.Dir())
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFILE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\n", e.Name, e.File)
			}
			return w.Flush()
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [name]",
		Short: "Check a configuration for problems",
		Long: `Check a configuration for problems without contacting Discord.

Every problem is listed. The command fails when at least one is found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := configArg(args)

			cfg, err := a.load(name)
			if err != nil {
				var validationErr *setup.ValidationError
				if errors.As(err, &validationErr) {
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "Configuration %q has %d problem(s):\n", displayName(name), len(validationErr.Problems))
					for _, p := range validationErr.Problems {
						fmt.Fprintf(out, "  - %s\n", p)
					}
				}
				return err
			}

			channels := 0
			for _, c := range cfg.Categories {
				channels += len(c.Channels)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration %q is valid: %d role(s), %d category(ies), %d channel(s)\n",
				displayName(name), len(cfg.Roles), len(cfg.Categories), channels)
			return nil
		},
	}
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Long:  `Write the default configuration to the configuration directory unless one already exists.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.catalog.WriteDefault()
			if errors.Is(err, os.ErrExist) {
				fmt.Fprintf(cmd.OutOrStdout(), "Default configuration already exists: %s\n", path)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
}

// load reads the named configuration and validates it.
func (a *app) load(name string) (*setup.Configuration, error) {
	cfg, err := a.catalog.Load(name)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func displayName(name string) string {
	if name == "" {
		return setup.DefaultConfigName
	}
	return name
}
