package main

import (
	"time"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/spf13/cobra"

	"github.com/oklahomer/go-sarah-guildsetup/setup"
)

// app carries the state shared by subcommands of a single invocation.
type app struct {
	settings *settings
	catalog  *setup.Catalog
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "guildsetup",
		Short: "Create Discord roles, categories and channels from a configuration file",
		Long: `guildsetup reconciles a Discord guild against a declarative configuration.

Resources that already exist are skipped, so a configuration can be applied repeatedly.
Configurations are read from server-config.{json,yaml,yml} (the default) and
server-config-<name>.{json,yaml,yml} in the configuration directory.`,
		Example: `  # Write the default configuration and preview it
  guildsetup init
  guildsetup plan

  # Apply a named configuration
  GUILDSETUP_TOKEN=... guildsetup apply academic --guild 123456789012345678`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level, err := parseLogLevel(s.LogLevel)
			if err != nil {
				return err
			}
			logger.SetOutputLevel(level)

			a.settings = s
			a.catalog = setup.NewCatalog(s.ConfigDir)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config-dir", ".", "Directory holding the configuration files")
	flags.String("token", "", "Discord bot token")
	flags.String("guild", "", "ID of the guild to set up")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Duration("timeout", 5*time.Minute, "Maximum duration of an apply run")

	rootCmd.AddCommand(
		newListCmd(a),
		newValidateCmd(a),
		newInitCmd(a),
		newPlanCmd(a),
		newApplyCmd(a),
	)

	return rootCmd
}
