package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"github.com/oklahomer/go-sarah-guildsetup"
	"github.com/oklahomer/go-sarah-guildsetup/setup"
)

// ErrActionsFailed indicates that a run finished but some resources could not be created.
var ErrActionsFailed = errors.New("some actions failed")

func newPlanCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan [name]",
		Short: "Show what a configuration would create",
		Long: `Show every role, category and channel a configuration declares, without contacting Discord.

No token is required.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load(configArg(args))
			if err != nil {
				return err
			}

			result, err := setup.NewEngine(nil).Reconcile(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}

			return printResult(cmd.OutOrStdout(), result, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newApplyCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "apply [name]",
		Short: "Create missing roles, categories and channels in a guild",
		Long: `Create every role, category and channel of a configuration that does not exist in the guild yet.

Requires --token and --guild, or GUILDSETUP_TOKEN and GUILDSETUP_GUILD.
The command fails when the run is aborted or when any action failed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.settings.Token == "" {
				return errors.New("a bot token is required: set --token or GUILDSETUP_TOKEN")
			}
			if a.settings.Guild == "" {
				return errors.New("a guild ID is required: set --guild or GUILDSETUP_GUILD")
			}

			cfg, err := a.load(configArg(args))
			if err != nil {
				return err
			}

			session, err := discordgo.New("Bot " + a.settings.Token)
			if err != nil {
				return fmt.Errorf("failed to create Discord session: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ctx, cancel := context.WithTimeout(ctx, a.settings.Timeout)
			defer cancel()

			engine := setup.NewEngine(discord.NewGateway(session, a.settings.Guild))
			result, runErr := engine.Reconcile(ctx, cfg, false)

			if err := printResult(cmd.OutOrStdout(), result, asJSON); err != nil {
				return err
			}

			if runErr != nil {
				return runErr
			}
			if failed := setup.Summarize(result.Actions)[setup.StatusFailed]; failed > 0 {
				return fmt.Errorf("%d of %d: %w", failed, len(result.Actions), ErrActionsFailed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func printResult(w io.Writer, result *setup.Result, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	if _, err := io.WriteString(w, setup.Render(result.Actions)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s\n", setup.Summarize(result.Actions))
	return err
}
