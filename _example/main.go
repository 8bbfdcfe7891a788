// This is an example bot that lets server managers set up a guild from chat.
// It registers two commands: setup-server and setup-help.
//
// Usage:
//
//	export DISCORD_TOKEN="your-bot-token"
//	go run .            # configurations are read from the working directory
//	go run . bot.yaml   # or load the adapter settings, including setup_dir, from a file
//
// Then, in a Discord channel of a server where the bot is present, type:
//
//	.setup-help
//	.setup-server test
//	.setup-server config:academic
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"

	"github.com/oklahomer/go-sarah-guildsetup"
	"github.com/oklahomer/go-sarah-guildsetup/command"
	"github.com/oklahomer/go-sarah-guildsetup/setup"
)

func main() {
	config := discord.NewConfig()
	if len(os.Args) > 1 {
		loaded, err := discord.LoadConfig(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %s\n", err)
			os.Exit(1)
		}
		config = loaded
	}

	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		config.Token = token
	}
	if config.Token == "" {
		fmt.Fprintln(os.Stderr, "DISCORD_TOKEN environment variable or token setting is required")
		os.Exit(1)
	}

	adapter, err := discord.NewAdapter(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create adapter: %s\n", err)
		os.Exit(1)
	}

	// .setup-server asks for confirmation before a live run,
	// so the bot needs a storage to remember the pending conversation.
	storage := sarah.NewUserContextStorage(sarah.NewCacheConfig())
	bot := sarah.NewBot(adapter, sarah.BotWithStorage(storage))
	sarah.RegisterBot(bot)

	commands := command.NewSetup(adapter, setup.NewCatalog(config.SetupDir))
	sarah.RegisterCommandProps(commands.ServerCommandProps())
	sarah.RegisterCommandProps(commands.HelpCommandProps())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = sarah.Run(ctx, sarah.NewConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run: %s\n", err)
		os.Exit(1)
	}

	logger.Infof("Bot is running with configurations from %s. Press Ctrl+C to stop.", config.SetupDir)

	<-ctx.Done()

	logger.Infof("Shutting down...")
}
