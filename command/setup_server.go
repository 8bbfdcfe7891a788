package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"
	"golang.org/x/sync/semaphore"

	"github.com/oklahomer/go-sarah-guildsetup"
	"github.com/oklahomer/go-sarah-guildsetup/setup"
)

const (
	serverIdentifier = "setup-server"

	msgNotInGuild    = "❌ This command can only be used in a server."
	msgNoPermission  = "❌ You need \"Manage Server\" permissions to use this command."
	msgPermissionErr = "❌ Could not verify your permissions. Please try again later."
	msgInFlight      = "⏳ A server setup is already running for this server. Try again once it finishes."
	msgCancelled     = "🛑 Server setup cancelled. Nothing was changed."
	msgWarning       = "⚠️ **Warning:** This will create new roles, categories, and channels. Existing items with the same names will be skipped."
	msgTip           = "💡 **Tip:** Run without the `test` option to actually perform these changes."

	serverUsage = "Usage: `.setup-server [test] [config:<name>]`"
)

var serverPattern = regexp.MustCompile(`^\.setup-server(\s|$)`)

// GuildManager gives access to a guild's resources on behalf of the bot.
// *discord.Adapter satisfies this interface.
type GuildManager interface {
	Gateway(guildID string) setup.Gateway
	CanManageGuild(userID string, channelID string) (bool, error)
}

// Setup serves the guild setup commands.
type Setup struct {
	manager GuildManager
	catalog *setup.Catalog
	flights *flights
}

// NewSetup creates a Setup that reads configurations from the given catalog.
func NewSetup(manager GuildManager, catalog *setup.Catalog) *Setup {
	return &Setup{
		manager: manager,
		catalog: catalog,
		flights: &flights{guilds: map[string]*semaphore.Weighted{}},
	}
}

// ServerCommandProps returns the command props for .setup-server.
func (s *Setup) ServerCommandProps() *sarah.CommandProps {
	return sarah.NewCommandPropsBuilder().
		BotType(discord.DISCORD).
		Identifier(serverIdentifier).
		MatchPattern(serverPattern).
		Func(s.server).
		Instruction("Input .setup-server to create the roles, categories and channels of a configuration. Add `test` for a dry run and `config:<name>` to pick a configuration.").
		MustBuild()
}

type serverArgs struct {
	dryRun     bool
	configName string
}

func parseServerArgs(text string) (*serverArgs, error) {
	args := &serverArgs{}
	for _, field := range strings.Fields(text) {
		switch {
		case field == "test" || field == "test:true":
			args.dryRun = true

		case field == "test:false":
			args.dryRun = false

		case strings.HasPrefix(field, "config:") && len(field) > len("config:"):
			args.configName = strings.TrimPrefix(field, "config:")

		default:
			return nil, fmt.Errorf("unknown option %q", field)
		}
	}
	return args, nil
}

func (s *Setup) server(ctx context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	in, ok := input.(*discord.Input)
	if !ok {
		return nil, fmt.Errorf("%T: %w", input, ErrUnsupportedInput)
	}

	if in.GuildID() == "" {
		return discord.NewResponse(input, msgNotInGuild)
	}

	channelID, _ := in.ReplyTo().(discord.ChannelID)
	allowed, err := s.manager.CanManageGuild(in.UserID(), string(channelID))
	if err != nil {
		logger.Errorf("Failed to check permissions of %s in guild %s: %+v", in.UserID(), in.GuildID(), err)
		return discord.NewResponse(input, msgPermissionErr)
	}
	if !allowed {
		return discord.NewResponse(input, msgNoPermission)
	}

	args, err := parseServerArgs(sarah.StripMessage(serverPattern, in.Message()))
	if err != nil {
		return discord.NewResponse(input, fmt.Sprintf("❌ %s\n%s", err.Error(), serverUsage))
	}

	cfg, msg := s.load(args.configName)
	if cfg == nil {
		return discord.NewResponse(input, msg)
	}

	logger.Infof("User %s requested setup of guild %s (config: %q, dry run: %t)", in.UserID(), in.GuildID(), args.configName, args.dryRun)

	if args.dryRun {
		return discord.NewResponse(input, s.execute(ctx, in.GuildID(), args, cfg))
	}

	return discord.NewResponse(input, confirmationText(args.configName), discord.RespWithNext(s.confirm(in.GuildID(), args, cfg)))
}

// load reads and validates the configuration.
// A nil configuration is returned along with the message to show when it cannot be used.
func (s *Setup) load(name string) (*setup.Configuration, string) {
	cfg, err := s.catalog.Load(name)
	if err != nil {
		if name != "" && errors.Is(err, setup.ErrConfigNotFound) {
			return nil, s.notFoundText(name)
		}

		var validationErr *setup.ValidationError
		if errors.As(err, &validationErr) {
			return nil, validationText(validationErr)
		}

		logger.Warnf("Failed to load configuration %q: %+v", name, err)
		return nil, fmt.Sprintf("❌ Configuration error: %s\n\nPlease ensure you have a valid `server-config.json` file.", err.Error())
	}

	if err := cfg.Validate(); err != nil {
		var validationErr *setup.ValidationError
		if errors.As(err, &validationErr) {
			return nil, validationText(validationErr)
		}
		return nil, fmt.Sprintf("❌ Configuration error: %s", err.Error())
	}

	return cfg, ""
}

func (s *Setup) notFoundText(name string) string {
	entries, err := s.catalog.List()
	if err != nil {
		logger.Warnf("Failed to list configurations: %+v", err)
		return fmt.Sprintf("❌ Configuration %q not found.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "❌ Configuration %q not found.\n\n", name)
	if len(entries) == 0 {
		b.WriteString("No configuration files found. Please create a `server-config.json` file.")
		return b.String()
	}

	b.WriteString("Available configurations:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "• **%s** (%s)\n", e.Name, e.File)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func validationText(err *setup.ValidationError) string {
	lines := make([]string, 0, len(err.Problems)+1)
	lines = append(lines, "❌ Configuration validation failed:")
	for _, p := range err.Problems {
		lines = append(lines, "• "+p)
	}
	return strings.Join(lines, "\n")
}

func confirmationText(configName string) string {
	source := "the default configuration"
	if configName != "" {
		source = fmt.Sprintf("configuration **%s**", configName)
	}
	return fmt.Sprintf("🛕 **Ready to set up this server** using %s.\n\n%s\n\nReply `yes` to continue. Anything else cancels.", source, msgWarning)
}

// confirm returns the function that receives the user's answer to the confirmation prompt.
func (s *Setup) confirm(guildID string, args *serverArgs, cfg *setup.Configuration) sarah.ContextualFunc {
	return func(ctx context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
		if !strings.EqualFold(strings.TrimSpace(input.Message()), "yes") {
			return discord.NewResponse(input, msgCancelled)
		}
		return discord.NewResponse(input, s.execute(ctx, guildID, args, cfg))
	}
}

// execute runs the reconciliation and returns the text to reply with.
func (s *Setup) execute(ctx context.Context, guildID string, args *serverArgs, cfg *setup.Configuration) string {
	release, ok := s.flights.tryAcquire(guildID)
	if !ok {
		return msgInFlight
	}
	defer release()

	engine := setup.NewEngine(s.manager.Gateway(guildID))
	result, err := engine.Reconcile(ctx, cfg, args.dryRun)

	return resultText(args.configName, result, err)
}

func resultText(configName string, result *setup.Result, err error) string {
	var b strings.Builder

	if configName != "" {
		fmt.Fprintf(&b, "🔧 **Using Custom Configuration: %s**\n\n", configName)
	}

	switch {
	case result.DryRun:
		b.WriteString("🧪 **Dry Run Complete**\n\nThe following actions would be performed:\n\n")

	case result.Success:
		b.WriteString("✅ **Server Setup Complete**\n\n")

	default:
		b.WriteString("⚠️ **Server Setup Completed with Issues**\n\n")
	}

	b.WriteString(setup.Render(result.Actions))

	if err != nil {
		fmt.Fprintf(&b, "\n❌ **Fatal Error:** %s", err.Error())
	}

	if result.DryRun {
		b.WriteString("\n" + msgTip)
	}

	return b.String()
}

// flights allows a single setup run per guild at a time.
type flights struct {
	mu     sync.Mutex
	guilds map[string]*semaphore.Weighted
}

func (f *flights) tryAcquire(guildID string) (func(), bool) {
	f.mu.Lock()
	sem, ok := f.guilds[guildID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		f.guilds[guildID] = sem
	}
	f.mu.Unlock()

	if !sem.TryAcquire(1) {
		return nil, false
	}
	return func() { sem.Release(1) }, true
}
