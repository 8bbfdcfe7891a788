package command

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"

	"github.com/oklahomer/go-sarah-guildsetup"
)

const helpIdentifier = "setup-help"

var helpPattern = regexp.MustCompile(`^\.setup-help\s*$`)

const helpUsage = "## Basic Usage\n" +
	"`.setup-server` - Set up server using the default configuration\n" +
	"`.setup-server test` - Perform a dry run (shows what would be created)\n" +
	"`.setup-server config:academic` - Use a custom configuration\n" +
	"`.setup-server config:academic test` - Dry run with custom config\n\n"

const helpFeatures = "## Features\n" +
	"✅ **Custom Category/Channel Names** - Define your own server structure\n" +
	"✅ **Hidden/Locked Channels** - Create private channels for specific roles\n" +
	"✅ **Role Management** - Automatically create roles with permissions\n" +
	"✅ **Test Mode** - Preview changes before applying them\n" +
	"✅ **Multiple Configurations** - Switch between different server setups\n\n" +
	"## Creating Custom Configurations\n" +
	"1. Create a new file: `server-config-{name}.json` or `server-config-{name}.yaml`\n" +
	"2. Copy the structure from `server-config.json`\n" +
	"3. Modify categories, channels, and roles as needed\n" +
	"4. Use with `.setup-server config:{name}`\n\n"

const helpStructure = "## Configuration Structure\n" +
	"```json\n" +
	`{
  "serverSetup": {
    "categories": [{
      "name": "Category Name",
      "locked": true,
      "allowedRoles": ["Role1", "Role2"],
      "channels": [{
        "name": "channel-name",
        "type": "text",
        "description": "Channel description",
        "hidden": true
      }]
    }],
    "roles": [{
      "name": "Role Name",
      "color": "#FF0000",
      "permissions": ["MANAGE_MESSAGES"],
      "hoist": true
    }]
  }
}` + "\n```\n\n" +
	"⚠️ **Required Permissions:** You need \"Manage Server\" permissions to use setup commands."

// HelpCommandProps returns the command props for .setup-help.
func (s *Setup) HelpCommandProps() *sarah.CommandProps {
	return sarah.NewCommandPropsBuilder().
		BotType(discord.DISCORD).
		Identifier(helpIdentifier).
		MatchPattern(helpPattern).
		Func(s.help).
		Instruction("Input .setup-help to see how to use .setup-server and which configurations are available.").
		MustBuild()
}

func (s *Setup) help(_ context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	entries, err := s.catalog.List()
	if err != nil {
		logger.Errorf("Failed to list configurations in %s: %+v", s.catalog.Dir(), err)
		return discord.NewResponse(input, fmt.Sprintf("❌ Error loading help information: %s", err.Error()))
	}

	var b strings.Builder
	b.WriteString("# 🛕 Server Setup Help\n\n")
	b.WriteString(helpUsage)

	b.WriteString("## Available Configurations\n")
	if len(entries) == 0 {
		b.WriteString("No configuration files found. Please create a `server-config.json` file.\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "• **%s** - `%s`\n", e.Name, e.File)
	}
	b.WriteString("\n")

	b.WriteString(helpFeatures)
	b.WriteString(helpStructure)

	return discord.NewResponse(input, b.String())
}
