package discord

import (
	"fmt"
	"os"

	"github.com/bwmarrin/discordgo"
	"gopkg.in/yaml.v3"
)

// Config contains configuration variables for the Discord Adapter and the setup commands it serves.
type Config struct {
	// Token is the Discord bot token used for authentication.
	Token string `json:"token" yaml:"token"`

	// HelpCommand is the command string that triggers help.
	// When a user sends this exact string, the input is converted to sarah.HelpInput.
	HelpCommand string `json:"help_command" yaml:"help_command"`

	// AbortCommand is the command string that cancels a pending conversation such as a setup confirmation.
	// When a user sends this exact string, the input is converted to sarah.AbortInput.
	AbortCommand string `json:"abort_command" yaml:"abort_command"`

	// Intents declares the Gateway Intents the bot requires.
	// IntentsGuilds keeps guild state cached so member permissions can be resolved without extra requests.
	Intents discordgo.Intent `json:"intents" yaml:"intents"`

	// SetupDir is the directory holding the server-config*.{json,yaml,yml} files.
	SetupDir string `json:"setup_dir" yaml:"setup_dir"`
}

// NewConfig creates and returns a new Config instance with default settings.
// Token is empty and must be set before use.
func NewConfig() *Config {
	return &Config{
		Token:        "",
		HelpCommand:  ".help",
		AbortCommand: ".abort",
		Intents:      discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent,
		SetupDir:     ".",
	}
}

// LoadConfig reads a YAML file on top of NewConfig's defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	config := NewConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return config, nil
}
