package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// settings holds the CLI's own configuration.
// Values come from flags, GUILDSETUP_* environment variables and an optional guildsetup.yaml, in that order.
type settings struct {
	ConfigDir string        `mapstructure:"config_dir"` // Directory holding server-config*.{json,yaml,yml}
	Token     string        `mapstructure:"token"`      // Bot token, required by apply
	Guild     string        `mapstructure:"guild"`      // Target guild ID, required by apply
	LogLevel  string        `mapstructure:"log_level"`  // "debug", "info", "warn" or "error"
	Timeout   time.Duration `mapstructure:"timeout"`    // Upper bound of a single apply run
}

// flagKeys maps persistent flag names to settings keys.
var flagKeys = map[string]string{
	"config-dir": "config_dir",
	"token":      "token",
	"guild":      "guild",
	"log-level":  "log_level",
	"timeout":    "timeout",
}

func loadSettings(flags *pflag.FlagSet) (*settings, error) {
	v := viper.New()

	v.SetDefault("config_dir", ".")
	v.SetDefault("log_level", "info")
	v.SetDefault("timeout", 5*time.Minute)

	v.SetConfigName("guildsetup")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading settings file: %w", err)
		}
	}

	v.SetEnvPrefix("GUILDSETUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}

		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("error binding flag %s: %w", name, err)
			}
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error unmarshaling settings: %w", err)
	}

	return &s, nil
}

func parseLogLevel(level string) (logger.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DebugLevel, nil

	case "info":
		return logger.InfoLevel, nil

	case "warn", "warning":
		return logger.WarnLevel, nil

	case "error":
		return logger.ErrorLevel, nil

	default:
		return logger.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
