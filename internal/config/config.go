package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNoToken is returned by RequireToken when DISCORD_TOKEN is not set.
var ErrNoToken = errors.New("DISCORD_TOKEN is not set")

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	DiscordProxy string `env:"DISCORD_PROXY"`
	OwnerID      string `env:"OWNER_ID"`

	Prefix        string `env:"BOT_PREFIX" envDefault:"!"`
	ReplacerOpen  string `env:"REPLACER_OPEN" envDefault:"|"`
	ReplacerClose string `env:"REPLACER_CLOSE" envDefault:"|"`

	MaxInterfaces     int   `env:"MAX_INTERFACES" envDefault:"50"`
	IgnoredErrorCodes []int `env:"IGNORED_ERROR_CODES" envDefault:"50001,50013,10008" envSeparator:","`
	AllowBots         bool  `env:"ALLOW_BOTS" envDefault:"false"`
	EditableCommands  bool  `env:"EDITABLE_COMMANDS" envDefault:"false"`
	SendWorkers       int   `env:"SEND_WORKERS" envDefault:"4"`

	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	StatusAddr  string `env:"STATUS_ADDR"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile   string `env:"LOG_FILE"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load reads the given dotenv files (".env" when none are given) into the
// process environment and parses it. Missing dotenv files are not an error;
// loaded reports whether any file was read.
func Load(files ...string) (cfg *Config, loaded bool, err error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, serr := os.Stat(f); serr != nil {
			continue
		}
		if lerr := godotenv.Load(f); lerr != nil {
			return nil, false, fmt.Errorf("load %s: %w", f, lerr)
		}
		loaded = true
	}

	cfg, err = Parse()
	return cfg, loaded, err
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// RequireToken fails when no Discord token is configured.
func (c *Config) RequireToken() error {
	if c.DiscordToken == "" {
		return ErrNoToken
	}
	return nil
}
