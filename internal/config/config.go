// Package config loads journal settings from the environment.
package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix, e.g. JOURNAL_DATA_FILE.
const Prefix = "JOURNAL"

// Config holds the settings shared by the CLI and the server
type Config struct {
	// DataFile is the reflections JSON document.
	DataFile string `envconfig:"DATA_FILE" default:"reflections.json"`

	// StaticDir is served for any GET outside /api.
	StaticDir string `envconfig:"STATIC_DIR" default:"."`

	// Host is empty to bind every interface.
	Host string `envconfig:"HOST" default:""`
	Port int    `envconfig:"PORT" default:"8000"`

	// Indent is the number of spaces used when writing DataFile.
	Indent int `envconfig:"INDENT" default:"2"`

	IndexDB  string `envconfig:"INDEX_DB" default:".journal/index.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file and then the JOURNAL_ environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv parses the JOURNAL_ environment without touching .env files.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the store or server cannot use.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("JOURNAL_DATA_FILE must not be empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("JOURNAL_PORT out of range: %d", c.Port)
	}
	if c.Indent < 0 || c.Indent > 8 {
		return fmt.Errorf("JOURNAL_INDENT must be between 0 and 8, got %d", c.Indent)
	}
	return nil
}

// Addr is the listen address derived from Host and Port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
