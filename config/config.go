// Package config resolves runtime settings from defaults, an optional TOML
// file and the environment, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"prism-todo/codec"
	"prism-todo/domain"
)

const (
	IDStrategyTimestamp = "timestamp"
	IDStrategyUUID      = "uuid"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds the settings for serve and check.
type Config struct {
	Addr         string `toml:"addr"`
	Debug        bool   `toml:"debug"`
	LogFormat    string `toml:"log_format"`
	IDStrategy   string `toml:"id_strategy"`
	StrictImport bool   `toml:"strict_import"`
	ExportName   string `toml:"export_name"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:         ":8080",
		LogFormat:    LogFormatText,
		IDStrategy:   IDStrategyTimestamp,
		StrictImport: true,
		ExportName:   "todos.json",
	}
}

// Load applies an optional TOML file (path may be empty) and then the
// environment over the defaults, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("PRISM_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG: %w", err)
		}
		cfg.Debug = b
	}
	if v := os.Getenv("PRISM_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv("PRISM_ID_STRATEGY"); v != "" {
		cfg.IDStrategy = strings.ToLower(v)
	}
	if v := os.Getenv("PRISM_STRICT_IMPORT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PRISM_STRICT_IMPORT: %w", err)
		}
		cfg.StrictImport = b
	}
	if v := os.Getenv("PRISM_EXPORT_NAME"); v != "" {
		cfg.ExportName = v
	}
	return nil
}

// Validate rejects settings serve cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr must not be empty")
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log_format %q: want %s or %s", c.LogFormat, LogFormatText, LogFormatJSON)
	}
	switch c.IDStrategy {
	case IDStrategyTimestamp, IDStrategyUUID:
	default:
		return fmt.Errorf("invalid id_strategy %q: want %s or %s", c.IDStrategy, IDStrategyTimestamp, IDStrategyUUID)
	}
	if strings.TrimSpace(c.ExportName) == "" {
		return fmt.Errorf("export_name must not be empty")
	}
	return nil
}

// NewLogger builds a logrus logger with the configured level and format.
func (c Config) NewLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(os.Stderr)
	if c.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	if c.LogFormat == LogFormatJSON {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// IDs returns the id generator for the configured strategy.
func (c Config) IDs() domain.IDGenerator {
	if c.IDStrategy == IDStrategyUUID {
		return domain.UUIDIDs{}
	}
	return domain.NewTimestampIDs()
}

// Decoder returns the import decoder for the configured strictness.
func (c Config) Decoder() codec.Decoder {
	return codec.Decoder{Permissive: !c.StrictImport}
}
