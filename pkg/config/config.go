package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no config path is given.
const DefaultFile = "attdb.yaml"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds compiler configuration
type Config struct {
	LogLevel  string            `yaml:"log_level" default:"info"`
	Grammar   string            `yaml:"grammar" default:"auto"`
	Format    string            `yaml:"format" default:"go"`
	Output    string            `yaml:"output"`
	Package   string            `yaml:"package" default:"attdb"`
	Prefix    string            `yaml:"prefix" default:"Custs1"`
	TaskID    uint16            `yaml:"task_id"`
	Imports   []string          `yaml:"imports"`
	Constants map[string]uint16 `yaml:"constants"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads path over the defaults. A missing DefaultFile is not an error;
// any other missing path is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Grammar {
	case "auto", "records", "entries":
	default:
		return fmt.Errorf("%w: grammar %q (must be auto, records or entries)", ErrInvalidConfig, c.Grammar)
	}
	switch c.Format {
	case "go", "json", "yaml", "table":
	default:
		return fmt.Errorf("%w: format %q (must be go, json, yaml or table)", ErrInvalidConfig, c.Format)
	}
	if c.Format == "go" && (c.Package == "" || c.Prefix == "") {
		return fmt.Errorf("%w: go output needs package and prefix", ErrInvalidConfig)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (logrus.Level, error) {
	switch c.LogLevel {
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	}
	return logrus.PanicLevel, fmt.Errorf("%w: log level %q (must be debug, info, warn, or error)", ErrInvalidConfig, c.LogLevel)
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := c.Level()
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
