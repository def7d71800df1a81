package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emiliopalmerini/mclass/internal/domain"
	"github.com/emiliopalmerini/mclass/internal/monitor"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Prefix is prepended to every environment variable name.
const Prefix = "MCLASS"

const (
	StoreFile   = "file"
	StoreLibSQL = "libsql"
)

// Config is the effective configuration of every command. Sources apply in
// order: defaults, environment, the YAML file given with --config, flags.
type Config struct {
	Store       string `envconfig:"STORE" default:"file" yaml:"store"`
	DataDir     string `envconfig:"DATA_DIR" yaml:"data_dir"`
	DatabaseURL string `envconfig:"DATABASE_URL" yaml:"database_url"`
	AuthToken   string `envconfig:"AUTH_TOKEN" yaml:"auth_token"`

	SampleInterval time.Duration `envconfig:"SAMPLE_INTERVAL" default:"800ms" yaml:"sample_interval"`
	QueueSize      int           `envconfig:"QUEUE_SIZE" default:"4" yaml:"queue_size"`
	DropPolicy     string        `envconfig:"DROP_POLICY" default:"drop-newest" yaml:"drop_policy"`

	// ArchiveFrames keeps each labelled frame image under FramesDir, or
	// <data dir>/frames when FramesDir is empty.
	ArchiveFrames bool   `envconfig:"ARCHIVE_FRAMES" yaml:"archive_frames"`
	FramesDir     string `envconfig:"FRAMES_DIR" yaml:"frames_dir"`

	Addr        string   `envconfig:"ADDR" default:"localhost:8080" yaml:"addr"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" yaml:"cors_origins"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" yaml:"log_level"`

	OTelEnabled  bool   `envconfig:"OTEL_ENABLED" yaml:"otel_enabled"`
	OTelEndpoint string `envconfig:"OTEL_ENDPOINT" default:"localhost:4317" yaml:"otel_endpoint"`
	OTelInsecure bool   `envconfig:"OTEL_INSECURE" default:"true" yaml:"otel_insecure"`
}

// Load reads the environment and, when path is set, overlays the YAML file.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	if path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfiguration, path, err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreFile:
	case StoreLibSQL:
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("%w: %s_DATABASE_URL is required for the libsql store", domain.ErrInvalidConfiguration, Prefix))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown store %q", domain.ErrInvalidConfiguration, c.Store))
	}

	if c.SampleInterval < 0 {
		errs = append(errs, fmt.Errorf("%w: sample interval must not be negative", domain.ErrInvalidConfiguration))
	}
	if c.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("%w: queue size must be at least 1", domain.ErrInvalidConfiguration))
	}
	if _, err := monitor.ParseDropPolicy(c.DropPolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", domain.ErrInvalidConfiguration, c.LogLevel)
	}
	return l, nil
}

// Monitor builds the pipeline settings for a session of the given length.
func (c *Config) Monitor(duration time.Duration) monitor.Config {
	policy, _ := monitor.ParseDropPolicy(c.DropPolicy)
	return monitor.Config{
		Duration:       duration,
		SampleInterval: c.SampleInterval,
		QueueSize:      c.QueueSize,
		DropPolicy:     policy,
	}
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.AuthToken != "" {
		c.AuthToken = "********"
	}
	return c
}
