package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danyanovich/dwfx2pdf/internal/convert"
)

type Config struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	UploadDir string `yaml:"upload_dir"`

	Overwrite bool `yaml:"overwrite"`
	Workers   int  `yaml:"workers"`

	Converter Converter `yaml:"converter"`
	Watch     Watch     `yaml:"watch"`
	Web       Web       `yaml:"web"`
	Mirror    Mirror    `yaml:"mirror"`
}

type Converter struct {
	Binary string `yaml:"binary"`
	// Probed in order when the binary is not on PATH.
	FallbackPaths []string `yaml:"fallback_paths"`
}

type Watch struct {
	PollInterval Duration `yaml:"poll_interval"`
	MaxPolls     int      `yaml:"max_polls"`
}

type Web struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	MaxUploadMB     int64    `yaml:"max_upload_mb"`
}

// Duration parses yaml values like "250ms" or "10s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Mirror struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	Bucket          string `yaml:"bucket"`
	BasePath        string `yaml:"base_path"`
	QueueSize       int    `yaml:"queue_size"`
	Workers         int    `yaml:"workers"`
	MaxRetries      int    `yaml:"max_retries"`
}

// Load reads the optional yaml config at path. An empty path yields pure
// defaults; a missing or malformed file is an error so a typo'd --config
// never silently falls back.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: unmarshal yaml: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.InputDir == "" {
		c.InputDir = "dwfx"
	}
	if c.OutputDir == "" {
		c.OutputDir = "pdf"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Converter.Binary == "" {
		c.Converter.Binary = "xpstopdf"
	}
	if len(c.Converter.FallbackPaths) == 0 {
		c.Converter.FallbackPaths = convert.DefaultFallbackPaths
	}
	if c.Watch.PollInterval <= 0 {
		c.Watch.PollInterval = Duration(250 * time.Millisecond)
	}
	if c.Watch.MaxPolls <= 0 {
		c.Watch.MaxPolls = 40
	}
	if c.Web.Host == "" {
		c.Web.Host = "0.0.0.0"
	}
	if c.Web.Port <= 0 {
		c.Web.Port = 8080
	}
	if c.Web.ShutdownTimeout <= 0 {
		c.Web.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Web.MaxUploadMB <= 0 {
		c.Web.MaxUploadMB = 100
	}
	if c.Mirror.QueueSize <= 0 {
		c.Mirror.QueueSize = 100
	}
	if c.Mirror.Workers <= 0 {
		c.Mirror.Workers = 2
	}
	if c.Mirror.MaxRetries <= 0 {
		c.Mirror.MaxRetries = 3
	}
}

func (c *Config) validate() error {
	if c.Mirror.Enabled {
		if c.Mirror.Endpoint == "" {
			return fmt.Errorf("config: mirror.endpoint is empty")
		}
		if c.Mirror.Bucket == "" {
			return fmt.Errorf("config: mirror.bucket is empty")
		}
	}
	return nil
}
