package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/lance/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "lance.json"

	// DefaultPort is the default playground server port.
	DefaultPort = 3000

	// DefaultHost is the default playground server host.
	DefaultHost = "localhost"

	// DefaultTemplatesDir is the default template directory.
	DefaultTemplatesDir = "templates"

	// DefaultMetricsPath is the default metrics route.
	DefaultMetricsPath = "/metrics"
)

// Config represents the complete lance.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" env:"LANCE_NAME"`

	// Server contains playground server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Templates contains template source configuration.
	Templates TemplatesConfig `json:"templates,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains playground server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" env:"LANCE_HOST"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" env:"LANCE_PORT"`
}

// TemplatesConfig contains template source settings.
type TemplatesConfig struct {
	// Dir is the local template directory.
	Dir string `json:"dir,omitempty" env:"LANCE_TEMPLATES"`

	// S3Bucket, when set, loads templates from S3 instead of Dir.
	S3Bucket string `json:"s3Bucket,omitempty" env:"LANCE_S3_BUCKET"`

	// S3Region is the bucket region.
	S3Region string `json:"s3Region,omitempty" env:"LANCE_S3_REGION"`

	// S3Prefix is prepended to template names.
	S3Prefix string `json:"s3Prefix,omitempty" env:"LANCE_S3_PREFIX"`

	// Escape HTML-escapes property values in rendered templates.
	Escape bool `json:"escape,omitempty" env:"LANCE_ESCAPE"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" env:"LANCE_LOG_LEVEL"`

	// Format is text or json.
	Format string `json:"format,omitempty" env:"LANCE_LOG_FORMAT"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled registers collectors and serves Path.
	Enabled bool `json:"enabled,omitempty" env:"LANCE_METRICS"`

	// Namespace is the metric namespace.
	Namespace string `json:"namespace,omitempty" env:"LANCE_METRICS_NAMESPACE"`

	// Path is the HTTP route for the metrics handler.
	Path string `json:"path,omitempty" env:"LANCE_METRICS_PATH"`

	// Subsystem is the metric subsystem.
	Subsystem string `json:"subsystem,omitempty" env:"LANCE_METRICS_SUBSYSTEM"`

	// Labels are constant labels added to every metric, as key:value pairs
	// in the environment.
	Labels map[string]string `json:"labels,omitempty" env:"LANCE_METRICS_LABELS"`

	// Buckets are the render duration histogram buckets, in seconds.
	Buckets []float64 `json:"buckets,omitempty" env:"LANCE_METRICS_BUCKETS"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for lance.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path and applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("L141").
				WithDetail("No lance.json found in " + filepath.Dir(path))
		}
		return nil, errors.New("L120").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("L120").
			WithDetail("Failed to parse lance.json: " + err.Error())
	}

	cfg.configPath = path
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to defaults plus environment
// overrides when dir has no lance.json.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if err == nil {
		return cfg, nil
	}
	if !errors.HasCode(err, "L141") {
		return nil, err
	}
	cfg = &Config{}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	if err := env.Parse(c); err != nil {
		return errors.New("L120").
			WithDetail("Invalid environment override").
			Wrap(err)
	}
	c.applyDefaults()
	return c.Validate()
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("L120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("L120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Templates.Dir == "" {
		c.Templates.Dir = DefaultTemplatesDir
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "lance"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("L122").
			WithDetail("Port must be between 0 and 65535")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("L123").
			WithDetail("Unknown log level " + strconv.Quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("L123").
			WithDetail("Unknown log format " + strconv.Quote(c.Log.Format))
	}
	for i := 1; i < len(c.Metrics.Buckets); i++ {
		if c.Metrics.Buckets[i] <= c.Metrics.Buckets[i-1] {
			return errors.New("L124").
				WithDetail("Metric buckets must be strictly increasing")
		}
	}
	return nil
}

// Address returns the host:port string for the playground server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// TemplatesPath returns the absolute template directory.
func (c *Config) TemplatesPath() string {
	if filepath.IsAbs(c.Templates.Dir) {
		return c.Templates.Dir
	}
	return filepath.Join(c.Dir(), c.Templates.Dir)
}

// UsesS3 reports whether templates come from S3.
func (c *Config) UsesS3() bool {
	return c.Templates.S3Bucket != ""
}

// Logger builds the structured logger described by the log settings.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Exists checks if a lance.json file exists in the directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot searches upward from startDir for a lance.json file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("L141").
				WithDetail("No lance.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
