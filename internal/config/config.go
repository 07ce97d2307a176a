package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// DefaultConfigFile is picked up from the working directory when no explicit
// config path is given.
const DefaultConfigFile = "culler.yaml"

type Config struct {
	Cache     CacheConfig     `yaml:"cache"`
	Hashing   HashingConfig   `yaml:"hashing"`
	Grouping  GroupingConfig  `yaml:"grouping"`
	Selection SelectionConfig `yaml:"selection"`
	Server    ServerConfig    `yaml:"server"`
}

type CacheConfig struct {
	Backend string `yaml:"backend"` // json, sqlite or postgres
	Path    string `yaml:"path"`    // file for json and sqlite backends
	DSN     string `yaml:"dsn"`     // connection URL for postgres
}

type HashingConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	MaxCPUUsage float64       `yaml:"max_cpu_usage"` // fraction of cores used by the hashing pool
	Timeout     time.Duration `yaml:"timeout"`
}

// HashLength is the length of a channelled average hash for the configured size.
func (h HashingConfig) HashLength() int {
	return h.Width * h.Height * 3
}

type GroupingConfig struct {
	TimeThresholdSeconds       float64 `yaml:"time_threshold_seconds"`
	SimilarityThresholdPercent float64 `yaml:"similarity_threshold_percent"`
}

type SelectionConfig struct {
	DefaultStrategy string            `yaml:"default_strategy"`
	Aliases         map[string]string `yaml:"aliases"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable as a float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// Default returns the embedded default configuration.
func Default() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return &cfg
}

// Load builds the configuration from the embedded defaults, an optional YAML
// file and CULLER_* environment variables, in that order.
// An explicitly named file must exist; the implicit culler.yaml is optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv("CULLER_CONFIG")
	}
	if path == "" {
		path = DefaultConfigFile
		explicit = false
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Cache.Backend = envString("CULLER_CACHE_BACKEND", c.Cache.Backend)
	c.Cache.Path = envString("CULLER_CACHE_PATH", c.Cache.Path)
	c.Cache.DSN = envString("CULLER_CACHE_DSN", c.Cache.DSN)

	c.Hashing.Enabled = envBool("CULLER_HASHING_ENABLED", c.Hashing.Enabled)
	c.Hashing.Width = envInt("CULLER_HASH_WIDTH", c.Hashing.Width)
	c.Hashing.Height = envInt("CULLER_HASH_HEIGHT", c.Hashing.Height)
	c.Hashing.MaxCPUUsage = envFloat("CULLER_MAX_CPU_USAGE", c.Hashing.MaxCPUUsage)
	c.Hashing.Timeout = envDuration("CULLER_HASHING_TIMEOUT", c.Hashing.Timeout)

	c.Grouping.TimeThresholdSeconds = envFloat("CULLER_TIME_THRESHOLD", c.Grouping.TimeThresholdSeconds)
	c.Grouping.SimilarityThresholdPercent = envFloat("CULLER_SIMILARITY_THRESHOLD", c.Grouping.SimilarityThresholdPercent)

	c.Selection.DefaultStrategy = envString("CULLER_STRATEGY", c.Selection.DefaultStrategy)

	c.Server.Host = envString("CULLER_SERVER_HOST", c.Server.Host)
	c.Server.Port = envInt("CULLER_SERVER_PORT", c.Server.Port)
}

// Validate checks the settings that the hashing and grouping core relies on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Cache.Backend) {
	case "json", "sqlite":
		if c.Cache.Path == "" {
			return errors.New("cache.path is required for the " + c.Cache.Backend + " cache backend")
		}
	case "postgres":
		if c.Cache.DSN == "" {
			return errors.New("cache.dsn is required for the postgres cache backend")
		}
	default:
		return fmt.Errorf("unknown cache backend: %s (supported: json, sqlite, postgres)", c.Cache.Backend)
	}

	if c.Hashing.Width <= 0 || c.Hashing.Height <= 0 {
		return fmt.Errorf("hash size must be positive, got %dx%d", c.Hashing.Width, c.Hashing.Height)
	}
	if c.Hashing.MaxCPUUsage <= 0 || c.Hashing.MaxCPUUsage > 1 {
		return fmt.Errorf("max_cpu_usage must be in (0, 1], got %g", c.Hashing.MaxCPUUsage)
	}
	if c.Hashing.Timeout <= 0 {
		return errors.New("hashing timeout must be positive")
	}
	if err := ValidateThresholds(c.Grouping.TimeThresholdSeconds, c.Grouping.SimilarityThresholdPercent); err != nil {
		return err
	}
	if c.Selection.DefaultStrategy == "" {
		return errors.New("selection.default_strategy must not be empty")
	}
	return nil
}

// ValidateThresholds checks a time threshold in seconds and a similarity
// threshold in percent.
func ValidateThresholds(timeSeconds, similarityPercent float64) error {
	if timeSeconds <= 0 {
		return fmt.Errorf("time threshold must be positive, got %g", timeSeconds)
	}
	if similarityPercent < 0 || similarityPercent > 100 {
		return fmt.Errorf("similarity threshold must be 0-100, got %g", similarityPercent)
	}
	return nil
}
