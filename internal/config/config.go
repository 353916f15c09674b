package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/maxweight/internal/solver"
	"github.com/eugenenazirov/maxweight/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultLogLevel       = "info"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > Environment variables > YAML config > Defaults
type Config struct {
	Port                 string
	CatalogSource        string
	WatchCatalog         bool
	S3                   S3Config
	DefaultStrategy      solver.Strategy
	MaxExhaustiveItems   int
	ExhaustiveWorkers    int
	MaxCatalogItems      int
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	LogLevel             string
}

// S3Config holds object storage settings for s3:// catalog sources.
type S3Config struct {
	Region    string
	Endpoint  string
	PathStyle bool
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	LogLevel             string        `yaml:"log_level"`
	Catalog              yamlCatalog   `yaml:"catalog"`
	Solver               yamlSolver    `yaml:"solver"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlCatalog represents the catalog section in YAML.
type yamlCatalog struct {
	Source   string `yaml:"source"`
	Watch    *bool  `yaml:"watch"`
	MaxItems int    `yaml:"max_items"`
	S3       yamlS3 `yaml:"s3"`
}

type yamlS3 struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle *bool  `yaml:"path_style"`
}

// yamlSolver represents the solver section in YAML.
type yamlSolver struct {
	DefaultStrategy    string `yaml:"default_strategy"`
	MaxExhaustiveItems int    `yaml:"max_exhaustive_items"`
	Workers            int    `yaml:"workers"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile         string
	Port               *string
	CatalogSource      *string
	WatchCatalog       *bool
	DefaultStrategy    *string
	MaxExhaustiveItems *int
	ExhaustiveWorkers  *int
	RateLimitRPS       *float64
	RateLimitBurst     *int
	LogLevel           *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables > YAML config > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply environment variables (override YAML)
	applyEnvConfig(&cfg)

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		DefaultStrategy:      solver.StrategyGreedy,
		MaxExhaustiveItems:   solver.DefaultMaxItems,
		ExhaustiveWorkers:    1,
		MaxCatalogItems:      storage.DefaultMaxItems,
		S3:                   S3Config{Region: "us-east-1"},
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         60 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		LogLevel:             defaultLogLevel,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.Catalog.Source != "" {
		cfg.CatalogSource = yamlCfg.Catalog.Source
	}
	if yamlCfg.Catalog.Watch != nil {
		cfg.WatchCatalog = *yamlCfg.Catalog.Watch
	}
	if yamlCfg.Catalog.MaxItems > 0 {
		cfg.MaxCatalogItems = yamlCfg.Catalog.MaxItems
	}
	if yamlCfg.Catalog.S3.Region != "" {
		cfg.S3.Region = yamlCfg.Catalog.S3.Region
	}
	if yamlCfg.Catalog.S3.Endpoint != "" {
		cfg.S3.Endpoint = yamlCfg.Catalog.S3.Endpoint
	}
	if yamlCfg.Catalog.S3.PathStyle != nil {
		cfg.S3.PathStyle = *yamlCfg.Catalog.S3.PathStyle
	}

	if yamlCfg.Solver.DefaultStrategy != "" {
		strategy, err := solver.ParseStrategy(yamlCfg.Solver.DefaultStrategy)
		if err != nil {
			return err
		}
		cfg.DefaultStrategy = strategy
	}
	if yamlCfg.Solver.MaxExhaustiveItems > 0 {
		cfg.MaxExhaustiveItems = yamlCfg.Solver.MaxExhaustiveItems
	}
	if yamlCfg.Solver.Workers > 0 {
		cfg.ExhaustiveWorkers = yamlCfg.Solver.Workers
	}

	durations := []struct {
		raw    string
		target *time.Duration
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", d.raw, err)
		}
		*d.target = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit.RPS != nil && *yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil && *yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration. Unparseable
// values are ignored.
func applyEnvConfig(cfg *Config) {
	if port := env("PORT"); port != "" {
		cfg.Port = port
	}
	if level := env("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if source := env("CATALOG_SOURCE"); source != "" {
		cfg.CatalogSource = source
	}
	if watch, err := strconv.ParseBool(env("CATALOG_WATCH")); err == nil {
		cfg.WatchCatalog = watch
	}
	if value, err := strconv.Atoi(env("MAX_CATALOG_ITEMS")); err == nil && value > 0 {
		cfg.MaxCatalogItems = value
	}

	if region := env("S3_REGION"); region != "" {
		cfg.S3.Region = region
	}
	if endpoint := env("S3_ENDPOINT"); endpoint != "" {
		cfg.S3.Endpoint = endpoint
	}
	if pathStyle, err := strconv.ParseBool(env("S3_PATH_STYLE")); err == nil {
		cfg.S3.PathStyle = pathStyle
	}

	if strategy, err := solver.ParseStrategy(env("DEFAULT_STRATEGY")); err == nil {
		cfg.DefaultStrategy = strategy
	}
	if value, err := strconv.Atoi(env("MAX_EXHAUSTIVE_ITEMS")); err == nil && value > 0 {
		cfg.MaxExhaustiveItems = value
	}
	if value, err := strconv.Atoi(env("EXHAUSTIVE_WORKERS")); err == nil && value > 0 {
		cfg.ExhaustiveWorkers = value
	}

	if value, err := strconv.ParseFloat(env("RATE_LIMIT_RPS"), 64); err == nil && value >= 0 {
		cfg.RateLimitRPS = value
	}
	if value, err := strconv.Atoi(env("RATE_LIMIT_BURST")); err == nil && value >= 0 {
		cfg.RateLimitBurst = value
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}
	if overrides.CatalogSource != nil && *overrides.CatalogSource != "" {
		cfg.CatalogSource = *overrides.CatalogSource
	}
	if overrides.WatchCatalog != nil {
		cfg.WatchCatalog = *overrides.WatchCatalog
	}

	if overrides.DefaultStrategy != nil && *overrides.DefaultStrategy != "" {
		strategy, err := solver.ParseStrategy(*overrides.DefaultStrategy)
		if err != nil {
			return fmt.Errorf("parse strategy: %w", err)
		}
		cfg.DefaultStrategy = strategy
	}
	if overrides.MaxExhaustiveItems != nil && *overrides.MaxExhaustiveItems > 0 {
		cfg.MaxExhaustiveItems = *overrides.MaxExhaustiveItems
	}
	if overrides.ExhaustiveWorkers != nil && *overrides.ExhaustiveWorkers > 0 {
		cfg.ExhaustiveWorkers = *overrides.ExhaustiveWorkers
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}
	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.MaxExhaustiveItems < 1 || cfg.MaxExhaustiveItems > solver.MaxEnumerableItems {
		return fmt.Errorf("max exhaustive items must be between 1 and %d, got %d", solver.MaxEnumerableItems, cfg.MaxExhaustiveItems)
	}
	if cfg.ExhaustiveWorkers < 1 {
		return fmt.Errorf("exhaustive workers must be >= 1")
	}
	if cfg.MaxCatalogItems < 1 {
		return fmt.Errorf("max catalog items must be >= 1")
	}
	if cfg.WatchCatalog && (cfg.CatalogSource == "" || strings.HasPrefix(cfg.CatalogSource, "s3://")) {
		return fmt.Errorf("catalog watching requires a local catalog source")
	}
	return nil
}
