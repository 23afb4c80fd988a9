package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "DIGESTWATCH_CONFIG"
	databaseDSNEnv     = "DATABASE_DSN"
	supabaseURLEnv     = "SUPABASE_URL"
	supabaseKeyEnv     = "SUPABASE_KEY"
	generatorKeyEnv    = "GENERATOR_API_KEY"
	httpAddrEnv        = "HTTP_ADDR"
	defaultRefreshSpec = "30m"
	defaultSettleSpec  = "45s"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Generator GeneratorConfig `yaml:"generator"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig describes the Supabase bucket holding generated digests.
type StorageConfig struct {
	// URL is the project URL; the storage API suffix is appended if absent.
	URL              string   `yaml:"url"`
	APIKey           string   `yaml:"apiKey"`
	Bucket           string   `yaml:"bucket"`
	Prefix           string   `yaml:"prefix"`
	Keywords         []string `yaml:"keywords"`
	MinContentLength int      `yaml:"minContentLength"`
}

// GeneratorConfig defines how to reach the remote digest-generation service.
type GeneratorConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// SchedulerConfig defines when refresh attempts run and how long to wait
// after a generation trigger before re-reading the bucket.
type SchedulerConfig struct {
	RefreshInterval  string `yaml:"refreshInterval"`
	GenerationSettle string `yaml:"generationSettle"`
}

// Interval resolves the refresh interval string to a duration.
func (s SchedulerConfig) Interval() time.Duration {
	return parseDuration(s.RefreshInterval, defaultRefreshSpec)
}

// Settle resolves the post-trigger settle string to a duration.
func (s SchedulerConfig) Settle() time.Duration {
	return parseDuration(s.GenerationSettle, defaultSettleSpec)
}

func parseDuration(raw, fallback string) time.Duration {
	if raw == "" {
		raw = fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config: invalid duration %q, using %s", raw, fallback)
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

// DatabaseConfig describes Postgres connection details for the archive.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(supabaseURLEnv); v != "" {
		c.Storage.URL = v
	}

	if v := os.Getenv(supabaseKeyEnv); v != "" {
		c.Storage.APIKey = v
	}

	if v := os.Getenv(generatorKeyEnv); v != "" {
		c.Generator.APIKey = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Storage.URL != "" {
		base.Storage.URL = override.Storage.URL
	}
	if override.Storage.APIKey != "" {
		base.Storage.APIKey = override.Storage.APIKey
	}
	if override.Storage.Bucket != "" {
		base.Storage.Bucket = override.Storage.Bucket
	}
	if override.Storage.Prefix != "" {
		base.Storage.Prefix = override.Storage.Prefix
	}
	if len(override.Storage.Keywords) > 0 {
		base.Storage.Keywords = override.Storage.Keywords
	}
	if override.Storage.MinContentLength > 0 {
		base.Storage.MinContentLength = override.Storage.MinContentLength
	}

	if override.Generator.Endpoint != "" {
		base.Generator.Endpoint = override.Generator.Endpoint
	}
	if override.Generator.APIKey != "" {
		base.Generator.APIKey = override.Generator.APIKey
	}

	if override.Scheduler.RefreshInterval != "" {
		base.Scheduler.RefreshInterval = override.Scheduler.RefreshInterval
	}
	if override.Scheduler.GenerationSettle != "" {
		base.Scheduler.GenerationSettle = override.Scheduler.GenerationSettle
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{
			Bucket:           "digests",
			Keywords:         []string{"digest", "portfolio"},
			MinContentLength: 32,
		},
		Generator: GeneratorConfig{},
		Scheduler: SchedulerConfig{
			RefreshInterval:  defaultRefreshSpec,
			GenerationSettle: defaultSettleSpec,
		},
		Database: DatabaseConfig{},
		Server:   ServerConfig{Addr: ":8080"},
	}
}
