package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FlosMume/CareMind/internal/retry"
)

const (
	configPathEnv     = "CAREMIND_CONFIG"
	drugBankAPIKeyEnv = "DRUGBANK_API_KEY"
	drugBankBaseEnv   = "DRUGBANK_BASE"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Resolver ResolverConfig `yaml:"resolver"`
	Sources  SourcesConfig  `yaml:"sources"`
	Cache    CacheConfig    `yaml:"cache"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ResolverConfig tunes the batch resolution run.
type ResolverConfig struct {
	Concurrency int         `yaml:"concurrency"`
	Retry       RetryConfig `yaml:"retry"`
}

// RetryConfig bounds per-source retry behavior. Delays are Go duration
// strings (e.g. "1s").
type RetryConfig struct {
	MaxAttempts int    `yaml:"maxAttempts"`
	BaseDelay   string `yaml:"baseDelay"`
	MaxDelay    string `yaml:"maxDelay"`
}

// Executor resolves the YAML fields into a retry policy.
func (r RetryConfig) Executor() retry.Config {
	cfg := retry.DefaultConfig()
	if r.MaxAttempts > 0 {
		cfg.MaxAttempts = r.MaxAttempts
	}
	cfg.BaseDelay = parseDuration(r.BaseDelay, cfg.BaseDelay)
	cfg.MaxDelay = parseDuration(r.MaxDelay, cfg.MaxDelay)
	return cfg
}

// SourcesConfig groups per-source settings in fallback-chain order.
type SourcesConfig struct {
	NMPA     NMPAConfig     `yaml:"nmpa"`
	DrugBank DrugBankConfig `yaml:"drugbank"`
	Offline  OfflineConfig  `yaml:"offline"`
}

// NMPAConfig describes the online search-and-scrape source.
type NMPAConfig struct {
	Disabled       bool   `yaml:"disabled"`
	BaseURL        string `yaml:"baseUrl"`
	RequestTimeout string `yaml:"requestTimeout"`
	MinInterval    string `yaml:"minInterval"`
}

// Timeout resolves the request timeout, defaulting to 15s.
func (c NMPAConfig) Timeout() time.Duration {
	return parseDuration(c.RequestTimeout, 15*time.Second)
}

// MinRequestInterval resolves the politeness delay, defaulting to 1.2s.
func (c NMPAConfig) MinRequestInterval() time.Duration {
	return parseDuration(c.MinInterval, 1200*time.Millisecond)
}

// DrugBankConfig describes the authenticated structured-API source. An
// empty APIKey disables the source for the whole run.
type DrugBankConfig struct {
	Disabled       bool   `yaml:"disabled"`
	APIKey         string `yaml:"apiKey"`
	BaseURL        string `yaml:"baseUrl"`
	RequestTimeout string `yaml:"requestTimeout"`
	MinInterval    string `yaml:"minInterval"`
}

// Timeout resolves the request timeout, defaulting to 20s.
func (c DrugBankConfig) Timeout() time.Duration {
	return parseDuration(c.RequestTimeout, 20*time.Second)
}

// MinRequestInterval resolves the politeness delay, defaulting to 1s.
func (c DrugBankConfig) MinRequestInterval() time.Duration {
	return parseDuration(c.MinInterval, time.Second)
}

// OfflineConfig describes the local label directory; an empty dir
// disables the source cleanly.
type OfflineConfig struct {
	Dir string `yaml:"dir"`
}

// CacheConfig points at the optional resolved-record cache database.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
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
	if v := os.Getenv(drugBankAPIKeyEnv); v != "" {
		c.Sources.DrugBank.APIKey = v
	}
	if v := os.Getenv(drugBankBaseEnv); v != "" {
		c.Sources.DrugBank.BaseURL = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Resolver.Concurrency > 0 {
		base.Resolver.Concurrency = override.Resolver.Concurrency
	}
	if override.Resolver.Retry.MaxAttempts > 0 {
		base.Resolver.Retry.MaxAttempts = override.Resolver.Retry.MaxAttempts
	}
	if override.Resolver.Retry.BaseDelay != "" {
		base.Resolver.Retry.BaseDelay = override.Resolver.Retry.BaseDelay
	}
	if override.Resolver.Retry.MaxDelay != "" {
		base.Resolver.Retry.MaxDelay = override.Resolver.Retry.MaxDelay
	}

	if override.Sources.NMPA.Disabled {
		base.Sources.NMPA.Disabled = true
	}
	if override.Sources.NMPA.BaseURL != "" {
		base.Sources.NMPA.BaseURL = override.Sources.NMPA.BaseURL
	}
	if override.Sources.NMPA.RequestTimeout != "" {
		base.Sources.NMPA.RequestTimeout = override.Sources.NMPA.RequestTimeout
	}
	if override.Sources.NMPA.MinInterval != "" {
		base.Sources.NMPA.MinInterval = override.Sources.NMPA.MinInterval
	}

	if override.Sources.DrugBank.Disabled {
		base.Sources.DrugBank.Disabled = true
	}
	if override.Sources.DrugBank.APIKey != "" {
		base.Sources.DrugBank.APIKey = override.Sources.DrugBank.APIKey
	}
	if override.Sources.DrugBank.BaseURL != "" {
		base.Sources.DrugBank.BaseURL = override.Sources.DrugBank.BaseURL
	}
	if override.Sources.DrugBank.RequestTimeout != "" {
		base.Sources.DrugBank.RequestTimeout = override.Sources.DrugBank.RequestTimeout
	}
	if override.Sources.DrugBank.MinInterval != "" {
		base.Sources.DrugBank.MinInterval = override.Sources.DrugBank.MinInterval
	}

	if override.Sources.Offline.Dir != "" {
		base.Sources.Offline.Dir = override.Sources.Offline.Dir
	}

	if override.Cache.Path != "" {
		base.Cache.Path = override.Cache.Path
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Resolver: ResolverConfig{
			Concurrency: 4,
			Retry:       RetryConfig{MaxAttempts: 3, BaseDelay: "1s", MaxDelay: "8s"},
		},
		Sources: SourcesConfig{
			NMPA:     NMPAConfig{RequestTimeout: "15s", MinInterval: "1.2s"},
			DrugBank: DrugBankConfig{RequestTimeout: "20s", MinInterval: "1s"},
		},
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config: invalid duration %q, using %s", raw, fallback)
		return fallback
	}
	return d
}
