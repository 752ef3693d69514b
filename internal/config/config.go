// Package config handles loading and validating gateway configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration for the llmux gateway.
type Config struct {
	Server    ServerConfig              `koanf:"server"`
	Auth      AuthConfig                `koanf:"auth"`
	Logging   LoggingConfig             `koanf:"logging"`
	Cache     CacheConfig               `koanf:"cache"`
	Routing   RoutingConfig             `koanf:"routing"`
	Providers map[string]ProviderConfig `koanf:"providers"`
}

// ServerConfig holds HTTP bind settings.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// AuthConfig holds the label->key bearer-auth table. Exactly one of APIKey
// (label "default") or APIKeys (explicit labels) is normally set.
type AuthConfig struct {
	APIKey  string            `koanf:"api_key"`
	APIKeys map[string]string `koanf:"api_keys"`
}

// Keys returns the effective label->key map, folding the single-key
// shorthand in under the "default" label.
func (a AuthConfig) Keys() map[string]string {
	out := make(map[string]string, len(a.APIKeys)+1)
	for label, key := range a.APIKeys {
		out[label] = key
	}
	if a.APIKey != "" {
		out["default"] = a.APIKey
	}
	return out
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// CacheConfig controls the content-addressed response cache.
type CacheConfig struct {
	Enabled bool              `koanf:"enabled"`
	Backend string            `koanf:"backend"` // "memory" or "redis"
	Memory  CacheMemoryConfig `koanf:"memory"`
	Redis   CacheRedisConfig  `koanf:"redis"`
}

type CacheMemoryConfig struct {
	MaxItems int           `koanf:"max_items"`
	TTL      time.Duration `koanf:"ttl"`
}

type CacheRedisConfig struct {
	URL       string        `koanf:"url"`
	TTL       time.Duration `koanf:"ttl"`
	KeyPrefix string        `koanf:"key_prefix"`
}

// RoutingConfig controls candidate ordering and the alias table.
type RoutingConfig struct {
	DefaultStrategy string                       `koanf:"default_strategy"`
	FallbackChain   []string                     `koanf:"fallback_chain"`
	ModelAliases    map[string]map[string]string `koanf:"model_aliases"`
}

// ProviderConfig holds the settings for a single upstream provider.
type ProviderConfig struct {
	Enabled      bool              `koanf:"enabled"`
	APIKey       string            `koanf:"api_key"`
	BaseURL      string            `koanf:"base_url"`
	Models       []string          `koanf:"models"`
	Timeout      time.Duration     `koanf:"timeout"`
	ExtraHeaders map[string]string `koanf:"extra_headers"`
	MaxRetries   int               `koanf:"max_retries"`
}

const (
	// DefaultStoreTTL is the Response Store's default TTL (spec.md §3).
	DefaultStoreTTL = time.Hour
	// DefaultStoreSize is the Response Store's default max entry count.
	DefaultStoreSize = 1000

	defaultCacheTTL        = 3600 * time.Second
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 120 * time.Second
	defaultProviderTimeout = 30 * time.Second
)

// envPattern matches ${VAR} and ${VAR:-default}.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandEnv performs shell-style ${VAR} / ${VAR:-default} substitution
// against the process environment. Unlike os.Expand, it understands the
// ":-default" fallback form required by spec.md §6.
func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envPattern.FindStringSubmatch(match)
		name, hasDefault, def := groups[1], groups[2] != "", groups[3]
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		return ""
	})
}

// Load reads configuration from a YAML file, expands ${VAR}/${VAR:-default}
// placeholders against the environment, layers LLMUX_-prefixed environment
// variable overrides on top, and returns a fully populated Config.
func Load(path string) (*Config, error) {
	// Load .env file into the process environment (ignored if not present).
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	expanded := expandEnv(string(raw))

	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(expanded)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	// Layer environment variables on top. Any env var starting with
	// "LLMUX_" can override a config value, e.g. LLMUX_SERVER_PORT.
	if err := k.Load(env.Provider("LLMUX_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "LLMUX_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Routing.DefaultStrategy == "" {
		cfg.Routing.DefaultStrategy = "first-available"
	}
	if cfg.Cache.Memory.TTL == 0 {
		cfg.Cache.Memory.TTL = defaultCacheTTL
	}
	if cfg.Cache.Memory.MaxItems == 0 {
		cfg.Cache.Memory.MaxItems = 10000
	}
	if cfg.Cache.Redis.TTL == 0 {
		cfg.Cache.Redis.TTL = defaultCacheTTL
	}
	for name, p := range cfg.Providers {
		if p.Timeout == 0 {
			p.Timeout = defaultProviderTimeout
			cfg.Providers[name] = p
		}
	}
}
