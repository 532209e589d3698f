// Package config loads server configuration.
//
// Configuration is environment-first: an optional YAML file provides a
// base, and environment variables override it. Every knob has a default
// that produces a working server, so a bare `eveuni serve` needs no
// configuration at all.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport selects how the MCP server talks to its client.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// Config holds all server settings.
type Config struct {
	Transport Transport `yaml:"transport"`
	Host      string    `yaml:"host"`
	Port      int       `yaml:"port"`

	// AuthToken is the shared bearer secret. Empty means authentication
	// is disabled and every caller is accepted.
	AuthToken string `yaml:"auth_token"`

	// Fixed-window rate limit applied per client address.
	RateLimitRequests int           `yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`

	// Maximum lengths for validated tool arguments.
	MaxShortField  int `yaml:"max_short_field"`  // identifiers: categories etc.
	MaxTextField   int `yaml:"max_text_field"`   // queries and page titles
	MaxFreeformLen int `yaml:"max_freeform_len"` // planner freeform notes

	// Upstream wiki settings.
	WikiAPI     string        `yaml:"wiki_api"`
	WikiTimeout time.Duration `yaml:"wiki_timeout"`

	// Page cache. CacheDir empty disables caching entirely.
	CacheDir string        `yaml:"cache_dir"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Transport:         TransportStdio,
		Host:              "0.0.0.0",
		Port:              8000,
		RateLimitRequests: 60,
		RateLimitWindow:   60 * time.Second,
		MaxShortField:     200,
		MaxTextField:      500,
		MaxFreeformLen:    1200,
		WikiAPI:           "https://wiki.eveuniversity.org/api.php",
		WikiTimeout:       30 * time.Second,
		CacheTTL:          15 * time.Minute,
	}
}

// Load builds a Config from defaults, an optional YAML file, and
// environment overrides, in that order. path may be empty.
func Load(path string, environ []string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg, environ); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config, environ []string) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	values := envMap(environ)

	if value, ok := values["MCP_TRANSPORT"]; ok {
		cfg.Transport = Transport(strings.ToLower(value))
	}
	if value, ok := values["MCP_HOST"]; ok {
		cfg.Host = value
	}
	if value, ok := values["MCP_PORT"]; ok {
		parsed, err := parseIntEnv("MCP_PORT", value)
		if err != nil {
			return err
		}
		cfg.Port = parsed
	}
	if value, ok := values["MCP_AUTH_TOKEN"]; ok {
		cfg.AuthToken = value
	}
	if value, ok := values["RATE_LIMIT_REQUESTS"]; ok {
		parsed, err := parseIntEnv("RATE_LIMIT_REQUESTS", value)
		if err != nil {
			return err
		}
		cfg.RateLimitRequests = parsed
	}
	if value, ok := values["RATE_LIMIT_WINDOW"]; ok {
		parsed, err := parseIntEnv("RATE_LIMIT_WINDOW", value)
		if err != nil {
			return err
		}
		cfg.RateLimitWindow = time.Duration(parsed) * time.Second
	}
	if value, ok := values["MAX_SHORT_FIELD_LENGTH"]; ok {
		parsed, err := parseIntEnv("MAX_SHORT_FIELD_LENGTH", value)
		if err != nil {
			return err
		}
		cfg.MaxShortField = parsed
	}
	if value, ok := values["MAX_TEXT_FIELD_LENGTH"]; ok {
		parsed, err := parseIntEnv("MAX_TEXT_FIELD_LENGTH", value)
		if err != nil {
			return err
		}
		cfg.MaxTextField = parsed
	}
	if value, ok := values["MAX_FREEFORM_LENGTH"]; ok {
		parsed, err := parseIntEnv("MAX_FREEFORM_LENGTH", value)
		if err != nil {
			return err
		}
		cfg.MaxFreeformLen = parsed
	}
	if value, ok := values["WIKI_API"]; ok {
		cfg.WikiAPI = value
	}
	if value, ok := values["WIKI_TIMEOUT_SECONDS"]; ok {
		parsed, err := parseIntEnv("WIKI_TIMEOUT_SECONDS", value)
		if err != nil {
			return err
		}
		cfg.WikiTimeout = time.Duration(parsed) * time.Second
	}
	if value, ok := values["WIKI_CACHE_DIR"]; ok {
		cfg.CacheDir = value
	}
	if value, ok := values["WIKI_CACHE_TTL_MINUTES"]; ok {
		parsed, err := parseIntEnv("WIKI_CACHE_TTL_MINUTES", value)
		if err != nil {
			return err
		}
		cfg.CacheTTL = time.Duration(parsed) * time.Minute
	}
	return nil
}

func (cfg Config) validate() error {
	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("config: unknown transport %q (want stdio or http)", cfg.Transport)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", cfg.Port)
	}
	if cfg.RateLimitRequests < 1 {
		return fmt.Errorf("config: rate_limit_requests must be >= 1, got %d", cfg.RateLimitRequests)
	}
	if cfg.RateLimitWindow < time.Second {
		return fmt.Errorf("config: rate_limit_window must be >= 1s, got %s", cfg.RateLimitWindow)
	}
	if cfg.MaxShortField < 1 || cfg.MaxTextField < 1 || cfg.MaxFreeformLen < 1 {
		return errors.New("config: max field lengths must be >= 1")
	}
	if cfg.WikiAPI == "" {
		return errors.New("config: wiki_api is required")
	}
	return nil
}

// Addr returns the host:port the HTTP transport listens on.
func (cfg Config) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

func envMap(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		values[key] = value
	}
	return values
}

func parseIntEnv(name, value string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", name, value)
	}
	return parsed, nil
}
