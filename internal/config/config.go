// Package config loads server settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	toolserrors "github.com/wagiedev/project-tools-mcp/internal/errors"
)

// EnvPrefix prefixes every environment variable except PORT and HOST.
const EnvPrefix = "MCP_"

// DefaultPort is used when neither PORT nor a config file sets one.
const DefaultPort = 3000

// Config holds server settings.
type Config struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Root is the directory file tools resolve relative paths against.
	// Empty means the process working directory.
	Root string `koanf:"root"`

	// SessionIDs is the session identifier policy: "ulid" or "none".
	SessionIDs string `koanf:"session-ids"`

	// JSONResponse answers /mcp POSTs with a single JSON body instead of
	// an event stream.
	JSONResponse bool `koanf:"json-response"`
	SSE          bool `koanf:"sse"`

	LogLevel  string `koanf:"log-level"`
	LogFormat string `koanf:"log-format"`

	DenyPaths   []string `koanf:"deny-paths"`
	CORSOrigins []string `koanf:"cors-origins"`

	// RateLimit is requests per second across all clients. Zero disables.
	RateLimit float64 `koanf:"rate-limit"`
	RateBurst int     `koanf:"rate-burst"`

	ShutdownTimeout time.Duration `koanf:"shutdown-timeout"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json", "dev"}
	idPolicies = []string{"ulid", "none"}
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:            DefaultPort,
		SessionIDs:      "ulid",
		JSONResponse:    true,
		SSE:             true,
		LogLevel:        "info",
		LogFormat:       "text",
		CORSOrigins:     []string{"*"},
		RateBurst:       20,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load layers an optional YAML file at path and the environment over the
// defaults, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envKey maps PORT, HOST and MCP_* variables to config keys:
// MCP_SESSION_IDS -> session-ids. Empty and unrelated variables are skipped.
func envKey(key, value string) (string, any) {
	if value == "" {
		return "", nil
	}

	var name string

	switch {
	case key == "PORT" || key == "HOST":
		name = strings.ToLower(key)
	case strings.HasPrefix(key, EnvPrefix):
		name = strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, EnvPrefix), "_", "-"))
	default:
		return "", nil
	}

	if name == "deny-paths" || name == "cors-origins" {
		return name, splitList(value)
	}

	return name, value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// Validate reports the first unusable setting as a *errors.ConfigError.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return &toolserrors.ConfigError{Key: "port", Reason: fmt.Sprintf("%d is out of range", c.Port)}
	}

	if !slices.Contains(idPolicies, c.SessionIDs) {
		return &toolserrors.ConfigError{Key: "session-ids", Reason: oneOf(c.SessionIDs, idPolicies)}
	}

	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return &toolserrors.ConfigError{Key: "log-level", Reason: oneOf(c.LogLevel, logLevels)}
	}

	if !slices.Contains(logFormats, strings.ToLower(c.LogFormat)) {
		return &toolserrors.ConfigError{Key: "log-format", Reason: oneOf(c.LogFormat, logFormats)}
	}

	for _, pattern := range c.DenyPaths {
		if !doublestar.ValidatePattern(pattern) {
			return &toolserrors.ConfigError{Key: "deny-paths", Reason: fmt.Sprintf("malformed pattern %q", pattern)}
		}
	}

	if c.RateLimit < 0 {
		return &toolserrors.ConfigError{Key: "rate-limit", Reason: "must not be negative"}
	}

	if c.RateLimit > 0 && c.RateBurst < 1 {
		return &toolserrors.ConfigError{Key: "rate-burst", Reason: "must be at least 1 when rate-limit is set"}
	}

	if c.ShutdownTimeout <= 0 {
		return &toolserrors.ConfigError{Key: "shutdown-timeout", Reason: "must be positive"}
	}

	if c.Root != "" {
		info, err := os.Stat(c.Root)
		if err != nil {
			return &toolserrors.ConfigError{Key: "root", Reason: err.Error()}
		}

		if !info.IsDir() {
			return &toolserrors.ConfigError{Key: "root", Reason: "not a directory"}
		}
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func oneOf(got string, allowed []string) string {
	return fmt.Sprintf("%q is not one of %s", got, strings.Join(allowed, ", "))
}
