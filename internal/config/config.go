package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	MetricsPort    int      `yaml:"metrics_port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

// AIConfig controls the model path. An empty APIKey disables it.
type AIConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Provider    string  `yaml:"provider"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIVersion  string  `yaml:"api_version"`
	Temperature float64 `yaml:"temperature"`
	TimeoutMS   int     `yaml:"timeout_ms"`
	CacheTTLMS  int     `yaml:"cache_ttl_ms"`
}

type CacheConfig struct {
	Backend  string `yaml:"backend"`
	RedisURL string `yaml:"redis_url"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// Timeout returns the model call timeout
func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutMS) * time.Millisecond
}

// CacheTTL returns how long generated responses are cached
func (a AIConfig) CacheTTL() time.Duration {
	return time.Duration(a.CacheTTLMS) * time.Millisecond
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        5000,
			MetricsPort: 9090,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			URL:    "hospitalhub.db",
		},
		AI: AIConfig{
			Enabled:     true,
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			TimeoutMS:   20000,
			CacheTTLMS:  3600000,
		},
		Cache: CacheConfig{
			Backend: "memory",
		},
	}
}

// Load reads path over the defaults, then applies .env and the process
// environment. A missing file at path is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	var errs []error
	envInt("PORT", &c.Server.Port, &errs)
	envInt("METRICS_PORT", &c.Server.MetricsPort, &errs)
	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)
	envString("DATABASE_DRIVER", &c.Database.Driver)
	envString("DATABASE_URL", &c.Database.URL)
	envString("AI_PROVIDER", &c.AI.Provider)
	envString("OPENAI_API_KEY", &c.AI.APIKey)
	envString("OPENAI_MODEL", &c.AI.Model)
	envString("OPENAI_BASE_URL", &c.AI.BaseURL)
	envString("AZURE_OPENAI_API_VERSION", &c.AI.APIVersion)
	envBool("AI_ENABLED", &c.AI.Enabled, &errs)
	envInt("AI_TIMEOUT_MS", &c.AI.TimeoutMS, &errs)
	envInt("AI_CACHE_TTL_MS", &c.AI.CacheTTLMS, &errs)
	envString("CACHE_BACKEND", &c.Cache.Backend)
	envString("REDIS_URL", &c.Cache.RedisURL)
	envString("JWT_SECRET", &c.Auth.JWTSecret)

	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	return errors.Join(errs...)
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}
	if c.AI.TimeoutMS <= 0 {
		return fmt.Errorf("ai timeout must be positive, got %dms", c.AI.TimeoutMS)
	}
	if c.AI.CacheTTLMS < 0 {
		return fmt.Errorf("ai cache ttl must not be negative, got %dms", c.AI.CacheTTLMS)
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	return nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func envInt(key string, dst *int, errs *[]error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func envBool(key string, dst *bool, errs *[]error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
