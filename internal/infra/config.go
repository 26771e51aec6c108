package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents application configuration. Values come from an optional
// YAML file named by CONFIG_FILE, overridden by environment variables. File
// keys are the lower-cased environment names (database_url, port, ...).
type Config struct {
	AppEnv                 string
	Port                   string
	DatabaseURL            string
	DatabaseMaxConns       int32
	JWTSecret              string
	JWTAudience            string
	GeminiAPIKey           string
	GeminiBaseURL          string
	GeminiModel            string
	GeminiImageModel       string
	GeminiImageAspectRatio string
	GeminiTimeout          time.Duration
	RedisURL               string
	GeoIPDBPath            string
	DefaultLocale          string
	CORSAllowedOrigins     []string
	MasterKeyCacheTTL      time.Duration
	HTTPReadTimeout        time.Duration
	HTTPWriteTimeout       time.Duration
	HTTPIdleTimeout        time.Duration
	RateLimitPerMin        int
}

// LoadConfig loads configuration and applies defaults where needed.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:                 getString(k, "app_env", "development"),
		Port:                   getString(k, "port", "8080"),
		DatabaseURL:            getString(k, "database_url", ""),
		DatabaseMaxConns:       int32(getInt(k, "database_max_conns", 10)),
		JWTSecret:              getString(k, "jwt_secret", ""),
		JWTAudience:            getString(k, "jwt_audience", "authenticated"),
		GeminiAPIKey:           getString(k, "gemini_api_key", getString(k, "api_key", "")),
		GeminiBaseURL:          getString(k, "gemini_base_url", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:            getString(k, "gemini_model", "gemini-3-flash-preview"),
		GeminiImageModel:       getString(k, "gemini_image_model", "gemini-2.5-flash-image"),
		GeminiImageAspectRatio: getString(k, "gemini_image_aspect_ratio", "16:9"),
		GeminiTimeout:          time.Second * time.Duration(getInt(k, "gemini_timeout_seconds", 60)),
		RedisURL:               getString(k, "redis_url", ""),
		GeoIPDBPath:            getString(k, "geoip_db_path", ""),
		DefaultLocale:          getString(k, "default_locale", "en"),
		CORSAllowedOrigins:     splitList(getString(k, "cors_allowed_origins", "")),
		MasterKeyCacheTTL:      time.Second * time.Duration(getInt(k, "master_key_cache_seconds", 30)),
		HTTPReadTimeout:        time.Second * time.Duration(getInt(k, "http_read_timeout_seconds", 15)),
		HTTPWriteTimeout:       time.Second * time.Duration(getInt(k, "http_write_timeout_seconds", 90)),
		HTTPIdleTimeout:        time.Second * time.Duration(getInt(k, "http_idle_timeout_seconds", 60)),
		RateLimitPerMin:        getInt(k, "rate_limit_per_minute", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getString(k *koanf.Koanf, key, fallback string) string {
	if v := strings.TrimSpace(k.String(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(k *koanf.Koanf, key string, fallback int) int {
	if v := strings.TrimSpace(k.String(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
