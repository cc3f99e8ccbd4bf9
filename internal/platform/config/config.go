package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile           = ".env"
	defaultPort              = "8080"
	defaultReadTimeout       = 15 * time.Second
	defaultReadHeaderTimeout = 10 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
	defaultFeedURL           = "public/agrotern/data/products.json"
	defaultSiteRoot          = "/agrotern"
	defaultImageBase         = "/agrotern/img/"
	defaultPlaceholder       = "placeholder.png"
	defaultLocale            = "uk"
	defaultStorageBackend    = "memory"
	defaultRedisPrefix       = "storefront"
	defaultPublicDir         = "public"
	defaultLogLevel          = "info"
)

// Storage backend identifiers.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server     ServerConfig
	Storefront StorefrontConfig
	Storage    StorageConfig
	Session    SessionConfig
	Dev        DevConfig
	LogLevel   string
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// StorefrontConfig describes the product feed and asset layout.
type StorefrontConfig struct {
	FeedURL       string
	SiteRoot      string
	ImageBase     string
	Placeholder   string
	DefaultLocale string
	Locales       []string
	PublicDir     string
	PartialsURL   string
}

// StorageConfig selects the cart storage backend.
type StorageConfig struct {
	Backend  string
	RedisURL string
	Prefix   string
}

// SessionConfig controls the visitor cookie.
type SessionConfig struct {
	SigningKey string
	Secure     bool
}

// DevConfig toggles local development behaviour.
type DevConfig struct {
	Enabled      bool
	TemplatesDir string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables and explicit maps, in increasing order of precedence.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	port := stringWithDefault(lookup, "STOREFRONT_PORT", "")
	if port == "" {
		// Cloud Run style PORT is honoured when the dedicated variable is absent.
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}

	env := strings.ToLower(stringWithDefault(lookup, "STOREFRONT_ENV", "local"))

	cfg := Config{
		Server: ServerConfig{
			Port:              port,
			ReadTimeout:       durationWithDefault(lookup, "STOREFRONT_READ_TIMEOUT", defaultReadTimeout),
			ReadHeaderTimeout: durationWithDefault(lookup, "STOREFRONT_READ_HEADER_TIMEOUT", defaultReadHeaderTimeout),
			WriteTimeout:      durationWithDefault(lookup, "STOREFRONT_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:       durationWithDefault(lookup, "STOREFRONT_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout:   durationWithDefault(lookup, "STOREFRONT_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Storefront: StorefrontConfig{
			FeedURL:       stringWithDefault(lookup, "STOREFRONT_FEED_URL", defaultFeedURL),
			SiteRoot:      strings.TrimRight(stringWithDefault(lookup, "STOREFRONT_SITE_ROOT", defaultSiteRoot), "/"),
			ImageBase:     stringWithDefault(lookup, "STOREFRONT_IMAGE_BASE", defaultImageBase),
			Placeholder:   stringWithDefault(lookup, "STOREFRONT_IMAGE_PLACEHOLDER", defaultPlaceholder),
			DefaultLocale: strings.ToLower(stringWithDefault(lookup, "STOREFRONT_LOCALE", defaultLocale)),
			Locales:       csvWithDefault(lookup, "STOREFRONT_LOCALES", []string{"uk", "en"}),
			PublicDir:     stringWithDefault(lookup, "STOREFRONT_PUBLIC_DIR", defaultPublicDir),
			PartialsURL:   stringWithDefault(lookup, "STOREFRONT_PARTIALS_URL", ""),
		},
		Storage: StorageConfig{
			Backend:  strings.ToLower(stringWithDefault(lookup, "STOREFRONT_STORAGE_BACKEND", defaultStorageBackend)),
			RedisURL: stringWithDefault(lookup, "STOREFRONT_REDIS_URL", ""),
			Prefix:   stringWithDefault(lookup, "STOREFRONT_REDIS_PREFIX", defaultRedisPrefix),
		},
		Session: SessionConfig{
			SigningKey: stringWithDefault(lookup, "STOREFRONT_SESSION_SIGNING_KEY", ""),
			Secure:     boolWithDefault(lookup, "STOREFRONT_SESSION_SECURE", env == "prod"),
		},
		Dev: DevConfig{
			Enabled:      boolWithDefault(lookup, "STOREFRONT_DEV", false),
			TemplatesDir: stringWithDefault(lookup, "STOREFRONT_TEMPLATES_DIR", ""),
		},
		LogLevel: stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if strings.TrimSpace(cfg.Server.Port) == "" {
		missing = append(missing, "Server.Port")
	}
	if strings.TrimSpace(cfg.Storefront.FeedURL) == "" {
		missing = append(missing, "Storefront.FeedURL")
	}
	if !strings.HasSuffix(cfg.Storefront.ImageBase, "/") {
		missing = append(missing, "Storefront.ImageBase")
	}
	if len(cfg.Storefront.Locales) == 0 || !contains(cfg.Storefront.Locales, cfg.Storefront.DefaultLocale) {
		missing = append(missing, "Storefront.DefaultLocale")
	}
	switch cfg.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(cfg.Storage.RedisURL) == "" {
			missing = append(missing, "Storage.RedisURL")
		}
	default:
		missing = append(missing, "Storage.Backend")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		missing = append(missing, "Server.ShutdownTimeout")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string, fallback []string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		out := make([]string, len(fallback))
		copy(out, fallback)
		return out
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Addr returns the listen address. Ports are accepted as "8080" or ":8080".
func (s ServerConfig) Addr() string {
	if strings.HasPrefix(s.Port, ":") {
		return s.Port
	}
	if _, err := strconv.Atoi(s.Port); err == nil {
		return ":" + s.Port
	}
	return s.Port
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
