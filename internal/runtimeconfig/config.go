package runtimeconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrTemplatesPathRequired    = errors.New("sections config: templates path is required")
	ErrTemplatesMaxDepthInvalid = errors.New("sections config: templates max depth must be positive")
	ErrRichTextLimitInvalid     = errors.New("sections config: rich text limits must be zero or positive")
	ErrStorageProviderUnknown   = errors.New("sections config: storage provider is invalid")
	ErrStorageDSNRequired       = errors.New("sections config: storage dsn is required for sql providers")
	ErrCacheTTLInvalid          = errors.New("sections config: cache ttl must be positive when cache is enabled")
	ErrLoggingProviderUnknown   = errors.New("sections config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("sections config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("sections config: logging format is invalid")
	ErrMetricsNamespaceInvalid  = errors.New("sections config: metrics namespace is invalid")
)

// Storage providers.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config aggregates every runtime option of the sections module.
type Config struct {
	Templates TemplatesConfig `yaml:"templates"`
	RichText  RichTextConfig  `yaml:"rich_text"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// TemplatesConfig locates the template catalog.
type TemplatesConfig struct {
	Path                   string `yaml:"path"`
	Watch                  bool   `yaml:"watch"`
	MaxDepth               int    `yaml:"max_depth"`
	UnrestrictedEmptySlots bool   `yaml:"unrestricted_empty_slots"`
}

// RichTextConfig holds the persistence guards. Zero disables a guard.
type RichTextConfig struct {
	MaxBytes      int `yaml:"max_bytes"`
	MaxCharacters int `yaml:"max_characters"`
}

// StorageConfig selects where sections are kept.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	DSN      string `yaml:"dsn"`
	Migrate  bool   `yaml:"migrate"`
}

// CacheConfig wraps sql repositories with go-repository-cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// LoggingConfig picks a logger provider. An empty provider disables logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// MetricsConfig toggles the Prometheus recorder.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// DefaultConfig returns an in-memory setup reading templates from ./templates.
func DefaultConfig() Config {
	return Config{
		Templates: TemplatesConfig{
			Path:     "templates",
			MaxDepth: 4,
		},
		RichText: RichTextConfig{
			MaxBytes:      65535,
			MaxCharacters: 20000,
		},
		Storage: StorageConfig{
			Provider: StorageMemory,
		},
		Cache: CacheConfig{
			TTL: time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Namespace: "sections",
		},
	}
}

// Load reads a YAML file over DefaultConfig and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over DefaultConfig. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Templates.Path) == "" {
		return ErrTemplatesPathRequired
	}
	if cfg.Templates.MaxDepth <= 0 {
		return ErrTemplatesMaxDepthInvalid
	}
	if cfg.RichText.MaxBytes < 0 || cfg.RichText.MaxCharacters < 0 {
		return ErrRichTextLimitInvalid
	}

	switch provider := normalize(cfg.Storage.Provider); provider {
	case "", StorageMemory:
	case StorageSQLite, StoragePostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, provider)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}

	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}

	if provider := normalize(cfg.Logging.Provider); provider != "" {
		if provider != "console" && provider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := normalize(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := normalize(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}

	if cfg.Metrics.Enabled && !isMetricName(cfg.Metrics.Namespace) {
		return fmt.Errorf("%w: %q", ErrMetricsNamespaceInvalid, cfg.Metrics.Namespace)
	}
	return nil
}

// StorageProvider returns the normalized provider, defaulting to memory.
func (cfg Config) StorageProvider() string {
	if provider := normalize(cfg.Storage.Provider); provider != "" {
		return provider
	}
	return StorageMemory
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch format {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

// isMetricName accepts Prometheus namespace characters; blank is allowed.
func isMetricName(name string) bool {
	for index, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && index > 0:
		default:
			return false
		}
	}
	return true
}
