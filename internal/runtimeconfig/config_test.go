package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-sections/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if cfg.StorageProvider() != runtimeconfig.StorageMemory {
		t.Fatalf("expected memory storage by default, got %s", cfg.StorageProvider())
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"templates path", func(c *runtimeconfig.Config) { c.Templates.Path = " " }, runtimeconfig.ErrTemplatesPathRequired},
		{"max depth", func(c *runtimeconfig.Config) { c.Templates.MaxDepth = 0 }, runtimeconfig.ErrTemplatesMaxDepthInvalid},
		{"rich text", func(c *runtimeconfig.Config) { c.RichText.MaxBytes = -1 }, runtimeconfig.ErrRichTextLimitInvalid},
		{"storage provider", func(c *runtimeconfig.Config) { c.Storage.Provider = "mongo" }, runtimeconfig.ErrStorageProviderUnknown},
		{"storage dsn", func(c *runtimeconfig.Config) { c.Storage.Provider = "sqlite" }, runtimeconfig.ErrStorageDSNRequired},
		{"cache ttl", func(c *runtimeconfig.Config) { c.Cache.Enabled = true; c.Cache.TTL = 0 }, runtimeconfig.ErrCacheTTLInvalid},
		{"logging provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"logging level", func(c *runtimeconfig.Config) { c.Logging.Provider = "console"; c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"logging format", func(c *runtimeconfig.Config) { c.Logging.Provider = "gologger"; c.Logging.Format = "xml" }, runtimeconfig.ErrLoggingFormatInvalid},
		{"metrics namespace", func(c *runtimeconfig.Config) { c.Metrics.Enabled = true; c.Metrics.Namespace = "9bad-name" }, runtimeconfig.ErrMetricsNamespaceInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.yaml")
	body := `
templates:
  path: ./catalog
  watch: true
storage:
  provider: sqlite
  dsn: "file:sections.db"
  migrate: true
cache:
  enabled: true
  ttl: 30s
logging:
  provider: gologger
  format: json
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Templates.Path != "./catalog" || !cfg.Templates.Watch {
		t.Fatalf("unexpected templates config %+v", cfg.Templates)
	}
	if cfg.Templates.MaxDepth != 4 || cfg.RichText.MaxCharacters != 20000 {
		t.Fatalf("expected defaults to survive, got %+v %+v", cfg.Templates, cfg.RichText)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Fatalf("expected 30s ttl, got %s", cfg.Cache.TTL)
	}
	if cfg.StorageProvider() != runtimeconfig.StorageSQLite {
		t.Fatalf("expected sqlite, got %s", cfg.StorageProvider())
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := runtimeconfig.Parse([]byte("templates:\n  pth: x\n")); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
	cfg, err := runtimeconfig.Parse(nil)
	if err != nil {
		t.Fatalf("expected empty document to yield defaults: %v", err)
	}
	if cfg.Templates.Path != "templates" {
		t.Fatalf("unexpected defaults %+v", cfg.Templates)
	}
}
