package sections

import "github.com/goliatone/go-sections/internal/runtimeconfig"

var (
	ErrTemplatesPathRequired    = runtimeconfig.ErrTemplatesPathRequired
	ErrTemplatesMaxDepthInvalid = runtimeconfig.ErrTemplatesMaxDepthInvalid
	ErrRichTextLimitInvalid     = runtimeconfig.ErrRichTextLimitInvalid
	ErrStorageProviderUnknown   = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid          = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrMetricsNamespaceInvalid  = runtimeconfig.ErrMetricsNamespaceInvalid
)

type (
	Config          = runtimeconfig.Config
	TemplatesConfig = runtimeconfig.TemplatesConfig
	RichTextConfig  = runtimeconfig.RichTextConfig
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
	MetricsConfig   = runtimeconfig.MetricsConfig
)

// DefaultConfig returns the module defaults: in-memory storage and a
// template catalog under ./templates.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML config file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
