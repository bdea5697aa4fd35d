package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-sections/pkg/interfaces"
)

const (
	rootModule     = "sections"
	templateModule = "sections.templates"
	catalogModule  = "sections.catalog"
	composeModule  = "sections.compose"
	commandsModule = "sections.commands"
)

const (
	fieldTemplateKey = "template_key"
	fieldCatalogPath = "catalog_path"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// TemplatesLogger returns the logger namespace reserved for registry construction.
func TemplatesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, templateModule)
}

// CatalogLogger returns the logger namespace reserved for catalog loading and reloads.
func CatalogLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, catalogModule)
}

// ComposeLogger returns the logger namespace reserved for section composition.
func ComposeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, composeModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithTemplateKey annotates the logger with the template key being processed.
func WithTemplateKey(logger interfaces.Logger, key string) interfaces.Logger {
	if trimmed := strings.TrimSpace(key); trimmed != "" {
		return WithFields(logger, map[string]any{fieldTemplateKey: trimmed})
	}
	return logger
}

// WithCatalogPath annotates the logger with the catalog source path.
func WithCatalogPath(logger interfaces.Logger, path string) interfaces.Logger {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return WithFields(logger, map[string]any{fieldCatalogPath: trimmed})
	}
	return logger
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

// WithFields attaches structured fields when the logger supports the
// FieldsLogger extension and returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}
