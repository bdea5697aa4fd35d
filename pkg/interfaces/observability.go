// Package interfaces holds the contracts host applications implement to plug
// logging and metrics into the sections runtime.
package interfaces

import (
	"context"
	"time"
)

// Logger is the leveled logger every sections component writes to. Its method
// set matches github.com/goliatone/go-logger, so those loggers plug in as is.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out loggers by name, e.g. "sections.catalog".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can carry persistent fields.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

// Metrics records observations emitted by the template catalog, the validation
// layer, the rich-text pipeline and command handlers. Implementations must be
// safe for concurrent use.
type Metrics interface {
	// IncrementCatalogReload counts catalog rebuilds, labelled by outcome ("success" or "error").
	IncrementCatalogReload(outcome string)
	// IncrementValidationFailure counts rejected payloads for a template key.
	IncrementValidationFailure(templateKey string)
	// IncrementGuardRejection counts rich-text values rejected by a size guard ("bytes" or "characters").
	IncrementGuardRejection(guard string)
	// ObserveDocumentBytes records the normalized size of a persisted rich-text value.
	ObserveDocumentBytes(bytes int)
	// ObserveCommand records one command execution and its outcome status.
	ObserveCommand(command, status string, duration time.Duration)
}
