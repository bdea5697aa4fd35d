// Package console writes leveled key=value log lines to an io.Writer.
package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-sections/pkg/interfaces"
)

// Level orders log severities.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "INFO"
}

// ParseLevel maps a level name to a Level. Blank input yields LevelInfo.
func ParseLevel(name string) (Level, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return LevelInfo, nil
	}
	for index, candidate := range levelNames {
		if candidate == name {
			return Level(index), nil
		}
	}
	return LevelInfo, fmt.Errorf("console: unknown level %q", name)
}

// Options configures the provider. Zero values write to stdout at INFO.
type Options struct {
	Writer   io.Writer
	Clock    func() time.Time
	MinLevel Level
}

type sink struct {
	mu       sync.Mutex
	writer   io.Writer
	clock    func() time.Time
	minLevel Level
}

// Provider hands out loggers that share one writer.
type Provider struct {
	sink *sink
}

var _ interfaces.LoggerProvider = (*Provider)(nil)

func NewProvider(opts Options) *Provider {
	s := &sink{writer: opts.Writer, clock: opts.Clock, minLevel: opts.MinLevel}
	if s.writer == nil {
		s.writer = os.Stdout
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return &Provider{sink: s}
}

func (p *Provider) GetLogger(name string) interfaces.Logger {
	fields := map[string]any{}
	if name = strings.TrimSpace(name); name != "" {
		fields["logger"] = name
	}
	return &logger{sink: p.sink, fields: fields}
}

type logger struct {
	sink   *sink
	fields map[string]any
}

var (
	_ interfaces.Logger       = (*logger)(nil)
	_ interfaces.FieldsLogger = (*logger)(nil)
)

func (l *logger) Trace(msg string, args ...any) { l.write(LevelTrace, msg, args) }
func (l *logger) Debug(msg string, args ...any) { l.write(LevelDebug, msg, args) }
func (l *logger) Info(msg string, args ...any)  { l.write(LevelInfo, msg, args) }
func (l *logger) Warn(msg string, args ...any)  { l.write(LevelWarn, msg, args) }
func (l *logger) Error(msg string, args ...any) { l.write(LevelError, msg, args) }
func (l *logger) Fatal(msg string, args ...any) { l.write(LevelFatal, msg, args) }

func (l *logger) WithContext(context.Context) interfaces.Logger {
	return l
}

func (l *logger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	merged := maps.Clone(l.fields)
	maps.Copy(merged, fields)
	return &logger{sink: l.sink, fields: merged}
}

func (l *logger) write(level Level, msg string, args []any) {
	if level < l.sink.minLevel {
		return
	}
	fields := maps.Clone(l.fields)
	for index := 0; index < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok || key == "" {
			key = "arg" + strconv.Itoa(index/2)
		}
		if index+1 == len(args) {
			fields[key] = "(missing)"
			break
		}
		fields[key] = args[index+1]
	}

	var line strings.Builder
	line.WriteString(l.sink.clock().UTC().Format(time.RFC3339))
	line.WriteByte(' ')
	line.WriteString(level.String())
	line.WriteByte(' ')
	line.WriteString(quote(msg))
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		line.WriteByte(' ')
		line.WriteString(key)
		line.WriteByte('=')
		line.WriteString(render(fields[key]))
	}
	line.WriteByte('\n')

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = io.WriteString(l.sink.writer, line.String())
}

func render(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return quote(v)
	case error:
		return quote(v.Error())
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return quote(v.String())
	default:
		return quote(fmt.Sprint(v))
	}
}

func quote(value string) string {
	if value == "" || strings.ContainsAny(value, " \t\n\"=") {
		return strconv.Quote(value)
	}
	return value
}
