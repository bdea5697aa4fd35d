package console_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-sections/internal/logging"
	"github.com/goliatone/go-sections/internal/logging/console"
)

func TestConsoleLoggerWritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		Clock:    func() time.Time { return fixed },
		MinLevel: console.LevelDebug,
	})

	logger := logging.ModuleLogger(provider, "sections.catalog")
	logger.Info("catalog reloaded", "templates", 3, "err", errors.New("none here"))

	got := strings.TrimSpace(buf.String())
	want := `2026-03-04T05:06:07Z INFO "catalog reloaded" err="none here" logger=sections.catalog module=sections.catalog templates=3`
	if got != want {
		t.Fatalf("unexpected line\n got: %s\nwant: %s", got, want)
	}
}

func TestConsoleLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: console.LevelWarn})
	logger := provider.GetLogger("x")

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown", "dangling")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected lower levels to be dropped got %q", out)
	}
	if !strings.Contains(out, "WARN shown dangling=(missing)") {
		t.Fatalf("expected warn line with dangling key got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"":      console.LevelInfo,
		"debug": console.LevelDebug,
		" WARN": console.LevelWarn,
		"fatal": console.LevelFatal,
	}
	for input, want := range cases {
		got, err := console.ParseLevel(input)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := console.ParseLevel("loud"); err == nil {
		t.Fatalf("expected unknown level to fail")
	}
}
