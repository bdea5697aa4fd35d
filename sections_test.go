package sections_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	sections "github.com/goliatone/go-sections"
)

func writeCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := `
- key: faq
  label: FAQ
  allowed_slots: [main]
  fields:
    - name: heading
      type: string
      validation: required|max:60
    - name: items
      type: collection
      item_fields:
        - name: question
          type: string
          required: true
        - name: answer
          type: rich_text
`
	if err := os.WriteFile(filepath.Join(dir, "faq.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return dir
}

func TestModuleEndToEnd(t *testing.T) {
	cfg := sections.DefaultConfig()
	cfg.Templates.Path = writeCatalog(t)
	cfg.Storage.Provider = "sqlite"
	cfg.Storage.DSN = "file:facade_end_to_end?mode=memory&cache=shared"
	cfg.Storage.Migrate = true

	module, err := sections.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })

	ctx := context.Background()
	pageID := uuid.New()
	section, err := module.Sections().Create(ctx, sections.CreateSectionInput{
		PageID:      pageID,
		TemplateKey: "faq",
		Data: map[string]any{
			"heading": "Questions",
			"items": []any{
				map[string]any{"question": "Why?", "answer": "Because."},
			},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if section.PlainText["items.0.answer"] != "Because." {
		t.Fatalf("unexpected plain text %v", section.PlainText)
	}

	resolved, err := module.Sections().ListForPage(ctx, sections.ListSectionsInput{PageID: pageID})
	if err != nil || len(resolved) != 1 {
		t.Fatalf("expected one section, got %d (%v)", len(resolved), err)
	}
	if resolved[0].Definition.Key != "faq" {
		t.Fatalf("expected faq definition, got %s", resolved[0].Definition.Key)
	}
}

func TestModuleValidator(t *testing.T) {
	cfg := sections.DefaultConfig()
	cfg.Templates.Path = writeCatalog(t)

	module, err := sections.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })

	validator := module.Validator()
	set, err := validator.Rules("faq")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if !set.Strict || len(set.Rules) == 0 {
		t.Fatalf("expected strict rule set, got %+v", set)
	}

	err = validator.Validate("faq", map[string]any{"items": []any{map[string]any{}}})
	var payloadErr *sections.PayloadValidationError
	if !errors.As(err, &payloadErr) {
		t.Fatalf("expected payload validation error, got %v", err)
	}
	locations := map[string]bool{}
	for _, issue := range payloadErr.Issues {
		locations[issue.Location] = true
	}
	if !locations["data.heading"] || !locations["data.items.0.question"] {
		t.Fatalf("unexpected issues %v", payloadErr.Issues)
	}

	if err := validator.Validate("nope", nil); !errors.Is(err, sections.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}

	schema, err := validator.Schema("faq")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if schema["type"] != "object" {
		t.Fatalf("expected object schema, got %v", schema["type"])
	}
}

func TestRichTextHelpers(t *testing.T) {
	doc := sections.NormalizeRichText("hello")
	if sections.ExtractPlainText(doc) != "hello" {
		t.Fatalf("expected round trip through document")
	}
	if sections.NormalizeRichText("  ") != sections.EmptyRichTextDocument {
		t.Fatalf("expected empty document for blank input")
	}
	if got := sections.ExtractPlainText(sections.MarkdownToRichText([]byte("# Title"))); got != "Title" {
		t.Fatalf("unexpected markdown plain text %q", got)
	}

	_, err := sections.PrepareRichText("far too long", "body", sections.RichTextLimits{MaxCharacters: 3})
	if !errors.Is(err, sections.ErrTooManyCharacters) {
		t.Fatalf("expected ErrTooManyCharacters, got %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := sections.DefaultConfig()
	cfg.Storage.Provider = "postgres"
	if err := cfg.Validate(); !errors.Is(err, sections.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}
