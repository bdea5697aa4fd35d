package templates_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-sections/internal/identity"
	"github.com/goliatone/go-sections/internal/templates"
)

func heroCatalog() []templates.ConfigEntry {
	return []templates.ConfigEntry{
		{
			Key:          "hero",
			Label:        "Hero",
			AllowedSlots: []string{"header", "main"},
			Fields: []templates.FieldConfig{
				{Name: "title", Type: "string", Required: true, Validation: "min:3|max:120"},
				{Name: "body", Type: "rich_text"},
				{Name: "columns", Type: "integer", Default: float64(2), Validation: []any{"between:1,4"}},
			},
		},
		{
			Key:          "faq",
			AllowedSlots: []string{"main"},
			Fields: []templates.FieldConfig{
				{
					Name: "items",
					Type: "collection",
					ItemFields: []templates.FieldConfig{
						{Name: "question", Type: "string", Validation: "required"},
						{Name: "answer", Type: "rich_text"},
					},
				},
			},
		},
		{Key: "divider"},
	}
}

func mustRegistry(t *testing.T, opts ...templates.RegistryOption) *templates.Registry {
	t.Helper()
	reg, err := templates.FromConfig(heroCatalog(), opts...)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	return reg
}

func TestFromConfigBuildsDefinitionsInOrder(t *testing.T) {
	reg := mustRegistry(t)

	if reg.Len() != 3 {
		t.Fatalf("expected 3 definitions got %d", reg.Len())
	}
	if got := reg.Keys(); !reflect.DeepEqual(got, []string{"hero", "faq", "divider"}) {
		t.Fatalf("unexpected key order %v", got)
	}

	hero, err := reg.Get("hero")
	if err != nil {
		t.Fatalf("get hero: %v", err)
	}
	if hero.ID != identity.TemplateUUID("hero") {
		t.Fatalf("expected deterministic id got %s", hero.ID)
	}
	title, ok := hero.Field("title")
	if !ok || !title.Required || title.Type != templates.FieldString {
		t.Fatalf("unexpected title field %+v", title)
	}
	if !reflect.DeepEqual(title.Validation, []string{"min:3", "max:120"}) {
		t.Fatalf("unexpected title tokens %v", title.Validation)
	}
	columns, _ := hero.Field("columns")
	if columns.Default != int64(2) {
		t.Fatalf("expected integer default normalised to int64 got %#v", columns.Default)
	}

	divider, _ := reg.Find("divider")
	if divider.Label != "divider" {
		t.Fatalf("expected label to fall back to key got %q", divider.Label)
	}
}

func TestFromConfigFoldsPresenceTokens(t *testing.T) {
	reg := mustRegistry(t)
	faq, _ := reg.Find("faq")
	items, _ := faq.Field("items")
	question, ok := items.ItemField("question")
	if !ok {
		t.Fatalf("expected question item field")
	}
	if !question.Required {
		t.Fatalf("expected required token to set Required")
	}
	if len(question.Validation) != 0 {
		t.Fatalf("expected presence tokens to be dropped got %v", question.Validation)
	}
}

func TestFromConfigRejectsBadEntries(t *testing.T) {
	cases := []struct {
		name    string
		entries []templates.ConfigEntry
		want    error
	}{
		{
			name:    "empty key",
			entries: []templates.ConfigEntry{{Key: "  "}},
			want:    templates.ErrInvalidTemplate,
		},
		{
			name:    "duplicate key",
			entries: []templates.ConfigEntry{{Key: "hero"}, {Key: "hero"}},
			want:    templates.ErrDuplicateTemplateKey,
		},
		{
			name:    "padded key",
			entries: []templates.ConfigEntry{{Key: "a"}, {Key: " a"}},
			want:    templates.ErrInvalidTemplate,
		},
		{
			name:    "unknown type",
			entries: []templates.ConfigEntry{{Key: "x", Fields: []templates.FieldConfig{{Name: "a", Type: "date"}}}},
			want:    templates.ErrMalformedTemplate,
		},
		{
			name:    "duplicate field",
			entries: []templates.ConfigEntry{{Key: "x", Fields: []templates.FieldConfig{{Name: "a", Type: "string"}, {Name: "a", Type: "text"}}}},
			want:    templates.ErrMalformedTemplate,
		},
		{
			name:    "blank field name",
			entries: []templates.ConfigEntry{{Key: "x", Fields: []templates.FieldConfig{{Type: "string"}}}},
			want:    templates.ErrMalformedTemplate,
		},
		{
			name:    "collection without items",
			entries: []templates.ConfigEntry{{Key: "x", Fields: []templates.FieldConfig{{Name: "a", Type: "collection"}}}},
			want:    templates.ErrMalformedTemplate,
		},
		{
			name: "item fields on scalar",
			entries: []templates.ConfigEntry{{Key: "x", Fields: []templates.FieldConfig{{
				Name: "a", Type: "string", ItemFields: []templates.FieldConfig{{Name: "b", Type: "string"}},
			}}}},
			want: templates.ErrMalformedTemplate,
		},
		{
			name:    "incompatible default",
			entries: []templates.ConfigEntry{{Key: "x", Fields: []templates.FieldConfig{{Name: "a", Type: "integer", Default: "two"}}}},
			want:    templates.ErrMalformedTemplate,
		},
		{
			name:    "fractional integer default",
			entries: []templates.ConfigEntry{{Key: "x", Fields: []templates.FieldConfig{{Name: "a", Type: "integer", Default: 1.5}}}},
			want:    templates.ErrMalformedTemplate,
		},
		{
			name:    "unknown token",
			entries: []templates.ConfigEntry{{Key: "x", Fields: []templates.FieldConfig{{Name: "a", Type: "string", Validation: "shiny"}}}},
			want:    templates.ErrMalformedTemplate,
		},
		{
			name:    "inapplicable token",
			entries: []templates.ConfigEntry{{Key: "x", Fields: []templates.FieldConfig{{Name: "a", Type: "boolean", Validation: "email"}}}},
			want:    templates.ErrMalformedTemplate,
		},
		{
			name:    "negative length",
			entries: []templates.ConfigEntry{{Key: "x", Fields: []templates.FieldConfig{{Name: "a", Type: "string", Validation: "min:-1"}}}},
			want:    templates.ErrMalformedTemplate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg, err := templates.FromConfig(tc.entries)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v got %v", tc.want, err)
			}
			if reg != nil {
				t.Fatalf("expected no registry on failure")
			}
		})
	}
}

func TestFromConfigErrorNamesField(t *testing.T) {
	_, err := templates.FromConfig([]templates.ConfigEntry{{
		Key: "faq",
		Fields: []templates.FieldConfig{{
			Name:       "items",
			Type:       "collection",
			ItemFields: []templates.FieldConfig{{Name: "answer", Type: "html"}},
		}},
	}})
	var defErr *templates.DefinitionError
	if !errors.As(err, &defErr) {
		t.Fatalf("expected DefinitionError got %v", err)
	}
	if defErr.Key != "faq" || defErr.Field != "items.*.answer" {
		t.Fatalf("unexpected error location key=%q field=%q", defErr.Key, defErr.Field)
	}
}

func TestFromConfigAllowsNegativeIntegerBounds(t *testing.T) {
	_, err := templates.FromConfig([]templates.ConfigEntry{{
		Key:    "temp",
		Fields: []templates.FieldConfig{{Name: "celsius", Type: "integer", Validation: "min:-40"}},
	}})
	if err != nil {
		t.Fatalf("expected negative integer bound to load: %v", err)
	}
}

func TestFromConfigEnforcesMaxDepth(t *testing.T) {
	nested := templates.FieldConfig{Name: "leaf", Type: "string"}
	for i := 0; i < 3; i++ {
		nested = templates.FieldConfig{Name: "level", Type: "collection", ItemFields: []templates.FieldConfig{nested}}
	}
	entries := []templates.ConfigEntry{{Key: "deep", Fields: []templates.FieldConfig{nested}}}

	if _, err := templates.FromConfig(entries); err != nil {
		t.Fatalf("expected depth 4 to load with defaults: %v", err)
	}
	if _, err := templates.FromConfig(entries, templates.WithMaxDepth(3)); !errors.Is(err, templates.ErrMalformedTemplate) {
		t.Fatalf("expected depth limit violation got %v", err)
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	reg := mustRegistry(t)
	_, err := reg.Get("missing")
	if !errors.Is(err, templates.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate got %v", err)
	}
	if _, ok := reg.Find("missing"); ok {
		t.Fatalf("expected find to miss")
	}
	if reg.Has(" hero ") {
		t.Fatalf("expected keys to match exactly")
	}
	if _, err := reg.Get(" hero "); !errors.Is(err, templates.ErrUnknownTemplate) {
		t.Fatalf("expected padded key to be unknown got %v", err)
	}
}

func TestRegistryForSlot(t *testing.T) {
	keys := func(defs []*templates.Definition) []string {
		out := []string{}
		for _, def := range defs {
			out = append(out, def.Key)
		}
		return out
	}

	strict := mustRegistry(t)
	if got := keys(strict.ForSlot("main")); !reflect.DeepEqual(got, []string{"hero", "faq"}) {
		t.Fatalf("unexpected strict main templates %v", got)
	}
	if got := keys(strict.ForSlot("footer")); len(got) != 0 {
		t.Fatalf("expected no footer templates got %v", got)
	}

	open := mustRegistry(t, templates.WithSlotPolicy(templates.SlotPolicyUnrestricted))
	if got := keys(open.ForSlot("footer")); !reflect.DeepEqual(got, []string{"divider"}) {
		t.Fatalf("unexpected unrestricted footer templates %v", got)
	}
	if open.SlotPolicy() != templates.SlotPolicyUnrestricted {
		t.Fatalf("expected unrestricted policy")
	}
}

func TestRegistryAllReturnsCopy(t *testing.T) {
	reg := mustRegistry(t)
	all := reg.All()
	all[0] = nil
	if reg.All()[0] == nil {
		t.Fatalf("expected All to return a private slice")
	}
}

func TestDefinitionHelpers(t *testing.T) {
	reg := mustRegistry(t)
	hero, _ := reg.Find("hero")

	if got := hero.Defaults(); !reflect.DeepEqual(got, map[string]any{"columns": int64(2)}) {
		t.Fatalf("unexpected defaults %v", got)
	}
	if !hero.AllowsSlot("", templates.SlotPolicyStrict) {
		t.Fatalf("expected empty slot to be allowed")
	}
	if hero.AllowsSlot("footer", templates.SlotPolicyUnrestricted) {
		t.Fatalf("expected listed slots to be honoured under any policy")
	}

	faq, _ := reg.Find("faq")
	if got := faq.RichTextPaths(); !reflect.DeepEqual(got, []string{"items.*.answer"}) {
		t.Fatalf("unexpected rich text paths %v", got)
	}

	clone := hero.Clone()
	clone.Fields[0].Name = "changed"
	if hero.Fields[0].Name != "title" {
		t.Fatalf("expected clone to be independent")
	}
}

func TestStaticProvider(t *testing.T) {
	reg := mustRegistry(t)
	if templates.Static(reg).Registry() != reg {
		t.Fatalf("expected static provider to return its registry")
	}
	if templates.Static(nil).Registry().Len() != 0 {
		t.Fatalf("expected nil registry to become empty")
	}
}
