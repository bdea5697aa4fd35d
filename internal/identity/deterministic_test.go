package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestTemplateUUIDIsStable(t *testing.T) {
	first := TemplateUUID("hero_primary")
	second := TemplateUUID(" hero_primary ")
	if first == uuid.Nil {
		t.Fatal("expected non-nil id")
	}
	if first != second {
		t.Fatalf("expected stable id, got %s and %s", first, second)
	}
	if other := TemplateUUID("rich_text"); other == first {
		t.Fatalf("expected distinct ids for distinct keys, both %s", first)
	}
}

func TestTemplateUUIDBlankKey(t *testing.T) {
	if got := TemplateUUID("   "); got != uuid.Nil {
		t.Fatalf("expected nil id for blank key, got %s", got)
	}
	if got := UUID(""); got != uuid.Nil {
		t.Fatalf("expected nil id for blank key, got %s", got)
	}
}
