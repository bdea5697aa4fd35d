package sections_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-sections/internal/richtext"
	"github.com/goliatone/go-sections/internal/sections"
	"github.com/goliatone/go-sections/pkg/testsupport"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
)

func TestSectionsService_WithBunStorageAndCache(t *testing.T) {
	ctx := context.Background()
	bunDB := testsupport.NewBunDB(t, (*sections.Section)(nil))

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	repo := sections.NewBunSectionRepositoryWithCache(bunDB, cacheService, repocache.NewDefaultKeySerializer())
	svc := sections.NewService(repo, testCatalog(t))

	created, err := svc.Create(ctx, sections.CreateSectionInput{
		PageID:      pageID,
		TemplateKey: "hero_primary",
		Slot:        ptr("hero"),
		Anchor:      ptr("Intro"),
		Data:        map[string]any{"title": "Hello", "body": "Rich body"},
	})
	if err != nil {
		t.Fatalf("create section: %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := svc.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("cached get section: %v", err)
		}
		if got.AnchorValue() != "intro" {
			t.Fatalf("expected anchor to round trip got %q", got.AnchorValue())
		}
		body, _ := got.Data["body"].(string)
		if !richtext.IsDocument(body) {
			t.Fatalf("expected stored document got %q", body)
		}
		if got.PlainText["body"] != "Rich body" {
			t.Fatalf("expected plain text to round trip got %v", got.PlainText)
		}
	}

	listed, err := svc.ListForPage(ctx, sections.ListSectionsInput{PageID: pageID})
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(listed) != 1 || listed[0].Data["layout"] != "wide" {
		t.Fatalf("expected one resolved section with defaults got %+v", listed)
	}
}

func TestSectionsService_WithBunStorage(t *testing.T) {
	ctx := context.Background()
	bunDB := testsupport.NewBunDB(t, (*sections.Section)(nil))
	svc := sections.NewService(sections.NewBunSectionRepository(bunDB), testCatalog(t))

	later, err := svc.Create(ctx, sections.CreateSectionInput{
		PageID:      pageID,
		TemplateKey: "spacer",
		Position:    3,
	})
	if err != nil {
		t.Fatalf("create later: %v", err)
	}
	earlier, err := svc.Create(ctx, sections.CreateSectionInput{
		PageID:      pageID,
		TemplateKey: "spacer",
		Position:    1,
	})
	if err != nil {
		t.Fatalf("create earlier: %v", err)
	}

	listed, err := svc.ListForPage(ctx, sections.ListSectionsInput{PageID: pageID})
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(listed) != 2 || listed[0].Section.ID != earlier.ID {
		t.Fatalf("expected sections ordered by position")
	}

	updated, err := svc.Update(ctx, sections.UpdateSectionInput{ID: later.ID, Position: ptr(0), IsActive: ptr(false)})
	if err != nil {
		t.Fatalf("update section: %v", err)
	}
	if updated.Position != 0 || updated.IsActive {
		t.Fatalf("expected update to persist got %+v", updated)
	}

	listed, err = svc.ListForPage(ctx, sections.ListSectionsInput{PageID: pageID})
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected inactive section to be hidden got %d", len(listed))
	}

	if err := svc.Delete(ctx, later.ID); err != nil {
		t.Fatalf("delete section: %v", err)
	}
	var notFound *sections.NotFoundError
	if _, err := svc.Get(ctx, later.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError got %v", err)
	}
}

func TestSectionRecordRepositoryResolvesByIdentifier(t *testing.T) {
	ctx := context.Background()
	bunDB := testsupport.NewBunDB(t, (*sections.Section)(nil))
	repo := sections.NewSectionRecordRepository(bunDB)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	record := &sections.Section{
		ID:          uuid.New(),
		PageID:      pageID,
		TemplateKey: "spacer",
		IsActive:    true,
		Data:        map[string]any{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := repo.Create(ctx, record); err != nil {
		t.Fatalf("create record: %v", err)
	}

	got, err := repo.GetByIdentifier(ctx, record.ID.String())
	if err != nil {
		t.Fatalf("get by identifier: %v", err)
	}
	if got.ID != record.ID || got.TemplateKey != "spacer" {
		t.Fatalf("unexpected record %+v", got)
	}
}
