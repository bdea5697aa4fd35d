package sections

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewSectionRecordRepository creates the generic repository for Section records.
func NewSectionRecordRepository(db *bun.DB) repository.Repository[*Section] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Section]{
		NewRecord:          func() *Section { return &Section{} },
		GetID:              func(section *Section) uuid.UUID { return section.ID },
		SetID:              func(section *Section, id uuid.UUID) { section.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(section *Section) string { return section.ID.String() },
	})
}

// BunSectionRepository implements SectionRepository with optional caching.
type BunSectionRepository struct {
	repo repository.Repository[*Section]
}

var _ SectionRepository = (*BunSectionRepository)(nil)

// NewBunSectionRepository creates a section repository without caching.
func NewBunSectionRepository(db *bun.DB) *BunSectionRepository {
	return NewBunSectionRepositoryWithCache(db, nil, nil)
}

// NewBunSectionRepositoryWithCache creates a section repository with caching services.
func NewBunSectionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunSectionRepository {
	base := NewSectionRecordRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunSectionRepository{repo: base}
}

func (r *BunSectionRepository) Create(ctx context.Context, section *Section) (*Section, error) {
	record, err := r.repo.Create(ctx, section)
	if err != nil {
		return nil, mapRepositoryError(err, sectionResource, section.ID.String())
	}
	return record, nil
}

func (r *BunSectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Section, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, sectionResource, id.String())
	}
	return record, nil
}

func (r *BunSectionRepository) ListByPage(ctx context.Context, pageID uuid.UUID) ([]*Section, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", pageID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.position ASC").OrderExpr("?TableAlias.created_at ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, sectionResource, pageID.String())
	}
	sortSections(records)
	return records, nil
}

func (r *BunSectionRepository) Update(ctx context.Context, section *Section) (*Section, error) {
	updated, err := r.repo.Update(ctx, section,
		repository.UpdateByID(section.ID.String()),
		repository.UpdateColumns(
			"template_key",
			"slot",
			"position",
			"anchor",
			"navigation_label",
			"is_active",
			"visible_from",
			"visible_until",
			"locale",
			"data",
			"plain_text",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, sectionResource, section.ID.String())
	}
	return updated, nil
}

func (r *BunSectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Section{ID: id}); err != nil {
		return mapRepositoryError(err, sectionResource, id.String())
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}
