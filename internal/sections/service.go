package sections

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-sections/internal/logging"
	"github.com/goliatone/go-sections/internal/richtext"
	"github.com/goliatone/go-sections/internal/rules"
	"github.com/goliatone/go-sections/internal/templates"
	"github.com/goliatone/go-sections/internal/validation"
	"github.com/goliatone/go-sections/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// Service validates and normalizes section writes and resolves sections for reads.
type Service interface {
	Create(ctx context.Context, input CreateSectionInput) (*Section, error)
	Update(ctx context.Context, input UpdateSectionInput) (*Section, error)
	Get(ctx context.Context, id uuid.UUID) (*Section, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListForPage(ctx context.Context, input ListSectionsInput) ([]*ResolvedSection, error)
	Resolve(section *Section) (*ResolvedSection, error)
	TemplatesForSlot(slot string) []*templates.Definition
}

// CreateSectionInput describes a new section. IsActive defaults to true.
type CreateSectionInput struct {
	PageID          uuid.UUID
	TemplateKey     string
	Slot            *string
	Position        int
	Anchor          *string
	NavigationLabel *string
	IsActive        *bool
	VisibleFrom     *time.Time
	VisibleUntil    *time.Time
	Locale          *string
	Data            map[string]any
}

// UpdateSectionInput changes an existing section. Nil fields keep their
// current value; pointers to an empty string clear optional text fields.
// Changing TemplateKey without Data re-validates the stored data against the
// new template.
type UpdateSectionInput struct {
	ID              uuid.UUID
	TemplateKey     *string
	Slot            *string
	Position        *int
	Anchor          *string
	NavigationLabel *string
	IsActive        *bool
	VisibleFrom     *time.Time
	VisibleUntil    *time.Time
	ClearWindow     bool
	Locale          *string
	Data            map[string]any
}

// ListSectionsInput filters the sections of a page. Sections without a locale
// match every locale. Now defaults to the service clock.
type ListSectionsInput struct {
	PageID          uuid.UUID
	Locale          *string
	Slot            *string
	Now             *time.Time
	IncludeInactive bool
}

type IDGenerator func() uuid.UUID

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithPipeline sets the rich text pipeline applied to rich text fields.
func WithPipeline(pipeline *richtext.Pipeline) ServiceOption {
	return func(s *service) {
		if pipeline != nil {
			s.pipeline = pipeline
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records rejected payloads.
func WithMetrics(metrics interfaces.Metrics) ServiceOption {
	return func(s *service) {
		s.metrics = metrics
	}
}

// WithSlugNormalizer replaces the anchor normalizer.
func WithSlugNormalizer(normalizer slug.Normalizer) ServiceOption {
	return func(s *service) {
		if normalizer != nil {
			s.slugger = normalizer
		}
	}
}

type service struct {
	sections SectionRepository
	catalog  templates.Provider
	pipeline *richtext.Pipeline
	slugger  slug.Normalizer
	logger   interfaces.Logger
	metrics  interfaces.Metrics
	now      func() time.Time
	id       IDGenerator
}

// NewService builds the composition service. The catalog provider is asked
// for the current registry on every call so catalog reloads apply to the
// next request.
func NewService(repo SectionRepository, catalog templates.Provider, opts ...ServiceOption) Service {
	s := &service{
		sections: repo,
		catalog:  catalog,
		slugger:  slug.Default(),
		logger:   logging.NoOp(),
		now:      time.Now,
		id:       uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.pipeline == nil {
		s.pipeline = richtext.NewPipeline(richtext.DefaultLimits(), richtext.WithMetrics(s.metrics))
	}
	if s.catalog == nil {
		s.catalog = templates.Static(nil)
	}
	return s
}

func (s *service) Create(ctx context.Context, input CreateSectionInput) (*Section, error) {
	if input.PageID == uuid.Nil {
		return nil, ErrPageRequired
	}

	now := s.now().UTC()
	section := &Section{
		ID:              s.id(),
		PageID:          input.PageID,
		TemplateKey:     strings.TrimSpace(input.TemplateKey),
		Slot:            optionalText(input.Slot),
		Position:        input.Position,
		Anchor:          optionalText(input.Anchor),
		NavigationLabel: optionalText(input.NavigationLabel),
		IsActive:        true,
		VisibleFrom:     cloneTime(input.VisibleFrom),
		VisibleUntil:    cloneTime(input.VisibleUntil),
		Locale:          optionalText(input.Locale),
		Data:            cloneData(input.Data),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.IsActive != nil {
		section.IsActive = *input.IsActive
	}

	if err := s.prepare(ctx, section); err != nil {
		return nil, err
	}

	created, err := s.sections.Create(ctx, section)
	if err != nil {
		return nil, err
	}
	logging.WithTemplateKey(s.logger, created.TemplateKey).Info("section created", "section_id", created.ID, "page_id", created.PageID)
	return created, nil
}

func (s *service) Update(ctx context.Context, input UpdateSectionInput) (*Section, error) {
	if input.ID == uuid.Nil {
		return nil, ErrSectionIDRequired
	}
	section, err := s.sections.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.TemplateKey != nil {
		section.TemplateKey = strings.TrimSpace(*input.TemplateKey)
	}
	if input.Slot != nil {
		section.Slot = optionalText(input.Slot)
	}
	if input.Position != nil {
		section.Position = *input.Position
	}
	if input.Anchor != nil {
		section.Anchor = optionalText(input.Anchor)
	}
	if input.NavigationLabel != nil {
		section.NavigationLabel = optionalText(input.NavigationLabel)
	}
	if input.IsActive != nil {
		section.IsActive = *input.IsActive
	}
	if input.ClearWindow {
		section.VisibleFrom, section.VisibleUntil = nil, nil
	}
	if input.VisibleFrom != nil {
		section.VisibleFrom = cloneTime(input.VisibleFrom)
	}
	if input.VisibleUntil != nil {
		section.VisibleUntil = cloneTime(input.VisibleUntil)
	}
	if input.Locale != nil {
		section.Locale = optionalText(input.Locale)
	}
	if input.Data != nil {
		section.Data = cloneData(input.Data)
	}
	section.UpdatedAt = s.now().UTC()

	if err := s.prepare(ctx, section); err != nil {
		return nil, err
	}

	updated, err := s.sections.Update(ctx, section)
	if err != nil {
		return nil, err
	}
	logging.WithTemplateKey(s.logger, updated.TemplateKey).Info("section updated", "section_id", updated.ID)
	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Section, error) {
	if id == uuid.Nil {
		return nil, ErrSectionIDRequired
	}
	return s.sections.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrSectionIDRequired
	}
	if err := s.sections.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("section deleted", "section_id", id)
	return nil
}

func (s *service) ListForPage(ctx context.Context, input ListSectionsInput) ([]*ResolvedSection, error) {
	if input.PageID == uuid.Nil {
		return nil, ErrPageRequired
	}
	records, err := s.sections.ListByPage(ctx, input.PageID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if input.Now != nil {
		now = *input.Now
	}
	locale := strings.TrimSpace(deref(input.Locale))

	sortSections(records)
	out := make([]*ResolvedSection, 0, len(records))
	for _, record := range records {
		if input.Slot != nil && record.SlotName() != strings.TrimSpace(*input.Slot) {
			continue
		}
		if locale != "" && record.Locale != nil && record.LocaleCode() != locale {
			continue
		}
		if !input.IncludeInactive && (!record.IsActive || !record.VisibleAt(now)) {
			continue
		}
		resolved, err := s.Resolve(record)
		if err != nil {
			if errors.Is(err, templates.ErrUnknownTemplate) {
				logging.WithTemplateKey(s.logger, record.TemplateKey).Warn("skipping section with unregistered template", "section_id", record.ID)
				continue
			}
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

func (s *service) Resolve(section *Section) (*ResolvedSection, error) {
	if section == nil {
		return nil, ErrSectionIDRequired
	}
	definition, err := s.catalog.Registry().Get(section.TemplateKey)
	if err != nil {
		return nil, err
	}
	return &ResolvedSection{
		Section:    section,
		Definition: definition,
		Data:       applyDefaults(definition.Fields, section.Data),
	}, nil
}

func (s *service) TemplatesForSlot(slot string) []*templates.Definition {
	return s.catalog.Registry().ForSlot(slot)
}

// prepare runs every write check in order: template, slot, payload, rich
// text, anchor, visibility window and position.
func (s *service) prepare(ctx context.Context, section *Section) error {
	registry := s.catalog.Registry()
	definition, err := registry.Get(section.TemplateKey)
	if err != nil {
		s.reject(section.TemplateKey, "unknown template")
		return validation.UnknownTemplate(section.TemplateKey, err)
	}

	slot := section.SlotName()
	if !definition.AllowsSlot(slot, registry.SlotPolicy()) {
		s.reject(section.TemplateKey, "slot not allowed")
		return fmt.Errorf("%w: template %q cannot be placed in slot %q", ErrSlotNotAllowed, definition.Key, slot)
	}

	if section.Data == nil {
		section.Data = map[string]any{}
	}
	if err := validation.Validate(rules.ForDefinition(definition), section.Data); err != nil {
		s.reject(section.TemplateKey, "invalid payload")
		return err
	}

	plain, err := s.normalizeRichText(definition.Fields, section.Data, "")
	if err != nil {
		s.reject(section.TemplateKey, "rich text rejected")
		return err
	}
	section.PlainText = plain

	if err := s.checkAnchor(ctx, section); err != nil {
		return err
	}

	if section.VisibleFrom != nil && section.VisibleUntil != nil && !section.VisibleUntil.After(*section.VisibleFrom) {
		return ErrVisibilityWindowInvalid
	}
	if section.Position < 0 {
		return ErrPositionInvalid
	}
	return nil
}

// normalizeRichText rewrites every rich text value in place, including values
// inside collection items, and returns the plain text keyed by concrete path.
func (s *service) normalizeRichText(fields []templates.FieldSchema, data map[string]any, prefix string) (map[string]string, error) {
	plain := map[string]string{}
	var issues []validation.ValidationIssue
	var cause error

	var walk func(fields []templates.FieldSchema, data map[string]any, prefix string)
	walk = func(fields []templates.FieldSchema, data map[string]any, prefix string) {
		for _, field := range fields {
			value, ok := data[field.Name]
			if !ok || value == nil {
				continue
			}
			path := field.Name
			if prefix != "" {
				path = prefix + "." + field.Name
			}
			switch field.Type {
			case templates.FieldRichText:
				raw, _ := value.(string)
				prepared, err := s.pipeline.Prepare(path, raw)
				if err != nil {
					issues = append(issues, guardIssue(path, err))
					if cause == nil {
						cause = err
					}
					continue
				}
				data[field.Name] = prepared.Normalized
				plain[path] = prepared.PlainText
			case templates.FieldCollection:
				items, _ := templates.AsList(value)
				for index, item := range items {
					object, ok := templates.AsObject(item)
					if !ok {
						continue
					}
					walk(field.ItemFields, object, path+"."+strconv.Itoa(index))
					items[index] = object
				}
				data[field.Name] = items
			}
		}
	}
	walk(fields, data, prefix)

	if len(issues) > 0 {
		return nil, &validation.PayloadValidationError{Issues: issues, Cause: cause}
	}
	return plain, nil
}

func guardIssue(path string, err error) validation.ValidationIssue {
	issue := validation.ValidationIssue{Location: rules.Root + "." + path, Message: err.Error()}
	var tooLarge *richtext.PayloadTooLargeError
	var tooMany *richtext.TooManyCharactersError
	switch {
	case errors.As(err, &tooLarge):
		issue.Code = validation.CodePayloadTooLarge
		issue.Message = fmt.Sprintf("is %d bytes, the limit is %d", tooLarge.Actual, tooLarge.Limit)
	case errors.As(err, &tooMany):
		issue.Code = validation.CodeTooManyCharacters
		issue.Message = fmt.Sprintf("has %d characters, the limit is %d", tooMany.Actual, tooMany.Limit)
	}
	return issue
}

func (s *service) checkAnchor(ctx context.Context, section *Section) error {
	if section.Anchor == nil {
		return nil
	}
	normalized, err := s.slugger.Normalize(*section.Anchor)
	if err != nil || normalized == "" {
		return fmt.Errorf("%w: %q", ErrAnchorInvalid, *section.Anchor)
	}
	section.Anchor = &normalized

	siblings, err := s.sections.ListByPage(ctx, section.PageID)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		if sibling.ID == section.ID || sibling.AnchorValue() != normalized {
			continue
		}
		if sibling.LocaleCode() == section.LocaleCode() {
			return fmt.Errorf("%w: %q", ErrAnchorExists, normalized)
		}
	}
	return nil
}

func (s *service) reject(templateKey, reason string) {
	logging.WithTemplateKey(s.logger, templateKey).Debug("section write rejected", "reason", reason)
	if s.metrics != nil {
		s.metrics.IncrementValidationFailure(templateKey)
	}
}

// applyDefaults returns a copy of data with declared defaults filled in for
// absent or null keys, including inside collection items.
func applyDefaults(fields []templates.FieldSchema, data map[string]any) map[string]any {
	out := cloneData(data)
	if out == nil {
		out = map[string]any{}
	}
	for _, field := range fields {
		value, ok := out[field.Name]
		if (!ok || value == nil) && field.HasDefault() {
			out[field.Name] = cloneAny(field.Default)
			continue
		}
		if field.Type != templates.FieldCollection || value == nil {
			continue
		}
		items, ok := templates.AsList(value)
		if !ok {
			continue
		}
		resolved := make([]any, len(items))
		for index, item := range items {
			if object, ok := templates.AsObject(item); ok {
				resolved[index] = applyDefaults(field.ItemFields, object)
				continue
			}
			resolved[index] = item
		}
		out[field.Name] = resolved
	}
	return out
}

func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
