package sections

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-sections/internal/richtext"
	"github.com/goliatone/go-sections/internal/templates"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Section binds a template to a page position and carries its data payload.
type Section struct {
	bun.BaseModel `bun:"table:sections,alias:s"`

	ID              uuid.UUID         `bun:",pk,type:uuid" json:"id"`
	PageID          uuid.UUID         `bun:"page_id,notnull,type:uuid" json:"page_id"`
	TemplateKey     string            `bun:"template_key,notnull" json:"template_key"`
	Slot            *string           `bun:"slot" json:"slot,omitempty"`
	Position        int               `bun:"position,notnull,default:0" json:"position"`
	Anchor          *string           `bun:"anchor" json:"anchor,omitempty"`
	NavigationLabel *string           `bun:"navigation_label" json:"navigation_label,omitempty"`
	IsActive        bool              `bun:"is_active,notnull" json:"is_active"`
	VisibleFrom     *time.Time        `bun:"visible_from,nullzero" json:"visible_from,omitempty"`
	VisibleUntil    *time.Time        `bun:"visible_until,nullzero" json:"visible_until,omitempty"`
	Locale          *string           `bun:"locale" json:"locale,omitempty"`
	Data            map[string]any    `bun:"data,type:jsonb,notnull" json:"data"`
	PlainText       map[string]string `bun:"plain_text,type:jsonb" json:"plain_text,omitempty"`
	CreatedAt       time.Time         `bun:"created_at,nullzero,notnull" json:"created_at"`
	UpdatedAt       time.Time         `bun:"updated_at,nullzero,notnull" json:"updated_at"`
}

// SlotName returns the slot or "" when the section has none.
func (s *Section) SlotName() string {
	if s == nil || s.Slot == nil {
		return ""
	}
	return *s.Slot
}

// LocaleCode returns the locale or "" when the section applies to every locale.
func (s *Section) LocaleCode() string {
	if s == nil || s.Locale == nil {
		return ""
	}
	return *s.Locale
}

// AnchorValue returns the anchor or "".
func (s *Section) AnchorValue() string {
	if s == nil || s.Anchor == nil {
		return ""
	}
	return *s.Anchor
}

// VisibleAt reports whether the visibility window contains now. Missing
// bounds are open.
func (s *Section) VisibleAt(now time.Time) bool {
	if s.VisibleFrom != nil && now.Before(*s.VisibleFrom) {
		return false
	}
	if s.VisibleUntil != nil && !now.Before(*s.VisibleUntil) {
		return false
	}
	return true
}

// ResolvedSection pairs a stored section with its template and the data
// payload with field defaults filled in.
type ResolvedSection struct {
	Section    *Section
	Definition *templates.Definition
	Data       map[string]any
}

// PlainText returns the plain text of the rich text value at path, e.g.
// "body" or "faq.0.answer". Text recorded at write time is used when present.
func (r *ResolvedSection) PlainText(path string) string {
	if r == nil {
		return ""
	}
	if r.Section != nil {
		if text, ok := r.Section.PlainText[path]; ok {
			return text
		}
	}
	value, ok := lookupPath(r.Data, path)
	if !ok {
		return ""
	}
	raw, _ := value.(string)
	return richtext.Extract(raw)
}

func lookupPath(data map[string]any, path string) (any, bool) {
	var current any = data
	for _, segment := range strings.Split(path, ".") {
		if object, ok := templates.AsObject(current); ok {
			value, found := object[segment]
			if !found {
				return nil, false
			}
			current = value
			continue
		}
		list, ok := templates.AsList(current)
		if !ok {
			return nil, false
		}
		index, err := strconv.Atoi(segment)
		if err != nil || index < 0 || index >= len(list) {
			return nil, false
		}
		current = list[index]
	}
	return current, true
}

func cloneSection(section *Section) *Section {
	if section == nil {
		return nil
	}
	cloned := *section
	cloned.Slot = cloneString(section.Slot)
	cloned.Anchor = cloneString(section.Anchor)
	cloned.NavigationLabel = cloneString(section.NavigationLabel)
	cloned.Locale = cloneString(section.Locale)
	cloned.VisibleFrom = cloneTime(section.VisibleFrom)
	cloned.VisibleUntil = cloneTime(section.VisibleUntil)
	cloned.Data = cloneData(section.Data)
	if section.PlainText != nil {
		cloned.PlainText = make(map[string]string, len(section.PlainText))
		for key, value := range section.PlainText {
			cloned.PlainText[key] = value
		}
	}
	return &cloned
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = cloneAny(value)
	}
	return out
}

func cloneAny(value any) any {
	if object, ok := templates.AsObject(value); ok {
		return cloneData(object)
	}
	if _, isString := value.(string); !isString {
		if list, ok := templates.AsList(value); ok {
			out := make([]any, len(list))
			for i, item := range list {
				out[i] = cloneAny(item)
			}
			return out
		}
	}
	return value
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
