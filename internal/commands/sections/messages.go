package sectionscmd

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	createSectionMessageType = "sections.section.create"
	updateSectionMessageType = "sections.section.update"
	deleteSectionMessageType = "sections.section.delete"
)

var templateKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// CreateSectionCommand places a new section on a page.
type CreateSectionCommand struct {
	PageID          uuid.UUID      `json:"page_id"`
	TemplateKey     string         `json:"template_key"`
	Slot            *string        `json:"slot,omitempty"`
	Position        int            `json:"position"`
	Anchor          *string        `json:"anchor,omitempty"`
	NavigationLabel *string        `json:"navigation_label,omitempty"`
	IsActive        *bool          `json:"is_active,omitempty"`
	VisibleFrom     *time.Time     `json:"visible_from,omitempty"`
	VisibleUntil    *time.Time     `json:"visible_until,omitempty"`
	Locale          *string        `json:"locale,omitempty"`
	Data            map[string]any `json:"data,omitempty"`
}

// Type implements command.Message.
func (CreateSectionCommand) Type() string { return createSectionMessageType }

// Validate checks the envelope only. The payload is validated against the
// template by the section service.
func (m CreateSectionCommand) Validate() error {
	errs := validation.Errors{}
	if m.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("sections.create.page_id_required", "page_id is required")
	}
	if err := validateTemplateKey(m.TemplateKey); err != nil {
		errs["template_key"] = err
	}
	if m.Position < 0 {
		errs["position"] = validation.NewError("sections.create.position_invalid", "position must not be negative")
	}
	if err := validateWindow(m.VisibleFrom, m.VisibleUntil); err != nil {
		errs["visible_until"] = err
	}
	return errs.Filter()
}

// UpdateSectionCommand changes a stored section. Nil fields are left as
// they are.
type UpdateSectionCommand struct {
	SectionID       uuid.UUID      `json:"section_id"`
	TemplateKey     *string        `json:"template_key,omitempty"`
	Slot            *string        `json:"slot,omitempty"`
	Position        *int           `json:"position,omitempty"`
	Anchor          *string        `json:"anchor,omitempty"`
	NavigationLabel *string        `json:"navigation_label,omitempty"`
	IsActive        *bool          `json:"is_active,omitempty"`
	VisibleFrom     *time.Time     `json:"visible_from,omitempty"`
	VisibleUntil    *time.Time     `json:"visible_until,omitempty"`
	ClearWindow     bool           `json:"clear_window,omitempty"`
	Locale          *string        `json:"locale,omitempty"`
	Data            map[string]any `json:"data,omitempty"`
}

// Type implements command.Message.
func (UpdateSectionCommand) Type() string { return updateSectionMessageType }

func (m UpdateSectionCommand) Validate() error {
	errs := validation.Errors{}
	if m.SectionID == uuid.Nil {
		errs["section_id"] = validation.NewError("sections.update.section_id_required", "section_id is required")
	}
	if m.TemplateKey != nil {
		if err := validateTemplateKey(*m.TemplateKey); err != nil {
			errs["template_key"] = err
		}
	}
	if m.Position != nil && *m.Position < 0 {
		errs["position"] = validation.NewError("sections.update.position_invalid", "position must not be negative")
	}
	if err := validateWindow(m.VisibleFrom, m.VisibleUntil); err != nil {
		errs["visible_until"] = err
	}
	return errs.Filter()
}

// DeleteSectionCommand removes a section.
type DeleteSectionCommand struct {
	SectionID uuid.UUID `json:"section_id"`
}

// Type implements command.Message.
func (DeleteSectionCommand) Type() string { return deleteSectionMessageType }

func (m DeleteSectionCommand) Validate() error {
	return validation.Errors{
		"section_id": validation.Validate(m.SectionID, validation.By(func(value any) error {
			if value.(uuid.UUID) == uuid.Nil {
				return validation.NewError("sections.delete.section_id_required", "section_id is required")
			}
			return nil
		})),
	}.Filter()
}

func validateTemplateKey(key string) error {
	return validation.Validate(strings.TrimSpace(key),
		validation.Required.ErrorObject(validation.NewError("sections.template_key_required", "template_key is required")),
		validation.Match(templateKeyPattern).ErrorObject(
			validation.NewError("sections.template_key_invalid", "template_key may only hold letters, digits, dots, dashes and underscores"),
		),
	)
}

func validateWindow(from, until *time.Time) error {
	if from == nil || until == nil || until.After(*from) {
		return nil
	}
	return validation.NewError("sections.visibility_window_invalid", "visible_until must be after visible_from")
}
