package sectionscmd

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-sections/internal/commands"
	"github.com/goliatone/go-sections/internal/sections"
	"github.com/goliatone/go-sections/pkg/interfaces"
)

// CreateSectionHandler runs CreateSectionCommand through the section service.
type CreateSectionHandler struct {
	inner *commands.Handler[CreateSectionCommand]
}

// NewCreateSectionHandler builds the handler. onCreated, when set, receives
// every stored section.
func NewCreateSectionHandler(service sections.Service, logger interfaces.Logger, metrics interfaces.Metrics, onCreated func(*sections.Section), opts ...commands.HandlerOption[CreateSectionCommand]) *CreateSectionHandler {
	exec := func(ctx context.Context, msg CreateSectionCommand) error {
		section, err := service.Create(ctx, sections.CreateSectionInput{
			PageID:          msg.PageID,
			TemplateKey:     msg.TemplateKey,
			Slot:            msg.Slot,
			Position:        msg.Position,
			Anchor:          msg.Anchor,
			NavigationLabel: msg.NavigationLabel,
			IsActive:        msg.IsActive,
			VisibleFrom:     msg.VisibleFrom,
			VisibleUntil:    msg.VisibleUntil,
			Locale:          msg.Locale,
			Data:            msg.Data,
		})
		if err != nil {
			return err
		}
		if onCreated != nil {
			onCreated(section)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CreateSectionCommand]{
		commands.WithLogger[CreateSectionCommand](logger),
		commands.WithOperation[CreateSectionCommand]("sections.create"),
		commands.WithMessageFields(func(msg CreateSectionCommand) map[string]any {
			return messageFields(msg.PageID, uuid.Nil, msg.TemplateKey, msg.Slot)
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CreateSectionCommand](metrics)),
	}
	return &CreateSectionHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[CreateSectionCommand].
func (h *CreateSectionHandler) Execute(ctx context.Context, msg CreateSectionCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpdateSectionHandler runs UpdateSectionCommand through the section service.
type UpdateSectionHandler struct {
	inner *commands.Handler[UpdateSectionCommand]
}

func NewUpdateSectionHandler(service sections.Service, logger interfaces.Logger, metrics interfaces.Metrics, opts ...commands.HandlerOption[UpdateSectionCommand]) *UpdateSectionHandler {
	exec := func(ctx context.Context, msg UpdateSectionCommand) error {
		_, err := service.Update(ctx, sections.UpdateSectionInput{
			ID:              msg.SectionID,
			TemplateKey:     msg.TemplateKey,
			Slot:            msg.Slot,
			Position:        msg.Position,
			Anchor:          msg.Anchor,
			NavigationLabel: msg.NavigationLabel,
			IsActive:        msg.IsActive,
			VisibleFrom:     msg.VisibleFrom,
			VisibleUntil:    msg.VisibleUntil,
			ClearWindow:     msg.ClearWindow,
			Locale:          msg.Locale,
			Data:            msg.Data,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[UpdateSectionCommand]{
		commands.WithLogger[UpdateSectionCommand](logger),
		commands.WithOperation[UpdateSectionCommand]("sections.update"),
		commands.WithMessageFields(func(msg UpdateSectionCommand) map[string]any {
			key := ""
			if msg.TemplateKey != nil {
				key = *msg.TemplateKey
			}
			return messageFields(uuid.Nil, msg.SectionID, key, msg.Slot)
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[UpdateSectionCommand](metrics)),
	}
	return &UpdateSectionHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[UpdateSectionCommand].
func (h *UpdateSectionHandler) Execute(ctx context.Context, msg UpdateSectionCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteSectionHandler runs DeleteSectionCommand through the section service.
type DeleteSectionHandler struct {
	inner *commands.Handler[DeleteSectionCommand]
}

func NewDeleteSectionHandler(service sections.Service, logger interfaces.Logger, metrics interfaces.Metrics, opts ...commands.HandlerOption[DeleteSectionCommand]) *DeleteSectionHandler {
	exec := func(ctx context.Context, msg DeleteSectionCommand) error {
		return service.Delete(ctx, msg.SectionID)
	}

	handlerOpts := []commands.HandlerOption[DeleteSectionCommand]{
		commands.WithLogger[DeleteSectionCommand](logger),
		commands.WithOperation[DeleteSectionCommand]("sections.delete"),
		commands.WithMessageFields(func(msg DeleteSectionCommand) map[string]any {
			return messageFields(uuid.Nil, msg.SectionID, "", nil)
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DeleteSectionCommand](metrics)),
	}
	return &DeleteSectionHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[DeleteSectionCommand].
func (h *DeleteSectionHandler) Execute(ctx context.Context, msg DeleteSectionCommand) error {
	return h.inner.Execute(ctx, msg)
}

func messageFields(pageID, sectionID uuid.UUID, templateKey string, slot *string) map[string]any {
	fields := map[string]any{}
	if pageID != uuid.Nil {
		fields["page_id"] = pageID
	}
	if sectionID != uuid.Nil {
		fields["section_id"] = sectionID
	}
	if key := strings.TrimSpace(templateKey); key != "" {
		fields["template_key"] = key
	}
	if slot != nil && strings.TrimSpace(*slot) != "" {
		fields["slot"] = strings.TrimSpace(*slot)
	}
	return fields
}
