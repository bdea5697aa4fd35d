package catalogcmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-sections/internal/commands"
	"github.com/goliatone/go-sections/pkg/interfaces"
)

const reloadCatalogMessageType = "sections.catalog.reload"

// DefaultReloadCron is the schedule reported to cron registrars.
const DefaultReloadCron = "@hourly"

// Reloader rebuilds the active template catalog.
type Reloader interface {
	Reload() error
}

// ReloadCatalogCommand asks for the template catalog to be rebuilt from disk.
type ReloadCatalogCommand struct {
	Reason string `json:"reason,omitempty"`
}

// Type implements command.Message.
func (ReloadCatalogCommand) Type() string { return reloadCatalogMessageType }

func (m ReloadCatalogCommand) Validate() error {
	return validation.Validate(m.Reason, validation.Length(0, 200).ErrorObject(
		validation.NewError("sections.catalog.reason_too_long", "reason must be at most 200 characters"),
	))
}

// ReloadCatalogHandler rebuilds the catalog. A failed rebuild leaves the
// previous catalog active and is reported as a command error.
type ReloadCatalogHandler struct {
	inner *commands.Handler[ReloadCatalogCommand]
	cron  string
}

func NewReloadCatalogHandler(reloader Reloader, logger interfaces.Logger, metrics interfaces.Metrics, opts ...commands.HandlerOption[ReloadCatalogCommand]) *ReloadCatalogHandler {
	exec := func(context.Context, ReloadCatalogCommand) error {
		return reloader.Reload()
	}

	handlerOpts := []commands.HandlerOption[ReloadCatalogCommand]{
		commands.WithLogger[ReloadCatalogCommand](logger),
		commands.WithOperation[ReloadCatalogCommand]("catalog.reload"),
		commands.WithMessageFields(func(msg ReloadCatalogCommand) map[string]any {
			if reason := strings.TrimSpace(msg.Reason); reason != "" {
				return map[string]any{"reason": reason}
			}
			return nil
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ReloadCatalogCommand](metrics)),
	}
	return &ReloadCatalogHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
		cron:  DefaultReloadCron,
	}
}

// Execute satisfies command.Commander[ReloadCatalogCommand].
func (h *ReloadCatalogHandler) Execute(ctx context.Context, msg ReloadCatalogCommand) error {
	return h.inner.Execute(ctx, msg)
}

// WithCronExpression returns a copy of the handler scheduled on expression.
// Blank expressions keep the current schedule.
func (h *ReloadCatalogHandler) WithCronExpression(expression string) *ReloadCatalogHandler {
	out := *h
	if trimmed := strings.TrimSpace(expression); trimmed != "" {
		out.cron = trimmed
	}
	return &out
}

// CronHandler satisfies command.CronCommand.
func (h *ReloadCatalogHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), ReloadCatalogCommand{Reason: "cron"})
	}
}

// CronOptions satisfies command.CronCommand.
func (h *ReloadCatalogHandler) CronOptions() command.HandlerConfig {
	return command.HandlerConfig{Expression: h.cron}
}

// CLIHandler exposes the reload handler to CLI integrations.
func (h *ReloadCatalogHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for catalog reloads.
func (h *ReloadCatalogHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"catalog", "reload"},
		Group:       "catalog",
		Description: "Rebuild the template catalog from disk",
	}
}
