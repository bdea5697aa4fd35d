package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	command "github.com/goliatone/go-command"

	catalogcmd "github.com/goliatone/go-sections/internal/commands/catalog"
	sectionscmd "github.com/goliatone/go-sections/internal/commands/sections"
	"github.com/goliatone/go-sections/internal/di"
	"github.com/goliatone/go-sections/internal/runtimeconfig"
	"github.com/goliatone/go-sections/internal/templates"
)

const bannerCatalog = `
templates:
  - key: banner
    allowed_slots: [main]
    fields:
      - name: title
        type: string
        required: true
`

func newContainer(t *testing.T, opts ...di.Option) *di.Container {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "banner.yaml"), []byte(bannerCatalog), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	cfg := runtimeconfig.DefaultConfig()
	cfg.Templates.Path = dir

	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	return container
}

func TestRegisterContainerCommandsBuildsHandlers(t *testing.T) {
	registry := &recordingRegistry{}
	dispatcher := &recordingDispatcher{}
	cron := &recordingCron{}

	result, err := RegisterContainerCommands(newContainer(t), RegistrationOptions{
		Registry:          registry,
		Dispatcher:        dispatcher,
		CronRegistrar:     cron.Registrar(),
		ReloadCatalogCron: "@every 10m",
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	if len(result.Handlers) != 4 {
		t.Fatalf("expected four handlers, got %d", len(result.Handlers))
	}
	if len(registry.handlers) != len(result.Handlers) {
		t.Fatalf("expected registry to record all handlers, got %d of %d", len(registry.handlers), len(result.Handlers))
	}
	if len(result.Subscriptions) != len(result.Handlers) {
		t.Fatalf("expected a subscription per handler, got %d", len(result.Subscriptions))
	}
	if len(cron.registrations) != 1 {
		t.Fatalf("expected only the reload handler on cron, got %d", len(cron.registrations))
	}
	if got := cron.registrations[0].config.Expression; got != "@every 10m" {
		t.Fatalf("expected reload cron override, got %q", got)
	}
	if err := cron.registrations[0].handler(); err != nil {
		t.Fatalf("cron reload: %v", err)
	}

	var hasCreate, hasReload bool
	for _, handler := range result.Handlers {
		switch handler.(type) {
		case *sectionscmd.CreateSectionHandler:
			hasCreate = true
		case *catalogcmd.ReloadCatalogHandler:
			hasReload = true
		}
	}
	if !hasCreate || !hasReload {
		t.Fatalf("expected create and reload handlers, got %#v", result.Handlers)
	}

	result.Unsubscribe()
	for _, sub := range dispatcher.subscriptions {
		if !sub.unsubscribed {
			t.Fatalf("expected subscription for %T to be removed", sub.handler)
		}
	}
}

func TestRegisterContainerCommandsWithoutRegistrars(t *testing.T) {
	result, err := RegisterContainerCommands(newContainer(t), RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) == 0 {
		t.Fatal("expected handlers to be built even without registrars")
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no dispatcher subscriptions without dispatcher, got %d", len(result.Subscriptions))
	}
}

func TestRegisterContainerCommandsSkipsReloadForStaticTemplates(t *testing.T) {
	reg, err := templates.FromConfig([]templates.ConfigEntry{{Key: "banner", AllowedSlots: []string{"main"}}})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	cron := &recordingCron{}

	result, err := RegisterContainerCommands(newContainer(t, di.WithTemplates(templates.Static(reg))), RegistrationOptions{
		CronRegistrar: cron.Registrar(),
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 3 {
		t.Fatalf("expected section handlers only, got %d", len(result.Handlers))
	}
	if len(cron.registrations) != 0 {
		t.Fatalf("expected no cron registrations, got %d", len(cron.registrations))
	}
}

func TestRegisterContainerCommandsJoinsErrors(t *testing.T) {
	dispatcher := &recordingDispatcher{err: errors.New("dispatcher down")}
	cron := &recordingCron{err: errors.New("cron down")}

	result, err := RegisterContainerCommands(newContainer(t), RegistrationOptions{
		Dispatcher:    dispatcher,
		CronRegistrar: cron.Registrar(),
	})
	if err == nil {
		t.Fatal("expected registration error")
	}
	if !errors.Is(err, dispatcher.err) || !errors.Is(err, cron.err) {
		t.Fatalf("expected both failures joined, got %v", err)
	}
	if len(result.Handlers) != 4 {
		t.Fatalf("expected handlers despite failures, got %d", len(result.Handlers))
	}
}

func TestRegisterContainerCommandsNilContainer(t *testing.T) {
	result, err := RegisterContainerCommands(nil, RegistrationOptions{})
	if err != nil || len(result.Handlers) != 0 {
		t.Fatalf("expected empty result, got %v %v", result, err)
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type cronRegistration struct {
	config  command.HandlerConfig
	handler func() error
}

type recordingCron struct {
	registrations []cronRegistration
	err           error
}

func (c *recordingCron) Registrar() CronRegistrar {
	return func(cfg command.HandlerConfig, handler any) error {
		if c.err != nil {
			return c.err
		}
		fn, _ := handler.(func() error)
		c.registrations = append(c.registrations, cronRegistration{config: cfg, handler: fn})
		return nil
	}
}

type recordingDispatcher struct {
	subscriptions []*recordingSubscription
	err           error
}

func (d *recordingDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	if d.err != nil {
		return nil, d.err
	}
	sub := &recordingSubscription{handler: handler}
	d.subscriptions = append(d.subscriptions, sub)
	return sub, nil
}

type recordingSubscription struct {
	handler      any
	unsubscribed bool
}

func (s *recordingSubscription) Unsubscribe() {
	s.unsubscribed = true
}
