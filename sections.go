// Package sections validates page sections against a catalog of content
// templates, normalizes their rich text and stores them per page.
package sections

import (
	"fmt"

	"github.com/goliatone/go-sections/internal/catalog"
	catalogcmd "github.com/goliatone/go-sections/internal/commands/catalog"
	sectionscmd "github.com/goliatone/go-sections/internal/commands/sections"
	"github.com/goliatone/go-sections/internal/di"
	"github.com/goliatone/go-sections/internal/rules"
	compose "github.com/goliatone/go-sections/internal/sections"
	"github.com/goliatone/go-sections/internal/templates"
	"github.com/goliatone/go-sections/internal/validation"
)

type (
	// Template catalog.
	FieldType        = templates.FieldType
	FieldSchema      = templates.FieldSchema
	Definition       = templates.Definition
	Registry         = templates.Registry
	TemplateProvider = templates.Provider
	TemplateConfig   = templates.ConfigEntry
	FieldConfig      = templates.FieldConfig
	RegistryOption   = templates.RegistryOption

	// Validation.
	RuleSet                = rules.RuleSet
	Rule                   = rules.Rule
	ValidationIssue        = validation.ValidationIssue
	PayloadValidationError = validation.PayloadValidationError

	// Sections.
	Section              = compose.Section
	ResolvedSection      = compose.ResolvedSection
	SectionService       = compose.Service
	SectionRepository    = compose.SectionRepository
	CreateSectionInput   = compose.CreateSectionInput
	UpdateSectionInput   = compose.UpdateSectionInput
	ListSectionsInput    = compose.ListSectionsInput
	NotFoundError        = compose.NotFoundError
	CatalogHolder        = catalog.Holder
	CreateSectionCommand = sectionscmd.CreateSectionCommand
	UpdateSectionCommand = sectionscmd.UpdateSectionCommand
	DeleteSectionCommand = sectionscmd.DeleteSectionCommand
	ReloadCatalogCommand = catalogcmd.ReloadCatalogCommand

	// Option customises the container built by New.
	Option = di.Option
)

var (
	ErrUnknownTemplate         = templates.ErrUnknownTemplate
	ErrDuplicateTemplateKey    = templates.ErrDuplicateTemplateKey
	ErrSchemaValidation        = validation.ErrSchemaValidation
	ErrSlotNotAllowed          = compose.ErrSlotNotAllowed
	ErrAnchorExists            = compose.ErrAnchorExists
	ErrVisibilityWindowInvalid = compose.ErrVisibilityWindowInvalid
)

var (
	WithLoggerProvider       = di.WithLoggerProvider
	WithMetrics              = di.WithMetrics
	WithPrometheusRegisterer = di.WithPrometheusRegisterer
	WithTemplates            = di.WithTemplates
	WithBunDB                = di.WithBunDB
	WithCache                = di.WithCache
	WithSectionRepository    = di.WithSectionRepository
	WithSectionService       = di.WithSectionService
)

// WithMaxDepth bounds collection nesting when a registry is built.
var WithMaxDepth = templates.WithMaxDepth

// WithUnrestrictedEmptySlots lets templates without allowed_slots fit any slot.
func WithUnrestrictedEmptySlots() RegistryOption {
	return templates.WithSlotPolicy(templates.SlotPolicyUnrestricted)
}

// Module is the top level runtime facade.
type Module struct {
	container *di.Container
}

// New builds a module from cfg. The embedded migrations are used when
// cfg.Storage.Migrate is set.
func New(cfg Config, opts ...Option) (*Module, error) {
	opts = append([]Option{di.WithMigrations(GetMigrationsFS())}, opts...)
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Templates returns the live template catalog.
func (m *Module) Templates() TemplateProvider {
	return m.container.Templates()
}

// Sections returns the section composition service.
func (m *Module) Sections() SectionService {
	return m.container.SectionService()
}

// RichText returns the persistence pipeline configured from Config.RichText.
func (m *Module) RichText() *RichTextPipeline {
	return m.container.Pipeline()
}

// Validator checks payloads against the live catalog.
func (m *Module) Validator() Validator {
	return Validator{templates: m.container.Templates()}
}

// SubscribeCommands registers the command handlers with the go-command dispatcher.
func (m *Module) SubscribeCommands() {
	m.container.SubscribeCommands()
}

// Close releases the catalog watcher and any database the module opened.
func (m *Module) Close() error {
	return m.container.Close()
}

// Validator exposes rule synthesis, payload validation and JSON Schema
// export for the templates of one catalog.
type Validator struct {
	templates TemplateProvider
}

// NewValidator builds a Validator over a fixed registry.
func NewValidator(reg *Registry) Validator {
	return Validator{templates: templates.Static(reg)}
}

// Rules returns the synthesized rule set of a template.
func (v Validator) Rules(templateKey string) (RuleSet, error) {
	return rules.Synthesize(v.templates.Registry(), templateKey)
}

// Validate checks data against a template. Failures are
// *PayloadValidationError values.
func (v Validator) Validate(templateKey string, data map[string]any) error {
	return validation.ValidateTemplatePayload(v.templates.Registry(), templateKey, data)
}

// Schema returns the JSON Schema document of a template.
func (v Validator) Schema(templateKey string) (map[string]any, error) {
	definition, err := v.templates.Registry().Get(templateKey)
	if err != nil {
		return nil, err
	}
	schema := validation.DefinitionSchema(definition)
	if err := validation.ValidateSchema(schema); err != nil {
		return nil, fmt.Errorf("template %q: %w", templateKey, err)
	}
	return schema, nil
}

// NewRegistry builds a registry from template descriptors.
func NewRegistry(entries []TemplateConfig, opts ...RegistryOption) (*Registry, error) {
	return templates.FromConfig(entries, opts...)
}

// LoadRegistry builds a registry from a catalog file or directory.
func LoadRegistry(path string, opts ...RegistryOption) (*Registry, error) {
	return catalog.Build(path, opts...)
}

// StaticTemplates wraps a registry as a TemplateProvider.
func StaticTemplates(reg *Registry) TemplateProvider {
	return templates.Static(reg)
}
