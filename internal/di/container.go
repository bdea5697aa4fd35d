package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sections/internal/adapters/noop"
	"github.com/goliatone/go-sections/internal/adapters/prommetrics"
	"github.com/goliatone/go-sections/internal/catalog"
	"github.com/goliatone/go-sections/internal/commands"
	catalogcmd "github.com/goliatone/go-sections/internal/commands/catalog"
	sectionscmd "github.com/goliatone/go-sections/internal/commands/sections"
	"github.com/goliatone/go-sections/internal/logging"
	"github.com/goliatone/go-sections/internal/logging/console"
	"github.com/goliatone/go-sections/internal/logging/gologger"
	"github.com/goliatone/go-sections/internal/richtext"
	"github.com/goliatone/go-sections/internal/runtimeconfig"
	"github.com/goliatone/go-sections/internal/sections"
	"github.com/goliatone/go-sections/internal/storage"
	"github.com/goliatone/go-sections/internal/templates"
	"github.com/goliatone/go-sections/pkg/interfaces"
)

// ErrMigrationsRequired is returned when migrations are enabled without a
// migrations filesystem.
var ErrMigrationsRequired = errors.New("di: storage migrate requires a migrations filesystem")

// Container wires config, logging, metrics, the template catalog, the rich
// text pipeline, section storage and the command handlers.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	metrics        interfaces.Metrics
	registerer     prometheus.Registerer

	templates templates.Provider
	holder    *catalog.Holder
	pipeline  *richtext.Pipeline

	bunDB         *bun.DB
	ownsDB        bool
	migrations    fs.FS
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	sectionRepo   sections.SectionRepository
	sectionSvc    sections.Service

	createHandler *sectionscmd.CreateSectionHandler
	updateHandler *sectionscmd.UpdateSectionHandler
	deleteHandler *sectionscmd.DeleteSectionHandler
	reloadHandler *catalogcmd.ReloadCatalogHandler

	closeOnce     sync.Once
	subscriptions []interface{ Unsubscribe() }
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithMetrics overrides the metrics recorder selected by Config.Metrics.
func WithMetrics(metrics interfaces.Metrics) Option {
	return func(c *Container) {
		c.metrics = metrics
	}
}

// WithPrometheusRegisterer registers the Prometheus recorder somewhere other
// than the default registry.
func WithPrometheusRegisterer(registerer prometheus.Registerer) Option {
	return func(c *Container) {
		c.registerer = registerer
	}
}

// WithTemplates supplies the template catalog directly, skipping the catalog
// files named by Config.Templates.Path.
func WithTemplates(provider templates.Provider) Option {
	return func(c *Container) {
		c.templates = provider
	}
}

// WithBunDB supplies the database used for section storage. The container
// does not close databases it did not open.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithMigrations supplies the goose migrations applied when Config.Storage.Migrate is set.
func WithMigrations(migrations fs.FS) Option {
	return func(c *Container) {
		c.migrations = migrations
	}
}

// WithCache overrides the cache used by sql section repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithSectionRepository overrides section storage entirely.
func WithSectionRepository(repo sections.SectionRepository) Option {
	return func(c *Container) {
		c.sectionRepo = repo
	}
}

// WithSectionService overrides the section service binding.
func WithSectionService(svc sections.Service) Option {
	return func(c *Container) {
		c.sectionSvc = svc
	}
}

// NewContainer validates cfg and builds every dependency. Catalog and storage
// failures are returned so startup fails fast.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func() error{
		c.configureLogger,
		c.configureMetrics,
		c.configureTemplates,
		c.configurePipeline,
		c.configureStorage,
		c.configureServices,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider != nil {
		return nil
	}
	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "console":
		level, err := console.ParseLevel(logCfg.Level)
		if err != nil {
			return err
		}
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: level})
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return fmt.Errorf("logger provider: %w", err)
		}
		c.loggerProvider = provider
	}
	return nil
}

func (c *Container) configureMetrics() error {
	if c.metrics != nil {
		return nil
	}
	if !c.Config.Metrics.Enabled {
		c.metrics = noop.Metrics()
		return nil
	}
	c.metrics = prommetrics.New(c.registerer, c.Config.Metrics.Namespace)
	return nil
}

func (c *Container) configureTemplates() error {
	if c.templates != nil {
		return nil
	}

	registryOpts := []templates.RegistryOption{templates.WithMaxDepth(c.Config.Templates.MaxDepth)}
	if c.Config.Templates.UnrestrictedEmptySlots {
		registryOpts = append(registryOpts, templates.WithSlotPolicy(templates.SlotPolicyUnrestricted))
	}

	holder, err := catalog.NewHolder(c.Config.Templates.Path,
		catalog.WithLogger(logging.CatalogLogger(c.loggerProvider)),
		catalog.WithMetrics(c.metrics),
		catalog.WithRegistryOptions(registryOpts...),
	)
	if err != nil {
		return err
	}
	if c.Config.Templates.Watch {
		if err := holder.Watch(); err != nil {
			holder.Stop()
			return fmt.Errorf("watch catalog: %w", err)
		}
	}
	templatesLogger := logging.TemplatesLogger(c.loggerProvider)
	announce := func(reg *templates.Registry) {
		templatesLogger.Debug("templates registered", "keys", reg.Keys(), "unrestricted_slots", reg.SlotPolicy() == templates.SlotPolicyUnrestricted)
	}
	announce(holder.Registry())
	holder.OnChange(announce)

	c.holder = holder
	c.templates = holder
	return nil
}

func (c *Container) configurePipeline() error {
	c.pipeline = richtext.NewPipeline(richtext.Limits{
		MaxBytes:      c.Config.RichText.MaxBytes,
		MaxCharacters: c.Config.RichText.MaxCharacters,
	}, richtext.WithMetrics(c.metrics))
	return nil
}

func (c *Container) configureStorage() error {
	if c.sectionRepo != nil || c.sectionSvc != nil {
		return nil
	}

	provider := c.Config.StorageProvider()
	if c.bunDB == nil && provider != runtimeconfig.StorageMemory {
		db, err := storage.Open(context.Background(), provider, c.Config.Storage.DSN)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}

	if c.bunDB == nil {
		c.sectionRepo = sections.NewMemorySectionRepository()
		return nil
	}

	if c.Config.Storage.Migrate {
		if c.migrations == nil {
			return ErrMigrationsRequired
		}
		driver := provider
		if driver == runtimeconfig.StorageMemory {
			driver = c.bunDB.Dialect().Name().String()
		}
		applied, err := storage.Migrate(context.Background(), c.bunDB, driver, c.migrations)
		if err != nil {
			return err
		}
		logging.ComposeLogger(c.loggerProvider).Info("storage migrated", "applied", len(applied))
	}

	c.configureCache()
	c.sectionRepo = sections.NewBunSectionRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	return nil
}

func (c *Container) configureCache() {
	if !c.Config.Cache.Enabled {
		return
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cfg.TTL = c.Config.Cache.TTL
		}
		if service, err := repocache.NewCacheService(cfg); err == nil {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureServices() error {
	if c.sectionSvc == nil {
		c.sectionSvc = sections.NewService(c.sectionRepo, c.templates,
			sections.WithPipeline(c.pipeline),
			sections.WithLogger(logging.ComposeLogger(c.loggerProvider)),
			sections.WithMetrics(c.metrics),
		)
	}

	sectionsLogger := commands.CommandLogger(c.loggerProvider, "sections")
	c.createHandler = sectionscmd.NewCreateSectionHandler(c.sectionSvc, sectionsLogger, c.metrics, nil)
	c.updateHandler = sectionscmd.NewUpdateSectionHandler(c.sectionSvc, sectionsLogger, c.metrics)
	c.deleteHandler = sectionscmd.NewDeleteSectionHandler(c.sectionSvc, sectionsLogger, c.metrics)
	if c.holder != nil {
		c.reloadHandler = catalogcmd.NewReloadCatalogHandler(c.holder, commands.CommandLogger(c.loggerProvider, "catalog"), c.metrics)
	}
	return nil
}

// SubscribeCommands registers every command handler with the go-command
// dispatcher. Close removes the subscriptions.
func (c *Container) SubscribeCommands() {
	c.subscriptions = append(c.subscriptions,
		subscribe[sectionscmd.CreateSectionCommand](c.createHandler),
		subscribe[sectionscmd.UpdateSectionCommand](c.updateHandler),
		subscribe[sectionscmd.DeleteSectionCommand](c.deleteHandler),
	)
	if c.reloadHandler != nil {
		c.subscriptions = append(c.subscriptions, subscribe[catalogcmd.ReloadCatalogCommand](c.reloadHandler))
	}
}

func subscribe[T command.Message](handler command.Commander[T]) interface{ Unsubscribe() } {
	return dispatcher.SubscribeCommand(handler)
}

// Close stops the catalog watcher, removes dispatcher subscriptions and
// closes a database the container opened itself.
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for _, sub := range c.subscriptions {
			sub.Unsubscribe()
		}
		if c.holder != nil {
			c.holder.Stop()
		}
		if c.ownsDB && c.bunDB != nil {
			err = c.bunDB.Close()
		}
	})
	return err
}

// LoggerProvider returns the configured provider, or nil when logging is off.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) Metrics() interfaces.Metrics {
	return c.metrics
}

// Templates returns the live template catalog.
func (c *Container) Templates() templates.Provider {
	return c.templates
}

// Catalog returns the file-backed catalog holder, or nil when templates
// were supplied through WithTemplates.
func (c *Container) Catalog() *catalog.Holder {
	return c.holder
}

func (c *Container) Pipeline() *richtext.Pipeline {
	return c.pipeline
}

func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

func (c *Container) SectionRepository() sections.SectionRepository {
	return c.sectionRepo
}

func (c *Container) SectionService() sections.Service {
	return c.sectionSvc
}

func (c *Container) CreateSectionHandler() *sectionscmd.CreateSectionHandler {
	return c.createHandler
}

func (c *Container) UpdateSectionHandler() *sectionscmd.UpdateSectionHandler {
	return c.updateHandler
}

func (c *Container) DeleteSectionHandler() *sectionscmd.DeleteSectionHandler {
	return c.deleteHandler
}

// ReloadCatalogHandler is nil when templates were supplied through WithTemplates.
func (c *Container) ReloadCatalogHandler() *catalogcmd.ReloadCatalogHandler {
	return c.reloadHandler
}
