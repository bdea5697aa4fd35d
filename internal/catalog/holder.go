package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/goliatone/go-sections/internal/logging"
	"github.com/goliatone/go-sections/internal/templates"
	"github.com/goliatone/go-sections/pkg/interfaces"
)

// Reload outcomes reported to metrics.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// HolderOption customises a Holder.
type HolderOption func(*Holder)

// WithLogger sets the logger used for reload events.
func WithLogger(logger interfaces.Logger) HolderOption {
	return func(h *Holder) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics records reload outcomes.
func WithMetrics(metrics interfaces.Metrics) HolderOption {
	return func(h *Holder) {
		h.metrics = metrics
	}
}

// WithRegistryOptions forwards options to every registry build.
func WithRegistryOptions(opts ...templates.RegistryOption) HolderOption {
	return func(h *Holder) {
		h.registryOpts = append(h.registryOpts, opts...)
	}
}

// Holder owns the active registry for a catalog path. Reloads build a new
// registry and swap the pointer; readers never see a partially built catalog
// and a failed reload keeps the previous registry.
type Holder struct {
	current      atomic.Pointer[templates.Registry]
	path         string
	registryOpts []templates.RegistryOption
	logger       interfaces.Logger
	metrics      interfaces.Metrics

	mu       sync.Mutex
	onChange []func(*templates.Registry)
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
}

var _ templates.Provider = (*Holder)(nil)

// NewHolder loads the catalog at path. Load errors are returned so startup
// fails fast.
func NewHolder(path string, opts ...HolderOption) (*Holder, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	h := &Holder{
		path:   absPath,
		logger: logging.NoOp(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.logger = logging.WithCatalogPath(h.logger, absPath)

	registry, err := Build(absPath, h.registryOpts...)
	if err != nil {
		h.record(OutcomeError)
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	h.current.Store(registry)
	h.record(OutcomeSuccess)
	h.logger.Info("catalog loaded", "templates", registry.Len())
	return h, nil
}

// Registry returns the registry currently in effect.
func (h *Holder) Registry() *templates.Registry {
	return h.current.Load()
}

// Path reports the absolute catalog path.
func (h *Holder) Path() string {
	return h.path
}

// Reload rebuilds the registry from disk. On failure the previous registry
// stays active and the error is returned.
func (h *Holder) Reload() error {
	registry, err := Build(h.path, h.registryOpts...)
	if err != nil {
		h.record(OutcomeError)
		h.logger.Error("catalog reload failed, keeping previous catalog", "error", err)
		return fmt.Errorf("reload catalog: %w", err)
	}

	previous := h.current.Swap(registry)
	h.record(OutcomeSuccess)
	h.logger.Info("catalog reloaded", "templates", registry.Len(), "previous", previous.Len())

	h.mu.Lock()
	listeners := append([]func(*templates.Registry){}, h.onChange...)
	h.mu.Unlock()
	for _, fn := range listeners {
		fn(registry)
	}
	return nil
}

// OnChange registers a callback run after each successful reload.
func (h *Holder) OnChange(fn func(*templates.Registry)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// Watch reloads the catalog whenever a catalog file is written or replaced.
// Directories are watched directly; single files through their parent so
// atomic saves are seen.
func (h *Holder) Watch() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dir := h.path
	if info, err := os.Stat(h.path); err == nil && !info.IsDir() {
		dir = filepath.Dir(h.path)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	h.watcher = watcher

	go h.watchLoop(watcher)
	h.logger.Info("watching catalog for changes")
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !h.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			h.logger.Debug("catalog file changed", "event", event.Op.String(), "file", event.Name)
			if err := h.Reload(); err != nil {
				h.logger.Error("file watch reload failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error("catalog watcher error", "error", err)
		case <-h.stopCh:
			return
		}
	}
}

func (h *Holder) relevant(name string) bool {
	if info, err := os.Stat(h.path); err == nil && !info.IsDir() {
		return filepath.Base(name) == filepath.Base(h.path)
	}
	_, ok := FormatFor(name)
	return ok
}

func (h *Holder) record(outcome string) {
	if h.metrics != nil {
		h.metrics.IncrementCatalogReload(outcome)
	}
}
