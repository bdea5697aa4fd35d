package templates

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-sections/internal/identity"
)

// DefaultMaxDepth bounds how many field levels a template may nest through
// collection item fields. Top level fields sit at depth 1.
const DefaultMaxDepth = 4

type registryConfig struct {
	maxDepth int
	policy   SlotPolicy
}

// RegistryOption customises registry construction.
type RegistryOption func(*registryConfig)

// WithMaxDepth overrides the collection nesting bound. Values below one are ignored.
func WithMaxDepth(depth int) RegistryOption {
	return func(cfg *registryConfig) {
		if depth > 0 {
			cfg.maxDepth = depth
		}
	}
}

// WithSlotPolicy selects how empty allowed_slots lists are interpreted.
func WithSlotPolicy(policy SlotPolicy) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.policy = policy
	}
}

// Registry is an immutable, key addressable catalog of template definitions.
// It is never mutated after construction, so any number of goroutines may read
// it without locking. Returned definitions are shared and must be treated as
// read-only; use Definition.Clone for a private copy.
type Registry struct {
	ordered []*Definition
	byKey   map[string]*Definition
	policy  SlotPolicy
}

// FromConfig builds a registry from raw catalog entries, preserving their order.
func FromConfig(entries []ConfigEntry, opts ...RegistryOption) (*Registry, error) {
	cfg := registryConfig{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	reg := &Registry{
		ordered: make([]*Definition, 0, len(entries)),
		byKey:   make(map[string]*Definition, len(entries)),
		policy:  cfg.policy,
	}

	for index, entry := range entries {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			return nil, &DefinitionError{Kind: ErrInvalidTemplate, Index: index, Reason: fmt.Sprintf("entry %d has an empty key", index)}
		}
		if key != entry.Key {
			return nil, &DefinitionError{Kind: ErrInvalidTemplate, Index: index, Key: key, Reason: fmt.Sprintf("key %q has surrounding whitespace", entry.Key)}
		}
		if _, exists := reg.byKey[key]; exists {
			return nil, &DefinitionError{Kind: ErrDuplicateTemplateKey, Index: index, Key: key}
		}

		fields, err := buildFields(entry.Fields, "", 1, cfg.maxDepth)
		if err != nil {
			err.Index = index
			err.Key = key
			return nil, err
		}

		label := strings.TrimSpace(entry.Label)
		if label == "" {
			label = key
		}

		definition := &Definition{
			ID:           identity.TemplateUUID(key),
			Key:          key,
			Label:        label,
			Description:  strings.TrimSpace(entry.Description),
			AllowedSlots: normalizeSlots(entry.AllowedSlots),
			Fields:       fields,
		}
		reg.ordered = append(reg.ordered, definition)
		reg.byKey[key] = definition
	}

	return reg, nil
}

// Empty returns a registry holding no definitions.
func Empty() *Registry {
	return &Registry{byKey: map[string]*Definition{}}
}

// Get resolves key or fails with an error wrapping ErrUnknownTemplate.
func (r *Registry) Get(key string) (*Definition, error) {
	definition, ok := r.Find(key)
	if !ok {
		return nil, &UnknownTemplateError{Key: strings.TrimSpace(key)}
	}
	return definition, nil
}

// Find resolves key, reporting false when it is absent. Keys match exactly.
func (r *Registry) Find(key string) (*Definition, bool) {
	if r == nil {
		return nil, false
	}
	definition, ok := r.byKey[key]
	return definition, ok
}

// Has reports whether key resolves.
func (r *Registry) Has(key string) bool {
	_, ok := r.Find(key)
	return ok
}

// All lists every definition in registration order.
func (r *Registry) All() []*Definition {
	if r == nil {
		return nil
	}
	out := make([]*Definition, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Keys lists template keys in registration order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.ordered))
	for _, definition := range r.ordered {
		keys = append(keys, definition.Key)
	}
	return keys
}

// Len reports the number of definitions.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ordered)
}

// SlotPolicy reports how empty allowed_slots lists are interpreted.
func (r *Registry) SlotPolicy() SlotPolicy {
	if r == nil {
		return SlotPolicyStrict
	}
	return r.policy
}

// ForSlot lists, in registration order, the definitions placeable in slot.
// Under SlotPolicyStrict that is exactly the definitions whose allowed_slots
// contain slot.
func (r *Registry) ForSlot(slot string) []*Definition {
	out := []*Definition{}
	if r == nil {
		return out
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return out
	}
	for _, definition := range r.ordered {
		if definition.AllowsSlot(slot, r.policy) {
			out = append(out, definition)
		}
	}
	return out
}

// Provider hands out the registry currently in effect. Implementations that
// reload catalogs swap the whole registry instead of mutating it.
type Provider interface {
	Registry() *Registry
}

type staticProvider struct {
	registry *Registry
}

// Static wraps a fixed registry as a Provider.
func Static(registry *Registry) Provider {
	if registry == nil {
		registry = Empty()
	}
	return staticProvider{registry: registry}
}

func (p staticProvider) Registry() *Registry {
	return p.registry
}

func normalizeSlots(slots []string) []string {
	out := make([]string, 0, len(slots))
	seen := make(map[string]struct{}, len(slots))
	for _, slot := range slots {
		trimmed := strings.TrimSpace(slot)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
