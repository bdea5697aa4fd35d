package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-sections/internal/templates"
)

// Root is the path prefix every rule lives under.
const Root = "data"

// Wildcard stands for "every item" inside collection rule paths.
const Wildcard = "*"

// TypeConstraint is the minimal shape check attached to a rule.
type TypeConstraint string

const (
	TypeString      TypeConstraint = "string"
	TypeInteger     TypeConstraint = "integer"
	TypeBoolean     TypeConstraint = "boolean"
	TypeIntegerList TypeConstraint = "integer_list"
	TypeObjectList  TypeConstraint = "object_list"
)

// Presence says how a missing or null value is treated.
type Presence string

const (
	// PresenceRequired rejects absent, null, blank and empty values.
	PresenceRequired Presence = "required"
	// PresenceNullable accepts absent and null values and skips every other check.
	PresenceNullable Presence = "nullable"
)

// Rule is the declarative description of the checks for one payload path.
type Rule struct {
	// Path is the qualified location, e.g. "data.title" or "data.faq.*.answer".
	Path string
	// Parent is the object the field belongs to, e.g. "data" or "data.faq.*".
	Parent      string
	Field       string
	FieldType   templates.FieldType
	Type        TypeConstraint
	Presence    Presence
	Constraints []string
	Default     any
	HasDefault  bool
}

// Required reports whether the rule rejects missing values.
func (r Rule) Required() bool {
	return r.Presence == PresenceRequired
}

// Nested reports whether the rule addresses collection items.
func (r Rule) Nested() bool {
	return r.Parent != Root
}

// RuleSet is everything needed to validate one template's data payload.
type RuleSet struct {
	TemplateKey string
	Rules       []Rule
	// Strict rejects keys that no rule names. Templates without fields accept
	// any object, so their rule sets are never strict.
	Strict bool
}

// Empty reports whether the set carries no rules.
func (s RuleSet) Empty() bool {
	return len(s.Rules) == 0
}

// Paths lists rule paths in declaration order, parents before their items.
func (s RuleSet) Paths() []string {
	out := make([]string, 0, len(s.Rules))
	for _, rule := range s.Rules {
		out = append(out, rule.Path)
	}
	return out
}

// Lookup returns the rule for path.
func (s RuleSet) Lookup(path string) (Rule, bool) {
	for _, rule := range s.Rules {
		if rule.Path == path {
			return rule, true
		}
	}
	return Rule{}, false
}

// Children lists the rules whose parent is parent, in declaration order.
func (s RuleSet) Children(parent string) []Rule {
	var out []Rule
	for _, rule := range s.Rules {
		if rule.Parent == parent {
			out = append(out, rule)
		}
	}
	return out
}

// KnownKeys lists the field names declared under parent.
func (s RuleSet) KnownKeys(parent string) []string {
	var out []string
	for _, rule := range s.Children(parent) {
		out = append(out, rule.Field)
	}
	return out
}

// Synthesize derives the rule set for key. Keys that do not resolve fail with
// an error wrapping templates.ErrUnknownTemplate and no rules.
func Synthesize(reg *templates.Registry, key string) (RuleSet, error) {
	definition, err := reg.Get(key)
	if err != nil {
		return RuleSet{}, err
	}
	return ForDefinition(definition), nil
}

// ForDefinition derives the rule set of an already resolved definition.
func ForDefinition(definition *templates.Definition) RuleSet {
	if definition == nil {
		return RuleSet{}
	}
	set := RuleSet{
		TemplateKey: definition.Key,
		Strict:      len(definition.Fields) > 0,
	}
	set.Rules = appendRules(set.Rules, Root, definition.Fields)
	return set
}

func appendRules(out []Rule, parent string, fields []templates.FieldSchema) []Rule {
	for _, field := range fields {
		path := parent + "." + field.Name
		out = append(out, Rule{
			Path:        path,
			Parent:      parent,
			Field:       field.Name,
			FieldType:   field.Type,
			Type:        TypeFor(field.Type),
			Presence:    presenceFor(field),
			Constraints: slices.Clone(field.Validation),
			Default:     field.Default,
			HasDefault:  field.HasDefault(),
		})
		if field.Type == templates.FieldCollection {
			out = appendRules(out, path+"."+Wildcard, field.ItemFields)
		}
	}
	return out
}

// TypeFor maps every field type onto its type constraint.
func TypeFor(kind templates.FieldType) TypeConstraint {
	switch kind {
	case templates.FieldInteger:
		return TypeInteger
	case templates.FieldBoolean:
		return TypeBoolean
	case templates.FieldIntegerList:
		return TypeIntegerList
	case templates.FieldCollection:
		return TypeObjectList
	case templates.FieldString, templates.FieldText, templates.FieldRichText, templates.FieldImage:
		return TypeString
	default:
		panic(fmt.Sprintf("rules: unhandled field type %s", kind))
	}
}

func presenceFor(field templates.FieldSchema) Presence {
	if field.Required && !field.HasDefault() {
		return PresenceRequired
	}
	return PresenceNullable
}

// Describe renders a rule in the pipe separated notation used by catalogs,
// e.g. "required|string|min:3".
func (r Rule) Describe() string {
	parts := []string{string(r.Presence), string(r.Type)}
	parts = append(parts, r.Constraints...)
	return strings.Join(parts, "|")
}
