package templates

import (
	"fmt"
	"strings"
)

func buildFields(configs []FieldConfig, parent string, depth, maxDepth int) ([]FieldSchema, *DefinitionError) {
	if depth > maxDepth {
		return nil, malformed(parent, fmt.Sprintf("collection nesting exceeds the maximum depth of %d", maxDepth))
	}

	fields := make([]FieldSchema, 0, len(configs))
	seen := make(map[string]struct{}, len(configs))

	for _, cfg := range configs {
		name := strings.TrimSpace(cfg.Name)
		path := joinPath(parent, name)
		if name == "" {
			return nil, malformed(parent, "field name is required")
		}
		if _, dup := seen[name]; dup {
			return nil, malformed(path, "field name is declared more than once")
		}
		seen[name] = struct{}{}

		field, err := buildField(cfg, name, path, depth, maxDepth)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func buildField(cfg FieldConfig, name, path string, depth, maxDepth int) (FieldSchema, *DefinitionError) {
	kind, err := ParseFieldType(cfg.Type)
	if err != nil {
		return FieldSchema{}, malformed(path, err.Error())
	}

	tokens, err := SplitValidation(cfg.Validation)
	if err != nil {
		return FieldSchema{}, malformed(path, err.Error())
	}

	field := FieldSchema{
		Name:     name,
		Label:    strings.TrimSpace(cfg.Label),
		Type:     kind,
		Required: cfg.Required,
	}
	if field.Label == "" {
		field.Label = name
	}

	for _, token := range tokens {
		if required, ok := isPresenceToken(token); ok {
			field.Required = field.Required || required
			continue
		}
		constraint, err := ParseConstraint(token)
		if err != nil {
			return FieldSchema{}, malformed(path, err.Error())
		}
		if !constraint.AppliesTo(kind) {
			return FieldSchema{}, malformed(path, fmt.Sprintf("validation token %q does not apply to %s fields", constraint.Raw, kind))
		}
		if kind != FieldInteger {
			if bounds, _ := constraint.Bounds(); hasNegative(bounds) && isMeasure(constraint.Name) {
				return FieldSchema{}, malformed(path, fmt.Sprintf("validation token %q needs non-negative lengths", constraint.Raw))
			}
		}
		field.Validation = append(field.Validation, constraint.Raw)
	}

	switch kind {
	case FieldCollection:
		if len(cfg.ItemFields) == 0 {
			return FieldSchema{}, malformed(path, "collection fields need at least one item field")
		}
		items, derr := buildFields(cfg.ItemFields, path, depth+1, maxDepth)
		if derr != nil {
			return FieldSchema{}, derr
		}
		field.ItemFields = items
	default:
		if len(cfg.ItemFields) > 0 {
			return FieldSchema{}, malformed(path, fmt.Sprintf("%s fields cannot declare item fields", kind))
		}
	}

	if cfg.Default != nil {
		value, ok := normalizeDefault(kind, cfg.Default)
		if !ok {
			return FieldSchema{}, malformed(path, fmt.Sprintf("default value %v is not a valid %s", cfg.Default, kind))
		}
		field.Default = value
	}

	return field, nil
}

// normalizeDefault checks type compatibility and canonicalises numbers to int64
// so defaults behave the same whatever format the catalog was read from.
func normalizeDefault(kind FieldType, value any) (any, bool) {
	if !kind.Accepts(value) {
		return nil, false
	}
	switch kind {
	case FieldInteger:
		n, _ := AsInteger(value)
		return n, true
	case FieldIntegerList:
		list, _ := AsList(value)
		out := make([]any, len(list))
		for i, item := range list {
			n, _ := AsInteger(item)
			out[i] = n
		}
		return out, true
	case FieldCollection:
		list, _ := AsList(value)
		out := make([]any, len(list))
		for i, item := range list {
			object, _ := AsObject(item)
			out[i] = cloneValue(object)
		}
		return out, true
	default:
		return value, true
	}
}

func malformed(path, reason string) *DefinitionError {
	return &DefinitionError{Kind: ErrMalformedTemplate, Field: path, Reason: reason}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + ".*." + name
}

func hasNegative(values []int64) bool {
	for _, value := range values {
		if value < 0 {
			return true
		}
	}
	return false
}

func isMeasure(name string) bool {
	switch name {
	case ConstraintMin, ConstraintMax, ConstraintSize, ConstraintBetween:
		return true
	}
	return false
}
