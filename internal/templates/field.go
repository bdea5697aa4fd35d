package templates

import (
	"fmt"
	"slices"
	"strings"
)

// FieldType is the closed vocabulary of field kinds a template may declare.
type FieldType uint8

const (
	FieldString FieldType = iota + 1
	FieldText
	FieldRichText
	FieldInteger
	FieldBoolean
	FieldIntegerList
	FieldImage
	FieldCollection
)

var fieldTypeNames = map[FieldType]string{
	FieldString:      "string",
	FieldText:        "text",
	FieldRichText:    "rich_text",
	FieldInteger:     "integer",
	FieldBoolean:     "boolean",
	FieldIntegerList: "array_integer",
	FieldImage:       "image",
	FieldCollection:  "collection",
}

// FieldTypes lists every field type in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldString,
		FieldText,
		FieldRichText,
		FieldInteger,
		FieldBoolean,
		FieldIntegerList,
		FieldImage,
		FieldCollection,
	}
}

// ParseFieldType maps a configuration token onto the closed vocabulary.
func ParseFieldType(token string) (FieldType, error) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	for _, kind := range FieldTypes() {
		if fieldTypeNames[kind] == normalized {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unsupported field type %q", token)
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", uint8(t))
}

// Valid reports whether t belongs to the vocabulary.
func (t FieldType) Valid() bool {
	_, ok := fieldTypeNames[t]
	return ok
}

// Textual reports whether values of t are stored as plain strings.
func (t FieldType) Textual() bool {
	return t == FieldString || t == FieldText || t == FieldImage
}

// List reports whether values of t are ordered lists.
func (t FieldType) List() bool {
	return t == FieldIntegerList || t == FieldCollection
}

// FieldSchema describes a single named field of a template.
type FieldSchema struct {
	Name       string
	Label      string
	Type       FieldType
	Required   bool
	Default    any
	Validation []string
	// ItemFields describes each item of a collection field. Empty for every other type.
	ItemFields []FieldSchema
}

// HasDefault reports whether the field declares a non-null default value.
func (f FieldSchema) HasDefault() bool {
	return f.Default != nil
}

// ItemField returns the nested field with the given name.
func (f FieldSchema) ItemField(name string) (FieldSchema, bool) {
	for _, item := range f.ItemFields {
		if item.Name == name {
			return item.clone(), true
		}
	}
	return FieldSchema{}, false
}

// Constraints parses the declarative validation tokens. Tokens are checked at
// catalog load, so parsing here only fails for hand-built schemas.
func (f FieldSchema) Constraints() ([]Constraint, error) {
	out := make([]Constraint, 0, len(f.Validation))
	for _, token := range f.Validation {
		constraint, err := ParseConstraint(token)
		if err != nil {
			return nil, err
		}
		out = append(out, constraint)
	}
	return out, nil
}

func (f FieldSchema) clone() FieldSchema {
	out := f
	out.Validation = slices.Clone(f.Validation)
	out.Default = cloneValue(f.Default)
	if len(f.ItemFields) > 0 {
		out.ItemFields = make([]FieldSchema, len(f.ItemFields))
		for i, item := range f.ItemFields {
			out.ItemFields[i] = item.clone()
		}
	}
	return out
}

func cloneFields(fields []FieldSchema) []FieldSchema {
	if fields == nil {
		return nil
	}
	out := make([]FieldSchema, len(fields))
	for i, field := range fields {
		out[i] = field.clone()
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}
