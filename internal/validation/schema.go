package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-sections/internal/rules"
	"github.com/goliatone/go-sections/internal/templates"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaDialect is the JSON Schema draft used by exported schemas.
const SchemaDialect = "https://json-schema.org/draft/2020-12/schema"

// DefinitionSchema exports the data payload of definition as a JSON Schema
// document for editors and external tooling. Validate remains the
// authoritative check; rich text lengths, for instance, are measured on
// extracted text and cannot be expressed here.
func DefinitionSchema(definition *templates.Definition) map[string]any {
	if definition == nil {
		return nil
	}
	schema := objectSchema(definition.Fields)
	schema["$schema"] = SchemaDialect
	schema["title"] = definition.Label
	if definition.Description != "" {
		schema["description"] = definition.Description
	}
	if len(definition.Fields) == 0 {
		schema["additionalProperties"] = true
	}
	return schema
}

// ValidateSchema ensures the schema can be compiled.
func ValidateSchema(schema map[string]any) error {
	if schema == nil {
		return nil
	}
	if _, err := compileSchema(schema); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return nil
}

// ValidatePayloadSchema validates data against the exported schema of definition.
func ValidatePayloadSchema(definition *templates.Definition, data map[string]any) error {
	schema := DefinitionSchema(definition)
	if schema == nil {
		return nil
	}
	compiled, err := compileSchema(schema)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	instance, err := toJSONValue(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if err := compiled.Validate(instance); err != nil {
		return &PayloadValidationError{Issues: Issues(err), Cause: err}
	}
	return nil
}

func objectSchema(fields []templates.FieldSchema) map[string]any {
	properties := make(map[string]any, len(fields))
	required := make([]string, 0)
	for _, field := range fields {
		properties[field.Name] = fieldSchema(field)
		if field.Required && !field.HasDefault() {
			required = append(required, field.Name)
		}
	}
	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func fieldSchema(field templates.FieldSchema) map[string]any {
	var schema map[string]any
	switch rules.TypeFor(field.Type) {
	case rules.TypeInteger:
		schema = map[string]any{"type": "integer"}
	case rules.TypeBoolean:
		schema = map[string]any{"type": "boolean"}
	case rules.TypeIntegerList:
		schema = map[string]any{"type": "array", "items": map[string]any{"type": "integer"}}
	case rules.TypeObjectList:
		schema = map[string]any{"type": "array", "items": objectSchema(field.ItemFields)}
	default:
		schema = map[string]any{"type": "string"}
		if field.Type == templates.FieldRichText {
			schema["contentMediaType"] = "application/json"
		}
	}

	if field.Label != "" {
		schema["title"] = field.Label
	}
	if field.HasDefault() {
		schema["default"] = field.Default
	}

	constraints, _ := field.Constraints()
	for _, constraint := range constraints {
		applyConstraint(schema, field.Type, constraint)
	}

	if !field.Required || field.HasDefault() {
		schema["type"] = []any{schema["type"], "null"}
		if enum, ok := schema["enum"].([]any); ok {
			schema["enum"] = append(enum, nil)
		}
	}
	return schema
}

func applyConstraint(schema map[string]any, kind templates.FieldType, constraint templates.Constraint) {
	minKey, maxKey := boundKeys(kind)
	bounds, _ := constraint.Bounds()
	switch constraint.Name {
	case templates.ConstraintMin:
		if minKey != "" {
			schema[minKey] = bounds[0]
		}
	case templates.ConstraintMax:
		if maxKey != "" {
			schema[maxKey] = bounds[0]
		}
	case templates.ConstraintSize:
		if minKey != "" {
			schema[minKey] = bounds[0]
			schema[maxKey] = bounds[0]
		}
	case templates.ConstraintBetween:
		if minKey != "" {
			schema[minKey] = bounds[0]
			schema[maxKey] = bounds[1]
		}
	case templates.ConstraintEmail:
		schema["format"] = "email"
	case templates.ConstraintURL:
		schema["format"] = "uri"
	case templates.ConstraintAlpha:
		schema["pattern"] = alphaPattern.String()
	case templates.ConstraintAlphaNum:
		schema["pattern"] = alphaNumPattern.String()
	case templates.ConstraintAlphaDash:
		schema["pattern"] = alphaDashPattern.String()
	case templates.ConstraintRegex:
		if pattern, err := constraint.Pattern(); err == nil {
			schema["pattern"] = pattern.String()
		}
	case templates.ConstraintIn:
		schema["enum"] = enumValues(kind, constraint.Args)
	case templates.ConstraintNotIn:
		schema["not"] = map[string]any{"enum": enumValues(kind, constraint.Args)}
	case templates.ConstraintDistinct:
		schema["uniqueItems"] = true
	}
}

// boundKeys picks the JSON Schema keywords length tokens map onto. Rich text
// lengths count extracted characters, which JSON Schema cannot express.
func boundKeys(kind templates.FieldType) (string, string) {
	switch kind {
	case templates.FieldInteger:
		return "minimum", "maximum"
	case templates.FieldIntegerList, templates.FieldCollection:
		return "minItems", "maxItems"
	case templates.FieldRichText:
		return "", ""
	default:
		return "minLength", "maxLength"
	}
}

func enumValues(kind templates.FieldType, args []string) []any {
	out := make([]any, 0, len(args))
	for _, arg := range args {
		if kind == templates.FieldInteger {
			if n, ok := templates.AsInteger(json.Number(arg)); ok {
				out = append(out, n)
				continue
			}
		}
		out = append(out, arg)
	}
	return out
}

func toJSONValue(data map[string]any) (any, error) {
	if data == nil {
		data = map[string]any{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: pointerToPath(node.InstanceLocation),
				Code:     CodeSchema,
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

// pointerToPath turns "/faq/0/question" into "data.faq.0.question".
func pointerToPath(pointer string) string {
	trimmed := strings.Trim(strings.TrimSpace(pointer), "/")
	if trimmed == "" {
		return rules.Root
	}
	segments := strings.Split(trimmed, "/")
	for i, segment := range segments {
		segments[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(segment)
	}
	return rules.Root + "." + strings.Join(segments, ".")
}
