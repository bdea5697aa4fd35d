package templates

import (
	"slices"

	"github.com/google/uuid"
)

// SlotPolicy decides how an empty allowed_slots list is interpreted.
type SlotPolicy uint8

const (
	// SlotPolicyStrict treats an empty allowed_slots list as matching no slot.
	// Such templates can only back sections that have no slot.
	SlotPolicyStrict SlotPolicy = iota
	// SlotPolicyUnrestricted treats an empty allowed_slots list as matching every slot.
	SlotPolicyUnrestricted
)

// Definition is an immutable, named set of field schemas plus the layout slots
// it may occupy.
type Definition struct {
	ID           uuid.UUID
	Key          string
	Label        string
	Description  string
	AllowedSlots []string
	Fields       []FieldSchema
}

// Field returns the top level field with the given name.
func (d *Definition) Field(name string) (FieldSchema, bool) {
	if d == nil {
		return FieldSchema{}, false
	}
	for _, field := range d.Fields {
		if field.Name == name {
			return field.clone(), true
		}
	}
	return FieldSchema{}, false
}

// FieldNames lists top level field names in declaration order.
func (d *Definition) FieldNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.Fields))
	for _, field := range d.Fields {
		names = append(names, field.Name)
	}
	return names
}

// Defaults returns the declared default of every top level field that has one.
func (d *Definition) Defaults() map[string]any {
	out := map[string]any{}
	if d == nil {
		return out
	}
	for _, field := range d.Fields {
		if field.HasDefault() {
			out[field.Name] = cloneValue(field.Default)
		}
	}
	return out
}

// ListsSlot reports whether slot appears in AllowedSlots.
func (d *Definition) ListsSlot(slot string) bool {
	return d != nil && slices.Contains(d.AllowedSlots, slot)
}

// AllowsSlot reports whether a section using this template may be placed in slot
// under policy. An empty slot (no placement zone) is always allowed.
func (d *Definition) AllowsSlot(slot string, policy SlotPolicy) bool {
	if d == nil {
		return false
	}
	if slot == "" {
		return true
	}
	if len(d.AllowedSlots) == 0 {
		return policy == SlotPolicyUnrestricted
	}
	return d.ListsSlot(slot)
}

// HasRichText reports whether any field, including collection item fields, is rich text.
func (d *Definition) HasRichText() bool {
	if d == nil {
		return false
	}
	var walk func([]FieldSchema) bool
	walk = func(fields []FieldSchema) bool {
		for _, field := range fields {
			if field.Type == FieldRichText {
				return true
			}
			if field.Type == FieldCollection && walk(field.ItemFields) {
				return true
			}
		}
		return false
	}
	return walk(d.Fields)
}

// Clone returns a deep copy that callers may modify freely.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	out := *d
	out.AllowedSlots = slices.Clone(d.AllowedSlots)
	out.Fields = cloneFields(d.Fields)
	return &out
}

// RichTextPaths lists the data paths of every rich text field. Collection item
// fields use "*" for the item index, e.g. "faq.*.answer".
func (d *Definition) RichTextPaths() []string {
	if d == nil {
		return nil
	}
	var paths []string
	var walk func(prefix string, fields []FieldSchema)
	walk = func(prefix string, fields []FieldSchema) {
		for _, field := range fields {
			path := joinPath(prefix, field.Name)
			switch field.Type {
			case FieldRichText:
				paths = append(paths, path)
			case FieldCollection:
				walk(path, field.ItemFields)
			}
		}
	}
	walk("", d.Fields)
	return paths
}
