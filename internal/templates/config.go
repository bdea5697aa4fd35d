package templates

// ConfigEntry is the raw catalog record supplied by a configuration loader.
// Tags cover both JSON and YAML sources.
type ConfigEntry struct {
	Key          string        `json:"key" yaml:"key"`
	Label        string        `json:"label" yaml:"label"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	AllowedSlots []string      `json:"allowed_slots,omitempty" yaml:"allowed_slots,omitempty"`
	Fields       []FieldConfig `json:"fields" yaml:"fields"`
}

// FieldConfig is the raw descriptor of a field. Validation accepts either a
// pipe separated string or a list of strings.
type FieldConfig struct {
	Name       string        `json:"name" yaml:"name"`
	Label      string        `json:"label" yaml:"label"`
	Type       string        `json:"type" yaml:"type"`
	Required   bool          `json:"required,omitempty" yaml:"required,omitempty"`
	Default    any           `json:"default,omitempty" yaml:"default,omitempty"`
	Validation any           `json:"validation,omitempty" yaml:"validation,omitempty"`
	ItemFields []FieldConfig `json:"item_fields,omitempty" yaml:"item_fields,omitempty"`
}
