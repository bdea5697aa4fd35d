package templates

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidTemplate marks a catalog entry that cannot be identified (e.g. an empty key).
	ErrInvalidTemplate = errors.New("templates: invalid template")
	// ErrDuplicateTemplateKey marks two catalog entries sharing the same key.
	ErrDuplicateTemplateKey = errors.New("templates: duplicate template key")
	// ErrMalformedTemplate marks an identifiable entry whose field schema is unusable.
	ErrMalformedTemplate = errors.New("templates: malformed template")
	// ErrUnknownTemplate marks a lookup for a key the registry does not hold.
	ErrUnknownTemplate = errors.New("templates: unknown template")
)

// DefinitionError describes a catalog load failure. Kind is one of the package
// sentinels so callers can match with errors.Is.
type DefinitionError struct {
	Kind   error
	Index  int
	Key    string
	Field  string
	Reason string
}

func (e *DefinitionError) Error() string {
	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("templates: definition error")
	}
	if e.Key != "" {
		b.WriteString(" ")
		b.WriteString(`"` + e.Key + `"`)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *DefinitionError) Unwrap() error {
	return e.Kind
}

// UnknownTemplateError is returned by Registry.Get for keys that do not resolve.
type UnknownTemplateError struct {
	Key string
}

func (e *UnknownTemplateError) Error() string {
	return ErrUnknownTemplate.Error() + ` "` + e.Key + `"`
}

func (e *UnknownTemplateError) Unwrap() error {
	return ErrUnknownTemplate
}
