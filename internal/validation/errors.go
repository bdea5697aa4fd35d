package validation

import (
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// Issue codes reported outside the constraint vocabulary.
const (
	CodeRequired          = "required"
	CodeType              = "type"
	CodeUnknownField      = "unknown_field"
	CodeUnknownTemplate   = "unknown_template"
	CodeSchema            = "schema"
	CodePayloadTooLarge   = "payload_too_large"
	CodeTooManyCharacters = "too_many_characters"
)

// TemplateKeyLocation addresses the template key of a write request.
const TemplateKeyLocation = "template_key"

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Code     string
	Message  string
}

// PayloadValidationError surfaces field addressable validation issues.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes ErrSchemaValidation and, when present, the underlying cause
// so errors.Is matches either.
func (e *PayloadValidationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrSchemaValidation}
	}
	return []error{ErrSchemaValidation, e.Cause}
}

// Fields groups issue messages by location.
func (e *PayloadValidationError) Fields() map[string][]string {
	out := make(map[string][]string, len(e.Issues))
	for _, issue := range e.Issues {
		out[issue.Location] = append(out[issue.Location], issue.Message)
	}
	return out
}

// NewIssueError builds a single-issue validation error.
func NewIssueError(location, code, message string, cause error) *PayloadValidationError {
	return &PayloadValidationError{
		Issues: []ValidationIssue{{Location: location, Code: code, Message: message}},
		Cause:  cause,
	}
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}
