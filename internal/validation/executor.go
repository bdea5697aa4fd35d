package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sections/internal/richtext"
	"github.com/goliatone/go-sections/internal/rules"
	"github.com/goliatone/go-sections/internal/templates"
)

var (
	alphaPattern     = regexp.MustCompile(`^\p{L}+$`)
	alphaNumPattern  = regexp.MustCompile(`^[\p{L}\p{N}]+$`)
	alphaDashPattern = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)

	dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", time.DateOnly}
)

// Validate executes set against a data payload and returns a
// *PayloadValidationError listing every issue, or nil.
func Validate(set rules.RuleSet, data map[string]any) error {
	run := &execution{set: set}
	run.object(rules.Root, rules.Root, data)
	if len(run.issues) == 0 {
		return nil
	}
	return &PayloadValidationError{Issues: run.issues}
}

// ValidateTemplatePayload synthesizes the rules for key and validates data.
// Unknown keys are reported as an issue on the template key, never silently
// accepted.
func ValidateTemplatePayload(reg *templates.Registry, key string, data map[string]any) error {
	set, err := rules.Synthesize(reg, key)
	if err != nil {
		return UnknownTemplate(key, err)
	}
	return Validate(set, data)
}

// UnknownTemplate reports an unresolvable template key as a validation failure.
func UnknownTemplate(key string, cause error) *PayloadValidationError {
	return NewIssueError(TemplateKeyLocation, CodeUnknownTemplate, fmt.Sprintf("template %q is not registered", strings.TrimSpace(key)), cause)
}

type execution struct {
	set    rules.RuleSet
	issues []ValidationIssue
}

func (x *execution) add(location, code, message string) {
	x.issues = append(x.issues, ValidationIssue{Location: location, Code: code, Message: message})
}

func (x *execution) object(parent, location string, data map[string]any) {
	if x.set.Strict {
		known := x.set.KnownKeys(parent)
		unknown := make([]string, 0)
		for key := range data {
			if !slices.Contains(known, key) {
				unknown = append(unknown, key)
			}
		}
		sort.Strings(unknown)
		for _, key := range unknown {
			x.add(location+"."+key, CodeUnknownField, "is not a field of this template")
		}
	}

	for _, rule := range x.set.Children(parent) {
		value, present := data[rule.Field]
		x.value(rule, location+"."+rule.Field, value, present)
	}
}

func (x *execution) value(rule rules.Rule, location string, value any, present bool) {
	if missing(value, present) {
		if rule.Required() {
			x.add(location, CodeRequired, "is required")
		}
		return
	}

	if !rule.FieldType.Accepts(value) {
		x.add(location, CodeType, fmt.Sprintf("must be %s", describeType(rule.Type)))
		return
	}

	for _, token := range rule.Constraints {
		constraint, err := templates.ParseConstraint(token)
		if err != nil {
			x.add(location, CodeSchema, err.Error())
			continue
		}
		if err := ozzo.Validate(value, ozzoRule(rule, constraint)); err != nil {
			x.add(location, errorCode(err, constraint.Name), err.Error())
		}
	}

	if rule.FieldType != templates.FieldCollection {
		return
	}
	items, _ := templates.AsList(value)
	for index, item := range items {
		object, _ := templates.AsObject(item)
		x.object(rule.Path+"."+rules.Wildcard, location+"."+strconv.Itoa(index), object)
	}
}

// missing treats absent keys, nulls, blank strings and empty lists alike.
func missing(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text) == ""
	}
	if list, ok := templates.AsList(value); ok {
		return len(list) == 0
	}
	return false
}

func describeType(t rules.TypeConstraint) string {
	switch t {
	case rules.TypeInteger:
		return "an integer"
	case rules.TypeBoolean:
		return "a boolean"
	case rules.TypeIntegerList:
		return "a list of integers"
	case rules.TypeObjectList:
		return "a list of objects"
	default:
		return "a string"
	}
}

func errorCode(err error, fallback string) string {
	if typed, ok := err.(ozzo.Error); ok && typed.Code() != "" {
		return typed.Code()
	}
	return fallback
}

func ozzoRule(rule rules.Rule, constraint templates.Constraint) ozzo.Rule {
	switch constraint.Name {
	case templates.ConstraintMin, templates.ConstraintMax, templates.ConstraintSize, templates.ConstraintBetween:
		return boundsRule(rule, constraint)
	case templates.ConstraintEmail:
		return ozzo.By(func(value any) error {
			text, _ := value.(string)
			if address, err := mail.ParseAddress(text); err != nil || address.Address != text {
				return ozzo.NewError(templates.ConstraintEmail, "must be a valid email address")
			}
			return nil
		})
	case templates.ConstraintURL:
		return ozzo.By(func(value any) error {
			text, _ := value.(string)
			parsed, err := url.ParseRequestURI(text)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				return ozzo.NewError(templates.ConstraintURL, "must be a valid URL")
			}
			return nil
		})
	case templates.ConstraintAlpha:
		return ozzo.Match(alphaPattern).ErrorObject(ozzo.NewError(templates.ConstraintAlpha, "may only contain letters"))
	case templates.ConstraintAlphaNum:
		return ozzo.Match(alphaNumPattern).ErrorObject(ozzo.NewError(templates.ConstraintAlphaNum, "may only contain letters and numbers"))
	case templates.ConstraintAlphaDash:
		return ozzo.Match(alphaDashPattern).ErrorObject(ozzo.NewError(templates.ConstraintAlphaDash, "may only contain letters, numbers, dashes and underscores"))
	case templates.ConstraintRegex:
		pattern, _ := constraint.Pattern()
		return ozzo.Match(pattern).ErrorObject(ozzo.NewError(templates.ConstraintRegex, "has an invalid format"))
	case templates.ConstraintDate:
		return ozzo.By(func(value any) error {
			text, _ := value.(string)
			for _, layout := range dateLayouts {
				if _, err := time.Parse(layout, text); err == nil {
					return nil
				}
			}
			return ozzo.NewError(templates.ConstraintDate, "must be a valid date")
		})
	case templates.ConstraintIn, templates.ConstraintNotIn:
		return membershipRule(constraint)
	case templates.ConstraintDistinct:
		return ozzo.By(func(value any) error {
			list, _ := templates.AsList(value)
			seen := make(map[int64]struct{}, len(list))
			for _, item := range list {
				n, _ := templates.AsInteger(item)
				if _, dup := seen[n]; dup {
					return ozzo.NewError(templates.ConstraintDistinct, "must not contain duplicate values")
				}
				seen[n] = struct{}{}
			}
			return nil
		})
	default:
		return ozzo.By(func(any) error {
			return ozzo.NewError(CodeSchema, fmt.Sprintf("unsupported constraint %q", constraint.Raw))
		})
	}
}

// membershipRule compares the canonical string form so integers and strings
// share one code path and zero values are not skipped.
func membershipRule(constraint templates.Constraint) ozzo.Rule {
	return ozzo.By(func(value any) error {
		canonical := canonicalString(value)
		found := slices.Contains(constraint.Args, canonical)
		switch {
		case constraint.Name == templates.ConstraintIn && !found:
			return ozzo.NewError(templates.ConstraintIn, "must be one of: {{.values}}").
				SetParams(map[string]any{"values": strings.Join(constraint.Args, ", ")})
		case constraint.Name == templates.ConstraintNotIn && found:
			return ozzo.NewError(templates.ConstraintNotIn, "must not be one of: {{.values}}").
				SetParams(map[string]any{"values": strings.Join(constraint.Args, ", ")})
		}
		return nil
	})
}

func canonicalString(value any) string {
	if n, ok := templates.AsInteger(value); ok {
		if _, isString := value.(string); !isString {
			return strconv.FormatInt(n, 10)
		}
	}
	if text, ok := value.(string); ok {
		return text
	}
	return fmt.Sprint(value)
}

func boundsRule(rule rules.Rule, constraint templates.Constraint) ozzo.Rule {
	bounds, _ := constraint.Bounds()
	return ozzo.By(func(value any) error {
		actual, unit := measure(rule.FieldType, value)
		var low, high int64
		lowSet, highSet := false, false
		switch constraint.Name {
		case templates.ConstraintMin:
			low, lowSet = bounds[0], true
		case templates.ConstraintMax:
			high, highSet = bounds[0], true
		case templates.ConstraintSize:
			low, high, lowSet, highSet = bounds[0], bounds[0], true, true
		case templates.ConstraintBetween:
			low, high, lowSet, highSet = bounds[0], bounds[1], true, true
		}
		if (lowSet && actual < low) || (highSet && actual > high) {
			return boundsError(constraint.Name, unit, low, high)
		}
		return nil
	})
}

func boundsError(code, unit string, low, high int64) ozzo.Error {
	params := map[string]any{"min": low, "max": high, "unit": unit}
	var message string
	switch code {
	case templates.ConstraintMin:
		message = "must be at least {{.min}}{{.unit}}"
	case templates.ConstraintMax:
		message = "must be at most {{.max}}{{.unit}}"
	case templates.ConstraintSize:
		message = "must be exactly {{.min}}{{.unit}}"
	default:
		message = "must be between {{.min}} and {{.max}}{{.unit}}"
	}
	return ozzo.NewError(code, message).SetParams(params)
}

// measure returns the quantity length tokens compare against, with a unit
// suffix for messages.
func measure(kind templates.FieldType, value any) (int64, string) {
	switch kind {
	case templates.FieldInteger:
		n, _ := templates.AsInteger(value)
		return n, ""
	case templates.FieldRichText:
		text, _ := value.(string)
		return int64(richtext.CharacterCount(text)), " characters"
	case templates.FieldIntegerList, templates.FieldCollection:
		list, _ := templates.AsList(value)
		return int64(len(list)), " items"
	default:
		text, _ := value.(string)
		return int64(utf8.RuneCountInString(text)), " characters"
	}
}
