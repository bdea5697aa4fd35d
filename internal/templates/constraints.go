package templates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Constraint names understood by the validation layer.
const (
	ConstraintMin       = "min"
	ConstraintMax       = "max"
	ConstraintBetween   = "between"
	ConstraintSize      = "size"
	ConstraintEmail     = "email"
	ConstraintURL       = "url"
	ConstraintAlpha     = "alpha"
	ConstraintAlphaNum  = "alpha_num"
	ConstraintAlphaDash = "alpha_dash"
	ConstraintRegex     = "regex"
	ConstraintIn        = "in"
	ConstraintNotIn     = "not_in"
	ConstraintDate      = "date"
	ConstraintDistinct  = "distinct"
)

// Presence tokens are accepted in validation lists but expressed through the
// Required flag instead of being kept as constraints.
const (
	presenceRequired  = "required"
	presenceNullable  = "nullable"
	presenceSometimes = "sometimes"
)

// Constraint is a parsed declarative validation token such as "max:120".
type Constraint struct {
	Name string
	Args []string
	Raw  string
}

type constraintSpec struct {
	arity   func(int) bool
	numeric bool
	applies func(FieldType) bool
}

func exactly(n int) func(int) bool { return func(got int) bool { return got == n } }
func atLeast(n int) func(int) bool { return func(got int) bool { return got >= n } }

func measurable(t FieldType) bool {
	return t != FieldBoolean
}

func stringy(t FieldType) bool {
	return t == FieldString || t == FieldText
}

var constraintSpecs = map[string]constraintSpec{
	ConstraintMin:       {arity: exactly(1), numeric: true, applies: measurable},
	ConstraintMax:       {arity: exactly(1), numeric: true, applies: measurable},
	ConstraintSize:      {arity: exactly(1), numeric: true, applies: measurable},
	ConstraintBetween:   {arity: exactly(2), numeric: true, applies: measurable},
	ConstraintEmail:     {arity: exactly(0), applies: stringy},
	ConstraintURL:       {arity: exactly(0), applies: func(t FieldType) bool { return stringy(t) || t == FieldImage }},
	ConstraintAlpha:     {arity: exactly(0), applies: stringy},
	ConstraintAlphaNum:  {arity: exactly(0), applies: stringy},
	ConstraintAlphaDash: {arity: exactly(0), applies: stringy},
	ConstraintRegex:     {arity: exactly(1), applies: stringy},
	ConstraintDate:      {arity: exactly(0), applies: stringy},
	ConstraintIn:        {arity: atLeast(1), applies: func(t FieldType) bool { return t.Textual() || t == FieldInteger }},
	ConstraintNotIn:     {arity: atLeast(1), applies: func(t FieldType) bool { return t.Textual() || t == FieldInteger }},
	ConstraintDistinct:  {arity: exactly(0), applies: func(t FieldType) bool { return t == FieldIntegerList }},
}

// ParseConstraint parses a single token. Regex patterns keep their commas and
// may be wrapped in slashes ("regex:/^[a-z]+$/i").
func ParseConstraint(token string) (Constraint, error) {
	raw := strings.TrimSpace(token)
	if raw == "" {
		return Constraint{}, fmt.Errorf("empty validation token")
	}
	name, rest, hasArgs := strings.Cut(raw, ":")
	name = strings.ToLower(strings.TrimSpace(name))

	spec, ok := constraintSpecs[name]
	if !ok {
		return Constraint{}, fmt.Errorf("unknown validation token %q", raw)
	}

	var args []string
	switch {
	case !hasArgs:
	case name == ConstraintRegex:
		args = []string{rest}
	default:
		for _, part := range strings.Split(rest, ",") {
			args = append(args, strings.TrimSpace(part))
		}
	}

	if !spec.arity(len(args)) {
		return Constraint{}, fmt.Errorf("validation token %q has wrong number of arguments", raw)
	}

	constraint := Constraint{Name: name, Args: args, Raw: raw}
	if spec.numeric {
		bounds, err := constraint.Bounds()
		if err != nil {
			return Constraint{}, err
		}
		if name == ConstraintBetween && bounds[0] > bounds[1] {
			return Constraint{}, fmt.Errorf("validation token %q has inverted bounds", raw)
		}
	}
	if name == ConstraintRegex {
		if _, err := constraint.Pattern(); err != nil {
			return Constraint{}, err
		}
	}
	return constraint, nil
}

// AppliesTo reports whether the constraint is meaningful for field type t.
func (c Constraint) AppliesTo(t FieldType) bool {
	spec, ok := constraintSpecs[c.Name]
	if !ok {
		return false
	}
	return spec.applies(t)
}

// Bounds parses the integer arguments of min, max, size and between.
func (c Constraint) Bounds() ([]int64, error) {
	out := make([]int64, 0, len(c.Args))
	for _, arg := range c.Args {
		value, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("validation token %q expects integer arguments", c.Raw)
		}
		out = append(out, value)
	}
	return out, nil
}

// Pattern compiles the regex argument. Slash-delimited patterns accept the
// "i", "m" and "s" flags.
func (c Constraint) Pattern() (*regexp.Regexp, error) {
	if c.Name != ConstraintRegex || len(c.Args) != 1 {
		return nil, fmt.Errorf("validation token %q is not a regex", c.Raw)
	}
	pattern := c.Args[0]
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") {
		if end := strings.LastIndex(pattern, "/"); end > 0 {
			flags := pattern[end+1:]
			pattern = pattern[1:end]
			if flags != "" {
				if strings.Trim(flags, "ims") != "" {
					return nil, fmt.Errorf("validation token %q has unsupported regex flags", c.Raw)
				}
				pattern = "(?" + flags + ")" + pattern
			}
		}
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("validation token %q: %w", c.Raw, err)
	}
	return compiled, nil
}

// SplitValidation normalizes the configured validation value, which may be a
// pipe separated string or a list of tokens. A regex token in string form
// swallows the rest of the string so its pattern may contain pipes.
func SplitValidation(value any) ([]string, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case string:
		return splitPiped(typed), nil
	case []string:
		return trimTokens(typed), nil
	case []any:
		tokens := make([]string, 0, len(typed))
		for _, item := range typed {
			token, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("validation entries must be strings, got %T", item)
			}
			tokens = append(tokens, token)
		}
		return trimTokens(tokens), nil
	default:
		return nil, fmt.Errorf("validation must be a string or a list of strings, got %T", value)
	}
}

func splitPiped(raw string) []string {
	head, regexTail, hasRegex := strings.Cut(raw, "regex:")
	tokens := trimTokens(strings.Split(head, "|"))
	if hasRegex {
		tokens = append(tokens, "regex:"+regexTail)
	}
	return tokens
}

func trimTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// isPresenceToken reports tokens that describe requiredness rather than shape.
func isPresenceToken(token string) (required bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case presenceRequired:
		return true, true
	case presenceNullable, presenceSometimes:
		return false, true
	}
	return false, false
}
