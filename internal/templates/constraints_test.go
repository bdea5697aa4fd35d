package templates

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestParseConstraint(t *testing.T) {
	cases := []struct {
		token   string
		name    string
		args    []string
		wantErr bool
	}{
		{token: "min:3", name: ConstraintMin, args: []string{"3"}},
		{token: "between:1, 4", name: ConstraintBetween, args: []string{"1", "4"}},
		{token: "in:a,b,c", name: ConstraintIn, args: []string{"a", "b", "c"}},
		{token: "regex:/^[a-z,]+$/i", name: ConstraintRegex, args: []string{"/^[a-z,]+$/i"}},
		{token: "email", name: ConstraintEmail},
		{token: "between:4,1", wantErr: true},
		{token: "min:x", wantErr: true},
		{token: "max", wantErr: true},
		{token: "regex:([", wantErr: true},
		{token: "regex:/a/q", wantErr: true},
		{token: "glitter", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			got, err := ParseConstraint(tc.token)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.token)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tc.token, err)
			}
			if got.Name != tc.name || !reflect.DeepEqual(got.Args, tc.args) {
				t.Fatalf("unexpected constraint %+v", got)
			}
		})
	}
}

func TestConstraintPatternFlags(t *testing.T) {
	c, err := ParseConstraint("regex:/^abc$/i")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	re, err := c.Pattern()
	if err != nil {
		t.Fatalf("pattern: %v", err)
	}
	if !re.MatchString("ABC") {
		t.Fatalf("expected case insensitive match")
	}
}

func TestSplitValidation(t *testing.T) {
	got, err := SplitValidation("required| min:3 |regex:^a|b$")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	want := []string{"required", "min:3", "regex:^a|b$"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v got %v", want, got)
	}

	if _, err := SplitValidation([]any{"min:1", 3}); err == nil {
		t.Fatalf("expected non-string entries to fail")
	}
	if _, err := SplitValidation(42); err == nil {
		t.Fatalf("expected unsupported shape to fail")
	}
}

func TestFieldTypeAccepts(t *testing.T) {
	cases := []struct {
		kind  FieldType
		value any
		want  bool
	}{
		{FieldString, "x", true},
		{FieldString, 1, false},
		{FieldInteger, float64(3), true},
		{FieldInteger, 3.2, false},
		{FieldBoolean, true, true},
		{FieldIntegerList, []any{1, float64(2)}, true},
		{FieldIntegerList, []int{1, 2}, true},
		{FieldIntegerList, []any{"1"}, false},
		{FieldCollection, []any{map[string]any{"a": 1}}, true},
		{FieldCollection, []any{"a"}, false},
	}
	for _, tc := range cases {
		if got := tc.kind.Accepts(tc.value); got != tc.want {
			t.Fatalf("%s accepts %#v: expected %v got %v", tc.kind, tc.value, tc.want, got)
		}
	}
}

func TestAsIntegerBounds(t *testing.T) {
	cases := []struct {
		value any
		want  int64
		ok    bool
	}{
		{float64(1 << 62), 1 << 62, true},
		{float64(-1 << 63), math.MinInt64, true},
		{float64(1 << 63), 0, false},
		{math.Nextafter(float64(1<<63), math.Inf(1)), 0, false},
		{json.Number("9223372036854775808"), 0, false},
		{json.Number("9223372036854775807"), math.MaxInt64, true},
		{uint64(math.MaxUint64), 0, false},
	}
	for _, tc := range cases {
		got, ok := AsInteger(tc.value)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("AsInteger(%#v) = %d, %v; expected %d, %v", tc.value, got, ok, tc.want, tc.ok)
		}
	}
}
