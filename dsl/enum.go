package dsl

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/i18n"
	js "github.com/kharioki/skematic/jsonschema"
)

// enumSchema accepts exactly one of a fixed set of values.
type enumSchema[E comparable] struct {
	vals []E
}

var _ skematic.Schema[string] = enumSchema[string]{}

// Enum returns a schema accepting only the listed values. Input must arrive
// as the member type's wire form: a string for string members, a JSON number
// for numeric members. Named types bridge to their wire form and nothing
// else converts.
func Enum[E comparable](vals ...E) enumSchema[E] {
	return enumSchema[E]{vals: append([]E(nil), vals...)}
}

// match reports whether v carries the member wire type and, if so, whether it
// is in the set. Conversion is gated on wire-type equality so a JSON number
// never matches a string member through its text and a Go int never
// rune-converts into one.
func (e enumSchema[E]) match(v any) (E, bool, bool) {
	var zero E
	if tv, ok := v.(E); ok {
		return tv, true, e.member(tv)
	}
	et := reflect.TypeOf(zero)
	if et == nil || v == nil {
		return zero, false, false
	}
	switch typeNameOf(v) {
	case "string":
		if et.Kind() != reflect.String {
			return zero, false, false
		}
		tv, ok := reflect.ValueOf(v).Convert(et).Interface().(E)
		if !ok {
			return zero, false, false
		}
		return tv, true, e.member(tv)
	case "number":
		if !numericKind(et.Kind()) {
			return zero, false, false
		}
		f, ok := wireFloat(v)
		if !ok {
			return zero, false, false
		}
		for _, c := range e.vals {
			if memberFloat(reflect.ValueOf(c)) == f {
				return c, true, true
			}
		}
		return zero, true, false
	case "boolean":
		if et.Kind() != reflect.Bool {
			return zero, false, false
		}
		tv, ok := reflect.ValueOf(v).Convert(et).Interface().(E)
		if !ok {
			return zero, false, false
		}
		return tv, true, e.member(tv)
	}
	return zero, false, false
}

func (e enumSchema[E]) member(tv E) bool {
	for _, c := range e.vals {
		if tv == c {
			return true
		}
	}
	return false
}

// wireName renders the member type in wire vocabulary for type issues.
func (e enumSchema[E]) wireName() string {
	var zero E
	et := reflect.TypeOf(zero)
	if et == nil {
		return "null"
	}
	switch {
	case et.Kind() == reflect.String:
		return "string"
	case et.Kind() == reflect.Bool:
		return "boolean"
	case numericKind(et.Kind()):
		return "number"
	}
	return et.String()
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// wireFloat widens any wire number to float64 for membership comparison.
func wireFloat(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

func memberFloat(rv reflect.Value) float64 {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	default:
		return float64(rv.Int())
	}
}

func (e enumSchema[E]) issue(path string, v any) skematic.Issue {
	opts := make([]string, 0, len(e.vals))
	raw := make([]any, 0, len(e.vals))
	for _, c := range e.vals {
		opts = append(opts, fmt.Sprintf("'%v'", c))
		raw = append(raw, c)
	}
	received := fmt.Sprintf("'%v'", v)
	return skematic.Issue{
		Path: path,
		Code: skematic.CodeInvalidEnum,
		Message: i18n.T(skematic.CodeInvalidEnum, map[string]string{
			"options":  strings.Join(opts, " | "),
			"received": received,
		}),
		Params: map[string]any{"options": raw, "received": v},
	}
}

func (e enumSchema[E]) Parse(ctx context.Context, v any) (E, error) {
	tv, convertible, member := e.match(v)
	if !convertible {
		var zero E
		return zero, skematic.Issues{typeIssue("/", e.wireName(), v)}
	}
	if !member {
		var zero E
		return zero, skematic.Issues{e.issue("/", v)}
	}
	return tv, nil
}

func (e enumSchema[E]) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[E], error) {
	tv, err := e.Parse(ctx, v)
	if err != nil {
		return skematic.Parsed[E]{}, err
	}
	return skematic.Parsed[E]{Value: tv, Presence: skematic.PresenceMap{"/": skematic.PresenceSeen}}, nil
}

func (e enumSchema[E]) TypeCheck(ctx context.Context, v any) error {
	if _, convertible, _ := e.match(v); !convertible {
		return skematic.Issues{typeIssue("/", e.wireName(), v)}
	}
	return nil
}

func (e enumSchema[E]) RuleCheck(ctx context.Context, v any) error {
	if _, convertible, member := e.match(v); convertible && !member {
		return skematic.Issues{e.issue("/", v)}
	}
	return nil
}

func (e enumSchema[E]) Validate(ctx context.Context, v any) error {
	if err := e.TypeCheck(ctx, v); err != nil {
		return err
	}
	return e.RuleCheck(ctx, v)
}

func (e enumSchema[E]) ValidateValue(ctx context.Context, v E) error {
	if e.member(v) {
		return nil
	}
	return skematic.Issues{e.issue("/", v)}
}

func (e enumSchema[E]) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Enum: make([]any, 0, len(e.vals))}
	switch wn := e.wireName(); wn {
	case "string", "number", "boolean":
		s.Type = wn
	}
	for _, c := range e.vals {
		s.Enum = append(s.Enum, c)
	}
	return s, nil
}

func (e enumSchema[E]) fieldAdapter() AnyAdapter { return anyAdapterFromSchema[E](e) }

var _ FieldSchema = enumSchema[string]{}
