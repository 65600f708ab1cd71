package dsl

import (
	"context"
	"math"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/i18n"
	js "github.com/kharioki/skematic/jsonschema"
)

// FieldSchema is anything the object DSL accepts as a field definition: the
// builders in this package and AnyAdapter values produced by wrapping helpers.
// External Schema[T] implementations join via SchemaOf.
type FieldSchema interface {
	fieldAdapter() AnyAdapter
}

// AnyAdapter adapts Schema[T] to an any-typed DSL wrapper.
// It keeps the original schema to support JSON Schema augmentation and
// carries the optional/default markers consumed by the object layer.
type AnyAdapter struct {
	parse         func(context.Context, any) (any, error)
	validateValue func(context.Context, any) error
	defaultValue  func() any
	optional      bool
	jsonSchema    func() (*js.Schema, error)
	orig          any
}

var _ FieldSchema = AnyAdapter{}

func (ad AnyAdapter) fieldAdapter() AnyAdapter { return ad }

// anyAdapterFromSchema wraps a strongly typed Schema[T] as AnyAdapter for Field builders.
func anyAdapterFromSchema[T any](s skematic.Schema[T]) AnyAdapter {
	return AnyAdapter{
		parse: func(ctx context.Context, v any) (any, error) { return s.Parse(ctx, v) },
		validateValue: func(ctx context.Context, v any) error {
			tv, ok := v.(T)
			if !ok {
				tv, ok = coerceForValidate[T](v)
			}
			if !ok {
				return skematic.Issues{skematic.Issue{Path: "/", Code: skematic.CodeInvalidType, Message: i18n.T(skematic.CodeInvalidType, nil)}}
			}
			return s.ValidateValue(ctx, tv)
		},
		jsonSchema: s.JSONSchema,
		orig:       s,
	}
}

// Orig returns the original underlying Schema[T] or builder object used to create this adapter.
// It is intended for advanced integrations and may change.
func (ad AnyAdapter) Orig() any { return ad.orig }

// Optional marks a field as allowed to be absent. A missing key succeeds
// without touching the inner schema; a present key still validates normally.
func Optional(fs FieldSchema) AnyAdapter {
	ad := fs.fieldAdapter()
	ad.optional = true
	return ad
}

// Optional enables fluent chaining: Field("note", d.String().Optional()).
func (ad AnyAdapter) Optional() AnyAdapter { return Optional(ad) }

// Default substitutes v when the field is absent and exports it to JSON
// Schema. The substituted value bypasses the inner schema entirely: defaults
// are trusted verbatim, which allows sentinel values outside the declared
// constraints.
func Default(fs FieldSchema, v any) AnyAdapter {
	ad := fs.fieldAdapter()
	ad.defaultValue = func() any { return v }
	prev := ad.jsonSchema
	ad.jsonSchema = func() (*js.Schema, error) {
		if prev == nil {
			return &js.Schema{Default: v}, nil
		}
		s, err := prev()
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = &js.Schema{}
		}
		s.Default = v
		return s, nil
	}
	return ad
}

// Default enables fluent chaining on an adapter value.
func (ad AnyAdapter) Default(v any) AnyAdapter { return Default(ad, v) }

// Nullable wraps a field to accept nulls (JSON null) for both parse and validate.
// When the input value is nil, parsing succeeds and returns nil; validation also succeeds.
// JSON Schema export is left to the underlying adapter as our minimal Schema does not
// model union types; callers can post-process if needed.
func Nullable(fs FieldSchema) AnyAdapter {
	ad := fs.fieldAdapter()
	prevParse := ad.parse
	prevValidate := ad.validateValue
	prevJSON := ad.jsonSchema
	out := ad
	out.parse = func(ctx context.Context, v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		if prevParse == nil {
			return v, nil
		}
		return prevParse(ctx, v)
	}
	out.validateValue = func(ctx context.Context, v any) error {
		if v == nil {
			return nil
		}
		if prevValidate == nil {
			if prevParse == nil {
				return nil
			}
			_, err := prevParse(ctx, v)
			return err
		}
		return prevValidate(ctx, v)
	}
	out.jsonSchema = func() (*js.Schema, error) {
		if prevJSON == nil {
			return &js.Schema{}, nil
		}
		return prevJSON()
	}
	return out
}

// Nullable enables fluent chaining on an adapter value.
func (ad AnyAdapter) Nullable() AnyAdapter { return Nullable(ad) }

// Min sets a numeric minimum (inclusive) constraint at runtime and in JSON Schema.
// Non-numeric values are ignored by this guard (type errors are handled elsewhere).
func (ad AnyAdapter) Min(n float64) AnyAdapter {
	prevParse := ad.parse
	prevValidate := ad.validateValue
	prevJSON := ad.jsonSchema
	out := ad
	out.parse = func(ctx context.Context, v any) (any, error) {
		if prevParse != nil {
			val, err := prevParse(ctx, v)
			if err != nil {
				return nil, err
			}
			if err := minCheck(val, n); err != nil {
				return nil, err
			}
			return val, nil
		}
		if err := minCheck(v, n); err != nil {
			return nil, err
		}
		return v, nil
	}
	out.validateValue = func(ctx context.Context, v any) error {
		if prevValidate != nil {
			if err := prevValidate(ctx, v); err != nil {
				return err
			}
		}
		return minCheck(v, n)
	}
	out.jsonSchema = func() (*js.Schema, error) {
		s := &js.Schema{}
		if prevJSON != nil {
			ps, err := prevJSON()
			if err != nil {
				return nil, err
			}
			if ps != nil {
				s = ps
			}
		}
		s.Minimum = jsPtrFloat(n)
		if s.Type == "" {
			s.Type = "number"
		}
		return s, nil
	}
	return out
}

// Max sets a numeric maximum (inclusive) constraint at runtime and in JSON Schema.
func (ad AnyAdapter) Max(n float64) AnyAdapter {
	prevParse := ad.parse
	prevValidate := ad.validateValue
	prevJSON := ad.jsonSchema
	out := ad
	out.parse = func(ctx context.Context, v any) (any, error) {
		if prevParse != nil {
			val, err := prevParse(ctx, v)
			if err != nil {
				return nil, err
			}
			if err := maxCheck(val, n); err != nil {
				return nil, err
			}
			return val, nil
		}
		if err := maxCheck(v, n); err != nil {
			return nil, err
		}
		return v, nil
	}
	out.validateValue = func(ctx context.Context, v any) error {
		if prevValidate != nil {
			if err := prevValidate(ctx, v); err != nil {
				return err
			}
		}
		return maxCheck(v, n)
	}
	out.jsonSchema = func() (*js.Schema, error) {
		s := &js.Schema{}
		if prevJSON != nil {
			ps, err := prevJSON()
			if err != nil {
				return nil, err
			}
			if ps != nil {
				s = ps
			}
		}
		s.Maximum = jsPtrFloat(n)
		if s.Type == "" {
			s.Type = "number"
		}
		return s, nil
	}
	return out
}

// ---- helpers ----
func jsPtrFloat(v float64) *float64 { return &v }

// coerceForValidate bridges numeric representations when re-validating
// already-bound values: json.Number targets accept Go numerics, and numeric
// targets accept json.Number, so Bind round-trips validate cleanly.
func coerceForValidate[T any](v any) (T, bool) {
	var zero T
	if num, ok := toNumber(v); ok {
		if tv, ok2 := any(num).(T); ok2 {
			return tv, true
		}
	}
	rt := reflect.TypeOf(zero)
	if rt == nil {
		return zero, false
	}
	// Shape bridges: typed slices and string-keyed maps loosen to their
	// any-valued forms so bound struct values re-validate.
	if rt == reflect.TypeOf([]any(nil)) {
		rv := reflect.ValueOf(v)
		if rv.IsValid() && rv.Kind() == reflect.Slice {
			out := make([]any, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				out[i] = rv.Index(i).Interface()
			}
			if tv, ok2 := any(out).(T); ok2 {
				return tv, true
			}
		}
		return zero, false
	}
	if rt == reflect.TypeOf(map[string]any(nil)) {
		rv := reflect.ValueOf(v)
		if rv.IsValid() && rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				out[iter.Key().String()] = iter.Value().Interface()
			}
			if tv, ok2 := any(out).(T); ok2 {
				return tv, true
			}
		}
		return zero, false
	}
	f, ok := numericValue(v)
	if !ok {
		return zero, false
	}
	switch rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f != math.Trunc(f) {
			return zero, false
		}
		if tv, ok2 := reflect.ValueOf(f).Convert(rt).Interface().(T); ok2 {
			return tv, true
		}
	case reflect.Float32, reflect.Float64:
		if tv, ok2 := reflect.ValueOf(f).Convert(rt).Interface().(T); ok2 {
			return tv, true
		}
	}
	return zero, false
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8, int16, int32, int64:
		return float64(reflect.ValueOf(n).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(n).Uint()), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		if f, err := strconv.ParseFloat(string(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func minCheck(v any, min float64) error {
	if v == nil {
		return nil
	}
	if f, ok := numericValue(v); ok && f < min {
		return skematic.Issues{numberTooSmall("/", min)}
	}
	return nil
}

func maxCheck(v any, max float64) error {
	if v == nil {
		return nil
	}
	if f, ok := numericValue(v); ok && f > max {
		return skematic.Issues{numberTooBig("/", max)}
	}
	return nil
}
