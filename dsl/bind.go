package dsl

import (
	"context"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"

	skematic "github.com/kharioki/skematic"
	js "github.com/kharioki/skematic/jsonschema"
)

// Bind builds the object schema and binds it to struct type T. Wire keys are
// matched to struct fields via ResolveStructKey, so `skematic:"name=..."`
// and `json:"..."` tags both work.
func Bind[T any](b *objectBuilder) (skematic.Schema[T], error) {
	s, err := b.Build()
	if err != nil {
		var zero skematic.Schema[T]
		return zero, err
	}
	os, ok := s.(*objectSchema)
	if !ok {
		var zero skematic.Schema[T]
		return zero, skematic.Issues{skematic.Issue{Path: "/", Code: skematic.CodeParseError, Message: "unexpected schema type for Bind"}}
	}
	return newTypedObjectSchema[T](os)
}

// MustBind is Bind that panics on configuration errors.
func MustBind[T any](b *objectBuilder) skematic.Schema[T] {
	s, err := Bind[T](b)
	if err != nil {
		panic(err)
	}
	return s
}

// typedObjectSchema adapts an objectSchema to a struct T using key resolution.
type typedObjectSchema[T any] struct {
	inner      *objectSchema
	t          reflect.Type
	fieldByKey map[string]int // wire key -> struct field index
}

func newTypedObjectSchema[T any](os *objectSchema) (skematic.Schema[T], error) {
	var zero skematic.Schema[T]
	var t T
	rt := reflect.TypeOf(t)
	if rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return zero, skematic.Issues{skematic.Issue{Path: "/", Code: skematic.CodeParseError, Message: "Bind[T] requires struct T"}}
	}
	idxByName := make(map[string]int)
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := skematic.ResolveStructKey(sf)
		if name == "-" || name == "" {
			continue
		}
		idxByName[name] = i
	}
	fm := make(map[string]int)
	for k := range os.fields {
		if i, ok := idxByName[k]; ok {
			fm[k] = i
		}
	}
	return &typedObjectSchema[T]{inner: os, t: rt, fieldByKey: fm}, nil
}

func (s *typedObjectSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	var zero T
	m, err := s.inner.Parse(ctx, v)
	if err != nil {
		return zero, err
	}
	return s.bindStruct(m)
}

func (s *typedObjectSchema[T]) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[T], error) {
	var zero skematic.Parsed[T]
	dm, err := s.inner.ParseWithMeta(ctx, v)
	if err != nil {
		return zero, err
	}
	out, err := s.bindStruct(dm.Value)
	if err != nil {
		return zero, err
	}
	// Presence keys use wire shape; Bind maps keys to fields, so the map
	// carries over for preserving-encode decisions unchanged.
	return skematic.Parsed[T]{Value: out, Presence: dm.Presence}, nil
}

// bindStruct maps a parsed wire map into struct fields, bridging json.Number
// to numeric field kinds and zeroing nillable fields on null.
func (s *typedObjectSchema[T]) bindStruct(m map[string]any) (T, error) {
	var zero T
	rv := reflect.New(s.t).Elem()
	for key, idx := range s.fieldByKey {
		val, ok := m[key]
		if !ok {
			continue
		}
		fv := rv.Field(idx)
		if !fv.CanSet() {
			continue
		}
		if val == nil {
			switch fv.Kind() {
			case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
				fv.Set(reflect.Zero(fv.Type()))
			default:
				// leave zero value for non-nillable fields
			}
			continue
		}
		if !assignField(fv, val) {
			return zero, skematic.Issues{skematic.Issue{
				Path:    "/" + escapeKey(key),
				Code:    skematic.CodeInvalidType,
				Message: "field type mismatch",
			}}
		}
	}
	return rv.Interface().(T), nil
}

// assignField sets a parsed wire value into a struct field, bridging
// json.Number to numeric kinds and []any to typed slices element-wise.
func assignField(fv reflect.Value, val any) bool {
	vv := reflect.ValueOf(val)
	switch {
	case vv.Type().AssignableTo(fv.Type()):
		fv.Set(vv)
		return true
	case fv.Kind() != reflect.String && vv.Type().ConvertibleTo(fv.Type()):
		// String targets are excluded: reflect converts integers to
		// code-point strings, which is never what a schema means.
		fv.Set(vv.Convert(fv.Type()))
		return true
	}
	if num, ok := val.(json.Number); ok && bindNumber(fv, num) {
		return true
	}
	if arr, ok := val.([]any); ok && fv.Kind() == reflect.Slice {
		return bindSlice(fv, arr)
	}
	return false
}

// bindSlice builds a typed slice from []any, reporting false when any
// element cannot be represented. The field is set only on full success.
func bindSlice(fv reflect.Value, arr []any) bool {
	et := fv.Type().Elem()
	out := reflect.MakeSlice(fv.Type(), 0, len(arr))
	for _, el := range arr {
		if el == nil {
			out = reflect.Append(out, reflect.Zero(et))
			continue
		}
		ev := reflect.New(et).Elem()
		if !assignField(ev, el) {
			return false
		}
		out = reflect.Append(out, ev)
	}
	fv.Set(out)
	return true
}

// bindNumber assigns a json.Number into a numeric struct field, reporting
// whether it handled the field.
func bindNumber(fv reflect.Value, num json.Number) bool {
	switch fv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := num.Int64()
		if err != nil {
			return false
		}
		fv.SetInt(i)
		return true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(string(num), 10, 64)
		if err != nil {
			return false
		}
		fv.SetUint(u)
		return true
	case reflect.Float32, reflect.Float64:
		f, err := num.Float64()
		if err != nil {
			return false
		}
		fv.SetFloat(f)
		return true
	}
	return false
}

func (s *typedObjectSchema[T]) TypeCheck(ctx context.Context, v any) error {
	return s.inner.TypeCheck(ctx, v)
}
func (s *typedObjectSchema[T]) RuleCheck(ctx context.Context, v any) error {
	return s.inner.RuleCheck(ctx, v)
}
func (s *typedObjectSchema[T]) Validate(ctx context.Context, v any) error {
	return s.inner.Validate(ctx, v)
}

func (s *typedObjectSchema[T]) ValidateValue(ctx context.Context, v T) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	m := make(map[string]any, len(s.fieldByKey))
	for key, idx := range s.fieldByKey {
		fv := rv.Field(idx)
		if !fv.IsValid() {
			continue
		}
		// Zero values count as present so typed values don't trip required checks.
		m[key] = fv.Interface()
	}
	return s.inner.ValidateValue(ctx, m)
}

func (s *typedObjectSchema[T]) JSONSchema() (*js.Schema, error) { return s.inner.JSONSchema() }

// fieldAdapter lets a bound struct schema nest as a field of another object.
func (s *typedObjectSchema[T]) fieldAdapter() AnyAdapter { return anyAdapterFromSchema[T](s) }
