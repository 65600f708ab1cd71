package openapi

import (
	"regexp"

	"github.com/goccy/go-json"

	"github.com/kharioki/skematic/dsl"
)

// adapterFor builds a field adapter for a single property schema. Unsupported
// shapes degrade to MapAny with a warning rather than failing the import.
func adapterFor(ps map[string]any, opts Options, d *simpleDiag) dsl.AnyAdapter {
	t, nullable := effectiveType(ps, d)

	ad, ok := enumAdapter(ps, d)
	if !ok {
		switch t {
		case "string":
			ad = dsl.SchemaOf[string](stringBuilderFor(ps, d))
		case "boolean":
			ad = dsl.BoolOf[bool]()
		case "number", "integer":
			ad = dsl.SchemaOf[json.Number](numberBuilderFor(ps, t == "integer", d))
		case "array":
			ad = arrayAdapterFor(ps, opts, d)
		case "object":
			ad = objectAdapterFor(ps, opts, d)
		case "":
			if _, hasItems := ps["items"]; hasItems {
				ad = arrayAdapterFor(ps, opts, d)
				break
			}
			if !hasObjectHints(ps) {
				d.warnf("schema without type treated as object")
			}
			ad = objectAdapterFor(ps, opts, d)
		default:
			d.warnf("type %q not supported, treated as object", t)
			ad = dsl.SchemaOf[map[string]any](dsl.MapAny())
		}
	}

	if nullable {
		ad = ad.Nullable()
	}
	return ad
}

// effectiveType reads the type keyword, accepting OpenAPI 3.0 nullable and
// 3.1 ["X","null"] unions.
func effectiveType(ps map[string]any, d *simpleDiag) (string, bool) {
	nullable, _ := ps["nullable"].(bool)
	switch t := ps["type"].(type) {
	case string:
		return t, nullable
	case []any:
		var rest []string
		sawNull := false
		for _, it := range t {
			s, _ := it.(string)
			if s == "null" {
				sawNull = true
				continue
			}
			if s != "" {
				rest = append(rest, s)
			}
		}
		if len(rest) == 1 {
			return rest[0], nullable || sawNull
		}
		d.warnf("union type %v not supported, treated as object", t)
		return "", nullable || sawNull
	default:
		return "", nullable
	}
}

// enumAdapter compiles an all-string enum keyword. Mixed-type enums are not
// representable and fall back to the type-based adapter.
func enumAdapter(ps map[string]any, d *simpleDiag) (dsl.AnyAdapter, bool) {
	raw, ok := ps["enum"].([]any)
	if !ok || len(raw) == 0 {
		return dsl.AnyAdapter{}, false
	}
	vals := make([]string, 0, len(raw))
	for _, it := range raw {
		s, ok := it.(string)
		if !ok {
			d.warnf("non-string enum value %v ignored, enum dropped", it)
			return dsl.AnyAdapter{}, false
		}
		vals = append(vals, s)
	}
	return dsl.SchemaOf[string](dsl.Enum(vals...)), true
}

func stringBuilderFor(ps map[string]any, d *simpleDiag) *dsl.StringBuilder {
	b := dsl.String()
	if n, ok := asInt(ps["minLength"]); ok {
		b = b.Min(n)
	}
	if n, ok := asInt(ps["maxLength"]); ok {
		b = b.Max(n)
	}
	if expr, ok := ps["pattern"].(string); ok && expr != "" {
		if _, err := regexp.Compile(expr); err != nil {
			d.warnf("pattern %q skipped: %v", expr, err)
		} else {
			b = b.Pattern(expr)
		}
	}
	switch f, _ := ps["format"].(string); f {
	case "":
	case "email":
		b = b.Email()
	case "uri", "url":
		b = b.URL()
	case "uuid":
		b = b.UUID()
	default:
		d.warnf("string format %q ignored", f)
	}
	return b
}

func numberBuilderFor(ps map[string]any, integer bool, d *simpleDiag) *dsl.NumberBuilder {
	b := dsl.Number()
	if integer {
		b = b.Int()
	}
	if f, ok := asFloat(ps["minimum"]); ok {
		b = b.Min(f)
	}
	if f, ok := asFloat(ps["maximum"]); ok {
		b = b.Max(f)
	}
	for _, kw := range []string{"exclusiveMinimum", "exclusiveMaximum", "multipleOf"} {
		if _, present := ps[kw]; present {
			d.warnf("%s ignored", kw)
		}
	}
	return b
}

func arrayAdapterFor(ps map[string]any, opts Options, d *simpleDiag) dsl.AnyAdapter {
	var elem dsl.AnyAdapter
	if items, ok := ps["items"].(map[string]any); ok {
		elem = adapterFor(items, opts, d)
	} else {
		d.warnf("array without items accepts object elements only")
		elem = dsl.SchemaOf[map[string]any](dsl.MapAny())
	}
	b := dsl.Array(elem)
	if n, ok := asInt(ps["minItems"]); ok {
		b = b.Min(n)
	}
	if n, ok := asInt(ps["maxItems"]); ok {
		b = b.Max(n)
	}
	return dsl.SchemaOf[[]any](b)
}

func hasObjectHints(ps map[string]any) bool {
	if _, ok := ps["properties"]; ok {
		return true
	}
	_, ok := ps["additionalProperties"]
	return ok
}

// objectAdapterFor handles nested objects: explicit properties compile
// recursively, a schema-valued additionalProperties becomes a typed map, and
// a bare object accepts any map.
func objectAdapterFor(ps map[string]any, opts Options, d *simpleDiag) dsl.AnyAdapter {
	if pm, ok := ps["properties"].(map[string]any); ok && len(pm) > 0 {
		s, err := importObject(ps, opts, d)
		if err != nil {
			d.warnf("nested object import failed, treated as map: %v", err)
			return dsl.SchemaOf[map[string]any](dsl.MapAny())
		}
		return dsl.SchemaOf[map[string]any](s)
	}
	if ap, ok := ps["additionalProperties"].(map[string]any); ok {
		return mapAdapterFor(ap, opts, d)
	}
	return dsl.SchemaOf[map[string]any](dsl.MapAny())
}

// mapAdapterFor builds a map adapter from an additionalProperties value
// schema.
func mapAdapterFor(ap map[string]any, opts Options, d *simpleDiag) dsl.AnyAdapter {
	t, _ := effectiveType(ap, d)
	switch t {
	case "string":
		return dsl.MapOf[string](stringBuilderFor(ap, d))
	case "boolean":
		return dsl.MapOf[bool](dsl.Bool())
	case "number", "integer":
		return dsl.MapOf[json.Number](numberBuilderFor(ap, t == "integer", d))
	case "object":
		if pm, ok := ap["properties"].(map[string]any); ok && len(pm) > 0 {
			if s, err := importObject(ap, opts, d); err == nil {
				return dsl.MapOf[map[string]any](s)
			}
		}
		return dsl.MapOf[map[string]any](dsl.MapAny())
	default:
		d.warnf("additionalProperties value type %q treated as object", t)
		return dsl.MapOf[map[string]any](dsl.MapAny())
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
