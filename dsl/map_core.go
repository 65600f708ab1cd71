package dsl

import (
	"context"
	"sort"

	skematic "github.com/kharioki/skematic"
	js "github.com/kharioki/skematic/jsonschema"
)

// MapAny returns a minimal Schema[map[string]any] useful for passthrough
// targets or loose maps. Values are taken as-is.
func MapAny() skematic.Schema[map[string]any] { return mapAnySchema{} }

type mapAnySchema struct{}

func (mapAnySchema) Parse(ctx context.Context, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		it := typeIssue("/", "object", v)
		it.Hint = "expected object"
		return nil, skematic.Issues{it}
	}
	return m, nil
}

func (mapAnySchema) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[map[string]any], error) {
	m, err := (mapAnySchema{}).Parse(ctx, v)
	if err != nil {
		return skematic.Parsed[map[string]any]{}, err
	}
	pm := skematic.PresenceMap{"/": skematic.PresenceSeen}
	markPresenceSubtree(pm, "", m)
	return skematic.Parsed[map[string]any]{Value: m, Presence: pm}, nil
}

func (mapAnySchema) TypeCheck(ctx context.Context, v any) error {
	if _, ok := v.(map[string]any); !ok {
		it := typeIssue("/", "object", v)
		it.Hint = "expected object"
		return skematic.Issues{it}
	}
	return nil
}
func (mapAnySchema) RuleCheck(ctx context.Context, v any) error                { return nil }
func (mapAnySchema) Validate(ctx context.Context, v any) error                 { return (mapAnySchema{}).TypeCheck(ctx, v) }
func (mapAnySchema) ValidateValue(ctx context.Context, v map[string]any) error { return nil }
func (mapAnySchema) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Type: "object", AdditionalProperties: true}, nil
}

func (m mapAnySchema) fieldAdapter() AnyAdapter {
	return anyAdapterFromSchema[map[string]any](m)
}

var _ FieldSchema = mapAnySchema{}

// Map returns a schema for objects whose every value is validated by elem.
// It decodes into map[string]V. Keys are visited sorted so reported issues
// are deterministic, and all bad keys are reported together.
func Map[V any](elem skematic.Schema[V]) skematic.Schema[map[string]V] {
	return mapSchema[V]{val: elem}
}

// MapOf adapts Map[V] to an AnyAdapter for use as an object field.
func MapOf[V any](elem skematic.Schema[V]) AnyAdapter {
	return anyAdapterFromSchema[map[string]V](Map[V](elem))
}

type mapSchema[V any] struct{ val skematic.Schema[V] }

func sortedKeys[V any](m map[string]V) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func (m mapSchema[V]) Parse(ctx context.Context, v any) (map[string]V, error) {
	switch src := v.(type) {
	case map[string]V:
		if err := m.ValidateValue(ctx, src); err != nil {
			return nil, err
		}
		nn, err := skematic.ApplyNormalize[map[string]V](ctx, src, m)
		if err != nil {
			return nil, issuesFromErr(err)
		}
		if err := skematic.ApplyRefine[map[string]V](ctx, nn, m); err != nil {
			return nil, issuesFromErr(err)
		}
		return nn, nil
	case map[string]any:
		out := make(map[string]V, len(src))
		var iss skematic.Issues
		for _, k := range sortedKeys(src) {
			vv, err := m.val.Parse(ctx, src[k])
			if err != nil {
				iss = skematic.AppendIssues(iss, rebaseIssues(k, err)...)
				if skematic.IsFailFast(ctx) {
					return nil, iss
				}
				continue
			}
			out[k] = vv
		}
		if len(iss) > 0 {
			return nil, iss
		}
		nn, err := skematic.ApplyNormalize[map[string]V](ctx, out, m)
		if err != nil {
			return nil, issuesFromErr(err)
		}
		if err := skematic.ApplyRefine[map[string]V](ctx, nn, m); err != nil {
			return nil, issuesFromErr(err)
		}
		return nn, nil
	default:
		it := typeIssue("/", "object", v)
		it.Hint = "expected object"
		return nil, skematic.Issues{it}
	}
}

func (m mapSchema[V]) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[map[string]V], error) {
	mv, err := m.Parse(ctx, v)
	if err != nil {
		return skematic.Parsed[map[string]V]{}, err
	}
	pm := skematic.PresenceMap{"/": skematic.PresenceSeen}
	if raw, ok := v.(map[string]any); ok {
		markPresenceSubtree(pm, "", raw)
	}
	return skematic.Parsed[map[string]V]{Value: mv, Presence: pm}, nil
}

func (m mapSchema[V]) TypeCheck(ctx context.Context, v any) error {
	switch v.(type) {
	case map[string]V, map[string]any:
		return nil
	default:
		it := typeIssue("/", "object", v)
		it.Hint = "expected object"
		return skematic.Issues{it}
	}
}

func (m mapSchema[V]) RuleCheck(ctx context.Context, v any) error { return nil }

func (m mapSchema[V]) Validate(ctx context.Context, v any) error {
	if err := m.TypeCheck(ctx, v); err != nil {
		return err
	}
	return m.RuleCheck(ctx, v)
}

func (m mapSchema[V]) ValidateValue(ctx context.Context, v map[string]V) error {
	var iss skematic.Issues
	for _, k := range sortedKeys(v) {
		if err := m.val.ValidateValue(ctx, v[k]); err != nil {
			iss = skematic.AppendIssues(iss, rebaseIssues(k, err)...)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (m mapSchema[V]) JSONSchema() (*js.Schema, error) {
	vs, err := m.val.JSONSchema()
	if err != nil {
		return nil, err
	}
	return &js.Schema{Type: "object", AdditionalProperties: vs}, nil
}

func (m mapSchema[V]) fieldAdapter() AnyAdapter {
	return anyAdapterFromSchema[map[string]V](m)
}
