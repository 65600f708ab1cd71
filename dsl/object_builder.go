package dsl

import (
	"context"
	"sort"

	skematic "github.com/kharioki/skematic"
)

// objectBuilder accumulates field declarations for an object schema.
// Field order is remembered and drives evaluation order at parse time.
type objectBuilder struct {
	fields        map[string]AnyAdapter
	order         []string
	unknownPolicy skematic.UnknownPolicy
	unknownTarget string
	refines       []objRefine
}

// Object starts building an object schema. Unknown keys are stripped unless
// UnknownStrict or UnknownPassthrough is selected.
func Object() *objectBuilder {
	return &objectBuilder{
		fields:        map[string]AnyAdapter{},
		unknownPolicy: skematic.UnknownStrip,
	}
}

func (b *objectBuilder) clone() *objectBuilder {
	nb := &objectBuilder{
		fields:        make(map[string]AnyAdapter, len(b.fields)),
		order:         append([]string(nil), b.order...),
		unknownPolicy: b.unknownPolicy,
		unknownTarget: b.unknownTarget,
		refines:       append([]objRefine(nil), b.refines...),
	}
	for k, v := range b.fields {
		nb.fields[k] = v
	}
	return nb
}

// Field declares a field under the given wire key. Declaring the same key
// twice replaces the earlier schema but keeps its original position.
// Fields are required unless marked Optional or given a Default.
func (b *objectBuilder) Field(name string, fs FieldSchema) *fieldStep {
	if _, exists := b.fields[name]; !exists {
		b.order = append(b.order, name)
	}
	b.fields[name] = fs.fieldAdapter()
	return &fieldStep{b: b, name: name}
}

// UnknownStrict rejects unknown keys with an issue per key.
func (b *objectBuilder) UnknownStrict() *objectBuilder {
	b.unknownPolicy = skematic.UnknownStrict
	b.unknownTarget = ""
	return b
}

// UnknownStrip silently drops unknown keys. This is the default.
func (b *objectBuilder) UnknownStrip() *objectBuilder {
	b.unknownPolicy = skematic.UnknownStrip
	b.unknownTarget = ""
	return b
}

// UnknownPassthrough retains unknown keys. With an empty target they stay in
// place in the output map; with a target name they are funneled into a
// map[string]any under that key.
func (b *objectBuilder) UnknownPassthrough(target string) *objectBuilder {
	b.unknownPolicy = skematic.UnknownPassthrough
	b.unknownTarget = target
	return b
}

// Refine registers an object-level rule evaluated after all fields parse.
// The returned error's issues are reported with the given rule name.
func (b *objectBuilder) Refine(name string, fn func(ctx context.Context, v map[string]any) error) *objectBuilder {
	b.refines = append(b.refines, objRefine{name: name, fn: fn})
	return b
}

// Extend derives a new builder with the given fields added. Keys already
// declared are replaced in place; new keys are appended in sorted order so
// the result is deterministic. The receiver is not modified.
func (b *objectBuilder) Extend(fields map[string]FieldSchema) *objectBuilder {
	nb := b.clone()
	added := make([]string, 0, len(fields))
	for name := range fields {
		if _, exists := nb.fields[name]; !exists {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	nb.order = append(nb.order, added...)
	for name, fs := range fields {
		nb.fields[name] = fs.fieldAdapter()
	}
	return nb
}

// Merge derives a new builder overlaying other's fields in other's
// declaration order. On key conflict other wins. Other's refinements are
// appended; the receiver's unknown-key policy is kept. Neither builder is
// modified.
func (b *objectBuilder) Merge(other *objectBuilder) *objectBuilder {
	nb := b.clone()
	for _, name := range other.order {
		if _, exists := nb.fields[name]; !exists {
			nb.order = append(nb.order, name)
		}
		nb.fields[name] = other.fields[name]
	}
	nb.refines = append(nb.refines, other.refines...)
	return nb
}

// Build finalizes the schema. A passthrough target, when set, must either be
// undeclared (the collected map is assigned verbatim) or declared as a field
// that accepts map[string]any.
func (b *objectBuilder) Build() (skematic.Schema[map[string]any], error) {
	if b.unknownPolicy == skematic.UnknownPassthrough && b.unknownTarget != "" {
		if ad, ok := b.fields[b.unknownTarget]; ok && ad.validateValue != nil {
			if err := ad.validateValue(context.Background(), map[string]any{}); err != nil {
				return nil, skematic.Issues{skematic.Issue{
					Path:    "/" + b.unknownTarget,
					Code:    skematic.CodeInvalidType,
					Message: "unknown_target must accept map[string]any",
					Hint:    "declare the passthrough target as a map field",
				}}
			}
		}
	}
	s := &objectSchema{
		fields:        make(map[string]AnyAdapter, len(b.fields)),
		order:         append([]string(nil), b.order...),
		unknownPolicy: b.unknownPolicy,
		unknownTarget: b.unknownTarget,
		refines:       append([]objRefine(nil), b.refines...),
	}
	for k, v := range b.fields {
		s.fields[k] = v
	}
	return s, nil
}

// MustBuild is Build that panics on configuration errors.
func (b *objectBuilder) MustBuild() skematic.Schema[map[string]any] {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// fieldAdapter lets a builder be nested directly as a field value; the
// schema is finalized lazily.
func (b *objectBuilder) fieldAdapter() AnyAdapter {
	ad := anyAdapterFromSchema[map[string]any](b.MustBuild())
	return ad
}

var _ FieldSchema = (*objectBuilder)(nil)

// fieldStep scopes modifiers to the field just declared while keeping the
// rest of the builder chain reachable.
type fieldStep struct {
	b    *objectBuilder
	name string
}

// Optional marks the field as allowed to be absent.
func (s *fieldStep) Optional() *fieldStep {
	s.b.fields[s.name] = s.b.fields[s.name].Optional()
	return s
}

// Default supplies a value substituted verbatim when the field is absent.
// A field with a default is never reported missing.
func (s *fieldStep) Default(v any) *fieldStep {
	s.b.fields[s.name] = s.b.fields[s.name].Default(v)
	return s
}

// Nullable allows an explicit null for the field.
func (s *fieldStep) Nullable() *fieldStep {
	s.b.fields[s.name] = s.b.fields[s.name].Nullable()
	return s
}

// Field continues the chain with the next field declaration.
func (s *fieldStep) Field(name string, fs FieldSchema) *fieldStep { return s.b.Field(name, fs) }

func (s *fieldStep) UnknownStrict() *objectBuilder              { return s.b.UnknownStrict() }
func (s *fieldStep) UnknownStrip() *objectBuilder               { return s.b.UnknownStrip() }
func (s *fieldStep) UnknownPassthrough(target string) *objectBuilder {
	return s.b.UnknownPassthrough(target)
}

func (s *fieldStep) Refine(name string, fn func(ctx context.Context, v map[string]any) error) *objectBuilder {
	return s.b.Refine(name, fn)
}

func (s *fieldStep) Extend(fields map[string]FieldSchema) *objectBuilder { return s.b.Extend(fields) }
func (s *fieldStep) Merge(other *objectBuilder) *objectBuilder           { return s.b.Merge(other) }

func (s *fieldStep) Build() (skematic.Schema[map[string]any], error) { return s.b.Build() }
func (s *fieldStep) MustBuild() skematic.Schema[map[string]any]      { return s.b.MustBuild() }

// fieldAdapter lets a chain ending on a field modifier be nested directly.
func (s *fieldStep) fieldAdapter() AnyAdapter { return s.b.fieldAdapter() }

var _ FieldSchema = (*fieldStep)(nil)
