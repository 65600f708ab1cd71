package dsl

import (
	"context"

	skematic "github.com/kharioki/skematic"
	js "github.com/kharioki/skematic/jsonschema"
)

// FromCodec adapts a Codec[A,B] into a Schema[B] that accepts wire A and
// produces domain B.
//
// Parse: In.Parse -> Decode -> Out normalize/validate/refine.
// Type/Rule/Validate judge the wire side via In(); ValidateValue judges the
// domain side via Out().
func FromCodec[A, B any](c skematic.Codec[A, B]) skematic.Schema[B] { return codecSchema[A, B]{c: c} }

type codecSchema[A, B any] struct{ c skematic.Codec[A, B] }

func (s codecSchema[A, B]) Parse(ctx context.Context, v any) (B, error) {
	var zero B
	a, err := s.c.In().Parse(ctx, v)
	if err != nil {
		return zero, issuesFromErr(err)
	}
	b, err := s.c.Decode(ctx, a)
	if err != nil {
		return zero, issuesFromErr(err)
	}
	b2, err := skematic.ApplyNormalize[B](ctx, b, s.c.Out())
	if err != nil {
		return zero, issuesFromErr(err)
	}
	if err := s.c.Out().ValidateValue(ctx, b2); err != nil {
		return zero, err
	}
	if err := skematic.ApplyRefine[B](ctx, b2, s.c.Out()); err != nil {
		return zero, issuesFromErr(err)
	}
	return b2, nil
}

func (s codecSchema[A, B]) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[B], error) {
	da, err := s.c.In().ParseWithMeta(ctx, v)
	if err != nil {
		return skematic.Parsed[B]{}, issuesFromErr(err)
	}
	db, err := s.c.DecodeWithMeta(ctx, da.Value)
	if err != nil {
		return skematic.Parsed[B]{}, issuesFromErr(err)
	}
	// Presence describes the wire input, so the In-side map wins.
	return skematic.Parsed[B]{Value: db.Value, Presence: da.Presence}, nil
}

func (s codecSchema[A, B]) TypeCheck(ctx context.Context, v any) error {
	return s.c.In().TypeCheck(ctx, v)
}
func (s codecSchema[A, B]) RuleCheck(ctx context.Context, v any) error {
	return s.c.In().RuleCheck(ctx, v)
}
func (s codecSchema[A, B]) Validate(ctx context.Context, v any) error {
	return s.c.In().Validate(ctx, v)
}
func (s codecSchema[A, B]) ValidateValue(ctx context.Context, v B) error {
	return s.c.Out().ValidateValue(ctx, v)
}
func (s codecSchema[A, B]) JSONSchema() (*js.Schema, error) { return s.c.Out().JSONSchema() }

// fieldAdapter lets a codec-backed schema nest as an object field.
func (s codecSchema[A, B]) fieldAdapter() AnyAdapter { return anyAdapterFromSchema[B](s) }
