package dsl

import (
	"context"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/codec"
	js "github.com/kharioki/skematic/jsonschema"
)

// IdentitySchema exposes Decode/Encode methods on top of Schema[T].
// This is a thin view that delegates to codec.Identity(inner).
type IdentitySchema[T any] interface {
	skematic.Schema[T]
	Decode(ctx context.Context, v T) (T, error)
	Encode(ctx context.Context, v T) (T, error)
	DecodeWithMeta(ctx context.Context, v T) (skematic.Parsed[T], error)
	EncodePreserving(ctx context.Context, pv skematic.Parsed[T]) (T, error)
}

// WithIdentity wraps a Schema[T] with identity-codec sugar so the same value
// type can be pushed through Decode/Encode symmetry checks.
func WithIdentity[T any](s skematic.Schema[T]) IdentitySchema[T] {
	return identitySchemaView[T]{inner: s}
}

type identitySchemaView[T any] struct{ inner skematic.Schema[T] }

// ---- Schema[T] methods (forward to inner) ----

func (w identitySchemaView[T]) Parse(ctx context.Context, v any) (T, error) {
	return w.inner.Parse(ctx, v)
}

func (w identitySchemaView[T]) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[T], error) {
	return w.inner.ParseWithMeta(ctx, v)
}

func (w identitySchemaView[T]) TypeCheck(ctx context.Context, v any) error {
	return w.inner.TypeCheck(ctx, v)
}

func (w identitySchemaView[T]) RuleCheck(ctx context.Context, v any) error {
	return w.inner.RuleCheck(ctx, v)
}

func (w identitySchemaView[T]) Validate(ctx context.Context, v any) error {
	return w.inner.Validate(ctx, v)
}

func (w identitySchemaView[T]) ValidateValue(ctx context.Context, v T) error {
	return w.inner.ValidateValue(ctx, v)
}

func (w identitySchemaView[T]) JSONSchema() (*js.Schema, error) { return w.inner.JSONSchema() }

// ---- identity codec sugar ----

func (w identitySchemaView[T]) Decode(ctx context.Context, v T) (T, error) {
	return codec.Identity(w.inner).Decode(ctx, v)
}

func (w identitySchemaView[T]) Encode(ctx context.Context, v T) (T, error) {
	return codec.Identity(w.inner).Encode(ctx, v)
}

func (w identitySchemaView[T]) DecodeWithMeta(ctx context.Context, v T) (skematic.Parsed[T], error) {
	return codec.Identity(w.inner).DecodeWithMeta(ctx, v)
}

func (w identitySchemaView[T]) EncodePreserving(ctx context.Context, pv skematic.Parsed[T]) (T, error) {
	return codec.Identity(w.inner).EncodePreserving(ctx, pv)
}

// fieldAdapter lets the identity view nest as an object field.
func (w identitySchemaView[T]) fieldAdapter() AnyAdapter { return anyAdapterFromSchema[T](w) }
