package codec

import (
	"context"

	skematic "github.com/kharioki/skematic"
)

// Identity returns a Codec[T,T] that performs identity transformations.
// In() and Out() are the provided schema s; Decode/Encode only validate.
func Identity[T any](s skematic.Schema[T]) skematic.Codec[T, T] {
	return &identityCodec[T]{in: s, out: s}
}

type identityCodec[T any] struct {
	in  skematic.Schema[T]
	out skematic.Schema[T]
}

func (c *identityCodec[T]) In() skematic.Schema[T]  { return c.in }
func (c *identityCodec[T]) Out() skematic.Schema[T] { return c.out }

func (c *identityCodec[T]) Decode(ctx context.Context, a T) (T, error) {
	// Validate on Out schema to ensure domain-side constraints
	if err := c.out.ValidateValue(ctx, a); err != nil {
		var zero T
		return zero, err
	}
	return a, nil
}

func (c *identityCodec[T]) Encode(ctx context.Context, b T) (T, error) {
	// Out.ValidateValue -> In.ValidateValue for identity (no transformation)
	if err := c.out.ValidateValue(ctx, b); err != nil {
		var zero T
		return zero, err
	}
	if err := c.in.ValidateValue(ctx, b); err != nil {
		var zero T
		return zero, err
	}
	return b, nil
}

func (c *identityCodec[T]) DecodeWithMeta(ctx context.Context, a T) (skematic.Parsed[T], error) {
	v, err := c.Decode(ctx, a)
	if err != nil {
		return skematic.Parsed[T]{}, err
	}
	return skematic.Parsed[T]{Value: v, Presence: skematic.PresenceMap{"/": skematic.PresenceSeen}}, nil
}

func (c *identityCodec[T]) EncodePreserving(ctx context.Context, pb skematic.Parsed[T]) (T, error) {
	// For identity scalar values, presence does not change encoding outcome.
	return c.Encode(ctx, pb.Value)
}
