package dsl

import (
	"context"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/i18n"
	js "github.com/kharioki/skematic/jsonschema"
)

// transformedSchema applies a total mapping A -> B after the inner schema
// accepts the value. Validation always happens on the pre-image.
type transformedSchema[A, B any] struct {
	inner skematic.Schema[A]
	fn    func(A) B
}

// Transform derives a schema producing B by mapping the inner schema's
// output through fn. fn runs only on values the inner schema accepted.
func Transform[A, B any](s skematic.Schema[A], fn func(A) B) skematic.Schema[B] {
	return transformedSchema[A, B]{inner: s, fn: fn}
}

func (t transformedSchema[A, B]) Parse(ctx context.Context, v any) (B, error) {
	a, err := t.inner.Parse(ctx, v)
	if err != nil {
		var zero B
		return zero, err
	}
	return t.fn(a), nil
}

func (t transformedSchema[A, B]) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[B], error) {
	da, err := t.inner.ParseWithMeta(ctx, v)
	if err != nil {
		return skematic.Parsed[B]{}, err
	}
	return skematic.Parsed[B]{Value: t.fn(da.Value), Presence: da.Presence}, nil
}

func (t transformedSchema[A, B]) TypeCheck(ctx context.Context, v any) error {
	return t.inner.TypeCheck(ctx, v)
}
func (t transformedSchema[A, B]) RuleCheck(ctx context.Context, v any) error {
	return t.inner.RuleCheck(ctx, v)
}
func (t transformedSchema[A, B]) Validate(ctx context.Context, v any) error {
	return t.inner.Validate(ctx, v)
}

// ValidateValue cannot check a post-image against the pre-image schema, so a
// transformed value is taken as-is.
func (t transformedSchema[A, B]) ValidateValue(ctx context.Context, v B) error { return nil }

func (t transformedSchema[A, B]) JSONSchema() (*js.Schema, error) { return t.inner.JSONSchema() }

func (t transformedSchema[A, B]) fieldAdapter() AnyAdapter { return anyAdapterFromSchema[B](t) }

// refinedSchema adds a named predicate on top of an accepted value.
type refinedSchema[T any] struct {
	inner skematic.Schema[T]
	name  string
	pred  func(T) bool
	msg   string
}

// Refine derives a schema that additionally requires pred to hold. Failures
// are reported as a custom issue carrying the rule name; msg overrides the
// default message when non-empty.
func Refine[T any](s skematic.Schema[T], name string, pred func(T) bool, msg string) skematic.Schema[T] {
	return refinedSchema[T]{inner: s, name: name, pred: pred, msg: msg}
}

func (r refinedSchema[T]) issue() skematic.Issue {
	msg := r.msg
	if msg == "" {
		msg = i18n.T(skematic.CodeCustom, nil)
	}
	return skematic.Issue{Path: "/", Code: skematic.CodeCustom, Message: msg, Rule: r.name}
}

func (r refinedSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	tv, err := r.inner.Parse(ctx, v)
	if err != nil {
		var zero T
		return zero, err
	}
	if !r.pred(tv) {
		var zero T
		return zero, skematic.Issues{r.issue()}
	}
	return tv, nil
}

func (r refinedSchema[T]) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[T], error) {
	dt, err := r.inner.ParseWithMeta(ctx, v)
	if err != nil {
		return skematic.Parsed[T]{}, err
	}
	if !r.pred(dt.Value) {
		return skematic.Parsed[T]{}, skematic.Issues{r.issue()}
	}
	return dt, nil
}

func (r refinedSchema[T]) TypeCheck(ctx context.Context, v any) error {
	return r.inner.TypeCheck(ctx, v)
}

func (r refinedSchema[T]) RuleCheck(ctx context.Context, v any) error {
	if err := r.inner.RuleCheck(ctx, v); err != nil {
		return err
	}
	if tv, ok := v.(T); ok && !r.pred(tv) {
		return skematic.Issues{r.issue()}
	}
	return nil
}

func (r refinedSchema[T]) Validate(ctx context.Context, v any) error {
	if err := r.TypeCheck(ctx, v); err != nil {
		return err
	}
	return r.RuleCheck(ctx, v)
}

func (r refinedSchema[T]) ValidateValue(ctx context.Context, v T) error {
	if err := r.inner.ValidateValue(ctx, v); err != nil {
		return err
	}
	if !r.pred(v) {
		return skematic.Issues{r.issue()}
	}
	return nil
}

func (r refinedSchema[T]) JSONSchema() (*js.Schema, error) { return r.inner.JSONSchema() }

func (r refinedSchema[T]) fieldAdapter() AnyAdapter { return anyAdapterFromSchema[T](r) }
