package dsl

import (
	"context"
	"strconv"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/i18n"
	js "github.com/kharioki/skematic/jsonschema"
)

// ArrayBuilder builds array schemas over []any with a single element schema.
// Element failures are collected across the whole array rather than stopping
// at the first bad index.
type ArrayBuilder struct {
	elem AnyAdapter
	min  *int
	max  *int
}

var _ skematic.Schema[[]any] = (*ArrayBuilder)(nil)

// Array returns an array schema whose elements are validated by fs.
func Array(fs FieldSchema) *ArrayBuilder {
	return &ArrayBuilder{elem: fs.fieldAdapter()}
}

func (b *ArrayBuilder) clone() *ArrayBuilder {
	nb := *b
	return &nb
}

// Min constrains the minimum element count (inclusive).
func (b *ArrayBuilder) Min(n int) *ArrayBuilder {
	nb := b.clone()
	nb.min = &n
	return nb
}

// Max constrains the maximum element count (inclusive).
func (b *ArrayBuilder) Max(n int) *ArrayBuilder {
	nb := b.clone()
	nb.max = &n
	return nb
}

func (b *ArrayBuilder) Parse(ctx context.Context, v any) ([]any, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, skematic.Issues{typeIssue("/", "array", v)}
	}
	var iss skematic.Issues
	iss = b.checkLength(ctx, len(arr), iss)
	if skematic.IsFailFast(ctx) && len(iss) > 0 {
		return nil, iss
	}
	out := make([]any, 0, len(arr))
	for i, el := range arr {
		got, err := b.parseElement(ctx, i, el)
		if err != nil {
			iss = skematic.AppendIssues(iss, issuesFromErr(err)...)
			if skematic.IsFailFast(ctx) {
				return nil, iss
			}
			continue
		}
		out = append(out, got)
	}
	if len(iss) > 0 {
		return nil, iss
	}

	no, err := skematic.ApplyNormalize[[]any](ctx, out, b)
	if err != nil {
		return nil, issuesFromErr(err)
	}
	out = no
	if err := skematic.ApplyRefine[[]any](ctx, out, b); err != nil {
		return nil, issuesFromErr(err)
	}
	return out, nil
}

// parseElement parses one element, rebasing issue paths under the index.
// Failures of the element schema itself are reported as element errors;
// issues from nested containers keep their own codes.
func (b *ArrayBuilder) parseElement(ctx context.Context, i int, el any) (any, error) {
	if b.elem.parse == nil {
		return el, nil
	}
	got, err := b.elem.parse(ctx, el)
	if err == nil {
		return got, nil
	}
	base := "/" + strconv.Itoa(i)
	var out skematic.Issues
	for _, it := range issuesFromErr(err) {
		switch it.Path {
		case "", "/":
			it.Path = base
			it.Code = skematic.CodeElementError
			if it.Message == "" {
				it.Message = i18n.T(skematic.CodeElementError, nil)
			}
		default:
			it.Path = base + it.Path
		}
		out = append(out, it)
	}
	return nil, out
}

func (b *ArrayBuilder) checkLength(ctx context.Context, n int, iss skematic.Issues) skematic.Issues {
	if b.min != nil && n < *b.min {
		iss = skematic.AppendIssues(iss, arrayTooShort("/", *b.min))
		if skematic.IsFailFast(ctx) {
			return iss
		}
	}
	if b.max != nil && n > *b.max {
		iss = skematic.AppendIssues(iss, arrayTooLong("/", *b.max))
	}
	return iss
}

func (b *ArrayBuilder) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[[]any], error) {
	out, err := b.Parse(ctx, v)
	if err != nil {
		return skematic.Parsed[[]any]{}, err
	}
	pm := skematic.PresenceMap{"/": skematic.PresenceSeen}
	if arr, ok := v.([]any); ok {
		for i, el := range arr {
			p := "/" + strconv.Itoa(i)
			pm[p] |= skematic.PresenceSeen
			if el == nil {
				pm[p] |= skematic.PresenceWasNull
			}
			markPresenceSubtree(pm, p, el)
		}
	}
	return skematic.Parsed[[]any]{Value: out, Presence: pm}, nil
}

func (b *ArrayBuilder) TypeCheck(ctx context.Context, v any) error {
	if _, ok := v.([]any); !ok {
		return skematic.Issues{typeIssue("/", "array", v)}
	}
	return nil
}

func (b *ArrayBuilder) RuleCheck(ctx context.Context, v any) error {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var iss skematic.Issues
	iss = b.checkLength(ctx, len(arr), iss)
	if b.elem.validateValue != nil {
		for i, el := range arr {
			if err := b.elem.validateValue(ctx, el); err != nil {
				base := "/" + strconv.Itoa(i)
				for _, it := range issuesFromErr(err) {
					switch it.Path {
					case "", "/":
						it.Path = base
					default:
						it.Path = base + it.Path
					}
					iss = skematic.AppendIssues(iss, it)
				}
			}
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (b *ArrayBuilder) Validate(ctx context.Context, v any) error {
	if err := b.TypeCheck(ctx, v); err != nil {
		return err
	}
	return b.RuleCheck(ctx, v)
}

func (b *ArrayBuilder) ValidateValue(ctx context.Context, v []any) error {
	return b.RuleCheck(ctx, v)
}

func (b *ArrayBuilder) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "array"}
	if b.elem.jsonSchema != nil {
		child, err := b.elem.jsonSchema()
		if err != nil {
			return nil, err
		}
		s.Items = child
	}
	if b.min != nil {
		n := *b.min
		s.MinItems = &n
	}
	if b.max != nil {
		n := *b.max
		s.MaxItems = &n
	}
	return s, nil
}

func (b *ArrayBuilder) fieldAdapter() AnyAdapter { return anyAdapterFromSchema[[]any](b) }

var _ FieldSchema = (*ArrayBuilder)(nil)

func arrayTooShort(path string, min int) skematic.Issue {
	return skematic.Issue{
		Path:    path,
		Code:    skematic.CodeTooShort,
		Message: i18n.T(skematic.CodeTooShort, map[string]string{"min": strconv.Itoa(min), "kind": "array"}),
		Params:  map[string]any{"min": min, "kind": "array"},
	}
}

func arrayTooLong(path string, max int) skematic.Issue {
	return skematic.Issue{
		Path:    path,
		Code:    skematic.CodeTooLong,
		Message: i18n.T(skematic.CodeTooLong, map[string]string{"max": strconv.Itoa(max), "kind": "array"}),
		Params:  map[string]any{"max": max, "kind": "array"},
	}
}
