package dsl

import (
	"context"
	"sort"
	"strings"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/i18n"
	js "github.com/kharioki/skematic/jsonschema"
)

type objRefine struct {
	name string
	fn   func(ctx context.Context, v map[string]any) error
}

// objectSchema validates map[string]any against declared fields in
// declaration order. A field is required unless it is optional or carries a
// default; defaults substitute verbatim without re-validation.
type objectSchema struct {
	fields        map[string]AnyAdapter
	order         []string
	unknownPolicy skematic.UnknownPolicy
	unknownTarget string
	refines       []objRefine
}

var _ skematic.Schema[map[string]any] = (*objectSchema)(nil)

func (o *objectSchema) required(name string) bool {
	ad := o.fields[name]
	return !ad.optional && ad.defaultValue == nil
}

func (o *objectSchema) Parse(ctx context.Context, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		it := typeIssue("/", "object", v)
		it.Hint = "expected object"
		return nil, skematic.Issues{it}
	}
	out := make(map[string]any, len(m))
	var iss skematic.Issues

	iss = o.collectKnown(ctx, m, out, iss, nil)
	if skematic.IsFailFast(ctx) && len(iss) > 0 {
		return nil, iss
	}
	iss = o.collectUnknown(ctx, m, out, iss)
	if len(iss) > 0 {
		return nil, iss
	}

	nm, err := skematic.ApplyNormalize[map[string]any](ctx, out, o)
	if err != nil {
		return nil, issuesFromErr(err)
	}
	out = nm
	if err := skematic.ApplyRefine[map[string]any](ctx, out, o); err != nil {
		return nil, issuesFromErr(err)
	}
	return out, nil
}

// collectKnown walks declared fields in declaration order, parsing present
// values and applying absence handling. When pm is non-nil presence is
// recorded alongside.
func (o *objectSchema) collectKnown(ctx context.Context, m, out map[string]any, iss skematic.Issues, pm skematic.PresenceMap) skematic.Issues {
	for _, name := range o.order {
		ad := o.fields[name]
		raw, present := m[name]
		if present {
			if pm != nil {
				p := "/" + escapeKey(name)
				pm[p] |= skematic.PresenceSeen
				if raw == nil {
					pm[p] |= skematic.PresenceWasNull
				}
				markPresenceSubtree(pm, p, raw)
			}
			iss = o.parseField(ctx, name, ad, raw, out, iss)
		} else {
			iss = o.absentField(ctx, name, ad, out, iss, pm)
		}
		if skematic.IsFailFast(ctx) && len(iss) > 0 {
			return iss
		}
	}
	return iss
}

func (o *objectSchema) parseField(ctx context.Context, name string, ad AnyAdapter, raw any, out map[string]any, iss skematic.Issues) skematic.Issues {
	if ad.parse == nil {
		out[name] = raw
		return iss
	}
	got, err := ad.parse(ctx, raw)
	if err != nil {
		return skematic.AppendIssues(iss, rebaseIssues(name, err)...)
	}
	out[name] = got
	return iss
}

func (o *objectSchema) absentField(ctx context.Context, name string, ad AnyAdapter, out map[string]any, iss skematic.Issues, pm skematic.PresenceMap) skematic.Issues {
	switch {
	case ad.defaultValue != nil:
		out[name] = ad.defaultValue()
		if pm != nil {
			pm["/"+escapeKey(name)] |= skematic.PresenceDefaultApplied
		}
	case ad.optional:
		// absent and allowed to be
	default:
		iss = skematic.AppendIssues(iss, skematic.Issue{
			Path:    "/" + escapeKey(name),
			Code:    skematic.CodeRequired,
			Message: i18n.T(skematic.CodeRequired, nil),
			Hint:    "required property missing",
		})
	}
	return iss
}

// collectUnknown applies the unknown-key policy. Keys are visited sorted so
// issue order is deterministic.
func (o *objectSchema) collectUnknown(ctx context.Context, m, out map[string]any, iss skematic.Issues) skematic.Issues {
	var unknown []string
	for k := range m {
		if _, known := o.fields[k]; !known {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		if o.unknownPolicy == skematic.UnknownPassthrough && o.unknownTarget != "" {
			o.assignTarget(out, map[string]any{})
		}
		return iss
	}
	sort.Strings(unknown)
	switch o.unknownPolicy {
	case skematic.UnknownStrict:
		for _, k := range unknown {
			iss = skematic.AppendIssues(iss, skematic.Issue{
				Path:    "/" + escapeKey(k),
				Code:    skematic.CodeUnknownKey,
				Message: i18n.T(skematic.CodeUnknownKey, map[string]string{"key": k}),
				Params:  map[string]any{"key": k},
			})
			if skematic.IsFailFast(ctx) {
				return iss
			}
		}
	case skematic.UnknownStrip:
		// dropped
	case skematic.UnknownPassthrough:
		if o.unknownTarget == "" {
			for _, k := range unknown {
				out[k] = m[k]
			}
			return iss
		}
		extras := make(map[string]any, len(unknown))
		for _, k := range unknown {
			extras[k] = m[k]
		}
		o.assignTarget(out, extras)
	}
	return iss
}

// assignTarget funnels collected unknowns under the target key, overlaying
// onto a declared map value when one parsed there.
func (o *objectSchema) assignTarget(out map[string]any, extras map[string]any) {
	if prev, ok := out[o.unknownTarget].(map[string]any); ok {
		merged := make(map[string]any, len(prev)+len(extras))
		for k, v := range prev {
			merged[k] = v
		}
		for k, v := range extras {
			merged[k] = v
		}
		out[o.unknownTarget] = merged
		return
	}
	out[o.unknownTarget] = extras
}

func (o *objectSchema) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[map[string]any], error) {
	m, ok := v.(map[string]any)
	if !ok {
		it := typeIssue("/", "object", v)
		it.Hint = "expected object"
		return skematic.Parsed[map[string]any]{}, skematic.Issues{it}
	}
	pm := skematic.PresenceMap{"/": skematic.PresenceSeen}
	out := make(map[string]any, len(m))
	var iss skematic.Issues

	iss = o.collectKnown(ctx, m, out, iss, pm)
	if skematic.IsFailFast(ctx) && len(iss) > 0 {
		return skematic.Parsed[map[string]any]{}, iss
	}
	iss = o.collectUnknown(ctx, m, out, iss)
	if len(iss) > 0 {
		return skematic.Parsed[map[string]any]{}, iss
	}

	nm, err := skematic.ApplyNormalize[map[string]any](ctx, out, o)
	if err != nil {
		return skematic.Parsed[map[string]any]{}, issuesFromErr(err)
	}
	out = nm
	if err := skematic.ApplyRefine[map[string]any](ctx, out, o); err != nil {
		return skematic.Parsed[map[string]any]{}, issuesFromErr(err)
	}
	return skematic.Parsed[map[string]any]{Value: out, Presence: pm}, nil
}

func (o *objectSchema) TypeCheck(ctx context.Context, v any) error {
	if _, ok := v.(map[string]any); !ok {
		it := typeIssue("/", "object", v)
		it.Hint = "expected object"
		return skematic.Issues{it}
	}
	return nil
}

// RuleCheck reports missing required fields and per-field rule violations on
// an already-decoded map without transforming it.
func (o *objectSchema) RuleCheck(ctx context.Context, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	names := append([]string(nil), o.order...)
	sort.Strings(names)
	var iss skematic.Issues
	for _, name := range names {
		ad := o.fields[name]
		raw, present := m[name]
		if !present {
			if o.required(name) {
				iss = skematic.AppendIssues(iss, skematic.Issue{
					Path:    "/" + escapeKey(name),
					Code:    skematic.CodeRequired,
					Message: i18n.T(skematic.CodeRequired, nil),
					Hint:    "required property missing",
				})
			}
			continue
		}
		if ad.validateValue == nil {
			continue
		}
		if err := ad.validateValue(ctx, raw); err != nil {
			iss = skematic.AppendIssues(iss, rebaseIssues(name, err)...)
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (o *objectSchema) Validate(ctx context.Context, v any) error {
	if err := o.TypeCheck(ctx, v); err != nil {
		return err
	}
	return o.RuleCheck(ctx, v)
}

// ValidateValue validates a decoded map in place: required fields, per-field
// rules, and strict unknown-key reporting. No defaults are applied.
func (o *objectSchema) ValidateValue(ctx context.Context, v map[string]any) error {
	var iss skematic.Issues
	if err := o.RuleCheck(ctx, v); err != nil {
		iss = skematic.AppendIssues(iss, issuesFromErr(err)...)
	}
	if o.unknownPolicy == skematic.UnknownStrict {
		var unknown []string
		for k := range v {
			if _, known := o.fields[k]; !known {
				unknown = append(unknown, k)
			}
		}
		sort.Strings(unknown)
		for _, k := range unknown {
			iss = skematic.AppendIssues(iss, skematic.Issue{
				Path:    "/" + escapeKey(k),
				Code:    skematic.CodeUnknownKey,
				Message: i18n.T(skematic.CodeUnknownKey, map[string]string{"key": k}),
				Params:  map[string]any{"key": k},
			})
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (o *objectSchema) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{
		Type:       "object",
		Properties: map[string]*js.Schema{},
	}
	for _, name := range o.order {
		ad := o.fields[name]
		if ad.jsonSchema == nil {
			s.Properties[name] = &js.Schema{}
			continue
		}
		child, err := ad.jsonSchema()
		if err != nil {
			return nil, err
		}
		s.Properties[name] = child
	}
	var req []string
	for name := range o.fields {
		if o.required(name) {
			req = append(req, name)
		}
	}
	sort.Strings(req)
	s.Required = req
	switch o.unknownPolicy {
	case skematic.UnknownStrict:
		s.AdditionalProperties = false
	default:
		s.AdditionalProperties = true
	}
	return s, nil
}

// Refine implements the refinement hook: registered object-level rules run
// in order against the parsed map.
func (o *objectSchema) Refine(ctx context.Context, v map[string]any) error {
	var iss skematic.Issues
	for _, r := range o.refines {
		err := r.fn(ctx, v)
		if err == nil {
			continue
		}
		for _, it := range issuesFromErr(err) {
			if it.Code == "" {
				it.Code = skematic.CodeCustom
			}
			if it.Rule == "" {
				it.Rule = r.name
			}
			iss = skematic.AppendIssues(iss, it)
		}
		if skematic.IsFailFast(ctx) {
			return iss
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

var _ skematic.Refiner[map[string]any] = (*objectSchema)(nil)

// fieldAdapter lets a built object schema nest as a field of another object.
func (o *objectSchema) fieldAdapter() AnyAdapter {
	return anyAdapterFromSchema[map[string]any](o)
}

var _ FieldSchema = (*objectSchema)(nil)

// issuesFromErr coerces an error into Issues, wrapping foreign errors as a
// single custom issue at the root.
func issuesFromErr(err error) skematic.Issues {
	if iss, ok := skematic.AsIssues(err); ok {
		return iss
	}
	return skematic.Issues{skematic.Issue{
		Path:    "/",
		Code:    skematic.CodeCustom,
		Message: err.Error(),
		Cause:   err,
	}}
}

// rebaseIssues prefixes child issue paths with the field key, preserving
// codes, params, and provenance.
func rebaseIssues(name string, err error) skematic.Issues {
	base := "/" + escapeKey(name)
	iss := issuesFromErr(err)
	out := make(skematic.Issues, 0, len(iss))
	for _, it := range iss {
		switch it.Path {
		case "", "/":
			it.Path = base
		default:
			if strings.HasPrefix(it.Path, "/") {
				it.Path = base + it.Path
			} else {
				it.Path = base + "/" + it.Path
			}
		}
		out = append(out, it)
	}
	return out
}

var keyEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// escapeKey escapes a map key for use as an RFC 6901 reference token.
func escapeKey(k string) string {
	if !strings.ContainsAny(k, "~/") {
		return k
	}
	return keyEscaper.Replace(k)
}
