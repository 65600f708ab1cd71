package codec

import (
	"context"
	"time"

	skematic "github.com/kharioki/skematic"
	js "github.com/kharioki/skematic/jsonschema"
)

// TimeRFC3339 returns a Codec converting between RFC 3339 strings and
// time.Time. Decoding accepts nanosecond precision; encoding normalizes to
// UTC with trailing zeros trimmed.
func TimeRFC3339() skematic.Codec[string, time.Time] {
	return &rfc3339Codec{
		in:  wireStringSchema{},
		out: timeValueSchema{},
	}
}

type rfc3339Codec struct {
	in  skematic.Schema[string]
	out skematic.Schema[time.Time]
}

func (c *rfc3339Codec) In() skematic.Schema[string]     { return c.in }
func (c *rfc3339Codec) Out() skematic.Schema[time.Time] { return c.out }

func (c *rfc3339Codec) Decode(ctx context.Context, a string) (time.Time, error) {
	t, err := parseRFC3339(a)
	if err != nil {
		return time.Time{}, skematic.Issues{{
			Path:    "/",
			Code:    skematic.CodeInvalidFormat,
			Message: "invalid RFC3339 time",
			Params:  map[string]any{"format": "date-time"},
			Cause:   err,
		}}
	}
	if err := c.out.ValidateValue(ctx, t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func (c *rfc3339Codec) Encode(ctx context.Context, b time.Time) (string, error) {
	// Validate using Out, convert to wire, then re-validate via In.Parse
	if err := c.out.ValidateValue(ctx, b); err != nil {
		return "", err
	}
	s := formatRFC3339Canonical(b)
	if _, err := c.in.Parse(ctx, s); err != nil {
		return "", err
	}
	return s, nil
}

func (c *rfc3339Codec) DecodeWithMeta(ctx context.Context, a string) (skematic.Parsed[time.Time], error) {
	t, err := c.Decode(ctx, a)
	if err != nil {
		return skematic.Parsed[time.Time]{}, err
	}
	return skematic.Parsed[time.Time]{Value: t, Presence: skematic.PresenceMap{"/": skematic.PresenceSeen}}, nil
}

func (c *rfc3339Codec) EncodePreserving(ctx context.Context, pb skematic.Parsed[time.Time]) (string, error) {
	// Top-level scalars cannot represent null or missing, so presence saying
	// so is an error rather than an omission.
	if pb.Presence != nil {
		if p, ok := pb.Presence["/"]; ok {
			if p&skematic.PresenceWasNull != 0 {
				return "", skematic.Issues{{Path: "/", Code: skematic.CodeInvalidType, Message: "cannot encode null as RFC3339 string"}}
			}
			if p&skematic.PresenceSeen == 0 {
				return "", skematic.Issues{{Path: "/", Code: skematic.CodeRequired, Message: "missing value (preserving)"}}
			}
		}
	}
	return c.Encode(ctx, pb.Value)
}

// ---- wire/domain leaf schemas ----

type wireStringSchema struct{}

func (wireStringSchema) Parse(ctx context.Context, v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", skematic.Issues{{Path: "/", Code: skematic.CodeInvalidType, Message: "expected string"}}
}

func (wireStringSchema) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[string], error) {
	s, err := (wireStringSchema{}).Parse(ctx, v)
	return skematic.Parsed[string]{Value: s, Presence: skematic.PresenceMap{"/": skematic.PresenceSeen}}, err
}
func (wireStringSchema) TypeCheck(ctx context.Context, v any) error        { return nil }
func (wireStringSchema) RuleCheck(ctx context.Context, v any) error        { return nil }
func (wireStringSchema) Validate(ctx context.Context, v any) error         { return nil }
func (wireStringSchema) ValidateValue(ctx context.Context, v string) error { return nil }
func (wireStringSchema) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Type: "string", Format: "date-time"}, nil
}

type timeValueSchema struct{}

func (timeValueSchema) Parse(ctx context.Context, v any) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	return time.Time{}, skematic.Issues{{Path: "/", Code: skematic.CodeInvalidType, Message: "expected time.Time"}}
}

func (timeValueSchema) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[time.Time], error) {
	t, err := (timeValueSchema{}).Parse(ctx, v)
	return skematic.Parsed[time.Time]{Value: t, Presence: skematic.PresenceMap{"/": skematic.PresenceSeen}}, err
}
func (timeValueSchema) TypeCheck(ctx context.Context, v any) error           { return nil }
func (timeValueSchema) RuleCheck(ctx context.Context, v any) error           { return nil }
func (timeValueSchema) Validate(ctx context.Context, v any) error            { return nil }
func (timeValueSchema) ValidateValue(ctx context.Context, v time.Time) error { return nil }
func (timeValueSchema) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Type: "string", Format: "date-time"}, nil
}

func parseRFC3339(s string) (time.Time, error) {
	// RFC3339Nano first; plain RFC3339 as fallback
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC; RFC3339Nano trims trailing zeros
	return t.UTC().Format(time.RFC3339Nano)
}
