package dsl_test

import (
	"context"
	"testing"
	"time"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/codec"
	g "github.com/kharioki/skematic/dsl"
)

// FromCodec turns a Codec into a schema: wire strings in, domain time.Time out.
func TestFromCodec_TimeRFC3339(t *testing.T) {
	ctx := context.Background()
	ts := g.FromCodec(codec.TimeRFC3339())

	v, err := ts.Parse(ctx, "2024-03-01T12:00:00Z")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if !v.Equal(want) {
		t.Fatalf("expected %v, got %v", want, v)
	}

	// nanosecond precision is accepted
	v, err = ts.Parse(ctx, "2024-03-01T12:00:00.5Z")
	if err != nil || v.Nanosecond() != 500_000_000 {
		t.Fatalf("expected fractional seconds, got v=%v err=%v", v, err)
	}

	// malformed wire values are format issues
	_, err = ts.Parse(ctx, "yesterday")
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeInvalidFormat {
		t.Fatalf("expected invalid_format, got %v", err)
	}

	// non-strings never reach the codec
	if _, err := ts.Parse(ctx, 5); err == nil {
		t.Fatalf("expected wire-side rejection")
	}
}

// A codec-backed schema nests as an object field; issues carry the field path.
func TestFromCodec_AsObjectField(t *testing.T) {
	ctx := context.Background()
	s := g.Object().
		Field("name", g.String()).
		Field("createdAt", g.SchemaOf[time.Time](g.FromCodec(codec.TimeRFC3339()))).
		UnknownStrip().
		MustBuild()

	v, err := s.Parse(ctx, map[string]any{
		"name":      "job-1",
		"createdAt": "2024-03-01T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := v["createdAt"].(time.Time); !ok {
		t.Fatalf("expected time.Time, got %T", v["createdAt"])
	}

	_, err = s.Parse(ctx, map[string]any{
		"name":      "job-1",
		"createdAt": "not-a-time",
	})
	if iss, _ := skematic.AsIssues(err); len(iss) != 1 || iss[0].Path != "/createdAt" ||
		iss[0].Code != skematic.CodeInvalidFormat {
		t.Fatalf("expected invalid_format at /createdAt, got %v", err)
	}
}

// Encode normalizes to canonical UTC with trailing zeros trimmed.
func TestCodec_TimeRFC3339_EncodeCanonical(t *testing.T) {
	ctx := context.Background()
	c := codec.TimeRFC3339()

	loc := time.FixedZone("JST", 9*3600)
	in := time.Date(2024, 3, 1, 21, 0, 0, 0, loc)
	s, err := c.Encode(ctx, in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s != "2024-03-01T12:00:00Z" {
		t.Fatalf("expected canonical UTC, got %q", s)
	}

	// decode-encode round trip is stable
	back, err := c.Decode(ctx, s)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	s2, err := c.Encode(ctx, back)
	if err != nil || s2 != s {
		t.Fatalf("round trip mismatch: %q vs %q (err=%v)", s, s2, err)
	}
}

// EncodePreserving on a scalar codec requires the value to have been seen.
func TestCodec_TimeRFC3339_EncodePreserving(t *testing.T) {
	ctx := context.Background()
	c := codec.TimeRFC3339()

	dv, err := c.DecodeWithMeta(ctx, "2024-03-01T12:00:00Z")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	s, err := c.EncodePreserving(ctx, dv)
	if err != nil || s != "2024-03-01T12:00:00Z" {
		t.Fatalf("expected canonical string, got %q err=%v", s, err)
	}

	// presence flagged null cannot encode
	dv.Presence["/"] |= skematic.PresenceWasNull
	if _, err := c.EncodePreserving(ctx, dv); err == nil {
		t.Fatalf("expected error for null presence")
	}
}

// JSONSchema export comes from the domain side, annotated as date-time.
func TestFromCodec_JSONSchema(t *testing.T) {
	ts := g.FromCodec(codec.TimeRFC3339())
	s, err := ts.JSONSchema()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Type != "string" || s.Format != "date-time" {
		t.Fatalf("unexpected schema: %+v", s)
	}
}
