package dsl_test

import (
	"context"
	"testing"

	skematic "github.com/kharioki/skematic"
	g "github.com/kharioki/skematic/dsl"
)

// ParseWithMeta distinguishes seen, null, and defaulted fields.
func TestObjectParseWithMeta_PresenceBits(t *testing.T) {
	ctx := context.Background()
	s := g.Object().
		Field("name", g.String()).
		Field("note", g.String()).Nullable().Optional().
		Field("level", g.String()).Default("basic").
		UnknownStrip().
		MustBuild()

	dv, err := s.ParseWithMeta(ctx, map[string]any{
		"name": "amy",
		"note": nil,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	pm := dv.Presence

	if pm["/"]&skematic.PresenceSeen == 0 {
		t.Fatalf("root must be seen: %v", pm)
	}
	if pm["/name"]&skematic.PresenceSeen == 0 {
		t.Fatalf("/name must be seen: %v", pm)
	}
	if pm["/note"]&skematic.PresenceWasNull == 0 || pm["/note"]&skematic.PresenceSeen == 0 {
		t.Fatalf("/note must be seen and null: %v", pm)
	}
	// defaulted fields are flagged without being seen
	if pm["/level"] != skematic.PresenceDefaultApplied {
		t.Fatalf("/level must be default-applied only: %v", pm)
	}
	if dv.Value["level"] != "basic" {
		t.Fatalf("default must be substituted: %v", dv.Value)
	}
}

// Presence descends into nested maps and arrays under escaped pointers.
func TestObjectParseWithMeta_SubtreeMarking(t *testing.T) {
	ctx := context.Background()
	s := g.Object().
		Field("meta", g.SchemaOf[map[string]any](g.MapAny())).
		Field("tags", g.Array(g.String())).
		UnknownStrip().
		MustBuild()

	dv, err := s.ParseWithMeta(ctx, map[string]any{
		"meta": map[string]any{"region": "eu", "zone": nil},
		"tags": []any{"a", "b"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	pm := dv.Presence

	if pm["/meta/region"]&skematic.PresenceSeen == 0 {
		t.Fatalf("/meta/region must be seen: %v", pm)
	}
	if pm["/meta/zone"]&skematic.PresenceWasNull == 0 {
		t.Fatalf("/meta/zone must be null: %v", pm)
	}
	if pm["/tags/0"]&skematic.PresenceSeen == 0 || pm["/tags/1"]&skematic.PresenceSeen == 0 {
		t.Fatalf("array elements must be seen: %v", pm)
	}
}

// An explicitly provided value never carries the default flag.
func TestObjectParseWithMeta_ExplicitBeatsDefault(t *testing.T) {
	ctx := context.Background()
	s := g.Object().
		Field("level", g.String()).Default("basic").
		UnknownStrip().
		MustBuild()

	dv, err := s.ParseWithMeta(ctx, map[string]any{"level": "pro"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if dv.Presence["/level"]&skematic.PresenceDefaultApplied != 0 {
		t.Fatalf("explicit value must not be default-flagged: %v", dv.Presence)
	}
	if dv.Presence["/level"]&skematic.PresenceSeen == 0 {
		t.Fatalf("explicit value must be seen: %v", dv.Presence)
	}
	if dv.Value["level"] != "pro" {
		t.Fatalf("explicit value must win: %v", dv.Value)
	}
}

// Array presence marks each element index from the original input.
func TestArrayParseWithMeta_Elements(t *testing.T) {
	ctx := context.Background()
	s := g.Array(g.String().Min(1))

	dv, err := s.ParseWithMeta(ctx, []any{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if dv.Presence["/"]&skematic.PresenceSeen == 0 {
		t.Fatalf("root must be seen: %v", dv.Presence)
	}
	if dv.Presence["/0"]&skematic.PresenceSeen == 0 || dv.Presence["/1"]&skematic.PresenceSeen == 0 {
		t.Fatalf("indices must be seen: %v", dv.Presence)
	}
}
