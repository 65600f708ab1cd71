package skematic_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	skematic "github.com/kharioki/skematic"
	g "github.com/kharioki/skematic/dsl"
)

func TestParseFrom_DuplicateKey_Error(t *testing.T) {
	ctx := context.Background()
	s := g.MapAny()
	opt := skematic.ParseOpt{Strictness: skematic.Strictness{OnDuplicateKey: skematic.Error}}

	_, err := skematic.ParseFrom(ctx, s, skematic.JSONBytes([]byte(`{"a":1,"a":2}`)), opt)
	iss, ok := skematic.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected Issues error, got: %v", err)
	}
	if iss[0].Code != skematic.CodeDuplicateKey {
		t.Fatalf("expected duplicate_key issue, got: %v", iss)
	}
	if iss[0].Path != "/a" {
		t.Fatalf("expected path=/a, got: %s", iss[0].Path)
	}
}

func TestParseFrom_DuplicateKey_NestedPath(t *testing.T) {
	ctx := context.Background()
	s := g.Array(g.SchemaOf[map[string]any](g.MapAny()))
	opt := skematic.ParseOpt{Strictness: skematic.Strictness{OnDuplicateKey: skematic.Error}}

	_, err := skematic.ParseFrom[[]any](ctx, s, skematic.JSONBytes([]byte(`[{"a":1,"a":2}]`)), opt)
	iss, ok := skematic.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected Issues, got: %v", err)
	}
	if iss[0].Path != "/0/a" {
		t.Fatalf("expected path=/0/a, got: %s", iss[0].Path)
	}
}

func TestParseFrom_DuplicateKey_IgnoredByDefault(t *testing.T) {
	ctx := context.Background()
	s := g.MapAny()
	v, err := skematic.ParseFrom(ctx, s, skematic.JSONBytes([]byte(`{"a":1,"a":2}`)))
	if err != nil {
		t.Fatalf("default strictness should accept duplicates: %v", err)
	}
	// Last write wins when duplicates are tolerated.
	if v["a"] != json.Number("2") {
		t.Fatalf("expected last value to win, got %#v", v["a"])
	}
}

func TestParseFrom_MaxDepth_Exceeded(t *testing.T) {
	ctx := context.Background()
	s := g.MapAny()
	opt := skematic.ParseOpt{MaxDepth: 2}

	// depth = 3 for { a: { b: { c: 1 } } }
	_, err := skematic.ParseFrom(ctx, s, skematic.JSONBytes([]byte(`{"a":{"b":{"c":1}}}`)), opt)
	iss, ok := skematic.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected issues, got: %v", err)
	}
	if iss[0].Path != "/a/b" {
		t.Fatalf("expected path=/a/b for max depth, got: %v", iss)
	}
	if iss[0].Message != "max depth exceeded" {
		t.Fatalf("unexpected message: %q", iss[0].Message)
	}
}

func TestParseFrom_MaxBytes_MidStream(t *testing.T) {
	ctx := context.Background()
	s := g.MapAny()
	opt := skematic.ParseOpt{MaxBytes: 8}

	long := `{"a":"` + strings.Repeat("x", 64) + `"}`
	_, err := skematic.ParseFrom(ctx, s, skematic.JSONBytes([]byte(long)), opt)
	iss, ok := skematic.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected issues, got: %v", err)
	}
	if iss[0].Code != skematic.CodeTruncated {
		t.Fatalf("expected truncated issue, got: %v", iss)
	}
}
