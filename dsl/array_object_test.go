package dsl_test

import (
	"context"
	"reflect"
	"testing"

	skematic "github.com/kharioki/skematic"
	g "github.com/kharioki/skematic/dsl"
)

// Bad elements do not stop the scan: every offending index is reported.
func TestArray_CollectsAllElementErrors(t *testing.T) {
	ctx := context.Background()
	s := g.Array(g.String())

	v, err := s.Parse(ctx, []any{"a", "b"})
	if err != nil || !reflect.DeepEqual(v, []any{"a", "b"}) {
		t.Fatalf("parse ok expected, got v=%v err=%v", v, err)
	}

	_, err = s.Parse(ctx, []any{"a", 1, "b", true})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 2 {
		t.Fatalf("expected 2 element issues, got %v", err)
	}
	if iss[0].Path != "/1" || iss[1].Path != "/3" {
		t.Fatalf("unexpected paths: %v", iss)
	}
	// scalar element failures are reported as element errors, keeping the
	// underlying type message
	for _, it := range iss {
		if it.Code != skematic.CodeElementError {
			t.Fatalf("expected element_error, got %+v", it)
		}
	}
	if iss[0].Message != "Expected string, received number" {
		t.Fatalf("unexpected message: %q", iss[0].Message)
	}

	// fail-fast stops at the first bad index
	_, err = s.Parse(skematic.WithFailFast(ctx, true), []any{1, 2})
	if iss, _ := skematic.AsIssues(err); len(iss) != 1 || iss[0].Path != "/0" {
		t.Fatalf("fail-fast expected /0 only, got %v", err)
	}
}

// Issues from nested containers keep their own codes and paths; only the
// element schema's root failure is re-coded.
func TestArray_NestedObjectKeepsCodes(t *testing.T) {
	ctx := context.Background()
	item := g.Object().
		Field("id", g.String()).
		UnknownStrip()
	s := g.Array(item)

	_, err := s.Parse(ctx, []any{
		map[string]any{"id": "ok"},
		map[string]any{"id": 7},
		map[string]any{},
	})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 2 {
		t.Fatalf("expected 2 issues, got %v", err)
	}
	if iss[0].Path != "/1/id" || iss[0].Code != skematic.CodeInvalidType {
		t.Fatalf("nested issue must keep its code: %+v", iss[0])
	}
	if iss[1].Path != "/2/id" || iss[1].Code != skematic.CodeRequired {
		t.Fatalf("nested issue must keep its code: %+v", iss[1])
	}

	// a non-object element fails the element schema itself
	_, err = s.Parse(ctx, []any{"oops"})
	if iss, _ := skematic.AsIssues(err); len(iss) != 1 || iss[0].Path != "/0" ||
		iss[0].Code != skematic.CodeElementError {
		t.Fatalf("expected element_error at /0, got %v", err)
	}
}

func TestArray_LengthBounds(t *testing.T) {
	ctx := context.Background()
	s := g.Array(g.String()).Min(2).Max(3)

	if _, err := s.Parse(ctx, []any{"a", "b"}); err != nil {
		t.Fatalf("within bounds expected ok, err=%v", err)
	}

	_, err := s.Parse(ctx, []any{"a"})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeTooShort {
		t.Fatalf("expected too_short, got %v", err)
	}
	if iss[0].Message != "Array must contain at least 2 element(s)" {
		t.Fatalf("unexpected message: %q", iss[0].Message)
	}

	_, err = s.Parse(ctx, []any{"a", "b", "c", "d"})
	iss, _ = skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeTooLong {
		t.Fatalf("expected too_long, got %v", err)
	}
	if iss[0].Message != "Array must contain at most 3 element(s)" {
		t.Fatalf("unexpected message: %q", iss[0].Message)
	}

	// length and element violations accumulate
	_, err = s.Parse(ctx, []any{7})
	if iss, _ := skematic.AsIssues(err); len(iss) != 2 ||
		iss[0].Code != skematic.CodeTooShort || iss[1].Code != skematic.CodeElementError {
		t.Fatalf("expected [too_short element_error], got %v", err)
	}
}

func TestArray_NonArrayInput(t *testing.T) {
	ctx := context.Background()
	_, err := g.Array(g.String()).Parse(ctx, "nope")
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeInvalidType || iss[0].Path != "/" {
		t.Fatalf("expected invalid_type at root, got %v", err)
	}
	if iss[0].Message != "Expected array, received string" {
		t.Fatalf("unexpected message: %q", iss[0].Message)
	}
}

// An array nests as an object field; element issues carry the field prefix.
func TestArray_AsObjectField(t *testing.T) {
	ctx := context.Background()
	s := g.Object().
		Field("tags", g.Array(g.String().Min(1))).
		UnknownStrip().
		MustBuild()

	v, err := s.Parse(ctx, map[string]any{"tags": []any{"go", "schema"}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(v["tags"], []any{"go", "schema"}) {
		t.Fatalf("unexpected tags: %v", v["tags"])
	}

	_, err = s.Parse(ctx, map[string]any{"tags": []any{"go", ""}})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/tags/1" {
		t.Fatalf("expected /tags/1, got %v", err)
	}
}

// Arrays of arrays rebase paths through every level.
func TestArray_DeepNesting(t *testing.T) {
	ctx := context.Background()
	s := g.Array(g.Array(g.String()))

	_, err := s.Parse(ctx, []any{
		[]any{"ok"},
		[]any{"ok", 5},
	})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/1/1" {
		t.Fatalf("expected /1/1, got %v", err)
	}
}

// RuleCheck validates decoded elements in place without transforming them.
func TestArray_RuleCheck(t *testing.T) {
	ctx := context.Background()
	s := g.Array(g.String().Min(2)).Min(1)

	if err := s.RuleCheck(ctx, []any{"ab", "cd"}); err != nil {
		t.Fatalf("expected ok, err=%v", err)
	}
	err := s.RuleCheck(ctx, []any{"ab", "x"})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/1" || iss[0].Code != skematic.CodeTooShort {
		t.Fatalf("expected too_short at /1, got %v", err)
	}
}
