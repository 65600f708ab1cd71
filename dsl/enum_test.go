package dsl_test

import (
	"context"
	"encoding/json"
	"testing"

	skematic "github.com/kharioki/skematic"
	g "github.com/kharioki/skematic/dsl"
)

// TestEnum_StringMembers_WireType keeps membership checks inside the wire
// type: a JSON number whose digits spell a member is still a number, not a
// string, and a Go int never rune-converts into a member.
func TestEnum_StringMembers_WireType(t *testing.T) {
	ctx := context.Background()
	status := g.Enum("65", "404")

	if v, err := status.Parse(ctx, "404"); err != nil || v != "404" {
		t.Fatalf("member string expected ok, got v=%v err=%v", v, err)
	}

	_, err := status.Parse(ctx, json.Number("65"))
	iss, ok := skematic.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != skematic.CodeInvalidType {
		t.Fatalf("expected invalid_type for json.Number input, got %v", err)
	}
	if got, want := iss[0].Message, "Expected string, received number"; got != want {
		t.Fatalf("message mismatch: got %q want %q", got, want)
	}

	letter := g.Enum("A", "B")
	_, err = letter.Parse(ctx, 65)
	if iss, ok := skematic.AsIssues(err); !ok || len(iss) != 1 || iss[0].Code != skematic.CodeInvalidType {
		t.Fatalf("expected invalid_type for int input to string enum, got %v", err)
	}
}

// TestEnum_ParseValidateAgree reports the same code from Parse and Validate
// for a wire-type mismatch.
func TestEnum_ParseValidateAgree(t *testing.T) {
	ctx := context.Background()
	s := g.Enum("on", "off")

	_, perr := s.Parse(ctx, true)
	verr := s.Validate(ctx, true)
	pi, pok := skematic.AsIssues(perr)
	vi, vok := skematic.AsIssues(verr)
	if !pok || !vok || len(pi) != 1 || len(vi) != 1 {
		t.Fatalf("expected single issues, got parse=%v validate=%v", perr, verr)
	}
	if pi[0].Code != skematic.CodeInvalidType || vi[0].Code != pi[0].Code {
		t.Fatalf("codes differ: parse=%s validate=%s", pi[0].Code, vi[0].Code)
	}
}

// TestEnum_ObjectField_WireType runs the gate end to end through a JSON
// source: {"status": 65} decodes as a number and does not satisfy a string
// enum field.
func TestEnum_ObjectField_WireType(t *testing.T) {
	ctx := context.Background()
	s := g.Object().
		Field("status", g.Enum("65", "404")).
		UnknownStrict().
		MustBuild()

	v, err := skematic.ParseFrom(ctx, s, skematic.JSONBytes([]byte(`{"status": "65"}`)))
	if err != nil || v["status"] != "65" {
		t.Fatalf("member string expected ok, got v=%v err=%v", v, err)
	}

	_, err = skematic.ParseFrom(ctx, s, skematic.JSONBytes([]byte(`{"status": 65}`)))
	iss, ok := skematic.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected a single issue, got %v", err)
	}
	if iss[0].Code != skematic.CodeInvalidType || iss[0].Path != "/status" {
		t.Fatalf("expected invalid_type at /status, got code=%s path=%s", iss[0].Code, iss[0].Path)
	}
}

// TestEnum_NumericMembers matches JSON numbers against numeric members by
// value and keeps strings out.
func TestEnum_NumericMembers(t *testing.T) {
	ctx := context.Background()
	s := g.Enum(1, 2, 3)

	v, err := s.Parse(ctx, json.Number("2"))
	if err != nil || v != 2 {
		t.Fatalf("json.Number(%q) expected 2, got v=%v err=%v", "2", v, err)
	}

	_, err = s.Parse(ctx, json.Number("2.5"))
	if iss, ok := skematic.AsIssues(err); !ok || len(iss) != 1 || iss[0].Code != skematic.CodeInvalidEnum {
		t.Fatalf("expected invalid_enum for non-member number, got %v", err)
	}

	_, err = s.Parse(ctx, "2")
	iss, ok := skematic.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != skematic.CodeInvalidType {
		t.Fatalf("expected invalid_type for string input, got %v", err)
	}
	if got, want := iss[0].Message, "Expected number, received string"; got != want {
		t.Fatalf("message mismatch: got %q want %q", got, want)
	}
}

// TestEnum_NamedMembers bridges plain wire strings into a named member type;
// membership and the wire-type gate still apply.
func TestEnum_NamedMembers(t *testing.T) {
	type visibility string
	ctx := context.Background()
	s := g.Enum(visibility("private"), visibility("public"))

	v, err := s.Parse(ctx, "public")
	if err != nil || v != visibility("public") {
		t.Fatalf("wire string expected to bridge, got v=%v err=%v", v, err)
	}
	if _, err := s.Parse(ctx, "internal"); err == nil {
		t.Fatalf("expected invalid_enum for non-member")
	}
	_, err = s.Parse(ctx, json.Number("1"))
	if iss, ok := skematic.AsIssues(err); !ok || len(iss) != 1 || iss[0].Code != skematic.CodeInvalidType {
		t.Fatalf("expected invalid_type for number input, got %v", err)
	}
}
