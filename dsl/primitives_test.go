package dsl_test

import (
	"context"
	"encoding/json"
	"testing"

	skematic "github.com/kharioki/skematic"
	g "github.com/kharioki/skematic/dsl"
)

func TestStringSchema_Basic(t *testing.T) {
	s := g.String()
	ctx := context.Background()

	// ok
	v, err := s.Parse(ctx, "hello")
	if err != nil || v != "hello" {
		t.Fatalf("parse ok expected, got v=%v err=%v", v, err)
	}

	// invalid type
	_, err = s.Parse(ctx, 1)
	if err == nil {
		t.Fatalf("expected error for invalid type")
	}
	iss, ok := skematic.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues error, got %v", err)
	}
	if len(iss) != 1 || iss[0].Code != skematic.CodeInvalidType {
		t.Fatalf("expected invalid_type, got %v", iss)
	}
	if iss[0].Message != "Expected string, received number" {
		t.Fatalf("unexpected message: %q", iss[0].Message)
	}

	// WithMeta presence
	dv, err := s.ParseWithMeta(ctx, "x")
	if err != nil {
		t.Fatalf("parse with meta err: %v", err)
	}
	if dv.Presence["/"]&skematic.PresenceSeen == 0 {
		t.Fatalf("expected PresenceSeen at root")
	}
}

// TestStringSchema_RulesAccumulate proves every declared constraint is
// checked and reported together, in declaration order.
func TestStringSchema_RulesAccumulate(t *testing.T) {
	ctx := context.Background()
	s := g.String().Min(5).Email()

	_, err := s.Parse(ctx, "a@b")
	iss, ok := skematic.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	if len(iss) != 2 {
		t.Fatalf("expected 2 issues, got %d: %v", len(iss), iss)
	}
	if iss[0].Code != skematic.CodeTooShort || iss[1].Code != skematic.CodeInvalidFormat {
		t.Fatalf("unexpected codes: %v", iss)
	}
	if iss[0].Message != "String must contain at least 5 character(s)" {
		t.Fatalf("unexpected too_short message: %q", iss[0].Message)
	}
	if iss[1].Message != "Invalid email" {
		t.Fatalf("unexpected format message: %q", iss[1].Message)
	}

	// fail-fast shortens to the first violation
	_, err = s.Parse(skematic.WithFailFast(ctx, true), "a@b")
	if iss, _ := skematic.AsIssues(err); len(iss) != 1 {
		t.Fatalf("fail-fast expected 1 issue, got %v", iss)
	}
}

func TestStringSchema_MaxAndFormats(t *testing.T) {
	ctx := context.Background()

	_, err := g.String().Max(3).Parse(ctx, "abcd")
	if iss, _ := skematic.AsIssues(err); len(iss) != 1 || iss[0].Message != "String must contain at most 3 character(s)" {
		t.Fatalf("unexpected max violation: %v", iss)
	}

	if _, err := g.String().URL().Parse(ctx, "https://example.com/x"); err != nil {
		t.Fatalf("url expected ok, err=%v", err)
	}
	_, err = g.String().URL().Parse(ctx, "example.com")
	if iss, _ := skematic.AsIssues(err); len(iss) != 1 || iss[0].Message != "Invalid url" {
		t.Fatalf("unexpected url violation: %v", iss)
	}

	if _, err := g.String().UUID().Parse(ctx, "2f1c3a54-9c1e-4f60-8d1a-3f6f2b9b7c11"); err != nil {
		t.Fatalf("uuid expected ok, err=%v", err)
	}
	_, err = g.String().UUID().Parse(ctx, "not-a-uuid")
	if iss, _ := skematic.AsIssues(err); len(iss) != 1 || iss[0].Message != "Invalid uuid" {
		t.Fatalf("unexpected uuid violation: %v", iss)
	}

	if _, err := g.String().Pattern(`^[a-z]+$`).Parse(ctx, "abc"); err != nil {
		t.Fatalf("pattern expected ok, err=%v", err)
	}
	_, err = g.String().Pattern(`^[a-z]+$`).Parse(ctx, "ABC")
	if iss, _ := skematic.AsIssues(err); len(iss) != 1 || iss[0].Code != skematic.CodeInvalidFormat {
		t.Fatalf("unexpected pattern violation: %v", iss)
	}
}

// Min counts runes, not bytes.
func TestStringSchema_MinCountsRunes(t *testing.T) {
	ctx := context.Background()
	if _, err := g.String().Min(2).Parse(ctx, "日本"); err != nil {
		t.Fatalf("two runes should satisfy Min(2), err=%v", err)
	}
	if _, err := g.String().Max(2).Parse(ctx, "日本語"); err == nil {
		t.Fatalf("three runes should violate Max(2)")
	}
}

func TestBoolSchema_Basic(t *testing.T) {
	s := g.Bool()
	ctx := context.Background()

	v, err := s.Parse(ctx, true)
	if err != nil || v != true {
		t.Fatalf("parse ok expected, got v=%v err=%v", v, err)
	}
	_, err = s.Parse(ctx, "nope")
	if iss, _ := skematic.AsIssues(err); len(iss) != 1 || iss[0].Message != "Expected boolean, received string" {
		t.Fatalf("unexpected bool violation: %v", iss)
	}
}

func TestNumberSchema_Basic(t *testing.T) {
	s := g.Number()
	ctx := context.Background()

	// json.Number input round-trips
	n := json.Number("123.45")
	v, err := s.Parse(ctx, n)
	if err != nil || v != n {
		t.Fatalf("expected roundtrip json.Number, got v=%v err=%v", v, err)
	}

	// Go numerics normalize to json.Number
	v2, err := s.Parse(ctx, float64(1.5))
	if err != nil || v2 != json.Number("1.5") {
		t.Fatalf("expected 1.5, got v=%v err=%v", v2, err)
	}
	v3, err := s.Parse(ctx, 42)
	if err != nil || v3 != json.Number("42") {
		t.Fatalf("expected 42, got v=%v err=%v", v3, err)
	}

	// textual input is rejected: no implicit coercion
	_, err = s.Parse(ctx, "123")
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeInvalidType {
		t.Fatalf("expected invalid_type for string input, got %v", iss)
	}
	if iss[0].Message != "Expected number, received string" {
		t.Fatalf("unexpected message: %q", iss[0].Message)
	}
}

func TestNumberSchema_Rules(t *testing.T) {
	ctx := context.Background()

	_, err := g.Number().Min(0).Parse(ctx, json.Number("-1"))
	if iss, _ := skematic.AsIssues(err); len(iss) != 1 || iss[0].Message != "Number must be greater than or equal to 0" {
		t.Fatalf("unexpected min violation: %v", iss)
	}

	_, err = g.Number().Max(10).Parse(ctx, json.Number("11"))
	if iss, _ := skematic.AsIssues(err); len(iss) != 1 || iss[0].Message != "Number must be less than or equal to 10" {
		t.Fatalf("unexpected max violation: %v", iss)
	}

	// Int rejects fractional values
	if _, err := g.Number().Int().Parse(ctx, json.Number("3")); err != nil {
		t.Fatalf("whole number expected ok, err=%v", err)
	}
	_, err = g.Number().Int().Parse(ctx, json.Number("3.5"))
	if iss, _ := skematic.AsIssues(err); len(iss) != 1 || iss[0].Message != "Expected integer, received float" {
		t.Fatalf("unexpected int violation: %v", iss)
	}

	// violations accumulate in declaration order
	_, err = g.Number().Min(0).Int().Parse(ctx, json.Number("-1.5"))
	if iss, _ := skematic.AsIssues(err); len(iss) != 2 ||
		iss[0].Code != skematic.CodeTooSmall || iss[1].Code != skematic.CodeInvalidType {
		t.Fatalf("expected [too_small invalid_type], got %v", err)
	}
}

// Builders are immutable: deriving a constrained schema must not mutate the base.
func TestBuilders_DeriveWithoutMutation(t *testing.T) {
	ctx := context.Background()

	base := g.String()
	_ = base.Min(100)
	if _, err := base.Parse(ctx, "x"); err != nil {
		t.Fatalf("base string builder was mutated by Min: %v", err)
	}

	nbase := g.Number()
	_ = nbase.Min(100)
	if _, err := nbase.Parse(ctx, json.Number("1")); err != nil {
		t.Fatalf("base number builder was mutated by Min: %v", err)
	}
}

func TestValidateSplit_TypeThenRules(t *testing.T) {
	ctx := context.Background()
	s := g.String().Min(3)

	// TypeCheck alone ignores rules
	if err := s.TypeCheck(ctx, "a"); err != nil {
		t.Fatalf("TypeCheck should pass for short string, err=%v", err)
	}
	// RuleCheck alone ignores type mismatches
	if err := s.RuleCheck(ctx, 1); err != nil {
		t.Fatalf("RuleCheck should not report type errors, err=%v", err)
	}
	// Validate composes both
	if err := s.Validate(ctx, 1); err == nil {
		t.Fatalf("Validate should fail on type")
	}
	if err := s.Validate(ctx, "a"); err == nil {
		t.Fatalf("Validate should fail on rules")
	}
	if err := s.Validate(ctx, "abc"); err != nil {
		t.Fatalf("Validate expected ok, err=%v", err)
	}
}
