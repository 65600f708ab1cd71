package dsl_test

import (
	"context"
	"reflect"
	"testing"

	skematic "github.com/kharioki/skematic"
	g "github.com/kharioki/skematic/dsl"
)

type account struct {
	ID      string   `skematic:"name=id"`
	Alias   string   `skematic:"name=nickname"`
	Email   string   `json:"email"`
	Age     int      `json:"age"`
	Score   float64  `json:"score"`
	Tags    []string `json:"tags"`
	Admin   bool     `json:"admin"`
	Ignored string   `json:"-"`
}

func accountSchema() skematic.Schema[account] {
	return g.MustBind[account](g.Object().
		Field("id", g.String()).
		Field("nickname", g.String()).Optional().
		Field("email", g.String().Email()).
		Field("age", g.Number().Int()).
		Field("score", g.Number()).
		Field("tags", g.Array(g.String())).Default([]any{}).
		Field("admin", g.Bool()).Default(false).
		UnknownStrip())
}

// Bind parses the wire shape first, then fills the struct via skematic and
// json tags, bridging json.Number to numeric kinds and []any to slices.
func TestBind_Struct(t *testing.T) {
	ctx := context.Background()
	s := accountSchema()

	v, err := s.Parse(ctx, map[string]any{
		"id":       "u_1",
		"nickname": "am",
		"email":    "amy@example.com",
		"age":      30,
		"score":    9.5,
		"tags":     []any{"ops", "oncall"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := account{
		ID:    "u_1",
		Alias: "am",
		Email: "amy@example.com",
		Age:   30,
		Score: 9.5,
		Tags:  []string{"ops", "oncall"},
		Admin: false,
	}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("bound struct mismatch\n got=%+v\nwant=%+v", v, want)
	}
}

// Validation failures surface before any struct is produced.
func TestBind_WireValidationFirst(t *testing.T) {
	ctx := context.Background()
	s := accountSchema()

	_, err := s.Parse(ctx, map[string]any{
		"id":    "u_1",
		"email": "nope",
		"age":   1.5,
		"score": 1,
	})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 2 {
		t.Fatalf("expected 2 issues, got %v", err)
	}
	if iss[0].Path != "/email" || iss[0].Code != skematic.CodeInvalidFormat {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
	if iss[1].Path != "/age" || iss[1].Code != skematic.CodeInvalidType {
		t.Fatalf("unexpected issue: %+v", iss[1])
	}
}

// Defaults land in the struct like any other value.
func TestBind_DefaultsApply(t *testing.T) {
	ctx := context.Background()
	s := accountSchema()

	v, err := s.Parse(ctx, map[string]any{
		"id":    "u_1",
		"email": "amy@example.com",
		"age":   30,
		"score": 1,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v.Tags == nil || len(v.Tags) != 0 {
		t.Fatalf("expected empty default slice, got %#v", v.Tags)
	}
	if v.Admin {
		t.Fatalf("expected default admin=false")
	}
}

// A shape the struct cannot hold is a type mismatch at that field.
func TestBind_FieldTypeMismatch(t *testing.T) {
	ctx := context.Background()
	type holder struct {
		Profile string `json:"profile"`
	}
	s := g.MustBind[holder](g.Object().
		Field("profile", g.SchemaOf[map[string]any](g.MapAny())).
		UnknownStrip())

	_, err := s.Parse(ctx, map[string]any{"profile": map[string]any{"a": 1}})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/profile" || iss[0].Code != skematic.CodeInvalidType {
		t.Fatalf("expected type mismatch at /profile, got %v", err)
	}
	if iss[0].Message != "field type mismatch" {
		t.Fatalf("unexpected message: %q", iss[0].Message)
	}
}

// Bind requires a struct type parameter.
func TestBind_NonStructRejected(t *testing.T) {
	_, err := g.Bind[string](g.Object().Field("a", g.String()).UnknownStrip())
	if err == nil {
		t.Fatalf("expected error for non-struct T")
	}
}

// ParseWithMeta keeps wire-shaped presence keys alongside the bound struct.
func TestBind_ParseWithMeta(t *testing.T) {
	ctx := context.Background()
	s := accountSchema()

	dv, err := s.ParseWithMeta(ctx, map[string]any{
		"id":    "u_1",
		"email": "amy@example.com",
		"age":   30,
		"score": 1,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if dv.Value.ID != "u_1" {
		t.Fatalf("unexpected value: %+v", dv.Value)
	}
	if dv.Presence["/id"]&skematic.PresenceSeen == 0 {
		t.Fatalf("expected /id seen, got %v", dv.Presence)
	}
	if dv.Presence["/tags"]&skematic.PresenceDefaultApplied == 0 {
		t.Fatalf("expected /tags default-applied, got %v", dv.Presence)
	}
}

// A bound value re-validates through ValidateValue using the wire rules.
func TestBind_ValidateValue(t *testing.T) {
	ctx := context.Background()
	s := accountSchema()

	ok := account{ID: "u_1", Email: "amy@example.com", Age: 30, Score: 1, Tags: []string{"ops"}}
	if err := s.ValidateValue(ctx, ok); err != nil {
		t.Fatalf("expected ok, err=%v", err)
	}

	bad := ok
	bad.Email = "nope"
	err := s.ValidateValue(ctx, bad)
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/email" || iss[0].Code != skematic.CodeInvalidFormat {
		t.Fatalf("expected invalid_format at /email, got %v", err)
	}
}
