// Package dsl provides the schema-building DSL for skematic.
//
// Overview
//   - Builder API: declare object semantics (required/optional/default/unknown/refine) with Object()/Field(...)/MustBuild().
//   - Typed build: project wire objects onto structs with Bind[T]/MustBind.
//   - Primitives: String()/Bool()/Number() with chainable constraints (Min/Max/Email/URL/UUID/Pattern/Int).
//   - Composites: Array(elem) with Min/Max, Map(elem)/MapAny(), Enum(values...).
//   - Derivation: Transform(s, fn) maps accepted values, Refine(s, name, pred, msg) adds named predicates,
//     Extend/Merge derive object shapes from existing builders.
//   - AnyAdapter: adapt an existing Schema[T] via SchemaOf[T](s) to embed it into builders.
//   - Presence: missing/wasNull/defaultApplied per JSON Pointer via ParseFromWithMeta.
//
// Field semantics
//   - Fields are required unless marked Optional or given a Default.
//   - Defaults substitute verbatim when a key is absent; they are not re-validated,
//     so sentinel defaults outside the declared constraints are allowed.
//   - Unknown keys are stripped unless UnknownStrict (reject) or UnknownPassthrough (retain) is chosen.
//   - All failing constraints of a value are reported together; WithFailFast stops at the first.
//
// Example (quickstart)
//
//	package main
//
//	import (
//	    "context"
//
//	    skematic "github.com/kharioki/skematic"
//	    d "github.com/kharioki/skematic/dsl"
//	)
//
//	type User struct {
//	    ID    string `json:"id"`
//	    Email string `json:"email"`
//	}
//
//	func main() {
//	    ctx := context.Background()
//	    user := d.MustBind[User](d.Object().
//	        Field("id", d.String().Min(1)).
//	        Field("email", d.String().Email()).
//	        UnknownStrict())
//
//	    data := []byte(`{"id":"u_1","email":"x@example.com"}`)
//	    _, _ = skematic.ParseFrom(ctx, user, skematic.JSONBytes(data))
//	}
//
// Example (presence and preserving encode)
//
//	obj := d.Object().
//	    Field("name", d.String()).
//	    Field("active", d.Bool()).Default(true).
//	    MustBuild()
//	pm, _ := skematic.ParseFromWithMeta(ctx, obj, skematic.JSONBytes([]byte(`{"name":"alice"}`)))
//	out := skematic.EncodePreservingObject(pm) // default-only "active" is dropped
//	_ = out
//
// Example (cross-field refinement)
//
//	obj := d.Object().
//	    Field("email", d.String()).
//	    Field("confirm", d.String()).
//	    Refine("email==confirm", func(ctx context.Context, m map[string]any) error {
//	        if m["email"] != m["confirm"] {
//	            return fmt.Errorf("confirm must match email")
//	        }
//	        return nil
//	    }).
//	    MustBuild()
//	_, err := skematic.ParseFrom(ctx, obj, skematic.JSONBytes([]byte(`{"email":"a","confirm":"b"}`)))
//	_ = err // Issues with code "custom" and the rule name
//
// JSON Schema output
//
//	sch, _ := s.JSONSchema()
//	// UnknownStrict => additionalProperties=false,
//	// UnknownStrip/UnknownPassthrough => additionalProperties=true.
package dsl
