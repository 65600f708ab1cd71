package skematic_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	skematic "github.com/kharioki/skematic"
	g "github.com/kharioki/skematic/dsl"
)

func TestParseFrom_YAML_ObjectEndToEnd(t *testing.T) {
	ctx := context.Background()
	s, err := g.Object().
		Field("host", g.String()).
		Field("port", g.Number().Int()).
		Field("debug", g.Bool()).
		Field("tags", g.Array(g.String())).
		UnknownStrip().
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	doc := []byte("host: localhost\nport: 8080\ndebug: true\ntags:\n  - db\n  - cache\n")
	v, err := skematic.ParseFrom(ctx, s, skematic.YAMLBytes(doc))
	if err != nil {
		t.Fatalf("ParseFrom yaml: %v", err)
	}
	if v["host"] != "localhost" {
		t.Fatalf("host: got %#v", v["host"])
	}
	if v["port"] != json.Number("8080") {
		t.Fatalf("port: got %#v, want json.Number(8080)", v["port"])
	}
	if v["debug"] != true {
		t.Fatalf("debug: got %#v", v["debug"])
	}
	if want := []any{"db", "cache"}; !reflect.DeepEqual(v["tags"], want) {
		t.Fatalf("tags: got %#v, want %#v", v["tags"], want)
	}
}

// Scalar tags decide token kinds, so a quoted "123" stays a string while the
// bare form becomes a number, and non-decimal int forms normalize.
func TestParseFrom_YAML_ScalarTagMapping(t *testing.T) {
	ctx := context.Background()
	s := g.MapAny()

	doc := []byte("quoted: \"123\"\nbare: 123\nfrac: 1.5\nhex: 0x10\nneg: -7\nflag: true\nnote: null\n")
	v, err := skematic.ParseFrom(ctx, s, skematic.YAMLBytes(doc))
	if err != nil {
		t.Fatalf("ParseFrom yaml: %v", err)
	}
	if v["quoted"] != "123" {
		t.Fatalf("quoted: got %#v, want string", v["quoted"])
	}
	if v["bare"] != json.Number("123") {
		t.Fatalf("bare: got %#v", v["bare"])
	}
	if v["frac"] != json.Number("1.5") {
		t.Fatalf("frac: got %#v", v["frac"])
	}
	if v["hex"] != json.Number("16") {
		t.Fatalf("hex: got %#v, want normalized decimal", v["hex"])
	}
	if v["neg"] != json.Number("-7") {
		t.Fatalf("neg: got %#v", v["neg"])
	}
	if v["flag"] != true {
		t.Fatalf("flag: got %#v", v["flag"])
	}
	if nv, ok := v["note"]; !ok || nv != nil {
		t.Fatalf("note: got %#v, want nil", v["note"])
	}
}

func TestParseFrom_YAML_AliasResolved(t *testing.T) {
	ctx := context.Background()
	s := g.MapAny()

	doc := []byte("origin: &o https://example.com\nmirror: *o\n")
	v, err := skematic.ParseFrom(ctx, s, skematic.YAMLBytes(doc))
	if err != nil {
		t.Fatalf("ParseFrom yaml: %v", err)
	}
	if v["origin"] != "https://example.com" || v["mirror"] != "https://example.com" {
		t.Fatalf("alias not resolved: %#v", v)
	}
}

// Duplicate mapping keys travel through the same enforcement layer as JSON.
func TestParseFrom_YAML_DuplicateKey_Error(t *testing.T) {
	ctx := context.Background()
	s := g.MapAny()
	opt := skematic.ParseOpt{Strictness: skematic.Strictness{OnDuplicateKey: skematic.Error}}

	_, err := skematic.ParseFrom(ctx, s, skematic.YAMLBytes([]byte("a: 1\na: 2\n")), opt)
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

func TestParseFrom_YAML_MultiDocument_FirstOnly(t *testing.T) {
	ctx := context.Background()
	s := g.MapAny()

	doc := []byte("a: 1\n---\nb: 2\n")
	v, err := skematic.ParseFrom(ctx, s, skematic.YAMLBytes(doc))
	if err != nil {
		t.Fatalf("ParseFrom yaml: %v", err)
	}
	if v["a"] != json.Number("1") {
		t.Fatalf("first document missing: %#v", v)
	}
	if _, ok := v["b"]; ok {
		t.Fatalf("second document should not leak into the first: %#v", v)
	}
}

func TestParseFrom_YAML_Reader_NumberFloat64(t *testing.T) {
	ctx := context.Background()
	s := g.MapAny()

	src := skematic.WithNumberMode(skematic.YAMLReader(strings.NewReader("a: 1\nb: 2.5\n")), skematic.NumberFloat64)
	v, err := skematic.ParseFrom(ctx, s, src)
	if err != nil {
		t.Fatalf("ParseFrom yaml: %v", err)
	}
	if v["a"] != float64(1) {
		t.Fatalf("a: got %#v, want float64", v["a"])
	}
	if v["b"] != float64(2.5) {
		t.Fatalf("b: got %#v, want float64", v["b"])
	}
}

func TestParseFrom_YAML_Malformed_ParseError(t *testing.T) {
	ctx := context.Background()
	s := g.MapAny()

	_, err := skematic.ParseFrom(ctx, s, skematic.YAMLBytes([]byte("a: [1, 2\n")))
	iss, ok := skematic.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected Issues error, got: %v", err)
	}
	if iss[0].Code != skematic.CodeParseError {
		t.Fatalf("expected parse_error, got: %v", iss)
	}
	if !strings.Contains(iss[0].Message, "yaml") {
		t.Fatalf("message should carry the yaml cause: %q", iss[0].Message)
	}
}

func TestParseFrom_YAML_EmptyDocument(t *testing.T) {
	ctx := context.Background()
	s := g.MapAny()

	_, err := skematic.ParseFrom(ctx, s, skematic.YAMLBytes(nil))
	iss, ok := skematic.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected Issues error, got: %v", err)
	}
	if iss[0].Code != skematic.CodeInvalidType {
		t.Fatalf("empty document decodes to null, want invalid_type: %v", iss)
	}
}
