package skematic_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	skematic "github.com/kharioki/skematic"
	g "github.com/kharioki/skematic/dsl"
)

// Same document through both source drivers. YAML pays for the yaml.v3
// decode plus token re-emission, JSON tokenizes directly off goccy.

func sourcesSmallJSON() []byte {
	return []byte(`{"id":"u_1","name":"alice","age":30,"active":true}`)
}

func sourcesSmallYAML() []byte {
	return []byte("id: u_1\nname: alice\nage: 30\nactive: true\n")
}

func generateMediumYAML(items int) []byte {
	var buf bytes.Buffer
	buf.WriteString("items:\n")
	for i := 0; i < items; i++ {
		fmt.Fprintf(&buf, "  - id: obj_%d\n    name: n%d\n    age: %d\n", i, i, i)
	}
	return buf.Bytes()
}

func generateMediumJSON(items int) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"items":[`)
	for i := 0; i < items; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"id":"obj_%d","name":"n%d","age":%d}`, i, i, i)
	}
	buf.WriteString("]}")
	return buf.Bytes()
}

const sourcesMediumN = 1000

func Benchmark_Source_JSONBytes_Small(b *testing.B) {
	ctx := context.Background()
	s := smallUserSchemaStrip(b)
	data := sourcesSmallJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := skematic.ParseFrom(ctx, s, skematic.JSONBytes(data)); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Source_YAMLBytes_Small(b *testing.B) {
	ctx := context.Background()
	s := smallUserSchemaStrip(b)
	data := sourcesSmallYAML()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := skematic.ParseFrom(ctx, s, skematic.YAMLBytes(data)); err != nil {
			b.Fatal(err)
		}
	}
}

// mediumListSchema matches the medium fixture: {"items":[{...}, ...]}.
func mediumListSchema(tb testing.TB) skematic.Schema[map[string]any] {
	tb.Helper()
	item, err := g.Object().
		Field("id", g.String()).
		Field("name", g.String()).Optional().
		Field("age", g.Number()).Optional().
		UnknownStrip().
		Build()
	if err != nil {
		tb.Fatalf("schema build failed: %v", err)
	}
	s, err := g.Object().
		Field("items", g.Array(g.SchemaOf[map[string]any](item))).
		UnknownStrict().
		Build()
	if err != nil {
		tb.Fatalf("schema build failed: %v", err)
	}
	return s
}

func Benchmark_Source_JSONReader_Medium(b *testing.B) {
	ctx := context.Background()
	s := mediumListSchema(b)
	data := generateMediumJSON(sourcesMediumN)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := bytes.NewReader(data)
		if _, err := skematic.ParseFrom(ctx, s, skematic.JSONReader(r)); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Source_YAMLReader_Medium(b *testing.B) {
	ctx := context.Background()
	s := mediumListSchema(b)
	data := generateMediumYAML(sourcesMediumN)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := bytes.NewReader(data)
		if _, err := skematic.ParseFrom(ctx, s, skematic.YAMLReader(r)); err != nil {
			b.Fatal(err)
		}
	}
}
