package compare_test

import (
	"context"
	"encoding/json"
	"testing"

	skematic "github.com/kharioki/skematic"
	d "github.com/kharioki/skematic/dsl"

	sonic "github.com/bytedance/sonic"
	jsoniter "github.com/json-iterator/go"
)

// typed struct target shared by all contenders
type cmpUser struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func typedUserSchema(tb testing.TB) skematic.Schema[cmpUser] {
	tb.Helper()
	s, err := d.Bind[cmpUser](d.Object().
		Field("name", d.String()).
		Field("active", d.Bool()).Optional().
		UnknownStrict())
	if err != nil {
		tb.Fatalf("bind schema: %v", err)
	}
	return s
}

func typedUserJSON() []byte { return []byte(`{"name":"Alice","active":true}`) }

func Benchmark_Typed_skematic_User_Small(b *testing.B) {
	ctx := context.Background()
	s := typedUserSchema(b)
	data := typedUserJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := skematic.ParseFrom(ctx, s, skematic.JSONBytes(data)); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Typed_stdlib_User_Small(b *testing.B) {
	data := typedUserJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var u cmpUser
		if err := json.Unmarshal(data, &u); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Typed_sonic_User_Small(b *testing.B) {
	data := typedUserJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var u cmpUser
		if err := sonic.Unmarshal(data, &u); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Typed_jsoniter_User_Small(b *testing.B) {
	data := typedUserJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	var ji = jsoniter.ConfigCompatibleWithStandardLibrary
	for i := 0; i < b.N; i++ {
		var u cmpUser
		if err := ji.Unmarshal(data, &u); err != nil {
			b.Fatal(err)
		}
	}
}
