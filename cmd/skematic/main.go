package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/openapi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "validate":
		validateCmd(os.Args[2:])
	case "export":
		exportCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "skematic CLI\n\nUsage:\n  skematic validate -schema api.yaml [-component Name] [-input doc.json|-] [flags]\n  skematic export -schema api.yaml [-component Name]\n\nNotes:\n  - Schemas are OpenAPI / JSON Schema documents (YAML or JSON).\n  - export prints the JSON Schema derived from the imported document.")
}

// validateCmd imports a schema document and validates one input against it.
// Issues print one per line as path<TAB>code<TAB>message; exit code 1 marks a
// failed validation, 2 a usage error.
func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var schemaPath string
	var component string
	var input string
	var asYAML bool
	var strictUnknown bool
	var failFast bool
	var dupPolicy string
	var maxBytes int64
	var maxDepth int
	fs.StringVar(&schemaPath, "schema", "", "OpenAPI / JSON Schema document (YAML or JSON)")
	fs.StringVar(&component, "component", "", "components/schemas entry to compile instead of the document root")
	fs.StringVar(&input, "input", "-", "document to validate, - for stdin")
	fs.BoolVar(&asYAML, "yaml", false, "treat the input document as YAML")
	fs.BoolVar(&strictUnknown, "strict-unknown", false, "reject undeclared properties when the schema does not pin additionalProperties")
	fs.StringVar(&dupPolicy, "dup", "error", "duplicate key policy: ignore, warn or error")
	fs.BoolVar(&failFast, "fail-fast", false, "stop at the first issue")
	fs.Int64Var(&maxBytes, "max-bytes", 0, "reject inputs larger than this many bytes (0 disables)")
	fs.IntVar(&maxDepth, "max-depth", 0, "reject inputs nested deeper than this (0 disables)")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	s := importSchema(schemaPath, component, strictUnknown)

	data, err := readInput(input)
	if err != nil {
		fatalf("reading input: %v", err)
	}
	var src skematic.Source
	if asYAML {
		src = skematic.YAMLBytes(data)
	} else {
		src = skematic.JSONBytes(data)
	}

	opt := skematic.ParseOpt{
		Strictness: skematic.Strictness{OnDuplicateKey: severityFor(dupPolicy)},
		FailFast:   failFast,
		MaxBytes:   maxBytes,
		MaxDepth:   maxDepth,
	}

	if _, err := skematic.ParseFrom(context.Background(), s, src, opt); err != nil {
		reportIssues(err)
		os.Exit(1)
	}
	fmt.Println("ok")
}

// exportCmd imports a schema document and prints the derived JSON Schema.
func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var schemaPath string
	var component string
	var strictUnknown bool
	fs.StringVar(&schemaPath, "schema", "", "OpenAPI / JSON Schema document (YAML or JSON)")
	fs.StringVar(&component, "component", "", "components/schemas entry to compile instead of the document root")
	fs.BoolVar(&strictUnknown, "strict-unknown", false, "reject undeclared properties when the schema does not pin additionalProperties")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	s := importSchema(schemaPath, component, strictUnknown)
	js, err := s.JSONSchema()
	if err != nil {
		fatalf("deriving JSON Schema: %v", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(js); err != nil {
		fatalf("encoding JSON Schema: %v", err)
	}
}

// importSchema reads and compiles the schema document. YAML is a superset of
// JSON here, so .json schema files import through the same path.
func importSchema(path, component string, strictUnknown bool) skematic.Schema[map[string]any] {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading schema: %v", err)
	}
	var opts openapi.Options
	if strictUnknown {
		opts.Unknown = openapi.UnknownStrict
	}
	var s skematic.Schema[map[string]any]
	var diag openapi.Diag
	if component != "" {
		s, diag, err = openapi.ImportComponentYAML(data, component, opts)
	} else {
		s, diag, err = openapi.ImportYAML(data, opts)
	}
	if err != nil {
		fatalf("importing schema: %v", err)
	}
	if diag != nil && diag.HasWarnings() {
		for _, w := range diag.Warnings() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
	}
	return s
}

func readInput(input string) ([]byte, error) {
	if input == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(input)
}

func severityFor(policy string) skematic.Severity {
	switch policy {
	case "ignore":
		return skematic.Ignore
	case "warn":
		return skematic.Warn
	case "error":
		return skematic.Error
	default:
		fatalf("unknown duplicate key policy %q (want ignore, warn or error)", policy)
		return skematic.Ignore
	}
}

func reportIssues(err error) {
	if iss, ok := skematic.AsIssues(err); ok {
		for _, is := range iss {
			fmt.Fprintf(os.Stderr, "%s\t%s\t%s\n", is.Path, is.Code, is.Message)
		}
		fmt.Fprintf(os.Stderr, "%d issue(s)\n", len(iss))
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
