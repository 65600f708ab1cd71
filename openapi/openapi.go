// Package openapi compiles OpenAPI v3 / JSON Schema documents into skematic
// schemas at runtime. It covers the structural subset most API schemas live
// in: type, properties, required, additionalProperties, items, enum, format,
// length and range bounds, nullable, default, and local $ref. Anything
// outside that subset degrades to a permissive schema and is reported
// through Diag rather than failing the import.
package openapi

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/dsl"
)

// Import compiles a schema document into a skematic schema. The input can be
// a decoded map[string]any, raw JSON bytes, or any value that marshals to a
// JSON object. The root is compiled as an object schema.
func Import(schema any, opts Options) (skematic.Schema[map[string]any], Diag, error) {
	d := &simpleDiag{}
	if schema == nil {
		return nil, d, errors.New("openapi: nil schema")
	}
	var root map[string]any
	switch t := schema.(type) {
	case []byte:
		if err := json.Unmarshal(t, &root); err != nil {
			return nil, d, fmt.Errorf("openapi: invalid JSON: %w", err)
		}
	case map[string]any:
		root = t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, d, fmt.Errorf("openapi: cannot marshal input: %w", err)
		}
		if err := json.Unmarshal(b, &root); err != nil {
			return nil, d, fmt.Errorf("openapi: invalid marshaled JSON: %w", err)
		}
	}

	defs := collectDefs(root)
	resolveRefsInPlace(root, defs, d, make(map[string]bool))

	s, err := importObject(root, opts, d)
	return s, d, err
}

// ImportSchema compiles a decoded schema map with default options, dropping
// the diagnostics. Convenience wrapper over Import.
func ImportSchema(m map[string]any) (skematic.Schema[map[string]any], error) {
	s, _, err := Import(m, Options{})
	return s, err
}

// ImportComponent extracts components.schemas[name] from a full OpenAPI
// document and compiles it. $refs inside the component resolve against the
// document's other components.
func ImportComponent(doc map[string]any, name string, opts Options) (skematic.Schema[map[string]any], Diag, error) {
	d := &simpleDiag{}
	node := lookupComponent(doc, name)
	if node == nil {
		return nil, d, fmt.Errorf("openapi: components.schemas[%q] not found", name)
	}
	defs := collectDefs(doc)
	resolveRefsInPlace(node, defs, d, map[string]bool{name: true})

	s, err := importObject(node, opts, d)
	return s, d, err
}

func lookupComponent(doc map[string]any, name string) map[string]any {
	comp, _ := doc["components"].(map[string]any)
	schemas, _ := comp["schemas"].(map[string]any)
	node, _ := schemas[name].(map[string]any)
	return node
}

// importObject compiles an object-typed schema node into a built schema.
func importObject(node map[string]any, opts Options, d *simpleDiag) (skematic.Schema[map[string]any], error) {
	if t, _ := node["type"].(string); t != "object" && t != "" {
		d.warnf("non-object root treated as object: type=%q", t)
	}

	b := dsl.Object()

	req := requiredSet(node)
	pm, _ := node["properties"].(map[string]any)
	for _, name := range sortedNames(pm) {
		ps, _ := pm[name].(map[string]any)
		if ps == nil {
			d.warnf("property %q has a non-object schema, skipped", name)
			continue
		}
		ad := adapterFor(ps, opts, d)
		switch {
		case req[name]:
			if _, hasDef := ps["default"]; hasDef {
				d.warnf("default on required property %q ignored", name)
			}
		case opts.Defaults == DefaultApply && hasDefault(ps):
			ad = ad.Default(ps["default"])
		default:
			ad = ad.Optional()
		}
		b.Field(name, ad)
	}

	switch planUnknown(node, opts, d) {
	case UnknownStrict:
		b.UnknownStrict()
	case UnknownPreserve:
		b.UnknownPassthrough("")
	default:
		b.UnknownStrip()
	}

	return b.Build()
}

// sortedNames returns the declared property names in sorted order. The
// decoded document is a Go map, so source order is gone; sorting keeps field
// order, error order, and exported JSON Schema stable across runs.
func sortedNames(pm map[string]any) []string {
	if len(pm) == 0 {
		return nil
	}
	names := make([]string, 0, len(pm))
	for name := range pm {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func requiredSet(node map[string]any) map[string]bool {
	req, ok := node["required"].([]any)
	if !ok {
		return nil
	}
	set := make(map[string]bool, len(req))
	for _, r := range req {
		if s, ok := r.(string); ok {
			set[s] = true
		}
	}
	return set
}

func hasDefault(ps map[string]any) bool {
	_, ok := ps["default"]
	return ok
}

// planUnknown maps additionalProperties onto an unknown-key policy. An
// explicit bool wins; a schema-valued additionalProperties next to declared
// properties passes unknowns through unvalidated; otherwise Options.Unknown
// decides.
func planUnknown(node map[string]any, opts Options, d *simpleDiag) UnknownBehavior {
	switch ap := node["additionalProperties"].(type) {
	case bool:
		if ap {
			return UnknownPreserve
		}
		return UnknownStrict
	case map[string]any:
		if pm, ok := node["properties"].(map[string]any); ok && len(pm) > 0 {
			d.warnf("additionalProperties schema next to properties is passed through unvalidated")
			return UnknownPreserve
		}
	}
	return opts.Unknown
}
