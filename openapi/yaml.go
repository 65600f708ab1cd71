package openapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	skematic "github.com/kharioki/skematic"
)

// LoadYAML decodes a (possibly multi-document) YAML stream into JSON-shaped
// maps. Map keys are normalized to strings so the documents feed straight
// into Import; non-mapping documents are skipped.
func LoadYAML(data []byte) ([]map[string]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []map[string]any
	for {
		var node any
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("openapi: invalid YAML: %w", err)
		}
		if m := stringKeyedMap(node); m != nil {
			docs = append(docs, m)
		}
	}
	return docs, nil
}

// ImportYAML compiles the first YAML document as a schema. Convenience for
// single-document schema files.
func ImportYAML(data []byte, opts Options) (skematic.Schema[map[string]any], Diag, error) {
	docs, err := LoadYAML(data)
	if err != nil {
		return nil, &simpleDiag{}, err
	}
	if len(docs) == 0 {
		return nil, &simpleDiag{}, errors.New("openapi: no YAML document found")
	}
	return Import(docs[0], opts)
}

// ImportComponentYAML scans a YAML stream for a document declaring
// components.schemas[name] and compiles that component.
func ImportComponentYAML(data []byte, name string, opts Options) (skematic.Schema[map[string]any], Diag, error) {
	docs, err := LoadYAML(data)
	if err != nil {
		return nil, &simpleDiag{}, err
	}
	for _, doc := range docs {
		if lookupComponent(doc, name) != nil {
			return ImportComponent(doc, name, opts)
		}
	}
	return nil, &simpleDiag{}, fmt.Errorf("openapi: components.schemas[%q] not found in YAML stream", name)
}

// stringKeyedMap converts YAML-decoded values (which may contain map[any]any)
// into JSON-like map[string]any recursively. Non-map roots return nil.
func stringKeyedMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAMLValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeYAMLValue(vv)
		}
		return out
	default:
		return nil
	}
}

func normalizeYAMLValue(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return stringKeyedMap(t)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeYAMLValue(t[i])
		}
		return arr
	default:
		return v
	}
}
