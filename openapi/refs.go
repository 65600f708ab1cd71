package openapi

import "strings"

// collectDefs indexes local reference targets: $defs plus, for full OpenAPI
// documents, components.schemas. Both namespaces share one index since the
// supported $ref prefixes never collide in the key part.
func collectDefs(doc map[string]any) map[string]any {
	out := make(map[string]any)
	if m, ok := doc["$defs"].(map[string]any); ok {
		for k, v := range m {
			out[k] = v
		}
	}
	if comp, ok := doc["components"].(map[string]any); ok {
		if schemas, ok := comp["schemas"].(map[string]any); ok {
			for k, v := range schemas {
				out[k] = v
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// refKey extracts the defs index key from a supported local $ref.
func refKey(ref string) (string, bool) {
	for _, prefix := range []string{"#/$defs/", "#/components/schemas/"} {
		if strings.HasPrefix(ref, prefix) {
			return strings.TrimPrefix(ref, prefix), true
		}
	}
	return "", false
}

// resolveRefsInPlace expands local $refs under properties, items, and
// additionalProperties using the collected defs.
func resolveRefsInPlace(node map[string]any, defs map[string]any, d *simpleDiag, visited map[string]bool) {
	if node == nil || defs == nil {
		return
	}
	if pm, ok := node["properties"].(map[string]any); ok {
		for k, raw := range pm {
			if sch, ok := raw.(map[string]any); ok {
				pm[k] = resolveOne(sch, defs, d, visited)
			}
		}
	}
	if it, ok := node["items"].(map[string]any); ok {
		node["items"] = resolveOne(it, defs, d, visited)
	}
	if ap, ok := node["additionalProperties"].(map[string]any); ok {
		node["additionalProperties"] = resolveOne(ap, defs, d, visited)
	}
}

// resolveOne expands a single schema map with a local $ref, shallow-merging
// the target under any keys the referencing site already sets.
func resolveOne(s map[string]any, defs map[string]any, d *simpleDiag, visited map[string]bool) map[string]any {
	if s == nil {
		return nil
	}
	ref, ok := s["$ref"].(string)
	if !ok {
		resolveRefsInPlace(s, defs, d, visited)
		return s
	}
	key, ok := refKey(ref)
	if !ok {
		d.warnf("$ref %q not supported (local $defs and components.schemas only)", ref)
		return s
	}
	base, ok := defs[key].(map[string]any)
	if !ok {
		d.warnf("$ref to unknown schema %q", key)
		return s
	}
	if visited[key] {
		d.warnf("cyclic $ref at %q, expansion skipped", key)
		return s
	}
	visited[key] = true
	expanded := deepCopyMap(base)
	resolveRefsInPlace(expanded, defs, d, visited)
	delete(visited, key)
	delete(s, "$ref")
	for k, v := range expanded {
		if _, exists := s[k]; !exists {
			s[k] = v
		}
	}
	return s
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if mv, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(mv)
			continue
		}
		out[k] = v
	}
	return out
}
