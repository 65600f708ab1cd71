package dsl

import (
	"strconv"

	skematic "github.com/kharioki/skematic"
)

// markPresenceSubtree records presence bits for a value subtree under the
// given base JSON Pointer. The base is marked seen, nulls get WasNull, and
// maps and arrays are descended with escaped keys appended.
func markPresenceSubtree(pm skematic.PresenceMap, base string, v any) {
	if pm == nil {
		return
	}
	if base != "" {
		pm[base] |= skematic.PresenceSeen
	}
	switch t := v.(type) {
	case nil:
		if base != "" {
			pm[base] |= skematic.PresenceWasNull
		}
	case map[string]any:
		for k, val := range t {
			markPresenceSubtree(pm, base+"/"+escapeKey(k), val)
		}
	case []any:
		for i, val := range t {
			markPresenceSubtree(pm, base+"/"+strconv.Itoa(i), val)
		}
	default:
		// primitives: nothing further
	}
}
