// Package rules provides ready-made cross-field refinements for object
// schemas. Each helper returns a closure matching the builder's Refine hook,
// so usage reads:
//
//	d.Object().
//	    Field("email", d.String()).Optional().
//	    Field("phone", d.String()).Optional().
//	    Refine("contact", rules.AtLeastOne("email", "phone")).
//	    MustBuild()
//
// The closures run on the parsed map, after unknown-key handling and default
// substitution, so defaulted fields count as present.
package rules

import (
	"context"
	"fmt"
	"strings"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/i18n"
)

// CheckFn is the shape accepted by the object builder's Refine hook.
type CheckFn func(ctx context.Context, m map[string]any) error

// ref builds issue paths. Rules run without presence context; only the
// pointer-building half of Ref is used.
var ref = skematic.NewRef(nil)

// present reports whether a key holds a usable value. Explicit nulls do not
// count: a caller sending "email": null has not supplied an email.
func present(m map[string]any, key string) bool {
	v, ok := m[key]
	return ok && v != nil
}

func keyList(keys []string) string { return strings.Join(keys, ", ") }

// AtLeastOne requires that at least one of the listed keys is present.
func AtLeastOne(keys ...string) CheckFn {
	return func(ctx context.Context, m map[string]any) error {
		for _, k := range keys {
			if present(m, k) {
				return nil
			}
		}
		return skematic.Issues{skematic.IssueAt(ref.Root(), skematic.CodeRequired,
			"at least one of "+keyList(keys)+" is required",
			map[string]any{"keys": keys})}
	}
}

// MutuallyExclusive requires that at most one of the listed keys is present.
func MutuallyExclusive(keys ...string) CheckFn {
	return func(ctx context.Context, m map[string]any) error {
		var found []string
		for _, k := range keys {
			if present(m, k) {
				found = append(found, k)
			}
		}
		if len(found) <= 1 {
			return nil
		}
		return skematic.Issues{skematic.IssueAt(ref.Root(), skematic.CodeCustom,
			"only one of "+keyList(keys)+" may be present",
			map[string]any{"keys": keys, "found": found})}
	}
}

// Requires demands that when key is present, every dep is present too.
func Requires(key string, deps ...string) CheckFn {
	return func(ctx context.Context, m map[string]any) error {
		if !present(m, key) {
			return nil
		}
		var iss skematic.Issues
		for _, dep := range deps {
			if present(m, dep) {
				continue
			}
			iss = skematic.AppendIssues(iss, skematic.IssueAt(ref.Root().Field(dep),
				skematic.CodeRequired,
				"required when "+key+" is present",
				map[string]any{"if": key}))
		}
		if len(iss) > 0 {
			return iss
		}
		return nil
	}
}

// NonEmpty requires the array under key to hold at least one element. Absent
// keys and non-arrays are left to the field schema.
func NonEmpty(key string) CheckFn {
	return func(ctx context.Context, m map[string]any) error {
		v, ok := m[key]
		if !ok {
			return nil
		}
		arr, ok := v.([]any)
		if !ok || len(arr) > 0 {
			return nil
		}
		return skematic.Issues{skematic.IssueAt(ref.Root().Field(key),
			skematic.CodeTooShort,
			i18n.T(skematic.CodeTooShort, map[string]string{"min": "1", "kind": "array"}),
			map[string]any{"min": 1, "kind": "array"})}
	}
}

// UniqueBy requires elements of the array under arrayKey to be unique by
// elemKey. With an empty elemKey the whole element is the key. Keys are
// compared by their printed form, so prefer a single, stable key type.
func UniqueBy(arrayKey, elemKey string) CheckFn {
	return func(ctx context.Context, m map[string]any) error {
		v, ok := m[arrayKey]
		if !ok {
			return nil
		}
		arr, ok := v.([]any)
		if !ok {
			return nil
		}
		seen := map[string]int{}
		var iss skematic.Issues
		for i, el := range arr {
			kv := el
			if elemKey != "" {
				em, ok := el.(map[string]any)
				if !ok {
					continue
				}
				if kv, ok = em[elemKey]; !ok {
					continue
				}
			}
			key := fmt.Sprint(kv)
			if j, dup := seen[key]; dup {
				p := ref.Root().Field(arrayKey).Index(i)
				if elemKey != "" {
					p = p.Field(elemKey)
				}
				iss = skematic.AppendIssues(iss, skematic.IssueAt(p,
					skematic.CodeUniqueness,
					i18n.T(skematic.CodeUniqueness, nil),
					map[string]any{"first": j, "dup": i, "key": key}))
			} else {
				seen[key] = i
			}
		}
		if len(iss) > 0 {
			return iss
		}
		return nil
	}
}

// All combines checks, runs every one, and reports their issues together.
func All(checks ...CheckFn) CheckFn {
	return func(ctx context.Context, m map[string]any) error {
		var iss skematic.Issues
		for _, c := range checks {
			if c == nil {
				continue
			}
			if err := c(ctx, m); err != nil {
				if sub, ok := skematic.AsIssues(err); ok {
					iss = skematic.AppendIssues(iss, sub...)
				} else {
					iss = skematic.AppendIssues(iss, skematic.Issue{
						Path: "/", Code: skematic.CodeCustom, Message: err.Error(), Cause: err,
					})
				}
				if skematic.IsFailFast(ctx) {
					return iss
				}
			}
		}
		if len(iss) > 0 {
			return iss
		}
		return nil
	}
}
