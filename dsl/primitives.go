package dsl

import (
	"context"
	"errors"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/i18n"
	js "github.com/kharioki/skematic/jsonschema"
)

// Format shapes accepted by the string builder. Email follows a pragmatic
// RFC-5322-ish subset, URL requires an absolute form with a scheme, UUID is
// the canonical 8-4-4-4-12 hex layout.
var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	urlRe   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+\-.]*://[^\s]*$`)
	uuidRe  = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// ---------------- String ----------------

type stringRule struct {
	kind string // "min", "max", "email", "url", "uuid", "pattern"
	n    int
	re   *regexp.Regexp
	expr string
}

// StringBuilder builds string schemas with ordered constraint checks.
// Builders are immutable: every chainer returns a derived copy, so partially
// built chains can be shared between schemas safely. A StringBuilder is itself
// a Schema[string]; there is no separate build step.
type StringBuilder struct {
	rules []stringRule
}

var _ skematic.Schema[string] = (*StringBuilder)(nil)

// String returns a fresh string schema builder.
func String() *StringBuilder { return &StringBuilder{} }

func (b *StringBuilder) with(r stringRule) *StringBuilder {
	nb := &StringBuilder{rules: make([]stringRule, len(b.rules), len(b.rules)+1)}
	copy(nb.rules, b.rules)
	nb.rules = append(nb.rules, r)
	return nb
}

// Min constrains the minimum length in runes (inclusive).
func (b *StringBuilder) Min(n int) *StringBuilder { return b.with(stringRule{kind: "min", n: n}) }

// Max constrains the maximum length in runes (inclusive).
func (b *StringBuilder) Max(n int) *StringBuilder { return b.with(stringRule{kind: "max", n: n}) }

// Email requires an email-shaped value.
func (b *StringBuilder) Email() *StringBuilder {
	return b.with(stringRule{kind: "email", re: emailRe})
}

// URL requires an absolute URL with a scheme.
func (b *StringBuilder) URL() *StringBuilder { return b.with(stringRule{kind: "url", re: urlRe}) }

// UUID requires the canonical textual UUID layout.
func (b *StringBuilder) UUID() *StringBuilder { return b.with(stringRule{kind: "uuid", re: uuidRe}) }

// Pattern requires the value to match expr. The expression is compiled
// eagerly and panics when invalid, mirroring regexp.MustCompile.
func (b *StringBuilder) Pattern(expr string) *StringBuilder {
	return b.with(stringRule{kind: "pattern", re: regexp.MustCompile(expr), expr: expr})
}

func (b *StringBuilder) Parse(ctx context.Context, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", skematic.Issues{typeIssue("/", "string", v)}
	}
	ns, err := skematic.ApplyNormalize[string](ctx, s, b)
	if err != nil {
		return "", err
	}
	s = ns
	if err := b.ValidateValue(ctx, s); err != nil {
		return "", err
	}
	if err := skematic.ApplyRefine[string](ctx, s, b); err != nil {
		return "", err
	}
	return s, nil
}

func (b *StringBuilder) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[string], error) {
	s, err := b.Parse(ctx, v)
	return skematic.Parsed[string]{Value: s, Presence: skematic.PresenceMap{"/": skematic.PresenceSeen}}, err
}

func (b *StringBuilder) TypeCheck(ctx context.Context, v any) error {
	if _, ok := v.(string); !ok {
		return skematic.Issues{typeIssue("/", "string", v)}
	}
	return nil
}

func (b *StringBuilder) RuleCheck(ctx context.Context, v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return b.ValidateValue(ctx, s)
}

func (b *StringBuilder) Validate(ctx context.Context, v any) error {
	if err := b.TypeCheck(ctx, v); err != nil {
		return err
	}
	return b.RuleCheck(ctx, v)
}

// ValidateValue runs every declared constraint in declaration order and
// reports all violations together (fail-fast shortens to the first).
func (b *StringBuilder) ValidateValue(ctx context.Context, v string) error {
	var iss skematic.Issues
	for _, r := range b.rules {
		var bad *skematic.Issue
		switch r.kind {
		case "min":
			if utf8.RuneCountInString(v) < r.n {
				it := stringTooShort("/", r.n)
				bad = &it
			}
		case "max":
			if utf8.RuneCountInString(v) > r.n {
				it := stringTooLong("/", r.n)
				bad = &it
			}
		default:
			if !r.re.MatchString(v) {
				it := stringBadFormat("/", r.kind, r.expr)
				bad = &it
			}
		}
		if bad != nil {
			iss = skematic.AppendIssues(iss, *bad)
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

func (b *StringBuilder) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "string"}
	for _, r := range b.rules {
		switch r.kind {
		case "min":
			n := r.n
			s.MinLength = &n
		case "max":
			n := r.n
			s.MaxLength = &n
		case "pattern":
			s.Pattern = r.expr
		default:
			s.Format = r.kind
		}
	}
	return s, nil
}

func (b *StringBuilder) fieldAdapter() AnyAdapter { return anyAdapterFromSchema[string](b) }

// ---------------- Bool ----------------

// BoolBuilder is the boolean schema; it carries no constraints.
type BoolBuilder struct{}

var _ skematic.Schema[bool] = (*BoolBuilder)(nil)

// Bool returns the boolean schema builder.
func Bool() *BoolBuilder { return &BoolBuilder{} }

func (b *BoolBuilder) Parse(ctx context.Context, v any) (bool, error) {
	t, ok := v.(bool)
	if !ok {
		return false, skematic.Issues{typeIssue("/", "boolean", v)}
	}
	nt, err := skematic.ApplyNormalize[bool](ctx, t, b)
	if err != nil {
		return false, err
	}
	t = nt
	if err := b.ValidateValue(ctx, t); err != nil {
		return false, err
	}
	if err := skematic.ApplyRefine[bool](ctx, t, b); err != nil {
		return false, err
	}
	return t, nil
}

func (b *BoolBuilder) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[bool], error) {
	t, err := b.Parse(ctx, v)
	return skematic.Parsed[bool]{Value: t, Presence: skematic.PresenceMap{"/": skematic.PresenceSeen}}, err
}

func (b *BoolBuilder) TypeCheck(ctx context.Context, v any) error {
	if _, ok := v.(bool); !ok {
		return skematic.Issues{typeIssue("/", "boolean", v)}
	}
	return nil
}

func (b *BoolBuilder) RuleCheck(ctx context.Context, v any) error { return nil }

func (b *BoolBuilder) Validate(ctx context.Context, v any) error {
	if err := b.TypeCheck(ctx, v); err != nil {
		return err
	}
	return b.RuleCheck(ctx, v)
}

func (b *BoolBuilder) ValidateValue(ctx context.Context, v bool) error { return nil }

func (b *BoolBuilder) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "boolean"}, nil }

func (b *BoolBuilder) fieldAdapter() AnyAdapter { return anyAdapterFromSchema[bool](b) }

// ---------------- Number ----------------

type numberRule struct {
	kind string // "min", "max", "int"
	n    float64
}

// NumberBuilder builds numeric schemas over json.Number. Wire values arrive
// as json.Number or float64 depending on NumberMode; both are accepted and
// normalized to json.Number. Textual values are rejected: there is no
// implicit string-to-number coercion.
type NumberBuilder struct {
	rules []numberRule
}

var _ skematic.Schema[json.Number] = (*NumberBuilder)(nil)

// Number returns a fresh number schema builder.
func Number() *NumberBuilder { return &NumberBuilder{} }

func (b *NumberBuilder) with(r numberRule) *NumberBuilder {
	nb := &NumberBuilder{rules: make([]numberRule, len(b.rules), len(b.rules)+1)}
	copy(nb.rules, b.rules)
	nb.rules = append(nb.rules, r)
	return nb
}

// Min constrains the minimum value (inclusive).
func (b *NumberBuilder) Min(n float64) *NumberBuilder { return b.with(numberRule{kind: "min", n: n}) }

// Max constrains the maximum value (inclusive).
func (b *NumberBuilder) Max(n float64) *NumberBuilder { return b.with(numberRule{kind: "max", n: n}) }

// Int requires the value to be a whole number.
func (b *NumberBuilder) Int() *NumberBuilder { return b.with(numberRule{kind: "int"}) }

func (b *NumberBuilder) Parse(ctx context.Context, v any) (json.Number, error) {
	num, ok := toNumber(v)
	if !ok {
		return "", skematic.Issues{typeIssue("/", "number", v)}
	}
	nn, err := skematic.ApplyNormalize[json.Number](ctx, num, b)
	if err != nil {
		return "", err
	}
	num = nn
	if err := b.ValidateValue(ctx, num); err != nil {
		return "", err
	}
	if err := skematic.ApplyRefine[json.Number](ctx, num, b); err != nil {
		return "", err
	}
	return num, nil
}

func (b *NumberBuilder) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[json.Number], error) {
	n, err := b.Parse(ctx, v)
	return skematic.Parsed[json.Number]{Value: n, Presence: skematic.PresenceMap{"/": skematic.PresenceSeen}}, err
}

func (b *NumberBuilder) TypeCheck(ctx context.Context, v any) error {
	if _, ok := toNumber(v); !ok {
		return skematic.Issues{typeIssue("/", "number", v)}
	}
	return nil
}

func (b *NumberBuilder) RuleCheck(ctx context.Context, v any) error {
	num, ok := toNumber(v)
	if !ok {
		return nil
	}
	return b.ValidateValue(ctx, num)
}

func (b *NumberBuilder) Validate(ctx context.Context, v any) error {
	if err := b.TypeCheck(ctx, v); err != nil {
		return err
	}
	return b.RuleCheck(ctx, v)
}

// ValidateValue runs every declared constraint in declaration order and
// reports all violations together (fail-fast shortens to the first).
func (b *NumberBuilder) ValidateValue(ctx context.Context, v json.Number) error {
	if len(b.rules) == 0 {
		return nil
	}
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return skematic.Issues{skematic.Issue{Path: "/", Code: skematic.CodeParseError, Message: err.Error(), Cause: err}}
	}
	var iss skematic.Issues
	for _, r := range b.rules {
		var bad *skematic.Issue
		switch r.kind {
		case "min":
			if f < r.n {
				it := numberTooSmall("/", r.n)
				bad = &it
			}
		case "max":
			if f > r.n {
				it := numberTooBig("/", r.n)
				bad = &it
			}
		case "int":
			if f != math.Trunc(f) {
				it := typeIssueNamed("/", "integer", "float")
				bad = &it
			}
		}
		if bad != nil {
			iss = skematic.AppendIssues(iss, *bad)
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

func (b *NumberBuilder) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: "number"}
	for _, r := range b.rules {
		switch r.kind {
		case "min":
			s.Minimum = jsPtrFloat(r.n)
		case "max":
			s.Maximum = jsPtrFloat(r.n)
		case "int":
			s.Type = "integer"
		}
	}
	return s, nil
}

func (b *NumberBuilder) fieldAdapter() AnyAdapter { return anyAdapterFromSchema[json.Number](b) }

// toNumber normalizes accepted numeric representations to json.Number.
// Direct Go integers and floats are allowed for defaults and hand-built
// values; strings never qualify.
func toNumber(v any) (json.Number, bool) {
	switch t := v.(type) {
	case json.Number:
		return t, true
	case float64:
		return json.Number(strconv.FormatFloat(t, 'g', -1, 64)), true
	case float32:
		return json.Number(strconv.FormatFloat(float64(t), 'g', -1, 64)), true
	case int:
		return json.Number(strconv.Itoa(t)), true
	case int8, int16, int32, int64:
		return json.Number(strconv.FormatInt(reflect.ValueOf(t).Int(), 10)), true
	case uint, uint8, uint16, uint32, uint64:
		return json.Number(strconv.FormatUint(reflect.ValueOf(t).Uint(), 10)), true
	}
	return "", false
}

// ---------------- domain type projections ----------------

// stringAsSchema projects the string schema to a domain type T with underlying string.
type stringAsSchema[T ~string] struct{ inner *StringBuilder }

func (s stringAsSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	sv, err := s.inner.Parse(ctx, v)
	if err != nil {
		var zero T
		return zero, err
	}
	return T(sv), nil
}

func (s stringAsSchema[T]) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[T], error) {
	ds, err := s.inner.ParseWithMeta(ctx, v)
	if err != nil {
		var zero skematic.Parsed[T]
		return zero, err
	}
	return skematic.Parsed[T]{Value: T(ds.Value), Presence: ds.Presence}, nil
}

func (s stringAsSchema[T]) TypeCheck(ctx context.Context, v any) error {
	return s.inner.TypeCheck(ctx, v)
}
func (s stringAsSchema[T]) RuleCheck(ctx context.Context, v any) error {
	return s.inner.RuleCheck(ctx, v)
}
func (s stringAsSchema[T]) Validate(ctx context.Context, v any) error {
	return s.inner.Validate(ctx, v)
}
func (s stringAsSchema[T]) ValidateValue(ctx context.Context, v T) error {
	return s.inner.ValidateValue(ctx, string(v))
}
func (s stringAsSchema[T]) JSONSchema() (*js.Schema, error) { return s.inner.JSONSchema() }

// StringOf returns an AnyAdapter for a string wire schema projected to domain type T.
func StringOf[T ~string]() AnyAdapter {
	ad := anyAdapterFromSchema[T](stringAsSchema[T]{inner: String()})
	ad.orig = String()
	return ad
}

// boolAsSchema projects the bool schema to a domain type T with underlying bool.
type boolAsSchema[T ~bool] struct{ inner *BoolBuilder }

func (s boolAsSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	bv, err := s.inner.Parse(ctx, v)
	if err != nil {
		var zero T
		return zero, err
	}
	return T(bv), nil
}

func (s boolAsSchema[T]) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[T], error) {
	db, err := s.inner.ParseWithMeta(ctx, v)
	if err != nil {
		var zero skematic.Parsed[T]
		return zero, err
	}
	return skematic.Parsed[T]{Value: T(db.Value), Presence: db.Presence}, nil
}

func (s boolAsSchema[T]) TypeCheck(ctx context.Context, v any) error {
	return s.inner.TypeCheck(ctx, v)
}
func (s boolAsSchema[T]) RuleCheck(ctx context.Context, v any) error {
	return s.inner.RuleCheck(ctx, v)
}
func (s boolAsSchema[T]) Validate(ctx context.Context, v any) error {
	return s.inner.Validate(ctx, v)
}
func (s boolAsSchema[T]) ValidateValue(ctx context.Context, v T) error {
	return s.inner.ValidateValue(ctx, bool(v))
}
func (s boolAsSchema[T]) JSONSchema() (*js.Schema, error) { return s.inner.JSONSchema() }

// BoolOf returns an AnyAdapter for a bool wire schema projected to domain type T.
func BoolOf[T ~bool]() AnyAdapter {
	ad := anyAdapterFromSchema[T](boolAsSchema[T]{inner: Bool()})
	ad.orig = Bool()
	return ad
}

// intAsSchema projects the number schema to a domain type T with underlying int.
// It accepts JSON numbers on the wire and converts with integer-only semantics.
type intAsSchema[T ~int] struct{ inner *NumberBuilder }

func (s intAsSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	num, err := s.inner.Parse(ctx, v)
	if err != nil {
		var zero T
		return zero, err
	}
	i64, perr := num.Int64()
	if perr != nil {
		var zero T
		// Int64 fails for fractional input and for integers outside int64.
		if errors.Is(perr, strconv.ErrRange) {
			return zero, skematic.Issues{skematic.Issue{
				Path: "/", Code: skematic.CodeOverflow,
				Message: "integer out of range", Cause: perr,
				Params: map[string]any{"value": string(num)},
			}}
		}
		return zero, skematic.Issues{typeIssueNamed("/", "integer", "float")}
	}
	return T(int(i64)), nil
}

func (s intAsSchema[T]) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[T], error) {
	tv, err := s.Parse(ctx, v)
	if err != nil {
		var zero skematic.Parsed[T]
		return zero, err
	}
	return skematic.Parsed[T]{Value: tv, Presence: skematic.PresenceMap{"/": skematic.PresenceSeen}}, nil
}

func (s intAsSchema[T]) TypeCheck(ctx context.Context, v any) error {
	return s.inner.TypeCheck(ctx, v)
}
func (s intAsSchema[T]) RuleCheck(ctx context.Context, v any) error {
	return s.inner.RuleCheck(ctx, v)
}
func (s intAsSchema[T]) Validate(ctx context.Context, v any) error {
	return s.inner.Validate(ctx, v)
}
func (s intAsSchema[T]) ValidateValue(ctx context.Context, v T) error { return nil }
func (s intAsSchema[T]) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Type: "integer"}, nil
}

// IntOf returns an AnyAdapter for a JSON number wire schema projected to domain type T(~int).
func IntOf[T ~int]() AnyAdapter {
	ad := anyAdapterFromSchema[T](intAsSchema[T]{inner: Number()})
	ad.orig = Number()
	return ad
}

// floatAsSchema projects the number schema to a domain type T with underlying float64.
type floatAsSchema[T ~float64] struct{ inner *NumberBuilder }

func (s floatAsSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	num, err := s.inner.Parse(ctx, v)
	if err != nil {
		var zero T
		return zero, err
	}
	f64, perr := strconv.ParseFloat(string(num), 64)
	if perr != nil {
		var zero T
		return zero, skematic.Issues{skematic.Issue{Path: "/", Code: skematic.CodeParseError, Message: perr.Error(), Cause: perr}}
	}
	return T(f64), nil
}

func (s floatAsSchema[T]) ParseWithMeta(ctx context.Context, v any) (skematic.Parsed[T], error) {
	tv, err := s.Parse(ctx, v)
	if err != nil {
		var zero skematic.Parsed[T]
		return zero, err
	}
	return skematic.Parsed[T]{Value: tv, Presence: skematic.PresenceMap{"/": skematic.PresenceSeen}}, nil
}

func (s floatAsSchema[T]) TypeCheck(ctx context.Context, v any) error {
	return s.inner.TypeCheck(ctx, v)
}
func (s floatAsSchema[T]) RuleCheck(ctx context.Context, v any) error {
	return s.inner.RuleCheck(ctx, v)
}
func (s floatAsSchema[T]) Validate(ctx context.Context, v any) error {
	return s.inner.Validate(ctx, v)
}
func (s floatAsSchema[T]) ValidateValue(ctx context.Context, v T) error { return nil }
func (s floatAsSchema[T]) JSONSchema() (*js.Schema, error)              { return &js.Schema{Type: "number"}, nil }

// FloatOf returns an AnyAdapter for a JSON number wire schema projected to domain type T(~float64).
func FloatOf[T ~float64]() AnyAdapter {
	ad := anyAdapterFromSchema[T](floatAsSchema[T]{inner: Number()})
	ad.orig = Number()
	return ad
}

// ---------------- issue helpers ----------------

// typeNameOf renders the runtime type of a decoded value using wire
// vocabulary (null/string/boolean/number/object/array).
func typeNameOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return reflect.TypeOf(v).String()
}

func typeIssue(path, expected string, v any) skematic.Issue {
	return typeIssueNamed(path, expected, typeNameOf(v))
}

func typeIssueNamed(path, expected, received string) skematic.Issue {
	return skematic.Issue{
		Path:    path,
		Code:    skematic.CodeInvalidType,
		Message: i18n.T(skematic.CodeInvalidType, map[string]string{"expected": expected, "received": received}),
		Params:  map[string]any{"expected": expected, "received": received},
	}
}

func stringTooShort(path string, min int) skematic.Issue {
	return skematic.Issue{
		Path:    path,
		Code:    skematic.CodeTooShort,
		Message: i18n.T(skematic.CodeTooShort, map[string]string{"min": strconv.Itoa(min)}),
		Params:  map[string]any{"min": min},
	}
}

func stringTooLong(path string, max int) skematic.Issue {
	return skematic.Issue{
		Path:    path,
		Code:    skematic.CodeTooLong,
		Message: i18n.T(skematic.CodeTooLong, map[string]string{"max": strconv.Itoa(max)}),
		Params:  map[string]any{"max": max},
	}
}

func stringBadFormat(path, format, expr string) skematic.Issue {
	it := skematic.Issue{
		Path:    path,
		Code:    skematic.CodeInvalidFormat,
		Message: i18n.T(skematic.CodeInvalidFormat, map[string]string{"format": format}),
		Params:  map[string]any{"format": format},
	}
	if expr != "" {
		it.Params["pattern"] = expr
	}
	return it
}

func numberTooSmall(path string, min float64) skematic.Issue {
	return skematic.Issue{
		Path:    path,
		Code:    skematic.CodeTooSmall,
		Message: i18n.T(skematic.CodeTooSmall, map[string]string{"min": formatNum(min)}),
		Params:  map[string]any{"min": min},
	}
}

func numberTooBig(path string, max float64) skematic.Issue {
	return skematic.Issue{
		Path:    path,
		Code:    skematic.CodeTooBig,
		Message: i18n.T(skematic.CodeTooBig, map[string]string{"max": formatNum(max)}),
		Params:  map[string]any{"max": max},
	}
}

func formatNum(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
