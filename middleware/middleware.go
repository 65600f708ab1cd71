// Package middleware carries schema-validated request values through
// context and offers a net/http middleware for JSON bodies. Framework
// bindings (echo, gin) live in submodules to keep their dependencies out of
// the core module.
package middleware

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	skematic "github.com/kharioki/skematic"
)

// ctxKeyParsed is a typed context key for storing Parsed[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyParsed[T any] struct{}

// ContextWithParsed attaches a Parsed[T] to the context.
func ContextWithParsed[T any](ctx context.Context, pv skematic.Parsed[T]) context.Context {
	return context.WithValue(ctx, ctxKeyParsed[T]{}, pv)
}

// ParsedFromContext retrieves a Parsed[T] from context.
func ParsedFromContext[T any](ctx context.Context) (skematic.Parsed[T], bool) {
	v, ok := ctx.Value(ctxKeyParsed[T]{}).(skematic.Parsed[T])
	return v, ok
}

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Presence is collected for preserve-friendly semantics
func DefaultParseOpt() skematic.ParseOpt {
	return skematic.ParseOpt{
		Strictness: skematic.Strictness{OnDuplicateKey: skematic.Error},
		Presence:   skematic.PresenceOpt{Collect: true},
	}
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []skematic.Issue) map[string]any {
	return map[string]any{"issues": issues}
}

// ValidateJSON parses the request body via schema s and stores Parsed[T] in
// the request context on success. Validation failures answer 400 with the
// issues payload and the wrapped handler never runs.
func ValidateJSON[T any](s skematic.Schema[T], opt skematic.ParseOpt) func(http.Handler) http.Handler {
	if opt.Strictness.OnDuplicateKey == 0 && !opt.Presence.Collect {
		opt = DefaultParseOpt()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pv, err := skematic.ParseFromWithMeta(r.Context(), s, skematic.JSONReader(r.Body), opt)
			if err != nil {
				writeError(w, err)
				return
			}
			ctx := ContextWithParsed(r.Context(), pv)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	enc := json.NewEncoder(w)
	if iss, ok := skematic.AsIssues(err); ok {
		_ = enc.Encode(ErrorPayload(iss))
		return
	}
	_ = enc.Encode(map[string]any{"error": err.Error()})
}
