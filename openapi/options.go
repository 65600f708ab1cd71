package openapi

import "fmt"

// UnknownBehavior configures how undeclared properties are treated when the
// source schema does not pin additionalProperties itself.
type UnknownBehavior int

const (
	UnknownStrip UnknownBehavior = iota
	UnknownStrict
	UnknownPreserve
)

// DefaultMode controls whether `default` keywords become schema defaults.
type DefaultMode int

const (
	DefaultApply DefaultMode = iota
	DefaultIgnore
)

// Options controls import behavior for OpenAPI / JSON Schema documents.
type Options struct {
	// Unknown applies when a schema says nothing about additionalProperties.
	// An explicit additionalProperties always wins over this setting.
	Unknown UnknownBehavior
	// Defaults decides whether `default` values are wired into the compiled
	// schema. DefaultApply substitutes them for absent fields at parse time.
	Defaults DefaultMode
}

// Diag carries non-fatal warnings produced during import.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }
