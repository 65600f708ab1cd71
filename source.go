package skematic

import (
	"io"

	eng "github.com/kharioki/skematic/internal/engine"
	jsonsrc "github.com/kharioki/skematic/source/json"
	yamlsrc "github.com/kharioki/skematic/source/yaml"
)

// tokenKind enumerates token kinds in the input stream.
type tokenKind int

const (
	_tokenBeginObject tokenKind = iota
	_tokenEndObject
	_tokenBeginArray
	_tokenEndArray
	_tokenKey
	_tokenString
	_tokenNumber
	_tokenBool
	_tokenNull
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token struct {
	Kind   tokenKind
	String string // Stored for key/string tokens.
	Number string // Stored as text; NumberMode controls downstream interpretation.
	Bool   bool
	Offset int64 // Approximate byte position in the input.
}

// Source abstracts over polymorphic input sources.
type Source interface {
	NextToken() (Token, error)
	NumberMode() NumberMode
	Location() int64 // byte offset; -1 if unknown
}

// JSONReader wraps an io.Reader as a JSON Source backed by goccy/go-json.
func JSONReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: jsonsrc.NewReader(r), numMode: NumberJSONNumber}
}

// JSONBytes wraps a byte slice as a JSON Source backed by goccy/go-json.
func JSONBytes(b []byte) Source {
	return &engineSourceAdapter{inner: jsonsrc.NewBytes(b), numMode: NumberJSONNumber}
}

// YAMLReader wraps an io.Reader as a YAML Source backed by yaml.v3. Tokens
// follow the same stream shape as JSON, so schemas validate both uniformly.
func YAMLReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: yamlsrc.NewReader(r), numMode: NumberJSONNumber}
}

// YAMLBytes wraps a byte slice as a YAML Source backed by yaml.v3.
func YAMLBytes(b []byte) Source {
	return &engineSourceAdapter{inner: yamlsrc.NewBytes(b), numMode: NumberJSONNumber}
}

// SourceFromEngine wraps an engine.TokenSource as a skematic.Source. Callers
// choose the NumberMode to inherit subtree context.
func SourceFromEngine(inner eng.TokenSource, mode NumberMode) Source {
	return &engineSourceAdapter{inner: inner, numMode: mode}
}

// EnforceSource wraps a Source with runtime enforcement (duplicate keys, depth, bytes)
// using public options projected to internal engine options.
func EnforceSource(s Source, opt ParseOpt) Source {
	// Fast-path: if s already wraps an engine.TokenSource, unwrap to avoid
	// public<->engine adapter round-trips.
	if ea, ok := s.(*engineSourceAdapter); ok {
		enforced := eng.WrapWithEnforcement(ea.inner, engineEnforceOptions(opt, nil))
		return &engineSourceAdapter{inner: enforced, numMode: s.NumberMode()}
	}
	engSrc := EngineTokenSource(s)
	enforced := eng.WrapWithEnforcement(engSrc, engineEnforceOptions(opt, nil))
	return SourceFromEngine(enforced, s.NumberMode())
}

// EnforceSourceIfNeeded returns the original Source if the options are
// effectively disabled (ignore duplicate keys, zero depth, zero size),
// preventing unnecessary overhead for small inputs.
func EnforceSourceIfNeeded(s Source, opt ParseOpt) Source {
	if opt.Strictness.OnDuplicateKey == Ignore && opt.MaxDepth == 0 && opt.MaxBytes == 0 {
		return s
	}
	return EnforceSource(s, opt)
}

// EnforceSourceWith wraps a Source with runtime enforcement and forwards lightweight
// issues to the provided sink. The sink receives skematic.Issue values converted
// from internal engine issues, enabling callers to collect duplicate key warnings
// or truncation notices in collect mode.
func EnforceSourceWith(s Source, opt ParseOpt, sink func(Issue)) Source {
	var forward func(eng.SimpleIssue)
	if sink != nil {
		forward = func(si eng.SimpleIssue) {
			// Convert to public Issue. Offset is best-effort from current source location.
			sink(Issue{Path: si.Path, Code: si.Code, Message: si.Message, Offset: s.Location()})
		}
	}
	if ea, ok := s.(*engineSourceAdapter); ok {
		enforced := eng.WrapWithEnforcement(ea.inner, engineEnforceOptions(opt, forward))
		return &engineSourceAdapter{inner: enforced, numMode: s.NumberMode()}
	}
	engSrc := EngineTokenSource(s)
	enforced := eng.WrapWithEnforcement(engSrc, engineEnforceOptions(opt, forward))
	return SourceFromEngine(enforced, s.NumberMode())
}

func engineEnforceOptions(opt ParseOpt, sink func(eng.SimpleIssue)) eng.EnforceOptions {
	return eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink:   sink,
		FailFast:    opt.FailFast,
	}
}

// WithNumberMode wraps a Source and overrides its NumberMode.
func WithNumberMode(s Source, m NumberMode) Source { return &overrideNumberMode{inner: s, mode: m} }

type overrideNumberMode struct {
	inner Source
	mode  NumberMode
}

func (o *overrideNumberMode) NextToken() (Token, error) { return o.inner.NextToken() }
func (o *overrideNumberMode) NumberMode() NumberMode    { return o.mode }
func (o *overrideNumberMode) Location() int64           { return o.inner.Location() }

type engineSourceAdapter struct {
	inner   eng.TokenSource
	numMode NumberMode
}

func (s *engineSourceAdapter) NextToken() (Token, error) {
	t, err := s.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: fromEngineKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}
func (s *engineSourceAdapter) NumberMode() NumberMode { return s.numMode }
func (s *engineSourceAdapter) Location() int64        { return s.inner.Location() }

func fromEngineKind(k eng.Kind) tokenKind {
	switch k {
	case eng.KindBeginObject:
		return _tokenBeginObject
	case eng.KindEndObject:
		return _tokenEndObject
	case eng.KindBeginArray:
		return _tokenBeginArray
	case eng.KindEndArray:
		return _tokenEndArray
	case eng.KindKey:
		return _tokenKey
	case eng.KindString:
		return _tokenString
	case eng.KindNumber:
		return _tokenNumber
	case eng.KindBool:
		return _tokenBool
	case eng.KindNull:
		return _tokenNull
	default:
		return _tokenNull
	}
}
