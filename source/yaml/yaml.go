// Package yaml implements the engine token source for YAML input, backed by
// gopkg.in/yaml.v3. Documents are materialized as a node tree up front and
// flattened into the JSON-shaped token stream the engine consumes; scalar
// tags decide the token kind so downstream type checks behave the same as for
// JSON input.
package yaml

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	eng "github.com/kharioki/skematic/internal/engine"
)

// maxAliasDepth bounds alias resolution so cyclic anchors cannot hang the
// flattening walk.
const maxAliasDepth = 1000

// NewBytes wraps a YAML byte slice into an engine.TokenSource. Only the first
// document of a multi-document stream is consumed.
func NewBytes(b []byte) eng.TokenSource {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return &yamlSource{err: fmt.Errorf("yaml: %w", err)}
	}
	toks, err := flatten(&root, nil, 0)
	if err != nil {
		return &yamlSource{err: err}
	}
	if len(toks) == 0 {
		toks = []eng.Token{{Kind: eng.KindNull, Offset: -1}}
	}
	return &yamlSource{toks: toks}
}

// NewReader wraps an io.Reader into an engine.TokenSource for YAML. The reader
// is consumed fully before tokens are produced.
func NewReader(r io.Reader) eng.TokenSource {
	b, err := io.ReadAll(r)
	if err != nil {
		return &yamlSource{err: err}
	}
	return NewBytes(b)
}

type yamlSource struct {
	toks []eng.Token
	i    int
	err  error
}

func (s *yamlSource) NextToken() (eng.Token, error) {
	if s.err != nil {
		return eng.Token{}, s.err
	}
	if s.i >= len(s.toks) {
		return eng.Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

// Location is unknown for YAML; node positions are line/column based and do
// not map onto byte offsets.
func (s *yamlSource) Location() int64 { return -1 }

func flatten(n *yaml.Node, out []eng.Token, depth int) ([]eng.Token, error) {
	if depth > maxAliasDepth {
		return nil, fmt.Errorf("yaml: alias nesting exceeds %d levels", maxAliasDepth)
	}
	if n == nil {
		return append(out, eng.Token{Kind: eng.KindNull, Offset: -1}), nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return append(out, eng.Token{Kind: eng.KindNull, Offset: -1}), nil
		}
		return flatten(n.Content[0], out, depth+1)
	case yaml.AliasNode:
		return flatten(n.Alias, out, depth+1)
	case yaml.MappingNode:
		out = append(out, eng.Token{Kind: eng.KindBeginObject, Offset: -1})
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			key := k.Value
			if k.Kind == yaml.AliasNode && k.Alias != nil {
				key = k.Alias.Value
			}
			// Duplicate keys are emitted as-is; the enforcement layer decides
			// whether they warn or fail.
			out = append(out, eng.Token{Kind: eng.KindKey, String: key, Offset: -1})
			var err error
			out, err = flatten(n.Content[i+1], out, depth+1)
			if err != nil {
				return nil, err
			}
		}
		return append(out, eng.Token{Kind: eng.KindEndObject, Offset: -1}), nil
	case yaml.SequenceNode:
		out = append(out, eng.Token{Kind: eng.KindBeginArray, Offset: -1})
		for _, c := range n.Content {
			var err error
			out, err = flatten(c, out, depth+1)
			if err != nil {
				return nil, err
			}
		}
		return append(out, eng.Token{Kind: eng.KindEndArray, Offset: -1}), nil
	case yaml.ScalarNode:
		return append(out, scalarToken(n)), nil
	default:
		return append(out, eng.Token{Kind: eng.KindNull, Offset: -1}), nil
	}
}

func scalarToken(n *yaml.Node) eng.Token {
	switch n.Tag {
	case "!!null":
		return eng.Token{Kind: eng.KindNull, Offset: -1}
	case "!!bool":
		return eng.Token{Kind: eng.KindBool, Bool: strings.EqualFold(n.Value, "true"), Offset: -1}
	case "!!int":
		if iv, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatInt(iv, 10), Offset: -1}
		}
		if uv, err := strconv.ParseUint(n.Value, 0, 64); err == nil {
			return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatUint(uv, 10), Offset: -1}
		}
		// integers wider than 64 bits survive as text when plain decimal
		if isDecimalInt(n.Value) {
			return eng.Token{Kind: eng.KindNumber, Number: strings.TrimPrefix(n.Value, "+"), Offset: -1}
		}
		return eng.Token{Kind: eng.KindString, String: n.Value, Offset: -1}
	case "!!float":
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(f, 'g', -1, 64), Offset: -1}
		}
		// .inf/.nan have no JSON number representation; surface the raw text
		return eng.Token{Kind: eng.KindString, String: n.Value, Offset: -1}
	default:
		return eng.Token{Kind: eng.KindString, String: n.Value, Offset: -1}
	}
}

func isDecimalInt(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
