/*
Package regular implements the regular-language backend (component J):
a DFA-based fast path for grammars built only from the non-recursive
combinators Token, CharSet, Anything, End, Sequence, Choice, Optional,
Many and Many1 — anything a plain regular expression can already
express. Any other node kind anywhere in the grammar, in particular
Indirect (which is how this module's recursion is expressed), fails
compile with BACKEND_UNSUPPORTED rather than attempting a best-effort
translation.

Compile translates the grammar's combinator graph directly into a
timtadh/lexmachine regex and compiles it into a DFA, grounded on
lr/scanner/lexmach/lexmachine.go's adapter (NewLexer/Add/Compile, and
the Scanner.Next() / machines.UnconsumedInput error-recovery loop in
its NextToken). The DFA is the authoritative oracle for whether the
whole input is accepted. Because lexmachine's match carries no
sub-structure, a second, independent walk (matchNode) reconstructs a
tree.Node by re-applying the same combinators directly against the
input with committed, leftmost-first choice — the same ordered-choice
convention backend/packrat uses for Choice and the same greedy
repetition backend/packrat uses for Many/Many1. The two encodings of
the grammar (regex and structural walk) do not always agree: where a
greedy repetition or a committed choice consumes input that a later
element needs, the DFA accepts but the walk fails, and Parse returns an
error.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package regular

import (
	"bytes"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/grammar"
	"github.com/pgcombinator/pgc/tree"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

func init() {
	backend.Register(&Backend{})
}

// tracer traces with key 'pgc.regular'.
func tracer() tracing.Trace {
	return tracing.Select("pgc.regular")
}

// Backend implements backend.Backend for the regular-language subset.
type Backend struct{}

// ID returns backend.Regular.
func (*Backend) ID() backend.ID { return backend.Regular }

// Compile rejects any grammar using a node kind outside the supported
// subset, then builds a lexmachine DFA for the whole grammar as a
// single pattern.
func (*Backend) Compile(g *grammar.Grammar) (backend.CompiledGrammar, error) {
	root := g.Root()
	if root == grammar.NoNode {
		return nil, pgc.NewError(pgc.BackendUnsupported, "grammar %q has no root node", g.Name)
	}
	if err := checkSubset(g, root, make(map[grammar.NodeID]bool)); err != nil {
		return nil, err
	}
	pattern := toRegex(g, root)
	tracer().Debugf("regular: compiled pattern %s", pattern)
	lexer := lexmachine.NewLexer()
	lexer.Add(pattern, func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return m, nil
	})
	if err := lexer.Compile(); err != nil {
		return nil, pgc.NewError(pgc.BackendUnsupported, "regular backend: could not compile DFA: %v", err)
	}
	return &Compiled{g: g, root: root, lexer: lexer}, nil
}

// Compiled is a grammar compiled for the regular-language backend.
type Compiled struct {
	g     *grammar.Grammar
	root  grammar.NodeID
	lexer *lexmachine.Lexer
}

// Free releases nothing; the DFA is plain Go memory owned by lexmachine.
func (*Compiled) Free() {}

// Parse accepts input iff the compiled DFA matches it in full, then
// reconstructs a parse tree with a structural walk that mirrors the
// same combinators.
func (c *Compiled) Parse(input []byte) (*tree.Node, error) {
	s, err := c.lexer.Scanner(input)
	if err != nil {
		return nil, pgc.NewError(pgc.ParseFailed, "regular backend: scanner setup failed: %v", err)
	}
	tok, err, eof := s.Next()
	if err != nil {
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			return nil, pgc.ParseFailure(uint64(ui.FailTC), nil)
		}
		return nil, pgc.NewError(pgc.ParseFailed, "regular backend: %v", err)
	}
	if eof || tok == nil {
		return nil, pgc.ParseFailure(0, nil)
	}
	m := tok.(*machines.Match)
	if len(m.Bytes) != len(input) {
		return nil, pgc.ParseFailure(uint64(len(m.Bytes)), nil)
	}
	node, end, ok := matchNode(c.g, c.root, input, 0)
	if !ok || end != len(input) {
		return nil, pgc.NewError(pgc.ParseFailed,
			"regular backend: DFA accepted the input but the structural walk could not reconstruct it")
	}
	return node, nil
}

// --- Subset check --------------------------------------------------------

var allowedKinds = map[grammar.Kind]bool{
	grammar.KToken:    true,
	grammar.KCharSet:  true,
	grammar.KAnything: true,
	grammar.KEnd:      true,
	grammar.KSequence: true,
	grammar.KChoice:   true,
	grammar.KOptional: true,
	grammar.KMany:     true,
	grammar.KMany1:    true,
}

// checkSubset walks the combinator graph reachable from id and fails
// BACKEND_UNSUPPORTED on the first node kind this backend cannot
// express as a regular expression — in particular Indirect, which is
// this module's only recursion-capable construct.
func checkSubset(g *grammar.Grammar, id grammar.NodeID, seen map[grammar.NodeID]bool) error {
	if seen[id] {
		return nil
	}
	seen[id] = true
	n := g.Node(id)
	if !allowedKinds[n.Kind] {
		return pgc.NewError(pgc.BackendUnsupported,
			"regular backend does not support %v nodes (grammar is not a regular language)", n.Kind)
	}
	switch n.Kind {
	case grammar.KSequence, grammar.KChoice:
		for _, ch := range n.Children {
			if err := checkSubset(g, ch, seen); err != nil {
				return err
			}
		}
	case grammar.KOptional, grammar.KMany, grammar.KMany1:
		return checkSubset(g, n.Child, seen)
	}
	return nil
}

// --- Combinator-graph to lexmachine regex ---------------------------------

func toRegex(g *grammar.Grammar, id grammar.NodeID) []byte {
	n := g.Node(id)
	switch n.Kind {
	case grammar.KToken:
		return escapeLiteral(n.Literal)
	case grammar.KCharSet:
		return charSetToClass(n.Set)
	case grammar.KAnything:
		return []byte(".")
	case grammar.KEnd:
		// Zero-width: "only at end of input" has no sub-expression
		// equivalent in a substring-match regex, so it contributes
		// nothing here; Compiled.Parse enforces it separately by
		// requiring the DFA's match to span the entire input.
		return []byte{}
	case grammar.KSequence:
		var buf bytes.Buffer
		for _, ch := range n.Children {
			buf.Write(toRegex(g, ch))
		}
		return buf.Bytes()
	case grammar.KChoice:
		var buf bytes.Buffer
		buf.WriteByte('(')
		for i, alt := range n.Children {
			if i > 0 {
				buf.WriteByte('|')
			}
			buf.Write(toRegex(g, alt))
		}
		buf.WriteByte(')')
		return buf.Bytes()
	case grammar.KOptional:
		return wrap(toRegex(g, n.Child), '?')
	case grammar.KMany:
		return wrap(toRegex(g, n.Child), '*')
	case grammar.KMany1:
		return wrap(toRegex(g, n.Child), '+')
	default:
		panic(fmt.Sprintf("regular: unsupported node kind %v reached toRegex after checkSubset passed", n.Kind))
	}
}

func wrap(pattern []byte, quantifier byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte('(')
	buf.Write(pattern)
	buf.WriteByte(')')
	buf.WriteByte(quantifier)
	return buf.Bytes()
}

const regexMeta = `.*+?()|[]\^$`

func escapeLiteral(lit []byte) []byte {
	var buf bytes.Buffer
	for _, b := range lit {
		if bytes.IndexByte([]byte(regexMeta), b) >= 0 {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.Bytes()
}

// charSetToClass renders a CharSet as a lexmachine character class,
// collapsing runs of consecutive set bytes into a-b ranges.
func charSetToClass(set grammar.CharSet) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	b := 0
	for b < 256 {
		if !set.Contains(byte(b)) {
			b++
			continue
		}
		lo := b
		for b < 256 && set.Contains(byte(b)) {
			b++
		}
		hi := b - 1
		writeClassByte(&buf, byte(lo))
		if hi > lo {
			buf.WriteByte('-')
			writeClassByte(&buf, byte(hi))
		}
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func writeClassByte(buf *bytes.Buffer, b byte) {
	switch b {
	case ']', '\\', '^', '-':
		buf.WriteByte('\\')
	}
	buf.WriteByte(b)
}

// --- Structural reconstruction --------------------------------------------

// matchNode re-applies the combinator at id against input starting at
// pos, committing to the first successful Choice alternative and to
// the greedy maximal count for Many/Many1, exactly like
// backend/packrat's evalNode does for the same node kinds (ordered
// choice, greedy repetition, no backtracking into an already-committed
// alternative).
func matchNode(g *grammar.Grammar, id grammar.NodeID, input []byte, pos int) (*tree.Node, int, bool) {
	n := g.Node(id)
	switch n.Kind {
	case grammar.KToken:
		end := pos + len(n.Literal)
		if end <= len(input) && bytes.Equal(input[pos:end], n.Literal) {
			return leaf(n.Kind.String(), input, pos, end), end, true
		}
		return nil, pos, false
	case grammar.KCharSet:
		if pos < len(input) && n.Set.Contains(input[pos]) {
			return leaf("CharSet", input, pos, pos+1), pos + 1, true
		}
		return nil, pos, false
	case grammar.KAnything:
		if pos < len(input) {
			return leaf("Anything", input, pos, pos+1), pos + 1, true
		}
		return nil, pos, false
	case grammar.KEnd:
		if pos == len(input) {
			return tree.Reduce("End", nil), pos, true
		}
		return nil, pos, false
	case grammar.KSequence:
		children := make([]*tree.Node, 0, len(n.Children))
		cur := pos
		for _, ch := range n.Children {
			node, next, ok := matchNode(g, ch, input, cur)
			if !ok {
				return nil, pos, false
			}
			children = append(children, node)
			cur = next
		}
		return tree.Reduce("Sequence", children), cur, true
	case grammar.KChoice:
		for _, alt := range n.Children {
			if node, next, ok := matchNode(g, alt, input, pos); ok {
				return node, next, true
			}
		}
		return nil, pos, false
	case grammar.KOptional:
		if node, next, ok := matchNode(g, n.Child, input, pos); ok {
			return tree.Reduce("Optional", []*tree.Node{node}), next, true
		}
		return tree.Reduce("Optional", nil), pos, true
	case grammar.KMany:
		var children []*tree.Node
		cur := pos
		for {
			node, next, ok := matchNode(g, n.Child, input, cur)
			if !ok || next == cur {
				break
			}
			children = append(children, node)
			cur = next
		}
		return tree.Reduce("Many", children), cur, true
	case grammar.KMany1:
		first, next, ok := matchNode(g, n.Child, input, pos)
		if !ok {
			return nil, pos, false
		}
		children := []*tree.Node{first}
		cur := next
		for {
			node, next2, ok := matchNode(g, n.Child, input, cur)
			if !ok || next2 == cur {
				break
			}
			children = append(children, node)
			cur = next2
		}
		return tree.Reduce("Many1", children), cur, true
	default:
		panic(fmt.Sprintf("regular: unsupported node kind %v reached matchNode after checkSubset passed", n.Kind))
	}
}

func leaf(name string, input []byte, from, to int) *tree.Node {
	tok := pgc.BasicToken{Lexeme_: string(input[from:to]), Spn: pgc.Span{uint64(from), uint64(to)}}
	return tree.Leaf(name, tok)
}
