package grammar

import (
	"fmt"
	"sort"

	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/grammar/cfg"
)

// TerminalKind discriminates how a desugared terminal symbol is meant to
// be matched against raw input bytes.
type TerminalKind uint8

const (
	TLiteral  TerminalKind = iota // match an exact byte string
	TCharSet                      // match a single byte against a CharSet
	TAnything                     // match any single byte
	TEnd                          // match only at end of input, consuming nothing
)

// TerminalInfo records how to match the input for a terminal symbol
// synthesized during desugaring. CFG-driven backends (lalr, llk, glr)
// build their lexer (see backend/scanner) from this table.
type TerminalInfo struct {
	Kind    TerminalKind
	Literal []byte
	Set     CharSet
}

// DesugarResult bundles everything a backend needs after lowering a
// combinator graph: the normalized grammar, the terminal-matching table,
// and the semantic annotations (Action/Attr/Ignore) carried over from the
// user IR.
type DesugarResult struct {
	CFG         *cfg.Grammar
	Terminals   map[pgc.TokType]*TerminalInfo
	Annotations *cfg.AnnotationTable
}

type desugarer struct {
	g       *Grammar
	b       *cfg.GrammarBuilder
	memo    map[NodeID]*cfg.Symbol
	term    map[pgc.TokType]*TerminalInfo
	anns    *cfg.AnnotationTable
	nextTok pgc.TokType
	err     error
}

// Desugar lowers a combinator graph g into a normalized context-free
// grammar, per SPEC_FULL.md §4.C: composite nodes are expanded into fresh
// non-terminals and sum-of-products rules; PEG-only constructs
// (NotFollowedBy/FollowedBy) are rejected with PEG_ONLY_CONSTRUCT_IN_CFG,
// since they have no CFG production rule equivalent.
func Desugar(g *Grammar) (*DesugarResult, error) {
	if len(g.UnboundIndirects()) > 0 {
		return nil, pgc.NewError(pgc.UnboundIndirect, "grammar %q has unbound indirects: %v", g.Name, g.UnboundIndirects())
	}
	if g.root == NoNode {
		return nil, pgc.NewError(pgc.UnboundIndirect, "grammar %q has no root node", g.Name)
	}
	d := &desugarer{
		g:       g,
		b:       cfg.NewGrammarBuilder(g.Name),
		memo:    make(map[NodeID]*cfg.Symbol),
		term:    make(map[pgc.TokType]*TerminalInfo),
		anns:    cfg.NewAnnotationTable(),
		nextTok: 1,
	}
	start := d.lower(g.root)
	if d.err != nil {
		return nil, d.err
	}
	// Ensure the start symbol's rules end up as rule 0: since the builder
	// assigns serials in declaration order and start is always the first
	// LHS encountered (the root is lowered first, above), this already
	// holds.
	_ = start
	cfgGrammar, err := d.b.Grammar()
	if err != nil {
		return nil, pgc.NewError(pgc.BackendUnsupported, "desugar: %v", err)
	}
	return &DesugarResult{CFG: cfgGrammar, Terminals: d.term, Annotations: d.anns}, nil
}

// TerminalOrder returns the result's terminal token values in ascending
// (i.e. declaration) order — the tie-break order a default scanner
// should try matches in.
func (r *DesugarResult) TerminalOrder() []pgc.TokType {
	order := make([]pgc.TokType, 0, len(r.Terminals))
	for tok := range r.Terminals {
		order = append(order, tok)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	return order
}

func (d *desugarer) fail(code pgc.Code, format string, args ...interface{}) {
	if d.err == nil {
		d.err = pgc.NewError(code, format, args...)
	}
}

// freshTerminal registers a new synthetic terminal symbol backed by info.
func (d *desugarer) freshTerminal(name string, info *TerminalInfo) *cfg.Symbol {
	tok := d.nextTok
	d.nextTok++
	d.term[tok] = info
	return d.b.Terminal(name, tok)
}

// lower returns the cfg.Symbol that a user-IR node desugars to, memoized
// by NodeID so shared sub-graphs (an Indirect's target referenced from
// multiple places, or repeated use of the same node) are lowered once.
func (d *desugarer) lower(id NodeID) *cfg.Symbol {
	if d.err != nil {
		return nil
	}
	if s, ok := d.memo[id]; ok {
		return s
	}
	n := d.g.Node(id)
	switch n.Kind {
	case KToken:
		// Equal literals share one terminal, so that the scanner and the
		// builder see a single token type per literal.
		for tok, info := range d.term {
			if info.Kind == TLiteral && string(info.Literal) == string(n.Literal) {
				s := d.b.Terminal(fmt.Sprintf("%q", n.Literal), tok)
				d.memo[id] = s
				return s
			}
		}
		s := d.freshTerminal(fmt.Sprintf("%q", n.Literal), &TerminalInfo{Kind: TLiteral, Literal: n.Literal})
		d.memo[id] = s
		return s
	case KCharSet:
		s := d.freshTerminal(fmt.Sprintf("charset$%d", id), &TerminalInfo{Kind: TCharSet, Set: n.Set})
		d.memo[id] = s
		return s
	case KAnything:
		s := d.freshTerminal("anychar", &TerminalInfo{Kind: TAnything})
		d.memo[id] = s
		return s
	case KEnd:
		s := d.freshTerminal("#end", &TerminalInfo{Kind: TEnd})
		d.memo[id] = s
		return s
	case KEpsilon:
		nt := d.b.FreshNonTerminal("eps")
		d.memo[id] = nt
		d.b.AddRule(nt, nil)
		return nt
	case KNothing:
		nt := d.b.FreshNonTerminal("nothing")
		d.memo[id] = nt
		// No rules at all: a non-terminal with zero productions can
		// never be derived, modelling Nothing's "never matches" semantics.
		return nt
	case KSequence:
		nt := d.b.FreshNonTerminal("seq")
		d.memo[id] = nt // register before recursing: guards against pathological self-reference
		rhs := make([]*cfg.Symbol, 0, len(n.Children))
		for _, c := range n.Children {
			rhs = append(rhs, d.lower(c))
		}
		d.b.AddRule(nt, rhs)
		return nt
	case KChoice:
		nt := d.b.FreshNonTerminal("choice")
		d.memo[id] = nt
		for _, c := range n.Children {
			d.b.AddRule(nt, []*cfg.Symbol{d.lower(c)})
		}
		return nt
	case KOptional:
		// Optional(X)  =>  Opt -> X | epsilon
		nt := d.b.FreshNonTerminal("opt")
		d.memo[id] = nt
		d.b.AddRule(nt, []*cfg.Symbol{d.lower(n.Child)})
		d.b.AddRule(nt, nil)
		return nt
	case KMany:
		// Many(X)  =>  Many -> X Many | epsilon
		nt := d.b.FreshNonTerminal("many")
		d.memo[id] = nt
		x := d.lower(n.Child)
		d.b.AddRule(nt, []*cfg.Symbol{x, nt})
		d.b.AddRule(nt, nil)
		return nt
	case KMany1:
		// Many1(X)  =>  Many1 -> X Many(X)
		nt := d.b.FreshNonTerminal("many1")
		d.memo[id] = nt
		x := d.lower(n.Child)
		tail := d.b.FreshNonTerminal("many")
		d.b.AddRule(tail, []*cfg.Symbol{x, tail})
		d.b.AddRule(tail, nil)
		d.b.AddRule(nt, []*cfg.Symbol{x, tail})
		return nt
	case KSepBy:
		// SepBy(X, sep)  =>  SepBy -> SepBy1 | epsilon
		nt := d.b.FreshNonTerminal("sepby")
		d.memo[id] = nt
		sepBy1 := d.lowerSepBy1(n.Child, n.Sep)
		d.b.AddRule(nt, []*cfg.Symbol{sepBy1})
		d.b.AddRule(nt, nil)
		return nt
	case KSepBy1:
		nt := d.lowerSepBy1(n.Child, n.Sep)
		d.memo[id] = nt
		return nt
	case KNotFollowedBy, KFollowedBy:
		d.fail(pgc.PegOnlyConstructInCFG, "node %v has no context-free-grammar equivalent; use the packrat or regular backend", n)
		return nil
	case KIndirect:
		if n.Bound == NoNode {
			d.fail(pgc.UnboundIndirect, "indirect %q is unbound", n.Name)
			return nil
		}
		// Register a placeholder before recursing so cycles through this
		// Indirect resolve to the same non-terminal instead of looping.
		nt := d.b.NonTerminal(n.Name)
		d.memo[id] = nt
		target := d.lower(n.Bound)
		if target != nt {
			d.b.AddRule(nt, []*cfg.Symbol{target})
		}
		return nt
	case KAction, KAttr, KIgnore:
		// Transparent: lower the child into its own non-terminal (rather
		// than reusing the child's memoized symbol directly) so the
		// annotation can be attached to a rule of its own, then wrap it
		// with a single unit-production carrying the annotation.
		inner := d.lower(n.Child)
		nt := d.b.FreshNonTerminal(n.Kind.String())
		d.memo[id] = nt
		serial := d.b.AddRule(nt, []*cfg.Symbol{inner})
		switch n.Kind {
		case KAction:
			f := n.Action
			d.anns.Set(serial, &cfg.Annotation{Action: func(children []interface{}) (interface{}, error) {
				var v interface{}
				if len(children) > 0 {
					v = children[0]
				}
				return f(v)
			}})
		case KAttr:
			f := n.Attr
			d.anns.Set(serial, &cfg.Annotation{Attr: func(children []interface{}) bool {
				var v interface{}
				if len(children) > 0 {
					v = children[0]
				}
				return f(v)
			}})
		case KIgnore:
			d.anns.Set(serial, &cfg.Annotation{Ignore: true})
		}
		return nt
	default:
		d.fail(pgc.BackendUnsupported, "desugar: unhandled node kind %v", n.Kind)
		return nil
	}
}

// lowerSepBy1 builds  Item (Sep Item)*  as two helper non-terminals and
// returns the entry non-terminal.
func (d *desugarer) lowerSepBy1(item, sep NodeID) *cfg.Symbol {
	itemSym := d.lower(item)
	sepSym := d.lower(sep)
	tail := d.b.FreshNonTerminal("sepby_tail")
	d.b.AddRule(tail, []*cfg.Symbol{sepSym, itemSym, tail})
	d.b.AddRule(tail, nil)
	entry := d.b.FreshNonTerminal("sepby1")
	d.b.AddRule(entry, []*cfg.Symbol{itemSym, tail})
	return entry
}
