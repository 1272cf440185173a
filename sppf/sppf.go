/*
Package sppf implements a Shared Packed Parse Forest: a parse-result
representation that lets an ambiguous grammar retain every surviving
derivation without duplicating the shared parts of the trees. An
unambiguous parse degrades to a single tree; where two or more
derivations produce the same symbol over the same input span, the
forest packs them as alternative right-hand sides (an "or-node") under
one shared symbol node, instead of returning two disjoint trees.

Grounded on npillmayer-gorgo/lr/sppf/sppf.go and visit.go: the
SymbolNode/and-edge/or-edge shape and the Cursor/Listener traversal API
are the same idea, retargeted from that module's lr.Symbol/lr.Grammar
types to this module's cfg.Symbol and tree.Node. Used exclusively by
backend/glr, which is the only backend whose driver can produce more
than one surviving derivation for the same input.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package sppf

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/grammar/cfg"
	"github.com/pgcombinator/pgc/internal/iteratable"
)

// tracer traces with key 'pgc.sppf'.
func tracer() tracing.Trace {
	return tracing.Select("pgc.sppf")
}

// SymbolNode is a forest node for one grammar symbol spanning a fixed
// extent of input. Two derivations that produce the same symbol over
// the same span share a single SymbolNode; their competing right-hand
// sides hang off it as or-edges.
type SymbolNode struct {
	Symbol *cfg.Symbol
	Extent pgc.Span
	tok    pgc.Token // set for terminal nodes, nil otherwise
}

func (s *SymbolNode) String() string {
	return fmt.Sprintf("%s%s", s.Symbol.Name, s.Extent)
}

// rhsNode is one alternative right-hand side (one "and-node") that can
// produce a SymbolNode: the rule that fired, and its ordered children.
type rhsNode struct {
	rule int
	sym  *SymbolNode
}

type andEdge struct {
	toSym *SymbolNode
	pos   int
}

type orEdge struct {
	toRHS *rhsNode
}

// Forest accumulates SymbolNodes and their packed alternatives as a
// GLR driver reduces and shifts its way across the input.
type Forest struct {
	root        *SymbolNode
	symbolNodes map[symKey]*SymbolNode
	andEdges    map[*rhsNode]*iteratable.Set // ordered child SymbolNodes
	orEdges     map[*SymbolNode]*iteratable.Set
	parent      map[*SymbolNode]*SymbolNode
}

type symKey struct {
	sym  *cfg.Symbol
	from uint64
	to   uint64
}

// NewForest creates an empty forest.
func NewForest() *Forest {
	return &Forest{
		symbolNodes: make(map[symKey]*SymbolNode),
		andEdges:    make(map[*rhsNode]*iteratable.Set),
		orEdges:     make(map[*SymbolNode]*iteratable.Set),
		parent:      make(map[*SymbolNode]*SymbolNode),
	}
}

// AddTerminal inserts (or returns the existing) SymbolNode for a
// matched terminal token. Terminal nodes are never ambiguous: a given
// terminal symbol occupies exactly one span in the input.
func (f *Forest) AddTerminal(sym *cfg.Symbol, tok pgc.Token) *SymbolNode {
	key := symKey{sym: sym, from: tok.Span().From(), to: tok.Span().To()}
	if n, ok := f.symbolNodes[key]; ok {
		return n
	}
	n := &SymbolNode{Symbol: sym, Extent: tok.Span(), tok: tok}
	f.symbolNodes[key] = n
	return n
}

// AddReduction records one derivation of lhs over extent, built from an
// ordered list of child SymbolNodes (empty for an epsilon production).
// If a SymbolNode for (lhs, extent) already exists — because another
// derivation path produced the same symbol over the same span — the new
// derivation is packed onto it as an additional or-edge rather than
// creating a second node; this is exactly the packing that keeps a
// shared parse forest from blowing up on ambiguous input.
func (f *Forest) AddReduction(lhs *cfg.Symbol, ruleSerial int, extent pgc.Span, children []*SymbolNode) *SymbolNode {
	key := symKey{sym: lhs, from: extent.From(), to: extent.To()}
	n, existed := f.symbolNodes[key]
	if !existed {
		n = &SymbolNode{Symbol: lhs, Extent: extent}
		f.symbolNodes[key] = n
	}
	rhs := &rhsNode{rule: ruleSerial, sym: n}
	edges := iteratable.New()
	for i, ch := range children {
		edges.Add(andEdge{toSym: ch, pos: i})
		f.parent[ch] = n
	}
	f.andEdges[rhs] = edges
	if set, ok := f.orEdges[n]; ok {
		if !existed {
			tracer().Infof("internal: symbol node %v existed without an or-edge set", n)
		}
		set.Add(orEdge{toRHS: rhs})
	} else {
		f.orEdges[n] = iteratable.New(orEdge{toRHS: rhs})
	}
	if existed {
		tracer().Infof("ambiguity: packing alternative rule %d for %v", ruleSerial, n)
	}
	f.root = n
	return n
}

// Root returns the top-level RuleNode of the forest (the last symbol
// node reduced), or nil for an empty forest.
func (f *Forest) Root() *RuleNode {
	if f == nil || f.root == nil {
		return nil
	}
	return &RuleNode{symbol: f.root}
}

// Ambiguous reports whether any symbol node in the forest carries more
// than one packed alternative.
func (f *Forest) Ambiguous() bool {
	for _, set := range f.orEdges {
		if set.Size() > 1 {
			return true
		}
	}
	return false
}
