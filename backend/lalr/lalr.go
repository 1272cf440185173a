/*
Package lalr implements the LALR(1) backend (component G): a
characteristic finite state machine (CFSM) over LR(0) items, shared
ACTION/GOTO tables backed by a sparse matrix, and a shift/reduce driver.

This is a deliberate redesign of the teacher's SLR(1) table generator:
lr/tables.go computes reduce-lookaheads from FOLLOW(LHS) alone, which
over-approximates and can report spurious conflicts. This package instead
propagates lookaheads along the CFSM's goto edges per kernel item
(DeRemer & Pennello's channel algorithm, simplified to a plain
fixed-point relaxation rather than an SCC-based one-pass solver, since
this module never needs to regenerate tables at compiler-generator
speed). Shift/reduce and reduce/reduce conflicts surviving LALR
lookahead are always a hard GRAMMAR_AMBIGUOUS compile error — no
precedence/associativity declarations are offered as an escape hatch;
a grammar that needs one should use the glr backend instead.

CFSM construction (closure/goto) and the ACTION/GOTO table shape,
including the <shift>/<accept>/<reduce N> entry encoding, are grounded
on lr/tables.go's TableGenerator; the shift/reduce driver loop is
grounded on lr/slr/slr.go's Parser.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package lalr

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/backend/scanner"
	"github.com/pgcombinator/pgc/grammar"
	"github.com/pgcombinator/pgc/grammar/cfg"
	"github.com/pgcombinator/pgc/internal/iteratable"
	"github.com/pgcombinator/pgc/internal/sparse"
	"github.com/pgcombinator/pgc/tree"
)

func init() {
	backend.Register(&Backend{})
}

// tracer traces with key 'pgc.lalr'.
func tracer() tracing.Trace {
	return tracing.Select("pgc.lalr")
}

// Action table entry codes, matching lr/tables.go's convention: negative
// values are reserved for shift/accept, non-negative values are rule
// serials to reduce by. An accept entry is only written for an edge on an
// explicit EOF terminal; Parse otherwise detects acceptance structurally
// (see the check at the top of its loop).
const (
	shiftAction  int32 = -1
	acceptAction int32 = -2
)

// Backend implements backend.Backend for LALR(1) table-driven parsing.
type Backend struct{}

// ID returns backend.LALR.
func (*Backend) ID() backend.ID { return backend.LALR }

// Compile desugars g, builds its CFSM, computes LALR(1) lookaheads, and
// renders ACTION/GOTO tables. Fails with GRAMMAR_AMBIGUOUS on any
// shift/reduce or reduce/reduce conflict.
func (*Backend) Compile(g *grammar.Grammar) (backend.CompiledGrammar, error) {
	res, err := grammar.Desugar(g)
	if err != nil {
		return nil, err
	}
	ga := cfg.Analysis(res.CFG)
	automaton := buildCFSM(res.CFG, ga)
	lookaheads := computeLALRLookaheads(res.CFG, ga, automaton)
	actionT, gotoT, err := buildTables(res.CFG, automaton, lookaheads)
	if err != nil {
		return nil, err
	}
	return &Compiled{cfg: res.CFG, terms: res, automaton: automaton, action: actionT, goto_: gotoT}, nil
}

// Compiled is a grammar compiled for the LALR(1) backend.
type Compiled struct {
	cfg       *cfg.Grammar
	terms     *grammar.DesugarResult
	automaton *cfsm
	action    *table
	goto_     *table
}

// CFG exposes the desugared grammar for backend.Compile's introspection
// hook.
func (c *Compiled) CFG() interface{} { return c.cfg }

// Free releases nothing beyond plain Go memory.
func (*Compiled) Free() {}

// --- CFSM construction -------------------------------------------------

// state is one node of the LALR CFSM: a closed LR(0) item set, together
// with the kernel (the dot>0 items, or the single start item for state 0)
// that closure derived it from, since lookahead propagation is defined
// over kernels, not full closures.
type state struct {
	id     int
	kernel []cfg.Item
	items  *iteratable.Set
}

type cfsm struct {
	states []*state
	edges  []edge // from.id -> to.id via label, in construction order
}

type edge struct {
	from, to int
	label    *cfg.Symbol
}

func (c *cfsm) edgesFrom(id int) []edge {
	var out []edge
	for _, e := range c.edges {
		if e.from == id {
			out = append(out, e)
		}
	}
	return out
}

func (c *cfsm) stateByID(id int) *state {
	return c.states[id]
}

func (c *cfsm) findByItems(items *iteratable.Set) *state {
	for _, s := range c.states {
		if s.items.Equals(items) {
			return s
		}
	}
	return nil
}

func (c *cfsm) addState(kernel []cfg.Item, items *iteratable.Set) (*state, bool) {
	if s := c.findByItems(items); s != nil {
		return s, false
	}
	s := &state{id: len(c.states), kernel: kernel, items: items}
	c.states = append(c.states, s)
	return s, true
}

// buildCFSM constructs the LR(0) characteristic finite state machine for
// g, adapted from lr/tables.go's buildCFSM but driven off the shared
// cfg.LRAnalysis.Closure/GotoSet/ClosureSet primitives rather than
// private duplicated methods.
func buildCFSM(g *cfg.Grammar, ga *cfg.LRAnalysis) *cfsm {
	c := &cfsm{}
	start, _ := cfg.StartItem(g.Rule(0))
	s0, _ := c.addState([]cfg.Item{start}, ga.Closure(start))
	worklist := []*state{s0}
	for len(worklist) > 0 {
		s := worklist[0]
		worklist = worklist[1:]
		g.EachSymbol(func(A *cfg.Symbol) interface{} {
			kernel := ga.GotoSet(s.items, A)
			if kernel.Empty() {
				return nil
			}
			closed := ga.ClosureSet(kernel)
			target, isNew := c.addState(itemSlice(kernel), closed)
			c.edges = append(c.edges, edge{from: s.id, to: target.id, label: A})
			if isNew {
				worklist = append(worklist, target)
			}
			return nil
		})
	}
	return c
}

func itemSlice(s *iteratable.Set) []cfg.Item {
	vals := s.Values()
	out := make([]cfg.Item, 0, len(vals))
	for _, v := range vals {
		out = append(out, v.(cfg.Item))
	}
	return out
}

// --- LALR(1) lookahead propagation --------------------------------------
//
// Two-phase channel algorithm (DeRemer & Pennello), simplified to plain
// fixed-point relaxation: phase 1 determines, for every kernel item, the
// set of terminals that can follow it (propagated transitively across
// goto edges plus spontaneously generated within a single kernel item's
// closure); phase 2 re-closes every kernel item using its now-final
// lookahead set to read off the lookaheads for completed (reduce) items.

// laMarker is an internal-only sentinel standing in for "whatever the
// eventual lookahead of the originating kernel item turns out to be". It
// never appears in any CFG's real terminal/non-terminal token-value
// space (see cfg.GrammarBuilder.Grammar's numbering scheme) and is
// stripped before any lookahead set is used to populate the ACTION
// table.
const laMarker pgc.TokType = -1 << 30

type kernelKey struct {
	state int
	rule  int
	dot   int
}

func keyOf(stateID int, i cfg.Item) kernelKey {
	return kernelKey{state: stateID, rule: i.Rule().Serial, dot: i.Dot()}
}

// lookaheads holds the final LALR(1) lookahead set for every kernel item,
// plus the reduce-lookahead sets derived from phase 2, keyed by state.
type lookaheads struct {
	kernel map[kernelKey]*iteratable.Set
	reduce map[int]map[*cfg.Rule]*iteratable.Set // state -> rule -> lookahead
}

func computeLALRLookaheads(g *cfg.Grammar, ga *cfg.LRAnalysis, c *cfsm) *lookaheads {
	la := &lookaheads{kernel: make(map[kernelKey]*iteratable.Set), reduce: make(map[int]map[*cfg.Rule]*iteratable.Set)}
	start, _ := cfg.StartItem(g.Rule(0))
	la.kernel[keyOf(0, start)] = iteratable.New(pgc.EOF)

	type propEdge struct{ from, to kernelKey }
	var propEdges []propEdge
	spontaneous := make(map[kernelKey]*iteratable.Set)

	findKernelItem := func(stateID int, rule *cfg.Rule, dot int) (cfg.Item, bool) {
		for _, k := range c.stateByID(stateID).kernel {
			if k.Rule().Serial == rule.Serial && k.Dot() == dot {
				return k, true
			}
		}
		return cfg.Item{}, false
	}

	for _, s := range c.states {
		for _, k := range s.kernel {
			closure := closureWithLookahead(ga, k, iteratable.New(laMarker))
			for j, jla := range closure {
				X := j.PeekSymbol()
				if X == nil {
					continue // completed items are handled in phase 2
				}
				var targetID int
				found := false
				for _, e := range c.edgesFrom(s.id) {
					if e.label == X {
						targetID, found = e.to, true
						break
					}
				}
				if !found {
					continue
				}
				j2 := j.Advance()
				k2, ok := findKernelItem(targetID, j2.Rule(), j2.Dot())
				if !ok {
					continue
				}
				toKey := keyOf(targetID, k2)
				concrete := jla.Subset(func(x interface{}) bool { return x.(pgc.TokType) != laMarker })
				if !concrete.Empty() {
					if spontaneous[toKey] == nil {
						spontaneous[toKey] = iteratable.New()
					}
					spontaneous[toKey].Union(concrete)
				}
				if jla.Contains(laMarker) {
					propEdges = append(propEdges, propEdge{from: keyOf(s.id, k), to: toKey})
				}
			}
		}
	}
	for key, set := range spontaneous {
		if la.kernel[key] == nil {
			la.kernel[key] = iteratable.New()
		}
		la.kernel[key].Union(set)
	}
	// Fixed-point relaxation over the propagation graph: repeat until no
	// kernel's lookahead set grows any further. A grammar's CFSM is
	// finite, so this always terminates; the bound is loose (no SCC
	// ordering) but correctness does not depend on visitation order.
	changed := true
	for changed {
		changed = false
		for _, pe := range propEdges {
			from := la.kernel[pe.from]
			if from == nil {
				continue
			}
			if la.kernel[pe.to] == nil {
				la.kernel[pe.to] = iteratable.New()
			}
			before := la.kernel[pe.to].Size()
			la.kernel[pe.to].Union(from)
			if la.kernel[pe.to].Size() != before {
				changed = true
			}
		}
	}

	// Phase 2: re-close every kernel item with its resolved lookahead to
	// read off reduce lookaheads for completed items.
	for _, s := range c.states {
		la.reduce[s.id] = make(map[*cfg.Rule]*iteratable.Set)
		for _, k := range s.kernel {
			seed := la.kernel[keyOf(s.id, k)]
			if seed == nil {
				seed = iteratable.New()
			}
			closure := closureWithLookahead(ga, k, seed)
			for j, jla := range closure {
				if j.PeekSymbol() != nil {
					continue
				}
				rule := j.Rule()
				if la.reduce[s.id][rule] == nil {
					la.reduce[s.id][rule] = iteratable.New()
				}
				la.reduce[s.id][rule].Union(jla)
			}
		}
	}
	return la
}

// closureWithLookahead computes the LR(1)-style closure of a single item
// k carrying lookahead set seedLA, returning the accumulated (possibly
// marker-tainted) lookahead set for every item reached — grounded on the
// textbook "closure with explicit lookahead propagation" construction
// (Aho/Lam/Sethi/Ullman, Algorithm 4.63), generalized here to accept
// either a concrete seed (phase 2) or a single marker token standing in
// for "the real set, not yet known" (phase 1).
func closureWithLookahead(ga *cfg.LRAnalysis, k cfg.Item, seedLA *iteratable.Set) map[cfg.Item]*iteratable.Set {
	items := map[cfg.Item]*iteratable.Set{k: seedLA.Copy()}
	worklist := []cfg.Item{k}
	for len(worklist) > 0 {
		j := worklist[0]
		worklist = worklist[1:]
		X := j.PeekSymbol()
		if X == nil || X.IsTerminal() {
			continue
		}
		beta := j.Rule().RHS()[j.Dot()+1:]
		newLA := firstOfSeqWithContext(ga, beta, items[j])
		g := ga.Grammar()
		for _, r := range g.Rules() {
			if r.LHS != X {
				continue
			}
			j2, _ := cfg.StartItem(r)
			existing, seen := items[j2]
			if !seen {
				items[j2] = newLA.Copy()
				worklist = append(worklist, j2)
				continue
			}
			before := existing.Size()
			existing.Union(newLA)
			if existing.Size() != before {
				worklist = append(worklist, j2)
			}
		}
	}
	return items
}

func firstOfSeqWithContext(ga *cfg.LRAnalysis, beta []*cfg.Symbol, ctxLA *iteratable.Set) *iteratable.Set {
	result := iteratable.New()
	nullableAll := true
	for _, s := range beta {
		if s.IsTerminal() {
			result.Add(s.Value)
			nullableAll = false
			break
		}
		result.Union(ga.First(s))
		if !ga.Nullable(s) {
			nullableAll = false
			break
		}
	}
	if nullableAll {
		result.Union(ctxLA)
	}
	return result
}

// --- Table construction --------------------------------------------------

// table mirrors lr/tables.go's Table: a sparse matrix plus a column
// offset, since token values (terminal or synthetic non-terminal) can be
// negative.
type table struct {
	matrix *sparse.IntMatrix
	mincol int
}

func newTable(rowcnt, mincol, maxcol int) *table {
	extent := maxcol - mincol + 1
	return &table{matrix: sparse.NewIntMatrix(rowcnt, extent, sparse.DefaultNullValue), mincol: mincol}
}

func (t *table) col(tok pgc.TokType) int { return int(tok) - t.mincol }

func (t *table) add(state int, tok pgc.TokType, val int32) { t.matrix.Add(state, t.col(tok), val) }
func (t *table) set(state int, tok pgc.TokType, val int32) { t.matrix.Set(state, t.col(tok), val) }
func (t *table) value(state int, tok pgc.TokType) int32    { return t.matrix.Value(state, t.col(tok)) }
func (t *table) values(state int, tok pgc.TokType) (int32, int32) {
	return t.matrix.Values(state, t.col(tok))
}

func tokenExtent(g *cfg.Grammar) (min, max pgc.TokType) {
	g.EachSymbol(func(A *cfg.Symbol) interface{} {
		if A.Value > max {
			max = A.Value
		}
		if A.Value < min {
			min = A.Value
		}
		return nil
	})
	return min, max
}

// buildTables renders the ACTION and GOTO tables for automaton, given
// LALR(1) lookaheads. Grounded on lr/tables.go's buildActionTable and
// BuildGotoTable, generalized from FOLLOW(LHS)-based SLR(1) lookaheads
// to the explicit per-state reduce sets computed above.
func buildTables(g *cfg.Grammar, c *cfsm, la *lookaheads) (*table, *table, error) {
	mintok, maxtok := tokenExtent(g)
	n := len(c.states)
	actionT := newTable(n, int(mintok), int(maxtok))
	gotoT := newTable(n, int(mintok), int(maxtok))

	for _, e := range c.edges {
		gotoT.set(e.from, e.label.Value, int32(e.to))
		if e.label.IsTerminal() {
			entry := shiftAction
			if e.label.Value == pgc.EOF {
				entry = acceptAction
			}
			if a1, a2 := actionT.values(e.from, e.label.Value); a1 != actionT.matrix.NullValue() && a1 != entry {
				return nil, nil, conflictError(g, e.from, e.label.Value, a1, a2, entry)
			}
			actionT.add(e.from, e.label.Value, entry)
		}
	}
	for stateID, byRule := range la.reduce {
		for rule, set := range byRule {
			for _, v := range set.Values() {
				tok := v.(pgc.TokType)
				if a1, a2 := actionT.values(stateID, tok); a1 != actionT.matrix.NullValue() {
					if a1 != int32(rule.Serial) && a2 != int32(rule.Serial) {
						return nil, nil, conflictError(g, stateID, tok, a1, a2, int32(rule.Serial))
					}
				}
				actionT.add(stateID, tok, int32(rule.Serial))
			}
		}
	}
	return actionT, gotoT, nil
}

func conflictError(g *cfg.Grammar, state int, tok pgc.TokType, a1, a2, newVal int32) error {
	return pgc.NewError(pgc.GrammarAmbiguous,
		"grammar %q has a shift/reduce or reduce/reduce conflict in state %d on lookahead %v (actions %s vs %s)",
		g.Name, state, tok, describeAction(a1), describeAction(newVal))
}

func describeAction(v int32) string {
	switch v {
	case shiftAction:
		return "shift"
	case acceptAction:
		return "accept"
	default:
		return fmt.Sprintf("reduce %d", v)
	}
}

// --- Shift/reduce driver --------------------------------------------------

type stackItem struct {
	state int
	sym   *cfg.Symbol
	node  *tree.Node
}

// Parse drives a shift/reduce automaton over input, grounded on
// lr/slr/slr.go's Parser.Parse/reduce.
func (c *Compiled) Parse(input []byte) (*tree.Node, error) {
	toks := scanner.New(input, c.terms.Terminals, c.terms.TerminalOrder())
	start := c.cfg.Rule(0).LHS
	stack := []stackItem{{state: 0}}
	tok := toks.NextToken()
	for {
		// Grammars built through the combinator desugarer never carry an
		// explicit end-of-input terminal (see grammar/desugar.go's KEnd
		// handling), so end-of-input is detected structurally here rather
		// than via an ACTION-table accept entry: the whole input has been
		// reduced to the start symbol and the scanner itself is exhausted.
		if len(stack) == 2 && stack[1].sym == start && tok.TokType() == pgc.EOF {
			return stack[1].node, nil
		}
		top := stack[len(stack)-1]
		action := c.action.value(top.state, tok.TokType())
		if action == c.action.matrix.NullValue() {
			return nil, pgc.ParseFailure(tok.Span().From(), nil)
		}
		switch {
		case action == acceptAction:
			return stack[len(stack)-1].node, nil
		case action == shiftAction:
			next := int(c.goto_.value(top.state, tok.TokType()))
			sym, _ := c.cfg.Terminal(tok.TokType())
			stack = append(stack, stackItem{state: next, sym: sym, node: tree.Leaf(symbolName(sym), tok)})
			tok = toks.NextToken()
		default:
			rule := c.cfg.Rule(int(action))
			var err error
			stack, err = c.reduce(stack, rule)
			if err != nil {
				return nil, err
			}
		}
	}
}

func symbolName(s *cfg.Symbol) string {
	if s == nil {
		return "?"
	}
	return s.Name
}

func (c *Compiled) reduce(stack []stackItem, rule *cfg.Rule) ([]stackItem, error) {
	n := len(rule.RHS())
	handle := stack[len(stack)-n:]
	children := make([]*tree.Node, 0, n)
	for _, h := range handle {
		if h.node != tree.Ignored {
			children = append(children, h.node)
		}
	}
	stack = stack[:len(stack)-n]
	top := stack[len(stack)-1]
	node := tree.Reduce(rule.LHS.Name, children)
	if ann := c.terms.Annotations.Get(rule.Serial); ann != nil {
		if err := applyAnnotation(ann, node, children); err != nil {
			return nil, err
		}
		if ann.Ignore {
			node = tree.Ignored
		}
	}
	next := int(c.goto_.value(top.state, rule.LHS.Value))
	stack = append(stack, stackItem{state: next, sym: rule.LHS, node: node})
	return stack, nil
}

// applyAnnotation runs ann's Attr/Action against node's reduced children.
// A false Attr predicate, or an Action returning an error, is a hard parse
// failure here: the shift/reduce driver has already committed to this
// handle, so there is no alternative derivation to retry.
func applyAnnotation(ann *cfg.Annotation, node *tree.Node, children []*tree.Node) error {
	vals := make([]interface{}, len(children))
	for i, ch := range children {
		vals[i] = childValue(ch)
	}
	if ann.Attr != nil && !ann.Attr(vals) {
		return pgc.NewError(pgc.ParseFailed, "Attr rejected reduction of %s", node.Symbol)
	}
	if ann.Action != nil {
		v, err := ann.Action(vals)
		if err != nil {
			return pgc.NewError(pgc.ParseFailed, "Action rejected reduction of %s: %v", node.Symbol, err)
		}
		node.WithValue(tree.KUser, v)
	}
	return nil
}

func childValue(n *tree.Node) interface{} {
	if n.Kind == tree.KToken {
		if tok, ok := n.Value.(pgc.Token); ok {
			return tok.Lexeme()
		}
	}
	return n.Value
}
