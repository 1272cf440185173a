/*
Package glr implements the GLR backend (component H): a
Tomita-style generalized LR parser that explores every shift and
every reduction a plain LR(0) characteristic finite state machine
offers, instead of failing or picking one the way lalr does at a
shift/reduce or reduce/reduce conflict. Concurrent parses share a
graph-structured stack (GSS) and their results are combined into a
Shared Packed Parse Forest (package sppf); ambiguous input yields a
forest with more than one surviving derivation rather than an error,
unless the caller asks for a unique tree.

The CFSM (LR(0) item sets, closure/goto) is built with the exact same
shared primitives backend/lalr uses — cfg.LRAnalysis.Closure/GotoSet/
ClosureSet — since an LR(0) automaton is the common substrate both
backends compile against; this package never needs lookahead, because
ambiguity is resolved by forking the stack, not by prediction.

The graph-structured stack generalizes the single-parent frame chain
in runtime/memframe.go's MemoryFrameStack to a parent *set*: a stack
node that is reached via more than one derivation keeps one parent
edge per derivation rather than being duplicated, which is what lets
the GSS stay linear in the common (unambiguous) case instead of
branching into a full tree of parallel stacks. Stack tops are merged
through a frontier map keyed by CFSM state, one map per input position;
cnf/structhash (the library backend/packrat uses for its memo keys) only
labels merges in trace messages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package glr

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/backend/scanner"
	"github.com/pgcombinator/pgc/grammar"
	"github.com/pgcombinator/pgc/grammar/cfg"
	"github.com/pgcombinator/pgc/internal/iteratable"
	"github.com/pgcombinator/pgc/sppf"
	"github.com/pgcombinator/pgc/tree"
)

func init() {
	backend.Register(&Backend{})
}

// tracer traces with key 'pgc.glr'.
func tracer() tracing.Trace {
	return tracing.Select("pgc.glr")
}

// Backend implements backend.Backend for generalized LR parsing.
type Backend struct{}

// ID returns backend.GLR.
func (*Backend) ID() backend.ID { return backend.GLR }

// Compile desugars g and builds its LR(0) CFSM. Unlike lalr.Backend,
// conflicts are never a compile error here — they are exactly what
// this backend exists to explore at parse time.
func (*Backend) Compile(g *grammar.Grammar) (backend.CompiledGrammar, error) {
	res, err := grammar.Desugar(g)
	if err != nil {
		return nil, err
	}
	ga := cfg.Analysis(res.CFG)
	c := buildCFSM(res.CFG, ga)
	return &Compiled{cfg: res.CFG, terms: res, cfsm: c}, nil
}

// Compiled is a grammar compiled for the GLR backend.
type Compiled struct {
	cfg   *cfg.Grammar
	terms *grammar.DesugarResult
	cfsm  *cfsm
	// Unique, when true, makes Parse fail with AMBIGUOUS_RESULT instead
	// of silently picking the forest's first surviving derivation.
	Unique bool
}

// CFG exposes the desugared grammar for backend.Compile's introspection
// hook.
func (c *Compiled) CFG() interface{} { return c.cfg }

// Free releases nothing; the CFSM is plain Go memory.
func (*Compiled) Free() {}

// --- LR(0) CFSM construction -------------------------------------------

type state struct {
	id      int
	items   *iteratable.Set
	shifts  map[pgc.TokType]int
	gotos   map[pgc.TokType]int
	reduces []*cfg.Rule
	accepts bool
}

type cfsm struct {
	states []*state
	edges  []edge
}

type edge struct {
	from, to int
	label    *cfg.Symbol
}

func (c *cfsm) stateByID(id int) *state { return c.states[id] }

func (c *cfsm) findByItems(items *iteratable.Set) *state {
	for _, s := range c.states {
		if s.items.Equals(items) {
			return s
		}
	}
	return nil
}

func (c *cfsm) addState(items *iteratable.Set) (*state, bool) {
	if s := c.findByItems(items); s != nil {
		return s, false
	}
	s := &state{
		id:     len(c.states),
		items:  items,
		shifts: make(map[pgc.TokType]int),
		gotos:  make(map[pgc.TokType]int),
	}
	c.states = append(c.states, s)
	return s, true
}

// buildCFSM constructs the LR(0) characteristic finite state machine,
// then classifies every state's completed items as reduces and every
// outgoing edge as a shift (terminal label) or a goto (non-terminal
// label) — grounded the same way backend/lalr's buildCFSM is, on
// lr/tables.go's TableGenerator, but without any lookahead pass.
func buildCFSM(g *cfg.Grammar, ga *cfg.LRAnalysis) *cfsm {
	c := &cfsm{}
	startRule := g.Rule(0)
	start, _ := cfg.StartItem(startRule)
	s0, _ := c.addState(ga.Closure(start))
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
			target, isNew := c.addState(closed)
			c.edges = append(c.edges, edge{from: s.id, to: target.id, label: A})
			if A.IsTerminal() {
				s.shifts[A.TokenType()] = target.id
			} else {
				s.gotos[A.TokenType()] = target.id
			}
			if isNew {
				worklist = append(worklist, target)
			}
			return nil
		})
		for _, v := range s.items.Values() {
			it := v.(cfg.Item)
			if it.PeekSymbol() == nil {
				s.reduces = append(s.reduces, it.Rule())
				if it.Rule().Serial == startRule.Serial {
					s.accepts = true
				}
			}
		}
	}
	return c
}

// --- Graph-structured stack ---------------------------------------------

// gssNode is one node of the graph-structured stack: a CFSM state
// reached by one or more derivations, each recorded as a parent edge
// rather than as a duplicate node. tree is the forest symbol node
// produced on the edge that leads into this node (nil for the root).
type gssNode struct {
	state   int
	tree    *sppf.SymbolNode
	parents []*gssNode
}

func (n *gssNode) addParent(p *gssNode) bool {
	for _, existing := range n.parents {
		if existing == p {
			return false
		}
	}
	n.parents = append(n.parents, p)
	return true
}

// popPath is one way of popping k symbols off the GSS starting at a
// node: the ancestor reached after popping, and the symbol nodes
// collected along the way, oldest (leftmost) first. A node with more
// than one parent yields more than one popPath, one per derivation —
// this is how ambiguity in the stack's history turns into alternative
// reductions.
type popPath struct {
	ancestor *gssNode
	children []*sppf.SymbolNode
}

func popPaths(n *gssNode, k int) []popPath {
	if k == 0 {
		return []popPath{{ancestor: n}}
	}
	var out []popPath
	for _, p := range n.parents {
		for _, rest := range popPaths(p, k-1) {
			children := make([]*sppf.SymbolNode, len(rest.children)+1)
			copy(children, rest.children)
			children[len(rest.children)] = n.tree
			out = append(out, popPath{ancestor: rest.ancestor, children: children})
		}
	}
	return out
}

// mergeKey hashes a (state, tok-position) pair for logging/diagnostics,
// mirroring backend/packrat's memoKey idiom.
func mergeKey(state int, pos uint64) string {
	h, err := structhash.Hash(struct {
		State int
		Pos   uint64
	}{state, pos}, 1)
	if err != nil {
		return fmt.Sprintf("%d@%d", state, pos)
	}
	return h
}

// --- Driving the parse ---------------------------------------------------

// Parse drives the GLR algorithm to completion over input. It returns
// the single surviving parse tree if the grammar turned out to be
// unambiguous on this input, the forest's first surviving derivation if
// c.Unique is false and more than one derivation survived, or
// AMBIGUOUS_RESULT if c.Unique is true and more than one did.
func (c *Compiled) Parse(input []byte) (*tree.Node, error) {
	toks := scanner.New(input, c.terms.Terminals, c.terms.TerminalOrder())
	forest := sppf.NewForest()
	root := &gssNode{state: 0}
	frontier := map[int]*gssNode{0: root}
	tok := toks.NextToken()
	for {
		c.saturateReductions(frontier, forest, tok)
		if tok.TokType() == pgc.EOF {
			for _, n := range frontier {
				if c.cfsm.stateByID(n.state).accepts {
					if c.Unique && forest.Ambiguous() {
						return nil, pgc.NewError(pgc.AmbiguousResult,
							"more than one derivation survives for this input")
					}
					return sppfToTree(forest, c.terms), nil
				}
			}
			return nil, pgc.ParseFailure(tok.Span().From(), nil)
		}
		next := c.shift(frontier, forest, tok)
		if len(next) == 0 {
			if gconf.GetBool("panic-on-parser-stuck") {
				panic(fmt.Sprintf("glr-parser is stuck: every stack top died at byte %d with no shift possible", tok.Span().From()))
			}
			return nil, pgc.ParseFailure(tok.Span().From(), nil)
		}
		frontier = next
		tok = toks.NextToken()
	}
}

// saturateReductions applies every reduction reachable from frontier
// under the current lookahead tok, merging newly produced stack tops
// back into frontier, until no more reductions fire. Reductions are
// tried longest-rule-first at each pass so a state is not prematurely
// considered exhausted while a longer competing reduction is still
// pending — matching the "reduce before shift, longest reduction first"
// scheduling a correct GLR driver needs to avoid missing a valid parse.
func (c *Compiled) saturateReductions(frontier map[int]*gssNode, forest *sppf.Forest, tok pgc.Token) {
	for {
		changed := false
		nodes := make([]*gssNode, 0, len(frontier))
		for _, n := range frontier {
			nodes = append(nodes, n)
		}
		for _, n := range nodes {
			st := c.cfsm.stateByID(n.state)
			rules := append([]*cfg.Rule(nil), st.reduces...)
			sortRulesByLengthDesc(rules)
			for _, rule := range rules {
				ann := c.terms.Annotations.Get(rule.Serial)
				for _, path := range popPaths(n, len(rule.RHS())) {
					if ann != nil && ann.Attr != nil && !ann.Attr(c.attrValues(forest, path.children)) {
						// The predicate rejects this particular derivation;
						// treat the reduce action as if it never fired for
						// it, leaving any other surviving derivation alone.
						continue
					}
					ancestorState := c.cfsm.stateByID(path.ancestor.state)
					target, ok := ancestorState.gotos[rule.LHS.TokenType()]
					if !ok {
						continue
					}
					extent := extentOf(path.children, tok)
					sym := forest.AddReduction(rule.LHS, rule.Serial, extent, path.children)
					if existing, ok := frontier[target]; ok {
						if existing.addParent(path.ancestor) {
							tracer().Debugf("merging stack top at %s", mergeKey(target, tok.Span().From()))
							changed = true
						}
					} else {
						frontier[target] = &gssNode{state: target, tree: sym, parents: []*gssNode{path.ancestor}}
						changed = true
					}
				}
			}
		}
		if !changed {
			return
		}
	}
}

func sortRulesByLengthDesc(rules []*cfg.Rule) {
	for i := 1; i < len(rules); i++ {
		for j := i; j > 0 && len(rules[j-1].RHS()) < len(rules[j].RHS()); j-- {
			rules[j-1], rules[j] = rules[j], rules[j-1]
		}
	}
}

// attrValues resolves the semantic value of each of children, for
// consultation by an Attr predicate before a reduction is committed.
// Each child is flattened through the same canonical (first-alternative)
// rule a fully unambiguous tree build would use, so a predicate sees the
// same values it would see once the forest collapses to a single tree.
func (c *Compiled) attrValues(forest *sppf.Forest, children []*sppf.SymbolNode) []interface{} {
	vals := make([]interface{}, len(children))
	for i, ch := range children {
		vals[i] = c.resolveValue(forest, ch)
	}
	return vals
}

func (c *Compiled) resolveValue(forest *sppf.Forest, sym *sppf.SymbolNode) interface{} {
	cur := forest.CursorFor(sym, sppf.DontCarePruner)
	l := &treeBuildingListener{terms: c.terms}
	v := cur.TopDown(l, sppf.LtoR, sppf.Continue)
	if n, ok := v.(*tree.Node); ok {
		return childValue(n)
	}
	return nil
}

// childValue extracts the semantic value an Action/Attr callback sees
// for one child, mirroring backend/llk's convention of handing Action
// the matched lexeme rather than the raw token.
func childValue(n *tree.Node) interface{} {
	if n == nil {
		return nil
	}
	if n.Kind == tree.KToken {
		if tok, ok := n.Value.(pgc.Token); ok {
			return tok.Lexeme()
		}
	}
	return n.Value
}

func extentOf(children []*sppf.SymbolNode, tok pgc.Token) pgc.Span {
	if len(children) == 0 {
		at := tok.Span().From()
		return pgc.Span{at, at}
	}
	from := children[0].Extent.From()
	to := children[len(children)-1].Extent.To()
	return pgc.Span{from, to}
}

func (c *Compiled) shift(frontier map[int]*gssNode, forest *sppf.Forest, tok pgc.Token) map[int]*gssNode {
	next := make(map[int]*gssNode)
	sym, _ := c.cfg.Terminal(tok.TokType())
	for _, n := range frontier {
		st := c.cfsm.stateByID(n.state)
		target, ok := st.shifts[tok.TokType()]
		if !ok {
			continue
		}
		leaf := forest.AddTerminal(sym, tok)
		if existing, ok := next[target]; ok {
			if existing.addParent(n) {
				tracer().Debugf("merging shifted stack top at %s", mergeKey(target, tok.Span().To()))
			}
		} else {
			next[target] = &gssNode{state: target, tree: leaf, parents: []*gssNode{n}}
		}
	}
	return next
}

// sppfToTree lowers a (possibly still-ambiguous) forest into a single
// tree.Node by walking it with DontCarePruner, which always follows the
// first alternative packed at any or-node it meets. Parse does not
// return the forest, so the pruned alternatives are not reachable
// through it.
func sppfToTree(forest *sppf.Forest, terms *grammar.DesugarResult) *tree.Node {
	root := forest.Root()
	if root == nil {
		return nil
	}
	cur := forest.SetCursor(root, sppf.DontCarePruner)
	l := &treeBuildingListener{terms: terms}
	v := cur.TopDown(l, sppf.LtoR, sppf.Continue)
	if n, ok := v.(*tree.Node); ok {
		return n
	}
	return nil
}

// treeBuildingListener flattens a pruned forest walk into a tree.Node,
// the same shape every other backend returns from Parse, applying each
// reduced rule's Action/Attr/Ignore annotation (looked up by ctxt.
// RuleIndex, the rule serial the forest recorded the reduction under) as
// it unwinds.
type treeBuildingListener struct {
	terms *grammar.DesugarResult
}

func (*treeBuildingListener) MakeAttrs(*cfg.Symbol) interface{} { return nil }

func (*treeBuildingListener) EnterRule(*cfg.Symbol, []*sppf.RuleNode, sppf.RuleCtxt) bool {
	return true
}

func (l *treeBuildingListener) ExitRule(sym *cfg.Symbol, rhs []*sppf.RuleNode, ctxt sppf.RuleCtxt) interface{} {
	children := make([]*tree.Node, 0, len(rhs))
	for _, r := range rhs {
		if n, ok := r.Value.(*tree.Node); ok && n != tree.Ignored {
			children = append(children, n)
		}
	}
	node := tree.Reduce(sym.Name, children)
	if ann := l.terms.Annotations.Get(ctxt.RuleIndex); ann != nil {
		if ann.Action != nil {
			vals := make([]interface{}, len(children))
			for i, c := range children {
				vals[i] = childValue(c)
			}
			if v, err := ann.Action(vals); err == nil {
				node.WithValue(tree.KUser, v)
			}
		}
		if ann.Ignore {
			return tree.Ignored
		}
	}
	return node
}

func (*treeBuildingListener) Terminal(sym *cfg.Symbol, tok pgc.Token, ctxt sppf.RuleCtxt) interface{} {
	return tree.Leaf(sym.Name, tok)
}
