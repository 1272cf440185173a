package sppf

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/

import (
	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/grammar/cfg"
)

// RuleNode is a node encountered while walking a parse forest: either a
// terminal's SymbolNode, or a reduced non-terminal together with the
// children of whichever alternative the active Pruner selected.
type RuleNode struct {
	symbol *SymbolNode
	Value  interface{} // set by TopDown as it unwinds, for the caller's use
}

// Symbol returns the grammar symbol this node refers to.
func (rnode *RuleNode) Symbol() *cfg.Symbol {
	return rnode.symbol.Symbol
}

// Extent returns the input span this node covers.
func (rnode *RuleNode) Extent() pgc.Span {
	return rnode.symbol.Extent
}

// RHS returns the rule serial and child nodes of whichever alternative
// derivation the forest's active Pruner selects for sym. Returns
// (-1, nil) for a terminal or an unreduced symbol.
func (c *Cursor) RHS(sym *SymbolNode) (int, []*RuleNode) {
	rhs := c.forest.disambiguate(sym, c.pruner)
	if rhs == nil {
		return -1, nil
	}
	edges, ok := c.forest.andEdges[rhs]
	if !ok {
		return rhs.rule, nil
	}
	vals := edges.Values()
	out := make([]*RuleNode, len(vals))
	for i, v := range vals {
		out[i] = &RuleNode{symbol: v.(andEdge).toSym}
	}
	return rhs.rule, out
}

// Pruner resolves which packed alternative to follow at an ambiguous
// symbol node. Returning true vetoes that alternative.
type Pruner interface {
	prune(sym *SymbolNode, rhs *rhsNode) bool
}

type dontCarePruner struct{}

func (dontCarePruner) prune(*SymbolNode, *rhsNode) bool { return false }

// DontCarePruner always accepts the first alternative considered; the
// default when a Cursor is created without an explicit Pruner.
var DontCarePruner Pruner = dontCarePruner{}

func (f *Forest) disambiguate(sym *SymbolNode, pruner Pruner) *rhsNode {
	choices, ok := f.orEdges[sym]
	if !ok {
		return nil
	}
	if choices.Size() == 1 {
		return choices.First().(orEdge).toRHS
	}
	match := choices.FirstMatch(func(el interface{}) bool {
		return !pruner.prune(sym, el.(orEdge).toRHS)
	})
	if match != nil {
		return match.(orEdge).toRHS
	}
	return nil
}

// Cursor is a movable position within a parse forest for top-down
// traversal, abstracting the underlying and-or structure into a plain
// tree view resolved by a Pruner.
type Cursor struct {
	forest  *Forest
	current *RuleNode
	pruner  Pruner
	stack   []childIterator
}

type childIterator func() (*SymbolNode, childIterator)

func nullChildIterator() (*SymbolNode, childIterator) { return nil, nullChildIterator }

func (f *Forest) children(rhs *rhsNode) (childIterator, bool) {
	edges, ok := f.andEdges[rhs]
	if !ok {
		return nullChildIterator, false
	}
	edges.IterateOnce()
	var it childIterator
	it = func() (*SymbolNode, childIterator) {
		if edges.Next() {
			return edges.Item().(andEdge).toSym, it
		}
		return nil, nullChildIterator
	}
	return it, true
}

// SetCursor positions a Cursor at rnode (the forest's root if nil),
// using pruner to resolve ambiguities (DontCarePruner if nil).
func (f *Forest) SetCursor(rnode *RuleNode, pruner Pruner) *Cursor {
	if rnode == nil {
		if rnode = f.Root(); rnode == nil {
			return nil
		}
	}
	if pruner == nil {
		pruner = DontCarePruner
	}
	return &Cursor{forest: f, current: rnode, pruner: pruner, stack: make([]childIterator, 0, 32)}
}

// CursorFor positions a Cursor directly at sym, the same way SetCursor
// does at the forest's root. Used by a caller that needs to resolve a
// value at an arbitrary forest position below the root — for instance a
// GLR driver consulting a reduction's semantic predicate before deciding
// whether to commit to it, well before the whole forest is flattened.
func (f *Forest) CursorFor(sym *SymbolNode, pruner Pruner) *Cursor {
	if pruner == nil {
		pruner = DontCarePruner
	}
	return &Cursor{forest: f, current: &RuleNode{symbol: sym}, pruner: pruner, stack: make([]childIterator, 0, 32)}
}

// Up moves to the parent of the current node, if any.
func (c *Cursor) Up() (*RuleNode, bool) {
	if parent, ok := c.forest.parent[c.current.symbol]; ok {
		c.current.symbol = parent
		c.stack = c.stack[:len(c.stack)-1]
		return c.current, true
	}
	return c.current, false
}

// Down moves to the first (leftmost) child of the current node, if any.
// dir is not consulted.
func (c *Cursor) Down(dir Direction) (*RuleNode, bool) {
	rhs := c.forest.disambiguate(c.current.symbol, c.pruner)
	if rhs == nil {
		return c.current, false
	}
	if it, ok := c.forest.children(rhs); ok {
		c.stack = append(c.stack, it)
		if child, next := it(); child != nil {
			c.current.symbol = child
			c.stack[len(c.stack)-1] = next
			return c.current, true
		}
	}
	return c.current, false
}

// Sibling moves to the next sibling of the current node, if any.
func (c *Cursor) Sibling() (*RuleNode, bool) {
	it := c.stack[len(c.stack)-1]
	sym, next := it()
	if sym == nil {
		return c.current, false
	}
	c.current.symbol = sym
	c.stack[len(c.stack)-1] = next
	return c.current, true
}

// TopDown traverses the forest rooted at the cursor's current node,
// invoking listener for every node visited, and returns the value
// produced by the root's ExitRule/Terminal call.
func (c *Cursor) TopDown(listener Listener, dir Direction, mode Breakmode) interface{} {
	return c.traverse(listener, dir, mode, 0)
}

func (c *Cursor) traverse(listener Listener, dir Direction, mode Breakmode, level int) interface{} {
	sym := c.current.Symbol()
	if sym.IsTerminal() {
		ctxt := RuleCtxt{Extent: c.current.symbol.Extent, Level: level + 1, RuleIndex: -1}
		return listener.Terminal(sym, c.current.symbol.tok, ctxt)
	}
	ruleno, rhsNodes := c.RHS(c.current.symbol)
	attrs := listener.MakeAttrs(sym)
	ctxt := RuleCtxt{Extent: c.current.symbol.Extent, Level: level, RuleIndex: ruleno, Attrs: attrs}
	cont := listener.EnterRule(sym, rhsNodes, ctxt)
	if cont || mode == Continue {
		i := 0
		if dir == RtoL {
			i = len(rhsNodes) - 1
		}
		if _, ok := c.Down(dir); ok {
			for ok := true; ok; _, ok = c.Sibling() {
				v := c.traverse(listener, dir, mode, level+1)
				rhsNodes[i].Value = v
				i += int(dir)
			}
			c.Up()
		}
	}
	return listener.ExitRule(sym, rhsNodes, ctxt)
}

// Direction selects left-to-right or right-to-left child traversal.
type Direction int

const (
	LtoR Direction = 1
	RtoL Direction = -1
)

// Breakmode controls whether EnterRule returning false stops descent.
type Breakmode int

const (
	Continue Breakmode = iota
	Break
)

// Listener receives callbacks as a Cursor walks a parse forest.
type Listener interface {
	EnterRule(sym *cfg.Symbol, rhs []*RuleNode, ctxt RuleCtxt) bool
	ExitRule(sym *cfg.Symbol, rhs []*RuleNode, ctxt RuleCtxt) interface{}
	Terminal(sym *cfg.Symbol, tok pgc.Token, ctxt RuleCtxt) interface{}
	MakeAttrs(sym *cfg.Symbol) interface{}
}

// RuleCtxt carries contextual information passed to Listener callbacks.
type RuleCtxt struct {
	Extent    pgc.Span
	Level     int
	RuleIndex int
	Attrs     interface{}
}
