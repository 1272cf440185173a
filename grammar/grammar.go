package grammar

import (
	"fmt"

	"github.com/pgcombinator/pgc/arena"
)

// Grammar owns a user-IR node graph for its entire lifetime, built up by
// calling its combinator constructors. After Compile it additionally owns
// a backend object and, for introspection, a normalized CFG — both
// released by Free. The node graph itself is immutable once Compile has
// run.
type Grammar struct {
	Name string

	nodes []*Node
	root  NodeID

	unbound map[NodeID]struct{} // Indirects awaiting Bind

	a *arena.Arena

	Compiled bool
	Backend  int // backend.ID, kept untyped here to avoid an import cycle
	State    interface{}
	CFG      interface{} // *cfg.Grammar after compile, introspection only
}

// New creates an empty grammar. under may be nil to use the arena package's
// default heap-backed allocator.
func New(name string, under arena.Allocator) *Grammar {
	return &Grammar{
		Name:    name,
		root:    NoNode,
		unbound: make(map[NodeID]struct{}),
		a:       arena.New(under),
	}
}

// Arena returns the grammar's arena. Node storage is not allocated from it.
func (g *Grammar) Arena() *arena.Arena { return g.a }

// Root returns the grammar's designated start node.
func (g *Grammar) Root() NodeID { return g.root }

// SetRoot designates n as the grammar's start symbol.
func (g *Grammar) SetRoot(n NodeID) { g.root = n }

// Node returns the node stored at id. Panics on an out-of-range id, which
// would indicate a bug in this package or a foreign NodeID from another
// grammar — the two must never be mixed.
func (g *Grammar) Node(id NodeID) *Node {
	return g.nodes[id]
}

// NumNodes returns the number of nodes allocated so far.
func (g *Grammar) NumNodes() int { return len(g.nodes) }

func (g *Grammar) alloc(n *Node) NodeID {
	id := NodeID(len(g.nodes))
	n.ID = id
	g.nodes = append(g.nodes, n)
	tracer().Debugf("grammar %q: allocated node %d = %s", g.Name, id, n)
	return id
}

// --- Terminal constructors --------------------------------------------

// Token matches the literal byte string lit.
func (g *Grammar) Token(lit string) NodeID {
	return g.alloc(&Node{Kind: KToken, Literal: []byte(lit)})
}

// CharSet matches a single byte drawn from set.
func (g *Grammar) CharSet(set CharSet) NodeID {
	return g.alloc(&Node{Kind: KCharSet, Set: set})
}

// Range is a convenience combinator building a single-range CharSet.
func (g *Grammar) Range(lo, hi byte) NodeID {
	var set CharSet
	set.SetRange(lo, hi)
	return g.CharSet(set)
}

// Anything matches any single byte.
func (g *Grammar) Anything() NodeID {
	return g.alloc(&Node{Kind: KAnything})
}

// End matches only at end of input.
func (g *Grammar) End() NodeID {
	return g.alloc(&Node{Kind: KEnd})
}

// Nothing never matches.
func (g *Grammar) Nothing() NodeID {
	return g.alloc(&Node{Kind: KNothing})
}

// Epsilon matches the empty string.
func (g *Grammar) Epsilon() NodeID {
	return g.alloc(&Node{Kind: KEpsilon})
}

// --- Combinators --------------------------------------------------------

// Seq matches children in order.
func (g *Grammar) Seq(children ...NodeID) NodeID {
	return g.alloc(&Node{Kind: KSequence, Children: append([]NodeID{}, children...)})
}

// Choice tries alternatives in order. The packrat backend takes the first
// that succeeds (ordered PEG choice); CFG backends treat alternatives as
// equal productions.
func (g *Grammar) Choice(alts ...NodeID) NodeID {
	return g.alloc(&Node{Kind: KChoice, Children: append([]NodeID{}, alts...)})
}

// Optional matches zero or one occurrence of child.
func (g *Grammar) Optional(child NodeID) NodeID {
	return g.alloc(&Node{Kind: KOptional, Child: child})
}

// Many matches zero or more occurrences of child, greedily.
func (g *Grammar) Many(child NodeID) NodeID {
	return g.alloc(&Node{Kind: KMany, Child: child})
}

// Many1 matches one or more occurrences of child, greedily.
func (g *Grammar) Many1(child NodeID) NodeID {
	return g.alloc(&Node{Kind: KMany1, Child: child})
}

// SepBy matches zero or more occurrences of item separated by sep.
func (g *Grammar) SepBy(item, sep NodeID) NodeID {
	return g.alloc(&Node{Kind: KSepBy, Child: item, Sep: sep})
}

// SepBy1 matches one or more occurrences of item separated by sep.
func (g *Grammar) SepBy1(item, sep NodeID) NodeID {
	return g.alloc(&Node{Kind: KSepBy1, Child: item, Sep: sep})
}

// NotFollowedBy is zero-width PEG negative lookahead: it succeeds,
// consuming no input, iff child fails. Rejected at compile time by CFG
// backends (§4.B/§7: PEG_ONLY_CONSTRUCT_IN_CFG).
func (g *Grammar) NotFollowedBy(child NodeID) NodeID {
	return g.alloc(&Node{Kind: KNotFollowedBy, Child: child})
}

// FollowedBy is zero-width PEG positive lookahead: it succeeds, consuming
// no input, iff child succeeds.
func (g *Grammar) FollowedBy(child NodeID) NodeID {
	return g.alloc(&Node{Kind: KFollowedBy, Child: child})
}

// Indirect creates a named, late-bindable placeholder, enabling recursive
// grammars. It must be bound exactly once via Bind before Compile.
func (g *Grammar) Indirect(name string) NodeID {
	id := g.alloc(&Node{Kind: KIndirect, Name: name, Bound: NoNode})
	g.unbound[id] = struct{}{}
	return id
}

// Bind resolves a previously created Indirect to target. Binding an
// Indirect a second time, or binding an id that isn't an unbound
// Indirect, is a programmer error and panics — grammars are built by a
// single author in a single pass, unlike parse-time errors which are
// reported through the Error type.
func (g *Grammar) Bind(indirect, target NodeID) {
	n := g.Node(indirect)
	if n.Kind != KIndirect {
		panic(fmt.Sprintf("grammar: Bind called on non-Indirect node %v", n))
	}
	if n.Bound != NoNode {
		panic(fmt.Sprintf("grammar: Indirect %q already bound", n.Name))
	}
	n.Bound = target
	delete(g.unbound, indirect)
}

// UnboundIndirects returns the names of Indirect nodes created but never
// bound. A non-empty result at Compile time is an UNBOUND_INDIRECT error.
func (g *Grammar) UnboundIndirects() []string {
	var names []string
	for id := range g.unbound {
		names = append(names, g.Node(id).Name)
	}
	return names
}

// --- Semantic annotations ------------------------------------------------

// Action wraps child with a semantic function: on a successful match of
// child, f is invoked with the child's parse-tree value and may either
// transform it or reject the whole match by returning an error.
func (g *Grammar) Action(child NodeID, f ActionFunc) NodeID {
	return g.alloc(&Node{Kind: KAction, Child: child, Action: f})
}

// Attr wraps child with a boolean predicate over its matched value. A
// false result rejects the match.
func (g *Grammar) Attr(child NodeID, f AttrFunc) NodeID {
	return g.alloc(&Node{Kind: KAttr, Child: child, Attr: f})
}

// Ignore wraps child so that its result is discarded by enclosing
// Sequence builders (it still must match for the sequence to succeed).
func (g *Grammar) Ignore(child NodeID) NodeID {
	return g.alloc(&Node{Kind: KIgnore, Child: child})
}

// WithUserData attaches an opaque user pointer to node id and returns id
// for chaining.
func (g *Grammar) WithUserData(id NodeID, data interface{}) NodeID {
	g.Node(id).UserData = data
	return id
}

// Free releases the grammar's arena, invalidating every NodeID and every
// parse tree produced by it.
func (g *Grammar) Free() {
	g.a.Destroy()
}
