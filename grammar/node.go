/*
Package grammar implements the user-facing combinator graph ("user IR"):
an immutable tree of grammar nodes, held in an ordinary Go slice, built by client code and
later desugared into a normalized context-free grammar (see grammar/cfg)
for the table-driven backends, or interpreted directly by the packrat
backend.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package grammar

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pgc.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("pgc.grammar")
}

// Kind discriminates the variants of a grammar node, exhaustively listed so
// consumers can dispatch with a plain switch instead of a virtual table —
// this keeps node storage dense and makes structural equality cheap.
type Kind uint8

const (
	KToken Kind = iota
	KCharSet
	KAnything
	KEnd
	KNothing
	KEpsilon
	KSequence
	KChoice
	KOptional
	KMany
	KMany1
	KSepBy
	KSepBy1
	KNotFollowedBy
	KFollowedBy
	KIndirect
	KAction
	KAttr
	KIgnore
)

func (k Kind) String() string {
	switch k {
	case KToken:
		return "Token"
	case KCharSet:
		return "CharSet"
	case KAnything:
		return "Anything"
	case KEnd:
		return "End"
	case KNothing:
		return "Nothing"
	case KEpsilon:
		return "Epsilon"
	case KSequence:
		return "Sequence"
	case KChoice:
		return "Choice"
	case KOptional:
		return "Optional"
	case KMany:
		return "Many"
	case KMany1:
		return "Many1"
	case KSepBy:
		return "SepBy"
	case KSepBy1:
		return "SepBy1"
	case KNotFollowedBy:
		return "NotFollowedBy"
	case KFollowedBy:
		return "FollowedBy"
	case KIndirect:
		return "Indirect"
	case KAction:
		return "Action"
	case KAttr:
		return "Attr"
	case KIgnore:
		return "Ignore"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// NodeID identifies a grammar node by its slot in the grammar's node slice, not by
// pointer — this keeps memoization and GSS keys stable and comparable
// without hashing addresses (see design notes in SPEC_FULL.md §4.B/§9).
type NodeID int32

// NoNode is the identity of "no node", used for unbound Indirects and
// absent optional children.
const NoNode NodeID = -1

// CharSet is a 256-bit bitmap over byte values.
type CharSet [4]uint64

// Set marks byte b as a member of the set.
func (c *CharSet) Set(b byte) {
	c[b/64] |= 1 << (b % 64)
}

// SetRange marks every byte in [lo,hi] (inclusive) as a member.
func (c *CharSet) SetRange(lo, hi byte) {
	for b := int(lo); b <= int(hi); b++ {
		c.Set(byte(b))
	}
}

// Contains reports whether b is a member of the set.
func (c CharSet) Contains(b byte) bool {
	return c[b/64]&(1<<(b%64)) != 0
}

// ActionFunc transforms a successfully matched child's value. Returning a
// non-nil error rejects the whole match (the Action node's match becomes a
// failure), mirroring the PEG semantic-action-can-reject rule in §4.E.
type ActionFunc func(child interface{}) (interface{}, error)

// AttrFunc is a boolean predicate evaluated on a child's matched value. A
// false result turns the match into a failure.
type AttrFunc func(child interface{}) bool

// Node is a tagged variant over every grammar-node kind. Only the fields
// relevant to Kind are populated; this matches the teacher corpus's habit
// of dispatching via a switch over a Kind enum rather than per-node
// interfaces with virtual dispatch.
type Node struct {
	ID   NodeID
	Kind Kind

	Literal []byte  // KToken
	Set     CharSet // KCharSet

	Children []NodeID // KSequence, KChoice

	Child NodeID // KOptional, KMany, KMany1, KNotFollowedBy, KFollowedBy, KAction, KAttr, KIgnore, KSepBy(item)
	Sep   NodeID // KSepBy, KSepBy1 (separator)

	Bound NodeID // KIndirect: the node this indirection resolves to; NoNode until Bind
	Name  string // KIndirect: a label, used only for diagnostics

	Action ActionFunc // KAction
	Attr   AttrFunc   // KAttr

	UserData interface{} // optional, carried through for any node kind
}

func (n *Node) String() string {
	switch n.Kind {
	case KToken:
		return fmt.Sprintf("Token(%q)", n.Literal)
	case KIndirect:
		return fmt.Sprintf("Indirect(%s)", n.Name)
	default:
		return n.Kind.String()
	}
}
