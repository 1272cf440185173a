/*
Package tree implements the parse-tree and semantic-value types produced
by the packrat, llk, lalr and regular backends (the glr backend builds
a shared packed parse forest — see package sppf — and its Parse
collapses that forest into a tree.Node, keeping the first derivation
when the result is ambiguous).

The Value type is a small tagged union used to carry Action results
through a parse without committing to a single concrete type, adapted
(trimmed to what this module needs) from npillmayer-gorgo/terex/fp's
cons-list value representation — the broader term-rewriting list algebra
built on top of it there is not carried over here.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package tree

import (
	"bytes"
	"fmt"

	"github.com/pgcombinator/pgc"
)

// Kind discriminates the variants of a parse-tree node.
type Kind uint8

const (
	KBytes    Kind = iota // a matched terminal's raw lexeme
	KSequence             // a reduced rule, children in RHS order
	KToken                // a matched terminal, carrying a pgc.Token
	KUint                 // a node whose Value is a semantic uint64
	KSint                 // a node whose Value is a semantic int64
	KUser                 // a node whose Value is an opaque user value (an Action result)
)

func (k Kind) String() string {
	switch k {
	case KBytes:
		return "Bytes"
	case KSequence:
		return "Sequence"
	case KToken:
		return "Token"
	case KUint:
		return "Uint"
	case KSint:
		return "Sint"
	case KUser:
		return "User"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is a single parse-tree node: the symbol it was produced for, the
// input span it covers, its children (for a reduced rule), and an
// optional semantic value attached by an Action during parsing.
type Node struct {
	Kind     Kind
	Symbol   string // rule LHS name, or terminal display name
	Span     pgc.Span
	Children []*Node
	Value    interface{} // set for KUint/KSint/KUser; holds the pgc.Token for KToken
}

// Ignored is the sentinel node an Ignore-annotated child returns in place
// of its real result. Every site that assembles a parent's children from
// recursively matched/expanded symbols (Sequence and the other
// multi-child combinators built on the same shape) skips a child equal
// to Ignored rather than embedding it.
var Ignored = &Node{Kind: KBytes, Symbol: "\x00ignored"}

// Leaf creates a terminal tree node.
func Leaf(symbol string, tok pgc.Token) *Node {
	return &Node{Kind: KToken, Symbol: symbol, Span: tok.Span(), Value: tok}
}

// Reduce creates a non-terminal tree node covering children, with its
// span computed as the union of its children's spans.
func Reduce(symbol string, children []*Node) *Node {
	n := &Node{Kind: KSequence, Symbol: symbol, Children: children}
	for _, c := range children {
		if c == nil {
			continue
		}
		n.Span = n.Span.Extend(c.Span)
	}
	return n
}

// WithValue attaches a semantic value (typically an Action's result) to
// n and returns n for chaining.
func (n *Node) WithValue(kind Kind, v interface{}) *Node {
	n.Kind = kind
	n.Value = v
	return n
}

// Walk calls f for every node in the tree, pre-order.
func (n *Node) Walk(f func(*Node)) {
	if n == nil {
		return
	}
	f(n)
	for _, c := range n.Children {
		c.Walk(f)
	}
}

func (n *Node) String() string {
	var b bytes.Buffer
	n.dump(&b, 0)
	return b.String()
}

func (n *Node) dump(b *bytes.Buffer, depth int) {
	if n == nil {
		return
	}
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
	fmt.Fprintf(b, "%s(%s) %v\n", n.Kind, n.Symbol, n.Span)
	for _, c := range n.Children {
		c.dump(b, depth+1)
	}
}

// Value is a small tagged union for semantic values threaded through
// Action callbacks, letting simple parsers avoid an interface{}-only API
// while still allowing arbitrary user payloads via Other.
type Value struct {
	IsList bool
	Car    interface{}
	Cdr    *Value
	Other  interface{}
}

// Atom wraps a single, non-list value.
func Atom(v interface{}) *Value {
	return &Value{Other: v}
}

// Cons builds a list cell.
func Cons(car interface{}, cdr *Value) *Value {
	return &Value{IsList: true, Car: car, Cdr: cdr}
}

// ToSlice flattens a Value built from Cons calls into a plain slice, in
// order; a non-list Value yields a single-element slice.
func (v *Value) ToSlice() []interface{} {
	if v == nil {
		return nil
	}
	if !v.IsList {
		return []interface{}{v.Other}
	}
	var out []interface{}
	for cur := v; cur != nil && cur.IsList; cur = cur.Cdr {
		out = append(out, cur.Car)
	}
	return out
}
