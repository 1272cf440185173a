package cfg

import (
	"fmt"

	"github.com/pgcombinator/pgc"
)

// GrammarBuilder accumulates rules for a Grammar under construction.
// Clients add rules with a fluent call chain and finish with Grammar():
//
//	b := cfg.NewGrammarBuilder("G")
//	b.LHS("S").N("A").T("a", 1).EOF()  // S  ->  A a EOF
//	b.LHS("A").N("B").N("D").End()     // A  ->  B D
//	b.LHS("B").T("b", 2).End()         // B  ->  b
//	b.LHS("B").Epsilon()               // B  ->
//	g, err := b.Grammar()
//
// The very first LHS call made on a fresh builder establishes the start
// symbol; rule 0 in the resulting Grammar is always its first production.
type GrammarBuilder struct {
	name        string
	rules       []*pendingRule
	terminals   map[pgc.TokType]*Symbol
	nonterminals []*Symbol
	byName      map[string]*Symbol
	startSym    *Symbol
	err         error
}

type pendingRule struct {
	lhs *Symbol
	rhs []*Symbol
}

// NewGrammarBuilder creates an empty builder for a grammar named name.
func NewGrammarBuilder(name string) *GrammarBuilder {
	return &GrammarBuilder{
		name:      name,
		terminals: make(map[pgc.TokType]*Symbol),
		byName:    make(map[string]*Symbol),
	}
}

func (b *GrammarBuilder) nonTerminal(name string) *Symbol {
	if s, ok := b.byName[name]; ok {
		return s
	}
	s := &Symbol{Name: name, terminal: false}
	b.byName[name] = s
	b.nonterminals = append(b.nonterminals, s)
	if b.startSym == nil {
		b.startSym = s
	}
	return s
}

func (b *GrammarBuilder) terminal(name string, tokval pgc.TokType) *Symbol {
	if s, ok := b.terminals[tokval]; ok {
		return s
	}
	s := &Symbol{Name: name, Value: tokval, terminal: true}
	b.terminals[tokval] = s
	if existing, ok := b.byName[name]; ok && existing != s {
		// distinct terminals sharing a display name is a builder misuse
		b.err = fmt.Errorf("cfg: terminal name %q already used for a different token type", name)
	} else {
		b.byName[name] = s
	}
	return s
}

// Terminal returns (creating it if needed) the terminal symbol for the
// given display name and token type. Exposed for callers, such as
// grammar/desugar.go, that construct rules directly rather than through
// the fluent LHS/N/T chain.
func (b *GrammarBuilder) Terminal(name string, tokval pgc.TokType) *Symbol {
	return b.terminal(name, tokval)
}

// NonTerminal returns (creating it if needed) the non-terminal symbol
// with the given name.
func (b *GrammarBuilder) NonTerminal(name string) *Symbol {
	return b.nonTerminal(name)
}

// FreshNonTerminal creates a brand new, uniquely-named non-terminal with
// a name derived from prefix — used by desugaring to introduce helper
// non-terminals for composite combinators (Sequence, Many, Optional, ...)
// that have no natural name of their own.
func (b *GrammarBuilder) FreshNonTerminal(prefix string) *Symbol {
	name := fmt.Sprintf("%s$%d", prefix, len(b.nonterminals))
	for {
		if _, exists := b.byName[name]; !exists {
			break
		}
		name = name + "'"
	}
	return b.nonTerminal(name)
}

// AddRule appends a completed rule LHS -> RHS directly, bypassing the
// fluent RuleBuilder chain, and returns its eventual serial number (its
// position in declaration order, stable once Grammar() is called).
func (b *GrammarBuilder) AddRule(lhs *Symbol, rhs []*Symbol) int {
	b.rules = append(b.rules, &pendingRule{lhs: lhs, rhs: rhs})
	return len(b.rules) - 1
}

// RuleBuilder accumulates the RHS of a single rule for LHS lhs.
type RuleBuilder struct {
	b   *GrammarBuilder
	lhs *Symbol
	rhs []*Symbol
}

// LHS starts a new rule with the given left-hand-side non-terminal name.
func (b *GrammarBuilder) LHS(name string) *RuleBuilder {
	return &RuleBuilder{b: b, lhs: b.nonTerminal(name)}
}

// N appends a non-terminal reference to the rule's RHS.
func (rb *RuleBuilder) N(name string) *RuleBuilder {
	rb.rhs = append(rb.rhs, rb.b.nonTerminal(name))
	return rb
}

// T appends a terminal, identified by a display name and its token type,
// to the rule's RHS.
func (rb *RuleBuilder) T(name string, tokval pgc.TokType) *RuleBuilder {
	rb.rhs = append(rb.rhs, rb.b.terminal(name, tokval))
	return rb
}

// EOF appends the built-in end-of-input terminal to the rule's RHS and
// finishes the rule, equivalent to T("#eof", pgc.EOF).End().
func (rb *RuleBuilder) EOF() *GrammarBuilder {
	rb.rhs = append(rb.rhs, rb.b.terminal("#eof", pgc.EOF))
	return rb.End()
}

// End finishes the rule, appending it to the builder.
func (rb *RuleBuilder) End() *GrammarBuilder {
	rb.b.rules = append(rb.b.rules, &pendingRule{lhs: rb.lhs, rhs: rb.rhs})
	return rb.b
}

// Epsilon finishes the rule as an empty (epsilon) production.
func (rb *RuleBuilder) Epsilon() *GrammarBuilder {
	rb.rhs = nil
	return rb.End()
}

// Grammar finalizes the builder into an immutable Grammar, assigning
// serial numbers to rules and synthetic negative token values to
// non-terminals (so terminals and non-terminals can share a single
// int32 column space in sparse ACTION/GOTO tables).
func (b *GrammarBuilder) Grammar() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.rules) == 0 {
		return nil, fmt.Errorf("cfg: grammar %q has no rules", b.name)
	}
	// Non-terminals get synthetic negative token values sharing the
	// terminals' int32 column space, starting below the reserved
	// sentinels pgc.EOF (-1), pgc.Epsilon (-2) and pgc.Unmatched (-3) so a
	// grammar that uses an explicit "#eof" terminal, or a table-driven
	// backend whose scanner emits an Unmatched token, never collides with
	// a synthesized non-terminal's column in a shared ACTION/GOTO table.
	for i, nt := range b.nonterminals {
		nt.Value = pgc.TokType(-4 - int32(i))
	}
	g := &Grammar{
		Name:         b.name,
		terminals:    b.terminals,
		nonterminals: b.nonterminals,
		byName:       b.byName,
	}
	for i, pr := range b.rules {
		g.rules = append(g.rules, &Rule{Serial: i, LHS: pr.lhs, rhs: pr.rhs})
	}
	return g, nil
}
