package cfg

import (
	"bytes"
	"fmt"

	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/internal/iteratable"
)

// Grammar is a normalized context-free grammar: a flat list of rules over
// a symbol universe of terminals and non-terminals. Rule 0 is always the
// start rule. Grammar values are produced either by a GrammarBuilder or
// by grammar/desugar.go lowering a combinator graph.
type Grammar struct {
	Name string

	rules       []*Rule
	terminals   map[pgc.TokType]*Symbol
	nonterminals []*Symbol // in declaration order, for deterministic iteration
	byName      map[string]*Symbol
}

// Rule returns the rule at ordinal position i.
func (g *Grammar) Rule(i int) *Rule { return g.rules[i] }

// NumRules returns the number of rules in the grammar.
func (g *Grammar) NumRules() int { return len(g.rules) }

// Rules returns all rules, in declaration order.
func (g *Grammar) Rules() []*Rule { return g.rules }

// SymbolByName looks up a symbol (terminal or non-terminal) by name.
func (g *Grammar) SymbolByName(name string) (*Symbol, bool) {
	s, ok := g.byName[name]
	return s, ok
}

// Terminal looks up a terminal symbol by its token type.
func (g *Grammar) Terminal(tokval pgc.TokType) (*Symbol, bool) {
	s, ok := g.terminals[tokval]
	return s, ok
}

// EachSymbol calls f once for every symbol (terminals, then non-terminals)
// in the grammar. Mirrors the teacher's ad-hoc-mapper iteration style used
// throughout table construction.
func (g *Grammar) EachSymbol(f func(A *Symbol) interface{}) {
	for _, s := range g.terminals {
		f(s)
	}
	for _, s := range g.nonterminals {
		f(s)
	}
}

// EachNonTerminal calls f once for every non-terminal, keyed by name.
func (g *Grammar) EachNonTerminal(f func(name string, N *Symbol) interface{}) {
	for _, s := range g.nonterminals {
		f(s.Name, s)
	}
}

// FindNonTermRules returns the set of rules having A as their LHS, as an
// item set with the dot at position 0, the fresh start-items closure
// construction wants. startOnly is not consulted: the result is the same
// either way.
func (g *Grammar) FindNonTermRules(A *Symbol, startOnly bool) *iteratable.Set {
	s := newItemSet()
	for _, r := range g.rules {
		if r.LHS == A {
			s.Add(Item{rule: r, dot: 0})
		}
	}
	return s
}

// matchesRHS finds the rule with the given LHS whose RHS equals prefix
// exactly, returning it together with its ordinal position, or (nil, -1)
// if no such rule exists. Used when a completed item's handle must be
// traced back to the rule it reduces.
func (g *Grammar) matchesRHS(lhs *Symbol, prefix []*Symbol) (*Rule, int) {
	for _, r := range g.rules {
		if r.LHS != lhs || len(r.rhs) != len(prefix) {
			continue
		}
		match := true
		for i, s := range prefix {
			if r.rhs[i] != s {
				match = false
				break
			}
		}
		if match {
			return r, r.Serial
		}
	}
	return nil, -1
}

// Dump writes the grammar's rules to the trace log, one per line —
// equivalent to gorgo's b.Grammar().Dump() debugging idiom.
func (g *Grammar) Dump() {
	var b bytes.Buffer
	fmt.Fprintf(&b, "grammar %q:\n", g.Name)
	for _, r := range g.rules {
		fmt.Fprintf(&b, "  %v\n", r)
	}
	tracer().Infof(b.String())
}
