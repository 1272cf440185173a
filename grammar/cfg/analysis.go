package cfg

import (
	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/internal/iteratable"
)

// LRAnalysis holds the static analysis results for a Grammar: nullability,
// FIRST and FOLLOW sets, computed once by Analysis and then reused by
// every table-driven backend (and available to clients for
// introspection).
type LRAnalysis struct {
	g        *Grammar
	nullable map[*Symbol]bool
	first    map[*Symbol]*iteratable.Set // terminal token values
	follow   map[*Symbol]*iteratable.Set // terminal token values
}

// Analysis runs FIRST/FOLLOW/nullability analysis over g and returns the
// result. Must be called, and not have its result discarded, before any
// table generator or GLR/LALR construction: those rely on First/Follow.
func Analysis(g *Grammar) *LRAnalysis {
	ga := &LRAnalysis{
		g:        g,
		nullable: make(map[*Symbol]bool),
		first:    make(map[*Symbol]*iteratable.Set),
		follow:   make(map[*Symbol]*iteratable.Set),
	}
	ga.computeNullable()
	ga.computeFirst()
	ga.computeFollow()
	return ga
}

// Grammar returns the analysed grammar.
func (ga *LRAnalysis) Grammar() *Grammar { return ga.g }

// Nullable reports whether symbol A can derive the empty string.
func (ga *LRAnalysis) Nullable(A *Symbol) bool {
	if A.IsTerminal() {
		return false
	}
	return ga.nullable[A]
}

// First returns FIRST(A): the set of terminal token values that can begin
// a string derived from A.
func (ga *LRAnalysis) First(A *Symbol) *iteratable.Set {
	if A.IsTerminal() {
		return iteratable.New(A.Value)
	}
	if s, ok := ga.first[A]; ok {
		return s
	}
	return iteratable.New()
}

// Follow returns FOLLOW(A): the set of terminal token values that can
// immediately follow A in some derivation from the start symbol.
func (ga *LRAnalysis) Follow(A *Symbol) *iteratable.Set {
	if s, ok := ga.follow[A]; ok {
		return s
	}
	return iteratable.New()
}

func (ga *LRAnalysis) computeNullable() {
	changed := true
	for changed {
		changed = false
		for _, r := range ga.g.rules {
			if ga.nullable[r.LHS] {
				continue
			}
			if r.IsEpsilon() {
				ga.nullable[r.LHS] = true
				changed = true
				continue
			}
			all := true
			for _, s := range r.rhs {
				if s.IsTerminal() || !ga.nullable[s] {
					all = false
					break
				}
			}
			if all {
				ga.nullable[r.LHS] = true
				changed = true
			}
		}
	}
}

// computeFirst is a standard work-list fixed point over FIRST sets of the
// non-terminals: FIRST(A) is the union, over every production
// A -> X1 X2 ... Xn, of FIRST(X1), plus FIRST(X2) if X1 is nullable, and
// so on, stopping at the first non-nullable symbol.
func (ga *LRAnalysis) computeFirst() {
	for _, nt := range ga.g.nonterminals {
		ga.first[nt] = iteratable.New()
	}
	changed := true
	for changed {
		changed = false
		for _, r := range ga.g.rules {
			set := ga.first[r.LHS]
			before := set.Size()
			for _, s := range r.rhs {
				if s.IsTerminal() {
					set.Add(s.Value)
					break
				}
				set.Union(ga.first[s])
				if !ga.nullable[s] {
					break
				}
			}
			if set.Size() != before {
				changed = true
			}
		}
	}
}

// computeFollow is a standard work-list fixed point over FOLLOW sets: for
// every occurrence of a non-terminal B within a production A -> ... B β,
// FOLLOW(B) gains FIRST(β); if β is nullable (or empty), FOLLOW(B) also
// gains FOLLOW(A).
func (ga *LRAnalysis) computeFollow() {
	for _, nt := range ga.g.nonterminals {
		ga.follow[nt] = iteratable.New()
	}
	if len(ga.g.rules) > 0 {
		ga.follow[ga.g.rules[0].LHS].Add(pgc.EOF)
	}
	changed := true
	for changed {
		changed = false
		for _, r := range ga.g.rules {
			for i, s := range r.rhs {
				if s.IsTerminal() {
					continue
				}
				before := ga.follow[s].Size()
				rest := r.rhs[i+1:]
				nullableRest := true
				for _, t := range rest {
					if t.IsTerminal() {
						ga.follow[s].Add(t.Value)
						nullableRest = false
						break
					}
					ga.follow[s].Union(ga.first[t])
					if !ga.nullable[t] {
						nullableRest = false
						break
					}
				}
				if nullableRest {
					ga.follow[s].Union(ga.follow[r.LHS])
				}
				if ga.follow[s].Size() != before {
					changed = true
				}
			}
		}
	}
}

// === Closure and Goto-Set Operations =======================================
//
// Adapted from the teacher's lr/tables.go LRAnalysis methods, generalized
// from an SLR(1)-only table generator into shared machinery used by both
// the lalr and glr backends.

// Closure computes the closure of a single item.
func (ga *LRAnalysis) Closure(i Item) *iteratable.Set {
	S := newItemSet()
	S.Add(i)
	return ga.ClosureSet(S)
}

// ClosureSet computes the closure of a whole item set: repeatedly add,
// for every item with a non-terminal A immediately after the dot, the
// start-items of every rule with LHS A, until no more items can be added.
func (ga *LRAnalysis) ClosureSet(S *iteratable.Set) *iteratable.Set {
	C := S.Copy()
	C.IterateOnce()
	for C.Next() {
		item := asItem(C.Item())
		A := item.PeekSymbol()
		if A != nil && !A.IsTerminal() {
			R := ga.g.FindNonTermRules(A, true)
			if New := R.Difference(C); !New.Empty() {
				C.Union(New)
			}
		}
	}
	return C
}

// GotoSet advances every item in closure that has A after the dot,
// without re-closing the result.
func (ga *LRAnalysis) GotoSet(closure *iteratable.Set, A *Symbol) *iteratable.Set {
	gotoset := newItemSet()
	for _, x := range closure.Values() {
		i := asItem(x)
		if i.PeekSymbol() == A {
			gotoset.Add(i.Advance())
		}
	}
	return gotoset
}

// GotoSetClosure computes goto(closure, A) and closes the result — the
// primitive CFSM transition operation.
func (ga *LRAnalysis) GotoSetClosure(closure *iteratable.Set, A *Symbol) *iteratable.Set {
	gotoset := ga.GotoSet(closure, A)
	return ga.ClosureSet(gotoset)
}
