package cfg

import (
	"testing"

	"github.com/pgcombinator/pgc"
)

func buildSample(t *testing.T) *Grammar {
	b := NewGrammarBuilder("G")
	b.LHS("S").N("A").T("a", 1).EOF()
	b.LHS("A").N("B").N("D").End()
	b.LHS("B").T("b", 2).End()
	b.LHS("B").Epsilon()
	b.LHS("D").T("d", 3).End()
	b.LHS("D").Epsilon()
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("unexpected builder error: %v", err)
	}
	return g
}

func TestGrammarBuilderProducesSixRules(t *testing.T) {
	g := buildSample(t)
	if g.NumRules() != 6 {
		t.Fatalf("expected 6 rules, got %d", g.NumRules())
	}
	if g.Rule(0).LHS.Name != "S" {
		t.Fatalf("expected rule 0 LHS to be the start symbol S, got %v", g.Rule(0).LHS)
	}
}

func TestNullability(t *testing.T) {
	g := buildSample(t)
	ga := Analysis(g)
	B, _ := g.SymbolByName("B")
	D, _ := g.SymbolByName("D")
	A, _ := g.SymbolByName("A")
	S, _ := g.SymbolByName("S")
	if !ga.Nullable(B) || !ga.Nullable(D) || !ga.Nullable(A) {
		t.Fatalf("expected B, D and A to be nullable")
	}
	if ga.Nullable(S) {
		t.Fatalf("S should not be nullable (requires terminal a)")
	}
}

func TestFirstSets(t *testing.T) {
	g := buildSample(t)
	ga := Analysis(g)
	S, _ := g.SymbolByName("S")
	first := ga.First(S)
	if !first.Contains(pgc.TokType(1)) {
		t.Fatalf("expected FIRST(S) to contain terminal 'a'=1, got %v", first.Values())
	}
	if !first.Contains(pgc.TokType(2)) || !first.Contains(pgc.TokType(3)) {
		t.Fatalf("expected FIRST(S) to also contain 'b' and 'd' via nullable A, got %v", first.Values())
	}
}

func TestFollowOfStartIncludesEOF(t *testing.T) {
	g := buildSample(t)
	ga := Analysis(g)
	S, _ := g.SymbolByName("S")
	if !ga.Follow(S).Contains(pgc.EOF) {
		t.Fatalf("expected FOLLOW(S) to contain EOF")
	}
}

func TestClosureOfStartItem(t *testing.T) {
	g := buildSample(t)
	ga := Analysis(g)
	start, _ := StartItem(g.Rule(0))
	closure := ga.Closure(start)
	if closure.Size() < 1 {
		t.Fatalf("expected non-empty closure")
	}
	if !closure.Contains(start) {
		t.Fatalf("expected closure to contain the seed item")
	}
}

func TestDuplicateTerminalNameDifferentTokenTypeIsAnError(t *testing.T) {
	b := NewGrammarBuilder("Bad")
	b.LHS("S").T("x", 1).End()
	b.LHS("S").T("x", 2).End()
	if _, err := b.Grammar(); err == nil {
		t.Fatalf("expected an error for reusing terminal name 'x' with a different token type")
	}
}
