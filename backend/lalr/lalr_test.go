package lalr

import (
	"testing"

	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/grammar"
)

func TestLiteralSequence(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Seq(g.Token("a"), g.Token("b")))
	cg, err := backend.Compile(g, backend.LALR)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("ab")); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if _, err := cg.Parse([]byte("ba")); err == nil {
		t.Fatalf("expected mismatch to fail")
	}
}

func TestCommonPrefixChoiceNeedsNoConflict(t *testing.T) {
	// A shift/reduce parser resolves shared prefixes by shifting, unlike
	// LL(k) prediction, which would need 2 tokens of lookahead here.
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Choice(g.Seq(g.Token("a"), g.Token("x")), g.Seq(g.Token("a"), g.Token("y"))))
	cg, err := backend.Compile(g, backend.LALR)
	if err != nil {
		t.Fatalf("expected a clean compile (LALR shifts the common prefix): %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("ax")); err != nil {
		t.Fatalf("expected 'ax' to match: %v", err)
	}
	if _, err := cg.Parse([]byte("ay")); err != nil {
		t.Fatalf("expected 'ay' to match: %v", err)
	}
}

func TestLeftRecursiveExpression(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	expr := g.Indirect("Expr")
	plus := g.Seq(expr, g.Token("+"), g.Token("n"))
	choice := g.Choice(plus, g.Token("n"))
	g.Bind(expr, choice)
	g.SetRoot(expr)
	cg, err := backend.Compile(g, backend.LALR)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("n+n+n")); err != nil {
		t.Fatalf("expected left-recursive grammar to accept n+n+n: %v", err)
	}
}

func TestAttrRejectsReduction(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	tok := g.Token("a")
	attr := g.Attr(tok, func(v interface{}) bool { return v.(string) == "b" })
	g.SetRoot(attr)
	cg, err := backend.Compile(g, backend.LALR)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("a")); err == nil {
		t.Fatalf("expected Attr predicate to reject the match")
	}
}

func TestIgnoreElidesChildFromSequence(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	ignored := g.Ignore(g.Token("x"))
	g.SetRoot(g.Seq(ignored, g.Token("a")))
	cg, err := backend.Compile(g, backend.LALR)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	node, err := cg.Parse([]byte("xa"))
	if err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if len(node.Children) != 1 {
		t.Fatalf("expected the ignored child to be elided, got %d children", len(node.Children))
	}
}

func TestReduceReduceConflictFailsGrammarAmbiguous(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	a := g.Token("a")
	left := g.Action(a, func(v interface{}) (interface{}, error) { return "left", nil })
	right := g.Action(a, func(v interface{}) (interface{}, error) { return "right", nil })
	g.SetRoot(g.Choice(left, right))
	if _, err := backend.Compile(g, backend.LALR); err == nil {
		t.Fatalf("expected GRAMMAR_AMBIGUOUS: two distinct rules both reduce 'a' under the same lookahead")
	}
}
