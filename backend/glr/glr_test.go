package glr

import (
	"testing"

	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/grammar"
)

func TestLiteralSequence(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Seq(g.Token("a"), g.Token("b")))
	cg, err := backend.Compile(g, backend.GLR)
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

// A classic locally-ambiguous grammar (Aho/Lam/Sethi/Ullman's dangling
// "+a-"/"a-" example): neither lalr nor llk can compile this without a
// hard conflict, but glr explores both derivations and still accepts.
//
//	S -> A -
//	S -> + B
//	A -> + a
//	B -> a -
func TestLocallyAmbiguousGrammarStillParses(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	a := g.Indirect("A")
	b := g.Indirect("B")
	s1 := g.Seq(a, g.Token("-"))
	s2 := g.Seq(g.Token("+"), b)
	g.Bind(a, g.Seq(g.Token("+"), g.Token("a")))
	g.Bind(b, g.Seq(g.Token("a"), g.Token("-")))
	g.SetRoot(g.Choice(s1, s2))
	cg, err := backend.Compile(g, backend.GLR)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("+a-")); err != nil {
		t.Fatalf("expected glr to accept the ambiguous input: %v", err)
	}
}

func TestAttrRejectsReduction(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	tok := g.Token("a")
	attr := g.Attr(tok, func(v interface{}) bool { return v.(string) == "b" })
	g.SetRoot(attr)
	cg, err := backend.Compile(g, backend.GLR)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("a")); err == nil {
		t.Fatalf("expected Attr predicate to reject the match")
	}
}

func TestActionRunsOnReduction(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	tok := g.Token("a")
	action := g.Action(tok, func(v interface{}) (interface{}, error) {
		return "seen:" + v.(string), nil
	})
	g.SetRoot(action)
	cg, err := backend.Compile(g, backend.GLR)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	node, err := cg.Parse([]byte("a"))
	if err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if node.Value != "seen:a" {
		t.Fatalf("expected action result to be attached to the reduced node, got %v", node.Value)
	}
}

func TestIgnoreElidesChildFromSequence(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	ignored := g.Ignore(g.Token("x"))
	g.SetRoot(g.Seq(ignored, g.Token("a")))
	cg, err := backend.Compile(g, backend.GLR)
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

func TestUniqueFlagRejectsSurvivingAmbiguity(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	a := g.Token("a")
	left := g.Action(a, func(v interface{}) (interface{}, error) { return "left", nil })
	right := g.Action(a, func(v interface{}) (interface{}, error) { return "right", nil })
	g.SetRoot(g.Choice(left, right))
	cg, err := backend.Compile(g, backend.GLR)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	compiled := cg.(*Compiled)
	compiled.Unique = true
	if _, err := compiled.Parse([]byte("a")); err == nil {
		t.Fatalf("expected AMBIGUOUS_RESULT when Unique is set and two derivations survive")
	}
}
