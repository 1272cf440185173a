package packrat

import (
	"testing"

	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/grammar"
)

func TestLiteralToken(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Token("hello"))
	cg, err := backend.Compile(g, backend.Packrat)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("hello")); err != nil {
		t.Fatalf("expected match, got error: %v", err)
	}
	if _, err := cg.Parse([]byte("goodbye")); err == nil {
		t.Fatalf("expected mismatch to fail")
	}
}

func TestOrderedChoicePrefersFirstMatch(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Choice(g.Token("a"), g.Token("ab")))
	cg, err := backend.Compile(g, backend.Packrat)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	// "ab" never gets a chance because "a" matches first and the overall
	// parse then fails end-of-input on the b. This demonstrates ordered
	// (not longest-match) choice, as PEG requires.
	if _, err := cg.Parse([]byte("ab")); err == nil {
		t.Fatalf("expected failure: ordered choice takes 'a' greedily, leaving trailing 'b'")
	}
}

func TestManyIsGreedyAndTerminates(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Many(g.Token("a")))
	cg, err := backend.Compile(g, backend.Packrat)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("aaa")); err != nil {
		t.Fatalf("expected match on repeated input: %v", err)
	}
	if _, err := cg.Parse([]byte("")); err != nil {
		t.Fatalf("expected Many to match zero occurrences: %v", err)
	}
}

func TestLeftRecursiveGrammar(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	expr := g.Indirect("Expr")
	plus := g.Seq(expr, g.Token("+"), g.Token("n"))
	choice := g.Choice(plus, g.Token("n"))
	g.Bind(expr, choice)
	g.SetRoot(expr)
	cg, err := backend.Compile(g, backend.Packrat)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("n+n+n")); err != nil {
		t.Fatalf("expected left-recursive grammar to accept n+n+n: %v", err)
	}
}

func TestAttrRejectsMatch(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	tok := g.Token("a")
	attr := g.Attr(tok, func(v interface{}) bool { return v.(string) == "b" })
	g.SetRoot(attr)
	cg, err := backend.Compile(g, backend.Packrat)
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
	cg, err := backend.Compile(g, backend.Packrat)
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

func TestIgnoreElidesChildFromMany(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	item := g.Choice(g.Ignore(g.Token("skip")), g.Action(g.Token("a"), func(v interface{}) (interface{}, error) {
		return v, nil
	}))
	g.SetRoot(g.Many(item))
	cg, err := backend.Compile(g, backend.Packrat)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	node, err := cg.Parse([]byte("skipaskip"))
	if err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if len(node.Children) != 1 {
		t.Fatalf("expected only the non-ignored 'a' to survive in Many's children, got %d", len(node.Children))
	}
}

func TestNotFollowedByIsZeroWidth(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Seq(g.NotFollowedBy(g.Token("b")), g.Token("a")))
	cg, err := backend.Compile(g, backend.Packrat)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("a")); err != nil {
		t.Fatalf("expected NotFollowedBy(b) to allow matching 'a': %v", err)
	}
}
