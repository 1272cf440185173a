package llk

import (
	"testing"

	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/grammar"
)

func TestLiteralSequence(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Seq(g.Token("a"), g.Token("b")))
	cg, err := backend.Compile(g, backend.LLK)
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

func TestChoicePredictsByFirstSet(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Choice(g.Token("a"), g.Token("b")))
	cg, err := backend.Compile(g, backend.LLK)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("a")); err != nil {
		t.Fatalf("expected 'a' alternative to match: %v", err)
	}
	if _, err := cg.Parse([]byte("b")); err != nil {
		t.Fatalf("expected 'b' alternative to match: %v", err)
	}
}

func TestAmbiguousChoiceFailsGrammarNotLLK(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	// Both alternatives start with the same literal "a", so no lookahead
	// of length 1 can tell them apart: this must be rejected, not silently
	// resolved by picking the first alternative (that would be packrat's
	// job, not llk's).
	g.SetRoot(g.Choice(g.Seq(g.Token("a"), g.Token("x")), g.Seq(g.Token("a"), g.Token("y"))))
	if _, err := backend.Compile(g, backend.LLK); err == nil {
		t.Fatalf("expected GRAMMAR_NOT_LLK on overlapping FIRST sets")
	}
}

func TestOptionalAndEndOfInput(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Seq(g.Optional(g.Token("a")), g.End()))
	cg, err := backend.Compile(g, backend.LLK)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("a")); err != nil {
		t.Fatalf("expected optional present to match: %v", err)
	}
	if _, err := cg.Parse([]byte("")); err != nil {
		t.Fatalf("expected optional absent to match: %v", err)
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
	cg, err := backend.Compile(g, backend.LLK)
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

func TestAttrRejectsReduction(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	tok := g.Token("a")
	attr := g.Attr(tok, func(v interface{}) bool { return v.(string) == "b" })
	g.SetRoot(attr)
	cg, err := backend.Compile(g, backend.LLK)
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
	cg, err := backend.Compile(g, backend.LLK)
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
