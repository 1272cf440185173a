package main

import (
	"testing"

	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/tree"
)

func TestParseBackendFlag(t *testing.T) {
	cases := map[string]backend.ID{
		"packrat": backend.Packrat,
		"Regular": backend.Regular,
		"llk":     backend.LLK,
		"LALR":    backend.LALR,
		"glr":     backend.GLR,
	}
	for name, want := range cases {
		if got := parseBackendFlag(name); got != want {
			t.Fatalf("parseBackendFlag(%q) = %v, want %v", name, got, want)
		}
	}
	if got := parseBackendFlag("nonsense"); got != backend.ID(-1) {
		t.Fatalf("expected an unknown backend name to map to ID(-1), got %v", got)
	}
}

func TestTreeToPtermNodeRecursesOverChildren(t *testing.T) {
	tok := pgc.BasicToken{Lexeme_: "a", Spn: pgc.Span{0, 1}}
	leaf := tree.Leaf("Token", tok)
	root := tree.Reduce("Sequence", []*tree.Node{leaf})
	node := treeToPtermNode(root)
	if len(node.Children) != 1 {
		t.Fatalf("expected one child, got %d", len(node.Children))
	}
	if node.Children[0].Text == "" {
		t.Fatalf("expected the leaf's rendered text to be non-empty")
	}
}

func TestMakeExprGrammarHasRoot(t *testing.T) {
	g := makeExprGrammar()
	defer g.Free()
	if g.Root() < 0 {
		t.Fatalf("expected makeExprGrammar to set a root node")
	}
}
