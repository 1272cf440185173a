package runtime

import (
	"testing"

	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/grammar"
)

func TestDefineAndResolve(t *testing.T) {
	env := NewEnvironment()
	g := grammar.New("G", nil)
	defer g.Free()
	b, old := env.Define("expr", g)
	if old != nil {
		t.Fatalf("expected no previous binding for a fresh name")
	}
	if b.Grammar != g {
		t.Fatalf("binding did not retain the grammar it was defined with")
	}
	found, ok := env.Resolve("expr")
	if !ok || found != b {
		t.Fatalf("expected Resolve to find the binding just defined")
	}
	if _, ok := env.Resolve("missing"); ok {
		t.Fatalf("expected Resolve to fail for an undefined name")
	}
}

func TestDefineOverwritesAndReturnsOld(t *testing.T) {
	env := NewEnvironment()
	g1 := grammar.New("G1", nil)
	defer g1.Free()
	g2 := grammar.New("G2", nil)
	defer g2.Free()
	first, _ := env.Define("x", g1)
	_, old := env.Define("x", g2)
	if old != first {
		t.Fatalf("expected the second Define to return the first binding as 'old'")
	}
	found, _ := env.Resolve("x")
	if found.Grammar != g2 {
		t.Fatalf("expected the overwriting Define to win")
	}
}

func TestSetCompiledRecordsBackend(t *testing.T) {
	env := NewEnvironment()
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Token("a"))
	b, _ := env.Define("g", g)
	if b.Compiled != nil {
		t.Fatalf("expected a freshly defined binding to be uncompiled")
	}
	b.SetCompiled(backend.LALR, nil)
	if b.Backend != backend.LALR {
		t.Fatalf("expected SetCompiled to record the backend ID")
	}
}
