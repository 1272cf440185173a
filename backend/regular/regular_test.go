package regular

import (
	"testing"

	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/grammar"
)

func TestLiteralSequence(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Seq(g.Token("a"), g.Token("b")))
	cg, err := backend.Compile(g, backend.Regular)
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

func TestCharSetAndRepetition(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	var digits grammar.CharSet
	digits.SetRange('0', '9')
	g.SetRoot(g.Many1(g.CharSet(digits)))
	cg, err := backend.Compile(g, backend.Regular)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	node, err := cg.Parse([]byte("1234"))
	if err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if len(node.Children) != 4 {
		t.Fatalf("expected 4 digit children, got %d", len(node.Children))
	}
	if _, err := cg.Parse([]byte("")); err == nil {
		t.Fatalf("expected Many1 to reject empty input")
	}
}

func TestOptionalAndChoice(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	sign := g.Optional(g.Choice(g.Token("+"), g.Token("-")))
	g.SetRoot(g.Seq(sign, g.Token("1")))
	cg, err := backend.Compile(g, backend.Regular)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	for _, in := range []string{"1", "+1", "-1"} {
		if _, err := cg.Parse([]byte(in)); err != nil {
			t.Fatalf("expected %q to match: %v", in, err)
		}
	}
	if _, err := cg.Parse([]byte("*1")); err == nil {
		t.Fatalf("expected '*1' to be rejected")
	}
}

func TestIndirectIsUnsupported(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	expr := g.Indirect("Expr")
	g.Bind(expr, g.Choice(g.Seq(expr, g.Token("+"), g.Token("n")), g.Token("n")))
	g.SetRoot(expr)
	if _, err := backend.Compile(g, backend.Regular); err == nil {
		t.Fatalf("expected BACKEND_UNSUPPORTED for a recursive grammar")
	}
}

func TestAnythingAndEnd(t *testing.T) {
	g := grammar.New("G", nil)
	defer g.Free()
	g.SetRoot(g.Seq(g.Anything(), g.Anything(), g.End()))
	cg, err := backend.Compile(g, backend.Regular)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	defer cg.Free()
	if _, err := cg.Parse([]byte("xy")); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if _, err := cg.Parse([]byte("xyz")); err == nil {
		t.Fatalf("expected trailing input to be rejected")
	}
}
