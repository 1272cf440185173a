package grammar

import "testing"

func TestTokenNode(t *testing.T) {
	g := New("G", nil)
	defer g.Free()
	tok := g.Token("abc")
	n := g.Node(tok)
	if n.Kind != KToken {
		t.Fatalf("expected KToken, got %v", n.Kind)
	}
	if string(n.Literal) != "abc" {
		t.Fatalf("expected literal 'abc', got %q", n.Literal)
	}
}

func TestSequenceAndChoice(t *testing.T) {
	g := New("G", nil)
	defer g.Free()
	a := g.Token("a")
	b := g.Token("b")
	seq := g.Seq(a, b)
	if n := g.Node(seq); n.Kind != KSequence || len(n.Children) != 2 {
		t.Fatalf("unexpected sequence node: %+v", n)
	}
	ch := g.Choice(a, b)
	if n := g.Node(ch); n.Kind != KChoice || len(n.Children) != 2 {
		t.Fatalf("unexpected choice node: %+v", n)
	}
}

func TestIndirectMustBeBoundExactlyOnce(t *testing.T) {
	g := New("G", nil)
	defer g.Free()
	ind := g.Indirect("Expr")
	if got := g.UnboundIndirects(); len(got) != 1 || got[0] != "Expr" {
		t.Fatalf("expected one unbound indirect 'Expr', got %v", got)
	}
	target := g.Token("x")
	g.Bind(ind, target)
	if got := g.UnboundIndirects(); len(got) != 0 {
		t.Fatalf("expected no unbound indirects after Bind, got %v", got)
	}
}

func TestBindTwiceFails(t *testing.T) {
	g := New("G", nil)
	defer g.Free()
	ind := g.Indirect("Expr")
	g.Bind(ind, g.Token("x"))
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic binding an already-bound Indirect twice")
		}
	}()
	g.Bind(ind, g.Token("y"))
}

func TestCharSetRange(t *testing.T) {
	var cs CharSet
	cs.SetRange('0', '9')
	for b := byte('0'); b <= '9'; b++ {
		if !cs.Contains(b) {
			t.Fatalf("expected digit %c to be in charset", b)
		}
	}
	if cs.Contains('a') {
		t.Fatalf("expected 'a' to not be in charset")
	}
}
