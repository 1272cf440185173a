package grammar

import "testing"

func TestDesugarLiteralSequence(t *testing.T) {
	g := New("G", nil)
	defer g.Free()
	seq := g.Seq(g.Token("a"), g.Token("b"))
	g.SetRoot(seq)
	res, err := Desugar(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CFG.NumRules() != 1 {
		t.Fatalf("expected 1 rule for a plain sequence, got %d", res.CFG.NumRules())
	}
	if len(res.CFG.Rule(0).RHS()) != 2 {
		t.Fatalf("expected 2 RHS symbols, got %d", len(res.CFG.Rule(0).RHS()))
	}
}

func TestDesugarChoiceProducesOneRulePerAlternative(t *testing.T) {
	g := New("G", nil)
	defer g.Free()
	ch := g.Choice(g.Token("a"), g.Token("b"), g.Token("c"))
	g.SetRoot(ch)
	res, err := Desugar(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CFG.NumRules() != 3 {
		t.Fatalf("expected 3 rules (one per alternative), got %d", res.CFG.NumRules())
	}
}

func TestDesugarRejectsNotFollowedBy(t *testing.T) {
	g := New("G", nil)
	defer g.Free()
	n := g.NotFollowedBy(g.Token("a"))
	g.SetRoot(n)
	if _, err := Desugar(g); err == nil {
		t.Fatalf("expected PEG_ONLY_CONSTRUCT_IN_CFG error")
	}
}

func TestDesugarRejectsUnboundIndirect(t *testing.T) {
	g := New("G", nil)
	defer g.Free()
	ind := g.Indirect("Expr")
	g.SetRoot(ind)
	if _, err := Desugar(g); err == nil {
		t.Fatalf("expected UNBOUND_INDIRECT error")
	}
}

func TestDesugarRecursiveGrammarViaIndirect(t *testing.T) {
	g := New("G", nil)
	defer g.Free()
	expr := g.Indirect("Expr")
	plus := g.Seq(g.Token("n"), g.Token("+"), expr)
	choice := g.Choice(plus, g.Token("n"))
	g.Bind(expr, choice)
	g.SetRoot(expr)
	res, err := Desugar(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CFG.NumRules() == 0 {
		t.Fatalf("expected rules to be generated for a recursive grammar")
	}
}

func TestDesugarActionAttachesAnnotation(t *testing.T) {
	g := New("G", nil)
	defer g.Free()
	act := g.Action(g.Token("a"), func(v interface{}) (interface{}, error) { return v, nil })
	g.SetRoot(act)
	res, err := Desugar(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, r := range res.CFG.Rules() {
		if a := res.Annotations.Get(r.Serial); a != nil && a.Action != nil {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected at least one rule to carry an Action annotation")
	}
}
