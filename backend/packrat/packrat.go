/*
Package packrat implements the PEG/packrat backend (component E):
memoized recursive descent directly over the user-IR combinator graph,
with ordered choice, greedy repetition, zero-width lookahead, and
left-recursion support via Warth-style seed growing (re-evaluating a
left-recursive call to a fixed point of strictly increasing consumption).

Grounded on npillmayer-gorgo/lr/earley/parsetree.go's walk/RuleNode
machinery, adapted from Earley-item backward-walking to direct recursive
descent (packrat has no Earley chart to walk backward over — the memo
table plays that role instead).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package packrat

import (
	"github.com/cnf/structhash"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/grammar"
	"github.com/pgcombinator/pgc/tree"
)

func init() {
	backend.Register(&Backend{})
}

// tracer traces with key 'pgc.packrat'.
func tracer() tracing.Trace {
	return tracing.Select("pgc.packrat")
}

// Backend implements backend.Backend for the packrat strategy.
type Backend struct{}

// ID returns backend.Packrat.
func (*Backend) ID() backend.ID { return backend.Packrat }

// Compile validates g (every Indirect must be bound; NotFollowedBy and
// FollowedBy are fine here, since packrat is the PEG-native backend) and
// returns a CompiledGrammar ready to parse input.
func (*Backend) Compile(g *grammar.Grammar) (backend.CompiledGrammar, error) {
	if unbound := g.UnboundIndirects(); len(unbound) > 0 {
		return nil, pgc.NewError(pgc.UnboundIndirect, "grammar %q has unbound indirects: %v", g.Name, unbound)
	}
	if g.Root() == grammar.NoNode {
		return nil, pgc.NewError(pgc.UnboundIndirect, "grammar %q has no root node", g.Name)
	}
	return &Compiled{g: g}, nil
}

// Compiled is a grammar compiled for the packrat backend.
type Compiled struct {
	g *grammar.Grammar
}

// Free is a no-op: packrat holds no resources beyond the grammar's own
// arena, released by grammar.Grammar.Free.
func (*Compiled) Free() {}

// Parse runs a full parse of input against the grammar's root node.
// Succeeds only if the match consumes every byte of input.
func (c *Compiled) Parse(input []byte) (*tree.Node, error) {
	p := &parser{g: c.g, input: input, memo: make(map[string]*memoEntry)}
	res := p.parse(c.g.Root(), 0)
	if !res.ok {
		return nil, pgc.ParseFailure(res.newPos, nil)
	}
	if res.newPos != uint64(len(input)) {
		return nil, pgc.ParseFailure(res.newPos, nil)
	}
	return res.node, nil
}

type memoKeySource struct {
	Node grammar.NodeID
	Pos  uint64
}

type memoEntry struct {
	node       *tree.Node
	newPos     uint64
	value      interface{}
	ok         bool
	evaluating bool
	recursed   bool // re-entered while still evaluating (a left-recursive head)
}

type parseResult struct {
	node   *tree.Node
	newPos uint64
	value  interface{}
	ok     bool
}

type parser struct {
	g     *grammar.Grammar
	input []byte
	memo  map[string]*memoEntry
	heads int // left-recursive heads currently growing their seed
}

func memoKey(id grammar.NodeID, pos uint64) string {
	h, err := structhash.Hash(memoKeySource{Node: id, Pos: pos}, 1)
	if err != nil {
		// structhash only fails on unhashable types, which memoKeySource
		// never is; a failure here would be a programming error.
		panic(err)
	}
	return h
}

// parse is the memoized entry point for matching node id at byte offset
// pos. Left-recursive calls are supported by seeding the memo with a
// failure, then re-evaluating the node at the same position as long as
// each attempt consumes strictly more input than the last (Warth et al.,
// "Packrat Parsers Can Support Left Recursion").
func (p *parser) parse(id grammar.NodeID, pos uint64) parseResult {
	key := memoKey(id, pos)
	if e, ok := p.memo[key]; ok && !e.evaluating {
		return parseResult{e.node, e.newPos, e.value, e.ok}
	}
	if e, ok := p.memo[key]; ok && e.evaluating {
		// Recursive re-entry during seed growing: hand back the current
		// best guess, which is what lets the recursive call make progress.
		if !e.recursed {
			e.recursed = true
			p.heads++
		}
		return parseResult{e.node, e.newPos, e.value, e.ok}
	}
	p.memo[key] = &memoEntry{newPos: pos, ok: false, evaluating: true}
	for {
		r := p.evalNode(id, pos)
		prev := p.memo[key]
		grew := r.ok && (!prev.ok || r.newPos > prev.newPos)
		if !grew {
			break
		}
		p.memo[key] = &memoEntry{node: r.node, newPos: r.newPos, value: r.value, ok: r.ok, evaluating: true, recursed: prev.recursed}
	}
	final := p.memo[key]
	final.evaluating = false
	if final.recursed {
		p.heads--
	}
	res := parseResult{final.node, final.newPos, final.value, final.ok}
	// A result computed while a left-recursive head is still growing its
	// seed may depend on that head's provisional value, so it is not kept.
	if p.heads > 0 {
		delete(p.memo, key)
	}
	return res
}

func fail(pos uint64) parseResult { return parseResult{newPos: pos, ok: false} }

func (p *parser) evalNode(id grammar.NodeID, pos uint64) parseResult {
	n := p.g.Node(id)
	switch n.Kind {
	case grammar.KToken:
		lit := n.Literal
		if uint64(len(lit)) > uint64(len(p.input))-pos {
			return fail(pos)
		}
		for i, b := range lit {
			if p.input[pos+uint64(i)] != b {
				return fail(pos)
			}
		}
		end := pos + uint64(len(lit))
		return parseResult{tree.Leaf("Token", pgc.BasicToken{Lexeme_: string(lit), Spn: pgc.Span{pos, end}}), end, string(lit), true}
	case grammar.KCharSet:
		if pos >= uint64(len(p.input)) || !n.Set.Contains(p.input[pos]) {
			return fail(pos)
		}
		b := p.input[pos]
		return parseResult{tree.Leaf("CharSet", pgc.BasicToken{Lexeme_: string(b), Spn: pgc.Span{pos, pos + 1}}), pos + 1, b, true}
	case grammar.KAnything:
		if pos >= uint64(len(p.input)) {
			return fail(pos)
		}
		b := p.input[pos]
		return parseResult{tree.Leaf("Anything", pgc.BasicToken{Lexeme_: string(b), Spn: pgc.Span{pos, pos + 1}}), pos + 1, b, true}
	case grammar.KEnd:
		if pos != uint64(len(p.input)) {
			return fail(pos)
		}
		return parseResult{&tree.Node{Kind: tree.KBytes, Symbol: "End", Span: pgc.Span{pos, pos}}, pos, nil, true}
	case grammar.KNothing:
		return fail(pos)
	case grammar.KEpsilon:
		return parseResult{&tree.Node{Kind: tree.KBytes, Symbol: "Epsilon", Span: pgc.Span{pos, pos}}, pos, nil, true}
	case grammar.KSequence:
		children := make([]*tree.Node, 0, len(n.Children))
		cur := pos
		for _, c := range n.Children {
			r := p.parse(c, cur)
			if !r.ok {
				return fail(pos)
			}
			if r.node != tree.Ignored {
				children = append(children, r.node)
			}
			cur = r.newPos
		}
		return parseResult{tree.Reduce("Sequence", children), cur, nil, true}
	case grammar.KChoice:
		for _, c := range n.Children {
			r := p.parse(c, pos)
			if r.ok {
				return r
			}
		}
		return fail(pos)
	case grammar.KOptional:
		r := p.parse(n.Child, pos)
		if r.ok && r.node != tree.Ignored {
			return parseResult{tree.Reduce("Optional", []*tree.Node{r.node}), r.newPos, r.value, true}
		}
		if r.ok {
			return parseResult{tree.Reduce("Optional", nil), r.newPos, r.value, true}
		}
		return parseResult{tree.Reduce("Optional", nil), pos, nil, true}
	case grammar.KMany:
		return p.evalMany(n.Child, pos, "Many")
	case grammar.KMany1:
		first := p.parse(n.Child, pos)
		if !first.ok {
			return fail(pos)
		}
		rest := p.evalMany(n.Child, first.newPos, "Many1")
		children := rest.node.Children
		if first.node != tree.Ignored {
			children = append([]*tree.Node{first.node}, children...)
		}
		return parseResult{tree.Reduce("Many1", children), rest.newPos, nil, true}
	case grammar.KSepBy:
		r := p.evalSepBy1(n.Child, n.Sep, pos)
		if r.ok {
			return r
		}
		return parseResult{tree.Reduce("SepBy", nil), pos, nil, true}
	case grammar.KSepBy1:
		return p.evalSepBy1(n.Child, n.Sep, pos)
	case grammar.KNotFollowedBy:
		r := p.parse(n.Child, pos)
		if r.ok {
			return fail(pos)
		}
		return parseResult{&tree.Node{Kind: tree.KBytes, Symbol: "NotFollowedBy", Span: pgc.Span{pos, pos}}, pos, nil, true}
	case grammar.KFollowedBy:
		r := p.parse(n.Child, pos)
		if !r.ok {
			return fail(pos)
		}
		return parseResult{&tree.Node{Kind: tree.KBytes, Symbol: "FollowedBy", Span: pgc.Span{pos, pos}}, pos, nil, true}
	case grammar.KIndirect:
		return p.parse(n.Bound, pos)
	case grammar.KAction:
		r := p.parse(n.Child, pos)
		if !r.ok {
			return fail(pos)
		}
		v, err := n.Action(r.value)
		if err != nil {
			return fail(pos)
		}
		if r.node == tree.Ignored {
			return parseResult{tree.Ignored, r.newPos, v, true}
		}
		return parseResult{r.node.WithValue(tree.KUser, v), r.newPos, v, true}
	case grammar.KAttr:
		r := p.parse(n.Child, pos)
		if !r.ok || !n.Attr(r.value) {
			return fail(pos)
		}
		return r
	case grammar.KIgnore:
		r := p.parse(n.Child, pos)
		if !r.ok {
			return fail(pos)
		}
		return parseResult{tree.Ignored, r.newPos, nil, true}
	default:
		return fail(pos)
	}
}

// evalMany matches child greedily, zero or more times, stopping once a
// repetition fails to consume any input — this both implements greedy
// Many and prevents an infinite loop on an epsilon-matching child.
func (p *parser) evalMany(child grammar.NodeID, pos uint64, label string) parseResult {
	var children []*tree.Node
	cur := pos
	for {
		r := p.parse(child, cur)
		if !r.ok || r.newPos == cur {
			break
		}
		if r.node != tree.Ignored {
			children = append(children, r.node)
		}
		cur = r.newPos
	}
	return parseResult{tree.Reduce(label, children), cur, nil, true}
}

func (p *parser) evalSepBy1(item, sep grammar.NodeID, pos uint64) parseResult {
	first := p.parse(item, pos)
	if !first.ok {
		return fail(pos)
	}
	var children []*tree.Node
	if first.node != tree.Ignored {
		children = append(children, first.node)
	}
	cur := first.newPos
	for {
		s := p.parse(sep, cur)
		if !s.ok {
			break
		}
		it := p.parse(item, s.newPos)
		if !it.ok {
			break
		}
		if it.node != tree.Ignored {
			children = append(children, it.node)
		}
		cur = it.newPos
	}
	return parseResult{tree.Reduce("SepBy1", children), cur, nil, true}
}
