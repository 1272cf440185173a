/*
Command pgrepl is an interactive console for building grammars,
compiling them against any registered backend, and parsing input
against the result.

Adapted from npillmayer-gorgo/terex/terexlang/trepl/repl.go's REPL
shape (a chzyer/readline loop, pterm for colored status messages and
tree rendering) but retargeted from evaluating TeREx s-expressions to
this module's own domain: building grammars out of combinators,
compiling them with backend.Compile, and rendering the resulting
tree.Node. There is no term-rewriting layer here, so the s-expression
reader/evaluator trepl built on top of terex/terexlang has no
equivalent — see DESIGN.md for why that layer was dropped rather than
adapted.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/tracing"

	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/grammar"
	"github.com/pgcombinator/pgc/runtime"
	"github.com/pgcombinator/pgc/tree"

	_ "github.com/pgcombinator/pgc/backend/glr"
	_ "github.com/pgcombinator/pgc/backend/lalr"
	_ "github.com/pgcombinator/pgc/backend/llk"
	_ "github.com/pgcombinator/pgc/backend/packrat"
	_ "github.com/pgcombinator/pgc/backend/regular"
)

// tracer traces with key 'pgc.pgrepl'.
func tracer() tracing.Trace {
	return tracing.Select("pgc.pgrepl")
}

// We provide a small arithmetic-expression grammar as the REPL's
// default, built directly from combinators rather than parsed from a
// textual grammar notation:
//
//	Expr   = Term (("+"|"-") Term)*
//	Term   = Factor (("*"|"/") Factor)*
//	Factor = Number | "(" Expr ")"
//	Number = Digit+
func makeExprGrammar() *grammar.Grammar {
	g := grammar.New("expr", nil)
	var digit grammar.CharSet
	digit.SetRange('0', '9')
	number := g.Many1(g.CharSet(digit))
	expr := g.Indirect("Expr")
	term := g.Indirect("Term")
	factor := g.Choice(number, g.Seq(g.Token("("), expr, g.Token(")")))
	g.Bind(term, g.Choice(
		g.Seq(term, g.Token("*"), factor),
		g.Seq(term, g.Token("/"), factor),
		factor,
	))
	g.Bind(expr, g.Choice(
		g.Seq(expr, g.Token("+"), term),
		g.Seq(expr, g.Token("-"), term),
		term,
	))
	g.SetRoot(expr)
	return g
}

func main() {
	initDisplay()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	backendName := flag.String("backend", "packrat", "Initial backend [packrat|regular|llk|lalr|glr]")
	flag.Parse()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel))
	pterm.Info.Println("Welcome to pgrepl")

	repl, err := readline.New("pgrepl> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()

	s := &session{
		env:     runtime.NewEnvironment(),
		repl:    repl,
		grammar: makeExprGrammar(),
	}
	if _, ok := backend.Lookup(parseBackendFlag(*backendName)); !ok {
		pterm.Error.Println("unknown backend: " + *backendName)
		os.Exit(2)
	}
	s.backendID = parseBackendFlag(*backendName)
	s.env.Define("expr", s.grammar)

	tracer().Infof("Quit with <ctrl>D")
	s.REPL()
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// session is the REPL's interpreter state: the active grammar and
// backend, a readline instance, and a name table of grammars built or
// compiled so far in this session.
type session struct {
	env       *runtime.Environment
	repl      *readline.Instance
	grammar   *grammar.Grammar
	backendID backend.ID
	compiled  backend.CompiledGrammar
}

// REPL drives the read-eval-print loop until EOF (<ctrl>D) or a
// ":quit" command.
func (s *session) REPL() {
	for {
		line, err := s.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if quit := s.eval(line); quit {
			break
		}
	}
	pterm.Println("Good bye!")
}

// eval dispatches a ":"-prefixed command or, for a plain line, parses
// it against the active grammar and backend.
func (s *session) eval(line string) (quit bool) {
	if strings.HasPrefix(line, ":") {
		return s.command(line[1:])
	}
	s.parseAndShow(line)
	return false
}

func (s *session) command(line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "quit", "q":
		return true
	case "backend":
		if len(fields) != 2 {
			pterm.Error.Println("usage: :backend <packrat|regular|llk|lalr|glr>")
			return false
		}
		id := parseBackendFlag(fields[1])
		if _, ok := backend.Lookup(id); !ok {
			pterm.Error.Println("unknown backend: " + fields[1])
			return false
		}
		s.backendID = id
		s.compiled = nil
		pterm.Info.Println("active backend is now " + id.String())
	case "compile":
		cg, err := backend.Compile(s.grammar, s.backendID)
		if err != nil {
			pterm.Error.Println(err.Error())
			return false
		}
		s.compiled = cg
		pterm.Info.Println("compiled '" + s.grammar.Name + "' for " + s.backendID.String())
	case "def":
		if len(fields) != 2 {
			pterm.Error.Println("usage: :def <name>")
			return false
		}
		b, _ := s.env.Define(fields[1], s.grammar)
		if s.compiled != nil {
			b.SetCompiled(s.backendID, s.compiled)
		}
		pterm.Info.Println("defined " + b.String())
	case "use":
		if len(fields) != 2 {
			pterm.Error.Println("usage: :use <name>")
			return false
		}
		b, ok := s.env.Resolve(fields[1])
		if !ok {
			pterm.Error.Println("no grammar named " + fields[1])
			return false
		}
		s.grammar = b.Grammar
		if b.Compiled != nil {
			s.backendID = b.Backend
			s.compiled = b.Compiled
		} else {
			s.compiled = nil
		}
		pterm.Info.Println("now using " + b.String())
	case "env":
		if s.env.Size() == 0 {
			pterm.Info.Println("(empty)")
		}
		s.env.Each(func(name string, b *runtime.Binding) {
			pterm.Println(b.String())
		})
	default:
		pterm.Error.Println("unknown command: " + fields[0])
	}
	return false
}

func (s *session) parseAndShow(input string) {
	if s.compiled == nil {
		cg, err := backend.Compile(s.grammar, s.backendID)
		if err != nil {
			pterm.Error.Println(err.Error())
			return
		}
		s.compiled = cg
	}
	node, err := s.compiled.Parse([]byte(input))
	if err != nil {
		if perr, ok := err.(*pgc.Error); ok {
			pterm.Error.Println(perr.Error())
		} else {
			pterm.Error.Println(err.Error())
		}
		return
	}
	pterm.Info.Println("parsed OK")
	root := treeToPtermNode(node)
	pterm.DefaultTree.WithRoot(root).Render()
}

// treeToPtermNode renders a parse tree for pterm.DefaultTree, adapted
// from trepl/repl.go's leveledElem/indentedListFrom pair (which built
// a pterm.LeveledList from a terex cons-list) to instead recurse
// directly over tree.Node's Children.
func treeToPtermNode(n *tree.Node) pterm.TreeNode {
	text := fmt.Sprintf("%s %v", n.Symbol, n.Span)
	if n.Kind == tree.KToken {
		if tok, ok := n.Value.(pgc.Token); ok {
			text = fmt.Sprintf("%s %q", n.Symbol, tok.Lexeme())
		}
	}
	node := pterm.TreeNode{Text: text}
	for _, c := range n.Children {
		node.Children = append(node.Children, treeToPtermNode(c))
	}
	return node
}

func parseBackendFlag(name string) backend.ID {
	switch strings.ToLower(name) {
	case "packrat":
		return backend.Packrat
	case "regular":
		return backend.Regular
	case "llk":
		return backend.LLK
	case "lalr":
		return backend.LALR
	case "glr":
		return backend.GLR
	default:
		return backend.ID(-1)
	}
}
