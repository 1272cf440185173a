/*
Package backend defines the small, fixed registry the rest of the module
compiles grammars through: an integer ID per backend (packrat, regular,
llk, lalr, glr), a common Backend/CompiledGrammar contract, and a
Compile function that dispatches to whichever concrete backend package
has registered itself for that ID.

This generalizes gorgo's looser convention (a client picks a concrete
backend package — lr/slr, lr/glr, lr/earley — and wires it up by hand)
into an explicit vtable, as called for by SPEC_FULL.md's component D: a
grammar's choice of backend is a runtime value, not a set of distinct
import statements.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package backend

import (
	"fmt"

	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/grammar"
	"github.com/pgcombinator/pgc/tree"
)

// ID identifies a parsing backend. Values are stable and safe to persist
// (e.g. in a Grammar.Backend field) across a process's lifetime.
type ID int

const (
	Packrat ID = iota // PEG-style memoized recursive descent (component E)
	Regular           // DFA backend for non-recursive grammars (component J)
	LLK               // FIRST_k/FOLLOW_k table-driven predictive parsing (component F)
	LALR              // LALR(1) table-driven shift/reduce parsing (component G)
	GLR               // Graph-Structured-Stack generalized LR (component H)
)

func (id ID) String() string {
	switch id {
	case Packrat:
		return "packrat"
	case Regular:
		return "regular"
	case LLK:
		return "llk"
	case LALR:
		return "lalr"
	case GLR:
		return "glr"
	default:
		return fmt.Sprintf("ID(%d)", int(id))
	}
}

// CompiledGrammar is the result of compiling a grammar against a
// specific backend: something that can parse byte input and, once no
// longer needed, release its resources. Concrete backends may implement
// additional, backend-specific methods (e.g. the CFG accessor of the llk
// backend); callers who need those type-assert the concrete type back out.
type CompiledGrammar interface {
	Parse(input []byte) (*tree.Node, error)
	Free()
}

// Backend is a registered parsing strategy.
type Backend interface {
	ID() ID
	Compile(g *grammar.Grammar) (CompiledGrammar, error)
}

var registry [5]Backend

// Register installs b as the implementation for its own ID. Called from
// the init() function of each backend's package; importing a backend
// package for its side effect (e.g. `import _ "github.com/pgcombinator/pgc/backend/lalr"`)
// is what makes that backend available to Compile.
func Register(b Backend) {
	registry[b.ID()] = b
}

// Lookup returns the backend registered for id, or (nil, false) if its
// package was never imported.
func Lookup(id ID) (Backend, bool) {
	if int(id) < 0 || int(id) >= len(registry) {
		return nil, false
	}
	b := registry[id]
	return b, b != nil
}

// Compile compiles g against the backend identified by id, and — on
// success — records the outcome onto g itself (Backend, State, Compiled)
// so introspection tools (e.g. cmd/pgrepl) can query a grammar's compiled
// status without holding onto the CompiledGrammar value separately.
func Compile(g *grammar.Grammar, id ID) (CompiledGrammar, error) {
	b, ok := Lookup(id)
	if !ok {
		return nil, pgc.NewError(pgc.BackendUnsupported, "backend %v is not registered (forgot to import its package?)", id)
	}
	cg, err := b.Compile(g)
	if err != nil {
		return nil, err
	}
	g.Backend = int(id)
	g.State = cg
	g.Compiled = true
	if introspectable, ok := cg.(interface{ CFG() interface{} }); ok {
		g.CFG = introspectable.CFG()
	}
	return cg, nil
}
