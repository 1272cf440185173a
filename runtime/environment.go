/*
Package runtime implements the flat name table cmd/pgrepl uses to keep
track of the grammars a user has built and compiled during an
interactive session.

Trimmed from npillmayer-gorgo/runtime/symtable.go: that module's
SymbolTable/Tag pair (for a tree-of-scopes interpreter runtime) is
generalized here into a single binding table keyed by name, since a
REPL session has exactly one flat namespace of grammars, not a stack of
lexical scopes — the Scope/ScopeTree/MemoryFrameStack machinery around
it has no SPEC_FULL.md component left to attach to and was dropped
(see DESIGN.md).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package runtime

import (
	"fmt"

	"github.com/pgcombinator/pgc/backend"
	"github.com/pgcombinator/pgc/grammar"
)

// Binding associates a name with a grammar and, once compiled, the
// backend it was compiled against and the resulting CompiledGrammar.
type Binding struct {
	Name     string
	Grammar  *grammar.Grammar
	Backend  backend.ID
	Compiled backend.CompiledGrammar
}

// String is a debug Stringer for bindings.
func (b *Binding) String() string {
	if b.Compiled == nil {
		return fmt.Sprintf("<grammar '%s', uncompiled>", b.Name)
	}
	return fmt.Sprintf("<grammar '%s', compiled for %v>", b.Name, b.Backend)
}

// Environment is a name table of grammar bindings, used by cmd/pgrepl
// to let a session refer back to previously built grammars by name.
type Environment struct {
	table map[string]*Binding
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{table: make(map[string]*Binding)}
}

// Resolve looks up a binding by name. Returns nil, false if undefined.
func (e *Environment) Resolve(name string) (*Binding, bool) {
	b, ok := e.table[name]
	return b, ok
}

// Define creates (or overwrites) a binding for name to g, uncompiled.
// Returns the new binding and the previous one under this name, if any.
func (e *Environment) Define(name string, g *grammar.Grammar) (*Binding, *Binding) {
	old := e.table[name]
	b := &Binding{Name: name, Grammar: g}
	e.table[name] = b
	return b, old
}

// SetCompiled records the outcome of compiling a binding's grammar
// against a backend.
func (b *Binding) SetCompiled(id backend.ID, cg backend.CompiledGrammar) {
	b.Backend = id
	b.Compiled = cg
}

// Size counts the bindings currently defined.
func (e *Environment) Size() int {
	return len(e.table)
}

// Each iterates over every binding, in no particular order.
func (e *Environment) Each(f func(string, *Binding)) {
	for k, v := range e.table {
		f(k, v)
	}
}
