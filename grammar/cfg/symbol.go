/*
Package cfg implements a normalized context-free grammar representation
(symbols, rules, dotted items) and the static analyses (FIRST/FOLLOW,
nullability, item-set closures) shared by the table-driven backends
(lalr, glr) and consulted in read-only fashion by llk. The user-facing
combinator graph in package grammar is desugared into a cfg.Grammar by
grammar/desugar.go before any of those backends see it.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package cfg

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/pgcombinator/pgc"
)

// tracer traces with key 'pgc.cfg'.
func tracer() tracing.Trace {
	return tracing.Select("pgc.cfg")
}

// Symbol is either a terminal (carrying a token type) or a non-terminal
// (carrying a name only; its productions are held by the owning Grammar).
type Symbol struct {
	Name     string
	Value    pgc.TokType // token type for terminals; synthetic negative ID for non-terminals
	terminal bool
}

// IsTerminal reports whether the symbol is a terminal.
func (s *Symbol) IsTerminal() bool { return s.terminal }

// TokenType returns the symbol's token type (for terminals) or its
// synthetic non-terminal ID (for non-terminals) — both live in the same
// int32 space so they can share sparse-matrix columns.
func (s *Symbol) TokenType() pgc.TokType { return s.Value }

func (s *Symbol) String() string {
	if s.terminal {
		return fmt.Sprintf("%s", s.Name)
	}
	return fmt.Sprintf("[%s]", s.Name)
}
