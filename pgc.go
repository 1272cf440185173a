package pgc

import "fmt"

// TokType is a category type for a terminal. Terminal classes are assigned
// during desugaring (see grammar/desugar.go), counting up from 1 in
// declaration order; negative values are used for pseudo-terminals such
// as end-of-input, and grammar/cfg numbers non-terminals below them.
type TokType int32

// EOF is the pseudo-terminal matching only at end of input.
const EOF TokType = -1

// Epsilon is the pseudo-terminal representing the empty string.
const Epsilon TokType = -2

// Unmatched is the pseudo-terminal a scanner emits for a byte it could
// not classify against any declared terminal.
const Unmatched TokType = -3

// Token is produced by a tokenizer/backend for every terminal matched
// during a parse.
type Token interface {
	TokType() TokType
	Lexeme() string
	Value() interface{}
	Span() Span
}

// Span denotes a half-open byte range [From, To) within the input.
type Span [2]uint64

// From returns the start offset of a span.
func (s Span) From() uint64 { return s[0] }

// To returns the offset just past the end of a span.
func (s Span) To() uint64 { return s[1] }

// Len returns the number of bytes covered by a span.
func (s Span) Len() uint64 { return s[1] - s[0] }

// IsNull reports whether the span is the zero span.
func (s Span) IsNull() bool { return s == Span{} }

// Extend grows s so that it covers other as well.
func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}

// BasicToken is an unsophisticated Token implementation, sufficient for
// the table-driven backends (llk, lalr, glr) which only need a terminal
// class, a lexeme and a span.
type BasicToken struct {
	Kind   TokType
	Lexeme_ string
	Val    interface{}
	Spn    Span
}

var _ Token = BasicToken{}

func (t BasicToken) TokType() TokType     { return t.Kind }
func (t BasicToken) Lexeme() string       { return t.Lexeme_ }
func (t BasicToken) Value() interface{}   { return t.Val }
func (t BasicToken) Span() Span           { return t.Spn }
