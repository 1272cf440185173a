/*
Package scanner provides the default lexer used by the table-driven
backends (llk, lalr, glr): a greedy, longest-match tokenizer driven by
the TerminalInfo table produced by grammar.Desugar. Each of those
backends constructs this tokenizer itself; none accepts another
Tokenizer in its place.

Grounded on npillmayer-gorgo/lr/scanner/scanner.go's Tokenizer interface
and DefaultToken type.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package scanner

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/pgcombinator/pgc"
	"github.com/pgcombinator/pgc/grammar"
)

// tracer traces with key 'pgc.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("pgc.scanner")
}

// Tokenizer is the scanner interface the table-driven backends consume.
type Tokenizer interface {
	NextToken() pgc.Token
	SetErrorHandler(func(error))
}

// DefaultTokenizer performs greedy longest-match tokenization over a
// TerminalInfo table. Ties between equally long matches are broken by
// terminal registration order (lower token values win), matching the
// order literals were declared in the source grammar.
type DefaultTokenizer struct {
	input []byte
	pos   uint64
	order []pgc.TokType // terminal token values, in registration order
	info  map[pgc.TokType]*grammar.TerminalInfo
	onErr func(error)
}

var _ Tokenizer = (*DefaultTokenizer)(nil)

// New creates a tokenizer scanning input, matching terminals from info.
// order must list info's keys in the order their owning grammar declared
// them, for deterministic tie-breaking.
func New(input []byte, info map[pgc.TokType]*grammar.TerminalInfo, order []pgc.TokType) *DefaultTokenizer {
	return &DefaultTokenizer{input: input, info: info, order: order, onErr: logError}
}

func logError(err error) {
	tracer().Errorf("scanner error: %v", err)
}

// SetErrorHandler installs h as the error callback; nil resets it to the
// default (trace-log) handler.
func (t *DefaultTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		t.onErr = logError
		return
	}
	t.onErr = h
}

// NextToken scans and returns the next token, or an EOF token once the
// input is exhausted.
func (t *DefaultTokenizer) NextToken() pgc.Token {
	if t.pos >= uint64(len(t.input)) {
		return pgc.BasicToken{Kind: pgc.EOF, Lexeme_: "", Spn: pgc.Span{t.pos, t.pos}}
	}
	bestTok := pgc.TokType(0)
	bestLen := -1
	found := false
	for _, tok := range t.order {
		info := t.info[tok]
		n := t.matchLen(info)
		if n < 0 {
			continue
		}
		if n > bestLen {
			bestLen, bestTok, found = n, tok, true
		}
	}
	if !found {
		t.onErr(pgc.ParseFailure(t.pos, t.order))
		// Advance one byte to avoid looping forever on unmatched input.
		start := t.pos
		t.pos++
		return pgc.BasicToken{Kind: pgc.Unmatched, Lexeme_: string(t.input[start:t.pos]), Spn: pgc.Span{start, t.pos}}
	}
	start := t.pos
	t.pos += uint64(bestLen)
	lexeme := string(t.input[start:t.pos])
	return pgc.BasicToken{Kind: bestTok, Lexeme_: lexeme, Spn: pgc.Span{start, t.pos}}
}

// matchLen returns the number of bytes info matches at the current
// position, or -1 if it does not match at all.
func (t *DefaultTokenizer) matchLen(info *grammar.TerminalInfo) int {
	switch info.Kind {
	case grammar.TLiteral:
		lit := info.Literal
		if uint64(len(lit)) > uint64(len(t.input))-t.pos {
			return -1
		}
		for i, b := range lit {
			if t.input[t.pos+uint64(i)] != b {
				return -1
			}
		}
		return len(lit)
	case grammar.TCharSet:
		if t.pos >= uint64(len(t.input)) {
			return -1
		}
		if info.Set.Contains(t.input[t.pos]) {
			return 1
		}
		return -1
	case grammar.TAnything:
		if t.pos >= uint64(len(t.input)) {
			return -1
		}
		return 1
	case grammar.TEnd:
		if t.pos == uint64(len(t.input)) {
			return 0
		}
		return -1
	default:
		return -1
	}
}
