package pgc

import "fmt"

// Code identifies the kind of a compile or parse failure.
type Code int

const (
	// Compile errors. These are permanent: a parser left in this state by
	// compile() is not attached to a backend and must be recompiled.
	GrammarNotLLK Code = iota + 1
	GrammarAmbiguous
	UnboundIndirect
	PegOnlyConstructInCFG
	BackendUnsupported

	// Parse errors.
	ParseFailed
	AmbiguousResult

	// Resource errors.
	AllocationFailed
)

func (c Code) String() string {
	switch c {
	case GrammarNotLLK:
		return "GRAMMAR_NOT_LLK"
	case GrammarAmbiguous:
		return "GRAMMAR_AMBIGUOUS"
	case UnboundIndirect:
		return "UNBOUND_INDIRECT"
	case PegOnlyConstructInCFG:
		return "PEG_ONLY_CONSTRUCT_IN_CFG"
	case BackendUnsupported:
		return "BACKEND_UNSUPPORTED"
	case ParseFailed:
		return "PARSE_FAILED"
	case AmbiguousResult:
		return "AMBIGUOUS_RESULT"
	case AllocationFailed:
		return "ALLOCATION_FAILED"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Error is the single structured error type returned from compile and
// parse. Position and Expected are only meaningful for parse errors.
type Error struct {
	Code     Code
	Message  string
	Position uint64
	Expected []TokType // acceptable terminals at Position, for ParseFailed
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates an Error with a formatted message.
func NewError(code Code, msg string, args ...interface{}) *Error {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &Error{Code: code, Message: msg}
}

// ParseFailure creates a PARSE_FAILED error carrying a position and the
// set of terminals that would have been acceptable there.
func ParseFailure(pos uint64, expected []TokType) *Error {
	return &Error{
		Code:     ParseFailed,
		Message:  fmt.Sprintf("no production matches the input at byte %d", pos),
		Position: pos,
		Expected: expected,
	}
}
