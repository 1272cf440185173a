package cfg

import (
	"bytes"
	"fmt"

	"github.com/pgcombinator/pgc/internal/iteratable"
)

// Item is a dotted LR(0) item: a rule together with a dot position marking
// how much of its RHS has already been matched.
type Item struct {
	rule   *Rule
	dot    int
	Origin uint // carried along by Advance; nothing in this module sets it
}

// StartItem returns the dotted item [rule -> . RHS] for the grammar's start
// rule. The second result is always nil; callers supply the end-of-input
// lookahead themselves.
func StartItem(rule *Rule) (Item, *Symbol) {
	return Item{rule: rule, dot: 0}, nil
}

// Rule returns the item's underlying rule.
func (i Item) Rule() *Rule { return i.rule }

// PeekSymbol returns the symbol immediately following the dot, or nil if
// the dot is at the end of the RHS (a completed item).
func (i Item) PeekSymbol() *Symbol {
	if i.dot >= len(i.rule.rhs) {
		return nil
	}
	return i.rule.rhs[i.dot]
}

// Advance returns a new item with the dot moved one position to the right.
// Panics if called on a completed item.
func (i Item) Advance() Item {
	if i.dot >= len(i.rule.rhs) {
		panic("cfg: Advance called on a completed item")
	}
	return Item{rule: i.rule, dot: i.dot + 1, Origin: i.Origin}
}

// Prefix returns the symbols already matched, i.e. RHS[0:dot].
func (i Item) Prefix() []*Symbol {
	return i.rule.rhs[:i.dot]
}

// Dot returns the item's dot position.
func (i Item) Dot() int { return i.dot }

func (i Item) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%v ::=", i.rule.LHS)
	for j, s := range i.rule.rhs {
		if j == i.dot {
			b.WriteString(" .")
		}
		fmt.Fprintf(&b, " %v", s)
	}
	if i.dot == len(i.rule.rhs) {
		b.WriteString(" .")
	}
	b.WriteString("]")
	return b.String()
}

// asItem type-asserts an interface{} taken out of an iteratable.Set back
// into an Item. Items are stored by value in sets (they are small and
// comparable), matching the teacher's habit of storing Earley items
// directly rather than by pointer.
func asItem(x interface{}) Item {
	return x.(Item)
}

// newItemSet creates an empty set suitable for holding Items.
func newItemSet() *iteratable.Set {
	return iteratable.New()
}

// itemSetString renders an item set for tracing.
func itemSetString(s *iteratable.Set) string {
	var b bytes.Buffer
	b.WriteString("{")
	first := true
	for _, x := range s.Values() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%v", asItem(x))
	}
	b.WriteString("}")
	return b.String()
}

// Dump writes an item set to the trace log, one item per line.
func Dump(s *iteratable.Set) {
	for _, x := range s.Values() {
		tracer().Debugf("  %v", asItem(x))
	}
}
