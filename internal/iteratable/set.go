/*
Package iteratable implements a small iteratable set, suitable for the
item-set and lookahead-set algorithms used throughout grammar/cfg and the
lalr/glr backends. Unusually, Union is destructive: it grows the receiver
in place, mirroring the way closure/goto fixed-point computations in
those algorithms want to accumulate into an existing working set.
Difference and Subset return new sets.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package iteratable

import (
	"bytes"
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
)

// Set is an insertion-ordered, iteratable set of comparable values.
type Set struct {
	order  *arraylist.List
	lookup map[interface{}]struct{}
	cursor int // -1 means "before the first element"
}

// New creates a set containing the given items (duplicates are dropped).
func New(items ...interface{}) *Set {
	s := &Set{
		order:  arraylist.New(),
		lookup: make(map[interface{}]struct{}),
		cursor: -1,
	}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts x if not already present and returns the set, for chaining.
func (s *Set) Add(x interface{}) *Set {
	if _, ok := s.lookup[x]; ok {
		return s
	}
	s.lookup[x] = struct{}{}
	s.order.Add(x)
	return s
}

// Remove deletes x from the set, if present.
func (s *Set) Remove(x interface{}) {
	if _, ok := s.lookup[x]; !ok {
		return
	}
	delete(s.lookup, x)
	s.order.Remove(s.indexOf(x))
}

func (s *Set) indexOf(x interface{}) int {
	it := s.order.Iterator()
	for it.Next() {
		if it.Value() == x {
			return it.Index()
		}
	}
	return -1
}

// Contains reports set membership.
func (s *Set) Contains(x interface{}) bool {
	_, ok := s.lookup[x]
	return ok
}

// Size returns the number of elements in the set.
func (s *Set) Size() int { return s.order.Size() }

// Empty reports whether the set has no elements.
func (s *Set) Empty() bool { return s.order.Empty() }

// Copy returns a shallow copy of the set.
func (s *Set) Copy() *Set {
	c := New()
	it := s.order.Iterator()
	for it.Next() {
		c.Add(it.Value())
	}
	return c
}

// Union merges other's elements into s, mutating s, and returns s.
func (s *Set) Union(other *Set) *Set {
	if other == nil {
		return s
	}
	it := other.order.Iterator()
	for it.Next() {
		s.Add(it.Value())
	}
	return s
}

// Difference returns a new set holding the elements of s that are not in
// other (s is left unchanged).
func (s *Set) Difference(other *Set) *Set {
	d := New()
	it := s.order.Iterator()
	for it.Next() {
		v := it.Value()
		if other == nil || !other.Contains(v) {
			d.Add(v)
		}
	}
	return d
}

// Subset returns a new set of the elements of s matching pred.
func (s *Set) Subset(pred func(interface{}) bool) *Set {
	r := New()
	it := s.order.Iterator()
	for it.Next() {
		if pred(it.Value()) {
			r.Add(it.Value())
		}
	}
	return r
}

// Equals reports whether s and other contain exactly the same elements.
func (s *Set) Equals(other *Set) bool {
	if other == nil {
		return s.Empty()
	}
	if s.Size() != other.Size() {
		return false
	}
	it := s.order.Iterator()
	for it.Next() {
		if !other.Contains(it.Value()) {
			return false
		}
	}
	return true
}

// Values returns the elements of s in insertion order.
func (s *Set) Values() []interface{} {
	return s.order.Values()
}

// AppendTo appends s's elements (in insertion order) to sl and returns the
// result.
func (s *Set) AppendTo(sl []interface{}) []interface{} {
	return append(sl, s.Values()...)
}

// First returns an arbitrary (the first-inserted) element, or nil if empty.
func (s *Set) First() interface{} {
	if s.Empty() {
		return nil
	}
	v, _ := s.order.Get(0)
	return v
}

// FirstMatch returns the first element (in insertion order) satisfying
// pred, or nil if none does.
func (s *Set) FirstMatch(pred func(interface{}) bool) interface{} {
	it := s.order.Iterator()
	for it.Next() {
		if pred(it.Value()) {
			return it.Value()
		}
	}
	return nil
}

// Each calls f once for every element, in insertion order.
func (s *Set) Each(f func(interface{})) {
	it := s.order.Iterator()
	for it.Next() {
		f(it.Value())
	}
}

// IterateOnce (re-)starts a single-pass iteration over the set's current
// elements, to be driven with Next/Item. No snapshot is taken: elements
// added during the iteration are visited too, after the existing ones.
func (s *Set) IterateOnce() {
	s.cursor = -1
}

// Next advances the iteration cursor and reports whether a further
// element is available.
func (s *Set) Next() bool {
	s.cursor++
	return s.cursor < s.order.Size()
}

// Item returns the element at the current iteration cursor.
func (s *Set) Item() interface{} {
	v, _ := s.order.Get(s.cursor)
	return v
}

func (s *Set) String() string {
	var b bytes.Buffer
	b.WriteString("{")
	it := s.order.Iterator()
	first := true
	for it.Next() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%v", it.Value())
	}
	b.WriteString("}")
	return b.String()
}
