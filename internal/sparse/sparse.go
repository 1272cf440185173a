/*
Package sparse implements a sparse integer matrix, used to back the
GOTO and ACTION tables of the lalr backend. Every entry may hold up to
two values, which is what
allows a single cell to record a shift/reduce or reduce/reduce conflict
before the caller decides how to report it.

Adapted from the triplet (COO) encoding in
npillmayer-gorgo/lr/sparse/sparse.go.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package sparse

import "fmt"

// DefaultNullValue is the default empty-value for matrices.
const DefaultNullValue int32 = -2147483648

type intPair struct {
	a, b int32
}

type triplet struct {
	row, col int
	value    intPair
}

func (t triplet) storedAt(i, j int) bool      { return t.row == i && t.col == j }
func (t triplet) storedLeftOf(i, j int) bool  { return t.row < i || (t.row == i && t.col < j) }

// IntMatrix is a sparse matrix of int32 values (or value pairs), stored as
// an unsorted list of (row, col, value) triplets — adequate for parser
// tables, which are overwhelmingly empty.
type IntMatrix struct {
	values  []triplet
	rowcnt  int
	colcnt  int
	nullval int32
}

// NewIntMatrix creates a matrix of size m x n with the given null-value
// denoting "no entry".
func NewIntMatrix(m, n int, nullValue int32) *IntMatrix {
	return &IntMatrix{rowcnt: m, colcnt: n, nullval: nullValue}
}

// M returns the row count.
func (m *IntMatrix) M() int { return m.rowcnt }

// N returns the column count.
func (m *IntMatrix) N() int { return m.colcnt }

// NullValue returns the matrix's designated empty value.
func (m *IntMatrix) NullValue() int32 { return m.nullval }

// ValueCount returns the number of populated cells.
func (m *IntMatrix) ValueCount() int { return len(m.values) }

func (m *IntMatrix) find(i, j int) int {
	for idx, t := range m.values {
		if t.storedAt(i, j) {
			return idx
		}
	}
	return -1
}

// Value returns the primary value at (i,j), or the null-value.
func (m *IntMatrix) Value(i, j int) int32 {
	if idx := m.find(i, j); idx >= 0 {
		return m.values[idx].value.a
	}
	return m.nullval
}

// Values returns both values stored at (i,j) (the second is the
// null-value if only one entry is present).
func (m *IntMatrix) Values(i, j int) (int32, int32) {
	if idx := m.find(i, j); idx >= 0 {
		return m.values[idx].value.a, m.values[idx].value.b
	}
	return m.nullval, m.nullval
}

// Set overwrites the primary value at (i,j).
func (m *IntMatrix) Set(i, j int, value int32) *IntMatrix {
	if idx := m.find(i, j); idx >= 0 {
		m.values[idx].value.a = value
		return m
	}
	m.values = append(m.values, triplet{row: i, col: j, value: intPair{a: value, b: m.nullval}})
	return m
}

// Add stores value at (i,j): if the cell is empty it becomes the primary
// value; if it already holds one value, value becomes the secondary
// value, recording a conflict.
func (m *IntMatrix) Add(i, j int, value int32) *IntMatrix {
	if idx := m.find(i, j); idx >= 0 {
		t := &m.values[idx]
		if t.value.a == m.nullval {
			t.value.a = value
		} else if t.value.a != value {
			t.value.b = value
		}
		return m
	}
	m.values = append(m.values, triplet{row: i, col: j, value: intPair{a: value, b: m.nullval}})
	return m
}

func (m *IntMatrix) String() string {
	return fmt.Sprintf("IntMatrix(%dx%d, %d entries)", m.rowcnt, m.colcnt, len(m.values))
}
