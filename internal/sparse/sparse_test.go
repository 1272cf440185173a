package sparse

import "testing"

func TestSetAndValue(t *testing.T) {
	m := NewIntMatrix(3, 3, DefaultNullValue)
	m.Set(1, 2, 42)
	if v := m.Value(1, 2); v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
	if v := m.Value(0, 0); v != DefaultNullValue {
		t.Fatalf("expected null value for unset cell, got %d", v)
	}
}

func TestAddRecordsConflict(t *testing.T) {
	m := NewIntMatrix(2, 2, DefaultNullValue)
	m.Add(0, 0, 5)
	m.Add(0, 0, 7)
	a, b := m.Values(0, 0)
	if a != 5 || b != 7 {
		t.Fatalf("expected conflict pair (5,7), got (%d,%d)", a, b)
	}
}

func TestValueCount(t *testing.T) {
	m := NewIntMatrix(5, 5, DefaultNullValue)
	m.Set(0, 0, 1)
	m.Set(1, 1, 2)
	if m.ValueCount() != 2 {
		t.Fatalf("expected 2 populated cells, got %d", m.ValueCount())
	}
}
