package iteratable

import "testing"

func TestAddContainsSize(t *testing.T) {
	s := New()
	s.Add(1).Add(2).Add(1)
	if s.Size() != 2 {
		t.Fatalf("expected size 2, got %d", s.Size())
	}
	if !s.Contains(1) || !s.Contains(2) || s.Contains(3) {
		t.Fatalf("unexpected membership")
	}
}

func TestRemove(t *testing.T) {
	s := New(1, 2, 3)
	s.Remove(2)
	if s.Contains(2) || s.Size() != 2 {
		t.Fatalf("expected 2 removed, got %v", s.Values())
	}
}

func TestUnionIsDestructive(t *testing.T) {
	a := New(1, 2)
	b := New(2, 3)
	a.Union(b)
	if a.Size() != 3 {
		t.Fatalf("expected union to grow receiver to 3, got %d", a.Size())
	}
	if b.Size() != 2 {
		t.Fatalf("expected other operand unchanged, got %d", b.Size())
	}
}

func TestDifference(t *testing.T) {
	a := New(1, 2, 3)
	b := New(2)
	d := a.Difference(b)
	if d.Size() != 2 || !d.Contains(1) || !d.Contains(3) {
		t.Fatalf("unexpected difference %v", d.Values())
	}
	if a.Size() != 3 {
		t.Fatalf("expected Difference to leave receiver unchanged")
	}
}

func TestEquals(t *testing.T) {
	a := New(1, 2, 3)
	b := New(3, 2, 1)
	if !a.Equals(b) {
		t.Fatalf("expected sets with same elements to be equal regardless of order")
	}
}

func TestIterateOnceNextItem(t *testing.T) {
	s := New(10, 20, 30)
	s.IterateOnce()
	var got []interface{}
	for s.Next() {
		got = append(got, s.Item())
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %v", got)
	}
}

func TestSubset(t *testing.T) {
	s := New(1, 2, 3, 4)
	even := s.Subset(func(x interface{}) bool { return x.(int)%2 == 0 })
	if even.Size() != 2 || !even.Contains(2) || !even.Contains(4) {
		t.Fatalf("unexpected subset %v", even.Values())
	}
}
