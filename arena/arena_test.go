package arena

import "testing"

func TestAllocateWithinBlock(t *testing.T) {
	a := New(nil)
	defer a.Destroy()
	b1, err := a.Allocate(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b2, err := a.Allocate(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range b1 {
		b1[i] = 0xAA
	}
	for i := range b2 {
		b2[i] = 0xBB
	}
	for i := range b1 {
		if b1[i] != 0xAA {
			t.Fatalf("allocation %d overwritten, arena blocks overlap", i)
		}
	}
}

func TestAllocateSpansMultipleBlocks(t *testing.T) {
	a := New(nil)
	defer a.Destroy()
	// Ask for more than the default block size, forcing a dedicated block.
	big, err := a.Allocate(DefaultBlockSize * 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(big) != DefaultBlockSize*2 {
		t.Fatalf("expected %d bytes, got %d", DefaultBlockSize*2, len(big))
	}
	stats := a.Stats()
	if stats.Blocks < 1 {
		t.Fatalf("expected at least one block, got %d", stats.Blocks)
	}
}

func TestReleaseIsNoOp(t *testing.T) {
	a := New(nil)
	defer a.Destroy()
	b, _ := a.Allocate(8)
	before := a.Stats()
	a.Release(b)
	after := a.Stats()
	if before != after {
		t.Fatalf("Release mutated arena stats: before=%v after=%v", before, after)
	}
}

func TestDestroyThenAllocateFails(t *testing.T) {
	a := New(nil)
	a.Destroy()
	if _, err := a.Allocate(1); err == nil {
		t.Fatalf("expected allocation on destroyed arena to fail")
	}
}

func TestStatsTracksWaste(t *testing.T) {
	a := New(nil)
	defer a.Destroy()
	a.Allocate(1)
	stats := a.Stats()
	if stats.Used == 0 {
		t.Fatalf("expected some bytes used")
	}
	if stats.Wasted == 0 {
		t.Fatalf("expected alignment/block padding to be counted as wasted")
	}
}
