/*
Package arena implements a pluggable allocator contract and a bump-style
region allocator ("arena") built on top of it.

Every grammar owns an arena, created by grammar.New and destroyed by
Grammar.Free. Neither the grammar's node graph, nor any backend's
compiled state, nor any parse call allocates from it: those live on the
ordinary Go heap, and a parse call creates no arena of its own.
Individual allocations from an arena cannot be freed; the whole region
is released at once with Destroy.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package arena

import (
	"fmt"
	"unsafe"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pgc.arena'.
func tracer() tracing.Trace {
	return tracing.Select("pgc.arena")
}

// Allocator is the pluggable allocation contract every core package relies
// on. The system default delegates to the Go heap; a quota-limited or
// pool-backed allocator may be substituted by a caller.
//
// Values returned by a routine given allocator m must only be fed to
// routines also using m — mixing allocators is undefined.
type Allocator interface {
	Allocate(size int) ([]byte, error)
	Reallocate(buf []byte, newSize int) ([]byte, error)
	Release(buf []byte)
	Context() interface{}
}

// DefaultAllocator delegates to the Go runtime heap. It never fails.
type DefaultAllocator struct {
	ctx interface{}
}

// NewDefaultAllocator creates the system default allocator.
func NewDefaultAllocator(ctx interface{}) *DefaultAllocator {
	return &DefaultAllocator{ctx: ctx}
}

var _ Allocator = (*DefaultAllocator)(nil)

func (d *DefaultAllocator) Allocate(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func (d *DefaultAllocator) Reallocate(buf []byte, newSize int) ([]byte, error) {
	if newSize <= len(buf) {
		return buf[:newSize], nil
	}
	grown := make([]byte, newSize)
	copy(grown, buf)
	return grown, nil
}

func (d *DefaultAllocator) Release(buf []byte) {}

func (d *DefaultAllocator) Context() interface{} { return d.ctx }

// maxAlign is the platform's maximum scalar alignment we plan for.
const maxAlign = unsafe.Alignof(struct {
	_ complex128
}{})

// DefaultBlockSize is the minimum size of a freshly linked-in arena block.
const DefaultBlockSize = 4096

// block is one link in an arena's block chain.
type block struct {
	buf  []byte
	used int
	next *block
}

func (b *block) wasted() int { return len(b.buf) - b.used }

// Stats reports bulk statistics over an arena's block chain, for
// introspection and tests.
type Stats struct {
	Blocks int
	Used   int
	Wasted int
}

// Arena is a region allocator: allocations bump a pointer within the
// current block; when the block runs out of room a new block — sized at
// least max(DefaultBlockSize, requested) — is linked in. Release is a
// no-op; Destroy returns every block to the underlying allocator at once.
type Arena struct {
	under     Allocator
	blockSize int
	head      *block // most recently allocated block
	destroyed bool
}

// New creates an arena backed by under. under may be nil, in which case
// the system DefaultAllocator is used.
func New(under Allocator) *Arena {
	if under == nil {
		under = NewDefaultAllocator(nil)
	}
	return &Arena{under: under, blockSize: DefaultBlockSize}
}

// Allocate returns n freshly zeroed, maximally-aligned bytes from the
// arena. Returns ALLOCATION_FAILED-shaped error (via the underlying
// allocator) only if the underlying allocator itself fails.
func (a *Arena) Allocate(n int) ([]byte, error) {
	if a.destroyed {
		return nil, fmt.Errorf("arena: allocate on destroyed arena")
	}
	if n < 0 {
		return nil, fmt.Errorf("arena: negative allocation size %d", n)
	}
	aligned := alignUp(n)
	if a.head == nil || a.head.used+aligned > len(a.head.buf) {
		if err := a.linkNewBlock(aligned); err != nil {
			return nil, err
		}
	}
	b := a.head
	start := b.used
	b.used += aligned
	tracer().Debugf("arena: allocate %d bytes (aligned %d) at offset %d", n, aligned, start)
	return b.buf[start : start+n : start+n], nil
}

// Release is a no-op — per-allocation release is not supported by a region
// allocator.
func (a *Arena) Release(p []byte) {}

// Destroy returns all of the arena's blocks to the underlying allocator.
// The arena must not be used afterwards.
func (a *Arena) Destroy() {
	if a.destroyed {
		return
	}
	for b := a.head; b != nil; {
		next := b.next
		a.under.Release(b.buf)
		b = next
	}
	a.head = nil
	a.destroyed = true
	tracer().Debugf("arena: destroyed")
}

// Stats returns bulk usage statistics over the arena's block chain.
func (a *Arena) Stats() Stats {
	var s Stats
	for b := a.head; b != nil; b = b.next {
		s.Blocks++
		s.Used += b.used
		s.Wasted += b.wasted()
	}
	return s
}

func (a *Arena) linkNewBlock(minSize int) error {
	size := a.blockSize
	if minSize > size {
		size = minSize
	}
	buf, err := a.under.Allocate(size)
	if err != nil {
		return fmt.Errorf("arena: underlying allocator failed: %w", err)
	}
	nb := &block{buf: buf}
	nb.next = a.head
	a.head = nb
	tracer().Debugf("arena: linked new block of %d bytes", size)
	return nil
}

func alignUp(n int) int {
	a := int(maxAlign)
	if n%a == 0 {
		return n
	}
	return n + (a - n%a)
}
