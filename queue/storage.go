// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2020
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package queue

import (
	"sync/atomic"

	"github.com/jheo4/raftlib-go"
)

// bufferStorage is the backing arena for a RingBufferCore: a contiguous
// array of slots, a parallel array of signal codes, and the two Pointers
// that mark the next write and read positions. It is owned exclusively by
// one RingBufferCore at a time, whose dataManager gate guards swapping it
// out on a resize.
//
// For the External discipline, handles additionally carries a go-pointer
// handle per slot so a peeked item's identity can be recovered later; it
// is unused (left as nil handles) by the POD and Class disciplines.
type bufferStorage[T any] struct {
	store    []T
	signal   []SignalCode
	handles  []uintptr
	capacity uint64

	writePt atomicPointer
	readPt  atomicPointer
}

// atomicPointer is the owning end's own raftlib.Pointer (local, never
// touched by the other side) plus a published copy packed into a single
// atomic word so the non-owning side can read value and wrap together
// without a torn read. Only the owning end ever calls advance or reset.
type atomicPointer struct {
	local raftlib.Pointer
	word  uint64 // low 63 bits: value; high bit: wrap
}

func newAtomicPointer(capacity uint64) atomicPointer {
	return atomicPointer{local: raftlib.NewPointer(capacity)}
}

func encode(val uint64, wrap bool) uint64 {
	w := val
	if wrap {
		w |= 1 << 63
	}
	return w
}

func decode(word uint64) (uint64, bool) {
	return word &^ (1 << 63), word&(1<<63) != 0
}

// advance moves the pointer forward by n slots using raftlib.Pointer's own
// IncBy, then publishes the result with a single atomic store (a release,
// in the producer's case, that the consumer's next sizeOf acquires).
func (p *atomicPointer) advance(n uint64) {
	p.local = p.local.IncBy(n)
	atomic.StoreUint64(&p.word, encode(p.local.Val(), p.local.WrapIndicator()))
}

// reset reinitializes the pointer to val/wrap directly, used only by
// Resize when substituting a fresh bufferStorage.
func (p *atomicPointer) reset(capacity, val uint64, wrap bool) {
	p.local = raftlib.NewPointer(capacity)
	if val != 0 || wrap {
		p.local = p.local.IncBy(val)
		if wrap && !p.local.WrapIndicator() {
			p.local = p.local.IncBy(capacity)
		}
	}
	atomic.StoreUint64(&p.word, encode(p.local.Val(), p.local.WrapIndicator()))
}

// newBufferStorage allocates a ring of the given capacity. capacity must
// be positive; New (ring.go) enforces this before calling in.
func newBufferStorage[T any](capacity uint64) *bufferStorage[T] {
	return &bufferStorage[T]{
		store:    make([]T, capacity),
		signal:   make([]SignalCode, capacity),
		handles:  make([]uintptr, capacity),
		capacity: capacity,
		writePt:  newAtomicPointer(capacity),
		readPt:   newAtomicPointer(capacity),
	}
}

// sizeOf disambiguates empty from full by comparing the raw value and
// wrap fields of both pointers: equal values with equal wrap bits mean
// empty, and equal values with differing wrap bits mean the write pointer
// is a full lap ahead of the read pointer, i.e. full. The wrap field is a
// single bit, so either pointer may be the one with the bit set.
func (b *bufferStorage[T]) sizeOf() uint64 {
	wWord := atomic.LoadUint64(&b.writePt.word)
	rWord := atomic.LoadUint64(&b.readPt.word)
	wVal, wWrap := decode(wWord)
	rVal, rWrap := decode(rWord)

	switch {
	case rVal == wVal && rWrap != wWrap:
		return b.capacity
	case rVal == wVal:
		return 0
	case wVal > rVal:
		return wVal - rVal
	default:
		return b.capacity - (rVal - wVal)
	}
}

func (b *bufferStorage[T]) spaceAvail() uint64 {
	return b.capacity - b.sizeOf()
}

// vim: foldmethod=marker
