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
	"sync"
	"unsafe"

	"github.com/mattn/go-pointer"

	"github.com/jheo4/raftlib-go"
)

// The External discipline: alongside the value in the slot, each write
// copies the payload into a heap-allocated *T drawn from a Pool, held
// through a go-pointer handle, the same opaque-handle-across-a-boundary
// idiom used to carry Go values through a C callback: here the boundary is
// producer-peek versus consumer-commit instead of cgo versus Go. Peek and
// Pop return copies of the value; a value a consumer pushes back in is
// copied into a fresh *T, not reinstalled by identity.

// ownershipTracker is the collaborator the External discipline consults to
// know whether a peeked handle is still outstanding before destroying it.
// Each RingBufferCore using the External discipline gets its own
// defaultOwnershipTracker from NewWithContext rather than sharing a
// package-level global; there is no option to supply a different one.
type ownershipTracker interface {
	// recordInPeek notes that handle was handed to the consumer via Peek
	// and is still outstanding (not yet Unpeek'd or Recycled).
	recordInPeek(handle unsafe.Pointer)
	// deferDestroy queues handle for destruction once the consumer is no
	// longer holding it via an outstanding peek.
	deferDestroy(handle unsafe.Pointer, destroy func())
}

// defaultOwnershipTracker is a mutex-guarded map-based ownershipTracker.
// The External discipline is not on the hot path in the way POD/Class are
// (it exists for identity-preserving payloads, which are expected to be
// larger and less frequent), so a mutex here does not compromise the
// lock-free data plane itself.
type defaultOwnershipTracker struct {
	mu       sync.Mutex
	inPeek   map[unsafe.Pointer]struct{}
	deferred map[unsafe.Pointer]func()
}

func newDefaultOwnershipTracker() *defaultOwnershipTracker {
	return &defaultOwnershipTracker{
		inPeek:   make(map[unsafe.Pointer]struct{}),
		deferred: make(map[unsafe.Pointer]func()),
	}
}

func (t *defaultOwnershipTracker) recordInPeek(handle unsafe.Pointer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inPeek[handle] = struct{}{}
}

func (t *defaultOwnershipTracker) releaseInPeek(handle unsafe.Pointer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inPeek, handle)
	if d, ok := t.deferred[handle]; ok {
		delete(t.deferred, handle)
		d()
	}
}

func (t *defaultOwnershipTracker) deferDestroy(handle unsafe.Pointer, destroy func()) {
	t.mu.Lock()
	_, stillPeeked := t.inPeek[handle]
	if stillPeeked {
		t.deferred[handle] = destroy
	}
	t.mu.Unlock()

	if !stillPeeked {
		destroy()
	}
}

// externalWrite draws a *T from pool instead of allocating a fresh one,
// copies v into it, and takes out a go-pointer handle that a later Peek
// records as outstanding and a Pop or Recycle releases. The slot itself
// also keeps v by value, which is what Peek and Pop hand back.
func externalWrite[T any](b *bufferStorage[T], idx uint64, pool *raftlib.Pool[T], v T, sig SignalCode) {
	slot := pool.Get()
	*slot = v
	handle := pointer.Save(slot)
	b.handles[idx] = uintptr(handle)
	b.store[idx] = v
	b.signal[idx] = sig
}

// externalRead recovers the slot's payload, releases the go-pointer handle,
// returns the backing *T to pool for reuse, and returns a copy of the value
// along with its signal.
func externalRead[T any](b *bufferStorage[T], idx uint64, pool *raftlib.Pool[T]) (T, SignalCode) {
	v, sig := b.store[idx], b.signal[idx]
	releaseExternalSlot(b, idx, pool)
	var zero T
	b.store[idx] = zero
	return v, sig
}

// externalRecycle discards the slot's payload without copying it out,
// releasing the same pooled *T externalRead would have.
func externalRecycle[T any](b *bufferStorage[T], idx uint64, pool *raftlib.Pool[T]) {
	releaseExternalSlot(b, idx, pool)
	var zero T
	b.store[idx] = zero
}

func releaseExternalSlot[T any](b *bufferStorage[T], idx uint64, pool *raftlib.Pool[T]) {
	if b.handles[idx] == 0 {
		return
	}
	h := unsafe.Pointer(b.handles[idx])
	slot := pointer.Restore(h).(*T)
	pointer.Unref(h)
	pool.Put(slot)
	b.handles[idx] = 0
}

// vim: foldmethod=marker
