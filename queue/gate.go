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
	"runtime"
	"sync/atomic"
)

// dataManager is the resize-safety gate every producer and consumer
// operation passes through before it touches BufferStorage. It is
// deliberately not a sync.Mutex: the producer and consumer never
// contend with each other here (they touch disjoint ends of the ring),
// they only ever need to be held off by a resize in progress, and a
// resize itself is rare enough that a heavyweight lock would tax the
// common case for no benefit.
//
// The protocol has two sides:
//
//   - enterBuffer/exitBuffer: called by the producer and consumer around
//     every operation. enterBuffer spins while a resize is pending,
//     then registers itself as "inside" via an atomic counter.
//   - beginResize/endResize: called by the owning supervisor. beginResize
//     sets the pending flag (stopping new entries) then spins until the
//     inside counter drains to zero, at which point the backing storage
//     can be swapped without any operation observing a torn read.
type dataManager struct {
	resizePending uint32
	inside        int32
}

// enterBuffer blocks, without ever touching a mutex, until no resize is
// pending, then marks one more operation as inside the gate.
func (g *dataManager) enterBuffer() {
	for {
		if atomic.LoadUint32(&g.resizePending) == 0 {
			atomic.AddInt32(&g.inside, 1)
			if atomic.LoadUint32(&g.resizePending) == 0 {
				return
			}
			// A resize started while we were registering; back out
			// and retry rather than block the resize indefinitely.
			atomic.AddInt32(&g.inside, -1)
		}
		runtime.Gosched()
	}
}

// exitBuffer releases the registration taken by enterBuffer. Every
// enterBuffer must be paired with exactly one exitBuffer, including on
// error and early-return paths — callers use defer for this.
func (g *dataManager) exitBuffer() {
	atomic.AddInt32(&g.inside, -1)
}

// notResizing reports whether no resize is currently pending, without
// registering as inside the gate. Blocking loops check this alongside
// their own predicate (size > 0, space_avail > 0, ...) so they re-poll
// promptly once a resize completes instead of waiting out a full backoff
// cycle.
func (g *dataManager) notResizing() bool {
	return atomic.LoadUint32(&g.resizePending) == 0
}

// beginResize marks a resize as pending, then waits for every operation
// already inside the gate to exit. Once it returns, the caller has
// exclusive access to swap backing storage: no enterBuffer can succeed
// until endResize clears the pending flag.
func (g *dataManager) beginResize() {
	atomic.StoreUint32(&g.resizePending, 1)
	for atomic.LoadInt32(&g.inside) != 0 {
		runtime.Gosched()
	}
}

// endResize clears the pending flag, letting blocked enterBuffer callers
// (and future ones) proceed.
func (g *dataManager) endResize() {
	atomic.StoreUint32(&g.resizePending, 0)
}

// vim: foldmethod=marker
