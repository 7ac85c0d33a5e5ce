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

// Package queue implements a single-producer, single-consumer bounded FIFO
// for passing data between two dataflow stages running on separate
// goroutines. One side calls the producer surface (Allocate/Send, Push,
// InsertRange); the other calls the consumer surface (Peek/Unpeek/Recycle,
// Pop, PeekRange). The backing storage can be resized by an external
// supervisor without either side observing a lost or duplicated item.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/mattn/go-pointer"

	"github.com/jheo4/raftlib-go"
)

// SignalCode and its values are raftlib's, re-exported so callers of this
// package can name them without importing the root package.
type SignalCode = raftlib.SignalCode

const (
	SignalUnset = raftlib.SignalUnset
	SignalNone  = raftlib.SignalNone
	SignalEOF   = raftlib.SignalEOF
	SignalQuit  = raftlib.SignalQuit
)

// IterKind selects which container-iteration protocol InsertRange should
// use to walk the caller's range. Go slices make the list-like/vector-like
// distinction moot for a []T argument, but InsertRange keeps the parameter
// so callers porting code from a container-tagged source stay explicit
// about what they believe they are passing.
type IterKind int

const (
	// IterSlice walks a []T, the only container InsertRange currently
	// supports. Other IterKind values are reserved so a caller can signal
	// "I expected a different container protocol here" and get
	// ErrUnknownIteratorKind back instead of silently misreading memory.
	IterSlice IterKind = iota
	// IterList is reserved for a future linked-list-backed range; passing
	// it today returns ErrUnknownIteratorKind.
	IterList
)

// Stats bundles both ends' Blocked telemetry for a single poll.
type Stats struct {
	Write raftlib.Blocked
	Read  raftlib.Blocked
}

// Option configures a RingBufferCore at construction.
type Option[T any] func(*RingBufferCore[T])

// WithDiscipline overrides the storage discipline New would otherwise pick
// by inspecting T.
func WithDiscipline[T any](d Discipline) Option[T] {
	return func(r *RingBufferCore[T]) {
		r.discipline = d
	}
}

// WithDestroyHook supplies a destroy function the Class discipline invokes
// on a slot's occupant when it is popped or recycled, in place of T's own
// Destroy method if it has one.
func WithDestroyHook[T any](destroy func(*T)) Option[T] {
	return func(r *RingBufferCore[T]) {
		r.destroyHook = destroy
	}
}

// WithScheduler injects the capability a blocked end falls back to once
// its own backoff has spun for long enough to look wasteful. kernel is
// passed back to the Scheduler unmodified on every call.
func WithScheduler[T any](sched raftlib.Scheduler, kernel raftlib.Kernel) Option[T] {
	return func(r *RingBufferCore[T]) {
		r.scheduler = sched
		r.kernel = kernel
	}
}

// RingBufferCore is the operation surface of the FIFO: reserve/commit,
// bulk reserve/commit, copy push/pop, zero-copy peek/unpeek/recycle, bulk
// peek, signal-only operations, and state observation. T's shape picks a
// storage discipline (see Discipline) unless overridden with
// WithDiscipline.
type RingBufferCore[T any] struct {
	storage    *bufferStorage[T]
	gate       dataManager
	discipline Discipline

	destroyHook func(*T)
	pool        *raftlib.Pool[T]
	tracker     *defaultOwnershipTracker

	scheduler raftlib.Scheduler
	kernel    raftlib.Kernel
	ctx       context.Context

	writeStats raftlib.Blocked
	readStats  raftlib.Blocked

	invalid       int32
	writeFinished int32

	// producer-only, never touched by the consumer goroutine
	allocateCalled bool
	allocateIdx    uint64
	nAllocated     uint64

	// consumer-only, never touched by the producer goroutine
	peekActive bool
	peekIdx    uint64
	peekHandle unsafe.Pointer
}

// New constructs a RingBufferCore of the given capacity. capacity must be
// positive.
func New[T any](capacity uint64, opts ...Option[T]) (*RingBufferCore[T], error) {
	return NewWithContext[T](nil, capacity, opts...)
}

// NewWithContext is New, plus a context.Context threaded through every
// blocking loop as a second way to unstick besides port invalidation. A
// nil ctx behaves exactly like New.
func NewWithContext[T any](ctx context.Context, capacity uint64, opts ...Option[T]) (*RingBufferCore[T], error) {
	if capacity == 0 {
		return nil, errors.New("raftlib/queue: capacity must be positive")
	}

	r := &RingBufferCore[T]{
		storage: newBufferStorage[T](capacity),
		ctx:     ctx,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.discipline == DisciplineUnset {
		r.discipline = defaultDiscipline[T]()
	}
	if r.discipline == DisciplineExternal {
		r.pool = raftlib.NewPool(func() *T { var t T; return &t })
		r.tracker = newDefaultOwnershipTracker()
	}

	return r, nil
}

// defaultDiscipline inspects T and picks DisciplineClass if T implements
// destroyer, DisciplinePOD otherwise. DisciplineExternal is never picked
// automatically; a caller must ask for it with WithDiscipline.
func defaultDiscipline[T any]() Discipline {
	var t T
	if _, ok := any(&t).(destroyer); ok {
		return DisciplineClass
	}
	return DisciplinePOD
}

func (r *RingBufferCore[T]) kernelOrNil() raftlib.Kernel {
	return r.kernel
}

// backoffLoop exits the gate, marks the end's Blocked record, and spins
// until ready() reports true or ctx/invalidation says to stop. isConsumer
// selects which Blocked record and which invalidation rule applies.
//
// A nil return always leaves the gate entered, whether because ready()
// held or because invalidation cut the wait short: the invalidation exit
// below returns without calling exitBuffer, from the same enterBuffer a
// few lines up, so the caller can re-check its predicate under that same
// gate hold instead of racing a fresh enterBuffer against the producer. A
// non-nil return (ctx cancellation) always leaves the gate exited. Every
// caller must pair a nil return with exactly one exitBuffer of its own,
// on every path out, including the "predicate still false" path.
func (r *RingBufferCore[T]) backoffLoop(isConsumer bool, ready func() bool) error {
	state := &backoffState{}
	blocked := &r.writeStats
	if isConsumer {
		blocked = &r.readStats
	}

	for {
		r.gate.enterBuffer()
		if r.gate.notResizing() && ready() {
			return nil
		}
		if isConsumer && r.IsInvalid() {
			return nil // gate still entered from the enterBuffer above
		}
		r.gate.exitBuffer()

		blocked.MarkBlocked()
		if err := state.spin(r.ctx, r.kernelOrNil(), r.scheduler); err != nil {
			return err
		}
	}
}

// Allocate waits for space and returns the index of a reserved write slot.
// It must be followed by Send or Deallocate before any other producer
// operation.
func (r *RingBufferCore[T]) Allocate() (uint64, error) {
	if err := r.backoffLoop(false, func() bool { return r.storage.spaceAvail() > 0 }); err != nil {
		return 0, err
	}
	defer r.gate.exitBuffer()

	idx := r.writeIndexLocked()
	r.allocateCalled = true
	r.allocateIdx = idx
	return idx, nil
}

// writeIndexLocked reads the producer-owned write pointer's raw value; it
// must be called with the gate entered.
func (r *RingBufferCore[T]) writeIndexLocked() uint64 {
	val, _ := decode(atomic.LoadUint64(&r.storage.writePt.word))
	return val
}

// Send writes sig into the slot reserved by Allocate, advances the write
// pointer, and records the completed operation. Calling Send without a
// preceding, still-outstanding Allocate is a silent no-op.
func (r *RingBufferCore[T]) Send(v T, sig SignalCode) {
	r.gate.enterBuffer()
	defer r.gate.exitBuffer()

	if !r.allocateCalled {
		return
	}
	r.writeSlot(r.allocateIdx, v, sig)
	r.advanceWritePointer(1)
	r.writeStats.MarkOp()
	r.allocateCalled = false

	if sig == SignalEOF {
		atomic.StoreInt32(&r.writeFinished, 1)
	}
}

// Deallocate cancels an outstanding Allocate without advancing the write
// pointer.
func (r *RingBufferCore[T]) Deallocate() {
	r.gate.enterBuffer()
	defer r.gate.exitBuffer()
	r.allocateCalled = false
}

// SlotAt returns a pointer into the backing array for the slot at idx,
// letting an AllocateN caller fill the reserved range in place before
// calling SendRange rather than building a temporary slice to hand to
// InsertRange. It is valid only while the reservation holding idx is
// outstanding, and only for the POD and Class disciplines, whose writes are
// plain assignments: writing through it skips the External discipline's
// pool/handle bookkeeping, so a caller using External should prefer
// Push/InsertRange/Send instead.
func (r *RingBufferCore[T]) SlotAt(idx uint64) *T {
	return &r.storage.store[idx]
}

func (r *RingBufferCore[T]) writeSlot(idx uint64, v T, sig SignalCode) {
	switch r.discipline {
	case DisciplineClass:
		classWrite(r.storage, idx, v, sig, r.destroyHook)
	case DisciplineExternal:
		externalWrite(r.storage, idx, r.pool, v, sig)
	default:
		podWrite(r.storage, idx, v, sig)
	}
}

func (r *RingBufferCore[T]) advanceWritePointer(n uint64) {
	r.storage.writePt.advance(n)
}

// AllocateN waits for space for n items and returns the index of the
// first of n contiguous (modulo capacity) reserved slots.
func (r *RingBufferCore[T]) AllocateN(n uint64) (uint64, error) {
	if n == 0 {
		return 0, errors.New("raftlib/queue: AllocateN requires n > 0")
	}
	if n > r.storage.capacity {
		return 0, fmt.Errorf("raftlib/queue: AllocateN(%d) exceeds capacity %d", n, r.storage.capacity)
	}
	if err := r.backoffLoop(false, func() bool { return r.storage.spaceAvail() >= n }); err != nil {
		return 0, err
	}
	defer r.gate.exitBuffer()

	idx := r.writeIndexLocked()
	for i := uint64(0); i < n; i++ {
		slot := (idx + i) % r.storage.capacity
		r.storage.signal[slot] = SignalNone
	}
	r.allocateCalled = true
	r.allocateIdx = idx
	r.nAllocated = n
	return idx, nil
}

// SendRange commits the n slots reserved by AllocateN, attaching sig only
// to the final slot; earlier slots keep the SignalNone AllocateN cleared
// them to. The write pointer advances by n_allocated regardless of
// discipline.
func (r *RingBufferCore[T]) SendRange(sig SignalCode) {
	r.gate.enterBuffer()
	defer r.gate.exitBuffer()

	if !r.allocateCalled {
		return
	}
	last := (r.allocateIdx + r.nAllocated - 1) % r.storage.capacity
	r.storage.signal[last] = sig
	r.advanceWritePointer(r.nAllocated)
	r.writeStats.MarkOpN(r.nAllocated)
	r.allocateCalled = false

	if sig == SignalEOF {
		atomic.StoreInt32(&r.writeFinished, 1)
	}
}

// Push copy-pushes a single value with the given signal, waiting for
// space. If sig is SignalQuit or SignalEOF, write_finished is set after the
// push.
func (r *RingBufferCore[T]) Push(v T, sig SignalCode) error {
	if err := r.backoffLoop(false, func() bool { return r.storage.spaceAvail() > 0 }); err != nil {
		return err
	}
	defer r.gate.exitBuffer()

	idx := r.writeIndexLocked()
	r.writeSlot(idx, v, sig)
	r.advanceWritePointer(1)
	r.writeStats.MarkOp()

	if sig == SignalQuit || sig == SignalEOF {
		atomic.StoreInt32(&r.writeFinished, 1)
	}
	return nil
}

// InsertRange copies vs into the queue, attaching sig only to the final
// element; earlier elements carry SignalNone. kind must be IterSlice;
// any other value returns ErrUnknownIteratorKind without touching the
// queue.
func (r *RingBufferCore[T]) InsertRange(vs []T, sig SignalCode, kind IterKind) error {
	if kind != IterSlice {
		return ErrUnknownIteratorKind
	}
	for i, v := range vs {
		s := SignalNone
		if i == len(vs)-1 {
			s = sig
		}
		if err := r.Push(v, s); err != nil {
			return err
		}
	}
	return nil
}

// readIndexLocked reads the consumer-owned read pointer's raw value; it
// must be called with the gate entered.
func (r *RingBufferCore[T]) readIndexLocked() uint64 {
	val, _ := decode(atomic.LoadUint64(&r.storage.readPt.word))
	return val
}

func (r *RingBufferCore[T]) advanceReadPointer(n uint64) {
	r.storage.readPt.advance(n)
}

func (r *RingBufferCore[T]) readSlot(idx uint64) (T, SignalCode) {
	switch r.discipline {
	case DisciplineClass:
		return classRead(r.storage, idx, r.destroyHook)
	case DisciplineExternal:
		return externalRead(r.storage, idx, r.pool)
	default:
		return podRead(r.storage, idx)
	}
}

// Pop waits for an item, copies its payload and signal out, and advances
// the read pointer. If the port is invalidated and empty, it returns
// ErrClosedPortEmpty.
func (r *RingBufferCore[T]) Pop() (T, SignalCode, error) {
	var zero T
	if err := r.backoffLoop(true, func() bool { return r.storage.sizeOf() > 0 }); err != nil {
		return zero, SignalUnset, err
	}
	defer r.gate.exitBuffer()

	if r.storage.sizeOf() == 0 {
		return zero, SignalUnset, ErrClosedPortEmpty
	}

	idx := r.readIndexLocked()
	v, sig := r.readSlot(idx)
	r.advanceReadPointer(1)
	r.readStats.MarkOp()
	return v, sig, nil
}

// PopRange pops n successive items into freshly allocated slices.
func (r *RingBufferCore[T]) PopRange(n uint64) ([]T, []SignalCode, error) {
	vs := make([]T, 0, n)
	sigs := make([]SignalCode, 0, n)
	for i := uint64(0); i < n; i++ {
		v, sig, err := r.Pop()
		if err != nil {
			return vs, sigs, err
		}
		vs = append(vs, v)
		sigs = append(sigs, sig)
	}
	return vs, sigs, nil
}

// Peek waits for an item and returns it without advancing the read
// pointer or releasing the gate. It must be followed by Unpeek (discard)
// or Recycle(1) (consume) before any other consumer operation.
func (r *RingBufferCore[T]) Peek() (T, SignalCode, error) {
	var zero T
	if err := r.backoffLoop(true, func() bool { return r.storage.sizeOf() > 0 }); err != nil {
		return zero, SignalUnset, err
	}
	if r.storage.sizeOf() == 0 {
		r.gate.exitBuffer()
		return zero, SignalUnset, ErrClosedPortEmpty
	}
	// gate stays entered: Unpeek/Recycle release it.
	r.peekActive = true
	r.peekIdx = r.readIndexLocked()

	v := r.storage.store[r.peekIdx]
	sig := r.storage.signal[r.peekIdx]
	if r.discipline == DisciplineExternal {
		if r.storage.handles[r.peekIdx] != 0 {
			r.peekHandle = unsafe.Pointer(r.storage.handles[r.peekIdx])
			r.tracker.recordInPeek(r.peekHandle)
		}
	}
	return v, sig, nil
}

// Unpeek discards the peek started by Peek without consuming the item:
// size() is left unchanged.
func (r *RingBufferCore[T]) Unpeek() {
	if !r.peekActive {
		return
	}
	if r.discipline == DisciplineExternal && r.peekHandle != nil {
		r.tracker.releaseInPeek(r.peekHandle)
		r.peekHandle = nil
	}
	r.peekActive = false
	r.gate.exitBuffer()
}

// Recycle discards k items without copying them out, running the
// discipline's discard hook on each before advancing the read pointer. If
// the port becomes invalid with an empty queue partway through, it stops
// silently rather than returning an error. Recycle(0) is a no-op: it
// leaves an outstanding Peek untouched rather than consuming it, matching
// the "discard zero items" reading of k — callers that want to discard
// the peeked item instead reach for Unpeek.
func (r *RingBufferCore[T]) Recycle(k uint64) {
	if k == 0 {
		return
	}

	if r.peekActive {
		// Recycle(1) consumes exactly the item Peek returned.
		idx := r.peekIdx
		if r.discipline == DisciplineExternal && r.peekHandle != nil {
			handle := r.peekHandle
			r.tracker.deferDestroy(handle, func() {
				slot := pointer.Restore(handle).(*T)
				pointer.Unref(handle)
				r.pool.Put(slot)
			})
			r.storage.handles[idx] = 0
		}
		r.discardSlot(idx)
		r.advanceReadPointer(1)
		r.readStats.MarkOp()
		r.peekActive = false
		r.peekHandle = nil
		r.gate.exitBuffer()
		k--
	}

	for i := uint64(0); i < k; i++ {
		if err := r.backoffLoop(true, func() bool { return r.storage.sizeOf() > 0 }); err != nil {
			return
		}
		if r.storage.sizeOf() == 0 {
			r.gate.exitBuffer()
			return // invalidated and drained: stop silently
		}
		idx := r.readIndexLocked()
		r.discardSlot(idx)
		r.advanceReadPointer(1)
		r.readStats.MarkOp()
		r.gate.exitBuffer()
	}
}

func (r *RingBufferCore[T]) discardSlot(idx uint64) {
	switch r.discipline {
	case DisciplineClass:
		classRecycle(r.storage, idx, r.destroyHook)
	case DisciplineExternal:
		externalRecycle(r.storage, idx, r.pool)
	default:
		podRecycle(r.storage, idx)
	}
}

// PeekRange waits for at least n items and returns a copy of the n
// consecutive (mod capacity) slots starting at the current read index,
// along with that index. It does not advance the read pointer. Fails with
// ErrClosedPortEmpty if invalidated with size() == 0, or
// ErrClosedPortShort if invalidated with 0 < size() < n.
func (r *RingBufferCore[T]) PeekRange(n uint64) ([]T, []SignalCode, uint64, error) {
	err := r.backoffLoop(true, func() bool { return r.storage.sizeOf() >= n })
	if err != nil {
		return nil, nil, 0, err
	}
	defer r.gate.exitBuffer()

	size := r.storage.sizeOf()
	if size < n {
		if size == 0 {
			return nil, nil, 0, ErrClosedPortEmpty
		}
		return nil, nil, 0, ErrClosedPortShort
	}

	idx := r.readIndexLocked()
	vs := make([]T, n)
	sigs := make([]SignalCode, n)
	for i := uint64(0); i < n; i++ {
		slot := (idx + i) % r.storage.capacity
		vs[i] = r.storage.store[slot]
		sigs[i] = r.storage.signal[slot]
	}
	return vs, sigs, idx, nil
}

// SignalPeek returns the signal of the current read slot without entering
// the gate: the signal word is a scalar whose read is self-consistent,
// and a slot's signal never changes once committed.
func (r *RingBufferCore[T]) SignalPeek() SignalCode {
	val, _ := decode(atomic.LoadUint64(&r.storage.readPt.word))
	return r.storage.signal[val]
}

// SignalPop is Pop with both the payload and signal discarded, used to
// consume a signal-only slot.
func (r *RingBufferCore[T]) SignalPop() error {
	_, _, err := r.Pop()
	return err
}

// Size returns the current occupancy of the ring.
func (r *RingBufferCore[T]) Size() uint64 { return r.storage.sizeOf() }

// SpaceAvail returns the number of slots currently free.
func (r *RingBufferCore[T]) SpaceAvail() uint64 { return r.storage.spaceAvail() }

// Capacity returns the ring's configured capacity.
func (r *RingBufferCore[T]) Capacity() uint64 { return r.storage.capacity }

// Len is an idiomatic alias for Size.
func (r *RingBufferCore[T]) Len() uint64 { return r.Size() }

// Cap is an idiomatic alias for Capacity.
func (r *RingBufferCore[T]) Cap() uint64 { return r.Capacity() }

// IsInvalid reports whether the port has been marked invalid.
func (r *RingBufferCore[T]) IsInvalid() bool {
	return atomic.LoadInt32(&r.invalid) != 0
}

// Invalidate marks the port invalid, causing blocked consumer operations
// to unblock and raise ErrClosedPortEmpty or ErrClosedPortShort.
func (r *RingBufferCore[T]) Invalidate() {
	atomic.StoreInt32(&r.invalid, 1)
}

// GetWriteFinished reports whether the producer has sent an EOF signal or
// pushed a QUIT signal.
func (r *RingBufferCore[T]) GetWriteFinished() bool {
	return atomic.LoadInt32(&r.writeFinished) != 0
}

// Stats returns both ends' current telemetry without resetting it,
// unlike GetZeroReadStats/GetZeroWriteStats.
func (r *RingBufferCore[T]) Stats() Stats {
	return Stats{
		Write: raftlib.SnapshotBlocked(r.writeStats.Count(), r.writeStats.IsBlocked()),
		Read:  raftlib.SnapshotBlocked(r.readStats.Count(), r.readStats.IsBlocked()),
	}
}

// GetZeroReadStats atomically returns and resets the consumer end's
// telemetry.
func (r *RingBufferCore[T]) GetZeroReadStats() raftlib.Blocked {
	count, blocked := r.readStats.Snapshot()
	return raftlib.SnapshotBlocked(count, blocked)
}

// GetZeroWriteStats atomically returns and resets the producer end's
// telemetry.
func (r *RingBufferCore[T]) GetZeroWriteStats() raftlib.Blocked {
	count, blocked := r.writeStats.Snapshot()
	return raftlib.SnapshotBlocked(count, blocked)
}

// Resize replaces the backing storage with one of newCapacity, copying
// live items across the transition so no producer or consumer operation
// observes a lost or duplicated item (see dataManager for the gate
// protocol this relies on).
func (r *RingBufferCore[T]) Resize(newCapacity uint64) error {
	if newCapacity == 0 {
		return errors.New("raftlib/queue: capacity must be positive")
	}

	r.gate.beginResize()
	defer r.gate.endResize()

	size := r.storage.sizeOf()
	if size > newCapacity {
		return fmt.Errorf("raftlib/queue: cannot shrink below current size %d", size)
	}

	readIdx := r.readIndexLocked()
	next := newBufferStorage[T](newCapacity)
	for i := uint64(0); i < size; i++ {
		slot := (readIdx + i) % r.storage.capacity
		next.store[i] = r.storage.store[slot]
		next.signal[i] = r.storage.signal[slot]
		next.handles[i] = r.storage.handles[slot]
	}
	next.writePt.reset(newCapacity, size, size == newCapacity)
	next.readPt.reset(newCapacity, 0, false)

	r.storage = next
	return nil
}

// vim: foldmethod=marker
