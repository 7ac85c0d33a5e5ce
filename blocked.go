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

package raftlib

import (
	"sync/atomic"
)

// Blocked is the telemetry record kept for one end (producer or consumer)
// of a port. Count tracks how many operations that end has completed;
// Blocked tracks whether that end has had to wait in a backoff loop on the
// other side since the last Snapshot.
//
// Both fields are updated by the data plane and harvested by a telemetry
// poll (GetZeroReadStats/GetZeroWriteStats) via an atomic swap-to-zero on
// each field, so a concurrent poll never tears a single field's value,
// even though the pair as a whole is a best-effort snapshot.
type Blocked struct {
	count   uint64
	blocked uint32
}

// MarkOp records the completion of one operation on this end, never
// touching the blocked flag: the flag is cleared only by Snapshot, not
// implicitly on every op.
func (b *Blocked) MarkOp() {
	atomic.AddUint64(&b.count, 1)
}

// MarkOpN is MarkOp for n operations completed in a single bulk commit
// (SendRange), recorded as one atomic add of n rather than n adds of one.
func (b *Blocked) MarkOpN(n uint64) {
	atomic.AddUint64(&b.count, n)
}

// MarkBlocked sets the blocked flag, idempotently: repeated calls while
// still parked in the same backoff loop do not inflate any counter.
func (b *Blocked) MarkBlocked() {
	atomic.StoreUint32(&b.blocked, 1)
}

// Snapshot atomically returns the current (count, blocked) pair and
// resets both to zero, a harvest-and-clear read so a telemetry poll never
// double-counts a prior interval.
func (b *Blocked) Snapshot() (uint64, bool) {
	count := atomic.SwapUint64(&b.count, 0)
	blocked := atomic.SwapUint32(&b.blocked, 0)
	return count, blocked != 0
}

// SnapshotBlocked builds a Blocked value directly from a (count, blocked)
// pair, for a collaborator that harvested the pair itself (see
// Blocked.Snapshot) and wants to hand it onward as a Blocked rather than
// as a loose tuple.
func SnapshotBlocked(count uint64, blocked bool) Blocked {
	b := Blocked{count: count}
	if blocked {
		b.blocked = 1
	}
	return b
}

// Count returns the current operation count, without resetting it: the
// operations recorded since the last Snapshot.
func (b *Blocked) Count() uint64 {
	return atomic.LoadUint64(&b.count)
}

// IsBlocked reports the current blocked flag, without resetting it.
func (b *Blocked) IsBlocked() bool {
	return atomic.LoadUint32(&b.blocked) != 0
}

// vim: foldmethod=marker
