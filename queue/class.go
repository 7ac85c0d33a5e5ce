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

// The Inline-Class discipline: the slot still holds T by value, but an
// occupant gets a chance to release its own resources (close a file
// descriptor, return a buffer to a pool, ...) when it is popped or
// recycled. A write is a plain assignment into a slot that was zeroed when
// its previous occupant left. T opts in by implementing destroyer, or a
// RingBufferCore can be given an explicit destroy hook via WithDestroyHook
// that applies regardless of T's own methods.

func classWrite[T any](b *bufferStorage[T], idx uint64, v T, sig SignalCode, destroy func(*T)) {
	b.store[idx] = v
	b.signal[idx] = sig
}

func classRead[T any](b *bufferStorage[T], idx uint64, destroy func(*T)) (T, SignalCode) {
	v, sig := b.store[idx], b.signal[idx]
	destroySlot(b, idx, destroy)
	var zero T
	b.store[idx] = zero
	return v, sig
}

func classRecycle[T any](b *bufferStorage[T], idx uint64, destroy func(*T)) {
	destroySlot(b, idx, destroy)
	var zero T
	b.store[idx] = zero
}

func destroySlot[T any](b *bufferStorage[T], idx uint64, destroy func(*T)) {
	if destroy != nil {
		destroy(&b.store[idx])
		return
	}
	if d, ok := any(&b.store[idx]).(destroyer); ok {
		d.Destroy()
	}
}

// vim: foldmethod=marker
