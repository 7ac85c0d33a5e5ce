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

// The Inline-POD discipline: the slot holds T by value, push is a plain
// assignment, pop copies it back out, and recycle does nothing beyond
// advancing the read pointer — there is no destructor to run.

func podWrite[T any](b *bufferStorage[T], idx uint64, v T, sig SignalCode) {
	b.store[idx] = v
	b.signal[idx] = sig
}

func podRead[T any](b *bufferStorage[T], idx uint64) (T, SignalCode) {
	return b.store[idx], b.signal[idx]
}

func podRecycle[T any](b *bufferStorage[T], idx uint64) {
	var zero T
	b.store[idx] = zero
}

// vim: foldmethod=marker
