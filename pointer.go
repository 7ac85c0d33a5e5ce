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
	"fmt"
)

// Pointer pairs a slot index, advancing modulo the ring's capacity, with a
// single wrap bit. The wrap bit is what lets BufferStorage tell an
// empty ring apart from a full one without a separate counter: two pointers
// with equal Val but differing Wrap have lapped each other exactly once.
//
// A Pointer has exactly one writer for its lifetime (the producer owns
// write_pt, the consumer owns read_pt). Readers on the other side only ever
// load it; there is no CAS here because there is nothing to contend over.
type Pointer struct {
	val  uint64
	wrap bool
	cap  uint64
}

// NewPointer returns a Pointer over a ring of the given capacity, positioned
// at slot zero with the wrap bit clear.
func NewPointer(capacity uint64) Pointer {
	return Pointer{cap: capacity}
}

// Val is the current slot index, always in [0, capacity).
func (p Pointer) Val() uint64 {
	return p.val
}

// WrapIndicator reports the parity of how many times this Pointer has
// wrapped around the ring.
func (p Pointer) WrapIndicator() bool {
	return p.wrap
}

// Inc advances the Pointer by one slot, flipping the wrap bit when it laps
// the end of the ring.
func (p Pointer) Inc() Pointer {
	return p.IncBy(1)
}

// IncBy advances the Pointer by n slots. n may be larger than the capacity;
// the wrap bit flips once per lap, not once per call.
func (p Pointer) IncBy(n uint64) Pointer {
	if p.cap == 0 {
		return p
	}
	laps := (p.val + n) / p.cap
	p.val = (p.val + n) % p.cap
	if laps%2 == 1 {
		p.wrap = !p.wrap
	}
	return p
}

// String renders the Pointer for debugging and log lines in a compact
// "val/wrap" shape.
func (p Pointer) String() string {
	w := 0
	if p.wrap {
		w = 1
	}
	return fmt.Sprintf("%d/%d", p.val, w)
}

// vim: foldmethod=marker
