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
	"errors"
)

var (
	// ErrClosedPortEmpty is raised by a blocked Pop/Peek once its port is
	// marked invalid and the ring has fully drained (size == 0).
	ErrClosedPortEmpty = errors.New("raftlib/queue: port closed, no data remains")

	// ErrClosedPortShort is raised by PeekRange when the port is invalid
	// and fewer items remain than were requested, so the range can never
	// be satisfied.
	ErrClosedPortShort = errors.New("raftlib/queue: port closed, too few items remain for requested range")

	// ErrUnknownIteratorKind is returned by InsertRange when asked to
	// dispatch on an IterKind it does not recognize: a caller-contract
	// violation surfaced as an error rather than a panic.
	ErrUnknownIteratorKind = errors.New("raftlib/queue: unknown iterator kind")
)

// vim: foldmethod=marker
