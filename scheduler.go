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

// Kernel is the minimal identity a Scheduler needs to reschedule: whatever
// the caller is blocked on behalf of. RingBufferCore never inspects it; it
// only ever threads it through to the Scheduler it was constructed with.
type Kernel interface {
	// Name returns a human-readable identity for logging.
	Name() string
}

// Scheduler is the capability a RingBufferCore falls back to once its own
// spin-yield-pause backoff has run for long enough that continuing to poll
// looks like it is wasting a core. It is injected at construction (see
// queue.WithScheduler), never looked up from a global, so a RingBufferCore
// used outside of a scheduled runtime can simply omit it.
type Scheduler interface {
	// SetRunningState is called once a blocked producer or consumer has
	// exhausted its bounded spin budget. A return of 0 means "first
	// entry" and makes the caller go on to call Preempt; any other value
	// makes it resume polling without preempting.
	SetRunningState(k Kernel) int

	// Preempt is called when SetRunningState returned 0, giving the
	// scheduler a chance to reassign the underlying thread before the
	// caller resumes polling.
	Preempt(k Kernel)
}

// vim: foldmethod=marker
