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
	"context"
	"runtime"

	"github.com/jheo4/raftlib-go"
)

// preemptLimit bounds how many unproductive backoff iterations a blocked
// end tolerates before escaping into the injected Scheduler. It is not
// configurable from outside the package.
const preemptLimit = 4096

// backoffState carries the unproductive-iteration count of one blocking
// wait. The loop around it (RingBufferCore.backoffLoop) exits the gate and
// marks the end's stats as blocked on each failed check, then calls spin;
// spin itself knows nothing about what the op is waiting for.
type backoffState struct {
	iterations int
}

// spin performs one backoff iteration: yield the goroutine, hint a pause,
// and after preemptLimit unproductive iterations give the injected
// Scheduler a chance to reschedule the underlying thread. It returns
// ctx.Err() if ctx is non-nil and has been cancelled, giving callers
// constructed with a context a second way to unstick a blocked loop
// besides port invalidation.
func (b *backoffState) spin(ctx context.Context, kernel raftlib.Kernel, sched raftlib.Scheduler) error {
	if ctx != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	runtime.Gosched() // cooperative yield
	pauseHint()

	b.iterations++
	if sched != nil && b.iterations > preemptLimit {
		if sched.SetRunningState(kernel) == 0 {
			sched.Preempt(kernel)
		}
		b.iterations = 0
	}
	return nil
}

// pauseHint issues an architecture-level pause/spin hint. Go has no
// portable intrinsic for this; runtime.Gosched already yields the
// goroutine to the scheduler, which is the closest portable equivalent
// and is what every busy-wait loop in this package relies on instead of a
// hardware PAUSE.
func pauseHint() {}

// vim: foldmethod=marker
