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

package mock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jheo4/raftlib-go"
	"github.com/jheo4/raftlib-go/mock"
)

func TestSchedulerRecordsRunningStateCalls(t *testing.T) {
	sched := mock.New(mock.Config{})
	k := mock.NewKernel("worker-1")

	state := sched.SetRunningState(k)
	assert.Equal(t, 0, state)

	calls := sched.RunningStateCalls()
	assert.Len(t, calls, 1)
	assert.Equal(t, "worker-1", calls[0].Name())
}

func TestSchedulerRunningStateHookOverridesDefault(t *testing.T) {
	sched := mock.New(mock.Config{
		RunningState: func(k raftlib.Kernel) int { return 7 },
	})
	k := mock.NewKernel("worker-2")
	assert.Equal(t, 7, sched.SetRunningState(k))
}

func TestSchedulerRecordsPreemptCalls(t *testing.T) {
	var preempted []string
	sched := mock.New(mock.Config{
		OnPreempt: func(k raftlib.Kernel) {
			preempted = append(preempted, k.Name())
		},
	})
	k := mock.NewKernel("worker-3")
	sched.Preempt(k)

	assert.Equal(t, []string{"worker-3"}, preempted)
	assert.Len(t, sched.PreemptCalls(), 1)
}

// vim: foldmethod=marker
