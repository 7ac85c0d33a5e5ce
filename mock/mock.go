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

// Package mock provides test doubles for raftlib.Scheduler and
// raftlib.Kernel, so a package that only ever needs a backoff loop to
// escape into *something* after spinning a while can be exercised without
// standing up a real goroutine scheduler.
package mock

import (
	"sync"

	"github.com/jheo4/raftlib-go"
)

// New creates a new mock Scheduler. cfg's callbacks, where set, are invoked
// synchronously from SetRunningState/Preempt in addition to New's own call
// bookkeeping; where left nil, New falls back to a zero-value response.
func New(cfg Config) Scheduler {
	return &mockScheduler{config: cfg}
}

// Config is the set of optional hooks and default return values for a mock
// Scheduler.
type Config struct {
	// RunningState, if not nil, is called by SetRunningState and its
	// return value is used as the result. If nil, SetRunningState returns
	// 0.
	RunningState func(raftlib.Kernel) int

	// OnPreempt, if not nil, is called by Preempt with the Kernel being
	// preempted.
	OnPreempt func(raftlib.Kernel)
}

type mockScheduler struct {
	config Config

	mu           sync.Mutex
	runningCalls []raftlib.Kernel
	preemptCalls []raftlib.Kernel
}

// SetRunningState implements raftlib.Scheduler.
func (m *mockScheduler) SetRunningState(k raftlib.Kernel) int {
	m.mu.Lock()
	m.runningCalls = append(m.runningCalls, k)
	m.mu.Unlock()

	if m.config.RunningState != nil {
		return m.config.RunningState(k)
	}
	return 0
}

// Preempt implements raftlib.Scheduler.
func (m *mockScheduler) Preempt(k raftlib.Kernel) {
	m.mu.Lock()
	m.preemptCalls = append(m.preemptCalls, k)
	m.mu.Unlock()

	if m.config.OnPreempt != nil {
		m.config.OnPreempt(k)
	}
}

// RunningStateCalls returns the Kernels passed to SetRunningState, in call
// order, for a test to assert against.
func (m *mockScheduler) RunningStateCalls() []raftlib.Kernel {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]raftlib.Kernel, len(m.runningCalls))
	copy(out, m.runningCalls)
	return out
}

// PreemptCalls returns the Kernels passed to Preempt, in call order, for a
// test to assert against.
func (m *mockScheduler) PreemptCalls() []raftlib.Kernel {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]raftlib.Kernel, len(m.preemptCalls))
	copy(out, m.preemptCalls)
	return out
}

// Scheduler is what New returns: a raftlib.Scheduler plus the introspection
// methods a test asserts against. A test that needs
// RunningStateCalls/PreemptCalls should keep the value New returned rather
// than calling New twice, since each call starts a fresh call history.
type Scheduler interface {
	raftlib.Scheduler
	RunningStateCalls() []raftlib.Kernel
	PreemptCalls() []raftlib.Kernel
}

// Kernel is a minimal raftlib.Kernel with a fixed name, for tests that need
// something to pass to Allocate/Pop's blocking loops via WithScheduler.
type Kernel struct {
	name string
}

// NewKernel returns a Kernel that identifies itself as name.
func NewKernel(name string) *Kernel {
	return &Kernel{name: name}
}

// Name implements raftlib.Kernel.
func (k *Kernel) Name() string {
	return k.name
}

// vim: foldmethod=marker
