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

package raftlib_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jheo4/raftlib-go"
)

func TestBlockedSnapshotResets(t *testing.T) {
	var b raftlib.Blocked
	b.MarkOp()
	b.MarkOp()
	b.MarkOpN(3)
	b.MarkBlocked()

	count, blocked := b.Snapshot()
	assert.Equal(t, uint64(5), count)
	assert.True(t, blocked)

	count, blocked = b.Snapshot()
	assert.Equal(t, uint64(0), count)
	assert.False(t, blocked)
}

func TestBlockedConcurrentMarkOp(t *testing.T) {
	var b raftlib.Blocked
	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.MarkOp()
		}()
	}
	wg.Wait()

	count, _ := b.Snapshot()
	assert.Equal(t, uint64(100), count)
}

func TestSnapshotBlockedRoundTrip(t *testing.T) {
	snap := raftlib.SnapshotBlocked(42, true)
	assert.Equal(t, uint64(42), snap.Count())
	assert.True(t, snap.IsBlocked())

	snap = raftlib.SnapshotBlocked(0, false)
	assert.Equal(t, uint64(0), snap.Count())
	assert.False(t, snap.IsBlocked())
}

// vim: foldmethod=marker
