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

package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jheo4/raftlib-go/queue"
)

func TestNewRejectsZeroCapacity(t *testing.T) {
	_, err := queue.New[int](0)
	assert.Error(t, err)
}

func TestPushPopRoundTrip(t *testing.T) {
	q, err := queue.New[int](4)
	require.NoError(t, err)

	require.NoError(t, q.Push(1, queue.SignalNone))
	require.NoError(t, q.Push(2, queue.SignalNone))

	v, sig, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, queue.SignalNone, sig)

	v, sig, err = q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestAllocateSendDeallocate(t *testing.T) {
	q, err := queue.New[string](2)
	require.NoError(t, err)

	idx, err := q.Allocate()
	require.NoError(t, err)
	q.Send("hello", queue.SignalNone)
	assert.Equal(t, uint64(1), q.Size())

	_, err = q.Allocate()
	require.NoError(t, err)
	q.Deallocate()
	assert.Equal(t, uint64(1), q.Size())

	v, _, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	_ = idx
}

func TestFullRingBlocksProducerUntilConsumerDrains(t *testing.T) {
	q, err := queue.New[int](2)
	require.NoError(t, err)

	require.NoError(t, q.Push(1, queue.SignalNone))
	require.NoError(t, q.Push(2, queue.SignalNone))
	assert.Equal(t, uint64(0), q.SpaceAvail())

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, q.Push(3, queue.SignalNone))
	}()

	select {
	case <-done:
		t.Fatal("Push returned before the ring had space")
	case <-time.After(20 * time.Millisecond):
	}

	_, _, err = q.Pop()
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push never unblocked after a Pop freed a slot")
	}
}

func TestInvalidateUnblocksConsumer(t *testing.T) {
	q, err := queue.New[int](2)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, _, err := q.Pop()
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Invalidate()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, queue.ErrClosedPortEmpty)
	case <-time.After(time.Second):
		t.Fatal("Pop never unblocked after Invalidate")
	}
}

func TestContextCancelUnblocksProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q, err := queue.NewWithContext[int](ctx, 1)
	require.NoError(t, err)

	require.NoError(t, q.Push(1, queue.SignalNone))

	errc := make(chan error, 1)
	go func() {
		errc <- q.Push(2, queue.SignalNone)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Push never unblocked after context cancellation")
	}
}

func TestPeekUnpeekLeavesItemInPlace(t *testing.T) {
	q, err := queue.New[int](2)
	require.NoError(t, err)
	require.NoError(t, q.Push(7, queue.SignalNone))

	v, _, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	q.Unpeek()
	assert.Equal(t, uint64(1), q.Size())

	v, _, err = q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestPeekRecycleConsumesItem(t *testing.T) {
	q, err := queue.New[int](2)
	require.NoError(t, err)
	require.NoError(t, q.Push(7, queue.SignalNone))

	_, _, err = q.Peek()
	require.NoError(t, err)
	q.Recycle(1)
	assert.Equal(t, uint64(0), q.Size())
}

func TestRecycleZeroLeavesActivePeekInPlace(t *testing.T) {
	q, err := queue.New[int](2)
	require.NoError(t, err)
	require.NoError(t, q.Push(7, queue.SignalNone))

	v, _, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	q.Recycle(0)
	assert.Equal(t, uint64(1), q.Size())

	q.Unpeek()
	v, _, err = q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestAllocateNSendRange(t *testing.T) {
	q, err := queue.New[int](8)
	require.NoError(t, err)

	idx, err := q.AllocateN(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), idx)
	for i := uint64(0); i < 3; i++ {
		*q.SlotAt(idx + i) = int(i) + 1
	}
	q.SendRange(queue.SignalEOF)

	assert.Equal(t, uint64(3), q.Size())
	assert.True(t, q.GetWriteFinished())

	vs, sigs, err := q.PopRange(3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, vs)
	assert.Equal(t, queue.SignalEOF, sigs[2])
	assert.Equal(t, queue.SignalNone, sigs[0])
}

func TestSendWithoutAllocateIsSilentNoOp(t *testing.T) {
	q, err := queue.New[int](4)
	require.NoError(t, err)

	q.Send(1, queue.SignalNone)
	assert.Equal(t, uint64(0), q.Size())
	assert.Equal(t, uint64(4), q.SpaceAvail())
}

func TestSignalOnlySlotConsumedBySignalPeekAndSignalPop(t *testing.T) {
	q, err := queue.New[int](4)
	require.NoError(t, err)

	require.NoError(t, q.Push(0, queue.SignalQuit))

	assert.Equal(t, queue.SignalQuit, q.SignalPeek())
	require.NoError(t, q.SignalPop())
	assert.Equal(t, uint64(0), q.Size())
	assert.True(t, q.GetWriteFinished())
}

func TestInsertRangeRejectsUnknownIterKind(t *testing.T) {
	q, err := queue.New[int](4)
	require.NoError(t, err)

	err = q.InsertRange([]int{1, 2}, queue.SignalNone, queue.IterList)
	assert.ErrorIs(t, err, queue.ErrUnknownIteratorKind)
}

func TestPeekRangeShortOnPartialInvalidatedQueue(t *testing.T) {
	q, err := queue.New[int](4)
	require.NoError(t, err)
	require.NoError(t, q.Push(1, queue.SignalNone))
	q.Invalidate()

	_, _, _, err = q.PeekRange(2)
	assert.ErrorIs(t, err, queue.ErrClosedPortShort)
}

type destroyable struct {
	destroyed *int
}

func (d *destroyable) Destroy() {
	*d.destroyed++
}

func TestClassDisciplineDestroysOnPopAndRecycle(t *testing.T) {
	q, err := queue.New[destroyable](2)
	require.NoError(t, err)

	var destroyedA, destroyedB int
	require.NoError(t, q.Push(destroyable{destroyed: &destroyedA}, queue.SignalNone))
	require.NoError(t, q.Push(destroyable{destroyed: &destroyedB}, queue.SignalNone))

	_, _, err = q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 1, destroyedA)

	_, _, err = q.Peek()
	require.NoError(t, err)
	q.Recycle(1)
	assert.Equal(t, 1, destroyedB)
}

func TestWithDestroyHookOverridesDefaultDiscipline(t *testing.T) {
	var hookCalls int
	q, err := queue.New[int](2, queue.WithDiscipline[int](queue.DisciplineClass), queue.WithDestroyHook(func(v *int) {
		hookCalls++
	}))
	require.NoError(t, err)

	require.NoError(t, q.Push(1, queue.SignalNone))
	_, _, err = q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 1, hookCalls)
}

func TestExternalDisciplinePeekThenRecycle(t *testing.T) {
	type payload struct{ n int }

	q, err := queue.New[payload](2, queue.WithDiscipline[payload](queue.DisciplineExternal))
	require.NoError(t, err)

	require.NoError(t, q.Push(payload{n: 9}, queue.SignalNone))

	v, _, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, 9, v.n)
	q.Recycle(1)
}

func TestResizeGrowsWithoutLosingItems(t *testing.T) {
	q, err := queue.New[int](2)
	require.NoError(t, err)
	require.NoError(t, q.Push(1, queue.SignalNone))
	require.NoError(t, q.Push(2, queue.SignalNone))

	require.NoError(t, q.Resize(8))
	assert.Equal(t, uint64(8), q.Capacity())
	assert.Equal(t, uint64(2), q.Size())

	require.NoError(t, q.Push(3, queue.SignalNone))
	for i, want := range []int{1, 2, 3} {
		v, _, err := q.Pop()
		require.NoError(t, err)
		assert.Equal(t, want, v, "item %d", i)
	}
}

func TestResizeRejectsShrinkBelowCurrentSize(t *testing.T) {
	q, err := queue.New[int](4)
	require.NoError(t, err)
	require.NoError(t, q.Push(1, queue.SignalNone))
	require.NoError(t, q.Push(2, queue.SignalNone))
	require.NoError(t, q.Push(3, queue.SignalNone))

	err = q.Resize(2)
	assert.Error(t, err)
}

func TestGetZeroWriteStatsReturnsAndResetsCount(t *testing.T) {
	q, err := queue.New[int](1)
	require.NoError(t, err)
	require.NoError(t, q.Push(1, queue.SignalNone))

	stats := q.GetZeroWriteStats()
	assert.Equal(t, uint64(1), stats.Count())

	stats = q.GetZeroWriteStats()
	assert.Equal(t, uint64(0), stats.Count())
}

func TestConcurrentProducerConsumerPreservesOrder(t *testing.T) {
	q, err := queue.New[int](16)
	require.NoError(t, err)

	const n = 2000
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			require.NoError(t, q.Push(i, queue.SignalNone))
		}
	}()

	for i := 0; i < n; i++ {
		v, _, err := q.Pop()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	wg.Wait()
}

// vim: foldmethod=marker
