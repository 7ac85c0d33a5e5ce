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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jheo4/raftlib-go"
)

func TestPointerIncWraps(t *testing.T) {
	p := raftlib.NewPointer(4)
	assert.Equal(t, uint64(0), p.Val())
	assert.False(t, p.WrapIndicator())

	for i := 0; i < 4; i++ {
		p = p.Inc()
	}
	assert.Equal(t, uint64(0), p.Val())
	assert.True(t, p.WrapIndicator())

	for i := 0; i < 4; i++ {
		p = p.Inc()
	}
	assert.Equal(t, uint64(0), p.Val())
	assert.False(t, p.WrapIndicator())
}

func TestPointerIncByMatchesRepeatedInc(t *testing.T) {
	capacity := uint64(7)
	byOne := raftlib.NewPointer(capacity)
	byN := raftlib.NewPointer(capacity)

	for i := 0; i < 23; i++ {
		byOne = byOne.Inc()
	}
	byN = byN.IncBy(23)

	assert.Equal(t, byOne.Val(), byN.Val())
	assert.Equal(t, byOne.WrapIndicator(), byN.WrapIndicator())
}

func TestPointerIncByMultipleLaps(t *testing.T) {
	p := raftlib.NewPointer(3)
	p = p.IncBy(3 * 5) // five full laps: wrap flips five times, ends true
	assert.Equal(t, uint64(0), p.Val())
	assert.True(t, p.WrapIndicator())

	p = raftlib.NewPointer(3)
	p = p.IncBy(3*5 + 1) // five full laps plus one more step
	assert.Equal(t, uint64(1), p.Val())
	assert.True(t, p.WrapIndicator())
}

func TestPointerZeroCapacityIsNoOp(t *testing.T) {
	p := raftlib.NewPointer(0)
	p = p.IncBy(100)
	assert.Equal(t, uint64(0), p.Val())
	assert.False(t, p.WrapIndicator())
}

func TestPointerString(t *testing.T) {
	p := raftlib.NewPointer(8)
	p = p.IncBy(3)
	assert.Equal(t, "3/0", p.String())
	p = p.IncBy(5)
	assert.Equal(t, "0/1", p.String())
}

// vim: foldmethod=marker
