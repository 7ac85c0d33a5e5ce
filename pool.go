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
	"sync"
)

// Pool is a dynamically sized buffer pool for a single element type. This
// is what the External storage discipline allocates from instead of
// calling new(T) on every slot write: reuse avoids churning the heap on a
// hot producer/consumer loop.
//
// Under the hood this is a sync.Pool, with a type-safe New hook so callers
// never see the interface{} underneath.
type Pool[T any] struct {
	pool *sync.Pool
}

// Put returns a value to the pool for reuse. The caller gives up ownership
// of v; nothing in raftlib reads v again until a later Get hands it back
// out.
func (p *Pool[T]) Put(v *T) {
	p.pool.Put(v)
}

// Get returns an unused value from the pool, or allocates a new one via the
// constructor passed to NewPool if none is available.
func (p *Pool[T]) Get() *T {
	return p.pool.Get().(*T)
}

// NewPool creates a Pool whose New hook is the provided constructor. The
// constructor must return a fresh, independently owned *T every call; the
// pool never calls it concurrently with itself on the same slot, but it
// may be called concurrently across goroutines.
func NewPool[T any](newT func() *T) *Pool[T] {
	return &Pool[T]{
		pool: &sync.Pool{
			New: func() interface{} {
				return newT()
			},
		},
	}
}

// vim: foldmethod=marker
