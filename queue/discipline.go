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

// Discipline selects how a RingBufferCore's slots hold their payload. Go
// generics have no trait system to match on at a type parameter, so a
// RingBufferCore picks a default from T's shape via an interface check at
// construction and lets a caller override it with WithDiscipline when the
// default guess is wrong for their use case.
type Discipline int

const (
	// DisciplineUnset means "let New pick", and is never observed on a
	// constructed RingBufferCore.
	DisciplineUnset Discipline = iota

	// DisciplinePOD stores T by value and never calls a destroy hook.
	// Selected by default for T with no Destroy method.
	DisciplinePOD

	// DisciplineClass stores T by value and invokes T's Destroy method, or
	// the hook given with WithDestroyHook, when a slot's occupant is popped
	// or recycled. Selected by default when T implements
	// `interface{ Destroy() }`.
	DisciplineClass

	// DisciplineExternal stores T by value alongside a copy in a *T drawn
	// from a Pool and held through a go-pointer handle, and tracks which
	// handle a consumer Peek still holds. Values are copied in by Push/Send
	// and copied out by Peek/Pop; a peeked value pushed back in is copied
	// like any other, not reinstalled by identity. Never selected by
	// default; a caller must ask for it with WithDiscipline.
	DisciplineExternal
)

// String renders the Discipline for log lines and test failure messages.
func (d Discipline) String() string {
	switch d {
	case DisciplinePOD:
		return "POD"
	case DisciplineClass:
		return "Class"
	case DisciplineExternal:
		return "External"
	default:
		return "Unset"
	}
}

// destroyer is implemented by payload types that want a hook run when
// they are popped or recycled. A RingBufferCore[T] whose T
// implements this defaults to DisciplineClass instead of DisciplinePOD.
type destroyer interface {
	Destroy()
}

// vim: foldmethod=marker
