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

// SignalCode rides alongside every slot in a BufferStorage, carrying
// out-of-band control information the consumer must act on before (or
// instead of) looking at the slot's value.
type SignalCode uint8

const (
	// SignalUnset is the zero value. A slot carrying SignalUnset has never
	// been written by the producer; seeing it on a slot the ring reports
	// as occupied is a bug, not a valid state.
	SignalUnset SignalCode = iota

	// SignalNone marks an ordinary data slot: nothing for the consumer to
	// do beyond reading the value.
	SignalNone

	// SignalEOF tells the consumer this is the last slot the producer will
	// ever write on this port; no item follows it.
	SignalEOF

	// SignalQuit asks the consumer to stop pulling from this port
	// entirely, independent of whether more data is queued behind it.
	SignalQuit
)

// String renders the SignalCode for log lines and test failure messages.
func (s SignalCode) String() string {
	switch s {
	case SignalNone:
		return "NONE"
	case SignalEOF:
		return "EOF"
	case SignalQuit:
		return "QUIT"
	default:
		return "UNSET"
	}
}
