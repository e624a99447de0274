// Package text implements the Onu runtime primitives over Go-native text
// values.
//
// A Text is an immutable byte string that never contains a NUL byte, which
// keeps it interchangeable with the NUL-terminated strings compiled guests
// pass across the ABI. Operations that produce text return an *Owned; the
// caller releases it exactly once. Operations that consume text only read
// their arguments.
package text

import (
	"bytes"

	"github.com/valyala/bytebufferpool"
)

// Terminator is the byte that ends a text in guest memory.
const Terminator byte = 0

// Text is a borrowed, read-only view of a runtime string.
type Text struct {
	b []byte
}

// FromString copies s into a Text. Content after the first NUL is dropped,
// as a terminated reader would never see it.
func FromString(s string) Text {
	return FromBytes([]byte(s))
}

// FromBytes wraps b without copying. b must not be modified while the Text
// is in use.
func FromBytes(b []byte) Text {
	if i := bytes.IndexByte(b, Terminator); i >= 0 {
		b = b[:i]
	}
	return Text{b: b}
}

// Len returns the number of bytes before the terminator.
func (t Text) Len() int {
	return len(t.b)
}

// Bytes returns the content. The slice must not be modified.
func (t Text) Bytes() []byte {
	return t.b
}

func (t Text) String() string {
	return string(t.b)
}

// AppendTerminated appends the content and a terminator to dst.
func (t Text) AppendTerminated(dst []byte) []byte {
	dst = append(dst, t.b...)
	return append(dst, Terminator)
}

var pool bytebufferpool.Pool

// Owned is a text produced by the runtime. The receiver owns it and must
// call Release once it is done; later calls to Release do nothing.
type Owned struct {
	buf *bytebufferpool.ByteBuffer
}

func newOwned(sizeHint int) *Owned {
	buf := pool.Get()
	buf.B = buf.B[:0]
	if cap(buf.B) < sizeHint+1 {
		buf.B = make([]byte, 0, sizeHint+1)
	}
	return &Owned{buf: buf}
}

// seal appends the terminator. Content bytes are buf.B[:len-1].
func (o *Owned) seal() *Owned {
	o.buf.B = append(o.buf.B, Terminator)
	return o
}

func (o *Owned) content() []byte {
	if o.buf == nil {
		panic("text: use of released Owned")
	}
	return o.buf.B[:len(o.buf.B)-1]
}

// Text borrows the owned content. The view is valid until Release.
func (o *Owned) Text() Text {
	return Text{b: o.content()}
}

// Len returns the number of bytes before the terminator.
func (o *Owned) Len() int {
	return len(o.content())
}

func (o *Owned) String() string {
	return string(o.content())
}

// Terminated returns the content followed by the terminator, exactly
// Len()+1 bytes. The slice is valid until Release.
func (o *Owned) Terminated() []byte {
	o.content()
	return o.buf.B
}

// Released reports whether Release has been called.
func (o *Owned) Released() bool {
	return o.buf == nil
}

// Release returns the storage to the runtime. Safe to call more than once.
func (o *Owned) Release() {
	if o.buf == nil {
		return
	}
	pool.Put(o.buf)
	o.buf = nil
}
