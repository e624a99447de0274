package text

import (
	"io"
	"strconv"
)

// maxIntDigits covers "-9223372036854775808".
const maxIntDigits = 20

// AsText renders n in canonical base-10 form.
func AsText(n int64) *Owned {
	o := newOwned(maxIntDigits)
	o.buf.B = strconv.AppendInt(o.buf.B, n, 10)
	return o.seal()
}

// JoinedWith concatenates a and b with no separator.
func JoinedWith(a, b Text) *Owned {
	o := newOwned(len(a.b) + len(b.b))
	o.buf.B = append(o.buf.B, a.b...)
	o.buf.B = append(o.buf.B, b.b...)
	return o.seal()
}

// Len returns the byte length of s.
func Len(s Text) int64 {
	return int64(len(s.b))
}

// CharAt returns the byte code at index i, or 0 when i is out of range.
// The 0 sentinel is indistinguishable from a NUL byte, which a Text cannot
// hold anyway.
func CharAt(s Text, i int64) int64 {
	if i < 0 || i >= int64(len(s.b)) {
		return 0
	}
	return int64(s.b[i])
}

// InitOf drops the last byte of s. Texts of length 0 or 1 yield the empty
// text.
func InitOf(s Text) *Owned {
	n := len(s.b) - 1
	if n < 0 {
		n = 0
	}
	o := newOwned(n)
	o.buf.B = append(o.buf.B, s.b[:n]...)
	return o.seal()
}

// CharFromCode builds a one-byte text from the low 8 bits of code. Codes
// whose low byte is 0 yield the empty text.
func CharFromCode(code int64) *Owned {
	o := newOwned(1)
	if c := byte(code); c != Terminator {
		o.buf.B = append(o.buf.B, c)
	}
	return o.seal()
}

// SetChar copies s with the byte at i replaced by the low 8 bits of code.
// An out-of-range index returns an unchanged copy. Writing a 0 byte ends
// the text at i.
func SetChar(s Text, i int64, code int64) *Owned {
	o := newOwned(len(s.b))
	o.buf.B = append(o.buf.B, s.b...)
	if i >= 0 && i < int64(len(s.b)) {
		if c := byte(code); c == Terminator {
			o.buf.B = o.buf.B[:i]
		} else {
			o.buf.B[i] = c
		}
	}
	return o.seal()
}

// Broadcasts writes s and a newline to w in a single write. Write errors
// are dropped; the primitive has no error channel.
func Broadcasts(w io.Writer, s Text) {
	buf := pool.Get()
	buf.B = append(buf.B[:0], s.b...)
	buf.B = append(buf.B, '\n')
	_, _ = w.Write(buf.B)
	pool.Put(buf)
}
