package abi

import (
	"io"
	"os"

	"github.com/woxQAQ/onu-runtime/api/onu"
	"github.com/woxQAQ/onu-runtime/pkg/text"
	"go.uber.org/zap"
)

// Value is an argument or result of a native call.
type Value struct {
	kind  Kind
	i     int64
	t     text.Text
	owned *text.Owned
}

// Int wraps an Integer.
func Int(n int64) Value {
	return Value{kind: KindInteger, i: n}
}

// Str wraps a borrowed Text.
func Str(t text.Text) Value {
	return Value{kind: KindText, t: t}
}

// None is the result of symbols without one.
func None() Value {
	return Value{}
}

func produced(o *text.Owned) Value {
	return Value{kind: KindText, t: o.Text(), owned: o}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind {
	return v.kind
}

// Int returns the Integer payload, 0 for other kinds.
func (v Value) Int() int64 {
	return v.i
}

// Text returns the Text payload, empty for other kinds. For produced
// values the view is valid until Release.
func (v Value) Text() text.Text {
	return v.t
}

// Owned reports whether the value carries a text the caller must release.
func (v Value) Owned() bool {
	return v.owned != nil
}

// Release frees a produced text. Borrowed and non-text values are left
// alone.
func (v Value) Release() {
	if v.owned != nil {
		v.owned.Release()
	}
}

// Natives dispatches runtime symbols by name for Go-hosted front-ends.
type Natives struct {
	stdout io.Writer
	logger *zap.Logger
}

// NewNatives creates a dispatcher writing program output to stdout
// (os.Stdout when nil).
func NewNatives(stdout io.Writer, logger *zap.Logger) *Natives {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Natives{
		stdout: stdout,
		logger: logger.With(zap.String("component", "abi-natives")),
	}
}

// Call invokes the named symbol. Text results are owned by the caller.
func (n *Natives) Call(name string, args ...Value) (Value, error) {
	sym, ok := Lookup(name)
	if !ok {
		return None(), &UnknownSymbolError{Name: name}
	}
	if len(args) != len(sym.Params) {
		return None(), &ArityError{Name: name, Want: len(sym.Params), Got: len(args)}
	}
	for i, want := range sym.Params {
		if args[i].kind != want {
			return None(), &ArgumentKindError{Name: name, Index: i, Want: want, Got: args[i].kind}
		}
	}

	n.logger.Debug("Native call", zap.String("symbol", name), zap.Int("args", len(args)))

	switch name {
	case onu.AsText:
		return produced(text.AsText(args[0].i)), nil
	case onu.JoinedWith:
		return produced(text.JoinedWith(args[0].t, args[1].t)), nil
	case onu.Len:
		return Int(text.Len(args[0].t)), nil
	case onu.CharAt:
		return Int(text.CharAt(args[0].t, args[1].i)), nil
	case onu.InitOf:
		return produced(text.InitOf(args[0].t)), nil
	case onu.CharFromCode:
		return produced(text.CharFromCode(args[0].i)), nil
	case onu.SetChar:
		return produced(text.SetChar(args[0].t, args[1].i, args[2].i)), nil
	case onu.Broadcasts, onu.Emit:
		text.Broadcasts(n.stdout, args[0].t)
		return None(), nil
	}

	// Table entries without a dispatch case are a programming error.
	return None(), &UnknownSymbolError{Name: name}
}
