package abi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woxQAQ/onu-runtime/pkg/text"
	"go.uber.org/zap"
)

func TestSymbolTable(t *testing.T) {
	want := map[string]string{
		"as-text":        "as-text(Integer) -> Text",
		"joined-with":    "joined-with(Text, Text) -> Text",
		"len":            "len(Text) -> Integer",
		"char-at":        "char-at(Text, Integer) -> Integer",
		"init-of":        "init-of(Text) -> Text",
		"char-from-code": "char-from-code(Integer) -> Text",
		"broadcasts":     "broadcasts(Text) -> None",
		"set-char":       "set-char(Text, Integer, Integer) -> Text",
		"emit":           "emit(Text) -> None",
	}

	require.Len(t, Symbols(), len(want))
	for name, sig := range want {
		sym, ok := Lookup(name)
		require.True(t, ok, "symbol %s missing", name)
		assert.Equal(t, sig, sym.Signature())
		assert.Equal(t, sym.Result == KindText, sym.Produces, "%s ownership flag", name)
		assert.NotEmpty(t, sym.Doc)
	}

	assert.Equal(t, []string{"as-text", "joined-with", "len", "char-at", "init-of", "char-from-code", "broadcasts"}, Names()[:7])
}

func TestSymbolsReturnsCopy(t *testing.T) {
	s := Symbols()
	s[0].Name = "mutated"

	_, ok := Lookup("as-text")
	assert.True(t, ok)
	assert.Equal(t, "as-text", Symbols()[0].Name)
}

func TestNativesCall(t *testing.T) {
	var out bytes.Buffer
	n := NewNatives(&out, zap.NewNop())

	num, err := n.Call("as-text", Int(-42))
	require.NoError(t, err)
	defer num.Release()
	assert.True(t, num.Owned())
	assert.Equal(t, "-42", num.Text().String())

	joined, err := n.Call("joined-with", Str(text.FromString("n=")), num)
	require.NoError(t, err)
	defer joined.Release()
	assert.Equal(t, "n=-42", joined.Text().String())

	length, err := n.Call("len", joined)
	require.NoError(t, err)
	assert.Equal(t, KindInteger, length.Kind())
	assert.Equal(t, int64(5), length.Int())

	code, err := n.Call("char-at", joined, Int(0))
	require.NoError(t, err)
	assert.Equal(t, int64('n'), code.Int())

	_, err = n.Call("broadcasts", joined)
	require.NoError(t, err)
	_, err = n.Call("emit", Str(text.FromString("again")))
	require.NoError(t, err)
	assert.Equal(t, "n=-42\nagain\n", out.String())
}

func TestNativesProducers(t *testing.T) {
	n := NewNatives(&bytes.Buffer{}, zap.NewNop())

	tests := []struct {
		name string
		args []Value
		want string
	}{
		{"init-of", []Value{Str(text.FromString("abc"))}, "ab"},
		{"char-from-code", []Value{Int(65)}, "A"},
		{"set-char", []Value{Str(text.FromString("abc")), Int(1), Int('x')}, "axc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Call(tt.name, tt.args...)
			require.NoError(t, err)
			defer got.Release()
			assert.Equal(t, tt.want, got.Text().String())
		})
	}
}

func TestNativesErrors(t *testing.T) {
	n := NewNatives(&bytes.Buffer{}, zap.NewNop())

	_, err := n.Call("reverse", Str(text.FromString("abc")))
	var unknown *UnknownSymbolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "unknown runtime symbol 'reverse'", err.Error())

	_, err = n.Call("len")
	var arity *ArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 1, arity.Want)
	assert.Equal(t, 0, arity.Got)

	_, err = n.Call("char-at", Int(1), Int(2))
	var kind *ArgumentKindError
	require.ErrorAs(t, err, &kind)
	assert.Equal(t, 0, kind.Index)
	assert.Equal(t, "'char-at' argument 0 must be Text, got Integer", err.Error())
}

func TestValueReleaseBorrowed(t *testing.T) {
	v := Str(text.FromString("borrowed"))
	assert.False(t, v.Owned())
	assert.NotPanics(t, v.Release)
	assert.Equal(t, "borrowed", v.Text().String())
}
