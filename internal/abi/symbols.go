// Package abi describes the runtime symbol table: every primitive a
// compiled Onu program can link against, with its signature.
package abi

import (
	"strings"

	"github.com/woxQAQ/onu-runtime/api/onu"
)

// Kind is the semantic type of a value crossing the boundary.
type Kind uint8

const (
	KindNone Kind = iota
	KindInteger
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindText:
		return "Text"
	default:
		return "None"
	}
}

// Symbol is one entry of the runtime's link table.
type Symbol struct {
	Name   string
	Params []Kind
	Result Kind
	Doc    string

	// Produces reports whether the result is a newly allocated Text owned
	// by the caller.
	Produces bool
}

// Signature renders the symbol as "name(Params) -> Result".
func (s Symbol) Signature() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}
	return s.Name + "(" + strings.Join(params, ", ") + ") -> " + s.Result.String()
}

var symbols = []Symbol{
	{
		Name:     onu.AsText,
		Params:   []Kind{KindInteger},
		Result:   KindText,
		Produces: true,
		Doc:      "Canonical base-10 form of an integer.",
	},
	{
		Name:     onu.JoinedWith,
		Params:   []Kind{KindText, KindText},
		Result:   KindText,
		Produces: true,
		Doc:      "Concatenation of two texts, no separator.",
	},
	{
		Name:   onu.Len,
		Params: []Kind{KindText},
		Result: KindInteger,
		Doc:    "Number of bytes before the terminator.",
	},
	{
		Name:   onu.CharAt,
		Params: []Kind{KindText, KindInteger},
		Result: KindInteger,
		Doc:    "Byte code at a zero-based index; 0 when out of range.",
	},
	{
		Name:     onu.InitOf,
		Params:   []Kind{KindText},
		Result:   KindText,
		Produces: true,
		Doc:      "All bytes but the last; empty for length 0 or 1.",
	},
	{
		Name:     onu.CharFromCode,
		Params:   []Kind{KindInteger},
		Result:   KindText,
		Produces: true,
		Doc:      "One-byte text from the low 8 bits of a code.",
	},
	{
		Name:   onu.Broadcasts,
		Params: []Kind{KindText},
		Result: KindNone,
		Doc:    "Writes a text and a newline to standard output; write errors are ignored.",
	},
	{
		Name:     onu.SetChar,
		Params:   []Kind{KindText, KindInteger, KindInteger},
		Result:   KindText,
		Produces: true,
		Doc:      "Copy of a text with one byte replaced; unchanged copy when out of range.",
	},
	{
		Name:   onu.Emit,
		Params: []Kind{KindText},
		Result: KindNone,
		Doc:    "Alias of broadcasts.",
	},
}

var byName = func() map[string]Symbol {
	m := make(map[string]Symbol, len(symbols))
	for _, s := range symbols {
		m[s.Name] = s
	}
	return m
}()

// Symbols returns the link table in its stable order.
func Symbols() []Symbol {
	out := make([]Symbol, len(symbols))
	copy(out, symbols)
	return out
}

// Lookup resolves a symbol by its link name.
func Lookup(name string) (Symbol, bool) {
	s, ok := byName[name]
	return s, ok
}

// Names returns the link names in table order.
func Names() []string {
	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = s.Name
	}
	return names
}
