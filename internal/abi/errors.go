package abi

import "fmt"

// UnknownSymbolError occurs when a call names no runtime symbol.
type UnknownSymbolError struct {
	Name string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown runtime symbol '%s'", e.Name)
}

// ArityError occurs when a call passes the wrong number of arguments.
type ArityError struct {
	Name string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("'%s' takes %d argument(s), got %d", e.Name, e.Want, e.Got)
}

// ArgumentKindError occurs when an argument has the wrong kind.
type ArgumentKindError struct {
	Name  string
	Index int
	Want  Kind
	Got   Kind
}

func (e *ArgumentKindError) Error() string {
	return fmt.Sprintf("'%s' argument %d must be %s, got %s", e.Name, e.Index, e.Want, e.Got)
}
