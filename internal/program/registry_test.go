package program

import (
	"testing"

	"github.com/woxQAQ/onu-runtime/api/onu"
	"go.uber.org/zap"
)

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	if err := registry.Register(newProgram("hello", onu.AsText)); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	if registry.Count() != 1 {
		t.Errorf("expected count 1, got %d", registry.Count())
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	if err := registry.Register(newProgram("hello")); err != nil {
		t.Fatalf("First Register() failed: %v", err)
	}

	err := registry.Register(newProgram("hello"))
	if err == nil {
		t.Fatal("Register() should fail for a duplicate program")
	}

	_, ok := err.(*ProgramAlreadyRegisteredError)
	if !ok {
		t.Errorf("expected ProgramAlreadyRegisteredError, got %T", err)
	}
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	program := newProgram("hello")

	if err := registry.Register(program); err != nil {
		t.Fatal(err)
	}

	got, ok := registry.Get("hello")
	if !ok {
		t.Fatal("Get() should find the registered program")
	}

	if got != program {
		t.Error("Get() returned a different program")
	}

	if _, ok := registry.Get("missing"); ok {
		t.Error("Get() should not find an unknown program")
	}
}

func TestRegistry_LookupBySymbol(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	registry.Register(newProgram("hello", onu.AsText, onu.Broadcasts))
	registry.Register(newProgram("count", onu.Len))
	registry.Register(newProgram("shout", onu.Broadcasts, onu.JoinedWith))

	printers := registry.LookupBySymbol(onu.Broadcasts)
	if len(printers) != 2 {
		t.Fatalf("expected 2 programs using broadcasts, got %d", len(printers))
	}

	if got := registry.LookupBySymbol(onu.SetChar); len(got) != 0 {
		t.Errorf("expected no programs using set-char, got %d", len(got))
	}

	// The result is a copy.
	printers[0] = nil
	if registry.LookupBySymbol(onu.Broadcasts)[0] == nil {
		t.Error("LookupBySymbol() should return a copy")
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	for _, name := range []string{"zeta", "alpha", "mid"} {
		registry.Register(newProgram(name))
	}

	list := registry.List()
	want := []string{"alpha", "mid", "zeta"}
	if len(list) != len(want) {
		t.Fatalf("expected %d programs, got %d", len(want), len(list))
	}
	for i, p := range list {
		if p.Name() != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, p.Name(), want[i])
		}
	}
}

func TestRegistry_Unregister(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	registry.Register(newProgram("hello", onu.Broadcasts))
	registry.Register(newProgram("other", onu.Broadcasts))

	registry.Unregister("hello")

	if registry.Count() != 1 {
		t.Errorf("expected count 1, got %d", registry.Count())
	}

	users := registry.LookupBySymbol(onu.Broadcasts)
	if len(users) != 1 || users[0].Name() != "other" {
		t.Errorf("unexpected symbol index after Unregister: %v", users)
	}

	// Unknown names are ignored.
	registry.Unregister("missing")
}
