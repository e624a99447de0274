package wasm

import (
	"context"
	"io"
	"os"

	"github.com/tetratelabs/wazero/api"
	"github.com/woxQAQ/onu-runtime/api/onu"
	"github.com/woxQAQ/onu-runtime/pkg/text"
	"go.uber.org/zap"
)

// HostFunctions implements the runtime symbols for Wasm guests.
//
// The ABI has no error channel. A pointer the guest passes that cannot be
// read is treated as the empty text, and a text that cannot be allocated
// in the guest comes back as pointer 0. Both are logged.
type HostFunctions struct {
	stdout io.Writer
	logger *zap.Logger
}

// NewHostFunctions creates the host side of the runtime. Program output
// goes to stdout (os.Stdout when nil).
func NewHostFunctions(logger *zap.Logger, stdout io.Writer) *HostFunctions {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &HostFunctions{
		stdout: stdout,
		logger: logger.With(zap.String("component", "wasm-host")),
	}
}

// Stdout returns the writer program output goes to.
func (h *HostFunctions) Stdout() io.Writer {
	return h.stdout
}

// consume reads a borrowed text argument.
func (h *HostFunctions) consume(m *Memory, symbol string, ptr uint32) text.Text {
	t, err := m.ReadText(ptr)
	if err != nil {
		h.logger.Warn("Unreadable text argument, using empty text",
			zap.String("symbol", symbol),
			zap.Uint32("ptr", ptr),
			zap.Error(err),
		)
		return text.Text{}
	}
	return t
}

// produce hands a result to the guest and releases the host copy.
func (h *HostFunctions) produce(ctx context.Context, m *Memory, symbol string, t *text.Owned) uint32 {
	defer t.Release()

	ptr, err := m.WriteText(ctx, t)
	if err != nil {
		h.logger.Error("Failed to hand text to guest",
			zap.Int("len", t.Len()),
			zap.Error(&HostFunctionError{FunctionName: symbol, Err: err}),
		)
		return 0
	}
	return ptr
}

// AsText implements as-text.
func (h *HostFunctions) AsText(ctx context.Context, m *Memory, n int64) uint32 {
	return h.produce(ctx, m, onu.AsText, text.AsText(n))
}

// JoinedWith implements joined-with.
func (h *HostFunctions) JoinedWith(ctx context.Context, m *Memory, a, b uint32) uint32 {
	left := h.consume(m, onu.JoinedWith, a)
	right := h.consume(m, onu.JoinedWith, b)
	return h.produce(ctx, m, onu.JoinedWith, text.JoinedWith(left, right))
}

// Len implements len.
func (h *HostFunctions) Len(m *Memory, s uint32) int64 {
	return text.Len(h.consume(m, onu.Len, s))
}

// CharAt implements char-at.
func (h *HostFunctions) CharAt(m *Memory, s uint32, i int64) int64 {
	return text.CharAt(h.consume(m, onu.CharAt, s), i)
}

// InitOf implements init-of.
func (h *HostFunctions) InitOf(ctx context.Context, m *Memory, s uint32) uint32 {
	return h.produce(ctx, m, onu.InitOf, text.InitOf(h.consume(m, onu.InitOf, s)))
}

// CharFromCode implements char-from-code.
func (h *HostFunctions) CharFromCode(ctx context.Context, m *Memory, code int64) uint32 {
	return h.produce(ctx, m, onu.CharFromCode, text.CharFromCode(code))
}

// SetChar implements set-char.
func (h *HostFunctions) SetChar(ctx context.Context, m *Memory, s uint32, i, code int64) uint32 {
	return h.produce(ctx, m, onu.SetChar, text.SetChar(h.consume(m, onu.SetChar, s), i, code))
}

// Broadcasts implements broadcasts and emit.
func (h *HostFunctions) Broadcasts(m *Memory, s uint32) {
	text.Broadcasts(h.stdout, h.consume(m, onu.Broadcasts, s))
}

// The functions below are the shapes wazero binds: the calling guest
// module comes in as mod.

func (h *HostFunctions) asText(ctx context.Context, mod api.Module, n int64) uint32 {
	return h.AsText(ctx, NewMemory(mod), n)
}

func (h *HostFunctions) joinedWith(ctx context.Context, mod api.Module, a, b uint32) uint32 {
	return h.JoinedWith(ctx, NewMemory(mod), a, b)
}

func (h *HostFunctions) length(_ context.Context, mod api.Module, s uint32) int64 {
	return h.Len(NewMemory(mod), s)
}

func (h *HostFunctions) charAt(_ context.Context, mod api.Module, s uint32, i int64) int64 {
	return h.CharAt(NewMemory(mod), s, i)
}

func (h *HostFunctions) initOf(ctx context.Context, mod api.Module, s uint32) uint32 {
	return h.InitOf(ctx, NewMemory(mod), s)
}

func (h *HostFunctions) charFromCode(ctx context.Context, mod api.Module, code int64) uint32 {
	return h.CharFromCode(ctx, NewMemory(mod), code)
}

func (h *HostFunctions) setChar(ctx context.Context, mod api.Module, s uint32, i, code int64) uint32 {
	return h.SetChar(ctx, NewMemory(mod), s, i, code)
}

func (h *HostFunctions) broadcasts(_ context.Context, mod api.Module, s uint32) {
	h.Broadcasts(NewMemory(mod), s)
}
