package third

import (
	"fmt"
	"io"
	"io/ioutil"

	"github.com/thirdlang/third/internal/flushio"
	"github.com/thirdlang/third/internal/runeio"
)

// Shared variable slots. The first SharedUserBase slots are reserved by
// the engine itself; everything from SharedUserBase onward is free for the
// host (or words registered via Defw) to use however it likes.
const (
	SharedLatest Cell = iota
	SharedHere
	SharedWordAvailable
	SharedCompiling
	SharedLocalCount
	SharedDictRoot
	SharedUserBase
)

// Config supplies every fixed-size buffer and I/O stream an Engine needs.
// None of these are grown or reallocated after New returns. Memory and
// Shared are sized by their lengths; Stack, Locals, and Natives are sized by
// their capacities (their existing contents are discarded).
type Config struct {
	// Stack is the data stack's backing storage.
	Stack []Cell
	// Memory is the dictionary/bytecode arena's backing storage.
	Memory []Cell
	// Locals is the locals stack's backing storage, used at run time by
	// LOCAL_SET and LOCAL_PUSH.
	Locals []Cell
	// Natives is the native word table's backing storage.
	Natives []Func
	// Shared is the shared variable bank's backing storage. Must have at
	// least SharedUserBase slots.
	Shared []Cell

	// Output receives bytes written by words like emit and "."; defaults
	// to a discarding writer.
	Output io.Writer
	// Input supplies runes to words like key; optional. Any io.Reader
	// works, wrapped in a bufio-backed rune reader if it doesn't already
	// support ReadRune.
	Input io.Reader
	// Logf, if set, receives a trace line for every word the interpreter
	// dispatches, every bytecode instruction the VM executes, and every
	// word lookup that fails. Other errors are not logged.
	Logf func(format string, args ...interface{})
}

// Engine is a Forth-like interpreter, compiler, and virtual machine over a
// host-supplied set of fixed-size buffers.
type Engine struct {
	arena   *Arena
	natives *nativeTable

	stack  []Cell
	locals []Cell
	shared []Cell

	scratch string
	tok     *tokenizer

	out flushio.WriteFlusher
	in  runeio.Reader

	logf func(format string, args ...interface{})

	lastErr error
}

// New constructs an Engine over the buffers and streams in cfg, then
// registers the handful of native words every engine needs: ":", ";",
// "{"/"}", "'", ",", "!", "@", "immediate", and "compile-only".
func New(cfg Config) (*Engine, error) {
	if len(cfg.Shared) < int(SharedUserBase) {
		return nil, fmt.Errorf("third: shared bank needs at least %d slots, got %d", SharedUserBase, len(cfg.Shared))
	}

	e := &Engine{
		arena:   newArena(cfg.Memory),
		natives: newNativeTable(cfg.Natives),
		stack:   cfg.Stack[:0],
		locals:  cfg.Locals[:0],
		shared:  cfg.Shared,
		logf:    cfg.Logf,
	}
	if cfg.Input != nil {
		e.in = runeio.NewReader(cfg.Input)
	}
	for i := range e.shared {
		e.shared[i] = 0
	}

	if cfg.Output != nil {
		e.out = flushio.NewWriteFlusher(cfg.Output)
	} else {
		e.out = flushio.NewWriteFlusher(ioutil.Discard)
	}

	// Reserve arena address 0 as a guard cell, so RAddr(0) can serve
	// unambiguously as the "no entry" sentinel for LATEST/previous - a
	// distinction C gets for free because a heap pointer is never
	// literally address 0, but a 0-based Go slice index is not.
	if _, err := e.arena.Allot(1); err != nil {
		return nil, err
	}

	if err := e.registerCore(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) logTrace(format string, args ...interface{}) {
	if e.logf != nil {
		e.logf(format, args...)
	}
}

// withLogPrefix prepends prefix to every subsequent trace line until the
// returned func is called, restoring the prior logf. execAt calls this
// once per recursion level so nested CALL_FORTH dispatch reads as nested
// trace output rather than a single flat stream.
func (e *Engine) withLogPrefix(prefix string) func() {
	prev := e.logf
	if prev == nil {
		return func() {}
	}
	e.logf = func(format string, args ...interface{}) {
		prev(prefix+format, args...)
	}
	return func() { e.logf = prev }
}

// GetShared reads a shared variable slot. SharedHere always mirrors the
// arena's live Here value rather than a stored copy.
func (e *Engine) GetShared(slot Cell) Cell {
	if slot == SharedHere {
		return Cell(e.arena.Here())
	}
	return e.shared[slot]
}

// SetShared writes a shared variable slot. Writes to SharedHere are
// ignored, since Here is derived from the arena, not stored.
func (e *Engine) SetShared(slot Cell, v Cell) {
	if slot == SharedHere {
		return
	}
	e.shared[slot] = v
}

// Compiling reports whether the engine is currently compiling a
// definition's body rather than executing words immediately.
func (e *Engine) Compiling() bool { return e.GetShared(SharedCompiling) != 0 }

// Here returns the arena's current allocation pointer.
func (e *Engine) Here() RAddr { return e.arena.Here() }

// Arena exposes the engine's dictionary/bytecode arena for native words
// that need raw Load/Store/Allot access.
func (e *Engine) Arena() *Arena { return e.arena }

func (e *Engine) emit(c Cell) (RAddr, error) { return e.arena.PutCell(c) }

// Emit appends a raw cell to the word currently being compiled (or
// wherever Here points, if nothing is being compiled) and returns its
// address. Native words that build their own control-flow constructs -
// the words package's "do"/"loop", for instance - use this the same way
// the core's own "," does.
func (e *Engine) Emit(c Cell) (RAddr, error) { return e.emit(c) }

// EmitCallTo compiles a call to the already-registered word named name
// into the word currently being compiled: a CALL_C for a native word, a
// CALL_FORTH for a Forth one.
func (e *Engine) EmitCallTo(name string) error {
	addr, ok := e.lookup(name)
	if !ok {
		return wordError(ErrWordNotFound, name)
	}
	flags, err := e.entryFlags(addr)
	if err != nil {
		return err
	}
	body, err := e.entryBody(addr)
	if err != nil {
		return err
	}
	if flags&FlagCWord != 0 {
		handle, err := e.arena.Load(body)
		if err != nil {
			return err
		}
		if _, err := e.emit(Cell(OpCallC)); err != nil {
			return err
		}
		_, err = e.emit(handle)
		return err
	}
	if _, err := e.emit(Cell(OpCallForth)); err != nil {
		return err
	}
	_, err = e.emit(Cell(body))
	return err
}

// PushData pushes v onto the data stack, failing with ErrStackOverflow if
// the host-supplied backing array is full.
func (e *Engine) PushData(v Cell) error {
	if len(e.stack) >= cap(e.stack) {
		return ErrStackOverflow
	}
	e.stack = append(e.stack, v)
	return nil
}

// PopData pops the top of the data stack, failing with ErrStackUnderflow
// if it is empty.
func (e *Engine) PopData() (Cell, error) {
	n := len(e.stack)
	if n == 0 {
		return 0, ErrStackUnderflow
	}
	v := e.stack[n-1]
	e.stack = e.stack[:n-1]
	return v, nil
}

// Stack returns a copy of the current data stack contents, bottom first.
func (e *Engine) Stack() []Cell {
	out := make([]Cell, len(e.stack))
	copy(out, e.stack)
	return out
}

// LastError returns the error (possibly nil) returned by the most recent
// call to Exec.
func (e *Engine) LastError() error { return e.lastErr }

// WriteRune writes a single rune to the engine's configured output, using
// runeio's ANSI-safe encoding: C1 controls collapse to their 7-bit escape
// form rather than raw utf8.
func (e *Engine) WriteRune(r rune) error {
	if _, err := runeio.WriteANSIRune(e.out, r); err != nil {
		return err
	}
	return e.out.Flush()
}

// ReadRune reads a single rune from the engine's configured input. It
// fails with ErrOutOfRange if no input was configured or input is
// exhausted, mirroring how the design treats "key" on a closed stream.
func (e *Engine) ReadRune() (rune, error) {
	if e.in == nil {
		return 0, ErrOutOfRange
	}
	r, _, err := e.in.ReadRune()
	if err != nil {
		return 0, ErrOutOfRange
	}
	return r, nil
}

// Defw registers a native word: fn is added to the native word table, a
// dictionary header named name is created pointing at it, and flags are
// OR'd onto the new entry in addition to the FlagCWord every native word
// carries.
func (e *Engine) Defw(name string, fn Func, flags Flags) error {
	handle, err := e.natives.register(fn)
	if err != nil {
		return err
	}
	addr, err := e.create(name)
	if err != nil {
		return err
	}
	if err := e.setFlags(addr, flags|FlagCWord); err != nil {
		return err
	}
	if _, err := e.emit(handle); err != nil {
		return err
	}
	return nil
}
