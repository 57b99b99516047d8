// Package words supplies the native primitives the engine's core
// deliberately leaves out: arithmetic, comparisons, stack shuffling, and
// the minimal I/O words a usable system needs. None of these expose a
// mechanism the host could not otherwise build with Defw; they exist
// purely so a program doesn't have to re-derive "+" from scratch.
package words

import (
	"fmt"

	"github.com/thirdlang/third"
)

// Register installs every word in this package into e via Defw. Register
// is idempotent only insofar as Defw itself is: calling it twice defines
// every word twice, shadowing the first copy.
func Register(e *third.Engine) error {
	for _, w := range all {
		if err := e.Defw(w.name, w.fn, w.flags); err != nil {
			return fmt.Errorf("words: registering %q: %w", w.name, err)
		}
	}
	return registerLoopWords(e)
}

// registerLoopWords wires up "do", "loop", and "i". Each Engine gets its
// own private loop-index stack, captured by these closures, so two engines
// sharing this package never see each other's loop state.
//
// "do" and "loop" are immediate and compile-only: they run while another
// word is being compiled, and splice CALL_C instructions for "do-enter",
// "loop-step", and "do-exit" (plus a JUMP_IF_ZERO back to the loop body)
// into that word, the same way the core's own "{ }" splices LOCAL_PUSH
// instructions. "i" is an ordinary, non-immediate native word: it just
// reads state at the time it runs, like "key" or "emit".
func registerLoopWords(e *third.Engine) error {
	type loopFrame struct{ index, limit third.Cell }
	var stack []loopFrame

	doEnter := func(e *third.Engine) error {
		// "limit start do": start is pushed last, so it's on top.
		start, err := e.PopData()
		if err != nil {
			return err
		}
		limit, err := e.PopData()
		if err != nil {
			return err
		}
		stack = append(stack, loopFrame{index: start, limit: limit})
		return nil
	}
	doExit := func(e *third.Engine) error {
		if len(stack) == 0 {
			return third.ErrStackUnderflow
		}
		stack = stack[:len(stack)-1]
		return nil
	}
	loopStep := func(e *third.Engine) error {
		if len(stack) == 0 {
			return third.ErrStackUnderflow
		}
		top := &stack[len(stack)-1]
		top.index++
		return e.PushData(boolCell(top.index >= top.limit))
	}
	iWord := func(e *third.Engine) error {
		if len(stack) == 0 {
			return third.ErrStackUnderflow
		}
		return e.PushData(stack[len(stack)-1].index)
	}
	doWord := func(e *third.Engine) error {
		if err := e.EmitCallTo("do-enter"); err != nil {
			return err
		}
		return e.PushData(third.Cell(e.Here()))
	}
	loopWord := func(e *third.Engine) error {
		backAddr, err := e.PopData()
		if err != nil {
			return err
		}
		if err := e.EmitCallTo("loop-step"); err != nil {
			return err
		}
		if _, err := e.Emit(third.Cell(third.OpJumpIfZero)); err != nil {
			return err
		}
		if _, err := e.Emit(backAddr); err != nil {
			return err
		}
		return e.EmitCallTo("do-exit")
	}

	defs := []word{
		{"do-enter", doEnter, 0},
		{"do-exit", doExit, 0},
		{"loop-step", loopStep, 0},
		{"i", iWord, 0},
		{"do", doWord, third.FlagImmediate | third.FlagCompileOnly},
		{"loop", loopWord, third.FlagImmediate | third.FlagCompileOnly},
	}
	for _, w := range defs {
		if err := e.Defw(w.name, w.fn, w.flags); err != nil {
			return fmt.Errorf("words: registering %q: %w", w.name, err)
		}
	}
	return nil
}

type word struct {
	name  string
	fn    third.Func
	flags third.Flags
}

var all = []word{
	{"+", add, 0},
	{"-", sub, 0},
	{"*", mul, 0},
	{"/", div, 0},
	{"mod", mod, 0},

	{"<", lt, 0},
	{">", gt, 0},
	{"<=", le, 0},
	{">=", ge, 0},
	{"=", eq, 0},
	{"<>", ne, 0},

	{"dup", dup, 0},
	{"drop", drop, 0},
	{"swap", swap, 0},
	{"over", over, 0},
	{"rot", rot, 0},

	{"here", here, 0},

	{"emit", emit, 0},
	{"key", key, 0},
	{".", dot, 0},
}

func pop2(e *third.Engine) (a, b third.Cell, err error) {
	b, err = e.PopData()
	if err != nil {
		return 0, 0, err
	}
	a, err = e.PopData()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func boolCell(b bool) third.Cell {
	if b {
		return -1
	}
	return 0
}

// + ( a b -- a+b )
func add(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	return e.PushData(a + b)
}

// - ( a b -- a-b )
func sub(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	return e.PushData(a - b)
}

// * ( a b -- a*b )
func mul(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	return e.PushData(a * b)
}

// / ( a b -- a/b )
func div(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	if b == 0 {
		return third.ErrDivideByZero
	}
	return e.PushData(a / b)
}

// mod ( a b -- a%b )
func mod(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	if b == 0 {
		return third.ErrDivideByZero
	}
	return e.PushData(a % b)
}

// < ( a b -- flag )
func lt(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	return e.PushData(boolCell(a < b))
}

// > ( a b -- flag )
func gt(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	return e.PushData(boolCell(a > b))
}

// <= ( a b -- flag )
func le(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	return e.PushData(boolCell(a <= b))
}

// >= ( a b -- flag )
func ge(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	return e.PushData(boolCell(a >= b))
}

// = ( a b -- flag )
func eq(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	return e.PushData(boolCell(a == b))
}

// <> ( a b -- flag )
func ne(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	return e.PushData(boolCell(a != b))
}

// dup ( x -- x x )
func dup(e *third.Engine) error {
	v, err := e.PopData()
	if err != nil {
		return err
	}
	if err := e.PushData(v); err != nil {
		return err
	}
	return e.PushData(v)
}

// drop ( x -- )
func drop(e *third.Engine) error {
	_, err := e.PopData()
	return err
}

// swap ( a b -- b a )
func swap(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	if err := e.PushData(b); err != nil {
		return err
	}
	return e.PushData(a)
}

// over ( a b -- a b a )
func over(e *third.Engine) error {
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	if err := e.PushData(a); err != nil {
		return err
	}
	if err := e.PushData(b); err != nil {
		return err
	}
	return e.PushData(a)
}

// rot ( a b c -- b c a )
func rot(e *third.Engine) error {
	c, err := e.PopData()
	if err != nil {
		return err
	}
	a, b, err := pop2(e)
	if err != nil {
		return err
	}
	if err := e.PushData(b); err != nil {
		return err
	}
	if err := e.PushData(c); err != nil {
		return err
	}
	return e.PushData(a)
}

// here ( -- addr )
func here(e *third.Engine) error {
	return e.PushData(third.Cell(e.Here()))
}

// emit ( c -- )
func emit(e *third.Engine) error {
	c, err := e.PopData()
	if err != nil {
		return err
	}
	return e.WriteRune(rune(c))
}

// key ( -- c )
func key(e *third.Engine) error {
	r, err := e.ReadRune()
	if err != nil {
		return err
	}
	return e.PushData(third.Cell(r))
}

// . ( n -- )
func dot(e *third.Engine) error {
	n, err := e.PopData()
	if err != nil {
		return err
	}
	for _, r := range fmt.Sprintf("%d ", int(n)) {
		if err := e.WriteRune(r); err != nil {
			return err
		}
	}
	return nil
}
