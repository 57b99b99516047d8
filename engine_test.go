package third

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Config{
		Stack:   make([]Cell, 0, 64),
		Memory:  make([]Cell, 4096),
		Locals:  make([]Cell, 0, 64),
		Natives: make([]Func, 0, 64),
		Shared:  make([]Cell, SharedUserBase+8),
	})
	require.NoError(t, err)
	return e
}

func TestArenaAllotAndLoad(t *testing.T) {
	a := newArena(make([]Cell, 4))
	assert.Equal(t, RAddr(0), a.Here())

	addr, err := a.PutCell(42)
	require.NoError(t, err)
	assert.Equal(t, RAddr(0), addr)
	assert.Equal(t, RAddr(1), a.Here())

	v, err := a.Load(addr)
	require.NoError(t, err)
	assert.Equal(t, Cell(42), v)

	require.NoError(t, a.Store(addr, 7))
	v, err = a.Load(addr)
	require.NoError(t, err)
	assert.Equal(t, Cell(7), v)

	_, err = a.Allot(10)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	_, err = a.Load(99)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestArenaValid(t *testing.T) {
	a := newArena(make([]Cell, 8))
	_, _ = a.PutCell(1)
	_, _ = a.PutCell(2)
	assert.True(t, a.Valid(0))
	assert.True(t, a.Valid(2))
	assert.False(t, a.Valid(3))
	assert.False(t, a.Valid(-1))
}

func TestNativeTableHandles(t *testing.T) {
	buf := make([]Func, 0, 3)
	nt := newNativeTable(buf)

	called := false
	h, err := nt.register(func(e *Engine) error { called = true; return nil })
	require.NoError(t, err)
	assert.Equal(t, Cell(1), h)

	fn, err := nt.resolve(h)
	require.NoError(t, err)
	require.NoError(t, fn(nil))
	assert.True(t, called)

	_, err = nt.resolve(2)
	assert.ErrorIs(t, err, ErrInvalidOpcode)
	_, err = nt.resolve(0)
	assert.ErrorIs(t, err, ErrInvalidOpcode)

	h2, err := nt.register(func(e *Engine) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, Cell(3), h2)

	_, err = nt.register(func(e *Engine) error { return nil })
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestTokenizerBasics(t *testing.T) {
	tk := newTokenizer("5 -3 foo \\ a comment\nbar")
	want := []Token{
		{Kind: TokNumber, Number: 5},
		{Kind: TokNumber, Number: -3},
		{Kind: TokWord, Word: "foo"},
		{Kind: TokWord, Word: "bar"},
		{Kind: TokEnd},
	}
	for _, w := range want {
		got, err := tk.next()
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
}

func TestColonDefinesAndRuns(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Exec(": asdf 5 ; asdf"))
	assert.Equal(t, []Cell{5}, e.Stack())
}

func TestImmediateRedefinition(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Exec(": asdf 5 ; immediate : asdf2 asdf ;"))
	require.NoError(t, e.Exec("asdf2"))
	assert.Equal(t, []Cell{5}, e.Stack())
}

func TestCompileTimeEarlyExit(t *testing.T) {
	e := newTestEngine(t)
	err := e.Exec(": exit-early 9 , ; immediate : asdf exit-early 1 ;")
	require.NoError(t, err)
	require.NoError(t, e.Exec("asdf"))
	assert.Empty(t, e.Stack())
}

func TestLineComment(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Exec("1 \\ 2 3 4 5\n6"))
	assert.Equal(t, []Cell{1, 6}, e.Stack())
}

func TestCommaHereAt(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Defw("here", func(e *Engine) error {
		return e.PushData(Cell(e.Here()))
	}, 0))
	require.NoError(t, e.Exec("here 5 , @"))
	assert.Equal(t, []Cell{5}, e.Stack())
}

func TestLocalsBasic(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Defw("+", func(e *Engine) error {
		b, err := e.PopData()
		if err != nil {
			return err
		}
		a, err := e.PopData()
		if err != nil {
			return err
		}
		return e.PushData(a + b)
	}, 0))

	require.NoError(t, e.Exec(": add { a b } a b + ; 5 10 add"))
	assert.Equal(t, []Cell{15}, e.Stack())
}

func TestLocalsOrderOfThree(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Exec(": local3swap { a b c } c b a ; 1 2 3 local3swap"))
	assert.Equal(t, []Cell{3, 2, 1}, e.Stack())
}

func TestTickRejectsCWord(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Defw("noop", func(e *Engine) error { return nil }, 0))
	err := e.Exec("' noop")
	assert.ErrorIs(t, err, ErrExpectedForthWord)
}

func TestWordNotFound(t *testing.T) {
	e := newTestEngine(t)
	err := e.Exec("bogus")
	assert.ErrorIs(t, err, ErrWordNotFound)
}

func TestCompileOnlyOutsideCompilation(t *testing.T) {
	e := newTestEngine(t)
	err := e.Exec(";")
	assert.ErrorIs(t, err, ErrCompileOnly)
}

func TestStackUnderflowAndOverflow(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.PopData()
	assert.ErrorIs(t, err, ErrStackUnderflow)

	small, err := New(Config{
		Stack:   make([]Cell, 0, 1),
		Memory:  make([]Cell, 256),
		Locals:  make([]Cell, 0, 8),
		Natives: make([]Func, 0, 16),
		Shared:  make([]Cell, SharedUserBase+1),
	})
	require.NoError(t, err)
	require.NoError(t, small.PushData(1))
	assert.ErrorIs(t, small.PushData(2), ErrStackOverflow)
}
