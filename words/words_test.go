package words_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thirdlang/third"
	"github.com/thirdlang/third/words"
)

func newEngine(t *testing.T, out *strings.Builder) *third.Engine {
	t.Helper()
	e, err := third.New(third.Config{
		Stack:   make([]third.Cell, 0, 64),
		Memory:  make([]third.Cell, 4096),
		Locals:  make([]third.Cell, 0, 64),
		Natives: make([]third.Func, 0, 64),
		Shared:  make([]third.Cell, third.SharedUserBase+8),
		Output:  out,
	})
	require.NoError(t, err)
	require.NoError(t, words.Register(e))
	return e
}

func TestArithmeticAndStack(t *testing.T) {
	e := newEngine(t, &strings.Builder{})
	require.NoError(t, e.Exec("2 2 + 3 * dup -"))
	assert.Equal(t, []third.Cell{0}, e.Stack())
}

func TestComparisons(t *testing.T) {
	e := newEngine(t, &strings.Builder{})
	require.NoError(t, e.Exec("3 5 < 5 3 > 3 3 = 3 4 <>"))
	assert.Equal(t, []third.Cell{-1, -1, -1, -1}, e.Stack())
}

func TestDivideByZero(t *testing.T) {
	e := newEngine(t, &strings.Builder{})
	err := e.Exec("1 0 /")
	assert.ErrorIs(t, err, third.ErrDivideByZero)
}

func TestDotPrintsDecimal(t *testing.T) {
	var out strings.Builder
	e := newEngine(t, &out)
	require.NoError(t, e.Exec("42 ."))
	assert.Equal(t, "42 ", out.String())
}

func TestEmitPrintsRune(t *testing.T) {
	var out strings.Builder
	e := newEngine(t, &out)
	require.NoError(t, e.Exec("65 emit"))
	assert.Equal(t, "A", out.String())
}

func TestPreludeIfThen(t *testing.T) {
	e := newEngine(t, &strings.Builder{})
	require.NoError(t, e.Exec(words.Prelude))
	require.NoError(t, e.Exec(`
		: abs { n } n 0 < if 0 n - else n then ;
		-5 abs 5 abs
	`))
	assert.Equal(t, []third.Cell{5, 5}, e.Stack())
}

func TestPreludeDoLoop(t *testing.T) {
	e := newEngine(t, &strings.Builder{})
	require.NoError(t, e.Exec(words.Prelude))
	require.NoError(t, e.Exec(`
		: sum-to { n } 0 n 0 do i + loop ;
		5 sum-to
	`))
	assert.Equal(t, []third.Cell{0 + 1 + 2 + 3 + 4}, e.Stack())
}
