package third

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompileSimpleWord(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Exec(": asdf 5 ;"))
	addr, ok := e.lookup("asdf")
	require.True(t, ok)
	body, err := e.entryBody(addr)
	require.NoError(t, err)

	lines, err := e.Decompile(body)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "push-immediate")
	assert.Contains(t, lines[0], "[5]")
	assert.Contains(t, lines[1], "exit")
}

func TestDecompileFollowsJumpIgnored(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Exec(": add { a b } a b ;"))
	addr, ok := e.lookup("add")
	require.True(t, ok)
	body, err := e.entryBody(addr)
	require.NoError(t, err)

	lines, err := e.Decompile(body)
	require.NoError(t, err)
	// Two LOCAL_SET prologue instructions, then the two LOCAL_PUSH
	// references in "a b", then exit: jump-ignored lines are not present
	// since decompile follows rather than lists them.
	for _, l := range lines {
		assert.NotContains(t, l, "jump-ignored")
	}
	assert.Contains(t, lines[len(lines)-1], "exit")
}
