package words

import (
	"fmt"

	"github.com/thirdlang/third"
)

// Prelude is THIRD source defining "if", "then", and "else" entirely in
// terms of the core's own "," and "!" plus Register's "here", "swap", and
// "rot" - the same compile-time backpatching technique classic Forth
// uses, needing no Go-level support beyond what Register already
// provides. A host Exec's this after calling Register.
//
// "if" compiles a conditional jump with a placeholder operand and leaves
// that placeholder's address on the data stack for "then" to patch with
// the jump target once it's known. "else" inserts an unconditional jump
// over the else-branch, patches "if"'s placeholder to land at the start
// of that branch, and leaves its own placeholder for "then".
var Prelude = fmt.Sprintf(`
: if %d , here 0 , ; immediate compile-only
: else %d , here 0 , here rot ! ; immediate compile-only
: then here swap ! ; immediate compile-only
`, third.OpJumpIfZero, third.OpJump)
