package third

import "fmt"

// maxDecompileSteps bounds decompilation so a malformed or adversarial
// bytecode stream - one missing its EXIT, or whose JUMP_IGNORED operand
// loops back on itself - can't make decompilation spin forever.
const maxDecompileSteps = 1 << 16

// Decompile renders the bytecode word whose body starts at addr as a
// sequence of human-readable instruction lines, stopping at the first
// OP_EXIT. A JUMP_IGNORED is followed rather than printed in place,
// mirroring how execution itself treats it: the instructions it skips
// (a locals block's self-modifying sub-entries) are not part of the
// word's real control flow.
func (e *Engine) Decompile(addr RAddr) ([]string, error) {
	var lines []string
	ip := addr
	for steps := 0; steps < maxDecompileSteps; steps++ {
		if !e.arena.Valid(ip) {
			return lines, addrError(ErrInvalidAddress, ip)
		}
		opCell, err := e.arena.Load(ip)
		if err != nil {
			return lines, err
		}
		op := Opcode(opCell)
		start := ip
		ip++

		switch op {
		case OpJumpIgnored:
			// Skipped silently: the instructions it jumps over are the
			// self-modifying locals sub-entries, not part of this word's
			// real control flow, so decompile follows the jump rather
			// than listing it.
			target, err := e.fetchOperand(&ip)
			if err != nil {
				return lines, err
			}
			ip = RAddr(target)
			continue

		case OpExit:
			lines = append(lines, fmt.Sprintf("@%d %v", start, op))
			return lines, nil

		default:
			n := op.operandCells()
			operands := make([]Cell, 0, n)
			for i := 0; i < n; i++ {
				v, err := e.fetchOperand(&ip)
				if err != nil {
					return lines, err
				}
				operands = append(operands, v)
			}
			lines = append(lines, fmt.Sprintf("@%d %v %v", start, op, operands))
		}
	}
	return lines, withDetail(ErrOutOfRange, "decompile exceeded step bound")
}
