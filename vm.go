package third

// execAt runs the bytecode word whose body starts at addr until it hits
// OP_EXIT, recursing into the Go call stack for every OP_CALL_FORTH - the
// same way the engine's own recursive exec does, and for the same reason:
// a definition's nesting depth is bounded by available Go stack, not by a
// separate, explicitly-sized return stack. Each recursion indents its
// trace output one level further via withLogPrefix, so a Logf consumer
// sees nested CALL_FORTH dispatch as nested trace lines.
func (e *Engine) execAt(addr RAddr) error {
	if !e.arena.Valid(addr) {
		return addrError(ErrInvalidAddress, addr)
	}

	localsMark := len(e.locals)
	defer func() { e.locals = e.locals[:localsMark] }()
	defer e.withLogPrefix("\t")()

	ip := addr
	for {
		at := ip
		opCell, err := e.arena.Load(ip)
		if err != nil {
			return err
		}
		ip++
		op := Opcode(opCell)
		e.logTrace("exec @%d %v -- locals:%v stack:%v", at, op, e.locals, e.stack)

		switch op {
		case OpPushImmediate:
			n, err := e.fetchOperand(&ip)
			if err != nil {
				return err
			}
			if err := e.PushData(n); err != nil {
				return err
			}

		case OpCallForth:
			target, err := e.fetchOperand(&ip)
			if err != nil {
				return err
			}
			if err := e.execAt(RAddr(target)); err != nil {
				return err
			}

		case OpCallC:
			handle, err := e.fetchOperand(&ip)
			if err != nil {
				return err
			}
			fn, err := e.natives.resolve(handle)
			if err != nil {
				return err
			}
			if err := e.invokeNative(fn); err != nil {
				return err
			}

		case OpJumpIfZero:
			target, err := e.fetchOperand(&ip)
			if err != nil {
				return err
			}
			v, err := e.PopData()
			if err != nil {
				return err
			}
			if v == 0 {
				dest := RAddr(target)
				if !e.arena.Valid(dest) {
					return addrError(ErrInvalidAddress, dest)
				}
				ip = dest
			}

		case OpJump, OpJumpIgnored:
			target, err := e.fetchOperand(&ip)
			if err != nil {
				return err
			}
			dest := RAddr(target)
			if !e.arena.Valid(dest) {
				return addrError(ErrInvalidAddress, dest)
			}
			ip = dest

		case OpLocalPush:
			i, err := e.fetchOperand(&ip)
			if err != nil {
				return err
			}
			idx := len(e.locals) - 1 - int(i)
			if idx < localsMark || idx >= len(e.locals) {
				return ErrOutOfRange
			}
			if err := e.PushData(e.locals[idx]); err != nil {
				return err
			}

		case OpLocalSet:
			v, err := e.PopData()
			if err != nil {
				return err
			}
			if len(e.locals) >= cap(e.locals) {
				return ErrStackOverflow
			}
			e.locals = append(e.locals, v)

		case OpExit:
			return nil

		default:
			return ErrInvalidOpcode
		}
	}
}

func (e *Engine) fetchOperand(ip *RAddr) (Cell, error) {
	v, err := e.arena.Load(*ip)
	if err != nil {
		return 0, err
	}
	*ip++
	return v, nil
}

// invokeNative calls fn, implementing the "feed me a word" retry protocol:
// if fn returns ErrWantWord, the interpreter fetches the next raw token
// from the current source, stashes it for fn to consult via scratch and
// WORD_AVAILABLE, and calls fn again.
func (e *Engine) invokeNative(fn Func) error {
	err := fn(e)
	for err == ErrWantWord {
		if e.tok == nil {
			return ErrWantWord
		}
		tok, terr := e.tok.next()
		if terr != nil {
			return terr
		}
		if tok.Kind != TokWord {
			return ErrWantWord
		}
		e.scratch = tok.Word
		e.SetShared(SharedWordAvailable, 1)
		err = fn(e)
	}
	return err
}
