package third

import "github.com/thirdlang/third/internal/panicerr"

// Exec compiles and/or interprets src, one token at a time: a number is
// pushed (or, while compiling, compiled as PUSH_IMMEDIATE); a word is
// looked up and either run immediately or compiled into a call, depending
// on whether the engine is currently compiling and whether the word is
// marked immediate. Exec runs src to completion or to the first error. A
// definition still open when src ends (or when an error stops it) stays
// open: the engine remains in compiling mode for the next Exec.
//
// A Go-runtime panic surfacing from deep inside a pathological or
// corrupted bytecode stream is recovered at this boundary and turned into
// a plain error return, the same safety net the design's own recursive
// exec relies on.
func (e *Engine) Exec(src string) error {
	err := panicerr.Recover("third.Exec", func() error {
		return e.execSource(src)
	})
	e.lastErr = err
	return err
}

func (e *Engine) execSource(src string) error {
	prevTok := e.tok
	e.tok = newTokenizer(src)
	defer func() { e.tok = prevTok }()

	for {
		tok, err := e.tok.next()
		if err != nil {
			return err
		}
		if tok.Kind == TokEnd {
			return nil
		}
		if err := e.dispatchToken(tok); err != nil {
			return err
		}
	}
}

func (e *Engine) dispatchToken(tok Token) error {
	switch tok.Kind {
	case TokNumber:
		return e.handleNumber(tok.Number)
	case TokWord:
		return e.handleWord(tok.Word)
	default:
		return nil
	}
}

func (e *Engine) handleNumber(n Cell) error {
	if e.Compiling() {
		if _, err := e.emit(Cell(OpPushImmediate)); err != nil {
			return err
		}
		_, err := e.emit(n)
		return err
	}
	return e.PushData(n)
}

func (e *Engine) handleWord(name string) error {
	addr, ok := e.lookup(name)
	if !ok {
		e.logTrace("word not found: %q", name)
		return wordError(ErrWordNotFound, name)
	}
	e.logTrace("word %q compiling=%v", name, e.Compiling())
	flags, err := e.entryFlags(addr)
	if err != nil {
		return err
	}

	compiling := e.Compiling()
	if !compiling && flags&FlagCompileOnly != 0 {
		return wordError(ErrCompileOnly, name)
	}

	body, err := e.entryBody(addr)
	if err != nil {
		return err
	}

	if compiling && flags&FlagImmediate == 0 {
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

	if flags&FlagCWord != 0 {
		handle, err := e.arena.Load(body)
		if err != nil {
			return err
		}
		fn, err := e.natives.resolve(handle)
		if err != nil {
			return err
		}
		return e.invokeNative(fn)
	}
	return e.execAt(body)
}
