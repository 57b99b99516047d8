package third

// registerCore installs the nine native words every engine needs: the
// ones that expose a mechanism (defining words, locals, raw memory, flag
// mutation) a purely-Forth vocabulary could never build for itself.
func (e *Engine) registerCore() error {
	type builtin struct {
		name  string
		fn    Func
		flags Flags
	}
	builtins := []builtin{
		{":", colonWord, 0},
		{";", semicolonWord, FlagImmediate | FlagCompileOnly},
		{"{", localsBlockWord, FlagImmediate | FlagCompileOnly},
		{"'", tickWord, 0},
		{",", commaWord, 0},
		{"!", bangWord, 0},
		{"@", atWord, 0},
		{"immediate", immediateWord, 0},
		{"compile-only", compileOnlyWord, 0},
	}
	for _, b := range builtins {
		if err := e.Defw(b.name, b.fn, b.flags); err != nil {
			return err
		}
	}
	return nil
}

// colonWord implements ":": read the next raw token as the new word's
// name, create its dictionary header, and enter compiling mode. DICT_ROOT
// snapshots LATEST right after the new entry is linked in, so ";" can
// unlink any auxiliary entries (locals) created during the body while
// keeping the definition itself.
func colonWord(e *Engine) error {
	if e.GetShared(SharedWordAvailable) == 0 {
		return ErrWantWord
	}
	e.SetShared(SharedWordAvailable, 0)
	name := e.scratch
	if _, err := e.create(name); err != nil {
		return err
	}
	e.SetShared(SharedCompiling, 1)
	e.SetShared(SharedDictRoot, e.GetShared(SharedLatest))
	return nil
}

// semicolonWord implements ";": compile a trailing EXIT, leave compiling
// mode, and restore LATEST from DICT_ROOT.
func semicolonWord(e *Engine) error {
	if _, err := e.emit(Cell(OpExit)); err != nil {
		return err
	}
	e.SetShared(SharedCompiling, 0)
	e.SetShared(SharedLatest, e.GetShared(SharedDictRoot))
	return nil
}

// immediateWord implements "immediate": mark the most recently defined
// word so it runs at compile time instead of being compiled into a call.
func immediateWord(e *Engine) error {
	return e.setFlags(RAddr(e.GetShared(SharedLatest)), FlagImmediate)
}

// compileOnlyWord implements "compile-only": mark the most recently
// defined word so it may only be used while compiling.
func compileOnlyWord(e *Engine) error {
	return e.setFlags(RAddr(e.GetShared(SharedLatest)), FlagCompileOnly)
}

// commaWord implements ",": pop a value and append it as a raw cell at
// Here.
func commaWord(e *Engine) error {
	v, err := e.PopData()
	if err != nil {
		return err
	}
	_, err = e.emit(v)
	return err
}

// bangWord implements "!": pop an address then a value, and store the
// value at the address.
func bangWord(e *Engine) error {
	addrCell, err := e.PopData()
	if err != nil {
		return err
	}
	val, err := e.PopData()
	if err != nil {
		return err
	}
	r := RAddr(addrCell)
	if !e.arena.Valid(r) {
		return addrError(ErrInvalidAddress, r)
	}
	return e.arena.Store(r, val)
}

// atWord implements "@": pop an address, and push the value stored there.
func atWord(e *Engine) error {
	addrCell, err := e.PopData()
	if err != nil {
		return err
	}
	r := RAddr(addrCell)
	if !e.arena.Valid(r) {
		return addrError(ErrInvalidAddress, r)
	}
	v, err := e.arena.Load(r)
	if err != nil {
		return err
	}
	return e.PushData(v)
}

// tickWord implements "'": read the next raw token as a word name and
// push its body address. Only Forth words have a body address worth
// quoting this way; a CWord's "body" is a native-table handle, not
// something callable via CALL_FORTH, so quoting one is rejected rather
// than silently handing back a meaningless number.
func tickWord(e *Engine) error {
	if e.GetShared(SharedWordAvailable) == 0 {
		return ErrWantWord
	}
	e.SetShared(SharedWordAvailable, 0)
	name := e.scratch
	addr, ok := e.lookup(name)
	if !ok {
		return wordError(ErrWordNotFound, name)
	}
	flags, err := e.entryFlags(addr)
	if err != nil {
		return err
	}
	if flags&FlagCWord != 0 {
		return wordError(ErrExpectedForthWord, name)
	}
	body, err := e.entryBody(addr)
	if err != nil {
		return err
	}
	return e.PushData(Cell(body))
}

// localsBlockWord implements "{ ... }". Each name up to the closing "}"
// becomes an immediate, compile-only sub-entry whose body, when run,
// emits "LOCAL_PUSH <i>" into whatever word is currently being compiled -
// that's the self-modifying compile-time program: the name doesn't push
// its value directly, it pushes the *opcode* that will push its value,
// then calls "," to splice that opcode (and its operand) into the
// enclosing word. The whole block is skipped at runtime via a
// JUMP_IGNORED patched to land just past the last sub-entry; "}" then
// emits one LOCAL_SET per declared name, binding them off the data stack
// in reverse declaration order. The sub-entry stays reachable by lookup
// for the rest of the enclosing body, and only disappears once ";"
// rewinds LATEST back to DICT_ROOT.
func localsBlockWord(e *Engine) error {
	if e.GetShared(SharedWordAvailable) == 0 {
		return ErrWantWord
	}
	name := e.scratch
	e.SetShared(SharedWordAvailable, 0)

	if name == "}" {
		n := e.GetShared(SharedLocalCount)
		for i := Cell(0); i < n; i++ {
			if _, err := e.emit(Cell(OpLocalSet)); err != nil {
				return err
			}
		}
		e.SetShared(SharedLocalCount, 0)
		return nil
	}

	if _, err := e.emit(Cell(OpJumpIgnored)); err != nil {
		return err
	}
	patchAddr, err := e.emit(0)
	if err != nil {
		return err
	}

	subAddr, err := e.create(name)
	if err != nil {
		return err
	}
	if err := e.setFlags(subAddr, FlagImmediate|FlagCompileOnly); err != nil {
		return err
	}

	idx := e.GetShared(SharedLocalCount)

	if _, err := e.emit(Cell(OpPushImmediate)); err != nil {
		return err
	}
	if _, err := e.emit(Cell(OpLocalPush)); err != nil {
		return err
	}
	if err := e.emitCallToCWord(","); err != nil {
		return err
	}
	if _, err := e.emit(Cell(OpPushImmediate)); err != nil {
		return err
	}
	if _, err := e.emit(idx); err != nil {
		return err
	}
	if err := e.emitCallToCWord(","); err != nil {
		return err
	}
	if _, err := e.emit(Cell(OpExit)); err != nil {
		return err
	}

	e.SetShared(SharedLocalCount, idx+1)

	if err := e.arena.Store(patchAddr, Cell(e.arena.Here())); err != nil {
		return err
	}

	return ErrWantWord
}
