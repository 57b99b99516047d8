package third

// Flags records per-entry dictionary bits: whether a word runs at compile
// time instead of being compiled into a call (Immediate), whether its body
// is a single native-word-table handle instead of bytecode (CWord),
// whether lookup should skip over it (Hidden), and whether it may only
// appear while compiling (CompileOnly).
type Flags Cell

const (
	FlagNone Flags = 0
	// FlagImmediate marks a word that runs during compilation of another
	// word, rather than being compiled into a call.
	FlagImmediate Flags = 1 << 1
	// FlagCWord marks a word whose body is a native-word-table handle
	// rather than a bytecode stream.
	FlagCWord Flags = 1 << 2
	// FlagHidden marks a word invisible to lookup.
	FlagHidden Flags = 1 << 3
	// FlagCompileOnly marks a word that may only be used while compiling.
	FlagCompileOnly Flags = 1 << 4
)

// Dictionary entry layout, Cell-granularity, in order: previous, flags,
// name_length, name bytes (one per cell), a NUL terminator cell, then the
// body (either bytecode, for a Forth word, or a single native-word-table
// handle, for a CWord).
const (
	entryOffsetPrevious = 0
	entryOffsetFlags    = 1
	entryOffsetNameLen  = 2
	entryOffsetName     = 3
)

// create allots a new, empty dictionary header named name, links it in
// front of the current LATEST, and returns its address. The caller still
// owns appending the body.
func (e *Engine) create(name string) (RAddr, error) {
	prev := e.GetShared(SharedLatest)
	addr, err := e.arena.PutCell(prev)
	if err != nil {
		return 0, err
	}
	if _, err := e.arena.PutCell(Cell(FlagNone)); err != nil {
		return 0, err
	}
	if _, err := e.arena.PutCell(Cell(len(name))); err != nil {
		return 0, err
	}
	for i := 0; i < len(name); i++ {
		if _, err := e.arena.PutCell(Cell(name[i])); err != nil {
			return 0, err
		}
	}
	if _, err := e.arena.PutCell(0); err != nil {
		return 0, err
	}
	e.SetShared(SharedLatest, Cell(addr))
	return addr, nil
}

func (e *Engine) entryPrevious(addr RAddr) (RAddr, error) {
	c, err := e.arena.Load(addr + entryOffsetPrevious)
	return RAddr(c), err
}

func (e *Engine) entryFlags(addr RAddr) (Flags, error) {
	c, err := e.arena.Load(addr + entryOffsetFlags)
	return Flags(c), err
}

func (e *Engine) setFlags(addr RAddr, add Flags) error {
	cur, err := e.entryFlags(addr)
	if err != nil {
		return err
	}
	return e.arena.Store(addr+entryOffsetFlags, Cell(cur|add))
}

func (e *Engine) entryNameLen(addr RAddr) (int, error) {
	c, err := e.arena.Load(addr + entryOffsetNameLen)
	return int(c), err
}

func (e *Engine) entryName(addr RAddr) (string, error) {
	n, err := e.entryNameLen(addr)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		c, err := e.arena.Load(addr + entryOffsetName + RAddr(i))
		if err != nil {
			return "", err
		}
		buf[i] = byte(c)
	}
	return string(buf), nil
}

// entryBody returns the address of addr's body: the first bytecode cell of
// a Forth word, or the single handle cell of a CWord.
func (e *Engine) entryBody(addr RAddr) (RAddr, error) {
	n, err := e.entryNameLen(addr)
	if err != nil {
		return 0, err
	}
	return addr + entryOffsetName + RAddr(n) + 1, nil
}

// lookup walks the dictionary from LATEST looking for the newest,
// non-hidden entry named name.
func (e *Engine) lookup(name string) (RAddr, bool) {
	addr := RAddr(e.GetShared(SharedLatest))
	for addr != 0 {
		flags, err := e.entryFlags(addr)
		if err == nil && flags&FlagHidden == 0 {
			if n, err := e.entryName(addr); err == nil && n == name {
				return addr, true
			}
		}
		prev, err := e.entryPrevious(addr)
		if err != nil {
			break
		}
		addr = prev
	}
	return 0, false
}

// emitCallToCWord compiles a CALL_C instruction targeting the native word
// already registered under name. It is used by the locals mechanism to
// splice a call to "," into whatever word is currently being compiled.
func (e *Engine) emitCallToCWord(name string) error {
	addr, ok := e.lookup(name)
	if !ok {
		return wordError(ErrWordNotFound, name)
	}
	flags, err := e.entryFlags(addr)
	if err != nil {
		return err
	}
	if flags&FlagCWord == 0 {
		return wordError(ErrExpectedCWord, name)
	}
	body, err := e.entryBody(addr)
	if err != nil {
		return err
	}
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
