// Command thirdrepl is a minimal interactive host for the third engine:
// read a line, Exec it, print the resulting stack or error. It exists to
// exercise the engine as an embedded library, not as part of the engine
// itself - line editing and display are deliberately kept out of the core
// package.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/thirdlang/third"
	"github.com/thirdlang/third/words"
)

var (
	memSize    = flag.Int("mem", 64*1024, "dictionary/bytecode arena size, in cells")
	stackSize  = flag.Int("stack", 256, "data stack depth, in cells")
	localsSize = flag.Int("locals", 256, "locals stack depth, in cells")
	nativeSize = flag.Int("natives", 256, "native word table capacity")
	trace      = flag.Bool("trace", false, "log every compiled/executed word")
	noPrelude  = flag.Bool("no-prelude", false, "skip loading words.Prelude (if/then/else)")
)

func main() {
	flag.Parse()

	e, err := newEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	errColor := color.New(color.FgRed)
	okColor := color.New(color.FgGreen)

	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}

		if execErr := e.Exec(line); execErr != nil {
			errColor.Fprintf(os.Stdout, "error: %v\n", execErr)
			continue
		}
		okColor.Fprintf(os.Stdout, "ok %v\n", e.Stack())
	}
}

func newEngine() (*third.Engine, error) {
	logf := func(string, ...interface{}) {}
	if *trace {
		logf = func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, "trace: "+format+"\n", args...)
		}
	}

	e, err := third.New(third.Config{
		Stack:   make([]third.Cell, 0, *stackSize),
		Memory:  make([]third.Cell, *memSize),
		Locals:  make([]third.Cell, 0, *localsSize),
		Natives: make([]third.Func, 0, *nativeSize),
		Shared:  make([]third.Cell, third.SharedUserBase+16),
		Output:  os.Stdout,
		Input:   nil,
		Logf:    logf,
	})
	if err != nil {
		return nil, fmt.Errorf("thirdrepl: %w", err)
	}

	if err := words.Register(e); err != nil {
		return nil, fmt.Errorf("thirdrepl: %w", err)
	}
	if !*noPrelude {
		if err := e.Exec(words.Prelude); err != nil {
			return nil, fmt.Errorf("thirdrepl: loading prelude: %w", err)
		}
	}
	return e, nil
}
