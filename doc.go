// Package third implements a small, embeddable Forth-like interpreter,
// compiler, and virtual machine.
//
// The engine has no built-in vocabulary beyond the handful of words that
// expose mechanisms a host cannot otherwise reach: defining a word (":"),
// ending a definition (";"), declaring compile-time locals ("{ ... }"),
// quoting a word's address ("'"), appending a raw cell to the dictionary
// (","), raw memory access ("!" and "@"), and flag mutation ("immediate"
// and "compile-only"). Everything else - arithmetic, stack shuffling,
// comparisons, I/O - is registered by the host through Defw, or borrowed
// from the words subpackage.
//
// All storage is host-supplied and fixed-size at construction: the data
// stack, the dictionary/bytecode arena, the locals stack, the native word
// table, and the shared variable bank. The engine never grows or frees
// memory on its own.
package third
