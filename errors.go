package third

import "fmt"

// ErrorCode classifies every way an engine operation can fail. Each value
// implements error on its own, so a caller can compare a returned error
// against one of these constants with errors.Is.
type ErrorCode int

// The classified error codes, in the order the engine's originating design
// enumerates them.
const (
	ErrStackUnderflow ErrorCode = iota + 1
	ErrStackOverflow
	ErrOutOfRange
	ErrOutOfMemory
	ErrOutOfScratch
	ErrWantWord
	ErrWordNotFound
	ErrDivideByZero
	ErrInvalidOpcode
	ErrInvalidAddress
	ErrCompileOnly
	ErrExpectedForthWord
	ErrExpectedCWord
)

var codeNames = map[ErrorCode]string{
	ErrStackUnderflow:    "stack underflow",
	ErrStackOverflow:     "stack overflow",
	ErrOutOfRange:        "out of range",
	ErrOutOfMemory:       "out of memory",
	ErrOutOfScratch:      "out of scratch space",
	ErrWantWord:          "wanted a word",
	ErrWordNotFound:      "word not found",
	ErrDivideByZero:      "divide by zero",
	ErrInvalidOpcode:     "invalid opcode",
	ErrInvalidAddress:    "invalid address",
	ErrCompileOnly:       "compile only",
	ErrExpectedForthWord: "expected a forth word",
	ErrExpectedCWord:     "expected a native word",
}

func (c ErrorCode) Error() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown error code %d", int(c))
}

// detailedError attaches context - an offending address, a missing word's
// name - to a classified code without giving a caller a reason to branch on
// the message text; errors.Is/errors.As still see straight through to the
// wrapped ErrorCode.
type detailedError struct {
	code   ErrorCode
	detail string
}

func (e *detailedError) Error() string {
	if e.detail == "" {
		return e.code.Error()
	}
	return fmt.Sprintf("%v: %s", e.code, e.detail)
}

func (e *detailedError) Unwrap() error { return e.code }

func withDetail(code ErrorCode, detail string) error {
	return &detailedError{code: code, detail: detail}
}

func addrError(code ErrorCode, addr RAddr) error {
	return withDetail(code, fmt.Sprintf("@%d", addr))
}

func wordError(code ErrorCode, name string) error {
	return withDetail(code, fmt.Sprintf("%q", name))
}
