// Package arctype holds types shared between the archive, codec, and overlay
// packages.
package arctype

import (
	"errors"
	"strings"
)

// Kind classifies an archive error.
type Kind uint8

const (
	// KindCorruptData reports malformed, truncated, or mismatching input.
	KindCorruptData Kind = iota + 1

	// KindNotFound reports a name absent from an archive or filesystem.
	KindNotFound

	// KindInvalidParam reports a bad argument or a refused operation.
	KindInvalidParam

	// KindSyscall reports a failed filesystem operation.
	KindSyscall
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCorruptData:
		return "corrupt data"
	case KindNotFound:
		return "not found"
	case KindInvalidParam:
		return "invalid parameter"
	case KindSyscall:
		return "syscall"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per kind. Any *Error matches the sentinel of its kind
// through errors.Is.
var (
	// ErrCorruptData is returned when stored bytes fail validation.
	ErrCorruptData = &Error{Kind: KindCorruptData}

	// ErrNotFound is returned when a chunk or file does not exist.
	ErrNotFound = &Error{Kind: KindNotFound}

	// ErrInvalidParam is returned when an argument is rejected.
	ErrInvalidParam = &Error{Kind: KindInvalidParam}

	// ErrSyscall is returned when the filesystem reports a failure.
	ErrSyscall = &Error{Kind: KindSyscall}
)

// Error is the error type returned by archive operations.
type Error struct {
	// Op is the operation that failed, e.g. "load" or "decompress".
	Op string

	// Kind classifies the failure.
	Kind Kind

	// Name is the chunk name or path involved, if any.
	Name string

	// Compressor is the codec involved, if any.
	Compressor string

	// Problem is a human-readable description of what went wrong.
	Problem string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("ftsarc: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Name != "" {
		b.WriteString(e.Name)
		b.WriteString(": ")
	}
	if e.Compressor != "" {
		b.WriteString("compressor ")
		b.WriteString(e.Compressor)
		b.WriteString(": ")
	}
	switch {
	case e.Problem != "":
		b.WriteString(e.Problem)
	default:
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind. Sentinels carry
// only a kind, so any error of that kind matches them.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" || t.Name != "" || t.Problem != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Errorf is a constructor shorthand for an *Error without a cause.
func Errorf(op string, kind Kind, name, problem string) *Error {
	return &Error{Op: op, Kind: kind, Name: name, Problem: problem}
}

// Wrap returns an *Error of the given kind wrapping err.
func Wrap(op string, kind Kind, name string, err error) *Error {
	return &Error{Op: op, Kind: kind, Name: name, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
