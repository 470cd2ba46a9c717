package ftsarc

import (
	"errors"

	"github.com/meigma/ftsarc/internal/arctype"
)

// Error is the error type returned by archive operations. Use errors.As to
// inspect the operation, chunk name, and codec diagnostic.
type Error = arctype.Error

// ErrorKind classifies an Error.
type ErrorKind = arctype.Kind

// Error kinds.
const (
	// KindCorruptData reports bad magic, checksum mismatch, truncated input,
	// or a failed decompression.
	KindCorruptData = arctype.KindCorruptData

	// KindNotFound reports a name absent from an archive.
	KindNotFound = arctype.KindNotFound

	// KindInvalidParam reports a rejected argument or a refused insertion.
	KindInvalidParam = arctype.KindInvalidParam

	// KindSyscall reports a filesystem failure.
	KindSyscall = arctype.KindSyscall
)

// Sentinel errors. Every Error matches the sentinel of its kind through
// errors.Is.
var (
	// ErrCorruptData is matched by errors of kind KindCorruptData.
	ErrCorruptData = arctype.ErrCorruptData

	// ErrNotFound is matched by errors of kind KindNotFound.
	ErrNotFound = arctype.ErrNotFound

	// ErrInvalidParam is matched by errors of kind KindInvalidParam.
	ErrInvalidParam = arctype.ErrInvalidParam

	// ErrSyscall is matched by errors of kind KindSyscall.
	ErrSyscall = arctype.ErrSyscall
)

// withName fills in the chunk or path name of an *Error that lacks one.
func withName(err error, name string) error {
	var e *Error
	if errors.As(err, &e) && e.Name == "" {
		e.Name = name
	}
	return err
}
