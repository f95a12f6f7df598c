// Package errors implements the three-kind error taxonomy spec'd for the
// datefile engine: IO, Format, and OutOfMemory. Each kind gets its own typed
// wrapper around a shared baseError so callers can both match on a Go error
// type (errors.As) and inspect structured context (offset, record kind,
// field name) without parsing a message string.
//
// Every operation that touches the file returns one of these three kinds on
// failure, per spec §7's propagation policy: operations are atomic from the
// caller's view only on success, and on error the caller should treat the
// file's reachable state as potentially valid but not attempt a partial
// rollback. defrag is the recovery path for both garbage and (to the extent
// possible) uncertainty left behind by a failed operation.
package errors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsIOError reports whether err is, or wraps, an IOError.
func IsIOError(err error) bool {
	var ie *IOError
	return stdErrors.As(err, &ie)
}

// IsFormatError reports whether err is, or wraps, a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return stdErrors.As(err, &fe)
}

// IsMemoryError reports whether err is, or wraps, a MemoryError.
func IsMemoryError(err error) bool {
	var me *MemoryError
	return stdErrors.As(err, &me)
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stdErrors.As(err, &ve)
}

// AsIOError extracts an IOError from an error chain.
func AsIOError(err error) (*IOError, bool) {
	var ie *IOError
	if stdErrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// AsFormatError extracts a FormatError from an error chain.
func AsFormatError(err error) (*FormatError, bool) {
	var fe *FormatError
	if stdErrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// AsMemoryError extracts a MemoryError from an error chain.
func AsMemoryError(err error) (*MemoryError, bool) {
	var me *MemoryError
	if stdErrors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// AsValidationError extracts a ValidationError from an error chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error in the taxonomy above,
// or ErrorCodeInternal for anything else.
func GetErrorCode(err error) ErrorCode {
	if ie, ok := AsIOError(err); ok {
		return ie.Code()
	}
	if fe, ok := AsFormatError(err); ok {
		return fe.Code()
	}
	if me, ok := AsMemoryError(err); ok {
		return me.Code()
	}
	if ve, ok := AsValidationError(err); ok {
		return ve.Code()
	}
	return ErrorCodeInternal
}

// ClassifyOpenError inspects the error returned by os.OpenFile against the
// datefile path and wraps it as an IOError with whatever extra context the
// underlying syscall gives us, mirroring the teacher's ClassifyFileOpenError.
func ClassifyOpenError(err error, path string) error {
	if os.IsPermission(err) {
		return NewIOError(err, "insufficient permissions to open datefile").
			WithOperation("open").
			WithDetail("path", path)
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewIOError(err, "insufficient disk space to create datefile").
					WithOperation("open").
					WithDetail("path", path)
			case syscall.EROFS:
				return NewIOError(err, "cannot create datefile on read-only filesystem").
					WithOperation("open").
					WithDetail("path", path)
			}
		}
	}

	return NewIOError(err, "failed to open datefile").
		WithOperation("open").
		WithDetail("path", path)
}
