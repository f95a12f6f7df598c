package errors

// IOError is the "IO" error kind from spec §7: any short read, short write,
// seek failure, open failure, or flush failure touching the datefile. It
// embeds baseError to inherit chaining and structured details, then adds
// enough placement context to locate the failing record without re-reading
// the file.
type IOError struct {
	*baseError
	offset     int64  // Absolute file offset being accessed when the error occurred, -1 if not applicable.
	recordKind string // Which record type was being read or written ("header", "node", "event_pointer", "event_data").
	operation  string // What was being attempted ("read", "write", "seek", "flush", "open").
}

// NewIOError creates a new IO-specific error.
func NewIOError(err error, msg string) *IOError {
	return &IOError{baseError: NewBaseError(err, ErrorCodeIO, msg), offset: -1}
}

// WithMessage updates the error message while maintaining the IOError type.
func (ie *IOError) WithMessage(msg string) *IOError {
	ie.baseError.WithMessage(msg)
	return ie
}

// WithCode sets the error code while preserving the IOError type.
func (ie *IOError) WithCode(code ErrorCode) *IOError {
	ie.baseError.WithCode(code)
	return ie
}

// WithDetail adds contextual information while maintaining the IOError type.
func (ie *IOError) WithDetail(key string, value any) *IOError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// WithOffset records the byte position being accessed when the error occurred.
func (ie *IOError) WithOffset(offset int64) *IOError {
	ie.offset = offset
	return ie
}

// WithRecordKind records which record type was being read or written.
func (ie *IOError) WithRecordKind(kind string) *IOError {
	ie.recordKind = kind
	return ie
}

// WithOperation records what kind of I/O was being attempted.
func (ie *IOError) WithOperation(operation string) *IOError {
	ie.operation = operation
	return ie
}

// Offset returns the byte offset being accessed when the error occurred.
func (ie *IOError) Offset() int64 {
	return ie.offset
}

// RecordKind returns which record type was being read or written.
func (ie *IOError) RecordKind() string {
	return ie.recordKind
}

// Operation returns what kind of I/O was being attempted.
func (ie *IOError) Operation() string {
	return ie.operation
}
