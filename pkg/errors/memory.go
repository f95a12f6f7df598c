package errors

// MemoryError is the "OutOfMemory" error kind from spec §7: allocation
// failure while building an event name buffer or an event list during
// search.
type MemoryError struct {
	*baseError
	operation string // What was being allocated ("event_name", "event_list").
	requested int    // Number of bytes or elements requested, if known.
}

// NewMemoryError creates a new memory-specific error.
func NewMemoryError(err error, msg string) *MemoryError {
	return &MemoryError{baseError: NewBaseError(err, ErrorCodeOutOfMemory, msg)}
}

// WithMessage updates the error message while maintaining the MemoryError type.
func (me *MemoryError) WithMessage(msg string) *MemoryError {
	me.baseError.WithMessage(msg)
	return me
}

// WithCode sets the error code while preserving the MemoryError type.
func (me *MemoryError) WithCode(code ErrorCode) *MemoryError {
	me.baseError.WithCode(code)
	return me
}

// WithDetail adds contextual information while maintaining the MemoryError type.
func (me *MemoryError) WithDetail(key string, value any) *MemoryError {
	me.baseError.WithDetail(key, value)
	return me
}

// WithOperation records what was being allocated.
func (me *MemoryError) WithOperation(operation string) *MemoryError {
	me.operation = operation
	return me
}

// WithRequested records the size of the failed allocation.
func (me *MemoryError) WithRequested(requested int) *MemoryError {
	me.requested = requested
	return me
}

// Operation returns what was being allocated.
func (me *MemoryError) Operation() string {
	return me.operation
}

// Requested returns the size of the failed allocation.
func (me *MemoryError) Requested() int {
	return me.requested
}
