package errors

// FormatError is the "Format" error kind from spec §7: magic mismatch,
// bitn > 64, or a truncated/dangling record discovered while parsing the
// on-disk layout. Unlike IOError, the underlying bytes were readable — the
// content just doesn't satisfy the file format.
type FormatError struct {
	*baseError
	offset   int64 // Absolute file offset of the malformed record, -1 if not applicable.
	field    string
	expected any
	actual   any
}

// NewFormatError creates a new format-specific error.
func NewFormatError(err error, code ErrorCode, msg string) *FormatError {
	return &FormatError{baseError: NewBaseError(err, code, msg), offset: -1}
}

// WithMessage updates the error message while maintaining the FormatError type.
func (fe *FormatError) WithMessage(msg string) *FormatError {
	fe.baseError.WithMessage(msg)
	return fe
}

// WithCode sets the error code while preserving the FormatError type.
func (fe *FormatError) WithCode(code ErrorCode) *FormatError {
	fe.baseError.WithCode(code)
	return fe
}

// WithDetail adds contextual information while maintaining the FormatError type.
func (fe *FormatError) WithDetail(key string, value any) *FormatError {
	fe.baseError.WithDetail(key, value)
	return fe
}

// WithOffset records the byte position of the malformed record.
func (fe *FormatError) WithOffset(offset int64) *FormatError {
	fe.offset = offset
	return fe
}

// WithField records which field failed to parse.
func (fe *FormatError) WithField(field string) *FormatError {
	fe.field = field
	return fe
}

// WithExpected records what the field's value should have been.
func (fe *FormatError) WithExpected(value any) *FormatError {
	fe.expected = value
	return fe
}

// WithActual records the field's actual on-disk value.
func (fe *FormatError) WithActual(value any) *FormatError {
	fe.actual = value
	return fe
}

// Offset returns the byte offset of the malformed record.
func (fe *FormatError) Offset() int64 {
	return fe.offset
}

// Field returns the name of the field that failed to parse.
func (fe *FormatError) Field() string {
	return fe.field
}

// Expected returns what the field's value should have been.
func (fe *FormatError) Expected() any {
	return fe.expected
}

// Actual returns the field's actual on-disk value.
func (fe *FormatError) Actual() any {
	return fe.actual
}

// NewMagicMismatchError builds the FormatError returned when a file's header
// doesn't begin with "datefile".
func NewMagicMismatchError(actual []byte) *FormatError {
	return NewFormatError(nil, ErrorCodeMagicMismatch, "datefile header has wrong magic").
		WithOffset(0).
		WithField("magic").
		WithExpected("datefile").
		WithActual(string(actual))
}

// NewPrecisionOverflowError builds the FormatError returned when a header's
// bitn exceeds the 64-bit key width the trie can address.
func NewPrecisionOverflowError(bitn uint8) *FormatError {
	return NewFormatError(nil, ErrorCodePrecisionOverflow, "datefile header bitn exceeds 64").
		WithOffset(0).
		WithField("bitn").
		WithExpected("<= 64").
		WithActual(bitn)
}
