package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations against the
	// datefile: short reads, short writes, seek failures, open failures, and
	// flush failures all surface under this code. This is the "IO" kind from
	// spec §7.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents caller-side errors where the provided
	// data doesn't meet the system's requirements or constraints.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected failures that don't fit into
	// other categories — invariant violations that shouldn't occur during
	// normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Format error codes cover the "Format" error kind from spec §7: magic
// mismatch, precision overflow, and truncated or dangling records
// encountered while parsing the on-disk layout.
const (
	// ErrorCodeMagicMismatch indicates the file's first eight bytes are not
	// "datefile".
	ErrorCodeMagicMismatch ErrorCode = "MAGIC_MISMATCH"

	// ErrorCodePrecisionOverflow indicates a header's bitn field exceeds 64,
	// the maximum key width the trie can address.
	ErrorCodePrecisionOverflow ErrorCode = "PRECISION_OVERFLOW"

	// ErrorCodeTruncatedRecord indicates a record could not be fully read at
	// its declared layout — the file ends early, or a length-prefixed field
	// claims more bytes than remain.
	ErrorCodeTruncatedRecord ErrorCode = "TRUNCATED_RECORD"

	// ErrorCodeDanglingPointer indicates a record's pointer field addresses
	// an offset that does not decode as a valid record of the expected kind.
	ErrorCodeDanglingPointer ErrorCode = "DANGLING_POINTER"
)

// ErrorCodeOutOfMemory covers the "OutOfMemory" error kind from spec §7:
// allocation failure while building an event name buffer or event list.
const (
	ErrorCodeOutOfMemory ErrorCode = "OUT_OF_MEMORY"
)
