package table

// TableErrorType represents the type of table I/O error.
type TableErrorType string

const (
	// SourceNotFound indicates the input file does not exist.
	SourceNotFound TableErrorType = "SOURCE_NOT_FOUND"
	// InvalidFormat indicates the input could not be parsed.
	InvalidFormat TableErrorType = "INVALID_FORMAT"
	// WriteFailed indicates the output could not be written.
	WriteFailed TableErrorType = "WRITE_FAILED"
)

// TableError represents an error that occurred while reading or writing a table.
type TableError struct {
	Type TableErrorType
	Path string
	Err  error
}

func (e *TableError) Error() string {
	if e.Err != nil {
		return string(e.Type) + ": " + e.Path + ": " + e.Err.Error()
	}
	return string(e.Type) + ": " + e.Path
}

func (e *TableError) Unwrap() error {
	return e.Err
}
