package chunk

import "fmt"

// ErrorSeverity represents the severity level of a container parsing error.
type ErrorSeverity int

const (
	// SeverityCritical indicates an error that makes the container unusable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMinor indicates an issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// ChunkError represents an error encountered during container parsing.
type ChunkError struct {
	Tag      Tag           // The chunk where the error occurred (0 if not yet known)
	Issue    string        // Human-readable description of the issue
	Severity ErrorSeverity // Severity level of the error
	Offset   uint32        // Byte offset in the container where the error occurred
}

// Error implements the error interface.
func (e ChunkError) Error() string {
	where := "container"
	if e.Tag != 0 {
		where = e.Tag.String()
	}
	return fmt.Sprintf("[%s] %s at offset %d: %s", e.Severity, where, e.Offset, e.Issue)
}

// Warning represents a non-critical issue encountered during parsing.
type Warning struct {
	Tag    Tag    // The chunk where the warning occurred
	Issue  string // Human-readable description of the warning
	Offset uint32 // Byte offset in the container where the warning occurred
}

// String returns a human-readable representation of the warning.
func (w Warning) String() string {
	return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Tag, w.Offset, w.Issue)
}

func critical(tag Tag, offset uint32, format string, args ...any) ChunkError {
	return ChunkError{
		Tag:      tag,
		Issue:    fmt.Sprintf(format, args...),
		Severity: SeverityCritical,
		Offset:   offset,
	}
}
