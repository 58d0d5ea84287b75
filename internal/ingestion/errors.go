package ingestion

import "fmt"

// UnsupportedTypeError is returned for files that are not a supported document format
type UnsupportedTypeError struct {
	MIME     string
	Filename string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("unsupported file type %s for %s", e.MIME, e.Filename)
	}
	return fmt.Sprintf("unsupported file type %s", e.MIME)
}

// ExtractionError is returned when a supported document cannot be read
type ExtractionError struct {
	Type  DocumentType
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Type, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
