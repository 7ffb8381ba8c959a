package document

import "fmt"

// TemplateNotFoundError is returned when no template exists for a document kind
type TemplateNotFoundError struct {
	Kind string
	Path string
}

// Error implements the error interface
func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template for %q not found: %s", e.Kind, e.Path)
}

// CompilationError is returned when the compiler produced no PDF
type CompilationError struct {
	// LogTail holds the end of the compiler log, when one was written
	LogTail string
	Cause   error
}

// Error implements the error interface
func (e *CompilationError) Error() string {
	msg := "LaTeX compilation failed"
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.LogTail != "" {
		msg = fmt.Sprintf("%s\n%s", msg, e.LogTail)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// MissingFieldError reports a required document field left empty
type MissingFieldError struct {
	Section string
	Field   string
}

// Error implements the error interface
func (e *MissingFieldError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("required field %q is missing", e.Field)
	}
	return fmt.Sprintf("required field %q is missing in %q", e.Field, e.Section)
}
