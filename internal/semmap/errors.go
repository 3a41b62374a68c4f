package semmap

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is returned when a serialization name is not recognized.
	ErrUnknownFormat = errors.New("unknown document format")
	// ErrNoDocument is returned when an operation needs a document that does not exist.
	ErrNoDocument = errors.New("semantic map not found")
)

// ParseReason classifies why markdown input could not be parsed.
type ParseReason string

const (
	ReasonMissingTitle         ParseReason = "missing-title"
	ReasonMalformedLayerHeader ParseReason = "malformed-layer-header"
	ReasonMalformedEntry       ParseReason = "malformed-entry"
	ReasonMissingDescription   ParseReason = "missing-description"
	ReasonUnexpectedSection    ParseReason = "unexpected-section"
	ReasonUnexpectedContent    ParseReason = "unexpected-content"
)

// ParseError reports malformed markdown input. Line is 1-based.
type ParseError struct {
	Line   int
	Reason ParseReason
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Reason, e.Detail)
}

func parseErrorf(line int, reason ParseReason, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Warning is a non-fatal problem met while scanning files, such as an unreadable file.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	if w.Path == "" {
		return w.Err.Error()
	}
	return w.Path + ": " + w.Err.Error()
}
