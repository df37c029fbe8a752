package services

import (
	"errors"
	"strings"
)

// Failure markers. Every error built by Wrap matches exactly one of these
// via errors.Is.
var (
	ErrExternalTool = errors.New("external tool error")
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrTimeout      = errors.New("timeout")
	ErrTransient    = errors.New("transient failure")
)

// Error records where a failure happened (stage and operation) alongside
// its marker and cause.
type Error struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Marker.Error())
	b.WriteString(": ")
	b.WriteString(e.detail())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the marker and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

func (e *Error) detail() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{e.Stage, e.Operation, e.Message} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// Wrap tags err with marker and stage context. A nil marker means
// ErrTransient.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &Error{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

// IsRetriable reports whether err carries a marker that a retry loop may act on.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrTimeout)
}
