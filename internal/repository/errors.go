package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicate is returned when an exercise name is already taken.
	ErrDuplicate = errors.New("duplicate exercise")
	// ErrNotFound is returned when an id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrFormat is returned when an import payload is not a LiftLog export.
	ErrFormat = errors.New("invalid import format")
)

// Problem is a single violated input rule.
// Index is the zero-based set position for set-level problems, otherwise -1.
type Problem struct {
	Field   string `json:"field"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	if p.Index >= 0 {
		return fmt.Sprintf("set %d: %s", p.Index+1, p.Message)
	}
	return p.Message
}

// ValidationError carries every rule an input violated, not just the first.
type ValidationError struct {
	Problems []Problem `json:"problems"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.String()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field string, index int, format string, args ...any) {
	e.Problems = append(e.Problems, Problem{Field: field, Index: index, Message: fmt.Sprintf(format, args...)})
}

// errOrNil returns e as an error only when it holds problems.
func (e *ValidationError) errOrNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// PersistenceError reports a failed snapshot write or read. The in-memory
// state has already been updated when a save fails; it stays authoritative
// for the rest of the session.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s snapshot: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistence reports whether err is (or wraps) a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
