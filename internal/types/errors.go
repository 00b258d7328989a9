package types

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors so front ends can map them to presentation
// (HTTP statuses, REPL formatting) without parsing messages.
type Kind int

const (
	ParseError Kind = iota
	SchemaError
	TypeMismatch
	ConstraintViolation
	ColumnNotFound
	TableNotFound
	// NotIndexed is internal: an index path was attempted on a non-indexed
	// column. Callers always fall back to scanning, so it never reaches the
	// API surface.
	NotIndexed
	PersistenceError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case SchemaError:
		return "schema error"
	case TypeMismatch:
		return "type mismatch"
	case ConstraintViolation:
		return "constraint violation"
	case ColumnNotFound:
		return "column not found"
	case TableNotFound:
		return "table not found"
	case NotIndexed:
		return "not indexed"
	case PersistenceError:
		return "persistence error"
	}
	return "unknown error"
}

// Error is the error type returned by every engine operation.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds an Error of the given kind with a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewParseError(format string, args ...interface{}) *Error {
	return NewError(ParseError, format, args...)
}

func NewSchemaError(format string, args ...interface{}) *Error {
	return NewError(SchemaError, format, args...)
}

func NewTypeMismatch(value interface{}, t ColumnType) *Error {
	return NewError(TypeMismatch, "value %v cannot be stored as %s", value, t)
}

func NewConstraintViolation(column string, value interface{}) *Error {
	return NewError(ConstraintViolation, "duplicate value %v for column %s", value, column)
}

func NewColumnNotFound(column string) *Error {
	return NewError(ColumnNotFound, "column %s does not exist", column)
}

func NewTableNotFound(table string) *Error {
	return NewError(TableNotFound, "table %s does not exist", table)
}

func NewNotIndexed(column string) *Error {
	return NewError(NotIndexed, "column %s is not indexed", column)
}

func NewPersistenceError(format string, args ...interface{}) *Error {
	return NewError(PersistenceError, format, args...)
}

// KindOf returns the Kind carried by err, if err is an engine Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is an engine Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
