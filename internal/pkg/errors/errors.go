// Package errors defines the failure kinds shared by the ETL pipeline, the
// graph stores and the recommendation engine.
//
// Every pipeline error carries a Kind plus enough context (entity type, row
// identifier) to diagnose a failed run without retrying blindly. Callers test
// kinds with the standard library:
//
//	if errors.Is(err, pkgerrors.ErrDanglingReference) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindSourceUnavailable  Kind = "source_unavailable"
	KindStoreUnavailable   Kind = "store_unavailable"
	KindSchemaMismatch     Kind = "schema_mismatch"
	KindIntegrityViolation Kind = "integrity_violation"
	KindInvalidValue       Kind = "invalid_value"
	KindDanglingReference  Kind = "dangling_reference"
	KindRunInProgress      Kind = "run_in_progress"
	KindNotFound           Kind = "not_found"
	KindInvalidArgument    Kind = "invalid_argument"
)

// Sentinels matched by (*Error).Is on Kind.
var (
	ErrSourceUnavailable  = &Error{Kind: KindSourceUnavailable}
	ErrStoreUnavailable   = &Error{Kind: KindStoreUnavailable}
	ErrSchemaMismatch     = &Error{Kind: KindSchemaMismatch}
	ErrIntegrityViolation = &Error{Kind: KindIntegrityViolation}
	ErrInvalidValue       = &Error{Kind: KindInvalidValue}
	ErrDanglingReference  = &Error{Kind: KindDanglingReference}
	ErrRunInProgress      = &Error{Kind: KindRunInProgress}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
)

type Error struct {
	Kind   Kind
	Op     string
	Entity string
	RowID  string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Entity != "" {
		b.WriteString(" entity=")
		b.WriteString(e.Entity)
	}
	if e.RowID != "" {
		b.WriteString(" id=")
		b.WriteString(e.RowID)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match when target is an *Error with the same Kind, so the
// package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Row builds an error pinned to a single source row.
func Row(kind Kind, entity, rowID, format string, args ...any) *Error {
	return &Error{Kind: kind, Entity: entity, RowID: rowID, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Transient reports whether a retry of the whole run may succeed.
func Transient(err error) bool {
	switch KindOf(err) {
	case KindSourceUnavailable, KindStoreUnavailable, KindRunInProgress:
		return true
	default:
		return false
	}
}
