package apierr

import (
	"fmt"
	"net/http"

	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From maps a domain error onto an HTTP status and a stable code.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*Error); ok {
		return ae
	}
	kind := pkgerrors.KindOf(err)
	switch kind {
	case pkgerrors.KindInvalidArgument:
		return New(http.StatusBadRequest, string(kind), err)
	case pkgerrors.KindNotFound:
		return New(http.StatusNotFound, string(kind), err)
	case pkgerrors.KindStoreUnavailable, pkgerrors.KindSourceUnavailable:
		return New(http.StatusServiceUnavailable, string(kind), err)
	case pkgerrors.KindRunInProgress:
		return New(http.StatusConflict, string(kind), err)
	case "":
		return New(http.StatusInternalServerError, "internal", err)
	default:
		return New(http.StatusInternalServerError, string(kind), err)
	}
}
