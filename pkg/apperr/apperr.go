// Package apperr carries the error taxonomy shared by the webhook pipeline and
// the storefront APIs. Each endpoint translates an *Error into an HTTP status
// and a public message at its own boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindAuth        Kind = "auth"
	KindParse       Kind = "parse"
	KindLookup      Kind = "lookup"
	KindTransaction Kind = "transaction"
	KindValidation  Kind = "validation"
	KindInternal    Kind = "internal"
	// KindUpstream carries a payment provider rejection whose status is forwarded.
	KindUpstream Kind = "upstream"
)

// TechnicalErrorMessage is returned whenever the underlying cause must not leak.
const TechnicalErrorMessage = "technical error, please try again later"

type Error struct {
	Kind    Kind
	Message string
	// Fields lists offending request fields for validation errors.
	Fields map[string]string
	// Status overrides the kind's default HTTP status when non-zero.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithStatus returns e with an explicit HTTP status.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

func Auth(msg string) *Error { return &Error{Kind: KindAuth, Message: msg} }

func Parse(msg string, err error) *Error {
	return &Error{Kind: KindParse, Message: msg, Err: err}
}

func Lookup(msg string) *Error { return &Error{Kind: KindLookup, Message: msg} }

func Transaction(msg string, err error) *Error {
	return &Error{Kind: KindTransaction, Message: msg, Err: err}
}

func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func Upstream(msg string, status int, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Status: status, Err: err}
}

// Wrap turns an arbitrary error into an internal error. Nil stays nil.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	if ae, ok := As(err); ok {
		return ae
	}
	return &Error{Kind: KindInternal, Message: TechnicalErrorMessage, Err: err}
}

func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

func HTTPStatus(err error) int {
	ae, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if ae.Status != 0 {
		return ae.Status
	}
	switch ae.Kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindLookup:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns a message safe to put on the wire.
func PublicMessage(err error) string {
	ae, ok := As(err)
	if !ok || ae.Kind == KindInternal || ae.Message == "" {
		return TechnicalErrorMessage
	}
	return ae.Message
}
