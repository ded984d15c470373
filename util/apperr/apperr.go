// Package apperr carries the stable error codes that services return and
// controllers translate into HTTP responses.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

type ErrCode string

const (
	ErrValidation ErrCode = "VALIDATION"
	ErrCartEmpty  ErrCode = "CART_EMPTY"

	ErrUnauthorized ErrCode = "UNAUTHORIZED"
	ErrInvalidCreds ErrCode = "INVALID_CREDENTIALS"
	ErrForbidden    ErrCode = "FORBIDDEN"
	ErrNotEligible  ErrCode = "NOT_ELIGIBLE"

	ErrNotFound ErrCode = "NOT_FOUND"

	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrInsufficientStock  ErrCode = "INSUFFICIENT_STOCK"
	ErrBookUnavailable    ErrCode = "BOOK_UNAVAILABLE"
	ErrClaimCodeExhausted ErrCode = "CLAIM_CODE_EXHAUSTED"
	ErrReviewExists       ErrCode = "REVIEW_EXISTS"
	ErrOrderNotPending    ErrCode = "ORDER_NOT_PENDING"
	ErrInProgress         ErrCode = "IN_PROGRESS"
)

// Kind groups codes into the categories clients render differently.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindIneligible
	KindNotFound
	KindConflict
)

func (c ErrCode) Kind() Kind {
	switch c {
	case ErrValidation, ErrCartEmpty:
		return KindValidation
	case ErrUnauthorized, ErrInvalidCreds:
		return KindUnauthorized
	case ErrForbidden:
		return KindForbidden
	case ErrNotEligible:
		return KindIneligible
	case ErrNotFound:
		return KindNotFound
	case ErrEmailTaken, ErrInsufficientStock, ErrBookUnavailable, ErrClaimCodeExhausted,
		ErrReviewExists, ErrOrderNotPending, ErrInProgress:
		return KindConflict
	}
	return KindUnknown
}

type codedError struct {
	code   ErrCode
	msg    string
	fields map[string]string
	cause  error
}

func (e *codedError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.code))
	if e.msg != "" {
		b.WriteString(": ")
		b.WriteString(e.msg)
	}
	if len(e.fields) > 0 {
		keys := make([]string, 0, len(e.fields))
		for k := range e.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k + "=" + e.fields[k])
		}
		b.WriteString("]")
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *codedError) Code() ErrCode { return e.code }
func (e *codedError) Message() string { return e.msg }
func (e *codedError) Fields() map[string]string { return e.fields }
func (e *codedError) Unwrap() error { return e.cause }

// New returns an error carrying code c and a human readable message.
func New(c ErrCode, msg string) error { return &codedError{code: c, msg: msg} }

// Wrap attaches code c to an underlying cause.
func Wrap(c ErrCode, cause error, msg string) error {
	return &codedError{code: c, msg: msg, cause: cause}
}

// Invalid reports field-level validation failures. fields maps a field name to
// the rule it broke.
func Invalid(fields map[string]string) error {
	return &codedError{code: ErrValidation, msg: "validation error", fields: fields}
}

// Field is a shorthand for a single-field validation failure.
func Field(name, rule string) error {
	return Invalid(map[string]string{name: rule})
}

// Code extracts the error code, or "" for plain errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Message returns the message attached to a coded error.
func Message(err error) string {
	var ce interface{ Message() string }
	if errors.As(err, &ce) {
		return ce.Message()
	}
	return ""
}

// Fields returns validation details, if any.
func Fields(err error) map[string]string {
	var ce interface{ Fields() map[string]string }
	if errors.As(err, &ce) {
		return ce.Fields()
	}
	return nil
}

// Is reports whether err carries code c.
func Is(err error, c ErrCode) bool { return Code(err) == c }
