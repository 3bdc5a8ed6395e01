// Package zidserr defines the typed error taxonomy propagated by the GDFA
// core. Every kind is a distinct type so callers can use errors.As to
// branch on failure class without string matching, and every kind carries
// a stable Code() for the HTTP error envelope.
package zidserr

import "fmt"

// Code is one of the canonical error codes in the HTTP error envelope.
type Code string

const (
	CodeBadRequest       Code = "bad_request"
	CodeUnauthorized     Code = "unauthorized"
	CodeForbidden        Code = "forbidden"
	CodeNotFound         Code = "not_found"
	CodeRateLimited      Code = "rate_limited"
	CodeVersionMismatch  Code = "version_mismatch"
	CodeInvalidRow       Code = "invalid_row"
	CodeInvalidSymbol    Code = "invalid_symbol"
	CodeLengthMismatch   Code = "length_mismatch"
	CodeServerError      Code = "server_error"
	CodeInvalidParameter Code = "invalid_parameter"
	CodeMalformedODFA    Code = "malformed_odfa"
	CodeMalformedCntr    Code = "malformed_container"
	CodeIntegrityFailure Code = "integrity_failure"
	CodeBadPublicKey     Code = "bad_public_key"
	CodeInvalidToken     Code = "invalid_token"
	CodeOutOfRange       Code = "out_of_range"
	CodeTransportError   Code = "transport_error"
)

// Error is the common shape every ZIDS error kind satisfies.
type Error interface {
	error
	Code() Code
}

type baseErr struct {
	code Code
	msg  string
}

func (e *baseErr) Error() string { return e.msg }
func (e *baseErr) Code() Code    { return e.code }

func newf(code Code, format string, args ...interface{}) *baseErr {
	return &baseErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// InvalidParameterError — security/sparsity/packing constraints violated.
type InvalidParameterError struct{ *baseErr }

func InvalidParameterf(format string, args ...interface{}) *InvalidParameterError {
	return &InvalidParameterError{newf(CodeInvalidParameter, format, args...)}
}

// MalformedODFAError — missing fields, out-of-range edges, row over-degree.
type MalformedODFAError struct{ *baseErr }

func MalformedODFAf(format string, args ...interface{}) *MalformedODFAError {
	return &MalformedODFAError{newf(CodeMalformedODFA, format, args...)}
}

// MalformedContainerError — bad magic, length overflow, truncated payload.
type MalformedContainerError struct{ *baseErr }

func MalformedContainerf(format string, args ...interface{}) *MalformedContainerError {
	return &MalformedContainerError{newf(CodeMalformedCntr, format, args...)}
}

// IntegrityFailureError — SHA-256 mismatch on a loaded container.
type IntegrityFailureError struct{ *baseErr }

func IntegrityFailuref(format string, args ...interface{}) *IntegrityFailureError {
	return &IntegrityFailureError{newf(CodeIntegrityFailure, format, args...)}
}

// BadPublicKeyError — OT receiver's B is not in the prime-order subgroup.
type BadPublicKeyError struct{ *baseErr }

func BadPublicKeyf(format string, args ...interface{}) *BadPublicKeyError {
	return &BadPublicKeyError{newf(CodeBadPublicKey, format, args...)}
}

// LengthMismatchError — OT messages or tokens have the wrong length.
type LengthMismatchError struct{ *baseErr }

func LengthMismatchf(format string, args ...interface{}) *LengthMismatchError {
	return &LengthMismatchError{newf(CodeLengthMismatch, format, args...)}
}

// InvalidTokenError — no (column, key) pair validated during evaluation.
type InvalidTokenError struct{ *baseErr }

func InvalidTokenf(format string, args ...interface{}) *InvalidTokenError {
	return &InvalidTokenError{newf(CodeInvalidToken, format, args...)}
}

// OutOfRangeError — row_id or symbol out of bounds.
type OutOfRangeError struct{ *baseErr }

func OutOfRangef(format string, args ...interface{}) *OutOfRangeError {
	return &OutOfRangeError{newf(CodeOutOfRange, format, args...)}
}

// TransportError — network/IO failure; the core never retries these itself.
type TransportError struct{ *baseErr }

func TransportErrorf(format string, args ...interface{}) *TransportError {
	return &TransportError{newf(CodeTransportError, format, args...)}
}
