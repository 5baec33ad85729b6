package siwe

import (
	"errors"
	"fmt"

	"github.com/layer-3/siwe-auth/core"
)

var (
	ErrMissingField       = errors.New("required field is missing")
	ErrInvalidHeader      = errors.New("first line does not end in \"" + headerSuffix + "\"")
	ErrInvalidDomain      = errors.New("domain is not valid")
	ErrInvalidAddress     = errors.New("not a valid Ethereum address")
	ErrAddressChecksum    = errors.New("address is not EIP-55 checksummed")
	ErrExpectedBlankLine  = errors.New("expected an empty line")
	ErrInvalidStatement   = errors.New("statement must be a single non-empty line")
	ErrInvalidURI         = errors.New("not a valid URI")
	ErrUnsupportedVersion = errors.New("unsupported version, expected " + Version1)
	ErrInvalidChainID     = errors.New("chain ID must be a positive integer")
	ErrInvalidNonce       = errors.New("nonce must be at least 8 alphanumeric characters")
	ErrInvalidTimestamp   = errors.New("not a valid RFC 3339 timestamp")
	ErrIssuedAfterExpiry  = errors.New("issued at is after expiration time")
	ErrNotBeforeAfterExp  = errors.New("not before is after expiration time")
	ErrInvalidRequestID   = errors.New("request ID must not be empty")
	ErrUnexpectedLine     = errors.New("unexpected line")
	ErrNotCanonical       = errors.New("message text is not in canonical form")
	ErrInvalidEnvelope    = errors.New("message envelope is not valid JSON")
)

// ParseError reports which field of a sign-in message could not be accepted.
// It matches both the specific cause and core.ErrParse with errors.Is.
type ParseError struct {
	Field string
	Line  int
	Err   error
}

func (e *ParseError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("siwe: %s: %v", e.Field, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("siwe: line %d: %v", e.Line, e.Err)
	default:
		return "siwe: " + e.Err.Error()
	}
}

func (e *ParseError) Unwrap() []error {
	return []error{e.Err, core.ErrParse}
}

func fieldError(field string, err error) error {
	return &ParseError{Field: field, Err: err}
}

func lineError(line int, err error) error {
	return &ParseError{Line: line, Err: err}
}
