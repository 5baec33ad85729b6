package core

import "errors"

var (
	ErrMissingCredentials = errors.New("missing message or signature")
	ErrParse              = errors.New("malformed sign-in message")
	ErrNonceMismatch      = errors.New("nonce mismatch or replay")
	ErrDomainMismatch     = errors.New("domain mismatch")
	ErrOriginMismatch     = errors.New("origin mismatch")
	ErrWindowExpired      = errors.New("message outside validity window")
	ErrSignatureInvalid   = errors.New("invalid signature")
	ErrAddressMismatch    = errors.New("signer does not match address")
	ErrSessionInvalid     = errors.New("session is invalid")

	ErrStoreOperationFailed = errors.New("store operation failed")
)

// Reason is the diagnostic label of a failed authentication attempt.
// It is meant for server logs only and never sent to clients.
type Reason string

const (
	ReasonMissingCredentials Reason = "missing_credentials"
	ReasonParseError         Reason = "parse_error"
	ReasonNonceMismatch      Reason = "nonce_mismatch_or_replay"
	ReasonDomainMismatch     Reason = "domain_mismatch"
	ReasonOriginMismatch     Reason = "origin_mismatch"
	ReasonWindowExpired      Reason = "window_expired"
	ReasonSignatureInvalid   Reason = "signature_invalid"
	ReasonAddressMismatch    Reason = "address_mismatch"
	ReasonSessionInvalid     Reason = "session_invalid"
	ReasonInternal           Reason = "internal"
)

var reasons = []struct {
	err    error
	reason Reason
}{
	{ErrMissingCredentials, ReasonMissingCredentials},
	{ErrParse, ReasonParseError},
	{ErrNonceMismatch, ReasonNonceMismatch},
	{ErrDomainMismatch, ReasonDomainMismatch},
	{ErrOriginMismatch, ReasonOriginMismatch},
	{ErrWindowExpired, ReasonWindowExpired},
	{ErrSignatureInvalid, ReasonSignatureInvalid},
	{ErrAddressMismatch, ReasonAddressMismatch},
	{ErrSessionInvalid, ReasonSessionInvalid},
}

// ReasonOf maps an error chain onto the failure taxonomy.
// Errors outside the taxonomy are reported as ReasonInternal.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ReasonInternal
}
