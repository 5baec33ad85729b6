package core

import "time"

// SessionContext identifies the client context (cookie) a nonce was issued to.
type SessionContext string

// NonceRecord represents a single-use sign-in challenge nonce
type NonceRecord struct {
	Value     string         // Random challenge value, hex encoded
	Context   SessionContext // Client context the nonce is bound to
	IssuedAt  time.Time      // When the nonce was issued
	ExpiresAt time.Time      // After this the nonce is unusable
	Consumed  bool           // Set once the nonce has been used
}

// Usable reports whether the nonce may still be consumed at now
func (n NonceRecord) Usable(now time.Time) bool {
	return !n.Consumed && now.Before(n.ExpiresAt)
}

// Session represents an authenticated wallet session
type Session struct {
	ID        string    // Unique session identifier, also the credential ID
	Subject   string    // Verified (recovered) EIP-55 account address
	ChainID   uint64    // Network the message was signed for
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the session credential expires
}

// Valid reports whether the session carries an identity and is unexpired at now
func (s Session) Valid(now time.Time) bool {
	return s.Subject != "" && now.Before(s.ExpiresAt)
}

// Credentials is what a client submits to the authorize endpoint
type Credentials struct {
	Message   string
	Signature string
}

// Outcome is the result of a single adjudication attempt.
// Either Reason is empty and Subject/ChainID are set, or Reason and Err
// describe the first failed check.
type Outcome struct {
	Subject string
	ChainID uint64
	Reason  Reason
	Err     error
}

// Authorized reports whether the outcome is a success
func (o Outcome) Authorized() bool {
	return o.Reason == "" && o.Err == nil && o.Subject != ""
}

// Success builds a successful outcome
func Success(subject string, chainID uint64) Outcome {
	return Outcome{Subject: subject, ChainID: chainID}
}

// Failure builds a failed outcome from an error in the taxonomy
func Failure(err error) Outcome {
	return Outcome{Reason: ReasonOf(err), Err: err}
}

// Account is the durable user record keyed by wallet address
type Account struct {
	ID         string
	Address    string
	ChainID    uint64
	CreatedAt  time.Time
	LastSeenAt time.Time
}
