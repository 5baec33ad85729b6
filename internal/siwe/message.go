// Package siwe implements the EIP-4361 "Sign-In with Ethereum" message format.
// REF: https://eips.ethereum.org/EIPS/eip-4361
package siwe

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/layer-3/siwe-auth/core"
)

// Version1 is the only message version currently understood
const Version1 = "1"

const headerSuffix = " wants you to sign in with your Ethereum account:"

const (
	labelURI            = "URI"
	labelVersion        = "Version"
	labelChainID        = "Chain ID"
	labelNonce          = "Nonce"
	labelIssuedAt       = "Issued At"
	labelExpirationTime = "Expiration Time"
	labelNotBefore      = "Not Before"
	labelRequestID      = "Request ID"
	labelResources      = "Resources:"
)

var (
	domainPattern  = regexp.MustCompile(`^(localhost|(?:\d{1,3}\.){3}\d{1,3}|(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,})(?::\d{1,5})?$`)
	addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	noncePattern   = regexp.MustCompile(`^[a-zA-Z0-9]{8,}$`)
)

// Message is the structured form of a sign-in challenge
type Message struct {
	Domain         string
	Address        common.Address
	Statement      string // optional, empty when absent
	URI            string
	Version        string
	ChainID        uint64
	Nonce          string
	IssuedAt       Timestamp
	ExpirationTime *Timestamp
	NotBefore      *Timestamp
	RequestID      string // optional, empty when absent
	Resources      []string
}

// String renders the canonical text of the message. This exact text is what
// the wallet signs, so field order and line prefixes are fixed.
func (m *Message) String() string {
	var b strings.Builder

	b.WriteString(m.Domain + headerSuffix + "\n")
	b.WriteString(m.Address.Hex() + "\n")
	b.WriteString("\n")
	if m.Statement != "" {
		b.WriteString(m.Statement + "\n")
	}
	b.WriteString("\n")

	writeField(&b, labelURI, m.URI)
	b.WriteString("\n")
	writeField(&b, labelVersion, m.Version)
	b.WriteString("\n")
	writeField(&b, labelChainID, strconv.FormatUint(m.ChainID, 10))
	b.WriteString("\n")
	writeField(&b, labelNonce, m.Nonce)
	b.WriteString("\n")
	writeField(&b, labelIssuedAt, m.IssuedAt.String())

	if m.ExpirationTime != nil {
		b.WriteString("\n")
		writeField(&b, labelExpirationTime, m.ExpirationTime.String())
	}
	if m.NotBefore != nil {
		b.WriteString("\n")
		writeField(&b, labelNotBefore, m.NotBefore.String())
	}
	if m.RequestID != "" {
		b.WriteString("\n")
		writeField(&b, labelRequestID, m.RequestID)
	}
	if len(m.Resources) > 0 {
		b.WriteString("\n" + labelResources)
		for _, r := range m.Resources {
			b.WriteString("\n- " + r)
		}
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(label + ": " + value)
}

// Build validates the message and returns its canonical text
func (m *Message) Build() (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m.String(), nil
}

// Validate checks every field against the message grammar
func (m *Message) Validate() error {
	if m.Domain == "" {
		return fieldError("domain", ErrMissingField)
	}
	if !domainPattern.MatchString(m.Domain) {
		return fieldError("domain", ErrInvalidDomain)
	}
	if m.Address == (common.Address{}) {
		return fieldError("address", ErrMissingField)
	}
	if strings.ContainsAny(m.Statement, "\r\n") {
		return fieldError("statement", ErrInvalidStatement)
	}
	if m.URI == "" {
		return fieldError("uri", ErrMissingField)
	}
	if err := validateURI(m.URI); err != nil {
		return fieldError("uri", err)
	}
	if m.Version == "" {
		return fieldError("version", ErrMissingField)
	}
	if m.Version != Version1 {
		return fieldError("version", ErrUnsupportedVersion)
	}
	if m.ChainID == 0 {
		return fieldError("chainId", ErrMissingField)
	}
	if m.Nonce == "" {
		return fieldError("nonce", ErrMissingField)
	}
	if !noncePattern.MatchString(m.Nonce) {
		return fieldError("nonce", ErrInvalidNonce)
	}
	if m.IssuedAt.IsZero() {
		return fieldError("issuedAt", ErrMissingField)
	}
	if m.ExpirationTime != nil && m.IssuedAt.Time().After(m.ExpirationTime.Time()) {
		return fieldError("expirationTime", ErrIssuedAfterExpiry)
	}
	if m.NotBefore != nil && m.ExpirationTime != nil && m.NotBefore.Time().After(m.ExpirationTime.Time()) {
		return fieldError("notBefore", ErrNotBeforeAfterExp)
	}
	if strings.ContainsAny(m.RequestID, "\r\n") {
		return fieldError("requestId", ErrInvalidRequestID)
	}
	for i, r := range m.Resources {
		if err := validateURI(r); err != nil {
			return fieldError(fmt.Sprintf("resources[%d]", i), err)
		}
	}
	return nil
}

// CheckWindow verifies the message is usable at now. Messages older than
// maxAge, or issued further than skew in the future, are rejected too;
// a zero maxAge disables the age bound.
func (m *Message) CheckWindow(now time.Time, maxAge, skew time.Duration) error {
	if m.ExpirationTime != nil && !now.Before(m.ExpirationTime.Time()) {
		return fmt.Errorf("message expired at %s: %w", m.ExpirationTime, core.ErrWindowExpired)
	}
	if m.NotBefore != nil && now.Before(m.NotBefore.Time()) {
		return fmt.Errorf("message not valid before %s: %w", m.NotBefore, core.ErrWindowExpired)
	}
	issuedAt := m.IssuedAt.Time()
	if issuedAt.After(now.Add(skew)) {
		return fmt.Errorf("message issued in the future at %s: %w", m.IssuedAt, core.ErrWindowExpired)
	}
	if maxAge > 0 && now.After(issuedAt.Add(maxAge)) {
		return fmt.Errorf("message issued too long ago at %s: %w", m.IssuedAt, core.ErrWindowExpired)
	}
	return nil
}

func validateURI(raw string) error {
	if strings.ContainsAny(raw, " \t\r\n") {
		return ErrInvalidURI
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return ErrInvalidURI
	}
	return nil
}

func parseAddress(raw string) (common.Address, error) {
	if !addressPattern.MatchString(raw) {
		return common.Address{}, ErrInvalidAddress
	}
	addr := common.HexToAddress(raw)
	if addr.Hex() != raw {
		return common.Address{}, ErrAddressChecksum
	}
	return addr, nil
}

func parseChainID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 || strconv.FormatUint(id, 10) != raw {
		return 0, ErrInvalidChainID
	}
	return id, nil
}
