package siwe

import (
	"bytes"
	"encoding/json"
	"strings"
)

// envelope is the JSON shape browser clients post when they serialise the
// message object instead of its text.
type envelope struct {
	Domain         string   `json:"domain"`
	Address        string   `json:"address"`
	Statement      *string  `json:"statement,omitempty"`
	URI            string   `json:"uri"`
	Version        string   `json:"version"`
	ChainID        uint64   `json:"chainId"`
	Nonce          string   `json:"nonce"`
	IssuedAt       string   `json:"issuedAt"`
	ExpirationTime *string  `json:"expirationTime,omitempty"`
	NotBefore      *string  `json:"notBefore,omitempty"`
	RequestID      *string  `json:"requestId,omitempty"`
	Resources      []string `json:"resources,omitempty"`
}

// Envelope serialises the message into its JSON envelope
func (m *Message) Envelope() ([]byte, error) {
	env := envelope{
		Domain:    m.Domain,
		Address:   m.Address.Hex(),
		URI:       m.URI,
		Version:   m.Version,
		ChainID:   m.ChainID,
		Nonce:     m.Nonce,
		IssuedAt:  m.IssuedAt.String(),
		Resources: m.Resources,
	}
	if m.Statement != "" {
		env.Statement = &m.Statement
	}
	if m.ExpirationTime != nil {
		s := m.ExpirationTime.String()
		env.ExpirationTime = &s
	}
	if m.NotBefore != nil {
		s := m.NotBefore.String()
		env.NotBefore = &s
	}
	if m.RequestID != "" {
		env.RequestID = &m.RequestID
	}
	return json.Marshal(env)
}

// ParseEnvelope decodes a JSON envelope into a message. Unknown keys are
// rejected. The signature must then be checked against String() of the
// result, the text a well-formed client would have signed.
func ParseEnvelope(data []byte) (*Message, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, &ParseError{Err: ErrInvalidEnvelope}
	}
	if dec.More() {
		return nil, &ParseError{Err: ErrInvalidEnvelope}
	}

	msg := &Message{
		Domain:    env.Domain,
		URI:       env.URI,
		Version:   env.Version,
		ChainID:   env.ChainID,
		Nonce:     env.Nonce,
		Resources: env.Resources,
	}

	if env.Address == "" {
		return nil, fieldError("address", ErrMissingField)
	}
	addr, err := parseAddress(env.Address)
	if err != nil {
		return nil, fieldError("address", err)
	}
	msg.Address = addr

	if env.Statement != nil {
		if *env.Statement == "" {
			return nil, fieldError("statement", ErrInvalidStatement)
		}
		msg.Statement = *env.Statement
	}

	if env.IssuedAt != "" {
		if msg.IssuedAt, err = ParseTimestamp(env.IssuedAt); err != nil {
			return nil, fieldError("issuedAt", err)
		}
	}
	if env.ExpirationTime != nil {
		ts, err := ParseTimestamp(*env.ExpirationTime)
		if err != nil {
			return nil, fieldError("expirationTime", err)
		}
		msg.ExpirationTime = &ts
	}
	if env.NotBefore != nil {
		ts, err := ParseTimestamp(*env.NotBefore)
		if err != nil {
			return nil, fieldError("notBefore", err)
		}
		msg.NotBefore = &ts
	}
	if env.RequestID != nil {
		if *env.RequestID == "" {
			return nil, fieldError("requestId", ErrInvalidRequestID)
		}
		msg.RequestID = *env.RequestID
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodePayload accepts either the canonical text or its JSON envelope
func DecodePayload(payload string) (*Message, error) {
	if strings.HasPrefix(strings.TrimSpace(payload), "{") {
		return ParseEnvelope([]byte(payload))
	}
	return ParseMessage(payload)
}
