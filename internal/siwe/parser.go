package siwe

import (
	"strings"
)

// lines walks the message one line at a time. Line numbers are 1-based.
type lines struct {
	all []string
	pos int
}

func (l *lines) done() bool { return l.pos >= len(l.all) }

func (l *lines) peek() (string, bool) {
	if l.done() {
		return "", false
	}
	return l.all[l.pos], true
}

func (l *lines) next() (string, bool) {
	line, ok := l.peek()
	if ok {
		l.pos++
	}
	return line, ok
}

// tagged consumes the next line when it reads "<label>: <value>"
func (l *lines) tagged(label string) (string, bool) {
	line, ok := l.peek()
	if !ok {
		return "", false
	}
	value, found := strings.CutPrefix(line, label+": ")
	if !found {
		return "", false
	}
	l.pos++
	return value, true
}

// ParseMessage parses the canonical text of a sign-in message. Parsing is
// strict: fields must appear in canonical order, unknown lines are rejected,
// and the text must re-render to exactly the input.
func ParseMessage(raw string) (*Message, error) {
	in := &lines{all: strings.Split(raw, "\n")}
	msg := &Message{}

	header, _ := in.next()
	domain, found := strings.CutSuffix(header, headerSuffix)
	if !found {
		return nil, lineError(1, ErrInvalidHeader)
	}
	if domain == "" {
		return nil, fieldError("domain", ErrMissingField)
	}
	msg.Domain = domain

	address, ok := in.next()
	if !ok || address == "" {
		return nil, fieldError("address", ErrMissingField)
	}
	addr, err := parseAddress(address)
	if err != nil {
		return nil, fieldError("address", err)
	}
	msg.Address = addr

	if line, ok := in.next(); !ok || line != "" {
		return nil, lineError(in.pos, ErrExpectedBlankLine)
	}
	if line, ok := in.peek(); ok && line != "" {
		msg.Statement = line
		in.pos++
	}
	if line, ok := in.next(); !ok || line != "" {
		return nil, lineError(in.pos, ErrExpectedBlankLine)
	}

	value, ok := in.tagged(labelURI)
	if !ok {
		return nil, fieldError("uri", ErrMissingField)
	}
	msg.URI = value

	if msg.Version, ok = in.tagged(labelVersion); !ok {
		return nil, fieldError("version", ErrMissingField)
	}

	value, ok = in.tagged(labelChainID)
	if !ok {
		return nil, fieldError("chainId", ErrMissingField)
	}
	if msg.ChainID, err = parseChainID(value); err != nil {
		return nil, fieldError("chainId", err)
	}

	if msg.Nonce, ok = in.tagged(labelNonce); !ok {
		return nil, fieldError("nonce", ErrMissingField)
	}

	value, ok = in.tagged(labelIssuedAt)
	if !ok {
		return nil, fieldError("issuedAt", ErrMissingField)
	}
	if msg.IssuedAt, err = ParseTimestamp(value); err != nil {
		return nil, fieldError("issuedAt", err)
	}

	if value, ok = in.tagged(labelExpirationTime); ok {
		ts, err := ParseTimestamp(value)
		if err != nil {
			return nil, fieldError("expirationTime", err)
		}
		msg.ExpirationTime = &ts
	}

	if value, ok = in.tagged(labelNotBefore); ok {
		ts, err := ParseTimestamp(value)
		if err != nil {
			return nil, fieldError("notBefore", err)
		}
		msg.NotBefore = &ts
	}

	if value, ok = in.tagged(labelRequestID); ok {
		if value == "" {
			return nil, fieldError("requestId", ErrInvalidRequestID)
		}
		msg.RequestID = value
	}

	if line, ok := in.peek(); ok && line == labelResources {
		in.pos++
		for {
			line, ok := in.peek()
			if !ok {
				break
			}
			resource, found := strings.CutPrefix(line, "- ")
			if !found {
				break
			}
			msg.Resources = append(msg.Resources, resource)
			in.pos++
		}
		if len(msg.Resources) == 0 {
			return nil, fieldError("resources", ErrMissingField)
		}
	}

	if !in.done() {
		return nil, lineError(in.pos+1, ErrUnexpectedLine)
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}

	if msg.String() != raw {
		return nil, &ParseError{Err: ErrNotCanonical}
	}

	return msg, nil
}
