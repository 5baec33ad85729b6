package siwe

import "time"

// timestampLayout renders UTC instants the way browser wallets do (toISOString).
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is an instant that remembers the exact text it was written as,
// so a parsed message re-renders byte for byte.
type Timestamp struct {
	t    time.Time
	text string
}

// NewTimestamp renders t with millisecond precision in UTC
func NewTimestamp(t time.Time) Timestamp {
	text := t.UTC().Format(timestampLayout)
	ts, err := ParseTimestamp(text)
	if err != nil {
		// Format output always parses.
		panic(err)
	}
	return ts
}

// ParseTimestamp parses an RFC 3339 timestamp, keeping its original text
func ParseTimestamp(text string) (Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return Timestamp{}, ErrInvalidTimestamp
	}
	return Timestamp{t: t, text: text}, nil
}

func (ts Timestamp) Time() time.Time { return ts.t }

func (ts Timestamp) String() string { return ts.text }

func (ts Timestamp) IsZero() bool { return ts.text == "" }
