package ports

import "github.com/layer-3/siwe-auth/core"

// Tokenizer converts between sessions and signed session credentials
type Tokenizer interface {
	SessionToToken(session *core.Session) (string, error)
	TokenToSession(token string) (*core.Session, error)
}
