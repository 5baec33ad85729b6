package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the signing network
type SessionClaims struct {
	jwt.RegisteredClaims
	ChainID uint64 `json:"chain_id"`
}
