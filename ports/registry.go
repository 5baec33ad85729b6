package ports

import (
	"context"

	"github.com/layer-3/siwe-auth/core"
)

// AccountRegistry maps wallet addresses to durable account records
type AccountRegistry interface {
	Upsert(ctx context.Context, address string, chainID uint64) (*core.Account, error)
}
