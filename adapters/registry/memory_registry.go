package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/siwe-auth/core"
)

// MemoryRegistry keeps accounts in process memory
type MemoryRegistry struct {
	accounts map[string]core.Account // address -> account
	now      func() time.Time
	mu       sync.Mutex
}

// NewMemoryRegistry creates an empty in-memory registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		accounts: make(map[string]core.Account),
		now:      time.Now,
	}
}

// Upsert creates the account on first sign-in and refreshes LastSeenAt after
func (r *MemoryRegistry) Upsert(ctx context.Context, address string, chainID uint64) (*core.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	account, exists := r.accounts[address]
	if !exists {
		account = core.Account{
			ID:        uuid.New().String(),
			Address:   address,
			CreatedAt: now,
		}
	}
	account.ChainID = chainID
	account.LastSeenAt = now
	r.accounts[address] = account

	return &account, nil
}

// Get returns the account for address, if any
func (r *MemoryRegistry) Get(address string) (core.Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, exists := r.accounts[address]
	return account, exists
}
