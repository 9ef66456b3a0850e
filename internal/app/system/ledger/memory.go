// internal/app/system/ledger/memory.go
package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process ledger used in dev mode and tests. It enforces
// balances so insufficiency paths behave like the real transfer system.
type Memory struct {
	mu sync.Mutex

	balances map[string]int64

	// refs remembers completed transfers by dedupe key so a replayed
	// transfer returns the original reference without moving tokens.
	refs map[string]string

	// seed is credited to any account on first touch, so freshly
	// initialized team accounts have something to spend in dev mode.
	seed int64
}

// NewMemory creates an in-memory ledger. Every account starts at seed.
func NewMemory(seed int64) *Memory {
	return &Memory{
		balances: make(map[string]int64),
		refs:     make(map[string]string),
		seed:     seed,
	}
}

func (m *Memory) balanceLocked(account string) int64 {
	if _, ok := m.balances[account]; !ok {
		m.balances[account] = m.seed
	}
	return m.balances[account]
}

// Balance implements Ledger.
func (m *Memory) Balance(_ context.Context, account string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balanceLocked(account), nil
}

// Transfer implements Ledger.
func (m *Memory) Transfer(_ context.Context, fromAccount, toUser string, amount int64, _ string, dedupeKey string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dedupeKey != "" {
		if ref, ok := m.refs[dedupeKey]; ok {
			return ref, nil
		}
	}

	bal := m.balanceLocked(fromAccount)
	if bal < amount {
		return "", ErrInsufficientBalance
	}
	m.balances[fromAccount] = bal - amount
	m.balances["user:"+toUser] += amount

	ref := "mem-" + uuid.NewString()
	if dedupeKey != "" {
		m.refs[dedupeKey] = ref
	}
	return ref, nil
}

// Credit adds tokens to an account. Test and dev helper.
func (m *Memory) Credit(account string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account] = m.balanceLocked(account) + amount
}
