package store

import (
	"context"
	"sync"
	"time"

	"github.com/tmoj/authd/core"
	"github.com/tmoj/authd/ports"
)

// MemoryStore is an in-memory revocation store for tests and
// single-node development runs.
type MemoryStore struct {
	revocations map[string]time.Time
	mu          sync.RWMutex
}

// NewMemoryStore creates an empty in-memory revocation store.
func NewMemoryStore() ports.RevocationStore {
	return &MemoryStore{
		revocations: make(map[string]time.Time),
	}
}

// Record marks a token identifier as revoked until expiresAt.
func (s *MemoryStore) Record(ctx context.Context, revocation *core.Revocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revocations[revocation.TokenID] = revocation.ExpiresAt
	return nil
}

// Lookup returns the revocation for a token identifier. Markers whose
// expiry has passed are collected lazily, mirroring the garbage
// collection the external store performs on its own schedule.
func (s *MemoryStore) Lookup(ctx context.Context, tokenID string) (*core.Revocation, error) {
	s.mu.RLock()
	expiresAt, exists := s.revocations[tokenID]
	s.mu.RUnlock()

	if !exists {
		return nil, nil
	}

	if time.Now().After(expiresAt) {
		s.mu.Lock()
		delete(s.revocations, tokenID)
		s.mu.Unlock()
		return nil, nil
	}

	return &core.Revocation{TokenID: tokenID, ExpiresAt: expiresAt}, nil
}
