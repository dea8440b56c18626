// Package snapshot stores the ephemeral per-session checkout snapshot: the
// cart contents and coupon the user saw when they entered checkout. Snapshots
// are short-lived; an expired or missing snapshot routes the user back to the
// cart.
package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"coursepay/internal/model"
)

var ErrNotFound = errors.New("checkout snapshot not found")

type Snapshot struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	CartItems    []*model.CartItem `json:"cart_items"`
	CartTotal    decimal.Decimal   `json:"cart_total"`
	// advisory copy only; checkout re-resolves the coupon by code
	AppliedCoupon *string   `json:"applied_coupon,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store keeps at most one snapshot per user session.
type Store interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context, userID string) (*Snapshot, error)
	// Delete removes the snapshot and reports whether one existed. Checkout
	// uses the existed flag as its submission idempotency check.
	Delete(ctx context.Context, userID string) (bool, error)
}

// MemoryStore is the fallback used when no redis address is configured, and
// by the test suite.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]*memoryEntry
}

type memoryEntry struct {
	snap      *Snapshot
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:   ttl,
		items: make(map[string]*memoryEntry),
	}
}

func (s *MemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[snap.UserID] = &memoryEntry{
		snap:      snap,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, userID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.items, userID)
		return nil, ErrNotFound
	}
	return entry.snap, nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[userID]
	if ok && time.Now().After(entry.expiresAt) {
		delete(s.items, userID)
		return false, nil
	}
	delete(s.items, userID)
	return ok, nil
}
