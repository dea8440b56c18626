// Package reconcile merges a guest's device-local saved courses into their
// authenticated account's wishlist. It runs exactly once per sign-in.
package reconcile

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"coursepay/internal/guest"
)

// WishlistAdder is the account-bound persistence collaborator. Add must treat
// "already present" as success.
type WishlistAdder interface {
	Add(ctx context.Context, userID, courseID string) error
}

// ClearPolicy controls what happens to the guest store when the batch ends.
type ClearPolicy int

const (
	// ClearAlways empties the store even when some items failed; an item
	// whose server call failed is dropped. This mirrors the historical
	// behavior and keeps sign-in cheap at the cost of losing failed items.
	ClearAlways ClearPolicy = iota
	// ClearSyncedOnly keeps failed items in the store so a later sign-in
	// can retry them.
	ClearSyncedOnly
)

type Result struct {
	// Success is true only when every attempted item made it to the account.
	Success bool `json:"success"`
	// Attempted is the number of guest items the batch tried to hand off.
	Attempted int `json:"count"`
}

type Engine struct {
	adder       WishlistAdder
	policy      ClearPolicy
	itemTimeout time.Duration
	log         *zap.Logger
}

func NewEngine(adder WishlistAdder, policy ClearPolicy, log *zap.Logger) *Engine {
	return &Engine{
		adder:       adder,
		policy:      policy,
		itemTimeout: 10 * time.Second,
		log:         log,
	}
}

// Run hands every guest-saved course over to the account wishlist. Each item
// is an independent call: a failure is logged and tolerated, never aborts the
// batch, and is surfaced only through Result.Success. There is no rollback;
// items that landed before a failure stay on the account.
func (e *Engine) Run(ctx context.Context, userID string, store *guest.Store) Result {
	ids := store.List()
	if len(ids) == 0 {
		return Result{Success: true, Attempted: 0}
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		synced = make([]string, 0, len(ids))
	)

	for _, courseID := range ids {
		wg.Add(1)
		go func(courseID string) {
			defer wg.Done()

			itemCtx, cancel := context.WithTimeout(ctx, e.itemTimeout)
			defer cancel()

			if err := e.adder.Add(itemCtx, userID, courseID); err != nil {
				e.log.Warn("guest wishlist sync item failed",
					zap.String("user_id", userID),
					zap.String("course_id", courseID),
					zap.Error(err))
				return
			}

			mu.Lock()
			synced = append(synced, courseID)
			mu.Unlock()
		}(courseID)
	}
	wg.Wait()

	switch e.policy {
	case ClearSyncedOnly:
		store.RemoveAll(synced)
	default:
		store.Clear()
	}

	return Result{
		Success:   len(synced) == len(ids),
		Attempted: len(ids),
	}
}
