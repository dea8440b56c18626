package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"coursepay/internal/guest"
)

type fakeAdder struct {
	mu      sync.Mutex
	added   []string
	failIDs map[string]bool
}

func (f *fakeAdder) Add(ctx context.Context, userID, courseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[courseID] {
		return errors.New("server said no")
	}
	f.added = append(f.added, courseID)
	return nil
}

func storeWith(ids ...string) *guest.Store {
	s := guest.NewStore()
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func TestAllItemsSync(t *testing.T) {
	adder := &fakeAdder{}
	engine := NewEngine(adder, ClearAlways, zap.NewNop())
	store := storeWith("a", "b", "c")

	result := engine.Run(context.Background(), "user-1", store)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempted)
	assert.Len(t, adder.added, 3)
	assert.Equal(t, 0, store.Count(), "guest store cleared after handoff")
}

func TestEmptyStore(t *testing.T) {
	engine := NewEngine(&fakeAdder{}, ClearAlways, zap.NewNop())

	result := engine.Run(context.Background(), "user-1", guest.NewStore())

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Attempted)
}

func TestPartialFailureDoesNotAbortBatch(t *testing.T) {
	adder := &fakeAdder{failIDs: map[string]bool{"b": true}}
	engine := NewEngine(adder, ClearAlways, zap.NewNop())
	store := storeWith("a", "b", "c")

	result := engine.Run(context.Background(), "user-1", store)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempted)
	assert.ElementsMatch(t, []string{"a", "c"}, adder.added)
}

func TestClearAlwaysDropsFailedItems(t *testing.T) {
	adder := &fakeAdder{failIDs: map[string]bool{"b": true}}
	engine := NewEngine(adder, ClearAlways, zap.NewNop())
	store := storeWith("a", "b", "c")

	engine.Run(context.Background(), "user-1", store)

	assert.Equal(t, 0, store.Count())
}

func TestClearSyncedOnlyKeepsFailedItems(t *testing.T) {
	adder := &fakeAdder{failIDs: map[string]bool{"b": true}}
	engine := NewEngine(adder, ClearSyncedOnly, zap.NewNop())
	store := storeWith("a", "b", "c")

	engine.Run(context.Background(), "user-1", store)

	assert.Equal(t, []string{"b"}, store.List())
}
