package service

import (
	"context"
	"fmt"

	"coursepay/internal/bus"
	"coursepay/internal/guest"
	"coursepay/internal/model"
	"coursepay/internal/reconcile"
	"coursepay/internal/repository"
)

type WishlistService interface {
	// Add is idempotent: a course already on the wishlist is not an error.
	Add(ctx context.Context, userID, courseID string) error
	Check(ctx context.Context, userID, courseID string) (bool, error)
	Count(ctx context.Context, userID string) (int64, error)
	List(ctx context.Context, userID string, page, limit int) ([]*model.WishlistItem, int64, error)
	Remove(ctx context.Context, userID, courseID string) error
	// Sync merges a guest device's saved courses into the account wishlist.
	Sync(ctx context.Context, userID string, courseIDs []string) reconcile.Result
}

// NewWishlistAdder adapts the wishlist repository to the reconcile engine's
// collaborator interface. The repo's conflict-tolerant Add gives the engine
// its "already present is success" semantics for free.
func NewWishlistAdder(repo repository.WishlistRepository) reconcile.WishlistAdder {
	return repoAdder{repo: repo}
}

type repoAdder struct {
	repo repository.WishlistRepository
}

func (a repoAdder) Add(ctx context.Context, userID, courseID string) error {
	return a.repo.Add(ctx, &model.WishlistItem{
		UserID:   userID,
		CourseID: courseID,
	})
}

type wishlistServiceImpl struct {
	wishlistRepo repository.WishlistRepository
	engine       *reconcile.Engine
	events       *bus.Bus
}

func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	engine *reconcile.Engine,
	events *bus.Bus,
) WishlistService {
	return &wishlistServiceImpl{
		wishlistRepo: wishlistRepo,
		engine:       engine,
		events:       events,
	}
}

func (s *wishlistServiceImpl) Add(ctx context.Context, userID, courseID string) error {
	err := s.wishlistRepo.Add(ctx, &model.WishlistItem{
		UserID:   userID,
		CourseID: courseID,
	})
	if err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}

	s.events.Publish(bus.Event{Topic: bus.TopicWishlistChanged, UserID: userID})
	return nil
}

func (s *wishlistServiceImpl) Check(ctx context.Context, userID, courseID string) (bool, error) {
	return s.wishlistRepo.Exists(ctx, userID, courseID)
}

func (s *wishlistServiceImpl) Count(ctx context.Context, userID string) (int64, error) {
	return s.wishlistRepo.Count(ctx, userID)
}

func (s *wishlistServiceImpl) List(ctx context.Context, userID string, page, limit int) ([]*model.WishlistItem, int64, error) {
	return s.wishlistRepo.List(ctx, userID, page, limit)
}

func (s *wishlistServiceImpl) Remove(ctx context.Context, userID, courseID string) error {
	if err := s.wishlistRepo.Delete(ctx, userID, courseID); err != nil {
		return err
	}
	s.events.Publish(bus.Event{Topic: bus.TopicWishlistChanged, UserID: userID})
	return nil
}

func (s *wishlistServiceImpl) Sync(ctx context.Context, userID string, courseIDs []string) reconcile.Result {
	store := guest.NewStore()
	for _, id := range courseIDs {
		store.Add(id)
	}

	result := s.engine.Run(ctx, userID, store)
	if result.Attempted > 0 {
		s.events.Publish(bus.Event{Topic: bus.TopicWishlistChanged, UserID: userID})
	}
	return result
}
