package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coursepay/internal/model"
)

type WishlistRepository interface {
	// Add inserts the pair; a pair already present is a no-op, not an error.
	Add(ctx context.Context, item *model.WishlistItem) error
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	Count(ctx context.Context, userID string) (int64, error)
	List(ctx context.Context, userID string, page, limit int) ([]*model.WishlistItem, int64, error)
	Delete(ctx context.Context, userID, courseID string) error
}

type wishlistRepoImpl struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepoImpl{
		db: db,
	}
}

func (r *wishlistRepoImpl) Add(ctx context.Context, item *model.WishlistItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(item).Error
}

func (r *wishlistRepoImpl) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WishlistItem{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error

	return count > 0, err
}

func (r *wishlistRepoImpl) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WishlistItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error

	return count, err
}

func (r *wishlistRepoImpl) List(ctx context.Context, userID string, page, limit int) ([]*model.WishlistItem, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.WishlistItem{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var items []*model.WishlistItem
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *wishlistRepoImpl) Delete(ctx context.Context, userID, courseID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&model.WishlistItem{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
