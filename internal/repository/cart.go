package repository

import (
	"context"

	"gorm.io/gorm"

	"coursepay/internal/model"
)

type CartRepository interface {
	Create(ctx context.Context, item *model.CartItem) error
	FindByUser(ctx context.Context, userID string) ([]*model.CartItem, error)
	FindByIDs(ctx context.Context, userID string, itemIDs []string) ([]*model.CartItem, error)
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	Count(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, itemID string) error
	DeleteByCourses(ctx context.Context, tx *gorm.DB, userID string, courseIDs []string) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) Create(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartRepoImpl) FindByUser(ctx context.Context, userID string) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *cartRepoImpl) FindByIDs(ctx context.Context, userID string, itemIDs []string) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, itemIDs).
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *cartRepoImpl) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error

	return count > 0, err
}

func (r *cartRepoImpl) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error

	return count, err
}

func (r *cartRepoImpl) Delete(ctx context.Context, userID, itemID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, itemID).
		Delete(&model.CartItem{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepoImpl) DeleteByCourses(ctx context.Context, tx *gorm.DB, userID string, courseIDs []string) error {
	if len(courseIDs) == 0 {
		return nil
	}
	return tx.WithContext(ctx).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Delete(&model.CartItem{}).Error
}
