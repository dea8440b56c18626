package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coursepay/internal/model"
)

type EnrollmentRepository interface {
	// CreateIfAbsent grants the enrollment once; a second call for the same
	// (user, course) pair is a no-op and reports inserted=false.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, userID, courseID string) (bool, error)
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Enrollment, error)
	Delete(ctx context.Context, tx *gorm.DB, userID string, courseIDs []string) error
}

type enrollmentRepoImpl struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepoImpl{
		db: db,
	}
}

func (r *enrollmentRepoImpl) CreateIfAbsent(ctx context.Context, tx *gorm.DB, userID, courseID string) (bool, error) {
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *enrollmentRepoImpl) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error

	return count > 0, err
}

func (r *enrollmentRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Enrollment, error) {
	var enrollments []*model.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error

	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepoImpl) Delete(ctx context.Context, tx *gorm.DB, userID string, courseIDs []string) error {
	if len(courseIDs) == 0 {
		return nil
	}
	return tx.WithContext(ctx).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Delete(&model.Enrollment{}).Error
}
