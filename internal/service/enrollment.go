package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursepay/internal/bus"
	"coursepay/internal/model"
	"coursepay/internal/repository"
)

// EnrollmentService grants course access. Granting is idempotent per
// (user, course): a retried webhook or a double-fired admin approval creates
// nothing the second time.
type EnrollmentService interface {
	// Activate enrolls the user in every course, inside the caller's DB
	// transaction, and removes any cart items covering those courses.
	Activate(ctx context.Context, tx *gorm.DB, userID string, courseIDs []string) error
	// ActivateFree is the direct trigger path for a zero-price course: no
	// cart item, no transaction, just the enrollment.
	ActivateFree(ctx context.Context, userID, courseID string) error
	ListByUser(ctx context.Context, userID string) ([]*model.Enrollment, error)
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
}

type enrollmentServiceImpl struct {
	db             *gorm.DB
	enrollmentRepo repository.EnrollmentRepository
	cartRepo       repository.CartRepository
	events         *bus.Bus
	log            *zap.Logger
}

func NewEnrollmentService(
	db *gorm.DB,
	enrollmentRepo repository.EnrollmentRepository,
	cartRepo repository.CartRepository,
	events *bus.Bus,
	log *zap.Logger,
) EnrollmentService {
	return &enrollmentServiceImpl{
		db:             db,
		enrollmentRepo: enrollmentRepo,
		cartRepo:       cartRepo,
		events:         events,
		log:            log,
	}
}

func (s *enrollmentServiceImpl) Activate(ctx context.Context, tx *gorm.DB, userID string, courseIDs []string) error {
	for _, courseID := range courseIDs {
		inserted, err := s.enrollmentRepo.CreateIfAbsent(ctx, tx, userID, courseID)
		if err != nil {
			return fmt.Errorf("create enrollment: %w", err)
		}
		if !inserted {
			s.log.Info("enrollment already present, skipping",
				zap.String("user_id", userID),
				zap.String("course_id", courseID))
		}
	}

	if err := s.cartRepo.DeleteByCourses(ctx, tx, userID, courseIDs); err != nil {
		return fmt.Errorf("remove activated cart items: %w", err)
	}

	s.events.Publish(bus.Event{Topic: bus.TopicCartChanged, UserID: userID})
	return nil
}

func (s *enrollmentServiceImpl) ActivateFree(ctx context.Context, userID, courseID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.Activate(ctx, tx, userID, []string{courseID})
	})
}

func (s *enrollmentServiceImpl) ListByUser(ctx context.Context, userID string) ([]*model.Enrollment, error) {
	return s.enrollmentRepo.ListByUser(ctx, userID)
}

func (s *enrollmentServiceImpl) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	return s.enrollmentRepo.Exists(ctx, userID, courseID)
}
