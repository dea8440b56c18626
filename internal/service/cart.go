package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coursepay/internal/bus"
	"coursepay/internal/dto"
	"coursepay/internal/model"
	"coursepay/internal/repository"
)

var (
	ErrAlreadyInCart  = errors.New("course already in cart")
	ErrAlreadyOwned   = errors.New("user already enrolled in course")
	ErrCourseNotFound = errors.New("course not found")
)

type CartService interface {
	// Add puts a paid course in the cart; a free course skips the cart and
	// becomes an enrollment immediately.
	Add(ctx context.Context, userID, courseID string) (*dto.AddToCartResponse, error)
	List(ctx context.Context, userID string) ([]*model.CartItem, error)
	Check(ctx context.Context, userID, courseID string) (bool, error)
	Count(ctx context.Context, userID string) (int64, error)
	Remove(ctx context.Context, userID, itemID string) error
}

type cartServiceImpl struct {
	cartRepo       repository.CartRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	enrollments    EnrollmentService
	events         *bus.Bus
}

func NewCartService(
	cartRepo repository.CartRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	enrollments EnrollmentService,
	events *bus.Bus,
) CartService {
	return &cartServiceImpl{
		cartRepo:       cartRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		enrollments:    enrollments,
		events:         events,
	}
}

func (s *cartServiceImpl) Add(ctx context.Context, userID, courseID string) (*dto.AddToCartResponse, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	enrolled, err := s.enrollmentRepo.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if enrolled {
		return nil, ErrAlreadyOwned
	}

	if course.Price.IsZero() {
		if err := s.enrollments.ActivateFree(ctx, userID, courseID); err != nil {
			return nil, fmt.Errorf("activate free course: %w", err)
		}
		return &dto.AddToCartResponse{Action: dto.CartActionEnrolled}, nil
	}

	exists, err := s.cartRepo.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check cart: %w", err)
	}
	if exists {
		return nil, ErrAlreadyInCart
	}

	item := &model.CartItem{
		ID:           uuid.NewString(),
		UserID:       userID,
		CourseID:     courseID,
		Price:        course.Price,
		CurrentPrice: course.Price,
	}
	if err := s.cartRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("store cart item: %w", err)
	}

	s.events.Publish(bus.Event{Topic: bus.TopicCartChanged, UserID: userID})

	return &dto.AddToCartResponse{Action: dto.CartActionAdded, CartItem: item}, nil
}

func (s *cartServiceImpl) List(ctx context.Context, userID string) ([]*model.CartItem, error) {
	return s.cartRepo.FindByUser(ctx, userID)
}

func (s *cartServiceImpl) Check(ctx context.Context, userID, courseID string) (bool, error) {
	return s.cartRepo.Exists(ctx, userID, courseID)
}

func (s *cartServiceImpl) Count(ctx context.Context, userID string) (int64, error) {
	return s.cartRepo.Count(ctx, userID)
}

func (s *cartServiceImpl) Remove(ctx context.Context, userID, itemID string) error {
	if err := s.cartRepo.Delete(ctx, userID, itemID); err != nil {
		return err
	}
	s.events.Publish(bus.Event{Topic: bus.TopicCartChanged, UserID: userID})
	return nil
}
