package service

import (
	"context"
	"strings"

	"car-rental-api/internal/domain"
	"car-rental-api/pkg/utils"
)

type ReviewService struct{ d *Deps }

type ReviewInput struct {
	CarID   string
	Rating  *int
	Comment *string
}

func (in ReviewInput) validate() error {
	if strings.TrimSpace(in.CarID) == "" || in.Rating == nil {
		return domain.Validation("Missing required fields")
	}
	if *in.Rating < domain.MinRating || *in.Rating > domain.MaxRating {
		return domain.Validation("Rating must be between 1 and 5")
	}
	return nil
}

func (s *ReviewService) Create(ctx context.Context, callerID string, in ReviewInput) (*domain.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	u, err := loadCaller(ctx, s.d.Store, callerID)
	if err != nil {
		return nil, err
	}
	car, err := s.d.Store.Cars.FindByID(ctx, strings.TrimSpace(in.CarID))
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, domain.NotFound("Car not found")
	}
	r := &domain.Review{
		ID:      utils.NewID(),
		Rating:  *in.Rating,
		Comment: in.Comment,
		UserID:  u.ID,
		CarID:   car.ID,
	}
	if err := s.d.Store.Reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReviewService) Delete(ctx context.Context, callerID, reviewID string) error {
	u, err := loadCaller(ctx, s.d.Store, callerID)
	if err != nil {
		return err
	}
	if !u.Administrator() {
		return domain.Forbidden("Only admins can delete reviews")
	}
	ok, err := s.d.Store.Reviews.Delete(ctx, reviewID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Review not found")
	}
	return nil
}

func (s *ReviewService) List(ctx context.Context) ([]domain.Review, error) {
	return s.d.Store.Reviews.List(ctx)
}

func (s *ReviewService) ListByCar(ctx context.Context, carID string) ([]domain.CarReview, error) {
	return s.d.Store.Reviews.ListByCar(ctx, carID)
}
