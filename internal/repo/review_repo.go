package repo

import (
	"context"

	"gorm.io/gorm"

	"car-rental-api/internal/domain"
)

type ReviewRepo struct{ db *gorm.DB }

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *ReviewRepo) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	var rv domain.Review
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rv).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepo) List(ctx context.Context) ([]domain.Review, error) {
	rs := []domain.Review{}
	err := r.db.WithContext(ctx).Order("timestamp DESC").Find(&rs).Error
	return rs, err
}

func (r *ReviewRepo) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	rs := []domain.Review{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC").Find(&rs).Error
	return rs, err
}

// ListByCar 左连接带出用户名和车型，缺失时为 Unknown
func (r *ReviewRepo) ListByCar(ctx context.Context, carID string) ([]domain.CarReview, error) {
	out := []domain.CarReview{}
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select(`reviews.id, COALESCE(users.username, 'Unknown') AS username,
			COALESCE(cars.model, 'Unknown') AS car_model,
			reviews.rating, reviews.comment, reviews.timestamp`).
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Joins("LEFT JOIN cars ON cars.id = reviews.car_id").
		Where("reviews.car_id = ?", carID).
		Order("reviews.timestamp DESC").
		Scan(&out).Error
	return out, err
}

func (r *ReviewRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Review{})
	return res.RowsAffected > 0, res.Error
}

func (r *ReviewRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Review{}).Error
}

func (r *ReviewRepo) DeleteByCar(ctx context.Context, carID string) error {
	return r.db.WithContext(ctx).Where("car_id = ?", carID).Delete(&domain.Review{}).Error
}
