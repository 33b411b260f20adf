package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"car-rental-api/internal/domain"
)

type CarRepo struct{ db *gorm.DB }

func (r *CarRepo) Create(ctx context.Context, c *domain.Car) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByID 查不到返回 (nil, nil)
func (r *CarRepo) FindByID(ctx context.Context, id string) (*domain.Car, error) {
	var c domain.Car
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// LockByID SELECT ... FOR UPDATE，须在事务内调用；sqlite 方言会忽略锁子句
func (r *CarRepo) LockByID(ctx context.Context, id string) (*domain.Car, error) {
	var c domain.Car
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&c).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CarRepo) FindByBrandModel(ctx context.Context, brand, model string) (*domain.Car, error) {
	var c domain.Car
	err := r.db.WithContext(ctx).Where("brand = ? AND model = ?", brand, model).First(&c).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CarRepo) List(ctx context.Context) ([]domain.Car, error) {
	cs := []domain.Car{}
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&cs).Error
	return cs, err
}

// UpdateDetails 整体替换可编辑字段（不含状态）
func (r *CarRepo) UpdateDetails(ctx context.Context, c *domain.Car) error {
	return r.db.WithContext(ctx).Model(&domain.Car{}).Where("id = ?", c.ID).
		Updates(map[string]any{
			"brand":         c.Brand,
			"model":         c.Model,
			"price_per_day": c.PricePerDay,
			"image1":        c.Image1,
			"image2":        c.Image2,
		}).Error
}

func (r *CarRepo) UpdateStatus(ctx context.Context, id string, s domain.CarStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Car{}).Where("id = ?", id).
		Update("status", s).Error
}

func (r *CarRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Car{})
	return res.RowsAffected > 0, res.Error
}
