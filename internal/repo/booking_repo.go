package repo

import (
	"context"

	"gorm.io/gorm"

	"car-rental-api/internal/domain"
)

type BookingRepo struct{ db *gorm.DB }

func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// FindByID 查不到返回 (nil, nil)
func (r *BookingRepo) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindOverlapping 返回与 [start, end) 相交的任一未取消预订；excludeID 用于重新激活自身
func (r *BookingRepo) FindOverlapping(ctx context.Context, carID string, start, end domain.Date, excludeID string) (*domain.Booking, error) {
	q := r.db.WithContext(ctx).
		Where("car_id = ? AND status <> ?", carID, domain.BookingCancelled).
		Where("start_date < ? AND end_date > ?", end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var b domain.Booking
	err := q.Order("start_date ASC").First(&b).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CountActiveFrom 未取消、且 end_date 晚于 day 的预订数（覆盖当天或之后）
func (r *BookingRepo) CountActiveFrom(ctx context.Context, carID string, day domain.Date) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("car_id = ? AND status <> ? AND end_date > ?", carID, domain.BookingCancelled, day).
		Count(&n).Error
	return n, err
}

func (r *BookingRepo) List(ctx context.Context) ([]domain.Booking, error) {
	return r.listWhere(ctx, nil)
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return r.listWhere(ctx, func(q *gorm.DB) *gorm.DB { return q.Where("user_id = ?", userID) })
}

func (r *BookingRepo) ListByCar(ctx context.Context, carID string) ([]domain.Booking, error) {
	return r.listWhere(ctx, func(q *gorm.DB) *gorm.DB { return q.Where("car_id = ?", carID) })
}

func (r *BookingRepo) listWhere(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	if scope != nil {
		q = scope(q)
	}
	bs := []domain.Booking{}
	err := q.Order("start_date ASC, created_at ASC").Find(&bs).Error
	return bs, err
}

// ActiveCarIDsByUser 删除用户前收集需要重新对账的车
func (r *BookingRepo) ActiveCarIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("user_id = ? AND status <> ?", userID, domain.BookingCancelled).
		Distinct().Pluck("car_id", &ids).Error
	return ids, err
}

func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, s domain.BookingStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Booking{}).Where("id = ?", id).
		Update("status", s).Error
}

func (r *BookingRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Booking{})
	return res.RowsAffected > 0, res.Error
}

func (r *BookingRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Booking{}).Error
}

func (r *BookingRepo) DeleteByCar(ctx context.Context, carID string) error {
	return r.db.WithContext(ctx).Where("car_id = ?", carID).Delete(&domain.Booking{}).Error
}
