package repo

import (
	"context"

	"gorm.io/gorm"

	"car-rental-api/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// FindByID 查不到返回 (nil, nil)
func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findBy(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findBy(ctx, "email = ?", email)
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findBy(ctx, "username = ?", username)
}

func (r *UserRepo) findBy(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where(cond, arg).First(&u).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	us := []domain.User{}
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&us).Error
	return us, err
}

// ListAdmins 按创建时间排序，"first" 策略取第一个
func (r *UserRepo) ListAdmins(ctx context.Context) ([]domain.User, error) {
	us := []domain.User{}
	err := r.db.WithContext(ctx).
		Where("is_admin = ? OR role = ?", true, domain.RoleAdmin).
		Order("created_at ASC").
		Find(&us).Error
	return us, err
}

func (r *UserRepo) UpdateCredentials(ctx context.Context, id, email, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]any{"email": email, "password_hash": passwordHash}).Error
}

func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepo) UpdateRole(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", u.ID).
		Updates(map[string]any{"role": u.Role, "is_admin": u.IsAdmin}).Error
}
