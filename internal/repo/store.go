package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"car-rental-api/internal/domain"
)

// Store 聚合各仓储；Tx 内拿到的是绑定同一事务的副本
type Store struct {
	db *gorm.DB

	Users    *UserRepo
	Cars     *CarRepo
	Bookings *BookingRepo
	Reviews  *ReviewRepo
	Tokens   *TokenRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    &UserRepo{db: db},
		Cars:     &CarRepo{db: db},
		Bookings: &BookingRepo{db: db},
		Reviews:  &ReviewRepo{db: db},
		Tokens:   &TokenRepo{db: db},
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Tx fn 返回错误即回滚
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Migrate 建表（含外键级联）
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Car{},
		&domain.Booking{},
		&domain.Review{},
		&domain.RevokedToken{},
	)
}

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// IsDupKey 不依赖 gorm.ErrDuplicatedKey（需开启 TranslateError），按驱动报错文本判断
func IsDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
