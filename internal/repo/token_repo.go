package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"car-rental-api/internal/domain"
)

// TokenRepo token_blocklist 表，实现 auth.RevocationStore
type TokenRepo struct{ db *gorm.DB }

func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.RevokedToken{}).Where("jti = ?", jti).Count(&n).Error
	return n > 0, err
}

// Revoke 重复登出幂等
func (r *TokenRepo) Revoke(ctx context.Context, jti string, revokedAt, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(&domain.RevokedToken{JTI: jti, CreatedAt: revokedAt, ExpiresAt: expiresAt}).Error
}

// PurgeExpired 过期 token 本身已失效，记录可以清掉
func (r *TokenRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&domain.RevokedToken{})
	return res.RowsAffected, res.Error
}
