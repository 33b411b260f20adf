package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"car-rental-api/internal/core/cache"
)

// RevocationStore 吊销记录的持久化（token_blocklist 表）
type RevocationStore interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Revoke(ctx context.Context, jti string, revokedAt, expiresAt time.Time) error
}

type revocation struct {
	Revoked bool `json:"revoked"`
}

// Blocklist 每次鉴权都要查；配置了 Redis 时走读穿缓存
type Blocklist struct {
	Store RevocationStore
	Cache *cache.Cache // 可为 nil
	TTL   time.Duration
}

func cacheKey(jti string) string { return "token:revoked:" + jti }

func (b *Blocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if b.Cache == nil {
		return b.Store.IsRevoked(ctx, jti)
	}
	ttl := b.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	r, err := cache.GetOrLoadJSON(b.Cache, ctx, cacheKey(jti), ttl, func(ctx context.Context) (*revocation, error) {
		revoked, err := b.Store.IsRevoked(ctx, jti)
		if err != nil {
			return nil, err
		}
		return &revocation{Revoked: revoked}, nil
	})
	if err != nil {
		return false, err
	}
	return r != nil && r.Revoked, nil
}

// Revoke 先落库，再覆盖缓存里可能存在的 "未吊销" 结果
func (b *Blocklist) Revoke(ctx context.Context, c *Claims) error {
	now := time.Now().UTC()
	if err := b.Store.Revoke(ctx, c.JTI(), now, c.Expiry()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if b.Cache != nil {
		ttl := time.Until(c.Expiry())
		if ttl < time.Minute {
			ttl = time.Minute
		}
		key := cacheKey(c.JTI())
		if err := cache.SetJSON(b.Cache, ctx, key, &revocation{Revoked: true}, ttl); err != nil {
			// 写不进去就删掉旧结果，下次查询回源到库
			if derr := b.Cache.Del(ctx, key); derr != nil {
				return fmt.Errorf("revoke token cache: %w", errors.Join(err, derr))
			}
		}
	}
	return nil
}
