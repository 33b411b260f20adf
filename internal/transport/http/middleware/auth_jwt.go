package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"car-rental-api/internal/core/auth"
	resp "car-rental-api/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	KeyRole   = "role"
	KeyClaims = "claims"
)

// Revocations 吊销查询，*auth.Blocklist 实现
type Revocations interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthJWT 必须携带有效且未吊销的 Bearer token
func AuthJWT(j *auth.JWTer, rv Revocations) gin.HandlerFunc {
	return authenticate(j, rv, false)
}

// OptionalAuthJWT 没带 token 按匿名放行；带了就必须有效
func OptionalAuthJWT(j *auth.JWTer, rv Revocations) gin.HandlerFunc {
	return authenticate(j, rv, true)
}

func authenticate(j *auth.JWTer, rv Revocations, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if ah == "" && optional {
			c.Next()
			return
		}
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Abort(c, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if rv != nil {
			revoked, err := rv.IsRevoked(c.Request.Context(), claims.JTI())
			if err != nil {
				resp.Abort(c, resp.Error(resp.CodeServerError, "token check failed"))
				return
			}
			if revoked {
				resp.Abort(c, resp.Error(resp.CodeUnauthorized, "token has been revoked"))
				return
			}
		}
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyClaims, claims)
		c.Next()
	}
}
