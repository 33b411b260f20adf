package middleware

import (
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "car-rental-api/internal/transport/http/response"
)

// Recovery panic 记录堆栈，响应仍走统一信封
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return ginzap.CustomRecoveryWithZap(l, true, func(c *gin.Context, _ any) {
		resp.Abort(c, resp.Error(resp.CodeServerError, "internal error"))
	})
}
