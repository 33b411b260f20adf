package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"car-rental-api/internal/core/auth"
	"car-rental-api/internal/core/config"
	"car-rental-api/internal/core/server"
	"car-rental-api/internal/transport/http/ez"
	mdw "car-rental-api/internal/transport/http/middleware"
	resp "car-rental-api/internal/transport/http/response"
)

type Deps struct {
	Log       *zap.Logger
	App       config.App
	DB        *gorm.DB // 健康检查用，可为 nil
	JWT       *auth.JWTer
	Blocklist mdw.Revocations
	Modules   []APIModule
}

func NewAPIEngine(d Deps) *gin.Engine {
	h := d.App.HTTP
	r := server.NewRouter(d.Log)

	// 中间件
	r.Use(mdw.RequestID())
	if h.RateLimitRPS > 0 {
		// 单 IP 取全局配额的 1/4
		r.Use(
			mdw.RateLimit(rate.Limit(h.RateLimitRPS), h.RateLimitBurst),
			mdw.RateLimitPerIP(rate.Limit(h.RateLimitRPS/4), max(1, h.RateLimitBurst/4), 10*time.Minute),
		)
	}
	if h.MaxConcurrent > 0 {
		r.Use(mdw.ConcurrencyLimit(h.MaxConcurrent))
	}
	r.Use(
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(time.Duration(h.RequestTimeoutSec)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if d.DB != nil {
			if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				resp.Write(c, resp.Error(resp.CodeUnavailable, "database unreachable"))
				return
			}
		}
		resp.Write(c, resp.OK(gin.H{"ok": 1}))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 路由挂在根路径；三个分组只是中间件不同
	debug := d.App.Debug()
	authed := r.Group("", mdw.AuthJWT(d.JWT, d.Blocklist))
	optional := r.Group("", mdw.OptionalAuthJWT(d.JWT, d.Blocklist))
	groups := ez.Groups{
		Public:   ez.New(&r.RouterGroup, d.Log, debug),
		Authed:   ez.New(authed, d.Log, debug),
		Optional: ez.New(optional, d.Log, debug),
	}

	reg := &Registry{}
	reg.Register(d.Modules...)
	reg.MountAll(groups)
	return r
}
