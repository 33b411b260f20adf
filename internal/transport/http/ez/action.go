package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"car-rental-api/internal/core/auth"
	"car-rental-api/internal/domain"
	mdw "car-rental-api/internal/transport/http/middleware"
	resp "car-rental-api/internal/transport/http/response"
)

// EZ 路由分组 + 错误映射配置；debug 为 true 时错误响应附带 detail
type EZ struct {
	g     *gin.RouterGroup
	log   *zap.Logger
	debug bool
}

func New(g *gin.RouterGroup, log *zap.Logger, debug bool) EZ {
	if log == nil {
		log = zap.NewNop()
	}
	return EZ{g: g, log: log, debug: debug}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.FormFile 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "PATCH" | "DELETE"
	Path    string // 例："/bookings/:id"
	Binder  Binder
	URI     bool // 额外按 `uri:"..."` 绑定路径参数
	Auth    bool // 是否要求登录（检查 userId）
	Status  int  // 成功状态码，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		// 1) 鉴权
		if a.Auth && UserID(c) == "" {
			resp.Write(c, resp.Error(resp.CodeUnauthorized, "unauthorized"))
			return
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr == nil && a.URI {
			bindErr = c.ShouldBindUri(&in)
		}
		if bindErr != nil {
			e.fail(c, domain.Validation("Invalid request body"), bindErr)
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err, nil)
			return
		}
		resp.Write(c, resp.New(status, resp.CodeMsgMap[status], out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// fail 统一错误映射：domain.Error 按 Kind 出状态码，其余一律 500
func (e EZ) fail(c *gin.Context, err error, cause error) {
	var (
		de     *domain.Error
		r      resp.Resp
		detail string
	)
	if errors.As(err, &de) {
		r = resp.Error(de.Status(), de.Msg)
		if de.Err != nil {
			cause = de.Err
		}
	} else {
		r = resp.Error(resp.CodeServerError, "Internal server error")
		cause = err
	}
	if cause != nil {
		detail = cause.Error()
		_ = c.Error(cause)
	}

	fields := []zap.Field{
		zap.String("rid", c.GetString(mdw.KeyRequestID)),
		zap.String("path", c.FullPath()),
		zap.Int("status", r.Code),
		zap.String("msg", r.Msg),
	}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	if r.Code >= http.StatusInternalServerError {
		e.log.Error("request failed", fields...)
	} else {
		e.log.Debug("request rejected", fields...)
	}

	if e.debug && detail != "" {
		r = r.WithDetail(detail)
	}
	resp.Write(c, r)
}

// UserID 鉴权中间件写入的当前用户，匿名为空
func UserID(c *gin.Context) string { return c.GetString(mdw.KeyUserID) }

func Claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(mdw.KeyClaims)
	if !ok {
		return nil
	}
	cl, _ := v.(*auth.Claims)
	return cl
}
