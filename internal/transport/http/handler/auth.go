package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"car-rental-api/internal/service"
	"car-rental-api/internal/transport/http/ez"
)

type Auth struct{ Svc *service.AuthService }

// Priority 认证路由最先挂载
func (Auth) Priority() int { return 10 }

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// 旧版前端字段名
	PasswordHash string `json:"password_hash"`
}

type loginOut struct {
	AccessToken string `json:"access_token"`
}

func (h Auth) MountAPI(g ez.Groups) {
	ez.RegisterAction(g.Public, ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			pw := in.Password
			if pw == "" {
				pw = in.PasswordHash
			}
			tok, err := h.Svc.Login(c.Request.Context(), in.Email, pw)
			return loginOut{AccessToken: tok}, err
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[struct{}, service.UserView]{
		Method: http.MethodGet,
		Path:   "/current_user",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (service.UserView, error) {
			return h.Svc.CurrentUser(c.Request.Context(), ez.UserID(c))
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/logout",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := h.Svc.Logout(c.Request.Context(), ez.Claims(c)); err != nil {
				return nil, err
			}
			return gin.H{"message": "Successfully logged out"}, nil
		},
	})
}
