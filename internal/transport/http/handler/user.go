package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"car-rental-api/internal/service"
	"car-rental-api/internal/transport/http/ez"
)

type Users struct{ Svc *service.UserService }

type idURI struct {
	ID string `uri:"id" binding:"required"`
}

type createUserIn struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserIn struct {
	ID       string `uri:"id" json:"-"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h Users) MountAPI(g ez.Groups) {
	ez.RegisterAction(g.Optional, ez.Action[createUserIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createUserIn) (gin.H, error) {
			u, err := h.Svc.Register(c.Request.Context(), ez.UserID(c), service.RegisterInput{
				Username: in.Username, Email: in.Email, Password: in.Password,
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"user_id": u.ID}, nil
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[struct{}, []service.UserView]{
		Method: http.MethodGet,
		Path:   "/users",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]service.UserView, error) {
			return h.Svc.List(c.Request.Context(), ez.UserID(c))
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[idURI, service.UserView]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		URI:    true,
		Auth:   true,
		Handler: func(c *gin.Context, in *idURI) (service.UserView, error) {
			return h.Svc.Get(c.Request.Context(), ez.UserID(c), in.ID)
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[updateUserIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: ez.BindJSON,
		URI:    true,
		Auth:   true,
		Handler: func(c *gin.Context, in *updateUserIn) (gin.H, error) {
			err := h.Svc.Update(c.Request.Context(), ez.UserID(c), in.ID, service.UpdateUserInput{
				Email: in.Email, Password: in.Password,
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "User updated successfully"}, nil
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[idURI, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		URI:    true,
		Auth:   true,
		Handler: func(c *gin.Context, in *idURI) (gin.H, error) {
			if err := h.Svc.Delete(c.Request.Context(), ez.UserID(c), in.ID); err != nil {
				return nil, err
			}
			return gin.H{"message": "User deleted successfully"}, nil
		},
	})
}
