package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"car-rental-api/internal/domain"
	"car-rental-api/internal/service"
	"car-rental-api/internal/transport/http/ez"
)

type Cars struct{ Svc *service.FleetService }

// carIn price_per_day 既可以是数字也可以是数字字符串
type carIn struct {
	ID          string      `uri:"id" json:"-"`
	Brand       string      `json:"brand"`
	Model       string      `json:"model"`
	PricePerDay json.Number `json:"price_per_day"`
	Image1      string      `json:"image1"`
	Image2      string      `json:"image2"`
	Status      string      `json:"status"`
}

func (in carIn) input() service.CarInput {
	return service.CarInput{
		Brand: in.Brand, Model: in.Model, Image1: in.Image1, Image2: in.Image2,
		PricePerDay: in.PricePerDay.String(), Status: in.Status,
	}
}

type carStatusIn struct {
	ID     string `uri:"id" json:"-"`
	Status string `json:"status"`
}

func (h Cars) MountAPI(g ez.Groups) {
	ez.RegisterAction(g.Authed, ez.Action[carIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/cars",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *carIn) (gin.H, error) {
			car, err := h.Svc.Create(c.Request.Context(), ez.UserID(c), in.input())
			if err != nil {
				return nil, err
			}
			return gin.H{"car_id": car.ID}, nil
		},
	})

	// multipart/form-data，字段名 file
	ez.RegisterAction(g.Authed, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/cars/images",
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			fh, err := c.FormFile("file")
			if err != nil {
				return nil, domain.Validation("No file uploaded")
			}
			f, err := fh.Open()
			if err != nil {
				return nil, domain.Validation("Error reading file")
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return nil, domain.Validation("Error reading file")
			}
			url, err := h.Svc.UploadImage(c.Request.Context(), ez.UserID(c), data)
			if err != nil {
				return nil, err
			}
			return gin.H{"url": url}, nil
		},
	})

	ez.RegisterAction(g.Public, ez.Action[struct{}, []domain.Car]{
		Method: http.MethodGet,
		Path:   "/cars",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Car, error) {
			return h.Svc.List(c.Request.Context())
		},
	})

	ez.RegisterAction(g.Public, ez.Action[idURI, *domain.Car]{
		Method: http.MethodGet,
		Path:   "/cars/:id",
		URI:    true,
		Handler: func(c *gin.Context, in *idURI) (*domain.Car, error) {
			return h.Svc.Get(c.Request.Context(), in.ID)
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[carIn, *domain.Car]{
		Method: http.MethodPatch,
		Path:   "/cars/:id",
		Binder: ez.BindJSON,
		URI:    true,
		Auth:   true,
		Handler: func(c *gin.Context, in *carIn) (*domain.Car, error) {
			return h.Svc.Update(c.Request.Context(), ez.UserID(c), in.ID, in.input())
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[carStatusIn, *domain.Car]{
		Method: http.MethodPatch,
		Path:   "/cars/:id/status",
		Binder: ez.BindJSON,
		URI:    true,
		Auth:   true,
		Handler: func(c *gin.Context, in *carStatusIn) (*domain.Car, error) {
			return h.Svc.UpdateStatus(c.Request.Context(), ez.UserID(c), in.ID, in.Status)
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[idURI, gin.H]{
		Method: http.MethodDelete,
		Path:   "/cars/:id",
		URI:    true,
		Auth:   true,
		Handler: func(c *gin.Context, in *idURI) (gin.H, error) {
			if err := h.Svc.Delete(c.Request.Context(), ez.UserID(c), in.ID); err != nil {
				return nil, err
			}
			return gin.H{"message": "Car deleted successfully"}, nil
		},
	})
}
