package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"car-rental-api/internal/domain"
	"car-rental-api/internal/service"
	"car-rental-api/internal/transport/http/ez"
)

type Reviews struct{ Svc *service.ReviewService }

type createReviewIn struct {
	CarID   string  `json:"car_id"`
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

func (h Reviews) MountAPI(g ez.Groups) {
	ez.RegisterAction(g.Authed, ez.Action[createReviewIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/reviews",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createReviewIn) (gin.H, error) {
			r, err := h.Svc.Create(c.Request.Context(), ez.UserID(c), service.ReviewInput{
				CarID: in.CarID, Rating: in.Rating, Comment: in.Comment,
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"review_id": r.ID}, nil
		},
	})

	ez.RegisterAction(g.Public, ez.Action[struct{}, []domain.Review]{
		Method: http.MethodGet,
		Path:   "/reviews",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Review, error) {
			return h.Svc.List(c.Request.Context())
		},
	})

	ez.RegisterAction(g.Public, ez.Action[carURI, []domain.CarReview]{
		Method: http.MethodGet,
		Path:   "/reviews/car/:car_id",
		URI:    true,
		Handler: func(c *gin.Context, in *carURI) ([]domain.CarReview, error) {
			return h.Svc.ListByCar(c.Request.Context(), in.CarID)
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[idURI, gin.H]{
		Method: http.MethodDelete,
		Path:   "/reviews/:id",
		URI:    true,
		Auth:   true,
		Handler: func(c *gin.Context, in *idURI) (gin.H, error) {
			if err := h.Svc.Delete(c.Request.Context(), ez.UserID(c), in.ID); err != nil {
				return nil, err
			}
			return gin.H{"message": "Review deleted successfully"}, nil
		},
	})
}
