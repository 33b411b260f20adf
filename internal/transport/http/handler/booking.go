package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"car-rental-api/internal/domain"
	"car-rental-api/internal/service"
	"car-rental-api/internal/transport/http/ez"
)

type Bookings struct{ Svc *service.BookingService }

type createBookingIn struct {
	CarID     string `json:"car_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

type bookingStatusIn struct {
	ID     string `uri:"id" json:"-"`
	Status string `json:"status"`
}

type userURI struct {
	UserID string `uri:"user_id" binding:"required"`
}

type carURI struct {
	CarID string `uri:"car_id" binding:"required"`
}

func (h Bookings) MountAPI(g ez.Groups) {
	ez.RegisterAction(g.Authed, ez.Action[createBookingIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/bookings",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createBookingIn) (gin.H, error) {
			b, err := h.Svc.Create(c.Request.Context(), ez.UserID(c), service.CreateBookingInput{
				CarID: in.CarID, StartDate: in.StartDate, EndDate: in.EndDate, Status: in.Status,
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"booking_id": b.ID}, nil
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[struct{}, []domain.Booking]{
		Method: http.MethodGet,
		Path:   "/bookings",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Booking, error) {
			return h.Svc.List(c.Request.Context(), ez.UserID(c))
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[idURI, *domain.Booking]{
		Method: http.MethodGet,
		Path:   "/bookings/:id",
		URI:    true,
		Auth:   true,
		Handler: func(c *gin.Context, in *idURI) (*domain.Booking, error) {
			return h.Svc.Get(c.Request.Context(), ez.UserID(c), in.ID)
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[userURI, []domain.Booking]{
		Method: http.MethodGet,
		Path:   "/bookings/user/:user_id",
		URI:    true,
		Auth:   true,
		Handler: func(c *gin.Context, in *userURI) ([]domain.Booking, error) {
			return h.Svc.ListByUser(c.Request.Context(), ez.UserID(c), in.UserID)
		},
	})

	ez.RegisterAction(g.Optional, ez.Action[carURI, []service.ScheduleEntry]{
		Method: http.MethodGet,
		Path:   "/bookings/car/:car_id",
		URI:    true,
		Handler: func(c *gin.Context, in *carURI) ([]service.ScheduleEntry, error) {
			return h.Svc.ListByCar(c.Request.Context(), ez.UserID(c), in.CarID)
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[bookingStatusIn, service.StatusResult]{
		Method: http.MethodPatch,
		Path:   "/bookings/:id",
		Binder: ez.BindJSON,
		URI:    true,
		Auth:   true,
		Handler: func(c *gin.Context, in *bookingStatusIn) (service.StatusResult, error) {
			return h.Svc.UpdateStatus(c.Request.Context(), ez.UserID(c), in.ID, in.Status)
		},
	})

	ez.RegisterAction(g.Authed, ez.Action[idURI, gin.H]{
		Method: http.MethodDelete,
		Path:   "/bookings/:id",
		URI:    true,
		Auth:   true,
		Handler: func(c *gin.Context, in *idURI) (gin.H, error) {
			if err := h.Svc.Delete(c.Request.Context(), ez.UserID(c), in.ID); err != nil {
				return nil, err
			}
			return gin.H{"message": "Booking deleted successfully"}, nil
		},
	})
}
