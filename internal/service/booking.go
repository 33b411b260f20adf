package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"car-rental-api/internal/domain"
	"car-rental-api/internal/events"
	"car-rental-api/internal/notify"
	"car-rental-api/internal/repo"
	"car-rental-api/pkg/utils"
)

const msgAlreadyBooked = "Car is already booked for the selected dates"

type BookingService struct{ d *Deps }

type CreateBookingInput struct {
	CarID     string
	StartDate string
	EndDate   string
	Status    string
}

type bookingRequest struct {
	carID      string
	start, end domain.Date
	status     domain.BookingStatus
}

func (in CreateBookingInput) validate() (bookingRequest, error) {
	r := bookingRequest{carID: strings.TrimSpace(in.CarID), status: domain.BookingPending}
	if r.carID == "" || in.StartDate == "" || in.EndDate == "" {
		return r, domain.Validation("Missing required fields")
	}
	var err error
	if r.start, err = domain.ParseDate(in.StartDate); err != nil {
		return r, domain.Validation("Invalid date format. Use YYYY-MM-DD.")
	}
	if r.end, err = domain.ParseDate(in.EndDate); err != nil {
		return r, domain.Validation("Invalid date format. Use YYYY-MM-DD.")
	}
	if !r.start.Before(r.end) {
		return r, domain.Validation("End date must be after start date")
	}
	if in.Status != "" {
		s := domain.BookingStatus(in.Status)
		if !s.Active() {
			return r, domain.Validation("Invalid status")
		}
		r.status = s
	}
	return r, nil
}

// Create 检查重叠、写入预订、车辆置为 booked、通知下单用户；通知失败整体回滚
func (s *BookingService) Create(ctx context.Context, callerID string, in CreateBookingInput) (*domain.Booking, error) {
	req, err := in.validate()
	if err != nil {
		return nil, err
	}

	var b *domain.Booking
	err = s.d.Store.Tx(ctx, func(tx *repo.Store) error {
		u, err := loadCaller(ctx, tx, callerID)
		if err != nil {
			return err
		}
		if u.Administrator() {
			return domain.Forbidden("Admins are not allowed to create bookings")
		}
		car, err := tx.Cars.LockByID(ctx, req.carID)
		if err != nil {
			return err
		}
		if car == nil {
			return domain.NotFound("Car not found")
		}
		if car.Status == domain.CarUnderMaintenance {
			return domain.Conflict("Car is not available")
		}
		clash, err := tx.Bookings.FindOverlapping(ctx, car.ID, req.start, req.end, "")
		if err != nil {
			return err
		}
		if clash != nil {
			bookingConflicts.Inc()
			return domain.Conflict(msgAlreadyBooked)
		}

		b = &domain.Booking{
			ID:        utils.NewID(),
			StartDate: req.start,
			EndDate:   req.end,
			Status:    req.status,
			UserID:    u.ID,
			CarID:     car.ID,
		}
		if err := tx.Bookings.Create(ctx, b); err != nil {
			return err
		}
		if err := tx.Cars.UpdateStatus(ctx, car.ID, domain.CarBooked); err != nil {
			return err
		}
		return s.d.send(ctx, notify.BookingCreated(u, car, b))
	})
	if err != nil {
		return nil, err
	}

	bookingsCreated.Inc()
	s.d.Log.Info("booking created", zap.String("booking_id", b.ID), zap.String("car_id", b.CarID), zap.String("user_id", b.UserID))
	s.d.publish(ctx, events.BookingCreated, b)
	return b, nil
}

type StatusResult struct {
	Status           domain.BookingStatus `json:"status"`
	NotificationSent bool                 `json:"notification_sent"`
}

// UpdateStatus 状态可任意互转；离开 cancelled 需重新做重叠检查
func (s *BookingService) UpdateStatus(ctx context.Context, callerID, bookingID, status string) (StatusResult, error) {
	next := domain.BookingStatus(status)
	if !next.Valid() {
		return StatusResult{}, domain.Validation("Invalid status")
	}

	var (
		res     = StatusResult{Status: next}
		changed *domain.Booking
	)
	err := s.d.Store.Tx(ctx, func(tx *repo.Store) error {
		caller, err := loadCaller(ctx, tx, callerID)
		if err != nil {
			return err
		}
		b, err := tx.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.NotFound("Booking not found")
		}
		if b.UserID != caller.ID && !caller.Administrator() {
			return domain.Forbidden("Access denied")
		}
		if b.Status == next {
			return nil
		}

		car, err := tx.Cars.LockByID(ctx, b.CarID)
		if err != nil {
			return err
		}
		prev := b.Status
		b.Status = next

		switch {
		case !prev.Active() && next.Active():
			if car != nil && car.Status == domain.CarUnderMaintenance {
				return domain.Conflict("Car is not available")
			}
			clash, err := tx.Bookings.FindOverlapping(ctx, b.CarID, b.StartDate, b.EndDate, b.ID)
			if err != nil {
				return err
			}
			if clash != nil {
				bookingConflicts.Inc()
				return domain.Conflict(msgAlreadyBooked)
			}
			if err := tx.Bookings.UpdateStatus(ctx, b.ID, next); err != nil {
				return err
			}
			// 已过期的预订恢复后不占用车辆
			if err := reconcileCar(ctx, tx, b.CarID, s.d.today()); err != nil {
				return err
			}
		default:
			if err := tx.Bookings.UpdateStatus(ctx, b.ID, next); err != nil {
				return err
			}
			if next == domain.BookingCancelled {
				if err := reconcileCar(ctx, tx, b.CarID, s.d.today()); err != nil {
					return err
				}
			}
		}
		changed = b

		if !next.Notifiable() {
			return nil
		}
		owner := caller
		if b.UserID != caller.ID {
			if owner, err = tx.Users.FindByID(ctx, b.UserID); err != nil {
				return err
			}
		}
		if owner != nil {
			if err := s.d.send(ctx, notify.BookingStatusChanged(owner, b)); err != nil {
				return err
			}
			res.NotificationSent = true
		}
		if next == domain.BookingCancelled && owner == caller && !caller.Administrator() {
			to, err := s.d.adminRecipients(ctx, tx)
			if err != nil {
				return err
			}
			if len(to) == 0 {
				s.d.Log.Warn("no admin to notify about cancellation",
					zap.String("booking_id", b.ID), zap.String("policy", s.d.AdminPolicy))
				return nil
			}
			if err := s.d.send(ctx, notify.BookingCancelledByUser(to, caller, b)); err != nil {
				return err
			}
			res.NotificationSent = true
		}
		return nil
	})
	if err != nil {
		return StatusResult{}, err
	}
	if changed != nil {
		bookingTransitions.WithLabelValues(string(next)).Inc()
		s.d.publish(ctx, events.BookingStatusChanged, changed)
	}
	return res, nil
}

// Delete 仅管理员。车辆状态不是直接重置为 available，而是按剩余预订重新计算：
// 仍有未取消且未结束的预订则保持 booked；under_maintenance 保持不变。
func (s *BookingService) Delete(ctx context.Context, callerID, bookingID string) error {
	var deleted *domain.Booking
	err := s.d.Store.Tx(ctx, func(tx *repo.Store) error {
		if _, err := requireAdmin(ctx, tx, callerID); err != nil {
			return err
		}
		b, err := tx.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.NotFound("Booking not found")
		}
		if _, err := tx.Cars.LockByID(ctx, b.CarID); err != nil {
			return err
		}
		if _, err := tx.Bookings.Delete(ctx, b.ID); err != nil {
			return err
		}
		deleted = b
		return reconcileCar(ctx, tx, b.CarID, s.d.today())
	})
	if err != nil {
		return err
	}
	s.d.publish(ctx, events.BookingDeleted, deleted)
	return nil
}

func (s *BookingService) Get(ctx context.Context, callerID, bookingID string) (*domain.Booking, error) {
	caller, err := loadCaller(ctx, s.d.Store, callerID)
	if err != nil {
		return nil, err
	}
	b, err := s.d.Store.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NotFound("Booking not found")
	}
	if b.UserID != caller.ID && !caller.Administrator() {
		return nil, domain.Forbidden("Access denied")
	}
	return b, nil
}

// List 管理员看全部，普通用户只看自己的
func (s *BookingService) List(ctx context.Context, callerID string) ([]domain.Booking, error) {
	caller, err := loadCaller(ctx, s.d.Store, callerID)
	if err != nil {
		return nil, err
	}
	if caller.Administrator() {
		return s.d.Store.Bookings.List(ctx)
	}
	return s.d.Store.Bookings.ListByUser(ctx, caller.ID)
}

func (s *BookingService) ListByUser(ctx context.Context, callerID, userID string) ([]domain.Booking, error) {
	caller, err := loadCaller(ctx, s.d.Store, callerID)
	if err != nil {
		return nil, err
	}
	if caller.ID != userID {
		if !caller.Administrator() {
			return nil, domain.Forbidden("Access denied")
		}
		target, err := s.d.Store.Users.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, domain.NotFound("User not found")
		}
	}
	return s.d.Store.Bookings.ListByUser(ctx, userID)
}

// ScheduleEntry 公开的排期视图，user_id 只对管理员可见
type ScheduleEntry struct {
	ID        string               `json:"id"`
	StartDate domain.Date          `json:"start_date"`
	EndDate   domain.Date          `json:"end_date"`
	Status    domain.BookingStatus `json:"status"`
	UserID    string               `json:"user_id,omitempty"`
}

// ListByCar viewerID 可为空（匿名访问）
func (s *BookingService) ListByCar(ctx context.Context, viewerID, carID string) ([]ScheduleEntry, error) {
	car, err := s.d.Store.Cars.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, domain.NotFound("Car not found")
	}
	admin := false
	if viewerID != "" {
		v, err := s.d.Store.Users.FindByID(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		admin = v.Administrator()
	}
	bs, err := s.d.Store.Bookings.ListByCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	out := make([]ScheduleEntry, 0, len(bs))
	for _, b := range bs {
		e := ScheduleEntry{ID: b.ID, StartDate: b.StartDate, EndDate: b.EndDate, Status: b.Status}
		if admin {
			e.UserID = b.UserID
		}
		out = append(out, e)
	}
	return out, nil
}
