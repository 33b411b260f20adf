// Package service 业务规则：鉴权判断、事务边界、通知与事件。
// 输入校验先于任何存储访问；需要管理员身份的操作按库里的用户记录判断。
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"car-rental-api/internal/core/auth"
	"car-rental-api/internal/domain"
	"car-rental-api/internal/events"
	"car-rental-api/internal/notify"
	"car-rental-api/internal/repo"
	"car-rental-api/internal/storage"
)

// 管理员通知策略
const (
	AdminPolicyAll   = "all"
	AdminPolicyFirst = "first"
	AdminPolicyNone  = "none"
)

type Deps struct {
	Store     *repo.Store
	Notifier  notify.Notifier
	Events    events.Publisher   // 可为 nil
	Images    storage.ImageStore // 可为 nil
	JWT       *auth.JWTer
	Blocklist *auth.Blocklist
	Log       *zap.Logger

	AdminPolicy string
	Now         func() time.Time
}

type Services struct {
	Auth     *AuthService
	Users    *UserService
	Fleet    *FleetService
	Bookings *BookingService
	Reviews  *ReviewService
}

func New(d Deps) *Services {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.AdminPolicy == "" {
		d.AdminPolicy = AdminPolicyAll
	}
	dp := &d
	return &Services{
		Auth:     &AuthService{d: dp},
		Users:    &UserService{d: dp},
		Fleet:    &FleetService{d: dp},
		Bookings: &BookingService{d: dp},
		Reviews:  &ReviewService{d: dp},
	}
}

func (d *Deps) today() domain.Date { return domain.DateOf(d.Now()) }

func (d *Deps) send(ctx context.Context, m notify.Message) error {
	if err := d.Notifier.Send(ctx, m); err != nil {
		notificationFailures.Inc()
		d.Log.Warn("send notification failed", zap.String("subject", m.Subject), zap.Error(err))
		return domain.Dependency("Failed to send email notification", err)
	}
	return nil
}

// publish 事务提交后调用，失败只记日志
func (d *Deps) publish(ctx context.Context, typ string, b *domain.Booking) {
	if err := d.Events.Publish(ctx, events.NewBookingEvent(typ, b)); err != nil {
		d.Log.Warn("publish booking event failed", zap.String("type", typ), zap.String("booking_id", b.ID), zap.Error(err))
	}
}

// loadCaller token 有效但用户已被删除时返回 404
func loadCaller(ctx context.Context, st *repo.Store, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.Unauthenticated("unauthorized")
	}
	u, err := st.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}
	return u, nil
}

func requireAdmin(ctx context.Context, st *repo.Store, id string) (*domain.User, error) {
	u, err := loadCaller(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if !u.Administrator() {
		return nil, domain.Forbidden("Admin access required")
	}
	return u, nil
}

// reconcileCar 没有未取消且 end_date 晚于今天的预订时车辆回到 available，否则 booked；维修状态不动。
// 先锁车辆行，与 CreateBooking 串行。
func reconcileCar(ctx context.Context, tx *repo.Store, carID string, today domain.Date) error {
	car, err := tx.Cars.LockByID(ctx, carID)
	if err != nil || car == nil {
		return err
	}
	if car.Status == domain.CarUnderMaintenance {
		return nil
	}
	n, err := tx.Bookings.CountActiveFrom(ctx, carID, today)
	if err != nil {
		return err
	}
	want := domain.CarAvailable
	if n > 0 {
		want = domain.CarBooked
	}
	if car.Status == want {
		return nil
	}
	return tx.Cars.UpdateStatus(ctx, carID, want)
}

// adminRecipients 按策略挑选接收取消通知的管理员邮箱
func (d *Deps) adminRecipients(ctx context.Context, tx *repo.Store) ([]string, error) {
	if d.AdminPolicy == AdminPolicyNone {
		return nil, nil
	}
	admins, err := tx.Users.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	if d.AdminPolicy == AdminPolicyFirst && len(admins) > 1 {
		admins = admins[:1]
	}
	out := make([]string, 0, len(admins))
	for _, a := range admins {
		out = append(out, a.Email)
	}
	return out, nil
}
