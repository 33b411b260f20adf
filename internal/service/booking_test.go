package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-rental-api/internal/domain"
	"car-rental-api/internal/events"
	"car-rental-api/internal/notify"
)

func book(t *testing.T, e *env, userID, carID, start, end string) *domain.Booking {
	t.Helper()
	b, err := e.svc.Bookings.Create(context.Background(), userID, CreateBookingInput{CarID: carID, StartDate: start, EndDate: end})
	require.NoError(t, err)
	return b
}

func TestCreateBooking_OverlapRejected(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "alice")
	c := e.car(t, "Toyota", "Corolla")
	book(t, e, u.ID, c.ID, "2024-01-01", "2024-01-05")

	for _, r := range [][2]string{
		{"2024-01-03", "2024-01-07"},
		{"2023-12-30", "2024-01-02"},
		{"2024-01-02", "2024-01-03"},
		{"2023-12-25", "2024-01-10"},
	} {
		_, err := e.svc.Bookings.Create(ctx, u.ID, CreateBookingInput{CarID: c.ID, StartDate: r[0], EndDate: r[1]})
		assertKind(t, err, domain.KindConflict)
		assert.Equal(t, msgAlreadyBooked, err.Error())
	}
}

func TestCreateBooking_AdjacentRangesAllowed(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "bob")
	c := e.car(t, "Honda", "Civic")

	book(t, e, u.ID, c.ID, "2024-01-01", "2024-01-05")
	book(t, e, u.ID, c.ID, "2024-01-05", "2024-01-10")

	bs, err := e.svc.Bookings.List(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, bs, 2)
}

func TestCreateBooking_InvalidInput(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	// 校验先于存储访问：调用者与车辆都不存在也应是 400
	cases := []CreateBookingInput{
		{CarID: "nope", StartDate: "2024-01-05", EndDate: "2024-01-05"},
		{CarID: "nope", StartDate: "2024-01-06", EndDate: "2024-01-05"},
		{CarID: "nope", StartDate: "2024/01/01", EndDate: "2024-01-05"},
		{CarID: "", StartDate: "2024-01-01", EndDate: "2024-01-05"},
		{CarID: "nope", StartDate: "2024-01-01", EndDate: "2024-01-05", Status: "cancelled"},
		{CarID: "nope", StartDate: "2024-01-01", EndDate: "2024-01-05", Status: "done"},
	}
	for _, in := range cases {
		_, err := e.svc.Bookings.Create(ctx, "ghost", in)
		assertKind(t, err, domain.KindValidation)
	}
}

func TestCreateBooking_NotFoundAndForbidden(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "carol")
	a := e.admin(t, "root")
	c := e.car(t, "Kia", "Rio")
	in := CreateBookingInput{CarID: c.ID, StartDate: "2024-01-01", EndDate: "2024-01-02"}

	_, err := e.svc.Bookings.Create(ctx, a.ID, in)
	assertKind(t, err, domain.KindForbidden)

	_, err = e.svc.Bookings.Create(ctx, "ghost", in)
	assertKind(t, err, domain.KindNotFound)

	_, err = e.svc.Bookings.Create(ctx, u.ID, CreateBookingInput{CarID: "missing", StartDate: "2024-01-01", EndDate: "2024-01-02"})
	assertKind(t, err, domain.KindNotFound)
	assert.Equal(t, "Car not found", err.Error())
}

func TestCreateBooking_MaintenanceCar(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "dan")
	c := e.car(t, "Ford", "Focus")
	require.NoError(t, e.store.Cars.UpdateStatus(context.Background(), c.ID, domain.CarUnderMaintenance))

	_, err := e.svc.Bookings.Create(context.Background(), u.ID, CreateBookingInput{CarID: c.ID, StartDate: "2024-01-01", EndDate: "2024-01-02"})
	assertKind(t, err, domain.KindConflict)
	assert.Equal(t, "Car is not available", err.Error())
}

func TestCreateBooking_SetsCarBookedAndNotifies(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "erin")
	c := e.car(t, "Mazda", "3")

	b, err := e.svc.Bookings.Create(context.Background(), u.ID, CreateBookingInput{
		CarID: c.ID, StartDate: "2024-02-01", EndDate: "2024-02-03", Status: "confirmed",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, domain.CarBooked, e.carStatus(t, c.ID))
	assert.Equal(t, []string{"Booking Confirmation"}, e.mail.subjects())
	assert.Equal(t, []string{events.BookingCreated}, e.events.types)
}

func TestCreateBooking_NotificationFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.mail.fail = func(notify.Message) bool { return true }
	u := e.user(t, "frank")
	c := e.car(t, "VW", "Golf")

	_, err := e.svc.Bookings.Create(ctx, u.ID, CreateBookingInput{CarID: c.ID, StartDate: "2024-01-01", EndDate: "2024-01-02"})
	assertKind(t, err, domain.KindDependency)

	bs, err := e.store.Bookings.ListByCar(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, bs)
	assert.Equal(t, domain.CarAvailable, e.carStatus(t, c.ID))
	assert.Empty(t, e.events.types)
}

func TestCreateBooking_ConcurrentSingleWinner(t *testing.T) {
	const n = 8
	e := newEnv(t)
	c := e.car(t, "Tesla", "Model 3")
	users := make([]*domain.User, n)
	for i := range users {
		users[i] = e.user(t, "racer"+string(rune('a'+i)))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := e.svc.Bookings.Create(context.Background(), uid, CreateBookingInput{
				CarID: c.ID, StartDate: "2024-03-01", EndDate: "2024-03-05",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case domain.IsKind(err, domain.KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(users[i].ID)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

func TestDeleteBooking_ResetsCar(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "gina")
	a := e.admin(t, "root")
	c := e.car(t, "Audi", "A4")
	b1 := book(t, e, u.ID, c.ID, "2024-01-01", "2024-01-03")
	b2 := book(t, e, u.ID, c.ID, "2024-01-10", "2024-01-12")

	assertKind(t, e.svc.Bookings.Delete(ctx, u.ID, b1.ID), domain.KindForbidden)

	require.NoError(t, e.svc.Bookings.Delete(ctx, a.ID, b1.ID))
	assert.Equal(t, domain.CarBooked, e.carStatus(t, c.ID))

	require.NoError(t, e.svc.Bookings.Delete(ctx, a.ID, b2.ID))
	assert.Equal(t, domain.CarAvailable, e.carStatus(t, c.ID))

	assertKind(t, e.svc.Bookings.Delete(ctx, a.ID, b2.ID), domain.KindNotFound)
	assert.Contains(t, e.events.types, events.BookingDeleted)
}

func TestUpdateStatus_CancelReconcilesCar(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "hank")
	e.admin(t, "root")
	c := e.car(t, "BMW", "X1")
	b1 := book(t, e, u.ID, c.ID, "2024-01-01", "2024-01-03")
	b2 := book(t, e, u.ID, c.ID, "2024-01-05", "2024-01-07")

	_, err := e.svc.Bookings.UpdateStatus(ctx, u.ID, b1.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, domain.CarBooked, e.carStatus(t, c.ID))

	_, err = e.svc.Bookings.UpdateStatus(ctx, u.ID, b2.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, domain.CarAvailable, e.carStatus(t, c.ID))
}

func TestUpdateStatus_MaintenanceUntouched(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "ivy")
	a := e.admin(t, "root")
	c := e.car(t, "Seat", "Leon")
	b := book(t, e, u.ID, c.ID, "2024-01-01", "2024-01-03")
	_, err := e.svc.Fleet.UpdateStatus(ctx, a.ID, c.ID, "under_maintenance")
	require.NoError(t, err)

	_, err = e.svc.Bookings.UpdateStatus(ctx, a.ID, b.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, domain.CarUnderMaintenance, e.carStatus(t, c.ID))
}

func TestUpdateStatus_Notifications(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "jack")
	a := e.admin(t, "root")
	c := e.car(t, "Fiat", "500")
	b := book(t, e, u.ID, c.ID, "2024-01-01", "2024-01-03")
	e.mail.reset()

	res, err := e.svc.Bookings.UpdateStatus(ctx, u.ID, b.ID, "pending")
	require.NoError(t, err)
	assert.False(t, res.NotificationSent)
	assert.Empty(t, e.mail.subjects())

	res, err = e.svc.Bookings.UpdateStatus(ctx, a.ID, b.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusResult{Status: domain.BookingConfirmed, NotificationSent: true}, res)
	assert.Equal(t, []string{"Booking Confirmed"}, e.mail.subjects())
	e.mail.reset()

	// 本人取消：通知本人和管理员
	res, err = e.svc.Bookings.UpdateStatus(ctx, u.ID, b.ID, "cancelled")
	require.NoError(t, err)
	assert.True(t, res.NotificationSent)
	assert.Equal(t, []string{"Booking Cancelled", "Booking Cancelled by User"}, e.mail.subjects())
	assert.Equal(t, []string{a.Email}, e.mail.sent[1].To)
}

func TestUpdateStatus_AdminPolicyNoneAndNoAdmins(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name   string
		policy string
		admins bool
	}{
		{"policy none", AdminPolicyNone, true},
		{"no admins", AdminPolicyAll, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t, func(d *Deps) { d.AdminPolicy = tc.policy })
			u := e.user(t, "kate")
			if tc.admins {
				e.admin(t, "root")
			}
			c := e.car(t, "Opel", "Astra")
			b := book(t, e, u.ID, c.ID, "2024-01-01", "2024-01-03")
			e.mail.reset()

			res, err := e.svc.Bookings.UpdateStatus(ctx, u.ID, b.ID, "cancelled")
			require.NoError(t, err)
			assert.True(t, res.NotificationSent)
			assert.Equal(t, []string{"Booking Cancelled"}, e.mail.subjects())
		})
	}
}

func TestUpdateStatus_NotificationFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "liam")
	c := e.car(t, "Skoda", "Octavia")
	b := book(t, e, u.ID, c.ID, "2024-01-01", "2024-01-03")
	e.mail.fail = func(m notify.Message) bool { return strings.HasPrefix(m.Subject, "Booking Cancelled") }

	_, err := e.svc.Bookings.UpdateStatus(ctx, u.ID, b.ID, "cancelled")
	assertKind(t, err, domain.KindDependency)

	got, err := e.store.Bookings.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)
	assert.Equal(t, domain.CarBooked, e.carStatus(t, c.ID))
}

func TestUpdateStatus_ReactivationChecksOverlap(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "mia")
	c := e.car(t, "Volvo", "XC40")
	b1 := book(t, e, u.ID, c.ID, "2024-01-01", "2024-01-05")
	_, err := e.svc.Bookings.UpdateStatus(ctx, u.ID, b1.ID, "cancelled")
	require.NoError(t, err)
	book(t, e, u.ID, c.ID, "2024-01-03", "2024-01-08")

	_, err = e.svc.Bookings.UpdateStatus(ctx, u.ID, b1.ID, "pending")
	assertKind(t, err, domain.KindConflict)

	b3 := book(t, e, u.ID, c.ID, "2024-02-01", "2024-02-03")
	_, err = e.svc.Bookings.UpdateStatus(ctx, u.ID, b3.ID, "cancelled")
	require.NoError(t, err)
	_, err = e.svc.Bookings.UpdateStatus(ctx, u.ID, b3.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, domain.CarBooked, e.carStatus(t, c.ID))
}

func TestUpdateStatus_ReactivatingPastBookingKeepsCarAvailable(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "noah")
	c := e.car(t, "Mazda", "CX-5")
	b := book(t, e, u.ID, c.ID, "2024-01-01", "2024-01-05")
	_, err := e.svc.Bookings.UpdateStatus(ctx, u.ID, b.ID, "cancelled")
	require.NoError(t, err)
	require.Equal(t, domain.CarAvailable, e.carStatus(t, c.ID))

	// 预订结束之后再恢复
	e.deps.Now = func() time.Time { return time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC) }
	res, err := e.svc.Bookings.UpdateStatus(ctx, u.ID, b.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, res.Status)

	n, err := e.store.Bookings.CountActiveFrom(ctx, c.ID, domain.NewDate(2024, 12, 1))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, domain.CarAvailable, e.carStatus(t, c.ID))
}

func TestUpdateStatus_Validation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "nina")

	_, err := e.svc.Bookings.UpdateStatus(ctx, u.ID, "whatever", "finished")
	assertKind(t, err, domain.KindValidation)

	_, err = e.svc.Bookings.UpdateStatus(ctx, u.ID, "whatever", "confirmed")
	assertKind(t, err, domain.KindNotFound)
}

func TestBookingAccess_OwnerOrAdmin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.user(t, "owen")
	other := e.user(t, "olga")
	a := e.admin(t, "root")
	c := e.car(t, "Nissan", "Leaf")
	b := book(t, e, owner.ID, c.ID, "2024-01-01", "2024-01-03")

	_, err := e.svc.Bookings.Get(ctx, other.ID, b.ID)
	assertKind(t, err, domain.KindForbidden)
	_, err = e.svc.Bookings.UpdateStatus(ctx, other.ID, b.ID, "confirmed")
	assertKind(t, err, domain.KindForbidden)
	_, err = e.svc.Bookings.ListByUser(ctx, other.ID, owner.ID)
	assertKind(t, err, domain.KindForbidden)

	got, err := e.svc.Bookings.Get(ctx, owner.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	_, err = e.svc.Bookings.Get(ctx, a.ID, b.ID)
	require.NoError(t, err)

	all, err := e.svc.Bookings.List(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	mine, err := e.svc.Bookings.List(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, mine)
	assert.Empty(t, mine)

	byUser, err := e.svc.Bookings.ListByUser(ctx, a.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
	_, err = e.svc.Bookings.ListByUser(ctx, a.ID, "ghost")
	assertKind(t, err, domain.KindNotFound)
}

func TestListByCar_HidesOwnerFromNonAdmins(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.user(t, "pete")
	a := e.admin(t, "root")
	c := e.car(t, "Mini", "Cooper")
	book(t, e, u.ID, c.ID, "2024-01-01", "2024-01-03")

	anon, err := e.svc.Bookings.ListByCar(ctx, "", c.ID)
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Empty(t, anon[0].UserID)
	assert.Equal(t, "2024-01-01", anon[0].StartDate.String())

	adm, err := e.svc.Bookings.ListByCar(ctx, a.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, adm, 1)
	assert.Equal(t, u.ID, adm[0].UserID)

	_, err = e.svc.Bookings.ListByCar(ctx, "", "missing")
	assertKind(t, err, domain.KindNotFound)
}
