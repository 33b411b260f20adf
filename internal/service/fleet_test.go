package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-rental-api/internal/domain"
	"car-rental-api/internal/storage"
)

func corolla() CarInput {
	return CarInput{Brand: "Toyota", Model: "Corolla", PricePerDay: "40", Image1: "a", Image2: "b"}
}

func TestFleet_CreateRoundTripAndDuplicate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.admin(t, "root")

	c, err := e.svc.Fleet.Create(ctx, a.ID, corolla())
	require.NoError(t, err)

	got, err := e.svc.Fleet.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Toyota", got.Brand)
	assert.Equal(t, "Corolla", got.Model)
	assert.Equal(t, 40.0, got.PricePerDay)
	assert.Equal(t, "a", got.Image1)
	assert.Equal(t, "b", got.Image2)
	assert.Equal(t, domain.CarAvailable, got.Status)

	_, err = e.svc.Fleet.Create(ctx, a.ID, corolla())
	assertKind(t, err, domain.KindConflict)

	cars, err := e.svc.Fleet.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cars, 1)
}

func TestFleet_CreateValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.admin(t, "root")
	u := e.user(t, "alice")

	bad := []func(*CarInput){
		func(in *CarInput) { in.Brand = "  " },
		func(in *CarInput) { in.Image2 = "" },
		func(in *CarInput) { in.PricePerDay = "" },
		func(in *CarInput) { in.PricePerDay = "cheap" },
		func(in *CarInput) { in.PricePerDay = "0" },
		func(in *CarInput) { in.PricePerDay = "-5" },
		func(in *CarInput) { in.Status = "stolen" },
		func(in *CarInput) { in.Status = "booked" },
	}
	for _, mod := range bad {
		in := corolla()
		mod(&in)
		_, err := e.svc.Fleet.Create(ctx, a.ID, in)
		assertKind(t, err, domain.KindValidation)
	}

	_, err := e.svc.Fleet.Create(ctx, u.ID, corolla())
	assertKind(t, err, domain.KindForbidden)

	in := corolla()
	in.Status = "under_maintenance"
	c, err := e.svc.Fleet.Create(ctx, a.ID, in)
	require.NoError(t, err)
	assert.Equal(t, domain.CarUnderMaintenance, c.Status)
}

func TestFleet_Update(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.admin(t, "root")
	c, err := e.svc.Fleet.Create(ctx, a.ID, corolla())
	require.NoError(t, err)
	other, err := e.svc.Fleet.Create(ctx, a.ID, CarInput{Brand: "Honda", Model: "Jazz", PricePerDay: "30", Image1: "x", Image2: "y"})
	require.NoError(t, err)

	got, err := e.svc.Fleet.Update(ctx, a.ID, c.ID, CarInput{Brand: "Toyota", Model: "Yaris", PricePerDay: "35.5", Image1: "c", Image2: "d", Status: "booked"})
	require.NoError(t, err)
	assert.Equal(t, "Yaris", got.Model)
	assert.Equal(t, 35.5, got.PricePerDay)
	assert.Equal(t, domain.CarAvailable, got.Status)

	_, err = e.svc.Fleet.Update(ctx, a.ID, c.ID, CarInput{Brand: other.Brand, Model: other.Model, PricePerDay: "10", Image1: "c", Image2: "d"})
	assertKind(t, err, domain.KindConflict)

	// 保持自身 brand/model 不算冲突
	_, err = e.svc.Fleet.Update(ctx, a.ID, other.ID, CarInput{Brand: "Honda", Model: "Jazz", PricePerDay: "31", Image1: "x", Image2: "y"})
	require.NoError(t, err)

	_, err = e.svc.Fleet.Update(ctx, a.ID, "missing", corolla())
	assertKind(t, err, domain.KindNotFound)
}

func TestFleet_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.admin(t, "root")
	u := e.user(t, "alice")
	c := e.car(t, "Kia", "Ceed")

	_, err := e.svc.Fleet.UpdateStatus(ctx, a.ID, c.ID, "broken")
	assertKind(t, err, domain.KindValidation)
	_, err = e.svc.Fleet.UpdateStatus(ctx, u.ID, c.ID, "booked")
	assertKind(t, err, domain.KindForbidden)
	_, err = e.svc.Fleet.UpdateStatus(ctx, a.ID, "missing", "booked")
	assertKind(t, err, domain.KindNotFound)

	got, err := e.svc.Fleet.UpdateStatus(ctx, a.ID, c.ID, "under_maintenance")
	require.NoError(t, err)
	assert.Equal(t, domain.CarUnderMaintenance, got.Status)
	assert.Equal(t, domain.CarUnderMaintenance, e.carStatus(t, c.ID))
}

func TestFleet_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.admin(t, "root")
	u := e.user(t, "alice")
	c := e.car(t, "Jeep", "Wrangler")
	b := book(t, e, u.ID, c.ID, "2024-01-01", "2024-01-03")
	rating := 4
	r, err := e.svc.Reviews.Create(ctx, u.ID, ReviewInput{CarID: c.ID, Rating: &rating})
	require.NoError(t, err)

	assertKind(t, e.svc.Fleet.Delete(ctx, u.ID, c.ID), domain.KindForbidden)
	require.NoError(t, e.svc.Fleet.Delete(ctx, a.ID, c.ID))
	assertKind(t, e.svc.Fleet.Delete(ctx, a.ID, c.ID), domain.KindNotFound)

	_, err = e.svc.Fleet.Get(ctx, c.ID)
	assertKind(t, err, domain.KindNotFound)
	gb, err := e.store.Bookings.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, gb)
	gr, err := e.store.Reviews.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, gr)
}

type fakeImages struct {
	err error
	got []byte
}

func (f *fakeImages) PutImage(_ context.Context, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.got = data
	return "http://minio.local/car-images/cars/x.png", nil
}

func TestFleet_UploadImage(t *testing.T) {
	ctx := context.Background()

	e := newEnv(t)
	a := e.admin(t, "root")
	_, err := e.svc.Fleet.UploadImage(ctx, a.ID, []byte("x"))
	assertKind(t, err, domain.KindUnavailable)

	imgs := &fakeImages{}
	e = newEnv(t, func(d *Deps) { d.Images = imgs })
	a = e.admin(t, "root")
	u := e.user(t, "alice")

	url, err := e.svc.Fleet.UploadImage(ctx, a.ID, []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://minio.local/car-images/cars/x.png", url)
	assert.Equal(t, []byte("png-bytes"), imgs.got)

	_, err = e.svc.Fleet.UploadImage(ctx, u.ID, []byte("png-bytes"))
	assertKind(t, err, domain.KindForbidden)
	_, err = e.svc.Fleet.UploadImage(ctx, a.ID, nil)
	assertKind(t, err, domain.KindValidation)

	imgs.err = storage.ErrNotImage
	_, err = e.svc.Fleet.UploadImage(ctx, a.ID, []byte("text"))
	assertKind(t, err, domain.KindValidation)

	imgs.err = errors.New("minio down")
	_, err = e.svc.Fleet.UploadImage(ctx, a.ID, []byte("png-bytes"))
	assertKind(t, err, domain.KindDependency)
}
