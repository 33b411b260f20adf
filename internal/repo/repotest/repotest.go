// Package repotest 提供测试用的临时 sqlite 库
package repotest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"car-rental-api/internal/core/database"
	"car-rental-api/internal/domain"
	"car-rental-api/internal/repo"
	"car-rental-api/pkg/utils"
)

// Open 每个测试一个独立库文件，已建表
func Open(t testing.TB) *repo.Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repo.NewStore(db)
}

func User(t testing.TB, s *repo.Store, username string, admin bool) *domain.User {
	t.Helper()
	u := &domain.User{ID: utils.NewID(), Username: username, Email: username + "@example.com", PasswordHash: "x"}
	if admin {
		u.SetRole(domain.RoleAdmin)
	} else {
		u.SetRole(domain.RoleUser)
	}
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}

func Car(t testing.TB, s *repo.Store, brand, model string) *domain.Car {
	t.Helper()
	c := &domain.Car{
		ID: utils.NewID(), Brand: brand, Model: model, PricePerDay: 50,
		Image1: "a.jpg", Image2: "b.jpg", Status: domain.CarAvailable,
	}
	require.NoError(t, s.Cars.Create(context.Background(), c))
	return c
}

func Booking(t testing.TB, s *repo.Store, userID, carID string, start, end domain.Date, st domain.BookingStatus) *domain.Booking {
	t.Helper()
	b := &domain.Booking{ID: utils.NewID(), UserID: userID, CarID: carID, StartDate: start, EndDate: end, Status: st}
	require.NoError(t, s.Bookings.Create(context.Background(), b))
	return b
}
