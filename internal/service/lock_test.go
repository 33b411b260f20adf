package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"car-rental-api/internal/repo"
)

// 删除用户后对账车辆时要先锁车辆行，和并发的 CreateBooking 串行
func TestUserDelete_LocksCarBeforeReconcile(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	svc := New(Deps{
		Store:    repo.NewStore(db),
		Notifier: &fakeNotifier{},
		Log:      zap.NewNop(),
		Now:      func() time.Time { return fixedNow },
	})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role", "is_admin"}).
			AddRow("u1", "alice", "alice@example.com", "user", false))
	mock.ExpectQuery(`SELECT DISTINCT .*car_id.* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"car_id"}).AddRow("c1"))
	mock.ExpectExec(`DELETE FROM "reviews"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "bookings"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "cars" WHERE id = \$1.*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "brand", "model", "status"}).
			AddRow("c1", "Audi", "A4", "booked"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE "cars" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Users.Delete(context.Background(), "u1", "u1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
