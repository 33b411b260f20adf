package domain

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingOverlaps(t *testing.T) {
	b := &Booking{StartDate: NewDate(2024, 1, 1), EndDate: NewDate(2024, 1, 5)}

	tests := []struct {
		name       string
		start, end Date
		want       bool
	}{
		{"inside", NewDate(2024, 1, 2), NewDate(2024, 1, 3), true},
		{"covering", NewDate(2023, 12, 30), NewDate(2024, 1, 10), true},
		{"tail overlap", NewDate(2024, 1, 4), NewDate(2024, 1, 8), true},
		{"head overlap", NewDate(2023, 12, 28), NewDate(2024, 1, 2), true},
		{"adjacent after", NewDate(2024, 1, 5), NewDate(2024, 1, 10), false},
		{"adjacent before", NewDate(2023, 12, 25), NewDate(2024, 1, 1), false},
		{"disjoint", NewDate(2024, 2, 1), NewDate(2024, 2, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Overlaps(tt.start, tt.end))
		})
	}
}

func TestDate_ScanAndJSON(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-03-09"))
	assert.Equal(t, "2024-03-09", d.String())

	require.NoError(t, d.Scan(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-01", d.String())

	require.NoError(t, d.Scan([]byte("2024-06-02 00:00:00+00:00")))
	assert.Equal(t, "2024-06-02", d.String())

	assert.Error(t, d.Scan(42))

	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{NewDate(2024, 1, 31)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-01-31"}`, string(b))

	v, err := NewDate(2024, 1, 31).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", v)
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "2024/01/01", "2024-13-01", "01-01-2024"} {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestStatusEnums(t *testing.T) {
	assert.True(t, BookingPending.Active())
	assert.True(t, BookingConfirmed.Active())
	assert.False(t, BookingCancelled.Active())
	assert.False(t, BookingStatus("done").Valid())
	assert.True(t, BookingCancelled.Notifiable())
	assert.False(t, BookingPending.Notifiable())

	assert.True(t, CarUnderMaintenance.Valid())
	assert.False(t, CarStatus("lost").Valid())
}

func TestUserSetRole(t *testing.T) {
	u := &User{}
	u.SetRole(RoleAdmin)
	assert.True(t, u.IsAdmin)
	assert.True(t, u.Administrator())

	u.SetRole("whatever")
	assert.Equal(t, RoleUser, u.Role)
	assert.False(t, u.IsAdmin)
	assert.False(t, (*User)(nil).Administrator())
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("smtp down")
	err := Dependency("failed to send email", cause)

	assert.Equal(t, KindDependency, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to send email", err.Error())

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, http.StatusInternalServerError, de.Status())

	assert.Equal(t, http.StatusBadRequest, Conflict("x").(*Error).Status())
	assert.Equal(t, http.StatusForbidden, Forbidden("x").(*Error).Status())
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.True(t, IsKind(NotFound("car"), KindNotFound))
}
