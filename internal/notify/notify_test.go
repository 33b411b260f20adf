package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"car-rental-api/internal/core/config"
	"car-rental-api/internal/domain"
)

func TestNew_Drivers(t *testing.T) {
	n, err := New(config.Mail{Driver: "log"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)

	n, err = New(config.Mail{Driver: "smtp", Host: "localhost", Port: 2525, From: "a@b.c"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPNotifier{}, n)

	_, err = New(config.Mail{Driver: "pigeon"}, zap.NewNop())
	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := &LogNotifier{Log: zap.New(core)}

	require.NoError(t, n.Send(context.Background(), Message{To: []string{"x@y.z"}, Subject: "hi", Body: "b"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "hi", logs.All()[0].ContextMap()["subject"])

	assert.Error(t, n.Send(context.Background(), Message{Subject: "nobody"}))
}

func TestTemplates(t *testing.T) {
	u := &domain.User{Username: "alice", Email: "alice@example.com", Role: domain.RoleUser}
	m := Welcome(u)
	assert.Equal(t, []string{"alice@example.com"}, m.To)
	assert.Contains(t, m.Body, "Role: User")

	b := &domain.Booking{ID: "b1", CarID: "c1", Status: domain.BookingCancelled,
		StartDate: domain.NewDate(2024, 1, 1), EndDate: domain.NewDate(2024, 1, 3)}
	m = BookingStatusChanged(u, b)
	assert.Equal(t, "Booking Cancelled", m.Subject)
	assert.Contains(t, m.Body, "2024-01-01 to 2024-01-03")

	m = BookingCancelledByUser([]string{"admin@example.com"}, u, b)
	assert.Equal(t, []string{"admin@example.com"}, m.To)
	assert.Contains(t, m.Body, "alice")
}
